package internal

import (
	"fmt"
	"time"
	"tpa-lab/runtime"
	"tpa-lab/runtime/workers"
	"tpa-lab/server"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	StoreBadger = "badger"
	StoreSQLite = "sqlite"
)

type Config struct {
	RequestTimeoutSeconds int     `env:"REQUEST_TIMEOUT_SECONDS,default=60" validate:"gte=1"`
	TeleportDelaySeconds  int     `env:"TELEPORT_DELAY_SECONDS,default=3" validate:"gte=0"`
	CooldownSeconds       int     `env:"COOLDOWN_SECONDS,default=15" validate:"gte=0"`
	CancelOnMove          bool    `env:"CANCEL_ON_MOVE,default=true"`
	CancelOnMoveDistance  float64 `env:"CANCEL_ON_MOVE_DISTANCE,default=0.8" validate:"gte=0"`
	PermissionsEnabled    bool    `env:"PERMISSIONS_ENABLED,default=false"`

	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080" validate:"gte=1,lte=65535"`
	EventBufferSize      int           `env:"EVENT_BUFFER_SIZE,default=256" validate:"gte=1"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=32" validate:"gte=1"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=2s" validate:"gt=0"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=1s" validate:"gt=0"`
	TickInterval         time.Duration `env:"TICK_INTERVAL,default=1s" validate:"gt=0"`
	StatsInterval        time.Duration `env:"STATS_INTERVAL,default=30s"`
	TimelineCapacity     int           `env:"TIMELINE_CAPACITY,default=1000" validate:"gte=0"`

	PositionStore    string        `env:"POSITION_STORE,default=badger" validate:"oneof=badger sqlite"`
	BadgerFilepath   string        `env:"BADGER_FILEPATH,default=data/positions" validate:"required_if=PositionStore badger"`
	SQLiteDSN        string        `env:"SQLITE_DSN,default=data/tempest_map.db" validate:"required_if=PositionStore sqlite"`
	SnapshotInterval time.Duration `env:"SNAPSHOT_INTERVAL,default=5s"`
	PlayerStaleAfter time.Duration `env:"PLAYER_STALE_AFTER,default=5m"`
	MapName          string        `env:"MAP_NAME,default=Unknown"`
	LevelSize        int           `env:"LEVEL_SIZE,default=0" validate:"gte=0"`

	JWTSecret         string        `env:"JWT_SECRET,required=true" validate:"min=16"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h" validate:"gt=0"`
}

var validate = validator.New()

// Load reads an optional .env file, then the environment, and validates the result.
func Load(files ...string) (Config, error) {
	_ = godotenv.Load(files...)

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := validate.Struct(config); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c Config) TeleportDelay() time.Duration {
	return time.Duration(c.TeleportDelaySeconds) * time.Second
}

func (c Config) Orchestrator() runtime.OrchestratorConfig {
	return runtime.OrchestratorConfig{
		Executor: runtime.ExecutorConfig{
			DelaySeconds:         c.TeleportDelaySeconds,
			Tick:                 c.TickInterval,
			Cooldown:             time.Duration(c.CooldownSeconds) * time.Second,
			CancelOnMove:         c.CancelOnMove,
			CancelOnMoveDistance: c.CancelOnMoveDistance,
		},
		EventBufferSize:      c.EventBufferSize,
		ConnectionBufferSize: c.ConnectionBufferSize,
		SinkTimeout:          c.SinkTimeout,
		StatsInterval:        c.StatsInterval,
		Snapshot: workers.PositionSnapshotConfig{
			MapName:    c.MapName,
			LevelSize:  c.LevelSize,
			Interval:   c.SnapshotInterval,
			StaleAfter: c.PlayerStaleAfter,
		},
	}
}

func (c Config) Server() server.Config {
	return server.Config{
		PermissionsEnabled:   c.PermissionsEnabled,
		ConnectionBufferSize: c.ConnectionBufferSize,
	}
}
