package repositories

import (
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"tpa-lab/domain"

	_ "modernc.org/sqlite"
)

// SQLitePositionRepository keeps positions in the tempest_* tables read by map dashboards.
type SQLitePositionRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func OpenSQLitePositionRepository(path string, log *slog.Logger) (*SQLitePositionRepository, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLitePositionRepository{db: db, log: log}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tempest_map_metadata (
			id INTEGER NOT NULL PRIMARY KEY DEFAULT 1,
			map_name TEXT NOT NULL,
			level_size INTEGER NOT NULL,
			last_synced_utc TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tempest_player_positions (
			steam_id INTEGER NOT NULL PRIMARY KEY,
			character_name TEXT NOT NULL,
			group_name TEXT NULL,
			position_x REAL NOT NULL,
			position_y REAL NOT NULL,
			position_z REAL NOT NULL,
			rotation_y REAL NOT NULL,
			is_online INTEGER NOT NULL DEFAULT 1,
			last_seen_utc TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tempest_player_positions_last_seen ON tempest_player_positions(last_seen_utc);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// sqlTimeLayout is fixed width so timestamps compare correctly as text.
const sqlTimeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(sqlTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(sqlTimeLayout, s)
}

func (r *SQLitePositionRepository) UpsertMetadata(meta MapMetadata) error {
	_, err := r.db.Exec(`
		INSERT INTO tempest_map_metadata (id, map_name, level_size, last_synced_utc)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			map_name = excluded.map_name,
			level_size = excluded.level_size,
			last_synced_utc = excluded.last_synced_utc;`,
		meta.MapName, meta.LevelSize, formatTime(meta.LastSynced))
	return err
}

// UpsertPlayers reuses one prepared statement inside a transaction.
func (r *SQLitePositionRepository) UpsertPlayers(players []PlayerPosition) (err error) {
	if len(players) == 0 {
		return nil
	}
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(`
		INSERT INTO tempest_player_positions
			(steam_id, character_name, group_name, position_x, position_y, position_z, rotation_y, is_online, last_seen_utc)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT(steam_id) DO UPDATE SET
			character_name = excluded.character_name,
			group_name = excluded.group_name,
			position_x = excluded.position_x,
			position_y = excluded.position_y,
			position_z = excluded.position_z,
			rotation_y = excluded.rotation_y,
			is_online = 1,
			last_seen_utc = excluded.last_seen_utc;`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range players {
		var group any
		if p.GroupName != "" {
			group = p.GroupName
		}
		if _, err = stmt.Exec(int64(p.ActorID), p.CharacterName, group,
			p.Position.X, p.Position.Y, p.Position.Z, p.RotationY, formatTime(p.LastSeen)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLitePositionRepository) MarkOffline(id domain.ActorID, at time.Time) error {
	_, err := r.db.Exec(
		`UPDATE tempest_player_positions SET is_online = 0, last_seen_utc = ? WHERE steam_id = ?;`,
		formatTime(at), int64(id))
	return err
}

func (r *SQLitePositionRepository) MarkStale(before time.Time) (int, error) {
	res, err := r.db.Exec(
		`UPDATE tempest_player_positions SET is_online = 0 WHERE is_online = 1 AND last_seen_utc < ?;`,
		formatTime(before))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *SQLitePositionRepository) Snapshot() (MapMetadata, []PlayerPosition, error) {
	var meta MapMetadata
	var synced string
	err := r.db.QueryRow(
		`SELECT map_name, level_size, last_synced_utc FROM tempest_map_metadata WHERE id = 1;`,
	).Scan(&meta.MapName, &meta.LevelSize, &synced)
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
	case err != nil:
		return MapMetadata{}, nil, err
	default:
		if meta.LastSynced, err = parseTime(synced); err != nil {
			return MapMetadata{}, nil, err
		}
	}

	rows, err := r.db.Query(`
		SELECT steam_id, character_name, group_name, position_x, position_y, position_z,
			rotation_y, is_online, last_seen_utc
		FROM tempest_player_positions;`)
	if err != nil {
		return MapMetadata{}, nil, err
	}
	defer rows.Close()

	var players []PlayerPosition
	for rows.Next() {
		var (
			p        PlayerPosition
			id       int64
			group    sql.NullString
			online   int
			lastSeen string
		)
		if err := rows.Scan(&id, &p.CharacterName, &group, &p.Position.X, &p.Position.Y, &p.Position.Z,
			&p.RotationY, &online, &lastSeen); err != nil {
			return MapMetadata{}, nil, err
		}
		p.ActorID = domain.ActorID(id)
		p.GroupName = group.String
		p.Online = online == 1
		if p.LastSeen, err = parseTime(lastSeen); err != nil {
			return MapMetadata{}, nil, err
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return MapMetadata{}, nil, err
	}
	sortForMap(players)
	return meta, players, nil
}

func (r *SQLitePositionRepository) Close() error {
	return r.db.Close()
}
