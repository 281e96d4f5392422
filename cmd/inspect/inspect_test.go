package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"
	"time"
	"tpa-lab/domain"
	"tpa-lab/repositories"

	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T) string {
	dsn := filepath.Join(t.TempDir(), "map.db")
	repo, err := repositories.OpenSQLitePositionRepository(dsn, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer repo.Close()

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpsertMetadata(repositories.NewMapMetadata("PEI", 1024, at)))
	require.NoError(t, repo.UpsertPlayers([]repositories.PlayerPosition{
		repositories.NewPlayerPosition(domain.ActorState{ID: 1, CharacterName: "Alice", Position: domain.Vec3{X: 1.5}}, at),
		repositories.NewPlayerPosition(domain.ActorState{ID: 2, CharacterName: "Bob"}, at),
	}))
	require.NoError(t, repo.MarkOffline(2, at.Add(time.Minute)))
	return dsn
}

func execute(t *testing.T, args ...string) string {
	t.Setenv("INSPECT_COLOURS", "false")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestInspect_Players_Table(t *testing.T) {
	req := require.New(t)
	t.Setenv("SQLITE_DSN", seededStore(t))

	out := execute(t, "--store", "sqlite", "players")

	req.Contains(out, "Alice")
	req.Contains(out, "1.500")
	req.Contains(out, "offline")
	req.Less(bytes.Index([]byte(out), []byte("Alice")), bytes.Index([]byte(out), []byte("Bob")))
}

func TestInspect_Online_Players_As_JSON(t *testing.T) {
	req := require.New(t)
	t.Setenv("SQLITE_DSN", seededStore(t))

	out := execute(t, "--store", "sqlite", "players", "--online", "--json")

	var players []repositories.PlayerPosition
	req.NoError(json.Unmarshal([]byte(out), &players))
	req.Len(players, 1)
	req.Equal("Alice", players[0].CharacterName)
}

func TestInspect_Metadata(t *testing.T) {
	req := require.New(t)
	t.Setenv("SQLITE_DSN", seededStore(t))

	out := execute(t, "--store", "sqlite", "metadata")

	var meta repositories.MapMetadata
	req.NoError(json.Unmarshal([]byte(out), &meta))
	req.Equal("PEI", meta.MapName)
	req.Equal(1024, meta.LevelSize)
}

func TestInspect_Unknown_Store(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--store", "redis", "players"})
	require.Error(t, cmd.Execute())
}
