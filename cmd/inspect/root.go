package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"tpa-lab/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "inspect",
		Short:        "Inspect the player position store",
		Long:         "inspect reads the position store written by the teleport server and prints map metadata and the last known player positions.",
		SilenceUsage: true,
	}

	var store string
	rootCmd.PersistentFlags().StringVar(&store, "store", "", "position store to read (badger|sqlite), overrides POSITION_STORE")

	load := func() (repositories.IPositionRepository, Config, error) {
		cfg, err := LoadConfig()
		if err != nil {
			return nil, cfg, fmt.Errorf("config error: %w", err)
		}
		if store != "" {
			cfg.PositionStore = store
		}
		repo, err := openStore(cfg)
		if err != nil {
			return nil, cfg, fmt.Errorf("open %s store: %w", cfg.PositionStore, err)
		}
		return repo, cfg, nil
	}

	rootCmd.AddCommand(newPlayersCmd(load), newMetadataCmd(load))
	return rootCmd
}

type loader func() (repositories.IPositionRepository, Config, error)

func newPlayersCmd(load loader) *cobra.Command {
	var onlineOnly, asJSON bool
	cmd := &cobra.Command{
		Use:   "players",
		Short: "List stored player positions, online first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, cfg, err := load()
			if err != nil {
				return err
			}
			defer repo.Close()

			_, players, err := repo.Snapshot()
			if err != nil {
				return err
			}
			if onlineOnly {
				players = filterOnline(players)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), players)
			}
			renderPlayers(cmd.OutOrStdout(), players, cfg.Colours)
			return nil
		},
	}
	cmd.Flags().BoolVar(&onlineOnly, "online", false, "only list online players")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newMetadataCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "metadata",
		Short: "Print the stored map metadata",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, _, err := load()
			if err != nil {
				return err
			}
			defer repo.Close()

			meta, _, err := repo.Snapshot()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), meta)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func openStore(cfg Config) (repositories.IPositionRepository, error) {
	log := slog.New(slog.DiscardHandler)
	switch cfg.PositionStore {
	case "sqlite":
		return repositories.OpenSQLitePositionRepository(cfg.SQLiteDSN, log)
	case "badger":
		db, err := badger.Open(badger.DefaultOptions(cfg.BadgerFilepath).WithReadOnly(true).WithLoggingLevel(badger.ERROR))
		if err != nil {
			return nil, err
		}
		return repositories.NewBadgerPositionRepository(db, log), nil
	default:
		return nil, fmt.Errorf("unknown position store %q", cfg.PositionStore)
	}
}
