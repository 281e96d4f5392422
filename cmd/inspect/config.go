package main

import "github.com/kelseyhightower/envconfig"

type Config struct {
	PositionStore  string `envconfig:"POSITION_STORE" default:"badger"`
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" default:"data/positions"`
	SQLiteDSN      string `envconfig:"SQLITE_DSN" default:"data/tempest_map.db"`
	// INSPECT_COLOURS highlights online players
	Colours bool `envconfig:"INSPECT_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
