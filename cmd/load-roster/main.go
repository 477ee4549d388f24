package main

import (
	"context"

	"roll-for-your-life/internal/config"
	"roll-for-your-life/internal/db"
	"roll-for-your-life/internal/matchsvc"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"
)

var CLI struct {
	File string `arg:"" optional:"" help:"Roster CSV with an id,name,image_url header." default:"roster.csv" type:"path"`
}

func main() {
	kong.Parse(&CLI, kong.Name("load-roster"), kong.UsageOnError())

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	config.SetupLogging(cfg)

	conn, err := db.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	roster, err := matchsvc.ReadRosterFile(CLI.File)
	if err != nil {
		log.Fatal().Err(err).Str("file", CLI.File).Msg("failed to read roster")
	}

	loaded, err := matchsvc.NewGormStore(conn).UpsertRoster(context.Background(), roster)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to upsert roster")
	}
	log.Info().Int("players", loaded).Msg("roster loaded")
}
