package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roll-for-your-life/internal/config"
	"roll-for-your-life/internal/db"
	"roll-for-your-life/internal/matchsvc"

	"github.com/alecthomas/kong"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var CLI struct {
	Env        string `help:"Path to a .env file." default:".env" type:"path"`
	Debug      bool   `help:"Whether to enable debug logging."`
	Roster     string `help:"Roster CSV for the in-memory store. Overrides MATCHSVC_ROSTER_PATH." type:"path"`
	ScoreToWin int    `help:"Target score for issued matches. Overrides MATCHSVC_SCORE_TO_WIN." name:"score-to-win"`
	Memory     bool   `help:"Use the in-memory store even when DATABASE_URL is set."`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("matchsvc"),
		kong.Description("Reference match service: issues matches and records winners."),
		kong.UsageOnError(),
	)

	if err := config.LoadDotEnv(CLI.Env); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if CLI.Debug {
		cfg.LogLevel = "debug"
	}
	if CLI.Roster != "" {
		cfg.MatchsvcRosterPath = CLI.Roster
	}
	if CLI.ScoreToWin > 0 {
		cfg.MatchsvcScoreToWin = CLI.ScoreToWin
	}
	config.SetupLogging(cfg)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store setup failed")
	}
	svc := matchsvc.NewService(store, cfg.MatchsvcScoreToWin, log.With().Str("component", "matchsvc").Logger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              ":" + cfg.MatchsvcPort,
		Handler:           svc.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().Str("addr", httpServer.Addr).Int("score_to_win", cfg.MatchsvcScoreToWin).Msg("match service listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func openStore(cfg config.Config) (matchsvc.Store, error) {
	if cfg.DatabaseURL != "" && !CLI.Memory {
		conn, err := db.Open(cfg)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(conn); err != nil {
			return nil, err
		}
		log.Info().Msg("using postgres store")
		return matchsvc.NewGormStore(conn), nil
	}

	roster := matchsvc.DefaultRoster()
	if cfg.MatchsvcRosterPath != "" {
		loaded, err := matchsvc.ReadRosterFile(cfg.MatchsvcRosterPath)
		if err != nil {
			return nil, err
		}
		roster = loaded
	}
	log.Info().Int("players", len(roster)).Msg("using in-memory store")
	return matchsvc.NewMemoryStore(roster), nil
}
