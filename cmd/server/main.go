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
	"roll-for-your-life/internal/dice"
	"roll-for-your-life/internal/game"
	"roll-for-your-life/internal/match"
	"roll-for-your-life/internal/server"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"
)

var CLI struct {
	Env        string `help:"Path to a .env file." default:".env" type:"path"`
	Debug      bool   `help:"Whether to enable debug logging."`
	MatchURL   string `help:"Match service base URL. Overrides MATCH_SERVICE_URL." name:"match-url"`
	Seed       int64  `help:"Dice seed. Overrides DICE_SEED; zero picks a random seed."`
	NoAutoLoad bool   `help:"Wait for POST /api/restart instead of loading a match at startup." name:"no-autoload"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("server"),
		kong.Description("Roll for your life game server."),
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
	if CLI.MatchURL != "" {
		cfg.MatchServiceURL = CLI.MatchURL
	}
	if CLI.Seed != 0 {
		cfg.DiceSeed = CLI.Seed
	}
	config.SetupLogging(cfg)

	client := match.NewHTTPClient(cfg.MatchServiceURL,
		match.WithTimeout(cfg.MatchTimeout),
		match.WithLogger(log.With().Str("component", "match").Logger()),
	)
	die, err := dice.NewRandom(cfg.DiceSeed)
	if err != nil {
		log.Fatal().Err(err).Msg("dice setup failed")
	}
	engine := game.New(client, die, game.WithLogger(log.With().Str("component", "game").Logger()))
	srv := server.New(engine, cfg, log.With().Str("component", "server").Logger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go srv.Run(ctx)

	if !CLI.NoAutoLoad {
		go srv.LoadInitial(ctx)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
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

	log.Info().
		Str("addr", httpServer.Addr).
		Str("match_service", cfg.MatchServiceURL).
		Int64("seed", die.Seed()).
		Msg("game server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
}
