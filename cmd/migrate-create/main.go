package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"
)

var CLI struct {
	Name string `arg:"" help:"Migration name."`
	Dir  string `help:"Migrations directory." default:"db/migrations"`
}

func main() {
	kong.Parse(&CLI, kong.Name("migrate-create"), kong.UsageOnError())

	if strings.ContainsAny(CLI.Name, " ") {
		log.Fatal().Msg("migration name must not contain spaces")
	}

	version := time.Now().UTC().Format("20060102150405")
	base := fmt.Sprintf("%s_%s", version, CLI.Name)
	upPath := filepath.Join(CLI.Dir, base+".up.sql")
	downPath := filepath.Join(CLI.Dir, base+".down.sql")

	if err := os.MkdirAll(CLI.Dir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("create migrations dir")
	}
	if err := writeFile(upPath, "-- up migration\n"); err != nil {
		log.Fatal().Err(err).Msg("create up migration")
	}
	if err := writeFile(downPath, "-- down migration\n"); err != nil {
		log.Fatal().Err(err).Msg("create down migration")
	}

	log.Info().Str("up", upPath).Str("down", downPath).Msg("migration created")
}

func writeFile(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file already exists: %s", path)
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
