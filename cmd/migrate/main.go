package main

import (
	"flag"
	"os"

	"github.com/pageza/cibaria/backend/config"
	"github.com/pageza/cibaria/backend/internal/database"
	"github.com/pageza/cibaria/backend/internal/logging"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	dir := flag.String("dir", "", "Migrations directory (defaults to MIGRATIONS_DIR)")
	flag.Parse()

	log := logging.New(logging.Config{Level: os.Getenv("LOG_LEVEL"), Format: "text"})

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	migrationsDir := cfg.MigrationsDir
	if *dir != "" {
		migrationsDir = *dir
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = database.DSN(cfg)
	}
	db, err := database.Open(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if *rollback {
		err = database.RollbackLast(db.DB, migrationsDir, log)
	} else {
		err = database.RunMigrations(db.DB, migrationsDir, log)
	}
	if err != nil {
		log.Error().Err(err).Msg("migration failed")
		db.Close()
		os.Exit(1)
	}
	log.Info().Msg("migrations complete")
}
