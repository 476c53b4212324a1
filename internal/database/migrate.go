package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pageza/cibaria/backend/internal/models"
)

// RunMigrations brings the schema up to date. SQLite databases are
// auto-migrated from the models; postgres applies the ordered .sql files in
// migrationsDir, recording each in the migrations table.
func RunMigrations(db *gorm.DB, migrationsDir string, log zerolog.Logger) error {
	if db.Dialector.Name() == "sqlite" {
		log.Debug().Msg("using gorm auto-migration for sqlite")
		return db.AutoMigrate(models.All()...)
	}

	files, err := migrationFiles(migrationsDir)
	if err != nil {
		return err
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, name := range files {
		var count int64
		if err := db.Table("migrations").Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			log.Debug().Str("migration", name).Msg("skipping migration, already applied")
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsDir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", name, err)
			}
			if err := tx.Exec("INSERT INTO migrations (name) VALUES (?)", name).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		log.Info().Str("migration", name).Msg("applied migration")
	}

	return nil
}

// migrationFiles lists the forward .sql files in name order. Files ending in
// _rollback.sql are skipped.
func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") || strings.HasSuffix(name, "_rollback.sql") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// RollbackLast reverts the most recently applied migration using its
// <name>_rollback.sql companion.
func RollbackLast(db *gorm.DB, migrationsDir string, log zerolog.Logger) error {
	var last struct{ Name string }
	err := db.Table("migrations").Select("name").Order("applied_at DESC, id DESC").Limit(1).Scan(&last).Error
	if err != nil {
		return fmt.Errorf("failed to get last migration: %w", err)
	}
	if last.Name == "" {
		return fmt.Errorf("no migrations to roll back")
	}

	rollback := strings.TrimSuffix(last.Name, ".sql") + "_rollback.sql"
	content, err := os.ReadFile(filepath.Join(migrationsDir, rollback))
	if err != nil {
		return fmt.Errorf("failed to read rollback file %s: %w", rollback, err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(string(content)).Error; err != nil {
			return fmt.Errorf("failed to execute rollback %s: %w", rollback, err)
		}
		return tx.Exec("DELETE FROM migrations WHERE name = ?", last.Name).Error
	})
	if err != nil {
		return err
	}

	log.Info().Str("migration", last.Name).Msg("rolled back migration")
	return nil
}
