package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
)

// postgresIndexes are created after auto-migration. They back the
// case-insensitive ingredient search and the newest-first recipe listing.
var postgresIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_ingredients_lower_name ON ingredients (LOWER(name) text_pattern_ops)`,
	`CREATE INDEX IF NOT EXISTS idx_recipes_pub_date_desc ON recipes (pub_date DESC, id DESC)`,
}

// RunMigrations creates or updates every table used by the application.
func RunMigrations(db *gorm.DB) error {
	logging.Info().Str("dialect", db.Dialector.Name()).Msg("running auto-migration")

	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	if db.Dialector.Name() == "postgres" {
		for _, stmt := range postgresIndexes {
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}
		}
	}

	logging.Info().Msg("migrations applied")
	return nil
}
