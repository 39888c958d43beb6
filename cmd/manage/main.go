// Command manage runs maintenance tasks against the configured database:
// migrations, fixture loading, admin creation and recipe statistics.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/loader"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "manage",
		Short:         "Foodgram maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(migrateCmd(), loadTagsCmd(), loadIngredientsCmd(), createAdminCmd(), statsCmd())
	return cmd
}

// openDB loads configuration, connects and migrates.
func openDB() (*gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})

	db, err := database.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := openDB()
			return err
		},
	}
}

func loadTagsCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "load-tags",
		Short: "Load tags from a name,color,slug CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd.Context(), path, "tags", loader.LoadTags)
		},
	}
	cmd.Flags().StringVar(&path, "path", "data/tags.csv", "CSV file to load")
	return cmd
}

func loadIngredientsCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "load-ingredients",
		Short: "Load ingredients from a name,measurement_unit CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd.Context(), path, "ingredients", loader.LoadIngredients)
		},
	}
	cmd.Flags().StringVar(&path, "path", "data/ingredients.csv", "CSV file to load")
	return cmd
}

type loadFunc func(ctx context.Context, r io.Reader, catalog loader.Catalog) (*loader.Result, error)

func runLoad(ctx context.Context, path, what string, load loadFunc) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	logging.Info().Str("path", path).Msgf("loading %s", what)
	res, err := load(ctx, f, service.NewCatalogService(db))
	if err != nil {
		return err
	}
	for _, rowErr := range res.Errors {
		logging.Warn().Int("line", rowErr.Line).Strs("row", rowErr.Row).Err(rowErr.Err).Msg("row skipped")
	}
	logging.Info().
		Int("created", res.Created).
		Int("existing", res.Existing).
		Int("failed", len(res.Errors)).
		Msgf("%s loaded", what)
	return nil
}

func createAdminCmd() *cobra.Command {
	var req types.CreateUserRequest
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Register a staff user who may edit every recipe",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validation.IsValidUsername(req.Username) {
				return fmt.Errorf("invalid username %q", req.Username)
			}
			if req.Email == "" || req.Password == "" {
				return fmt.Errorf("--email and --password are required")
			}
			db, err := openDB()
			if err != nil {
				return err
			}

			user, err := service.NewUserService(db).Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := db.WithContext(cmd.Context()).Model(user).Update("is_staff", true).Error; err != nil {
				return fmt.Errorf("grant staff: %w", err)
			}
			logging.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("admin created")
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&req.Username, "username", "admin", "admin username")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "Admin", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "Admin", "last name")
	cmd.Flags().StringVar(&req.Password, "password", "", "admin password")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Log how many users favorited each recipe",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var recipes []models.Recipe
			if err := db.WithContext(ctx).Select("id", "name").Order("id").Find(&recipes).Error; err != nil {
				return err
			}
			svc := service.NewRecipeService(db, nil, service.RecipeLimits{})
			for _, r := range recipes {
				n, err := svc.FavoritesCount(ctx, r.ID)
				if err != nil {
					return err
				}
				logging.Info().Uint("recipe_id", r.ID).Str("name", r.Name).Int64("favorites_count", n).Msg("recipe")
			}
			logging.Info().Int("recipes", len(recipes)).Msg("stats done")
			return nil
		},
	}
}
