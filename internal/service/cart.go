package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// ShoppingListRenderer turns aggregated items into a document.
type ShoppingListRenderer interface {
	Render(items []types.ShoppingListItem) ([]byte, error)
}

// ShoppingListService aggregates the ingredients of a user's cart.
type ShoppingListService struct {
	db       *gorm.DB
	renderer ShoppingListRenderer
}

func NewShoppingListService(db *gorm.DB, renderer ShoppingListRenderer) *ShoppingListService {
	return &ShoppingListService{db: db, renderer: renderer}
}

// Items sums the amount of every ingredient over the recipes in the cart of
// userID, ordered by ingredient name.
func (s *ShoppingListService) Items(ctx context.Context, userID uint) ([]types.ShoppingListItem, error) {
	db := s.db.WithContext(ctx)
	inCart := db.Session(&gorm.Session{NewDB: true}).
		Model(&models.ShoppingCart{}).Select("recipe_id").Where("user_id = ?", userID)

	var items []types.ShoppingListItem
	err := db.Model(&models.RecipeIngredient{}).
		Select("ingredients.id AS ingredient_id, ingredients.name AS name, " +
			"ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("recipe_ingredients.recipe_id IN (?)", inCart).
		Group("ingredients.id, ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").Order("ingredients.id").
		Scan(&items).Error
	if err != nil {
		return nil, NewInternalError(fmt.Errorf("aggregate shopping list: %w", err))
	}
	return items, nil
}

// Export renders the shopping list of userID.
func (s *ShoppingListService) Export(ctx context.Context, userID uint) ([]byte, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return nil, err
	}
	doc, err := s.renderer.Render(items)
	if err != nil {
		return nil, NewInternalError(fmt.Errorf("render shopping list: %w", err))
	}
	logging.Ctx(ctx).Info().Uint("user_id", userID).Int("items", len(items)).Msg("shopping list exported")
	return doc, nil
}
