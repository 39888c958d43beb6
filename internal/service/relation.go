package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// Relation names a user-to-recipe list.
type Relation string

const (
	RelationFavorite     Relation = "favorite"
	RelationShoppingCart Relation = "shopping_cart"
)

func (r Relation) model() interface{} {
	if r == RelationShoppingCart {
		return &models.ShoppingCart{}
	}
	return &models.Favorite{}
}

func (r Relation) row(userID, recipeID uint) interface{} {
	if r == RelationShoppingCart {
		return &models.ShoppingCart{UserID: userID, RecipeID: recipeID}
	}
	return &models.Favorite{UserID: userID, RecipeID: recipeID}
}

func (r Relation) label() string {
	if r == RelationShoppingCart {
		return "shopping cart"
	}
	return "favorites"
}

// RelationService adds recipes to and removes them from a user's favorites
// and shopping cart.
type RelationService struct {
	db *gorm.DB
}

func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{db: db}
}

// Add puts recipeID on the rel list of userID. A missing recipe is a
// validation error rather than not-found.
func (s *RelationService) Add(ctx context.Context, rel Relation, userID, recipeID uint) (*types.ShortRecipeResponse, error) {
	db := s.db.WithContext(ctx)

	var recipe models.Recipe
	if err := db.First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("cannot add a recipe that does not exist")
		}
		return nil, NewInternalError(err)
	}

	exists, err := s.exists(db, rel, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewConflictError("recipe is already in " + rel.label())
	}

	if err := db.Create(rel.row(userID, recipeID)).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, NewConflictError("recipe is already in " + rel.label())
		}
		return nil, NewInternalError(err)
	}

	logging.Ctx(ctx).Info().
		Str("relation", string(rel)).
		Uint("user_id", userID).
		Uint("recipe_id", recipeID).
		Msg("recipe added")
	short := types.NewShortRecipeResponse(&recipe)
	return &short, nil
}

// Remove takes recipeID off the rel list of userID.
func (s *RelationService) Remove(ctx context.Context, rel Relation, userID, recipeID uint) error {
	db := s.db.WithContext(ctx)

	var n int64
	if err := db.Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&n).Error; err != nil {
		return NewInternalError(err)
	}
	if n == 0 {
		return NewNotFoundError("recipe", recipeID)
	}

	res := db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(rel.model())
	if res.Error != nil {
		return NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return NewValidationError("recipe is not in " + rel.label())
	}

	logging.Ctx(ctx).Info().
		Str("relation", string(rel)).
		Uint("user_id", userID).
		Uint("recipe_id", recipeID).
		Msg("recipe removed")
	return nil
}

func (s *RelationService) exists(db *gorm.DB, rel Relation, userID, recipeID uint) (bool, error) {
	var n int64
	if err := db.Model(rel.model()).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&n).Error; err != nil {
		return false, NewInternalError(err)
	}
	return n > 0, nil
}
