package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/filters"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// IUserService defines the interface for user and subscription operations
type IUserService interface {
	Create(ctx context.Context, req types.CreateUserRequest) (*models.User, error)
	Get(ctx context.Context, viewer, id uint) (*types.UserResponse, error)
	List(ctx context.Context, viewer uint, f filters.UserFilter, p types.Pagination) ([]types.UserResponse, int64, error)
	SetPassword(ctx context.Context, userID uint, current, next string) error
	Subscribe(ctx context.Context, viewer, authorID uint, recipesLimit *int) (*types.SubscriptionResponse, error)
	Unsubscribe(ctx context.Context, viewer, authorID uint) error
	Subscriptions(ctx context.Context, viewer uint, p types.Pagination, recipesLimit *int) ([]types.SubscriptionResponse, int64, error)
}

// ICatalogService defines the interface for tag and ingredient lookups
type ICatalogService interface {
	ListTags(ctx context.Context) ([]types.TagResponse, error)
	GetTag(ctx context.Context, id uint) (*types.TagResponse, error)
	ListIngredients(ctx context.Context, f filters.IngredientFilter) ([]types.IngredientResponse, error)
	GetIngredient(ctx context.Context, id uint) (*types.IngredientResponse, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	List(ctx context.Context, viewer uint, f filters.RecipeFilter, p types.Pagination) ([]types.RecipeResponse, int64, error)
	Get(ctx context.Context, viewer, id uint) (*types.RecipeResponse, error)
	Create(ctx context.Context, viewer uint, req *types.RecipeWriteRequest) (*types.RecipeResponse, error)
	Update(ctx context.Context, viewer, id uint, req *types.RecipeWriteRequest) (*types.RecipeResponse, error)
	Delete(ctx context.Context, viewer, id uint) error
}

// IRelationService defines the interface for favorites and the shopping cart
type IRelationService interface {
	Add(ctx context.Context, rel Relation, userID, recipeID uint) (*types.ShortRecipeResponse, error)
	Remove(ctx context.Context, rel Relation, userID, recipeID uint) error
}

// IShoppingListService defines the interface for the shopping list export
type IShoppingListService interface {
	Export(ctx context.Context, userID uint) ([]byte, error)
}

var (
	_ IAuthService         = (*AuthService)(nil)
	_ IUserService         = (*UserService)(nil)
	_ ICatalogService      = (*CatalogService)(nil)
	_ IRecipeService       = (*RecipeService)(nil)
	_ IRelationService     = (*RelationService)(nil)
	_ IShoppingListService = (*ShoppingListService)(nil)
)
