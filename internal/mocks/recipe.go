package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/foodgram/backend/internal/filters"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) List(ctx context.Context, viewer uint, f filters.RecipeFilter, p types.Pagination) ([]types.RecipeResponse, int64, error) {
	args := m.Called(ctx, viewer, f, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]types.RecipeResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeService) Get(ctx context.Context, viewer, id uint) (*types.RecipeResponse, error) {
	args := m.Called(ctx, viewer, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) Create(ctx context.Context, viewer uint, req *types.RecipeWriteRequest) (*types.RecipeResponse, error) {
	args := m.Called(ctx, viewer, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) Update(ctx context.Context, viewer, id uint, req *types.RecipeWriteRequest) (*types.RecipeResponse, error) {
	args := m.Called(ctx, viewer, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) Delete(ctx context.Context, viewer, id uint) error {
	args := m.Called(ctx, viewer, id)
	return args.Error(0)
}

// MockRelationService mocks favorites and the shopping cart.
type MockRelationService struct {
	mock.Mock
}

func (m *MockRelationService) Add(ctx context.Context, rel service.Relation, userID, recipeID uint) (*types.ShortRecipeResponse, error) {
	args := m.Called(ctx, rel, userID, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ShortRecipeResponse), args.Error(1)
}

func (m *MockRelationService) Remove(ctx context.Context, rel service.Relation, userID, recipeID uint) error {
	args := m.Called(ctx, rel, userID, recipeID)
	return args.Error(0)
}

// MockShoppingListService mocks the shopping list export.
type MockShoppingListService struct {
	mock.Mock
}

func (m *MockShoppingListService) Export(ctx context.Context, userID uint) ([]byte, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
