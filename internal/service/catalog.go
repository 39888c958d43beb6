package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/filters"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// CatalogService serves the read-only tag and ingredient reference data.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]types.TagResponse, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("id").Find(&tags).Error; err != nil {
		return nil, NewInternalError(err)
	}
	out := make([]types.TagResponse, 0, len(tags))
	for i := range tags {
		out = append(out, types.NewTagResponse(&tags[i]))
	}
	return out, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*types.TagResponse, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("tag", id)
		}
		return nil, NewInternalError(err)
	}
	resp := types.NewTagResponse(&tag)
	return &resp, nil
}

// ListIngredients returns ingredients ordered by name, narrowed by f.
func (s *CatalogService) ListIngredients(ctx context.Context, f filters.IngredientFilter) ([]types.IngredientResponse, error) {
	db := s.db.WithContext(ctx)
	var ingredients []models.Ingredient
	if err := f.Apply(db.Model(&models.Ingredient{})).Order("name").Order("id").Find(&ingredients).Error; err != nil {
		return nil, NewInternalError(err)
	}

	postFilter := f.Name != "" && !filters.FoldsUnicode(db)
	out := make([]types.IngredientResponse, 0, len(ingredients))
	for i := range ingredients {
		if postFilter && !f.Matches(ingredients[i].Name) {
			continue
		}
		out = append(out, types.NewIngredientResponse(&ingredients[i]))
	}
	return out, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*types.IngredientResponse, error) {
	var ing models.Ingredient
	if err := s.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("ingredient", id)
		}
		return nil, NewInternalError(err)
	}
	resp := types.NewIngredientResponse(&ing)
	return &resp, nil
}

// GetOrCreateTag inserts tag unless a tag with the same slug exists, in
// which case tag is overwritten with the stored row. It reports whether a
// row was created.
func (s *CatalogService) GetOrCreateTag(ctx context.Context, tag *models.Tag) (bool, error) {
	return getOrCreate(s.db.WithContext(ctx), tag, "slug = ?", tag.Slug)
}

// GetOrCreateIngredient inserts ing unless the (name, unit) pair exists.
func (s *CatalogService) GetOrCreateIngredient(ctx context.Context, ing *models.Ingredient) (bool, error) {
	return getOrCreate(s.db.WithContext(ctx), ing,
		"name = ? AND measurement_unit = ?", ing.Name, ing.MeasurementUnit)
}

func getOrCreate(db *gorm.DB, row interface{}, query string, args ...interface{}) (bool, error) {
	err := db.Where(query, args...).Take(row).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := db.Create(row).Error; err != nil {
		return false, err
	}
	return true, nil
}
