package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/filters"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

const maxRecipeNameLength = 200

// RecipeLimits bounds cooking time and ingredient amounts.
type RecipeLimits struct {
	CookingTimeMin int
	CookingTimeMax int
	AmountMin      int
	AmountMax      int
}

// RecipeService owns recipes together with their tags and ingredient
// amounts. A viewer id of 0 means an anonymous request.
type RecipeService struct {
	db     *gorm.DB
	images *ImageService
	limits RecipeLimits
}

func NewRecipeService(db *gorm.DB, images *ImageService, limits RecipeLimits) *RecipeService {
	return &RecipeService{db: db, images: images, limits: limits}
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("RecipeIngredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("RecipeIngredients.Ingredient")
}

// List returns one page of recipes, newest first.
func (s *RecipeService) List(ctx context.Context, viewer uint, f filters.RecipeFilter, p types.Pagination) ([]types.RecipeResponse, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := f.Apply(db.Model(&models.Recipe{}), viewer).Count(&total).Error; err != nil {
		return nil, 0, NewInternalError(err)
	}

	var recipes []models.Recipe
	if err := withDetails(f.Apply(db.Model(&models.Recipe{}), viewer)).
		Order("recipes.pub_date DESC").Order("recipes.id DESC").
		Offset(p.Offset()).Limit(p.Size).
		Find(&recipes).Error; err != nil {
		return nil, 0, NewInternalError(err)
	}

	out, err := s.present(ctx, viewer, recipes)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Get returns one recipe as seen by viewer.
func (s *RecipeService) Get(ctx context.Context, viewer, id uint) (*types.RecipeResponse, error) {
	recipe, err := s.load(ctx, s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	out, err := s.present(ctx, viewer, []models.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Create validates req and inserts a recipe authored by viewer.
func (s *RecipeService) Create(ctx context.Context, viewer uint, req *types.RecipeWriteRequest) (*types.RecipeResponse, error) {
	if err := s.validate(ctx, req, false); err != nil {
		return nil, err
	}

	image, err := s.saveImage(ctx, req)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    viewer,
		Name:        strings.TrimSpace(*req.Name),
		Text:        *req.Text,
		Image:       image,
		CookingTime: *req.CookingTime,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		return s.writeRelations(tx, &recipe, *req.Tags, *req.Ingredients)
	})
	if err != nil {
		s.images.Delete(ctx, image)
		return nil, NewInternalError(fmt.Errorf("create recipe: %w", err))
	}

	logging.Ctx(ctx).Info().Uint("recipe_id", recipe.ID).Uint("author_id", viewer).Msg("recipe created")
	return s.Get(ctx, viewer, recipe.ID)
}

// Update applies req to recipe id. Tags and ingredients are replaced
// wholesale; other fields change only when present.
func (s *RecipeService) Update(ctx context.Context, viewer, id uint, req *types.RecipeWriteRequest) (*types.RecipeResponse, error) {
	recipe, err := s.authorize(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, req, true); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Text != nil {
		updates["text"] = *req.Text
	}
	if req.CookingTime != nil {
		updates["cooking_time"] = *req.CookingTime
	}
	oldImage := ""
	if req.HasImage() {
		image, err := s.saveImage(ctx, req)
		if err != nil {
			return nil, err
		}
		updates["image"] = image
		oldImage = recipe.Image
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(recipe).Omit(clause.Associations).Updates(updates).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return s.writeRelations(tx, recipe, *req.Tags, *req.Ingredients)
	})
	if err != nil {
		if image, ok := updates["image"].(string); ok {
			s.images.Delete(ctx, image)
		}
		return nil, NewInternalError(fmt.Errorf("update recipe: %w", err))
	}
	if oldImage != "" {
		s.images.Delete(ctx, oldImage)
	}

	logging.Ctx(ctx).Info().Uint("recipe_id", recipe.ID).Msg("recipe updated")
	return s.Get(ctx, viewer, recipe.ID)
}

// Delete removes recipe id and every row that refers to it.
func (s *RecipeService) Delete(ctx context.Context, viewer, id uint) error {
	recipe, err := s.authorize(ctx, viewer, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{&models.Favorite{}, &models.ShoppingCart{}, &models.RecipeIngredient{}} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(dependent).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
	if err != nil {
		return NewInternalError(fmt.Errorf("delete recipe: %w", err))
	}
	s.images.Delete(ctx, recipe.Image)

	logging.Ctx(ctx).Info().Uint("recipe_id", recipe.ID).Msg("recipe deleted")
	return nil
}

// FavoritesCount returns how many users favorited recipe id.
func (s *RecipeService) FavoritesCount(ctx context.Context, id uint) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Favorite{}).Where("recipe_id = ?", id).Count(&n).Error; err != nil {
		return 0, NewInternalError(err)
	}
	return n, nil
}

func (s *RecipeService) load(ctx context.Context, db *gorm.DB, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := withDetails(db).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("recipe", id)
		}
		return nil, NewInternalError(err)
	}
	return &recipe, nil
}

// authorize loads recipe id and checks viewer may modify it.
func (s *RecipeService) authorize(ctx context.Context, viewer, id uint) (*models.Recipe, error) {
	db := s.db.WithContext(ctx)
	var recipe models.Recipe
	if err := db.First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("recipe", id)
		}
		return nil, NewInternalError(err)
	}
	if recipe.AuthorID == viewer {
		return &recipe, nil
	}

	var user models.User
	if err := db.Select("id", "is_staff").First(&user, viewer).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewInternalError(err)
	}
	if !user.IsStaff {
		return nil, NewForbiddenError("you do not have permission to modify this recipe")
	}
	return &recipe, nil
}

func (s *RecipeService) writeRelations(tx *gorm.DB, recipe *models.Recipe, tagIDs []uint, ingredients []types.RecipeIngredientInput) error {
	var tags []models.Tag
	if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return err
	}
	if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
		return err
	}

	rows := make([]models.RecipeIngredient, 0, len(ingredients))
	for _, in := range ingredients {
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: in.ID,
			Amount:       in.Amount,
		})
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

func (s *RecipeService) saveImage(ctx context.Context, req *types.RecipeWriteRequest) (string, error) {
	if len(req.ImageData) > 0 {
		return s.images.Save(ctx, req.ImageData, req.ImageExt)
	}
	return s.images.SaveDataURI(ctx, *req.Image)
}

// validate collects every field problem of req. partial is set for updates,
// where scalar fields may be omitted but tags and ingredients may not.
func (s *RecipeService) validate(ctx context.Context, req *types.RecipeWriteRequest, partial bool) error {
	fields := map[string]string{}

	switch {
	case req.Ingredients == nil:
		fields["ingredients"] = "this field is required"
	case len(*req.Ingredients) == 0:
		fields["ingredients"] = "at least one ingredient is required"
	default:
		seen := make(map[uint]bool, len(*req.Ingredients))
		for _, in := range *req.Ingredients {
			if in.ID == 0 {
				fields["ingredients"] = "every ingredient needs an id"
				break
			}
			if seen[in.ID] {
				fields["ingredients"] = "ingredients must not repeat"
				break
			}
			seen[in.ID] = true
			if in.Amount < s.limits.AmountMin || in.Amount > s.limits.AmountMax {
				fields["ingredients"] = fmt.Sprintf("amount must be between %d and %d", s.limits.AmountMin, s.limits.AmountMax)
				break
			}
		}
	}

	switch {
	case req.Tags == nil:
		fields["tags"] = "this field is required"
	case len(*req.Tags) == 0:
		fields["tags"] = "at least one tag is required"
	default:
		seen := make(map[uint]bool, len(*req.Tags))
		for _, id := range *req.Tags {
			if seen[id] {
				fields["tags"] = "tags must not repeat"
				break
			}
			seen[id] = true
		}
	}

	if req.Name == nil {
		if !partial {
			fields["name"] = "this field is required"
		}
	} else if name := strings.TrimSpace(*req.Name); name == "" {
		fields["name"] = "this field may not be blank"
	} else if len([]rune(name)) > maxRecipeNameLength {
		fields["name"] = fmt.Sprintf("ensure this field has no more than %d characters", maxRecipeNameLength)
	}

	if req.Text == nil {
		if !partial {
			fields["text"] = "this field is required"
		}
	} else if strings.TrimSpace(*req.Text) == "" {
		fields["text"] = "this field may not be blank"
	}

	if req.CookingTime == nil {
		if !partial {
			fields["cooking_time"] = "this field is required"
		}
	} else if *req.CookingTime < s.limits.CookingTimeMin || *req.CookingTime > s.limits.CookingTimeMax {
		fields["cooking_time"] = fmt.Sprintf("cooking time must be between %d and %d", s.limits.CookingTimeMin, s.limits.CookingTimeMax)
	}

	if !req.HasImage() {
		if !partial || req.Image != nil {
			fields["image"] = "this field is required"
		}
	}

	if len(fields) > 0 {
		return NewFieldValidationError(fields)
	}
	return s.checkReferences(ctx, req, fields)
}

// checkReferences rejects tag and ingredient ids that do not exist.
func (s *RecipeService) checkReferences(ctx context.Context, req *types.RecipeWriteRequest, fields map[string]string) error {
	db := s.db.WithContext(ctx)

	var n int64
	if err := db.Model(&models.Tag{}).Where("id IN ?", *req.Tags).Count(&n).Error; err != nil {
		return NewInternalError(err)
	}
	if int(n) != len(*req.Tags) {
		fields["tags"] = "one or more tags do not exist"
	}

	ids := make([]uint, 0, len(*req.Ingredients))
	for _, in := range *req.Ingredients {
		ids = append(ids, in.ID)
	}
	if err := db.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
		return NewInternalError(err)
	}
	if int(n) != len(ids) {
		fields["ingredients"] = "one or more ingredients do not exist"
	}

	if len(fields) > 0 {
		return NewFieldValidationError(fields)
	}
	return nil
}

// present computes the per-viewer flags for recipes in three batched
// queries.
func (s *RecipeService) present(ctx context.Context, viewer uint, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	db := s.db.WithContext(ctx)

	ids := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	favorited, err := relatedRecipes(db, &models.Favorite{}, viewer, ids)
	if err != nil {
		return nil, err
	}
	inCart, err := relatedRecipes(db, &models.ShoppingCart{}, viewer, ids)
	if err != nil {
		return nil, err
	}
	subscribed, err := subscribedTo(db, viewer, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]types.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		out = append(out, types.NewRecipeResponse(r, favorited[r.ID], inCart[r.ID], subscribed[r.AuthorID]))
	}
	return out, nil
}

// relatedRecipes reports which of recipeIDs viewer has in the relation
// table of model.
func relatedRecipes(db *gorm.DB, model interface{}, viewer uint, recipeIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(recipeIDs))
	if viewer == 0 || len(recipeIDs) == 0 {
		return out, nil
	}
	var ids []uint
	if err := db.Model(model).
		Where("user_id = ? AND recipe_id IN ?", viewer, recipeIDs).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, NewInternalError(err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
