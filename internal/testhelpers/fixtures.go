package testhelpers

import (
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// TestPassword is the password of every user created by CreateUser.
const TestPassword = "Str0ng-pass!"

// CreateUser inserts a user named username with TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "First " + username,
		LastName:  "Last " + username,
	}
	if err := u.SetPassword(TestPassword); err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return u
}

// CreateTag inserts a tag whose name, color and slug derive from slug.
func CreateTag(t *testing.T, db *gorm.DB, slug string) *models.Tag {
	t.Helper()
	var n int64
	db.Model(&models.Tag{}).Count(&n)
	tag := &models.Tag{Name: "Tag " + slug, Color: fmt.Sprintf("#%06X", 0x100000+n), Slug: slug}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create tag %s: %v", slug, err)
	}
	return tag
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ing).Error; err != nil {
		t.Fatalf("failed to create ingredient %s: %v", name, err)
	}
	return ing
}

// RecipeOption customizes CreateRecipe.
type RecipeOption func(*models.Recipe)

// WithTags attaches tags to the recipe.
func WithTags(tags ...*models.Tag) RecipeOption {
	return func(r *models.Recipe) {
		for _, tag := range tags {
			r.Tags = append(r.Tags, *tag)
		}
	}
}

// WithIngredient adds amount of ing to the recipe.
func WithIngredient(ing *models.Ingredient, amount int) RecipeOption {
	return func(r *models.Recipe) {
		r.RecipeIngredients = append(r.RecipeIngredients, models.RecipeIngredient{
			IngredientID: ing.ID,
			Amount:       amount,
		})
	}
}

// CreateRecipe inserts a recipe by author.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, opts ...RecipeOption) *models.Recipe {
	t.Helper()
	r := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        "Cook " + name,
		Image:       "/media/recipes/images/" + name + ".png",
		CookingTime: 15,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}
	return r
}
