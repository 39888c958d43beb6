// Package filters narrows listing queries from request parameters.
package filters

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// UserFilter truncates the user listing to the first Limit users in
// username order.
type UserFilter struct {
	Limit *int
}

// ParseUserFilter reads the limit parameter. Non-numeric or non-positive
// values are ignored.
func ParseUserFilter(q url.Values) UserFilter {
	var f UserFilter
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		f.Limit = &n
	}
	return f
}

// Apply expects db to target the users table.
func (f UserFilter) Apply(db *gorm.DB) *gorm.DB {
	if f.Limit == nil {
		return db
	}
	first := db.Session(&gorm.Session{NewDB: true}).
		Table("users").Select("id").Order("username").Limit(*f.Limit)
	return db.Where("users.id IN (?)", first)
}

// IngredientFilter matches ingredients whose name starts with Name,
// ignoring case.
type IngredientFilter struct {
	Name string
}

func ParseIngredientFilter(q url.Values) IngredientFilter {
	return IngredientFilter{Name: strings.TrimSpace(q.Get("name"))}
}

// Apply filters in SQL on postgres. Other dialects fold only ASCII case in
// LOWER and LIKE, so callers there must use Matches on the loaded rows.
func (f IngredientFilter) Apply(db *gorm.DB) *gorm.DB {
	if f.Name == "" || !FoldsUnicode(db) {
		return db
	}
	return db.Where("ingredients.name ILIKE ?", escapeLike(f.Name)+"%")
}

// Matches reports whether name passes the filter.
func (f IngredientFilter) Matches(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), strings.ToLower(f.Name))
}

// FoldsUnicode reports whether the dialect compares non-ASCII text
// case-insensitively.
func FoldsUnicode(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// RecipeFilter narrows the recipe listing. Every present predicate is
// combined with AND.
type RecipeFilter struct {
	// Author is the raw author parameter; a non-numeric value matches nothing.
	Author *string
	// Tags keeps recipes carrying any of the slugs.
	Tags []string
	// IsFavorited and IsInShoppingCart restrict the listing to recipes the
	// viewer has favorited or put in the cart when the parameter is present.
	IsFavorited      *bool
	IsInShoppingCart *bool
}

// ParseRecipeFilter reads author, tags, is_favorited and is_in_shopping_cart.
func ParseRecipeFilter(q url.Values) (RecipeFilter, error) {
	var f RecipeFilter
	if q.Has("author") {
		author := q.Get("author")
		f.Author = &author
	}
	for _, slug := range q["tags"] {
		if slug = strings.TrimSpace(slug); slug != "" {
			f.Tags = append(f.Tags, slug)
		}
	}

	var err error
	if f.IsFavorited, err = parseBool(q, "is_favorited"); err != nil {
		return f, err
	}
	if f.IsInShoppingCart, err = parseBool(q, "is_in_shopping_cart"); err != nil {
		return f, err
	}
	return f, nil
}

func parseBool(q url.Values, key string) (*bool, error) {
	if !q.Has(key) {
		return nil, nil
	}
	var v bool
	switch strings.ToLower(q.Get(key)) {
	case "1", "true":
		v = true
	case "0", "false":
		v = false
	default:
		return nil, fmt.Errorf("%s must be one of 0, 1, true, false", key)
	}
	return &v, nil
}

// Apply expects db to target the recipes table. viewerID is 0 for
// anonymous requests.
func (f RecipeFilter) Apply(db *gorm.DB, viewerID uint) *gorm.DB {
	fresh := func() *gorm.DB { return db.Session(&gorm.Session{NewDB: true}) }

	if f.Author != nil {
		id, err := strconv.ParseUint(*f.Author, 10, 64)
		if err != nil {
			return db.Where("1 = 0")
		}
		db = db.Where("recipes.author_id = ?", uint(id))
	}

	if len(f.Tags) > 0 {
		tagged := fresh().Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.Tags)
		db = db.Where("recipes.id IN (?)", tagged)
	}

	// TODO: confirm with product whether is_favorited=0 should list the
	// recipes the viewer has NOT favorited; both values currently restrict
	// to the favorited set.
	if f.IsFavorited != nil {
		if viewerID == 0 {
			return db.Where("1 = 0")
		}
		favorited := fresh().Table("favorites").Select("recipe_id").Where("user_id = ?", viewerID)
		db = db.Where("recipes.id IN (?)", favorited)
	}

	if f.IsInShoppingCart != nil {
		if viewerID == 0 {
			return db.Where("1 = 0")
		}
		inCart := fresh().Table("shopping_carts").Select("recipe_id").Where("user_id = ?", viewerID)
		db = db.Where("recipes.id IN (?)", inCart)
	}

	return db
}
