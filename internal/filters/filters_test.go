package filters

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func recipeNames(t *testing.T, db *gorm.DB, f RecipeFilter, viewer uint) []string {
	t.Helper()
	var recipes []models.Recipe
	q := f.Apply(db.Model(&models.Recipe{}), viewer).Order("recipes.id")
	require.NoError(t, q.Find(&recipes).Error)
	names := make([]string, 0, len(recipes))
	for _, r := range recipes {
		names = append(names, r.Name)
	}
	return names
}

func TestParseRecipeFilter(t *testing.T) {
	f, err := ParseRecipeFilter(url.Values{
		"author":       {"3"},
		"tags":         {"breakfast", "lunch", ""},
		"is_favorited": {"1"},
	})
	require.NoError(t, err)
	require.NotNil(t, f.Author)
	assert.Equal(t, "3", *f.Author)
	assert.Equal(t, []string{"breakfast", "lunch"}, f.Tags)
	require.NotNil(t, f.IsFavorited)
	assert.True(t, *f.IsFavorited)
	assert.Nil(t, f.IsInShoppingCart)

	_, err = ParseRecipeFilter(url.Values{"is_in_shopping_cart": {"maybe"}})
	assert.Error(t, err)
}

func TestRecipeFilter(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	alice := testhelpers.CreateUser(t, db, "alice")
	bob := testhelpers.CreateUser(t, db, "bob")
	breakfast := testhelpers.CreateTag(t, db, "breakfast")
	lunch := testhelpers.CreateTag(t, db, "lunch")
	dinner := testhelpers.CreateTag(t, db, "dinner")

	omelette := testhelpers.CreateRecipe(t, db, alice, "omelette", testhelpers.WithTags(breakfast, lunch))
	soup := testhelpers.CreateRecipe(t, db, alice, "soup", testhelpers.WithTags(lunch))
	testhelpers.CreateRecipe(t, db, bob, "steak", testhelpers.WithTags(dinner))

	require.NoError(t, db.Create(&models.Favorite{UserID: bob.ID, RecipeID: omelette.ID}).Error)
	require.NoError(t, db.Create(&models.ShoppingCart{UserID: bob.ID, RecipeID: soup.ID}).Error)

	str := func(s string) *string { return &s }
	yes, no := true, false

	tests := []struct {
		name   string
		filter RecipeFilter
		viewer uint
		want   []string
	}{
		{"no filter", RecipeFilter{}, 0, []string{"omelette", "soup", "steak"}},
		{"author", RecipeFilter{Author: str("1")}, 0, []string{"omelette", "soup"}},
		{"non-numeric author", RecipeFilter{Author: str("abc")}, 0, []string{}},
		{"missing author", RecipeFilter{Author: str("999")}, 0, []string{}},
		{"any tag without duplicates", RecipeFilter{Tags: []string{"breakfast", "lunch"}}, 0, []string{"omelette", "soup"}},
		{"unknown tag", RecipeFilter{Tags: []string{"brunch"}}, 0, []string{}},
		{"favorited", RecipeFilter{IsFavorited: &yes}, bob.ID, []string{"omelette"}},
		{"favorited false behaves like true", RecipeFilter{IsFavorited: &no}, bob.ID, []string{"omelette"}},
		{"favorited anonymous", RecipeFilter{IsFavorited: &yes}, 0, []string{}},
		{"in cart", RecipeFilter{IsInShoppingCart: &yes}, bob.ID, []string{"soup"}},
		{"combined with and", RecipeFilter{Tags: []string{"lunch"}, IsInShoppingCart: &yes}, bob.ID, []string{"soup"}},
		{"combined empty", RecipeFilter{Author: str("2"), Tags: []string{"lunch"}}, 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, recipeNames(t, db, tt.filter, tt.viewer))
		})
	}
}

func TestUserFilter(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	for _, name := range []string{"carol", "alice", "dave", "bob"} {
		testhelpers.CreateUser(t, db, name)
	}

	f := ParseUserFilter(url.Values{"limit": {"2"}})
	require.NotNil(t, f.Limit)

	var users []models.User
	require.NoError(t, f.Apply(db.Model(&models.User{})).Order("username").Find(&users).Error)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)

	assert.Nil(t, ParseUserFilter(url.Values{"limit": {"x"}}).Limit)
	assert.Nil(t, ParseUserFilter(url.Values{"limit": {"0"}}).Limit)
}

func TestIngredientFilterMatches(t *testing.T) {
	f := IngredientFilter{Name: "эг"}
	assert.True(t, f.Matches("Эгг"))
	assert.True(t, f.Matches("эгг"))
	assert.False(t, f.Matches("яйцо"))
	assert.False(t, f.Matches("бэг"))

	assert.True(t, IngredientFilter{}.Matches("anything"))
}

func TestIngredientFilterApplySkipsSQLite(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	assert.False(t, FoldsUnicode(db))

	testhelpers.CreateIngredient(t, db, "Эгг", "шт")
	var all []models.Ingredient
	require.NoError(t, IngredientFilter{Name: "zzz"}.Apply(db.Model(&models.Ingredient{})).Find(&all).Error)
	assert.Len(t, all, 1)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
}
