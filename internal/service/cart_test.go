package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

type recordingRenderer struct {
	items []types.ShoppingListItem
	err   error
}

func (r *recordingRenderer) Render(items []types.ShoppingListItem) ([]byte, error) {
	r.items = items
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-fake"), nil
}

func TestShoppingListSumsAmounts(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	author := testhelpers.CreateUser(t, db, "chef")
	user := testhelpers.CreateUser(t, db, "guest")
	sugar := testhelpers.CreateIngredient(t, db, "sugar", "g")
	eggs := testhelpers.CreateIngredient(t, db, "eggs", "pcs")
	milk := testhelpers.CreateIngredient(t, db, "milk", "ml")

	cake := testhelpers.CreateRecipe(t, db, author, "cake",
		testhelpers.WithIngredient(sugar, 100), testhelpers.WithIngredient(eggs, 3))
	cookies := testhelpers.CreateRecipe(t, db, author, "cookies",
		testhelpers.WithIngredient(sugar, 50))
	testhelpers.CreateRecipe(t, db, author, "latte", testhelpers.WithIngredient(milk, 200))

	for _, r := range []*models.Recipe{cake, cookies} {
		require.NoError(t, db.Create(&models.ShoppingCart{UserID: user.ID, RecipeID: r.ID}).Error)
	}
	svc := service.NewShoppingListService(db, &recordingRenderer{})

	items, err := svc.Items(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, []types.ShoppingListItem{
		{IngredientID: eggs.ID, Name: "eggs", MeasurementUnit: "pcs", Amount: 3},
		{IngredientID: sugar.ID, Name: "sugar", MeasurementUnit: "g", Amount: 150},
	}, items)

	items, err = svc.Items(context.Background(), author.ID)
	require.NoError(t, err)
	assert.Empty(t, items, "another user's cart is empty")
}

func TestShoppingListExport(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	author := testhelpers.CreateUser(t, db, "chef")
	sugar := testhelpers.CreateIngredient(t, db, "sugar", "g")
	cake := testhelpers.CreateRecipe(t, db, author, "cake", testhelpers.WithIngredient(sugar, 100))
	require.NoError(t, db.Create(&models.ShoppingCart{UserID: author.ID, RecipeID: cake.ID}).Error)

	renderer := &recordingRenderer{}
	svc := service.NewShoppingListService(db, renderer)

	doc, err := svc.Export(context.Background(), author.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), doc)
	require.Len(t, renderer.items, 1)
	assert.EqualValues(t, 100, renderer.items[0].Amount)

	renderer.err = errors.New("boom")
	_, err = svc.Export(context.Background(), author.ID)
	assert.Equal(t, service.KindInternal, service.KindOf(err))
}
