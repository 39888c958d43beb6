package loader_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/loader"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestLoadTags(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	catalog := service.NewCatalogService(db)
	ctx := context.Background()

	csv := strings.Join([]string{
		"Завтрак,#E26C2D,breakfast",
		"Обед,#49B64E,lunch",
		"Ужин,green,dinner",
		"Полдник,#8775D2",
		"Завтрак,#E26C2D,breakfast",
	}, "\n")

	res, err := loader.LoadTags(ctx, strings.NewReader(csv), catalog)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Existing)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 3, res.Errors[0].Line)
	assert.Contains(t, res.Errors[0].Error(), "color: color must be a hex value")
	assert.Equal(t, 4, res.Errors[1].Line)

	var n int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)

	res, err = loader.LoadTags(ctx, strings.NewReader(csv), catalog)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 3, res.Existing)
}

func TestLoadIngredients(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	catalog := service.NewCatalogService(db)

	csv := "абрикосовое варенье,г\nабрикосы,г\nмолоко,мл\nмолоко,г\nбез единицы\n,шт\n"
	res, err := loader.LoadIngredients(context.Background(), strings.NewReader(csv), catalog)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Created)
	assert.Equal(t, 0, res.Existing)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 5, res.Errors[0].Line)
	assert.Equal(t, 6, res.Errors[1].Line)
	assert.Equal(t, "name: this field is required", res.Errors[1].Err.Error())
}

type failingCatalog struct{}

func (failingCatalog) GetOrCreateTag(context.Context, *models.Tag) (bool, error) {
	return false, errors.New("database is down")
}

func (failingCatalog) GetOrCreateIngredient(context.Context, *models.Ingredient) (bool, error) {
	return false, errors.New("database is down")
}

func TestLoadContinuesPastStoreErrors(t *testing.T) {
	res, err := loader.LoadIngredients(context.Background(), strings.NewReader("соль,г\nсахар,г\n"), failingCatalog{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Len(t, res.Errors, 2)
}

func TestLoadStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := loader.LoadIngredients(ctx, strings.NewReader("соль,г\n"), failingCatalog{})
	assert.ErrorIs(t, err, context.Canceled)
}
