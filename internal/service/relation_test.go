package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestRelations(t *testing.T) {
	for _, rel := range []service.Relation{service.RelationFavorite, service.RelationShoppingCart} {
		t.Run(string(rel), func(t *testing.T) {
			db := testhelpers.SetupSQLiteDB(t)
			author := testhelpers.CreateUser(t, db, "chef")
			user := testhelpers.CreateUser(t, db, "guest")
			recipe := testhelpers.CreateRecipe(t, db, author, "soup")
			svc := service.NewRelationService(db)
			ctx := context.Background()

			short, err := svc.Add(ctx, rel, user.ID, recipe.ID)
			require.NoError(t, err)
			assert.Equal(t, recipe.ID, short.ID)
			assert.Equal(t, "soup", short.Name)
			assert.Equal(t, recipe.Image, short.Image)
			assert.Equal(t, recipe.CookingTime, short.CookingTime)

			_, err = svc.Add(ctx, rel, user.ID, recipe.ID)
			assert.Equal(t, service.KindConflict, service.KindOf(err), "duplicate add")

			_, err = svc.Add(ctx, rel, user.ID, 999)
			assert.Equal(t, service.KindValidation, service.KindOf(err), "missing recipe on add")

			require.NoError(t, svc.Remove(ctx, rel, user.ID, recipe.ID))

			err = svc.Remove(ctx, rel, user.ID, recipe.ID)
			assert.Equal(t, service.KindValidation, service.KindOf(err), "not on the list")

			err = svc.Remove(ctx, rel, user.ID, 999)
			assert.Equal(t, service.KindNotFound, service.KindOf(err), "missing recipe on remove")
		})
	}
}

func TestRelationsAreIndependent(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	author := testhelpers.CreateUser(t, db, "chef")
	user := testhelpers.CreateUser(t, db, "guest")
	recipe := testhelpers.CreateRecipe(t, db, author, "soup")
	svc := service.NewRelationService(db)
	ctx := context.Background()

	_, err := svc.Add(ctx, service.RelationFavorite, user.ID, recipe.ID)
	require.NoError(t, err)
	_, err = svc.Add(ctx, service.RelationShoppingCart, user.ID, recipe.ID)
	require.NoError(t, err)
	_, err = svc.Add(ctx, service.RelationFavorite, author.ID, recipe.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, service.RelationFavorite, user.ID, recipe.ID))

	var favorites, carts int64
	db.Model(&models.Favorite{}).Count(&favorites)
	db.Model(&models.ShoppingCart{}).Count(&carts)
	assert.EqualValues(t, 1, favorites)
	assert.EqualValues(t, 1, carts)
}
