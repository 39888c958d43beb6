package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/pdf"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/validation"
)

const testPageSize = 6

// testEnv bundles a router wired to real services on a private database.
type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
	media  string
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.RegisterGinValidators())

	db := testhelpers.SetupSQLiteDB(t)
	media := t.TempDir()
	auth := service.NewAuthService(db, "test-secret", time.Hour, nil)
	images := service.NewImageService(service.NewLocalImageStore(media, "/media/"))
	recipes := service.NewRecipeService(db, images, service.RecipeLimits{
		CookingTimeMin: 1, CookingTimeMax: 32000, AmountMin: 1, AmountMax: 32000,
	})

	router := gin.New()
	RegisterRoutes(router, db, Handlers{
		Auth:    NewAuthHandler(auth),
		Users:   NewUserHandler(service.NewUserService(db), auth, testPageSize),
		Catalog: NewCatalogHandler(service.NewCatalogService(db)),
		Recipes: NewRecipeHandler(
			recipes,
			service.NewRelationService(db),
			service.NewShoppingListService(db, pdf.NewShoppingListRenderer("", "")),
			auth,
			testPageSize,
		),
	})
	return &testEnv{router: router, db: db, auth: auth, media: media}
}

// createUserAndToken inserts a user and signs a token for it.
func (e *testEnv) createUserAndToken(t *testing.T, username string) (*models.User, string) {
	t.Helper()
	user := testhelpers.CreateUser(t, e.db, username)
	token, err := e.auth.GenerateToken(user)
	require.NoError(t, err)
	return user, token
}

// performRequest sends body as JSON. An empty token makes an anonymous
// request.
func (e *testEnv) performRequest(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
