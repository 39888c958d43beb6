package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/filters"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/pdf"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// maxImageBytes caps a multipart image upload.
const maxImageBytes = 10 << 20

// RecipeHandler serves recipes, favorites, the shopping cart and its
// export.
type RecipeHandler struct {
	recipeService       service.IRecipeService
	relationService     service.IRelationService
	shoppingListService service.IShoppingListService
	validator           middleware.TokenValidator
	creationLimiter     *middleware.RateLimiter
	pageSize            int
}

func NewRecipeHandler(
	recipeService service.IRecipeService,
	relationService service.IRelationService,
	shoppingListService service.IShoppingListService,
	validator middleware.TokenValidator,
	pageSize int,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:       recipeService,
		relationService:     relationService,
		shoppingListService: shoppingListService,
		validator:           validator,
		pageSize:            pageSize,
	}
}

// WithCreationLimiter rate limits recipe creation. Without it creation is
// unlimited.
func (h *RecipeHandler) WithCreationLimiter(limiter *middleware.RateLimiter) *RecipeHandler {
	h.creationLimiter = limiter
	return h
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.validator)
	optional := middleware.OptionalAuth(h.validator)

	create := []gin.HandlerFunc{required}
	if h.creationLimiter != nil {
		create = append(create, h.creationLimiter.RateLimitMiddleware())
	}
	create = append(create, h.CreateRecipe)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.POST("", create...)
		recipes.GET("/download_shopping_cart", required, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.PATCH("/:id", required, h.UpdateRecipe)
		recipes.PUT("/:id", required, h.UpdateRecipe)
		recipes.DELETE("/:id", required, h.DeleteRecipe)
		recipes.POST("/:id/favorite", required, h.addRelation(service.RelationFavorite))
		recipes.DELETE("/:id/favorite", required, h.removeRelation(service.RelationFavorite))
		recipes.POST("/:id/shopping_cart", required, h.addRelation(service.RelationShoppingCart))
		recipes.DELETE("/:id/shopping_cart", required, h.removeRelation(service.RelationShoppingCart))
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	f, err := filters.ParseRecipeFilter(c.Request.URL.Query())
	if err != nil {
		respondError(c, service.NewValidationError(err.Error()))
		return
	}
	p, ok := parsePagination(c, h.pageSize)
	if !ok {
		return
	}

	recipes, total, err := h.recipeService.List(c.Request.Context(), middleware.UserID(c), f, p)
	if err != nil {
		respondError(c, err)
		return
	}
	if !pageInRange(c, p, total) {
		return
	}
	c.JSON(http.StatusOK, newPage(c, recipes, total, p))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	recipe, err := h.recipeService.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	req, err := bindRecipe(c)
	if err != nil {
		respondBindError(c, err)
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	metrics.RecipeWrites.WithLabelValues("create").Inc()
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	req, err := bindRecipe(c)
	if err != nil {
		respondBindError(c, err)
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	metrics.RecipeWrites.WithLabelValues("update").Inc()
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.recipeService.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	metrics.RecipeWrites.WithLabelValues("delete").Inc()
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) addRelation(rel service.Relation) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathIDOr(c, http.StatusBadRequest)
		if !ok {
			return
		}
		short, err := h.relationService.Add(c.Request.Context(), rel, middleware.UserID(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, short)
	}
}

func (h *RecipeHandler) removeRelation(rel service.Relation) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathIDOr(c, http.StatusBadRequest)
		if !ok {
			return
		}
		if err := h.relationService.Remove(c.Request.Context(), rel, middleware.UserID(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	doc, err := h.shoppingListService.Export(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	metrics.ShoppingListExports.Inc()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pdf.FileName))
	c.Data(http.StatusOK, "application/pdf", doc)
}

// bindRecipe reads a recipe write from JSON or from a multipart form whose
// image part is a file.
func bindRecipe(c *gin.Context) (*types.RecipeWriteRequest, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return bindRecipeForm(c)
	}
	var req types.RecipeWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func bindRecipeForm(c *gin.Context) (*types.RecipeWriteRequest, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	req := &types.RecipeWriteRequest{}
	fields := map[string]string{}

	if v, ok := form.Value["name"]; ok && len(v) > 0 {
		req.Name = &v[0]
	}
	if v, ok := form.Value["text"]; ok && len(v) > 0 {
		req.Text = &v[0]
	}
	if v, ok := form.Value["cooking_time"]; ok && len(v) > 0 {
		n, err := strconv.Atoi(strings.TrimSpace(v[0]))
		if err != nil {
			fields["cooking_time"] = "a valid integer is required"
		}
		req.CookingTime = &n
	}
	if v, ok := form.Value["tags"]; ok {
		tags := make([]uint, 0, len(v))
		for _, raw := range v {
			id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				fields["tags"] = "tags must be integer ids"
				break
			}
			tags = append(tags, uint(id))
		}
		req.Tags = &tags
	}
	if v, ok := form.Value["ingredients"]; ok && len(v) > 0 {
		var ingredients []types.RecipeIngredientInput
		if err := json.Unmarshal([]byte(v[0]), &ingredients); err != nil {
			fields["ingredients"] = `expected a JSON list of {"id", "amount"} objects`
		}
		req.Ingredients = &ingredients
	}

	if files := form.File["image"]; len(files) > 0 {
		data, err := readUpload(files[0])
		if err != nil {
			fields["image"] = err.Error()
		}
		req.ImageData = data
		req.ImageExt = strings.TrimPrefix(filepath.Ext(files[0].Filename), ".")
	} else if v, ok := form.Value["image"]; ok && len(v) > 0 {
		req.Image = &v[0]
	}

	if len(fields) > 0 {
		return nil, service.NewFieldValidationError(fields)
	}
	return req, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxImageBytes {
		return nil, fmt.Errorf("image must not exceed %d MB", maxImageBytes>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.New("could not read the uploaded image")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return nil, errors.New("could not read the uploaded image")
	}
	return data, nil
}
