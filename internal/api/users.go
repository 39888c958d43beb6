package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/filters"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserHandler serves accounts and subscriptions.
type UserHandler struct {
	userService service.IUserService
	validator   middleware.TokenValidator
	pageSize    int
}

func NewUserHandler(userService service.IUserService, validator middleware.TokenValidator, pageSize int) *UserHandler {
	return &UserHandler{userService: userService, validator: validator, pageSize: pageSize}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.validator)
	optional := middleware.OptionalAuth(h.validator)

	users := router.Group("/users")
	{
		users.GET("", optional, h.ListUsers)
		users.POST("", h.CreateUser)
		users.GET("/me", required, h.Me)
		users.POST("/set_password", required, h.SetPassword)
		users.GET("/subscriptions", required, h.Subscriptions)
		users.GET("/:id", optional, h.GetUser)
		users.POST("/:id/subscribe", required, h.Subscribe)
		users.DELETE("/:id/subscribe", required, h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	f := filters.ParseUserFilter(c.Request.URL.Query())
	p, ok := parsePagination(c, h.pageSize)
	if !ok {
		return
	}

	users, total, err := h.userService.List(c.Request.Context(), middleware.UserID(c), f, p)
	if err != nil {
		respondError(c, err)
		return
	}
	if !pageInRange(c, p, total) {
		return
	}
	c.JSON(http.StatusOK, newPage(c, users, total, p))
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req types.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewCreatedUserResponse(user))
}

func (h *UserHandler) Me(c *gin.Context) {
	viewer := middleware.UserID(c)
	user, err := h.userService.Get(c.Request.Context(), viewer, viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.userService.SetPassword(c.Request.Context(), middleware.UserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	p, ok := parsePagination(c, h.pageSize)
	if !ok {
		return
	}

	subs, total, err := h.userService.Subscriptions(c.Request.Context(), middleware.UserID(c), p, recipesLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if !pageInRange(c, p, total) {
		return
	}
	c.JSON(http.StatusOK, newPage(c, subs, total, p))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	sub, err := h.userService.Subscribe(c.Request.Context(), middleware.UserID(c), id, recipesLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.userService.Unsubscribe(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// recipesLimit reads recipes_limit; invalid or negative values are ignored.
func recipesLimit(c *gin.Context) *int {
	n, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// pathID parses the :id segment. Anything but a positive integer is a 404.
func pathID(c *gin.Context) (uint, bool) {
	return pathIDOr(c, http.StatusNotFound)
}

// pathIDOr parses the :id segment. A malformed id gets a 404, or a 400
// validation error for any other status.
func pathIDOr(c *gin.Context, status int) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err == nil && id > 0 {
		return uint(id), true
	}
	if status == http.StatusNotFound {
		respondNotFound(c, "not found")
	} else {
		respondError(c, service.NewValidationError("id must be a positive integer"))
	}
	return 0, false
}
