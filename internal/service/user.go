package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/filters"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserService manages accounts and the subscriptions between them.
// A viewer id of 0 means an anonymous request.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Create registers a user.
func (s *UserService) Create(ctx context.Context, req types.CreateUserRequest) (*models.User, error) {
	db := s.db.WithContext(ctx)

	fields := map[string]string{}
	var n int64
	if err := db.Model(&models.User{}).Where("email = ?", req.Email).Count(&n).Error; err != nil {
		return nil, NewInternalError(err)
	}
	if n > 0 {
		fields["email"] = "a user with this email already exists"
	}
	if err := db.Model(&models.User{}).Where("username = ?", req.Username).Count(&n).Error; err != nil {
		return nil, NewInternalError(err)
	}
	if n > 0 {
		fields["username"] = "a user with this username already exists"
	}
	if len(fields) > 0 {
		return nil, NewFieldValidationError(fields)
	}

	user := &models.User{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, NewInternalError(err)
	}
	if err := db.Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, NewValidationError("a user with this email or username already exists")
		}
		return nil, NewInternalError(err)
	}

	logging.Ctx(ctx).Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// GetByID loads a user or returns a not-found error.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("user", id)
		}
		return nil, NewInternalError(err)
	}
	return &user, nil
}

// Get returns the representation of user id as seen by viewer.
func (s *UserService) Get(ctx context.Context, viewer, id uint) (*types.UserResponse, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.subscribedTo(ctx, viewer, []uint{user.ID})
	if err != nil {
		return nil, err
	}
	resp := types.NewUserResponse(user, subscribed[user.ID])
	return &resp, nil
}

// List returns one page of users ordered by username.
func (s *UserService) List(ctx context.Context, viewer uint, f filters.UserFilter, p types.Pagination) ([]types.UserResponse, int64, error) {
	db := s.db.WithContext(ctx)
	query := f.Apply(db.Model(&models.User{}))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, NewInternalError(err)
	}

	var users []models.User
	if err := f.Apply(db.Model(&models.User{})).
		Order("users.username").
		Offset(p.Offset()).Limit(p.Size).
		Find(&users).Error; err != nil {
		return nil, 0, NewInternalError(err)
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	subscribed, err := s.subscribedTo(ctx, viewer, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]types.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, types.NewUserResponse(&users[i], subscribed[users[i].ID]))
	}
	return out, total, nil
}

// SetPassword replaces the password of userID after checking the current one.
func (s *UserService) SetPassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(current) {
		return NewFieldValidationError(map[string]string{"current_password": "invalid password"})
	}
	if err := user.SetPassword(next); err != nil {
		return NewInternalError(err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password", user.PasswordHash).Error; err != nil {
		return NewInternalError(err)
	}
	logging.Ctx(ctx).Info().Uint("user_id", userID).Msg("password changed")
	return nil
}

// Subscribe makes viewer follow authorID. recipesLimit truncates the recipe
// preview of the returned author.
func (s *UserService) Subscribe(ctx context.Context, viewer, authorID uint, recipesLimit *int) (*types.SubscriptionResponse, error) {
	author, err := s.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author.ID == viewer {
		return nil, NewValidationError("you cannot subscribe to yourself")
	}

	db := s.db.WithContext(ctx)
	var n int64
	if err := db.Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", viewer, author.ID).
		Count(&n).Error; err != nil {
		return nil, NewInternalError(err)
	}
	if n > 0 {
		return nil, NewConflictError("you are already subscribed to this author")
	}

	if err := db.Create(&models.Subscription{UserID: viewer, AuthorID: author.ID}).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, NewConflictError("you are already subscribed to this author")
		}
		if database.IsCheckViolation(err) {
			return nil, NewValidationError("you cannot subscribe to yourself")
		}
		return nil, NewInternalError(err)
	}

	logging.Ctx(ctx).Info().Uint("user_id", viewer).Uint("author_id", author.ID).Msg("subscribed")
	return s.subscription(ctx, author, recipesLimit)
}

// Unsubscribe removes the subscription of viewer to authorID.
func (s *UserService) Unsubscribe(ctx context.Context, viewer, authorID uint) error {
	author, err := s.GetByID(ctx, authorID)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", viewer, author.ID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return NewValidationError("you are not subscribed to this author")
	}
	logging.Ctx(ctx).Info().Uint("user_id", viewer).Uint("author_id", author.ID).Msg("unsubscribed")
	return nil
}

// Subscriptions returns one page of the authors viewer follows.
func (s *UserService) Subscriptions(ctx context.Context, viewer uint, p types.Pagination, recipesLimit *int) ([]types.SubscriptionResponse, int64, error) {
	db := s.db.WithContext(ctx)
	followed := db.Session(&gorm.Session{NewDB: true}).
		Model(&models.Subscription{}).Select("author_id").Where("user_id = ?", viewer)

	var total int64
	if err := db.Model(&models.User{}).Where("id IN (?)", followed).Count(&total).Error; err != nil {
		return nil, 0, NewInternalError(err)
	}

	var authors []models.User
	if err := db.Where("id IN (?)", followed).
		Order("username").
		Offset(p.Offset()).Limit(p.Size).
		Find(&authors).Error; err != nil {
		return nil, 0, NewInternalError(err)
	}

	out := make([]types.SubscriptionResponse, 0, len(authors))
	for i := range authors {
		sub, err := s.subscription(ctx, &authors[i], recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *sub)
	}
	return out, total, nil
}

// subscription renders a followed author; is_subscribed is true by
// construction.
func (s *UserService) subscription(ctx context.Context, author *models.User, recipesLimit *int) (*types.SubscriptionResponse, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Recipe{}).Where("author_id = ?", author.ID).Count(&count).Error; err != nil {
		return nil, NewInternalError(err)
	}

	query := db.Where("author_id = ?", author.ID).Order("pub_date DESC, id DESC")
	if recipesLimit != nil {
		query = query.Limit(*recipesLimit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, NewInternalError(err)
	}

	short := make([]types.ShortRecipeResponse, 0, len(recipes))
	for i := range recipes {
		short = append(short, types.NewShortRecipeResponse(&recipes[i]))
	}
	return &types.SubscriptionResponse{
		UserResponse: types.NewUserResponse(author, true),
		Recipes:      short,
		RecipesCount: count,
	}, nil
}

// subscribedTo reports which of authorIDs viewer follows.
func (s *UserService) subscribedTo(ctx context.Context, viewer uint, authorIDs []uint) (map[uint]bool, error) {
	return subscribedTo(s.db.WithContext(ctx), viewer, authorIDs)
}

func subscribedTo(db *gorm.DB, viewer uint, authorIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(authorIDs))
	if viewer == 0 || len(authorIDs) == 0 {
		return out, nil
	}
	var ids []uint
	if err := db.Model(&models.Subscription{}).
		Where("user_id = ? AND author_id IN ?", viewer, authorIDs).
		Pluck("author_id", &ids).Error; err != nil {
		return nil, NewInternalError(err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
