package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"foodgram/internal/api/dto"
	"foodgram/internal/api/models"
	"foodgram/internal/api/repository"
	"foodgram/internal/api/validation"
	"foodgram/internal/middleware/auth"
	"foodgram/internal/storage"
)

type UserService interface {
	Register(ctx context.Context, req dto.UserCreateRequest) (*dto.UserCreatedResponse, error)
	List(ctx context.Context, viewerID int64, page dto.Pagination) ([]dto.UserResponse, int64, error)
	Get(ctx context.Context, viewerID, userID int64) (*dto.UserResponse, error)
	SetPassword(ctx context.Context, userID int64, req dto.SetPasswordRequest) error
	Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*dto.SubscriptionResponse, error)
	Unsubscribe(ctx context.Context, userID, authorID int64) error
	// Subscriptions pages through followed authors. recipesLimit caps each
	// author's recipe preview, 0 means no cap.
	Subscriptions(ctx context.Context, userID int64, page dto.Pagination, recipesLimit int) ([]dto.SubscriptionResponse, int64, error)
}

type userService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	recipeRepo repository.RecipeRepository
	present    presenter
	log        *zap.Logger
}

func NewUserService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	recipeRepo repository.RecipeRepository,
	relationRepo repository.RelationRepository,
	images storage.ImageStore,
	log *zap.Logger,
) UserService {
	return &userService{
		userRepo:   userRepo,
		followRepo: followRepo,
		recipeRepo: recipeRepo,
		present:    presenter{follows: followRepo, relations: relationRepo, images: images},
		log:        log,
	}
}

func (s *userService) Register(ctx context.Context, req dto.UserCreateRequest) (*dto.UserCreatedResponse, error) {
	verr := &ValidationError{}
	if err := validation.Username(req.Username); err != nil {
		verr.Add("username", err.Error())
	}
	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		verr.Add("username", "a user with that username already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		verr.Add("email", "a user with that email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if strings.EqualFold(req.Password, req.Username) || strings.EqualFold(req.Password, req.Email) {
		verr.Add("password", "the password is too similar to the username or email")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	hash, err := hashPassword("password", req.Password)
	if err != nil {
		return nil, err
	}

	user := req.ToModel()
	user.Password = hash
	if err := s.userRepo.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewValidationError(NonFieldErrors, "a user with that username or email already exists")
		}
		return nil, err
	}

	s.log.Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	resp := dto.FromUserCreated(&user)
	return &resp, nil
}

func hashPassword(field, password string) (string, error) {
	hash, err := auth.HashPassword(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", NewValidationError(field, "the password is too long")
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

func (s *userService) List(ctx context.Context, viewerID int64, page dto.Pagination) ([]dto.UserResponse, int64, error) {
	list, total, err := s.userRepo.List(ctx, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.present.users(ctx, viewerID, list)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *userService) Get(ctx context.Context, viewerID, userID int64) (*dto.UserResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out, err := s.present.users(ctx, viewerID, []models.User{*user})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *userService) findUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) SetPassword(ctx context.Context, userID int64, req dto.SetPasswordRequest) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.VerifyPassword(user.Password, req.CurrentPassword); err != nil {
		return NewValidationError("current_password", "invalid password")
	}
	if req.NewPassword == req.CurrentPassword {
		return NewValidationError("new_password", "the new password must differ from the current one")
	}

	hash, err := hashPassword("new_password", req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	s.log.Info("password changed", zap.Int64("user_id", userID))
	return nil
}

func (s *userService) Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*dto.SubscriptionResponse, error) {
	author, err := s.findUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if userID == authorID {
		return nil, NewValidationError(NonFieldErrors, "you cannot subscribe to yourself")
	}

	exists, err := s.followRepo.Exists(ctx, userID, authorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewValidationError(NonFieldErrors, "you are already subscribed to this author")
	}
	if err := s.followRepo.Create(ctx, userID, authorID); err != nil {
		// a concurrent identical request won the race
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewValidationError(NonFieldErrors, "you are already subscribed to this author")
		}
		return nil, err
	}

	list, err := s.subscriptions(ctx, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *userService) Unsubscribe(ctx context.Context, userID, authorID int64) error {
	if _, err := s.findUser(ctx, authorID); err != nil {
		return err
	}
	deleted, err := s.followRepo.Delete(ctx, userID, authorID)
	if err != nil {
		return err
	}
	if !deleted {
		return NewValidationError(NonFieldErrors, "you are not subscribed to this author")
	}
	return nil
}

func (s *userService) Subscriptions(ctx context.Context, userID int64, page dto.Pagination, recipesLimit int) ([]dto.SubscriptionResponse, int64, error) {
	authors, total, err := s.followRepo.ListAuthors(ctx, userID, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.subscriptions(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// subscriptions renders followed authors. Every author in the list is
// followed by the viewer, so is_subscribed is always true.
func (s *userService) subscriptions(ctx context.Context, authors []models.User, recipesLimit int) ([]dto.SubscriptionResponse, error) {
	ids := make([]int64, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}
	counts, err := s.recipeRepo.CountByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dto.SubscriptionResponse, 0, len(authors))
	for i := range authors {
		recipes, err := s.recipeRepo.ListByAuthor(ctx, authors[i].ID, recipesLimit)
		if err != nil {
			return nil, err
		}
		previews := make([]dto.RecipeShortResponse, 0, len(recipes))
		for j := range recipes {
			previews = append(previews, s.present.short(&recipes[j]))
		}
		out = append(out, dto.SubscriptionResponse{
			UserResponse: dto.FromUser(&authors[i], true),
			Recipes:      previews,
			RecipesCount: counts[authors[i].ID],
		})
	}
	return out, nil
}
