package service

import (
	"context"
	"errors"
	"strings"

	"reeltrack/internal/models"
	"reeltrack/internal/observability"
	"reeltrack/internal/repository"
	"reeltrack/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// passwordHashCost is the bcrypt cost for stored passwords.
var passwordHashCost = bcrypt.DefaultCost

// UserService serves the authenticated user's profile.
type UserService struct {
	userRepo     repository.UserRepository
	listRepo     repository.ListRepository
	relationRepo repository.RelationRepository
}

// UpdateProfileInput carries the profile fields to change; empty fields are left as stored.
type UpdateProfileInput struct {
	UserID   string
	Username string
	Email    string
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, listRepo repository.ListRepository, relationRepo repository.RelationRepository) *UserService {
	return &UserService{
		userRepo:     userRepo,
		listRepo:     listRepo,
		relationRepo: relationRepo,
	}
}

// GetProfile returns the user with lists and follow sets filled in.
func (s *UserService) GetProfile(ctx context.Context, userID string) (user *models.User, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "UserService", "GetProfile")
	defer func() { observability.EndSpan(span, err) }()

	user, err = s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.Favorites, err = s.listRepo.GetItems(ctx, userID, models.ListFavorites); err != nil {
		return nil, err
	}
	if user.Watchlist, err = s.listRepo.GetItems(ctx, userID, models.ListWatchlist); err != nil {
		return nil, err
	}
	if user.Followers, err = s.relationRepo.GetRelations(ctx, userID, models.RelationFollowers); err != nil {
		return nil, err
	}
	if user.Following, err = s.relationRepo.GetRelations(ctx, userID, models.RelationFollowing); err != nil {
		return nil, err
	}
	user.FillEmptyCollections()
	return user, nil
}

// UpdateProfile changes username and/or email.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (user *models.User, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "UserService", "UpdateProfile")
	defer func() { observability.EndSpan(span, err) }()

	user, err = s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(in.Username)
	if username != "" && username != user.Username {
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		existing, err := s.userRepo.GetByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != user.ID {
			return nil, models.NewConflictError("Username already taken")
		}
		user.Username = username
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email != "" && email != user.Email {
		if err := validation.ValidateEmail(email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		existing, err := s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != user.ID {
			return nil, models.NewConflictError("Email already registered")
		}
		user.Email = email
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, user.ID)
}

// ChangePassword replaces the password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "UserService", "ChangePassword")
	defer func() { observability.EndSpan(span, err) }()

	if oldPassword == "" || newPassword == "" {
		return models.NewValidationError("Old and new passwords are required")
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return models.NewUnauthorizedError("Old password is incorrect")
		}
		return models.NewInternalError(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), passwordHashCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = string(hashed)
	return s.userRepo.Update(ctx, user)
}
