package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/apnadera/backend-go/internal/database"
	"github.com/apnadera/backend-go/internal/database/models"
	"github.com/apnadera/backend-go/internal/database/repository"
)

// ProfileInput carries self-service profile updates; nil fields are left
// untouched.
type ProfileInput struct {
	Name     *string
	Phone    *string
	Bio      *string
	Avatar   *string
	Location *string
}

// AdminUserInput carries admin edits of a user record.
type AdminUserInput struct {
	Name       *string
	Role       *string
	Phone      *string
	Bio        *string
	Avatar     *string
	Location   *string
	IsActive   *bool
	IsVerified *bool
}

// UserService defines the interface for user and account business logic
type UserService interface {
	GetUser(id uint) (*models.User, error)
	GetProfile(id uint) (*models.User, []uint, error)
	UpdateProfile(id uint, input ProfileInput) (*models.User, error)
	ListUsers(page, limit int) ([]models.User, int64, error)
	AdminUpdateUser(id uint, input AdminUserInput) (*models.User, error)
	AdminDeleteUser(id uint) error
	ListOwnProperties(userID uint, page, limit int) ([]models.Property, repository.Pagination, error)
	ListFavorites(userID uint) ([]models.Property, error)
	OwnerStats(ctx context.Context, userID uint) (*models.OwnerStats, error)
}

type userService struct {
	userRepo     repository.UserRepository
	propertyRepo repository.PropertyRepository
	favoriteRepo repository.FavoriteRepository
	statsCache   *database.RedisClient
	logger       *slog.Logger
}

// NewUserService creates a new user service instance. statsCache may be
// nil when Redis is unavailable.
func NewUserService(
	userRepo repository.UserRepository,
	propertyRepo repository.PropertyRepository,
	favoriteRepo repository.FavoriteRepository,
	statsCache *database.RedisClient,
	logger *slog.Logger,
) UserService {
	return &userService{
		userRepo:     userRepo,
		propertyRepo: propertyRepo,
		favoriteRepo: favoriteRepo,
		statsCache:   statsCache,
		logger:       logger,
	}
}

func (s *userService) GetUser(id uint) (*models.User, error) {
	return s.userRepo.FindByID(id)
}

func (s *userService) GetProfile(id uint) (*models.User, []uint, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, nil, err
	}

	favoriteIDs, err := s.favoriteRepo.ListPropertyIDsByUser(id)
	if err != nil {
		s.logger.Error("❌ [UserService] Failed to load favorites", "user_id", id, "error", err)
		return nil, nil, err
	}

	return user, favoriteIDs, nil
}

func (s *userService) UpdateProfile(id uint, input ProfileInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Avatar != nil {
		user.Avatar = *input.Avatar
	}
	if input.Location != nil {
		user.Location = *input.Location
	}

	if err := s.userRepo.Update(user); err != nil {
		s.logger.Error("❌ [UserService] Failed to update profile", "user_id", id, "error", err)
		return nil, err
	}

	s.logger.Info("✅ [UserService] Profile updated", "user_id", id)
	return user, nil
}

func (s *userService) ListUsers(page, limit int) ([]models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return s.userRepo.List(page, limit)
}

func (s *userService) AdminUpdateUser(id uint, input AdminUserInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Role != nil {
		if !models.ValidRole(*input.Role) {
			return nil, ErrInvalidRole
		}
		user.Role = models.Role(*input.Role)
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Avatar != nil {
		user.Avatar = *input.Avatar
	}
	if input.Location != nil {
		user.Location = *input.Location
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.IsVerified != nil {
		user.IsVerified = *input.IsVerified
	}

	if err := s.userRepo.Update(user); err != nil {
		s.logger.Error("❌ [UserService] Failed to update user", "user_id", id, "error", err)
		return nil, err
	}

	s.logger.Info("✅ [UserService] User updated by admin", "user_id", id)
	return user, nil
}

// AdminDeleteUser removes a user record. Accounts that still own
// properties are never hard-deleted; deactivate them instead.
func (s *userService) AdminDeleteUser(id uint) error {
	if _, err := s.userRepo.FindByID(id); err != nil {
		return err
	}

	owned, err := s.propertyRepo.CountByOwner(id)
	if err != nil {
		return err
	}
	if owned > 0 {
		s.logger.Warn("⚠️ [UserService] Refusing to delete user with properties", "user_id", id, "owned", owned)
		return ErrUserHasProperties
	}

	if err := s.userRepo.Delete(id); err != nil {
		s.logger.Error("❌ [UserService] Failed to delete user", "user_id", id, "error", err)
		return err
	}

	s.logger.Info("✅ [UserService] User deleted", "user_id", id)
	return nil
}

func (s *userService) ListOwnProperties(userID uint, page, limit int) ([]models.Property, repository.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	properties, total, err := s.propertyRepo.ListByOwner(userID, page, limit)
	if err != nil {
		s.logger.Error("❌ [UserService] Failed to list own properties", "user_id", userID, "error", err)
		return nil, repository.Pagination{}, err
	}

	return properties, repository.NewPagination(page, limit, total), nil
}

func (s *userService) ListFavorites(userID uint) ([]models.Property, error) {
	return s.favoriteRepo.ListPropertiesByUser(userID)
}

// OwnerStats aggregates totals across all properties the user owns,
// serving from the Redis cache when a fresh entry exists.
func (s *userService) OwnerStats(ctx context.Context, userID uint) (*models.OwnerStats, error) {
	if s.statsCache != nil {
		if cached, err := s.statsCache.GetOwnerStats(ctx, userID); err == nil && cached != nil {
			return cached, nil
		}
	}

	stats, err := s.propertyRepo.OwnerStats(userID)
	if err != nil {
		s.logger.Error("❌ [UserService] Failed to aggregate owner stats", "user_id", userID, "error", err)
		return nil, err
	}

	if s.statsCache != nil {
		if err := s.statsCache.SetOwnerStats(ctx, userID, stats); err != nil {
			s.logger.Warn("⚠️ [UserService] Failed to cache owner stats", "user_id", userID, "error", err)
		}
	}

	return stats, nil
}

// Service errors
var (
	ErrUserHasProperties = errors.New("user has properties associated with their account")
)
