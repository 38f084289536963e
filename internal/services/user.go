package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/learnfinity/learnfinity-backend/internal/logger"
	"github.com/learnfinity/learnfinity-backend/internal/repos"
	"github.com/learnfinity/learnfinity-backend/internal/requestdata"
	"github.com/learnfinity/learnfinity-backend/internal/types"
)

type UserService interface {
	GetCurrent(ctx context.Context) (*types.User, error)
	UpdateAvatarFromImage(ctx context.Context, raw []byte) (*types.User, error)
}

type userService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	avatarService AvatarService
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, avatarService AvatarService) UserService {
	return &userService{
		db:            db,
		log:           baseLog.With("service", "UserService"),
		userRepo:      userRepo,
		avatarService: avatarService,
	}
}

func (us *userService) GetCurrent(ctx context.Context) (*types.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 || users[0] == nil {
		return nil, fmt.Errorf("user not found")
	}
	return users[0], nil
}

func (us *userService) UpdateAvatarFromImage(ctx context.Context, raw []byte) (*types.User, error) {
	if us.avatarService == nil {
		return nil, fmt.Errorf("avatar service not configured")
	}
	user, err := us.GetCurrent(ctx)
	if err != nil {
		return nil, err
	}
	if err := us.avatarService.CreateUserAvatarFromImage(ctx, nil, user, raw); err != nil {
		return nil, err
	}
	if err := us.userRepo.UpdateFields(ctx, nil, user.ID, map[string]any{
		"avatar_color":      user.AvatarColor,
		"avatar_bucket_key": user.AvatarBucketKey,
		"avatar_url":        user.AvatarURL,
	}); err != nil {
		return nil, fmt.Errorf("save avatar fields: %w", err)
	}
	return user, nil
}
