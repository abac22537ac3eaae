package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/returnaddress/returnaddress-backend/internal/data/repos"
	types "github.com/returnaddress/returnaddress-backend/internal/domain"
	"github.com/returnaddress/returnaddress-backend/internal/platform/apierr"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
)

var handleRe = regexp.MustCompile(`^[a-z0-9-]+$`)

type UserService interface {
	Me(ctx context.Context, userID uuid.UUID) (*types.User, error)
	OnboardCreator(ctx context.Context, userID uuid.UUID, name, handle, shortBio string) error
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{
		log:      serviceLog,
		userRepo: userRepo,
	}
}

func (us *userService) Me(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	u, err := us.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (us *userService) OnboardCreator(ctx context.Context, userID uuid.UUID, name, handle, shortBio string) error {
	name = strings.TrimSpace(name)
	handle = strings.ToLower(strings.TrimSpace(handle))
	shortBio = strings.TrimSpace(shortBio)

	if name == "" {
		return apierr.New(http.StatusBadRequest, "name_required", errors.New("display name must not be empty"))
	}
	if !handleRe.MatchString(handle) {
		return apierr.New(http.StatusBadRequest, "invalid_handle",
			errors.New("handle must contain only lowercase letters, digits, and hyphens"))
	}

	current, err := us.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	if current.Handle == nil || *current.Handle != handle {
		taken, err := us.userRepo.HandleExists(ctx, nil, handle)
		if err != nil {
			return fmt.Errorf("check handle: %w", err)
		}
		if taken {
			return apierr.New(http.StatusConflict, "handle_taken", fmt.Errorf("handle %q is taken", handle))
		}
	}

	if err := us.userRepo.UpdateCreatorProfile(ctx, nil, userID, name, handle, shortBio); err != nil {
		return fmt.Errorf("update creator profile: %w", err)
	}

	us.log.Info("creator onboarded", "user_id", userID.String())
	return nil
}
