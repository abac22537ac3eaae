package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/returnaddress/returnaddress-backend/internal/data/repos"
	types "github.com/returnaddress/returnaddress-backend/internal/domain"
	"github.com/returnaddress/returnaddress-backend/internal/platform/apierr"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
)

type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*types.User, error)
	Login(ctx context.Context, email, password string) (string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, refreshToken string) error
	ParseAccessToken(tokenString string) (uuid.UUID, error)
	AccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecret     string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecret string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecret:     jwtSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) Register(ctx context.Context, email, password, name string) (*types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_email", err)
	}
	if len(password) < 8 {
		return nil, apierr.New(http.StatusBadRequest, "password_too_short", errors.New("password must be at least 8 characters"))
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, apierr.New(http.StatusConflict, "email_taken", errors.New("email already registered"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &types.User{
		ID:           uuid.New(),
		Email:        email,
		Password:     string(hash),
		Name:         name,
		AuthProvider: types.AuthProviderPassword,
	}
	if _, err := as.userRepo.Create(ctx, nil, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	as.log.Info("user registered", "user_id", u.ID.String())
	return u, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", apierr.New(http.StatusUnauthorized, "invalid_credentials", errors.New("unknown email"))
		}
		return "", "", fmt.Errorf("load user: %w", err)
	}
	if u.AuthProvider != types.AuthProviderPassword || u.Password == "" {
		return "", "", apierr.New(http.StatusUnauthorized, "invalid_credentials", errors.New("password login not available"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", "", apierr.New(http.StatusUnauthorized, "invalid_credentials", errors.New("wrong password"))
	}

	return as.issueTokens(ctx, u)
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	row, err := as.userTokenRepo.GetByToken(ctx, nil, refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", apierr.New(http.StatusUnauthorized, "invalid_refresh_token", errors.New("unknown refresh token"))
		}
		return "", "", fmt.Errorf("load refresh token: %w", err)
	}
	if row.ExpiresAt.Before(time.Now()) {
		_ = as.userTokenRepo.DeleteByToken(ctx, nil, refreshToken)
		return "", "", apierr.New(http.StatusUnauthorized, "refresh_token_expired", errors.New("refresh token expired"))
	}

	u, err := as.userRepo.GetByID(ctx, nil, row.UserID)
	if err != nil {
		return "", "", fmt.Errorf("load user: %w", err)
	}

	// Rotate: the old token dies with the new issuance.
	var access, refresh string
	txErr := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := as.userTokenRepo.DeleteByToken(ctx, tx, refreshToken); err != nil {
			return fmt.Errorf("delete old refresh token: %w", err)
		}
		access, refresh, err = as.issueTokensTx(ctx, tx, u)
		return err
	})
	if txErr != nil {
		return "", "", txErr
	}
	return access, refresh, nil
}

func (as *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return as.userTokenRepo.DeleteByToken(ctx, nil, refreshToken)
}

func (as *authService) ParseAccessToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(as.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, apierr.New(http.StatusUnauthorized, "invalid_token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, apierr.New(http.StatusUnauthorized, "invalid_token", errors.New("unexpected claims type"))
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, apierr.New(http.StatusUnauthorized, "invalid_token", err)
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, apierr.New(http.StatusUnauthorized, "invalid_token", err)
	}
	return userID, nil
}

func (as *authService) AccessTTL() time.Duration { return as.accessTTL }

func (as *authService) issueTokens(ctx context.Context, u *types.User) (string, string, error) {
	return as.issueTokensTx(ctx, nil, u)
}

func (as *authService) issueTokensTx(ctx context.Context, tx *gorm.DB, u *types.User) (string, string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": u.ID.String(),
		"iat": now.Unix(),
		"exp": now.Add(as.accessTTL).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(as.jwtSecret))
	if err != nil {
		return "", "", fmt.Errorf("sign access token: %w", err)
	}

	refresh := uuid.NewString()
	if _, err := as.userTokenRepo.Create(ctx, tx, &types.UserToken{
		ID:        uuid.New(),
		UserID:    u.ID,
		Token:     refresh,
		ExpiresAt: now.Add(as.refreshTTL),
	}); err != nil {
		return "", "", fmt.Errorf("persist refresh token: %w", err)
	}

	return access, refresh, nil
}
