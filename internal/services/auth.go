package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eatsential/eatsential-backend/internal/logger"
	errs "github.com/eatsential/eatsential-backend/internal/pkg/errors"
	"github.com/eatsential/eatsential-backend/internal/repos"
	"github.com/eatsential/eatsential-backend/internal/types"
	"github.com/eatsential/eatsential-backend/internal/utils"
)

type AuthService interface {
	Register(ctx context.Context, req types.RegisterRequest) (*types.AuthResponse, error)
	Login(ctx context.Context, req types.LoginRequest) (*types.AuthResponse, error)
	// ParseToken verifies a bearer token and returns the user id it carries.
	ParseToken(tokenString string) (uuid.UUID, error)
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey string
	tokenTTL     time.Duration
}

func NewAuthService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, jwtSecretKey string, tokenTTL time.Duration) AuthService {
	return &authService{
		db:           db,
		log:          baseLog.With("service", "AuthService"),
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		tokenTTL:     tokenTTL,
	}
}

func (as *authService) Register(ctx context.Context, req types.RegisterRequest) (*types.AuthResponse, error) {
	utils.NormalizeRegisterFields(&req)
	if err := utils.ValidateRegisterFields(&req); err != nil {
		return nil, err
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check user email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: email is already in use", errs.ErrInvalidArgument)
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &types.User{
		ID:        uuid.New(),
		Email:     req.Email,
		Password:  hashed,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
	}
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, createErr := as.userRepo.Create(ctx, tx, []*types.User{user})
		return createErr
	}); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := as.generateToken(user)
	if err != nil {
		return nil, err
	}
	as.log.Info("User registered", "user_id", user.ID, "email", user.Email)
	return &types.AuthResponse{Token: token, User: user}, nil
}

func (as *authService) Login(ctx context.Context, req types.LoginRequest) (*types.AuthResponse, error) {
	email := utils.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required to login", errs.ErrInvalidArgument)
	}

	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", errs.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to retrieve user by email: %w", err)
	}
	if err := utils.CheckPassword(user.Password, req.Password); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", errs.ErrUnauthorized)
	}

	token, err := as.generateToken(user)
	if err != nil {
		return nil, err
	}
	as.log.Info("User logged in", "user_id", user.ID)
	return &types.AuthResponse{Token: token, User: user}, nil
}

func (as *authService) generateToken(user *types.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(as.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (as *authService) ParseToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("%w: invalid token", errs.ErrUnauthorized)
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return uuid.Nil, fmt.Errorf("%w: invalid token claims", errs.ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid token subject", errs.ErrUnauthorized)
	}
	return userID, nil
}
