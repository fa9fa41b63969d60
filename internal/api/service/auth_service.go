package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"foodgram/internal/api/models"
	"foodgram/internal/api/repository"
	"foodgram/internal/config"
	"foodgram/internal/middleware/auth"
)

const tokenIssuer = "foodgram"

// Claims are carried by every access token. RegisteredClaims.ID is the
// token id used for revocation.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

type AuthService interface {
	// Login exchanges email and password for a signed access token.
	Login(ctx context.Context, email, password string) (string, error)
	// Logout revokes the token described by claims until it expires.
	Logout(ctx context.Context, claims *Claims) error
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

type authService struct {
	userRepo       repository.UserRepository
	revokedRepo    repository.RevokedTokenRepository
	jwtSecret      []byte
	accessTokenTTL time.Duration
	log            *zap.Logger
	now            func() time.Time
}

func NewAuthService(
	userRepo repository.UserRepository,
	revokedRepo repository.RevokedTokenRepository,
	cfg *config.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		userRepo:       userRepo,
		revokedRepo:    revokedRepo,
		jwtSecret:      []byte(cfg.JWTSecret),
		accessTokenTTL: cfg.AccessTokenTTL,
		log:            log,
		now:            time.Now,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("find user: %w", err)
		}
		// keep the response time of unknown emails equal to wrong passwords
		auth.BurnPasswordCheck(password)
		return "", ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", ErrInvalidCredentials
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	s.log.Info("user logged in", zap.Int64("user_id", user.ID))
	return token, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *authService) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" {
		return ErrInvalidToken
	}
	expires := s.now().Add(s.accessTokenTTL)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	if err := s.revokedRepo.Revoke(ctx, &models.RevokedToken{
		TokenID:   claims.ID,
		UserID:    claims.UserID,
		ExpiresAt: expires,
	}); err != nil {
		return err
	}
	s.log.Info("user logged out", zap.Int64("user_id", claims.UserID))
	return nil
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid || claims.UserID == 0 || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	revoked, err := s.revokedRepo.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
