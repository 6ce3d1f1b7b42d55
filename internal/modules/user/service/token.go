package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/newsportal/internal/modules/user/dto"
	"anoa.com/newsportal/internal/modules/user/repository"
	"anoa.com/newsportal/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the JWT payload. Typ separates access from refresh tokens.
type Claims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

type TokenService interface {
	Obtain(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.TokenResponse, error)
	ParseAccessToken(token string) (uuid.UUID, error)
}

type tokenService struct {
	repo       repository.UserRepository
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(repo repository.UserRepository, secret string, accessTTL, refreshTTL time.Duration) TokenService {
	return &tokenService{
		repo:       repo,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (s *tokenService) Obtain(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error) {
	invalid := fmt.Errorf("%w: no active account found with the given credentials", apperror.ErrUnauthorized)

	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, invalid
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, invalid
	}

	access, err := s.sign(user.ID, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user.ID, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		Access:    access,
		Refresh:   refresh,
		TokenType: "Bearer",
		ExpiresIn: int64(s.accessTTL.Seconds()),
	}, nil
}

func (s *tokenService) Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.TokenResponse, error) {
	userID, err := s.parse(req.Refresh, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	// the account may have been removed since the refresh token was issued
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("%w: token is invalid or expired", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	access, err := s.sign(userID, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		Access:    access,
		TokenType: "Bearer",
		ExpiresIn: int64(s.accessTTL.Seconds()),
	}, nil
}

func (s *tokenService) ParseAccessToken(token string) (uuid.UUID, error) {
	return s.parse(token, TokenTypeAccess)
}

func (s *tokenService) sign(userID uuid.UUID, typ string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *tokenService) parse(tokenString, typ string) (uuid.UUID, error) {
	invalid := fmt.Errorf("%w: token is invalid or expired", apperror.ErrUnauthorized)

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return uuid.Nil, invalid
	}
	if claims.Type != typ {
		return uuid.Nil, invalid
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, invalid
	}
	return userID, nil
}
