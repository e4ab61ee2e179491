package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/wavebreaker/wavebreaker/internal/logger"
	apperrors "github.com/wavebreaker/wavebreaker/internal/pkg/errors"
	"github.com/wavebreaker/wavebreaker/internal/repos"
	"github.com/wavebreaker/wavebreaker/internal/types"
)

// TokenPair is what a successful web login yields. The refresh token
// is opaque ("<token id>.<secret>"); only its bcrypt hash is stored.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService issues and validates web API credentials. The game
// surface never uses these; it authenticates every request with a
// Steam ticket instead.
type AuthService interface {
	LoginWithTicket(ctx context.Context, ticket string) (*types.Player, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	// ValidateAccessToken returns the player ID carried by a valid,
	// unexpired access token.
	ValidateAccessToken(tokenString string) (int32, error)
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	playerService PlayerService
	webTokenRepo  repos.WebTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	playerService PlayerService,
	webTokenRepo repos.WebTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		playerService: playerService,
		webTokenRepo:  webTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) LoginWithTicket(ctx context.Context, ticket string) (*types.Player, *TokenPair, error) {
	player, err := as.playerService.TicketAuth(ctx, ticket)
	if err != nil {
		return nil, nil, err
	}
	pair, err := as.issueTokens(ctx, player.ID)
	if err != nil {
		return nil, nil, err
	}
	as.log.Info("Web login", "player_id", player.ID)
	return player, pair, nil
}

func (as *authService) issueTokens(ctx context.Context, playerID int32) (*TokenPair, error) {
	access, err := as.generateAccessToken(playerID)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID := uuid.New()
	secret := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash refresh secret: %w", err)
	}

	_, err = as.webTokenRepo.Create(ctx, nil, &types.WebToken{
		ID:          tokenID,
		PlayerID:    playerID,
		RefreshHash: string(hash),
		ExpiresAt:   time.Now().Add(as.refreshTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: tokenID.String() + "." + secret,
	}, nil
}

func (as *authService) generateAccessToken(playerID int32) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(int(playerID)),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
		ID:        uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	record, err := as.verifyRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	// Rotate: the presented token is spent either way.
	if err := as.webTokenRepo.DeleteByID(ctx, nil, record.ID); err != nil {
		return nil, err
	}
	return as.issueTokens(ctx, record.PlayerID)
}

func (as *authService) Logout(ctx context.Context, refreshToken string) error {
	record, err := as.verifyRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	return as.webTokenRepo.DeleteByID(ctx, nil, record.ID)
}

func (as *authService) verifyRefreshToken(ctx context.Context, refreshToken string) (*types.WebToken, error) {
	idPart, secret, ok := strings.Cut(refreshToken, ".")
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	tokenID, err := uuid.Parse(idPart)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	record, err := as.webTokenRepo.GetByID(ctx, nil, tokenID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	if record.ExpiresAt.Before(time.Now()) {
		_ = as.webTokenRepo.DeleteByID(ctx, nil, record.ID)
		return nil, apperrors.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(record.RefreshHash), []byte(secret)) != nil {
		return nil, apperrors.ErrUnauthorized
	}
	return record, nil
}

func (as *authService) ValidateAccessToken(tokenString string) (int32, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return 0, apperrors.ErrUnauthorized
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, apperrors.ErrUnauthorized
	}
	playerID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, apperrors.ErrUnauthorized
	}
	return int32(playerID), nil
}
