package services

import (
	"context"
	"fmt"
	"time"
	"turnover/internal/models"
	"turnover/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer = "turnover"
	tokenTTL    = 12 * time.Hour
)

type accessClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// AuthService signs and validates the HS256 access tokens used by the API and
// the websocket upgrade.
type AuthService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	log    logger.Logger
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{
		secret: []byte(secret),
		ttl:    tokenTTL,
		now:    time.Now,
		log:    logger.New("authService"),
	}
}

func (s *AuthService) IssueToken(userID uuid.UUID, role models.Role) (string, error) {
	log := s.log.Function("IssueToken")

	if !role.IsValid() {
		return "", log.Err("cannot issue token", fmt.Errorf("%w: unknown role %q", types.ErrInvalidInput, role))
	}

	now := s.now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Role: string(role),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", log.Err("failed to sign token", err, "userID", userID)
	}

	return signed, nil
}

func (s *AuthService) ValidateToken(ctx context.Context, raw string) (*types.TokenInfo, error) {
	log := s.log.TraceFromContext(ctx).Function("ValidateToken")

	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(
		raw,
		claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, log.ErrMsg(fmt.Sprintf("unexpected signing method: %v", token.Header["alg"]))
			}
			return s.secret, nil
		},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return &types.TokenInfo{Valid: false}, fmt.Errorf("%w: invalid token", types.ErrForbidden)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return &types.TokenInfo{Valid: false}, fmt.Errorf("%w: invalid subject", types.ErrForbidden)
	}

	if !models.Role(claims.Role).IsValid() {
		return &types.TokenInfo{Valid: false}, fmt.Errorf("%w: invalid role", types.ErrForbidden)
	}

	return &types.TokenInfo{UserID: userID, Role: claims.Role, Valid: true}, nil
}
