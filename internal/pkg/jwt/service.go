package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"hire-match/internal/domain/actor"
)

const TokenTypeAccess = "access"

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type Claims struct {
	ActorID   uuid.UUID  `json:"actor_id"`
	Role      actor.Role `json:"role"`
	TokenType string     `json:"token_type"`

	jwtlib.RegisteredClaims
}

func (c Claims) Actor() actor.Actor {
	return actor.Actor{ID: c.ActorID, Role: c.Role}
}

type Service interface {
	GenerateAccessToken(a actor.Actor) (string, error)
	ValidateToken(tokenString string) (Claims, error)
}

type HMACService struct {
	secret    []byte
	issuer    string
	expiresIn time.Duration

	now func() time.Time
}

func NewHMACService(secret, issuer string, expiresIn time.Duration) *HMACService {
	return &HMACService{
		secret:    []byte(secret),
		issuer:    issuer,
		expiresIn: expiresIn,
		now:       time.Now,
	}
}

func (s *HMACService) GenerateAccessToken(a actor.Actor) (string, error) {
	if len(s.secret) == 0 || s.expiresIn <= 0 || !a.Valid() {
		return "", ErrTokenInvalid
	}
	now := s.now().UTC()

	c := Claims{
		ActorID:   a.ID,
		Role:      a.Role,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.expiresIn)),
			Subject:   a.ID.String(),
		},
	}

	t := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c)
	return t.SignedString(s.secret)
}

func (s *HMACService) ValidateToken(tokenString string) (Claims, error) {
	// An empty key would verify tokens anyone can sign.
	if len(s.secret) == 0 {
		return Claims{}, ErrTokenInvalid
	}
	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(s.now),
		jwtlib.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(s.issuer))
	}
	p := jwtlib.NewParser(opts...)

	var c Claims
	tok, err := p.ParseWithClaims(tokenString, &c, func(token *jwtlib.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if tok == nil || !tok.Valid {
		return Claims{}, ErrTokenInvalid
	}

	if c.TokenType != TokenTypeAccess {
		return Claims{}, ErrTokenInvalid
	}
	if _, ok := actor.ParseRole(string(c.Role)); !ok || c.ActorID == uuid.Nil {
		return Claims{}, ErrTokenInvalid
	}

	return c, nil
}
