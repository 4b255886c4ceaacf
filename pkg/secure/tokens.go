package secure

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	audienceAPI   = "api"
	audienceState = "oauth_state"

	stateTTL = 10 * time.Minute
)

var ErrInvalidToken = errors.New("secure: invalid token")

// Signer issues HS256 tokens whose subject is a user id. API tokens
// authenticate HTTP callers; state tokens carry the user through an OAuth
// redirect.
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

type stateClaims struct {
	Platform string `json:"platform"`
	jwt.RegisteredClaims
}

func (s *Signer) IssueAPIToken(userID string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Audience:  jwt.ClaimStrings{audienceAPI},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Signer) ParseAPIToken(token string) (string, error) {
	var claims jwt.RegisteredClaims
	if err := s.parse(token, &claims, audienceAPI); err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *Signer) IssueState(userID, platform string) (string, error) {
	now := s.now()
	claims := stateClaims{
		Platform: platform,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Audience:  jwt.ClaimStrings{audienceState},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseState returns the user id and platform carried by an OAuth state.
func (s *Signer) ParseState(state string) (string, string, error) {
	var claims stateClaims
	if err := s.parse(state, &claims, audienceState); err != nil {
		return "", "", err
	}
	return claims.Subject, claims.Platform, nil
}

func (s *Signer) parse(token string, claims jwt.Claims, audience string) error {
	if len(s.secret) == 0 {
		return fmt.Errorf("%w: signer has no secret", ErrInvalidToken)
	}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return nil
}
