package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/felixgeelhaar/clinicq/pkg/observability"
)

// Claims identify the caller: sub is the actor ID and role one of
// patient, doctor or admin.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Authenticator verifies HS256 bearer tokens. Token issuance belongs to
// the identity provider; IssueToken exists for local tooling and tests.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret []byte) *Authenticator {
	return &Authenticator{secret: secret}
}

// IssueToken signs a token for actor that expires after ttl.
func (a *Authenticator) IssueToken(actor sharedDomain.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: actor.Role.String(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Authenticate resolves the bearer token in header to an actor.
func (a *Authenticator) Authenticate(header string) (sharedDomain.Actor, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return sharedDomain.Actor{}, errors.New("invalid authorization format")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(parts[1], claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return sharedDomain.Actor{}, fmt.Errorf("invalid token: %w", err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return sharedDomain.Actor{}, fmt.Errorf("invalid subject: %w", err)
	}
	role, err := sharedDomain.ParseRole(claims.Role)
	if err != nil {
		return sharedDomain.Actor{}, err
	}
	return sharedDomain.NewActor(id, role)
}

// actorHandler is an HTTP handler that runs on behalf of an actor.
type actorHandler func(w http.ResponseWriter, r *http.Request, actor sharedDomain.Actor)

// Require rejects requests without a valid bearer token with 401.
func (a *Authenticator) Require(next actorHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeJSON(w, http.StatusUnauthorized, &APIError{Code: "unauthorized", Message: "missing authorization header"})
			return
		}
		actor, err := a.Authenticate(header)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, &APIError{Code: "unauthorized", Message: err.Error()})
			return
		}

		ctx := observability.WithActorID(r.Context(), actor.ID.String())
		next(w, r.WithContext(ctx), actor)
	})
}
