// Package auth validates inter-service auth tokens on the label write
// path: short-lived ES256K JWTs whose issuer is a DID.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bluesky-social/labeld/crypto"

	"github.com/golang-jwt/jwt/v5"
	lru "github.com/hashicorp/golang-lru/v2"
)

// TODO: check for uniqueness of JTI (random nonce) to prevent token replay

// Verifier checks a bearer token and returns the verified issuer DID.
type Verifier interface {
	Validate(ctx context.Context, tokenString string) (string, error)
}

// KeyResolver maps an issuer DID to its current signing public key.
type KeyResolver interface {
	ResolveKey(ctx context.Context, did string) (crypto.PublicKey, error)
}

// StaticResolver is a fixed DID to public key mapping, for deployments
// where the set of permitted issuers is configured up front.
type StaticResolver map[string]crypto.PublicKey

func (r StaticResolver) ResolveKey(ctx context.Context, did string) (crypto.PublicKey, error) {
	pub, ok := r[did]
	if !ok {
		return nil, fmt.Errorf("unknown issuer DID: %s", did)
	}
	return pub, nil
}

type ServiceAuthValidator struct {
	// Service DID reference for this validator: a DID with optional #-separated fragment
	Audience string

	resolver KeyResolver
	cache    *lru.Cache[string, crypto.PublicKey]
}

func NewServiceAuthValidator(audience string, resolver KeyResolver) *ServiceAuthValidator {
	cache, _ := lru.New[string, crypto.PublicKey](1024)
	return &ServiceAuthValidator{
		Audience: audience,
		resolver: resolver,
		cache:    cache,
	}
}

type serviceAuthClaims struct {
	jwt.RegisteredClaims

	LexMethod string `json:"lxm,omitempty"`
}

var _ Verifier = (*ServiceAuthValidator)(nil)

func (s *ServiceAuthValidator) Validate(ctx context.Context, tokenString string) (string, error) {

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(supportedAlgs),
		jwt.WithAudience(s.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(5 * time.Second),
	}

	token, err := jwt.ParseWithClaims(tokenString, &serviceAuthClaims{}, s.fetchIssuerKeyFunc(ctx), opts...)
	if err != nil && errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		// if signature validation fails, the cached key may be stale;
		// drop it and try again against the resolver
		insecure := jwt.NewParser(jwt.WithoutClaimsValidation())
		t, _, perr := insecure.ParseUnverified(tokenString, &jwt.MapClaims{})
		if perr != nil {
			return "", perr
		}
		claims, ok := t.Claims.(*jwt.MapClaims)
		if !ok {
			return "", jwt.ErrTokenInvalidClaims
		}
		iss, ierr := claims.GetIssuer()
		if ierr != nil {
			return "", ierr
		}
		s.cache.Remove(iss)
		token, err = jwt.ParseWithClaims(tokenString, &serviceAuthClaims{}, s.fetchIssuerKeyFunc(ctx), opts...)
	}
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*serviceAuthClaims)
	if !ok {
		return "", jwt.ErrTokenInvalidClaims
	}

	// NOTE: KeyFunc has already parsed issuer, so we know it is a valid DID
	return claims.Issuer, nil
}

// resolves public key for the token issuer, through the LRU cache
func (s *ServiceAuthValidator) fetchIssuerKeyFunc(ctx context.Context) func(token *jwt.Token) (any, error) {
	return func(token *jwt.Token) (any, error) {
		claims, ok := token.Claims.(*serviceAuthClaims)
		if !ok {
			return nil, jwt.ErrTokenInvalidClaims
		}
		iss, err := claims.GetIssuer()
		if err != nil {
			return nil, fmt.Errorf("%w: missing 'iss' claim", jwt.ErrTokenInvalidIssuer)
		}
		if !strings.HasPrefix(iss, "did:") {
			return nil, fmt.Errorf("%w: issuer is not a DID", jwt.ErrTokenInvalidIssuer)
		}
		if pub, ok := s.cache.Get(iss); ok {
			return pub, nil
		}
		pub, err := s.resolver.ResolveKey(ctx, iss)
		if err != nil {
			return nil, fmt.Errorf("%w: resolving key for %s: %w", jwt.ErrTokenInvalidIssuer, iss, err)
		}
		s.cache.Add(iss, pub)
		return pub, nil
	}
}

func randomNonce() string {
	buf := make([]byte, 16)
	rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}

// SignServiceAuth mints a short-lived service auth token for the given
// issuer DID and audience.
func SignServiceAuth(iss, aud string, ttl time.Duration, priv crypto.PrivateKey) (string, error) {
	claims := serviceAuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    iss,
			Audience:  []string{aud},
			ID:        randomNonce(),
		},
	}

	token := jwt.NewWithClaims(signingMethodES256K, claims)
	return token.SignedString(priv)
}
