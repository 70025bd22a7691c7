// Package auth resolves bearer tokens to principals.
//
// The monitoring platform has three independent credential domains: end
// users who own websites, contributors who run checks, and operators who
// administer the platform. Each domain signs its tokens with its own
// secret and carries its principal id under its own claim key. The
// resolver tries the domains in a fixed order and returns the first
// identity that verifies.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Domain identifies which credential domain a principal belongs to.
//
// Domain is a string type for easy JSON serialization and human-readable
// logging while maintaining type safety through the defined constants.
type Domain string

const (
	// DomainUser is an end user who owns monitored websites.
	DomainUser Domain = "user"

	// DomainContributor is a check-running contributor.
	DomainContributor Domain = "contributor"

	// DomainOperator is a platform operator (admin).
	DomainOperator Domain = "operator"
)

// String returns the string representation of the domain.
func (d Domain) String() string {
	return string(d)
}

var (
	// ErrInvalidToken indicates the token failed verification under every
	// configured domain secret (or was empty).
	ErrInvalidToken = errors.New("invalid token")

	// ErrMalformedClaims indicates a signature verified but the claims did
	// not carry the principal id expected for that domain.
	ErrMalformedClaims = errors.New("malformed claims")
)

// Identity is a resolved principal: which domain it belongs to and its id
// within that domain.
type Identity struct {
	Domain      Domain
	PrincipalID string
}

// Secrets holds the HMAC signing secrets for the three domains.
//
// The resolver only verifies tokens; issuing them (and choosing the
// secrets) belongs to the surrounding platform.
type Secrets struct {
	User        string
	Contributor string
	Operator    string
}

// domainSpec binds a domain to its secret and the claim key carrying the
// principal id. The chain below is iterated in order; precedence depends
// only on which secret validates, never on token content.
type domainSpec struct {
	domain   Domain
	secret   []byte
	claimKey string
}

// Resolver classifies bearer tokens into one of the three domains.
//
// A Resolver is immutable after construction and safe for concurrent use.
type Resolver struct {
	chain []domainSpec
}

// NewResolver creates a [Resolver] for the given secrets.
//
// The attempt order is fixed: user, then contributor, then operator.
func NewResolver(secrets Secrets) *Resolver {
	return &Resolver{
		chain: []domainSpec{
			{DomainUser, []byte(secrets.User), "userId"},
			{DomainContributor, []byte(secrets.Contributor), "contributorId"},
			{DomainOperator, []byte(secrets.Operator), "operatorId"},
		},
	}
}

// Authenticate verifies token against each domain secret in order and
// returns the identity of the first domain that validates.
//
// Returns [ErrInvalidToken] if no secret verifies the token, and
// [ErrMalformedClaims] if a signature verified but the domain's id claim
// is absent or empty. Authenticate has no side effects; recording the
// identity against a connection is the caller's responsibility.
func (r *Resolver) Authenticate(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrInvalidToken
	}

	for _, spec := range r.chain {
		if len(spec.secret) == 0 {
			// domain not configured, skip rather than verify against ""
			continue
		}

		claims, ok := verify(token, spec.secret)
		if !ok {
			continue
		}

		id, ok := claims[spec.claimKey].(string)
		if !ok || id == "" {
			return Identity{}, fmt.Errorf("%w: %s claim missing for %s domain",
				ErrMalformedClaims, spec.claimKey, spec.domain)
		}

		return Identity{Domain: spec.domain, PrincipalID: id}, nil
	}

	return Identity{}, ErrInvalidToken
}

// verify parses and verifies an HS256 token against one secret, returning
// the decoded claims on success.
func verify(token string, secret []byte) (jwt.MapClaims, bool) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, false
	}
	return claims, true
}
