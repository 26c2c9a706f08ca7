// Package middleware provides HTTP middleware for JWT authentication, request
// ids, and rate limiting.
package middleware

import (
	"context"
	"fmt"
	"strconv"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"

	"hr-approvals/internal/domain"
)

// JWTClaims holds the parsed claims from a validated JWT.
type JWTClaims struct {
	Subject  string
	Issuer   string
	Audience []string
	Raw      map[string]interface{}
}

// JWTValidator validates a JWT token and returns the parsed claims.
type JWTValidator interface {
	Validate(ctx context.Context, tokenString string) (*JWTClaims, error)
}

// OIDCValidator validates JWTs using OIDC discovery and JWKS.
type OIDCValidator struct {
	verifier       *oidc.IDTokenVerifier
	allowedIssuers map[string]bool
}

// HS256Validator validates JWTs signed with a shared HS256 secret.
type HS256Validator struct {
	secret   []byte
	audience string
}

// NewOIDCValidator creates a validator from an OIDC issuer URL.
func NewOIDCValidator(ctx context.Context, issuerURL, audience string) (*OIDCValidator, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc provider discovery: %w", err)
	}
	verifier := provider.Verifier(&oidc.Config{
		ClientID:          audience,
		SkipClientIDCheck: audience == "",
	})
	return &OIDCValidator{verifier: verifier, allowedIssuers: map[string]bool{issuerURL: true}}, nil
}

// NewOIDCValidatorFromJWKS creates a validator from a JWKS URL (no OIDC discovery).
func NewOIDCValidatorFromJWKS(ctx context.Context, jwksURL, issuerURL, audience string) (*OIDCValidator, error) {
	if jwksURL == "" {
		return nil, fmt.Errorf("JWKS URL is required")
	}
	keySet := oidc.NewRemoteKeySet(ctx, jwksURL)
	verifier := oidc.NewVerifier(issuerURL, keySet, &oidc.Config{
		ClientID:          audience,
		SkipClientIDCheck: audience == "",
		SkipIssuerCheck:   issuerURL == "",
	})
	issuers := make(map[string]bool, 1)
	if issuerURL != "" {
		issuers[issuerURL] = true
	}
	return &OIDCValidator{verifier: verifier, allowedIssuers: issuers}, nil
}

// NewHS256Validator creates a validator for local/dev HS256 tokens. A non-empty
// audience must appear in the token's aud claim.
func NewHS256Validator(secret, audience string) (*HS256Validator, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	return &HS256Validator{secret: []byte(secret), audience: audience}, nil
}

// Validate verifies the JWT using the OIDC provider's JWKS.
func (v *OIDCValidator) Validate(ctx context.Context, tokenString string) (*JWTClaims, error) {
	idToken, err := v.verifier.Verify(ctx, tokenString)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}

	if len(v.allowedIssuers) > 0 && !v.allowedIssuers[idToken.Issuer] {
		return nil, fmt.Errorf("issuer %q not in allowed list", idToken.Issuer)
	}

	var raw map[string]interface{}
	if err := idToken.Claims(&raw); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	return &JWTClaims{
		Subject:  idToken.Subject,
		Issuer:   idToken.Issuer,
		Audience: idToken.Audience,
		Raw:      raw,
	}, nil
}

// Validate verifies a JWT signed with HS256 and extracts claims.
func (v *HS256Validator) Validate(_ context.Context, tokenString string) (*JWTClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	tok, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method == nil || token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}

	raw, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("parse claims: unsupported claim type %T", tok.Claims)
	}

	claims := &JWTClaims{Raw: map[string]interface{}(raw)}
	if sub, ok := raw["sub"].(string); ok {
		claims.Subject = sub
	}
	if iss, ok := raw["iss"].(string); ok {
		claims.Issuer = iss
	}
	switch aud := raw["aud"].(type) {
	case string:
		claims.Audience = []string{aud}
	case []interface{}:
		for _, a := range aud {
			if s, ok := a.(string); ok {
				claims.Audience = append(claims.Audience, s)
			}
		}
	}

	return claims, nil
}

// ClaimNames names the token claims that carry the principal's attributes.
type ClaimNames struct {
	Role     string
	Tenant   string
	Employee string
}

// DefaultClaimNames returns the claim names used when none are configured.
func DefaultClaimNames() ClaimNames {
	return ClaimNames{Role: "role", Tenant: "tenant_id", Employee: "employee_id"}
}

func (n ClaimNames) withDefaults() ClaimNames {
	d := DefaultClaimNames()
	if n.Role == "" {
		n.Role = d.Role
	}
	if n.Tenant == "" {
		n.Tenant = d.Tenant
	}
	if n.Employee == "" {
		n.Employee = d.Employee
	}
	return n
}

// PrincipalFromClaims builds the caller's domain.Principal. The role is copied
// verbatim; normalizing legacy aliases is the role catalog's job. A missing
// tenant claim leaves TenantID nil, which only the super-principal role turns
// into an unrestricted scope.
func PrincipalFromClaims(c *JWTClaims, names ClaimNames) (domain.Principal, error) {
	if c == nil || c.Subject == "" {
		return domain.Principal{}, fmt.Errorf("token has no subject")
	}
	names = names.withDefaults()

	role, ok := claimString(c.Raw[names.Role])
	if !ok || role == "" {
		return domain.Principal{}, fmt.Errorf("token has no %q claim", names.Role)
	}

	p := domain.Principal{Subject: c.Subject, RawRole: role}
	if tenant, ok := claimString(c.Raw[names.Tenant]); ok && tenant != "" {
		p.TenantID = &tenant
	}
	if emp, ok := claimString(c.Raw[names.Employee]); ok && emp != "" {
		p.EmployeeID = &emp
	}
	return p, nil
}

// claimString reads a claim that identity providers emit either as a string,
// a number, or a list whose first element is used.
func claimString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case []interface{}:
		if len(t) == 0 {
			return "", false
		}
		return claimString(t[0])
	}
	return "", false
}
