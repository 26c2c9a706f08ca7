package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-32-bytes-long-xxxxx"

// makeToken creates a signed HS256 JWT from the given secret and claims.
func makeToken(secret string, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := token.SignedString([]byte(secret))
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":         "user-123",
		"iss":         "https://auth.example.com",
		"aud":         "hr-approvals",
		"exp":         time.Now().Add(time.Hour).Unix(),
		"role":        "rh",
		"tenant_id":   "t1",
		"employee_id": "e-42",
	}
}

func TestNewHS256Validator(t *testing.T) {
	t.Parallel()

	_, err := NewHS256Validator("", "")
	require.Error(t, err)

	v, err := NewHS256Validator("my-secret", "aud")
	require.NoError(t, err)
	assert.Equal(t, []byte("my-secret"), v.secret)
	assert.Equal(t, "aud", v.audience)
}

func TestHS256Validator_Validate(t *testing.T) {
	t.Parallel()

	with := func(mut func(jwt.MapClaims)) jwt.MapClaims {
		c := validClaims()
		mut(c)
		return c
	}

	tests := []struct {
		name     string
		audience string
		token    string
		wantErr  bool
		wantAud  []string
	}{
		{
			name:    "valid token",
			token:   makeToken(testSecret, validClaims()),
			wantAud: []string{"hr-approvals"},
		},
		{
			name:     "audience enforced",
			audience: "hr-approvals",
			token:    makeToken(testSecret, validClaims()),
			wantAud:  []string{"hr-approvals"},
		},
		{
			name:     "audience list",
			audience: "hr-approvals",
			token: makeToken(testSecret, with(func(c jwt.MapClaims) {
				c["aud"] = []interface{}{"other", "hr-approvals"}
			})),
			wantAud: []string{"other", "hr-approvals"},
		},
		{
			name:     "wrong audience",
			audience: "hr-approvals",
			token: makeToken(testSecret, with(func(c jwt.MapClaims) {
				c["aud"] = "someone-else"
			})),
			wantErr: true,
		},
		{
			name:    "wrong secret",
			token:   makeToken("another-secret", validClaims()),
			wantErr: true,
		},
		{
			name: "expired",
			token: makeToken(testSecret, with(func(c jwt.MapClaims) {
				c["exp"] = time.Now().Add(-time.Minute).Unix()
			})),
			wantErr: true,
		},
		{
			name: "no expiry",
			token: makeToken(testSecret, with(func(c jwt.MapClaims) {
				delete(c, "exp")
			})),
			wantErr: true,
		},
		{
			name:    "garbage",
			token:   "not-a-jwt",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, err := NewHS256Validator(testSecret, tt.audience)
			require.NoError(t, err)

			claims, err := v.Validate(context.Background(), tt.token)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "token verification failed")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user-123", claims.Subject)
			assert.Equal(t, "https://auth.example.com", claims.Issuer)
			assert.Equal(t, tt.wantAud, claims.Audience)
			assert.Equal(t, "rh", claims.Raw["role"])
		})
	}
}

func TestHS256Validator_RejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims())
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	v, err := NewHS256Validator(testSecret, "")
	require.NoError(t, err)
	_, err = v.Validate(context.Background(), signed)
	require.Error(t, err)
}

func TestPrincipalFromClaims(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		claims       *JWTClaims
		names        ClaimNames
		wantErr      string
		wantRole     string
		wantTenant   *string
		wantEmployee *string
	}{
		{
			name: "all claims with default names",
			claims: &JWTClaims{Subject: "u1", Raw: map[string]interface{}{
				"role": "RH", "tenant_id": "t1", "employee_id": "e1",
			}},
			wantRole:     "RH",
			wantTenant:   ptrStr("t1"),
			wantEmployee: ptrStr("e1"),
		},
		{
			name: "custom claim names",
			claims: &JWTClaims{Subject: "u1", Raw: map[string]interface{}{
				"https://hr/roles": []interface{}{"supervisor", "employee"},
				"org":              "t9",
			}},
			names:      ClaimNames{Role: "https://hr/roles", Tenant: "org", Employee: "emp"},
			wantRole:   "supervisor",
			wantTenant: ptrStr("t9"),
		},
		{
			name: "numeric employee id",
			claims: &JWTClaims{Subject: "u1", Raw: map[string]interface{}{
				"role": "employee", "tenant_id": "t1", "employee_id": float64(1042),
			}},
			wantRole:     "employee",
			wantTenant:   ptrStr("t1"),
			wantEmployee: ptrStr("1042"),
		},
		{
			name: "no tenant leaves tenant nil",
			claims: &JWTClaims{Subject: "root", Raw: map[string]interface{}{
				"role": "SUPER_ADMIN",
			}},
			wantRole: "SUPER_ADMIN",
		},
		{
			name:    "missing subject",
			claims:  &JWTClaims{Raw: map[string]interface{}{"role": "rh"}},
			wantErr: "no subject",
		},
		{
			name:    "missing role",
			claims:  &JWTClaims{Subject: "u1", Raw: map[string]interface{}{"tenant_id": "t1"}},
			wantErr: `no "role" claim`,
		},
		{
			name:    "nil claims",
			wantErr: "no subject",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := PrincipalFromClaims(tt.claims, tt.names)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.claims.Subject, p.Subject)
			assert.Equal(t, tt.wantRole, p.RawRole)
			assert.Equal(t, tt.wantTenant, p.TenantID)
			assert.Equal(t, tt.wantEmployee, p.EmployeeID)
		})
	}
}

func ptrStr(s string) *string { return &s }
