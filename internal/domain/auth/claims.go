package auth

import (
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	jmespath "github.com/jmespath-community/go-jmespath"
)

// ClaimExtractor reads a role candidate from decoded token claims.
// Expr is a JMESPath expression evaluated against the claim set; Transform,
// when set, rewrites the matched string before it is returned.
type ClaimExtractor struct {
	Name      string
	Expr      string
	Transform func(string) string
}

// Extract evaluates the extractor against claims.
// Only non-empty string results count as a match.
func (e ClaimExtractor) Extract(claims map[string]any) (string, bool) {
	v, err := jmespath.Search(e.Expr, claims)
	if err != nil || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	if e.Transform != nil {
		s = e.Transform(s)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

const authorityPrefix = "ROLE_"

// DefaultRoleExtractors is the legacy-compatible claim precedence:
// direct role, first authority without its ROLE_ prefix, scope, subject.
var DefaultRoleExtractors = []ClaimExtractor{
	{Name: "role", Expr: "role"},
	{
		Name:      "authority",
		Expr:      "authorities[0].authority",
		Transform: func(s string) string { return strings.Replace(s, authorityPrefix, "", 1) },
	},
	{Name: "scope", Expr: "scope"},
	{Name: "subject", Expr: "sub"},
}

// DecodeClaims decodes the payload segment of a JWT without verifying it.
func DecodeClaims(token string) (map[string]any, error) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return nil, jwt.ErrTokenMalformed
	}
	raw, err := jwt.DecodeSegment(parts[1])
	if err != nil {
		return nil, err
	}
	var claims map[string]any
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// RoleFromToken resolves a role from token claims using extractors in order.
// Any decode failure yields RoleNone.
func RoleFromToken(token string, extractors []ClaimExtractor) Role {
	if token == "" {
		return RoleNone
	}
	claims, err := DecodeClaims(token)
	if err != nil {
		return RoleNone
	}
	for _, ex := range extractors {
		if v, ok := ex.Extract(claims); ok {
			return Role(v)
		}
	}
	return RoleNone
}
