package services

import (
	"encoding/json"
	"strings"

	"github.com/Renal37/fuel-orders/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// JWTService reads the claims of bearer tokens issued by the fuel order API.
type JWTService struct {
	parser *jwt.Parser
}

func NewJWTService() *JWTService {
	return &JWTService{parser: jwt.NewParser()}
}

// authority is a role claim, either {"authority": "ROLE_X"} or a bare string.
type authority string

func (a *authority) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*a = authority(plain)
		return nil
	}

	var object struct {
		Authority string `json:"authority"`
	}
	if err := json.Unmarshal(data, &object); err != nil {
		return err
	}

	*a = authority(object.Authority)
	return nil
}

type sessionClaims struct {
	Roles []authority `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Decode returns the session carried by token, or nil when the token cannot be read.
// The signature is not verified: the result only drives navigation, the backend
// authorizes every request itself.
func (j *JWTService) Decode(token string) *models.Session {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return nil
	}

	var claims sessionClaims
	if _, _, err := j.parser.ParseUnverified(token, &claims); err != nil {
		return nil
	}

	raw := make([]string, len(claims.Roles))
	for i, role := range claims.Roles {
		raw[i] = string(role)
	}

	session := &models.Session{
		Token:   token,
		Subject: claims.Subject,
		Roles:   models.NormalizeRoles(raw),
	}

	if claims.ExpiresAt != nil {
		expiry := claims.ExpiresAt.Time
		session.Expiry = &expiry
	}

	return session
}
