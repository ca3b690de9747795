package models

import "time"

// Landing pages of the front end by role.
const (
	LandingManager  = "/manager"
	LandingOperator = "/operator"
	LandingLogin    = "/login"
)

// Session is the set of claims carried by a bearer token.
// It is derived on the client without signature verification and only drives
// navigation decisions; the backend re-checks every request.
type Session struct {
	Token   string
	Subject string
	Roles   []Role
	Expiry  *time.Time
}

// IsValid reports whether the session has not expired at now.
// A session without expiry never expires on the client side.
func (s *Session) IsValid(now time.Time) bool {
	if s == nil {
		return false
	}

	if s.Expiry == nil {
		return true
	}

	return now.Before(*s.Expiry)
}

func (s *Session) HasAnyRole(required ...Role) bool {
	if s == nil {
		return false
	}

	for _, want := range required {
		for _, have := range s.Roles {
			if want == have {
				return true
			}
		}
	}

	return false
}

// LandingPage picks the page a user is sent to after login.
func (s *Session) LandingPage() string {
	switch {
	case s.HasAnyRole(RoleOperationsManager):
		return LandingManager
	case s.HasAnyRole(RoleAircraftOperator):
		return LandingOperator
	default:
		return LandingLogin
	}
}
