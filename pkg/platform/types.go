package platform

import (
	"github.com/connectedautocare/console-gateway/pkg/enums"
)

// Profile carries the nested profile block of an upstream user payload.
type Profile struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone,omitempty"`
	Company   *string `json:"company,omitempty"`
}

// User is the identity payload returned by login, register, and verify-token.
// It is owned by the session layer and never mutated elsewhere.
type User struct {
	ID            string         `json:"id"`
	Email         string         `json:"email"`
	Role          enums.UserRole `json:"role"`
	Profile       Profile        `json:"profile"`
	BusinessName  *string        `json:"business_name,omitempty"`
	LicenseNumber *string        `json:"license_number,omitempty"`
	LicenseState  *string        `json:"license_state,omitempty"`
	Status        string         `json:"status,omitempty"`
	CreatedAt     string         `json:"created_at,omitempty"`
	LastLogin     string         `json:"last_login,omitempty"`
	LoginCount    int            `json:"login_count,omitempty"`
}

// AuthResponse is the upstream reply to login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// VerifyResponse is the upstream reply to the verify-token endpoint.
type VerifyResponse struct {
	Valid bool  `json:"valid"`
	User  *User `json:"user,omitempty"`
}

// RegisterPayload is the nested shape the upstream register endpoint expects.
// The flat console form is mapped into it by the session layer.
type RegisterPayload struct {
	Email         string          `json:"email"`
	Password      string          `json:"password"`
	Role          enums.UserRole  `json:"role"`
	Profile       RegisterProfile `json:"profile"`
	BusinessName  *string         `json:"business_name,omitempty"`
	LicenseNumber *string         `json:"license_number,omitempty"`
	LicenseState  *string         `json:"license_state,omitempty"`
	Phone         *string         `json:"phone,omitempty"`
}

// RegisterProfile is the nested profile block of RegisterPayload.
type RegisterProfile struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyTokenRequest struct {
	Token string `json:"token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type upstreamError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (u upstreamError) text() string {
	if u.Error != "" {
		return u.Error
	}
	return u.Message
}
