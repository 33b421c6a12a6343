package session

import (
	"strings"

	"github.com/connectedautocare/console-gateway/pkg/enums"
	"github.com/connectedautocare/console-gateway/pkg/platform"
)

// RegisterForm is the flat registration form submitted by the console.
// The manager validates it locally and maps it into the nested upstream
// payload; an invalid form never reaches the network.
type RegisterForm struct {
	Email         string
	Password      string
	FirstName     string
	LastName      string
	Role          enums.UserRole
	Phone         string
	BusinessName  string
	LicenseNumber string
	LicenseState  string
}

// Validate checks required fields, including the reseller-only fields.
// It returns a human-readable message for the first problem found.
func (f RegisterForm) Validate() (string, bool) {
	if strings.TrimSpace(f.Email) == "" {
		return "email is required", false
	}
	if f.Password == "" {
		return "password is required", false
	}
	if strings.TrimSpace(f.FirstName) == "" || strings.TrimSpace(f.LastName) == "" {
		return "first and last name are required", false
	}
	if !f.Role.IsValid() {
		return "invalid account role", false
	}
	if f.Role == enums.UserRoleWholesaleReseller {
		if strings.TrimSpace(f.BusinessName) == "" {
			return "business name is required for wholesale resellers", false
		}
		if strings.TrimSpace(f.LicenseNumber) == "" {
			return "license number is required for wholesale resellers", false
		}
	}
	return "", true
}

// Payload maps the flat form into the upstream register shape: profile
// phone travels nested for customers, while resellers carry their business
// fields and phone at the top level.
func (f RegisterForm) Payload() platform.RegisterPayload {
	payload := platform.RegisterPayload{
		Email:    strings.ToLower(strings.TrimSpace(f.Email)),
		Password: f.Password,
		Role:     f.Role,
		Profile: platform.RegisterProfile{
			FirstName: strings.TrimSpace(f.FirstName),
			LastName:  strings.TrimSpace(f.LastName),
		},
	}

	phone := strings.TrimSpace(f.Phone)
	switch f.Role {
	case enums.UserRoleCustomer:
		if phone != "" {
			payload.Profile.Phone = &phone
		}
	case enums.UserRoleWholesaleReseller:
		business := strings.TrimSpace(f.BusinessName)
		license := strings.TrimSpace(f.LicenseNumber)
		payload.BusinessName = &business
		payload.LicenseNumber = &license
		if state := strings.TrimSpace(f.LicenseState); state != "" {
			payload.LicenseState = &state
		}
		if phone != "" {
			payload.Phone = &phone
		}
	}

	return payload
}
