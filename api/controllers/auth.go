package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/connectedautocare/console-gateway/api/middleware"
	"github.com/connectedautocare/console-gateway/api/responses"
	"github.com/connectedautocare/console-gateway/api/validators"
	"github.com/connectedautocare/console-gateway/internal/session"
	"github.com/connectedautocare/console-gateway/pkg/auth"
	"github.com/connectedautocare/console-gateway/pkg/config"
	"github.com/connectedautocare/console-gateway/pkg/enums"
	pkgerrors "github.com/connectedautocare/console-gateway/pkg/errors"
	"github.com/connectedautocare/console-gateway/pkg/logger"
)

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerBody struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	FirstName     string `json:"first_name" validate:"required"`
	LastName      string `json:"last_name" validate:"required"`
	Role          string `json:"role" validate:"required,oneof=admin wholesale_reseller customer"`
	Phone         string `json:"phone,omitempty"`
	BusinessName  string `json:"business_name,omitempty" validate:"required_if=Role wholesale_reseller"`
	LicenseNumber string `json:"license_number,omitempty" validate:"required_if=Role wholesale_reseller"`
	LicenseState  string `json:"license_state,omitempty"`
}

type changePasswordBody struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

type sessionPayload struct {
	Authenticated bool `json:"authenticated"`
	Loading       bool `json:"loading"`
	User          any  `json:"user,omitempty"`
}

// AuthLogin exchanges credentials for a fresh session. Each successful login
// gets a new slot; the signed cookie only ever names the slot.
func AuthLogin(mgr *session.Manager, cookies config.CookieConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body loginBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sessionID := uuid.NewString()
		result := mgr.Login(ctx, sessionID, body.Email, body.Password)
		if !result.OK {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, result.Message))
			return
		}

		if err := establishSession(w, cookies, sessionID, result.User.Role); err != nil {
			mgr.Logout(ctx, sessionID)
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "establish session"))
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"user":       result.User,
			"redirectTo": session.LandingPath(result.User.Role),
		})
	}
}

// AuthRegister creates an account and logs the new user straight in.
func AuthRegister(mgr *session.Manager, cookies config.CookieConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body registerBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		role, err := enums.ParseUserRole(body.Role)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account role"))
			return
		}

		form := session.RegisterForm{
			Email:         body.Email,
			Password:      body.Password,
			FirstName:     body.FirstName,
			LastName:      body.LastName,
			Role:          role,
			Phone:         body.Phone,
			BusinessName:  body.BusinessName,
			LicenseNumber: body.LicenseNumber,
			LicenseState:  body.LicenseState,
		}

		sessionID := uuid.NewString()
		result := mgr.Register(ctx, sessionID, form)
		if !result.OK {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, result.Message))
			return
		}

		if err := establishSession(w, cookies, sessionID, result.User.Role); err != nil {
			mgr.Logout(ctx, sessionID)
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "establish session"))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"user":       result.User,
			"redirectTo": session.LandingPath(result.User.Role),
		})
	}
}

// AuthLogout tears the session down and always reports success. A request
// without a valid cookie still clears whatever cookie is there.
func AuthLogout(mgr *session.Manager, cookies config.CookieConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if claims, err := auth.SessionFromRequest(cookies, r); err == nil && claims != nil {
			mgr.Logout(ctx, claims.SessionID)
		}
		auth.ClearSessionCookie(w, cookies)
		responses.WriteSuccess(w, map[string]string{"status": "logged out"})
	}
}

// AuthSession reports the session snapshot the console boots from. The
// first call after a restart resolves the persisted token; later calls
// answer from the settled slot.
func AuthSession(mgr *session.Manager, cookies config.CookieConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, err := auth.SessionFromRequest(cookies, r)
		if err != nil || claims == nil {
			responses.WriteSuccess(w, sessionPayload{})
			return
		}

		state := mgr.Resolve(ctx, claims.SessionID)
		payload := sessionPayload{
			Authenticated: state.Authenticated(),
			Loading:       state.Loading,
		}
		if state.Authenticated() {
			payload.User = state.User
		} else {
			auth.ClearSessionCookie(w, cookies)
		}
		responses.WriteSuccess(w, payload)
	}
}

// AuthChangePassword forwards a password change for the guarded session.
func AuthChangePassword(mgr *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body changePasswordBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(ctx)
		result := mgr.ChangePassword(ctx, sessionID, body.CurrentPassword, body.NewPassword)
		if !result.OK {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, result.Message))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": result.Message})
	}
}

func establishSession(w http.ResponseWriter, cookies config.CookieConfig, sessionID string, role enums.UserRole) error {
	value, err := auth.MintSessionCookie(cookies, time.Now(), sessionID, string(role))
	if err != nil {
		return err
	}
	auth.WriteSessionCookie(w, cookies, value)
	return nil
}
