package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/connectedautocare/console-gateway/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

var cookieSigningMethod = jwt.SigningMethodHS256

// SessionClaims represents the signed cookie handed to the browser. It names
// the server-side token slot; the upstream bearer token itself never leaves
// the gateway.
type SessionClaims struct {
	SessionID string `json:"sid"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// MintSessionCookie signs a cookie value for the provided session slot.
func MintSessionCookie(cfg config.CookieConfig, now time.Time, sessionID, role string) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("cookie secret is required")
	}
	if cfg.Issuer == "" {
		return "", fmt.Errorf("cookie issuer is required")
	}
	if cfg.TTLMinutes <= 0 {
		return "", fmt.Errorf("cookie ttl minutes must be positive")
	}
	if strings.TrimSpace(sessionID) == "" {
		return "", fmt.Errorf("session id is required")
	}

	claims := SessionClaims{
		SessionID: sessionID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL())),
		},
	}

	token := jwt.NewWithClaims(cookieSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing session cookie: %w", err)
	}
	return signed, nil
}

// ParseSessionCookie validates the cookie value and returns typed claims.
func ParseSessionCookie(cfg config.CookieConfig, value string) (*SessionClaims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("cookie secret is required")
	}

	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(
		value,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != cookieSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{cookieSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(claims.SessionID) == "" {
		return nil, fmt.Errorf("session cookie missing session id")
	}
	return claims, nil
}

// SessionFromRequest extracts and validates the session cookie, returning nil
// claims when the cookie is absent.
func SessionFromRequest(cfg config.CookieConfig, r *http.Request) (*SessionClaims, error) {
	cookie, err := r.Cookie(cfg.Name)
	if err != nil {
		return nil, nil
	}
	return ParseSessionCookie(cfg, cookie.Value)
}

// WriteSessionCookie attaches the signed cookie to the response.
func WriteSessionCookie(w http.ResponseWriter, cfg config.CookieConfig, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cfg.TTL().Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the cookie immediately.
func ClearSessionCookie(w http.ResponseWriter, cfg config.CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
