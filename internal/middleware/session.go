package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/dto"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/models"
	appErrors "github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/errors"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/response"
)

// Context keys set by Session.
const (
	ContextSessionKey   = "therapistSession"
	ContextTherapistKey = "currentTherapist"
)

// SessionAuthenticator is the subset of the auth service the session
// middleware needs.
type SessionAuthenticator interface {
	Resume(req dto.LoginRequest) (*models.TherapistSession, *models.TherapistCredential, error)
	ResolveSession(token string) (*models.TherapistSession, bool)
	Credential(identifier string) (*models.TherapistCredential, error)
	Logout(token string)
}

// CookieOptions describes the therapist session cookie.
type CookieOptions struct {
	Name   string
	Secure bool
}

// SetSessionCookie writes an HttpOnly, SameSite=Lax session cookie.
func SetSessionCookie(c *gin.Context, opts CookieOptions, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(opts.Name, token, 0, "/", "", opts.Secure, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, opts CookieOptions) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(opts.Name, "", -1, "/", "", opts.Secure, true)
}

// Session protects therapist routes. The token is read from the session
// cookie or an Authorization: Bearer header. HTTP Basic credentials are
// accepted as a sign-in shortcut and resume the therapist's open session.
func Session(auth SessionAuthenticator, opts CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := resolveSession(c, auth, opts)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		cred, err := auth.Credential(session.Username)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if cred == nil {
			auth.Logout(session.Token)
			ClearSessionCookie(c, opts)
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "therapist account no longer exists"))
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, session)
		c.Set(ContextTherapistKey, cred)
		c.Next()
	}
}

func resolveSession(c *gin.Context, auth SessionAuthenticator, opts CookieOptions) (*models.TherapistSession, error) {
	if token := SessionToken(c, opts.Name); token != "" {
		if session, ok := auth.ResolveSession(token); ok {
			return session, nil
		}
	}

	if username, password, ok := c.Request.BasicAuth(); ok {
		session, _, err := auth.Resume(dto.LoginRequest{Username: username, Password: password})
		if err != nil {
			return nil, err
		}
		SetSessionCookie(c, opts, session.Token)
		return session, nil
	}

	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "sign in required")
}

// SessionToken returns the token from the session cookie or a Bearer header.
func SessionToken(c *gin.Context, cookieName string) string {
	if cookieName != "" {
		if value, err := c.Cookie(cookieName); err == nil && value != "" {
			return value
		}
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// TherapistFromContext returns the credential attached by Session.
func TherapistFromContext(c *gin.Context) *models.TherapistCredential {
	value, exists := c.Get(ContextTherapistKey)
	if !exists {
		return nil
	}
	cred, ok := value.(*models.TherapistCredential)
	if !ok {
		return nil
	}
	return cred
}

// SessionFromContext returns the session attached by Session.
func SessionFromContext(c *gin.Context) *models.TherapistSession {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	session, ok := value.(*models.TherapistSession)
	if !ok {
		return nil
	}
	return session
}
