package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/dto"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/repository"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/service"
)

var testCookie = CookieOptions{Name: "therapist_session"}

func newSessionRouter(t *testing.T) (*gin.Engine, *service.AuthService, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "therapists.csv")
	content := "username,password,therapist id,first_responder\n" +
		"drsmith,plain-secret,T-100,no\n" +
		"responder,other-secret,T-200,yes\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	auth := service.NewAuthService(repository.NewTherapistRepository(path), nil, nil, nil)

	router := gin.New()
	router.GET("/board", Session(auth, testCookie), func(c *gin.Context) {
		cred := TherapistFromContext(c)
		session := SessionFromContext(c)
		c.JSON(http.StatusOK, gin.H{"username": cred.Username, "token": session.Token})
	})
	return router, auth, path
}

func TestSessionRejectsAnonymous(t *testing.T) {
	router, _, _ := newSessionRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/board", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/board", nil)
	req.Header.Set("Authorization", "Bearer not-a-session")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionAcceptsCookieAndBearer(t *testing.T) {
	router, auth, _ := newSessionRouter(t)
	session, _, err := auth.Login(dto.LoginRequest{Username: "drsmith", Password: "plain-secret"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/board", nil)
	req.AddCookie(&http.Cookie{Name: testCookie.Name, Value: session.Token})
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"drsmith"`)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/board", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionBasicAuthOpensSession(t *testing.T) {
	router, auth, _ := newSessionRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/board", nil)
	req.SetBasicAuth("T-200", "other-secret")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"responder"`)
	assert.Equal(t, 1, auth.SessionCount())

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookie.Name, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/board", nil)
	req.SetBasicAuth("responder", "wrong")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionBasicAuthReusesOpenSession(t *testing.T) {
	router, auth, _ := newSessionRouter(t)

	var tokens []string
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/board", nil)
		req.SetBasicAuth("responder", "other-secret")
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		tokens = append(tokens, cookies[0].Value)
	}

	assert.Equal(t, 1, auth.SessionCount())
	assert.Equal(t, tokens[0], tokens[1])
	assert.Equal(t, tokens[0], tokens[2])
}

func TestSessionDropsRemovedAccount(t *testing.T) {
	router, auth, path := newSessionRouter(t)
	session, _, err := auth.Login(dto.LoginRequest{Username: "drsmith", Password: "plain-secret"})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("username,password\nresponder,other-secret\n"), 0o600))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/board", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, ok := auth.ResolveSession(session.Token)
	assert.False(t, ok)
}
