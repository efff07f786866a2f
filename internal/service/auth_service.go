package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/dto"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/models"
	appErrors "github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/errors"
)

const sessionTokenBytes = 32

type credentialStore interface {
	Find(identifier string) (*models.TherapistCredential, error)
	Reset()
}

// AuthService authenticates therapists and owns the in-memory session table.
// Sessions live until logout or process exit.
type AuthService struct {
	credentials credentialStore
	validator   *validator.Validate
	metrics     *MetricsService
	logger      *zap.Logger

	mu       sync.Mutex
	sessions map[string]models.TherapistSession

	random io.Reader
	now    func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(credentials credentialStore, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{
		credentials: credentials,
		validator:   validate,
		metrics:     metrics,
		logger:      logger,
		sessions:    make(map[string]models.TherapistSession),
		random:      rand.Reader,
		now:         time.Now,
	}
}

// Authenticate checks a username (or staff id) and password. Both are
// trimmed and must be non-empty. Stored bcrypt hashes are verified with
// bcrypt; other secrets are compared in constant time.
func (s *AuthService) Authenticate(username, password string) (*models.TherapistCredential, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, appErrors.ErrInvalidCredentials
	}
	cred, err := s.credentials.Find(username)
	if err != nil {
		s.logger.Error("load therapist credentials", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load therapist credentials")
	}
	if cred == nil || !passwordMatches(cred.Password, password) {
		return nil, appErrors.ErrInvalidCredentials
	}
	return cred, nil
}

func passwordMatches(stored, supplied string) bool {
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

// Login authenticates and opens a session.
func (s *AuthService) Login(req dto.LoginRequest) (*models.TherapistSession, *models.TherapistCredential, error) {
	return s.login(req, false)
}

// Resume authenticates and returns the therapist's existing session when one
// is open, issuing a new one otherwise.
func (s *AuthService) Resume(req dto.LoginRequest) (*models.TherapistSession, *models.TherapistCredential, error) {
	return s.login(req, true)
}

func (s *AuthService) login(req dto.LoginRequest, reuse bool) (*models.TherapistSession, *models.TherapistCredential, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Password = strings.TrimSpace(req.Password)
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "username and password are required")
	}

	cred, err := s.Authenticate(req.Username, req.Password)
	if err != nil {
		return nil, nil, err
	}

	if reuse {
		if session, ok := s.sessionFor(cred.Username); ok {
			return session, cred, nil
		}
	}

	session, err := s.issue(cred.Username)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	s.logger.Info("therapist signed in", zap.String("username", cred.Username), zap.Bool("first_responder", cred.FirstResponder))
	return session, cred, nil
}

func (s *AuthService) sessionFor(username string) (*models.TherapistSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.sessions {
		if session.Username == username {
			found := session
			return &found, true
		}
	}
	return nil, false
}

func (s *AuthService) issue(username string) (*models.TherapistSession, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	session := models.TherapistSession{
		Token:     base64.RawURLEncoding.EncodeToString(buf),
		Username:  username,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	count := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SetActiveSessions(count)
	return &session, nil
}

// ResolveSession returns the session for token.
func (s *AuthService) ResolveSession(token string) (*models.TherapistSession, bool) {
	if token == "" {
		return nil, false
	}
	s.mu.Lock()
	session, ok := s.sessions[token]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	return &session, true
}

// Logout drops the session. Unknown tokens are ignored.
func (s *AuthService) Logout(token string) {
	if token == "" {
		return
	}
	s.mu.Lock()
	delete(s.sessions, token)
	count := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(count)
}

// Credential returns the current credential for a username or staff id, or
// nil when it no longer exists.
func (s *AuthService) Credential(identifier string) (*models.TherapistCredential, error) {
	cred, err := s.credentials.Find(identifier)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load therapist credentials")
	}
	return cred, nil
}

// SessionCount returns the number of open sessions.
func (s *AuthService) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Reset clears every session and the credential cache.
func (s *AuthService) Reset() {
	s.mu.Lock()
	s.sessions = make(map[string]models.TherapistSession)
	s.mu.Unlock()
	s.credentials.Reset()
	s.metrics.SetActiveSessions(0)
}
