package service

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/models"
	appErrors "github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/errors"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/storage"
)

// Alert sealing results recorded in metrics.
const (
	AlertResultSealed   = "sealed"
	AlertResultDisabled = "disabled"
	AlertResultFailed   = "failed"
)

const (
	sealKeySize       = 32
	sealNonceSize     = 24
	alertNameAttempts = 3
	cipherSuffix      = ".enc"
	keySuffix         = ".key"
)

var errSealedTooShort = errors.New("sealed payload too short")

type alertStorage interface {
	SaveExclusive(name string, data []byte) (string, error)
	Read(name string) ([]byte, error)
	Delete(name string) error
}

// AlertConfig tunes alert sealing.
type AlertConfig struct {
	Enabled   bool
	APIPrefix string
}

// AlertDownload describes a signed link to a sealed ciphertext.
type AlertDownload struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AlertService encrypts high-risk submissions at rest. Each alert gets a fresh
// key written next to, but separately from, its ciphertext.
type AlertService struct {
	storage alertStorage
	signer  *storage.SignedURLSigner
	metrics *MetricsService
	logger  *zap.Logger
	cfg     AlertConfig
	now     func() time.Time
	random  io.Reader
}

// NewAlertService constructs an AlertService. signer may be nil, in which
// case download links are not offered.
func NewAlertService(store alertStorage, signer *storage.SignedURLSigner, metrics *MetricsService, logger *zap.Logger, cfg AlertConfig) *AlertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertService{
		storage: store,
		signer:  signer,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
		random:  rand.Reader,
	}
}

// Seal encrypts text and stores the ciphertext and key as two artifacts. When
// sealing is disabled it returns nil, nil. Any failure returns nil and the
// error; callers are expected to continue without an alert.
func (s *AlertService) Seal(text string) (*models.AlertRecord, error) {
	if s == nil || !s.cfg.Enabled || s.storage == nil {
		if s != nil {
			s.metrics.RecordAlert(AlertResultDisabled)
			s.logger.Warn("alert sealing disabled; high-risk submission not persisted")
		}
		return nil, nil
	}

	record, err := s.seal(text)
	if err != nil {
		s.metrics.RecordAlert(AlertResultFailed)
		return nil, err
	}
	s.metrics.RecordAlert(AlertResultSealed)
	s.logger.Info("sealed high-risk submission",
		zap.String("alert_id", record.ID),
		zap.String("ciphertext_path", record.CiphertextPath),
		zap.String("key_path", record.KeyPath),
	)
	return record, nil
}

func (s *AlertService) seal(text string) (*models.AlertRecord, error) {
	var key [sealKeySize]byte
	if _, err := io.ReadFull(s.random, key[:]); err != nil {
		return nil, fmt.Errorf("generate alert key: %w", err)
	}
	var nonce [sealNonceSize]byte
	if _, err := io.ReadFull(s.random, nonce[:]); err != nil {
		return nil, fmt.Errorf("generate alert nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(text), &nonce, &key)
	encodedKey := []byte(base64.StdEncoding.EncodeToString(key[:]) + "\n")

	createdAt := s.now().UTC()
	var (
		cipherPath string
		baseName   string
		err        error
	)
	for attempt := 0; attempt < alertNameAttempts; attempt++ {
		baseName, err = s.artifactName(createdAt)
		if err != nil {
			return nil, err
		}
		cipherPath, err = s.storage.SaveExclusive(baseName+cipherSuffix, sealed)
		if err == nil || !errors.Is(err, storage.ErrExists) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("write alert ciphertext: %w", err)
	}

	keyPath, err := s.storage.SaveExclusive(baseName+keySuffix, encodedKey)
	if err != nil {
		if delErr := s.storage.Delete(baseName + cipherSuffix); delErr != nil {
			s.logger.Error("remove orphaned alert ciphertext", zap.String("path", cipherPath), zap.Error(delErr))
		}
		return nil, fmt.Errorf("write alert key: %w", err)
	}

	return &models.AlertRecord{
		ID:             uuid.NewString(),
		CiphertextPath: cipherPath,
		KeyPath:        keyPath,
		CreatedAt:      createdAt,
	}, nil
}

// artifactName returns alert_<UTC timestamp>_<8 hex chars>.
func (s *AlertService) artifactName(at time.Time) (string, error) {
	var suffix [4]byte
	if _, err := io.ReadFull(s.random, suffix[:]); err != nil {
		return "", fmt.Errorf("generate alert name: %w", err)
	}
	return fmt.Sprintf("alert_%s_%s", at.Format("20060102T150405Z"), hex.EncodeToString(suffix[:])), nil
}

// DownloadLink signs a short-lived URL for the alert ciphertext. The key is
// never downloadable.
func (s *AlertService) DownloadLink(record *models.AlertRecord) (*AlertDownload, error) {
	if s == nil || s.signer == nil || record == nil || record.CiphertextPath == "" {
		return nil, nil
	}
	token, expiresAt, err := s.signer.Generate(record.ID, filepath.Base(record.CiphertextPath))
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	return &AlertDownload{
		URL:       fmt.Sprintf("%s/therapist/alerts/download/%s", prefix, token),
		ExpiresAt: expiresAt,
	}, nil
}

// Ciphertext resolves a download token to the sealed bytes and file name.
func (s *AlertService) Ciphertext(token string) ([]byte, string, error) {
	if s == nil || s.signer == nil || s.storage == nil {
		return nil, "", appErrors.ErrNotFound
	}
	alertID, name, _, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, "", appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "alert not found")
	}
	if !strings.HasSuffix(name, cipherSuffix) || filepath.Base(name) != name {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "alert not found")
	}
	data, err := s.storage.Read(name)
	if err != nil {
		s.logger.Warn("alert ciphertext unavailable", zap.String("alert_id", alertID), zap.Error(err))
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "alert not found")
	}
	return data, name, nil
}

// OpenSealed decrypts a ciphertext artifact with the contents of its key
// artifact.
func OpenSealed(ciphertext, encodedKey []byte) ([]byte, error) {
	rawKey, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(encodedKey)))
	if err != nil {
		return nil, fmt.Errorf("decode alert key: %w", err)
	}
	if len(rawKey) != sealKeySize {
		return nil, fmt.Errorf("alert key must be %d bytes, got %d", sealKeySize, len(rawKey))
	}
	if len(ciphertext) < sealNonceSize+secretbox.Overhead {
		return nil, errSealedTooShort
	}
	var key [sealKeySize]byte
	var nonce [sealNonceSize]byte
	copy(key[:], rawKey)
	copy(nonce[:], ciphertext[:sealNonceSize])

	plain, ok := secretbox.Open(nil, ciphertext[sealNonceSize:], &nonce, &key)
	if !ok {
		return nil, fmt.Errorf("alert ciphertext failed authentication")
	}
	return plain, nil
}

// Unseal reads a ciphertext artifact and its detached key from disk and
// decrypts it.
func Unseal(cipherPath, keyPath string) ([]byte, error) {
	ciphertext, err := os.ReadFile(cipherPath)
	if err != nil {
		return nil, fmt.Errorf("read alert ciphertext: %w", err)
	}
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("read alert key: %w", err)
	}
	return OpenSealed(ciphertext, key)
}
