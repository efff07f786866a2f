package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/models"
)

var (
	staffIDAliases     = []string{"therapist_id", "therapist id", "therapist_id_number", "therapist id number"}
	displayNameAliases = []string{"therapist_name", "name"}
)

type credentialSnapshot struct {
	modTime time.Time
	size    int64
	records map[string]models.TherapistCredential
}

// TherapistRepository serves staff credentials from a CSV file. The parsed
// file is cached until its modification time or size changes.
type TherapistRepository struct {
	path string

	mu       sync.RWMutex
	snapshot *credentialSnapshot
}

// NewTherapistRepository returns a repository bound to path.
func NewTherapistRepository(path string) *TherapistRepository {
	return &TherapistRepository{path: path}
}

// Find returns the credential for a username or staff id, case-insensitive.
func (r *TherapistRepository) Find(identifier string) (*models.TherapistCredential, error) {
	records, err := r.Load()
	if err != nil {
		return nil, err
	}
	rec, ok := records[strings.ToLower(strings.TrimSpace(identifier))]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Load returns the credential map keyed by lower-cased username and staff id.
// A missing file yields an empty map.
func (r *TherapistRepository) Load() (map[string]models.TherapistCredential, error) {
	info, err := os.Stat(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.Reset()
			return map[string]models.TherapistCredential{}, nil
		}
		return nil, fmt.Errorf("stat therapist credentials: %w", err)
	}

	r.mu.RLock()
	snap := r.snapshot
	r.mu.RUnlock()
	if snap != nil && snap.modTime.Equal(info.ModTime()) && snap.size == info.Size() {
		return snap.records, nil
	}

	records, err := r.parse()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.snapshot = &credentialSnapshot{modTime: info.ModTime(), size: info.Size(), records: records}
	r.mu.Unlock()
	return records, nil
}

// Reset drops the cached snapshot.
func (r *TherapistRepository) Reset() {
	r.mu.Lock()
	r.snapshot = nil
	r.mu.Unlock()
}

func (r *TherapistRepository) parse() (map[string]models.TherapistCredential, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open therapist credentials: %w", err)
	}
	defer file.Close() //nolint:errcheck

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]models.TherapistCredential{}, nil
		}
		return nil, fmt.Errorf("read therapist credentials header: %w", err)
	}
	for i, col := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
	}

	records := make(map[string]models.TherapistCredential)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read therapist credentials: %w", err)
		}

		fields := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				if _, dup := fields[col]; !dup {
					fields[col] = strings.TrimSpace(row[i])
				}
			}
		}

		username := fields["username"]
		password := fields["password"]
		if username == "" || password == "" {
			continue
		}

		rec := models.TherapistCredential{
			Username:       username,
			Password:       password,
			StaffID:        firstNonEmpty(fields, staffIDAliases),
			DisplayName:    firstNonEmpty(fields, displayNameAliases),
			FirstResponder: ParseBoolFlag(fields["first_responder"]),
		}
		records[strings.ToLower(username)] = rec
		if rec.StaffID != "" {
			alias := strings.ToLower(rec.StaffID)
			if _, taken := records[alias]; !taken {
				records[alias] = rec
			}
		}
	}
	return records, nil
}

func firstNonEmpty(fields map[string]string, keys []string) string {
	for _, key := range keys {
		if v := fields[key]; v != "" {
			return v
		}
	}
	return ""
}
