package repository

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTherapistRepositoryLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "therapists.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"Username,Password,Therapist ID,Name,First_Responder\n"+
			"DrKim,s3cret,T-100,Dr. Kim,yes\n"+
			"nopass,,T-200,,no\n"+
			"lee,pw,,Lee,\n"), 0o644))
	repo := NewTherapistRepository(path)

	records, err := repo.Load()
	require.NoError(t, err)
	assert.Len(t, records, 3)

	rec, err := repo.Find("drkim")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "DrKim", rec.Username)
	assert.Equal(t, "T-100", rec.StaffID)
	assert.Equal(t, "Dr. Kim", rec.DisplayName)
	assert.True(t, rec.FirstResponder)

	byID, err := repo.Find("t-100")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "DrKim", byID.Username)

	missing, err := repo.Find("nopass")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTherapistRepositoryInvalidatesOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "therapists.csv")
	require.NoError(t, os.WriteFile(path, []byte("username,password\nkim,one\n"), 0o644))
	repo := NewTherapistRepository(path)

	rec, err := repo.Find("kim")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "one", rec.Password)

	require.NoError(t, os.WriteFile(path, []byte("username,password\nkim,two-changed\n"), 0o644))
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	rec, err = repo.Find("kim")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "two-changed", rec.Password)
}

func TestTherapistRepositoryMissingFile(t *testing.T) {
	repo := NewTherapistRepository(filepath.Join(t.TempDir(), "none.csv"))

	records, err := repo.Load()
	require.NoError(t, err)
	assert.Empty(t, records)
}
