package service

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/repository"
	appErrors "github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/errors"
)

const rosterFixture = `first_name,last_name,student_id,has_extra,hipaa_consent,class_one,class_2,class_3,extra_swipe,extra_credit_class_1,extra_credit_class_2
Ada,Lovelace,900123456,False,False,Data Mining,nan,,,0,
Alan,Turing,900000002,True,True,Computability,Logic,,,,
Grace,Hopper,900000003,False,False,Compilers,,,,,2.0
`

func newRosterFixture(t *testing.T, content string) (*RosterService, *repository.RosterRepository) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "student_roster.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	repo := repository.NewRosterRepository(path)
	return NewRosterService(repo, NewMetricsService(), nil), repo
}

func TestRosterServiceLookupDerivesClasses(t *testing.T) {
	svc, _ := newRosterFixture(t, rosterFixture)

	student, err := svc.Lookup(" 900123456 ", true)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", student.FullName())
	assert.False(t, student.Consent)
	assert.False(t, student.HasClaimedExtraCredit)

	require.Len(t, student.Classes, 2)
	assert.Equal(t, "class_one", student.Classes[0].Key)
	assert.Equal(t, "Data Mining", student.Classes[0].Name)
	assert.Equal(t, "extra_credit_class_1", student.Classes[0].ExtraCreditColumn)
	assert.Equal(t, repository.ExtraSwipeColumn, student.Classes[1].Key)
	assert.Equal(t, repository.ExtraSwipeDefaultName, student.Classes[1].Name)

	withoutClasses, err := svc.Lookup("900123456", false)
	require.NoError(t, err)
	assert.Nil(t, withoutClasses.Classes)
}

func TestRosterServiceLookupErrors(t *testing.T) {
	svc, _ := newRosterFixture(t, rosterFixture)

	_, err := svc.Lookup("", false)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Lookup("123", false)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	broken, _ := newRosterFixture(t, "first_name,student_id\nAda,1\n")
	_, err = broken.Lookup("1", false)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))

	duplicated, _ := newRosterFixture(t, "first_name,last_name,student_id,class_one,class_one\nAda,Lovelace,1,Logic,Art\n")
	_, err = duplicated.Lookup("1", false)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))

	empty, _ := newRosterFixture(t, "first_name,last_name,student_id\n")
	_, err = empty.Lookup("1", false)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))

	missing := NewRosterService(repository.NewRosterRepository(filepath.Join(t.TempDir(), "absent.csv")), nil, nil)
	_, err = missing.Lookup("1", false)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestRosterServiceClaimExtraCreditRoundTrip(t *testing.T) {
	svc, repo := newRosterFixture(t, rosterFixture)

	claim, err := svc.ClaimExtraCredit("900123456", "CLASS_ONE", 1)
	require.NoError(t, err)
	assert.Equal(t, "class_one", claim.ClassKey)
	assert.Equal(t, "Data Mining", claim.ClassName)
	assert.Equal(t, 1, claim.PointsAwarded)
	assert.Equal(t, 1, claim.TotalPoints)

	table, err := repo.Load()
	require.NoError(t, err)
	row, ok := table.FindStudent("900123456")
	require.True(t, ok)
	assert.Equal(t, "1", table.Get(row, "extra_credit_class_1"))
	assert.Equal(t, "True", table.Get(row, repository.ColumnHasExtra))

	// Other students are untouched by the rewrite.
	other, ok := table.FindStudent("900000003")
	require.True(t, ok)
	assert.Equal(t, 2, repository.ParseExtraCredit(table.Get(other, "extra_credit_class_2")))

	student, err := svc.Lookup("900123456", true)
	require.NoError(t, err)
	assert.True(t, student.HasClaimedExtraCredit)
	assert.Equal(t, 1, student.Classes[0].Points)

	_, err = svc.ClaimExtraCredit("900123456", "extra_swipe", 1)
	assert.True(t, errors.Is(err, appErrors.ErrAlreadyClaimed))
}

func TestRosterServiceClaimValidation(t *testing.T) {
	svc, _ := newRosterFixture(t, rosterFixture)

	cases := []struct {
		name     string
		id       string
		classKey string
		points   int
		want     *appErrors.Error
	}{
		{name: "missing id", id: " ", classKey: "class_one", points: 1, want: appErrors.ErrValidation},
		{name: "missing class", id: "900123456", classKey: "", points: 1, want: appErrors.ErrValidation},
		{name: "unknown class key", id: "900123456", classKey: "class_9", points: 1, want: appErrors.ErrValidation},
		{name: "two points", id: "900123456", classKey: "class_one", points: 2, want: appErrors.ErrValidation},
		{name: "zero points", id: "900123456", classKey: "class_one", points: 0, want: appErrors.ErrValidation},
		{name: "unknown student", id: "404", classKey: "class_one", points: 1, want: appErrors.ErrNotFound},
		{name: "placeholder class", id: "900123456", classKey: "class_2", points: 1, want: appErrors.ErrNotFound},
		{name: "empty class", id: "900123456", classKey: "class_3", points: 1, want: appErrors.ErrNotFound},
		{name: "flag already set", id: "900000002", classKey: "class_one", points: 1, want: appErrors.ErrAlreadyClaimed},
		{name: "points already awarded", id: "900000003", classKey: "class_one", points: 1, want: appErrors.ErrAlreadyClaimed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ClaimExtraCredit(tc.id, tc.classKey, tc.points)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), err.Error())
		})
	}
}

func TestRosterServiceConcurrentClaimsAwardOnce(t *testing.T) {
	svc, repo := newRosterFixture(t, rosterFixture)

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		claimed   int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ClaimExtraCredit("900123456", "class_one", 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, appErrors.ErrAlreadyClaimed):
				claimed++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, claimed)

	table, err := repo.Load()
	require.NoError(t, err)
	row, _ := table.FindStudent("900123456")
	total := 0
	for _, col := range repository.RosterExtraCreditColumns {
		total += repository.ParseExtraCredit(table.Get(row, col))
	}
	assert.Equal(t, 1, total)
}

func TestRosterServiceSetConsentIdempotent(t *testing.T) {
	svc, _ := newRosterFixture(t, rosterFixture)

	require.NoError(t, svc.SetConsent("900123456", true))
	require.NoError(t, svc.SetConsent("900123456", true))

	student, err := svc.Lookup("900123456", false)
	require.NoError(t, err)
	assert.True(t, student.Consent)

	require.NoError(t, svc.SetConsent("900123456", false))
	student, err = svc.Lookup("900123456", false)
	require.NoError(t, err)
	assert.False(t, student.Consent)

	assert.True(t, errors.Is(svc.SetConsent("404", true), appErrors.ErrNotFound))
}
