package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Roster column layout.
var (
	RosterRequiredColumns = []string{"first_name", "last_name", "student_id"}
	RosterStatusColumns   = []string{ColumnHasExtra, ColumnConsent}
	RosterClassColumns    = []string{
		"class_one", "class_2", "class_3", "class_4",
		"class_5", "class_6", "class_7", "class_8",
		ExtraSwipeColumn,
	}
	RosterExtraCreditColumns = []string{
		"extra_credit_class_1", "extra_credit_class_2", "extra_credit_class_3", "extra_credit_class_4",
		"extra_credit_class_5", "extra_credit_class_6", "extra_credit_class_7", "extra_credit_class_8",
		"extra_credit_extra_swipe",
	}
)

const (
	ColumnStudentID       = "student_id"
	ColumnFirstName       = "first_name"
	ColumnLastName        = "last_name"
	ColumnHasExtra        = "has_extra"
	ColumnConsent         = "hipaa_consent"
	ExtraSwipeColumn      = "extra_swipe"
	legacyHasExtraColumn  = "has_extra_credit"
	ExtraSwipeDefaultName = "Add one extra dining swipe"
)

// ErrRosterMissing is returned when the roster file does not exist.
var ErrRosterMissing = errors.New("student roster file not found")

// MissingColumnsError reports required roster columns absent from the header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "student roster missing required columns: " + strings.Join(e.Columns, ", ")
}

// DuplicateColumnsError reports roster header names that appear more than once.
type DuplicateColumnsError struct {
	Columns []string
}

func (e *DuplicateColumnsError) Error() string {
	return "student roster has duplicate columns: " + strings.Join(e.Columns, ", ")
}

// ExtraCreditColumnFor maps a class slot to its extra-credit column.
func ExtraCreditColumnFor(classKey string) (string, bool) {
	for i, col := range RosterClassColumns {
		if col == classKey {
			return RosterExtraCreditColumns[i], true
		}
	}
	return "", false
}

// RosterTable is a full in-memory copy of the roster file. Cells are strings.
type RosterTable struct {
	header []string
	index  map[string]int
	rows   [][]string
}

func newRosterTable(header []string, rows [][]string) *RosterTable {
	t := &RosterTable{header: header, index: make(map[string]int, len(header)), rows: rows}
	for i, col := range header {
		if _, dup := t.index[col]; !dup {
			t.index[col] = i
		}
	}
	return t
}

// Header returns the column names in file order.
func (t *RosterTable) Header() []string {
	return append([]string(nil), t.header...)
}

// Len returns the number of data rows.
func (t *RosterTable) Len() int {
	return len(t.rows)
}

// Has reports whether the column exists.
func (t *RosterTable) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Get returns the trimmed cell value, empty when the column is absent.
func (t *RosterTable) Get(row int, col string) string {
	idx, ok := t.index[col]
	if !ok || row < 0 || row >= len(t.rows) || idx >= len(t.rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.rows[row][idx])
}

// Set writes a cell, adding the column when missing.
func (t *RosterTable) Set(row int, col, value string) {
	if row < 0 || row >= len(t.rows) {
		return
	}
	if !t.Has(col) {
		t.addColumn(col)
	}
	t.rows[row][t.index[col]] = value
}

// FindStudent returns the first row whose trimmed student id equals id.
func (t *RosterTable) FindStudent(id string) (int, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1, false
	}
	for i := range t.rows {
		if t.Get(i, ColumnStudentID) == id {
			return i, true
		}
	}
	return -1, false
}

func (t *RosterTable) addColumn(col string) {
	t.index[col] = len(t.header)
	t.header = append(t.header, col)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], "")
	}
}

// reorder puts known columns first, keeping unknown ones after them.
func (t *RosterTable) reorder() {
	preferred := make([]string, 0, len(t.header))
	preferred = append(preferred, RosterRequiredColumns...)
	preferred = append(preferred, RosterStatusColumns...)
	preferred = append(preferred, RosterClassColumns...)
	preferred = append(preferred, RosterExtraCreditColumns...)

	seen := make(map[string]struct{}, len(t.header))
	order := make([]string, 0, len(t.header))
	for _, col := range preferred {
		if t.Has(col) {
			order = append(order, col)
			seen[col] = struct{}{}
		}
	}
	for _, col := range t.header {
		if _, ok := seen[col]; !ok {
			order = append(order, col)
			seen[col] = struct{}{}
		}
	}

	rows := make([][]string, len(t.rows))
	for i := range t.rows {
		row := make([]string, len(order))
		for j, col := range order {
			row[j] = t.rows[i][t.index[col]]
		}
		rows[i] = row
	}
	*t = *newRosterTable(order, rows)
}

// RosterRepository reads and writes the roster CSV. Every Load re-reads the
// file; callers mutating the ledger must do so inside WithLedgerLock.
type RosterRepository struct {
	path string
	mu   sync.Mutex
}

// NewRosterRepository returns a repository bound to path.
func NewRosterRepository(path string) *RosterRepository {
	return &RosterRepository{path: path}
}

// Path returns the backing file location.
func (r *RosterRepository) Path() string {
	return r.path
}

// WithLedgerLock runs fn with exclusive access to the ledger.
func (r *RosterRepository) WithLedgerLock(fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn()
}

// Load reads the whole roster, normalising headers and synthesising
// optional columns.
func (r *RosterRepository) Load() (*RosterTable, error) {
	file, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrRosterMissing, r.path)
		}
		return nil, fmt.Errorf("open student roster: %w", err)
	}
	defer file.Close() //nolint:errcheck

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &MissingColumnsError{Columns: append([]string(nil), RosterRequiredColumns...)}
		}
		return nil, fmt.Errorf("read student roster header: %w", err)
	}
	seen := make(map[string]struct{}, len(header))
	var duplicates []string
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if col == "" {
			col = fmt.Sprintf("unnamed_%d", i)
		}
		if _, dup := seen[col]; dup {
			duplicates = append(duplicates, col)
		}
		seen[col] = struct{}{}
		header[i] = col
	}
	if len(duplicates) > 0 {
		return nil, &DuplicateColumnsError{Columns: duplicates}
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read student roster: %w", err)
		}
		if isBlankRecord(record) {
			continue
		}
		row := make([]string, len(header))
		copy(row, record)
		rows = append(rows, row)
	}

	table := newRosterTable(header, rows)

	if !table.Has(ColumnHasExtra) && table.Has(legacyHasExtraColumn) {
		table.addColumn(ColumnHasExtra)
		for i := range table.rows {
			table.Set(i, ColumnHasExtra, table.Get(i, legacyHasExtraColumn))
		}
	}

	var missing []string
	for _, col := range RosterRequiredColumns {
		if !table.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	for _, group := range [][]string{RosterClassColumns, RosterExtraCreditColumns, RosterStatusColumns} {
		for _, col := range group {
			if !table.Has(col) {
				table.addColumn(col)
			}
		}
	}
	table.reorder()

	for i := range table.rows {
		table.Set(i, ColumnHasExtra, FormatBoolFlag(ParseBoolFlag(table.Get(i, ColumnHasExtra))))
		table.Set(i, ColumnConsent, FormatBoolFlag(ParseBoolFlag(table.Get(i, ColumnConsent))))
	}

	return table, nil
}

// Save replaces the roster file with table. The write goes to a temporary
// file in the same directory and is renamed into place.
func (r *RosterRepository) Save(table *RosterTable) error {
	if table == nil {
		return fmt.Errorf("nil roster table")
	}
	table.reorder()

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".roster-*.csv")
	if err != nil {
		return fmt.Errorf("create roster temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	writer := csv.NewWriter(tmp)
	if err := writer.Write(table.header); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write roster header: %w", err)
	}
	if err := writer.WriteAll(table.rows); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write roster rows: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close roster temp file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		cleanup()
		return fmt.Errorf("replace student roster: %w", err)
	}
	return nil
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ParseBoolFlag accepts 1/true/yes/y/on, case-insensitive.
func ParseBoolFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// FormatBoolFlag renders a flag the way Load normalises it.
func FormatBoolFlag(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// ParseExtraCredit reads a points cell; "2.0" is 2 and junk is 0.
func ParseExtraCredit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return int(f)
}
