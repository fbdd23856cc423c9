package directory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// DepartmentNamer resolves a department id to its display name.
// Implementations never fail: on any problem they return a placeholder that
// embeds the id.
type DepartmentNamer interface {
	DepartmentName(ctx context.Context, token, departmentID string) string
}

// UnknownDepartmentName is the placeholder for an id with no known name
func UnknownDepartmentName(departmentID string) string {
	return fmt.Sprintf("(部署名不明: %s)", departmentID)
}

// FailedDepartmentName is the placeholder for an id whose lookup failed
func FailedDepartmentName(departmentID string) string {
	return fmt.Sprintf("(部署名取得失敗: %s)", departmentID)
}

// StaticTable maps department ids to names. It is loaded once at startup and
// read-only afterwards.
type StaticTable struct {
	names map[string]string
}

// NewStaticTable creates a table from an id -> name map
func NewStaticTable(names map[string]string) *StaticTable {
	copied := make(map[string]string, len(names))
	for id, name := range names {
		copied[id] = name
	}
	return &StaticTable{names: copied}
}

// Lookup returns the name for the id and whether it was present
func (t *StaticTable) Lookup(departmentID string) (string, bool) {
	name, ok := t.names[departmentID]
	return name, ok
}

// Len returns the number of departments in the table
func (t *StaticTable) Len() int {
	return len(t.names)
}

// DepartmentName implements DepartmentNamer
func (t *StaticTable) DepartmentName(_ context.Context, _ string, departmentID string) string {
	if name, ok := t.Lookup(departmentID); ok {
		return name
	}
	return UnknownDepartmentName(departmentID)
}

// ParseStaticTable reads "department_id,name" rows. A header row whose first
// column is "department_id" is skipped, as are blank ids.
func ParseStaticTable(r io.Reader) (*StaticTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	names := make(map[string]string)
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse department table: %w", err)
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("department table line %d: expected 2 columns, got %d", line, len(record))
		}

		id := strings.TrimSpace(strings.TrimPrefix(record[0], "\ufeff"))
		name := strings.TrimSpace(record[1])
		if id == "" || (line == 1 && strings.EqualFold(id, "department_id")) {
			continue
		}
		names[id] = name
	}

	return &StaticTable{names: names}, nil
}

// LoadStaticTable reads the department table from a CSV file
func LoadStaticTable(path string) (*StaticTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open department table: %w", err)
	}
	defer file.Close()

	return ParseStaticTable(file)
}

// Fallback asks the static table first and the secondary namer on a miss
type Fallback struct {
	Table     *StaticTable
	Secondary DepartmentNamer
}

// DepartmentName implements DepartmentNamer
func (f *Fallback) DepartmentName(ctx context.Context, token, departmentID string) string {
	if f.Table != nil {
		if name, ok := f.Table.Lookup(departmentID); ok {
			return name
		}
	}
	if f.Secondary == nil {
		return UnknownDepartmentName(departmentID)
	}
	return f.Secondary.DepartmentName(ctx, token, departmentID)
}
