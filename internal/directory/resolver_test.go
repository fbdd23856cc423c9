package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() Snapshot {
	return Snapshot{
		{ID: "u1", Name: "Alice", DepartmentIDs: []string{"7", "9"}},
		{ID: "u2", Name: "Bob", DepartmentIDs: []string{"9"}},
		{ID: "u3", Name: "Carol", DepartmentIDs: []string{"9", "7"}},
		{ID: "u4", Name: "alice", DepartmentIDs: []string{"7"}},
		{ID: "u5", Name: "Alice", DepartmentIDs: nil},
		{ID: "u6", Name: "Dave", DepartmentIDs: []string{"3"}},
	}
}

func TestResolve_ExactMatch(t *testing.T) {
	matches := Resolve("Alice", testSnapshot())

	require.Len(t, matches, 2)
	assert.Equal(t, "u1", matches[0].User.ID)
	assert.Equal(t, "u5", matches[1].User.ID)
}

func TestResolve_TrimsInput(t *testing.T) {
	matches := Resolve("  Alice\n", testSnapshot())
	require.Len(t, matches, 2)
	assert.Equal(t, "u1", matches[0].User.ID)
}

func TestResolve_NoPartialOrCaseInsensitiveMatch(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "lower case", text: "alice", want: []string{"u4"}},
		{name: "prefix", text: "Ali", want: nil},
		{name: "substring", text: "lic", want: nil},
		{name: "upper case", text: "ALICE", want: nil},
		{name: "inner whitespace", text: "Al ice", want: nil},
		{name: "empty", text: "   ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, m := range Resolve(tt.text, testSnapshot()) {
				got = append(got, m.User.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_RosterUsesPrimaryDepartmentOnly(t *testing.T) {
	matches := Resolve("Alice", testSnapshot())
	require.NotEmpty(t, matches)

	m := matches[0]
	assert.Equal(t, "7", m.DepartmentID)
	assert.True(t, m.HasDepartment())

	var roster []string
	for _, u := range m.Roster {
		roster = append(roster, u.ID)
	}
	// Everyone whose department list contains 7, including the match itself;
	// Bob is only in 9 and must not appear.
	assert.Equal(t, []string{"u1", "u3", "u4"}, roster)
}

func TestResolve_NoDepartment(t *testing.T) {
	matches := Resolve("Alice", testSnapshot())
	require.Len(t, matches, 2)

	m := matches[1]
	assert.False(t, m.HasDepartment())
	assert.Empty(t, m.DepartmentID)
	assert.Empty(t, m.Roster)
}

func TestResolve_EmptySnapshot(t *testing.T) {
	assert.Empty(t, Resolve("Alice", nil))
}
