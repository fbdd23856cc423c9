package directory

import "strings"

// User is one entry of the tenant directory
type User struct {
	ID            string
	Name          string
	DepartmentIDs []string
}

// PrimaryDepartmentID returns the first department id, or "" when the user
// belongs to no department
func (u User) PrimaryDepartmentID() string {
	if len(u.DepartmentIDs) == 0 {
		return ""
	}
	return u.DepartmentIDs[0]
}

// InDepartment reports whether the user belongs to the department
func (u User) InDepartment(departmentID string) bool {
	for _, id := range u.DepartmentIDs {
		if id == departmentID {
			return true
		}
	}
	return false
}

// Snapshot is the full directory listing fetched for a single query.
// It is owned by one request and never shared.
type Snapshot []User

// Match is a user whose name equals the queried text, together with the
// members of the user's primary department
type Match struct {
	User         User
	DepartmentID string
	Roster       []User
}

// HasDepartment reports whether the matched user has a primary department
func (m Match) HasDepartment() bool {
	return m.DepartmentID != ""
}

// Resolve returns the users whose name is exactly the trimmed text.
// Matching is case-sensitive; there is no partial or fuzzy matching.
// Matches and rosters keep snapshot order.
func Resolve(text string, snapshot Snapshot) []Match {
	query := strings.TrimSpace(text)
	if query == "" {
		return nil
	}

	var matches []Match
	for _, user := range snapshot {
		if user.Name != query {
			continue
		}
		match := Match{
			User:         user,
			DepartmentID: user.PrimaryDepartmentID(),
		}
		if match.HasDepartment() {
			match.Roster = snapshot.Members(match.DepartmentID)
		}
		matches = append(matches, match)
	}
	return matches
}

// Members returns every user belonging to the department, in snapshot order
func (s Snapshot) Members(departmentID string) []User {
	var members []User
	for _, user := range s {
		if user.InDepartment(departmentID) {
			members = append(members, user)
		}
	}
	return members
}
