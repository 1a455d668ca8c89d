package domain

import (
	"time"
)

// Registration is one validated row of a course-registration spreadsheet.
type Registration struct {
	FullName     string    `json:"full_name"`
	RegisteredAt time.Time `json:"registered_at"`
	Course       string    `json:"course"`
	ContactEmail string    `json:"contact_email"`
	// Row is the 1-based spreadsheet row the record was read from (header is row 1).
	Row int `json:"row"`
}

// RegistrationSet holds registrations in source row order.
type RegistrationSet []Registration

// Len returns the number of registrations
func (s RegistrationSet) Len() int {
	return len(s)
}

// Summary holds dataset-wide figures.
type Summary struct {
	UniquePeople int       `json:"unique_people"`
	Earliest     time.Time `json:"earliest"`
	Latest       time.Time `json:"latest"`
	TotalRecords int       `json:"total_records"`
}

// CourseCount is the number of registrations for one course.
type CourseCount struct {
	Course string `json:"course"`
	Count  int    `json:"count"`
}

// CourseAggregate is ordered by descending count; ties keep first-seen order.
type CourseAggregate []CourseCount

// Total returns the sum of all counts
func (a CourseAggregate) Total() int {
	total := 0
	for _, c := range a {
		total += c.Count
	}
	return total
}

// Courses returns the course names in aggregate order
func (a CourseAggregate) Courses() []string {
	names := make([]string, len(a))
	for i, c := range a {
		names[i] = c.Course
	}
	return names
}

// RosterEntry is one attendee line of a course roster.
type RosterEntry struct {
	FullName     string `json:"full_name"`
	ContactEmail string `json:"contact_email"`
}

// CourseRoster lists the distinct attendees of a course in first-seen order.
type CourseRoster struct {
	Course  string        `json:"course"`
	Entries []RosterEntry `json:"entries"`
}

// Size returns the number of distinct attendees
func (r CourseRoster) Size() int {
	return len(r.Entries)
}

// Report is everything the document composer needs to lay out a report.
type Report struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	PreparedBy  string          `json:"prepared_by"`
	Summary     Summary         `json:"summary"`
	Courses     CourseAggregate `json:"courses"`
	Rosters     []CourseRoster  `json:"rosters"`
	Chart       []byte          `json:"-"`
	GeneratedAt time.Time       `json:"generated_at"`
}
