package scoring

import (
	"strings"

	"github.com/cpapescrim1106/blueprintproject/internal/omsdata"
)

var (
	firstNameColumns = []string{"First name", "First Name", "First"}
	lastNameColumns  = []string{"Last name", "Last Name", "Last"}
	fullNameColumns  = []string{"Patient name", "Patient", "Name"}
	locationColumns  = []string{"Location", "Clinic", "Office"}
)

// NameLocationKey builds the normalized composite used to match a patient
// across tables when no patient id links them. The match is lossy (name
// collisions are possible) and stays best-effort on purpose.
func NameLocationKey(first, last, location string) string {
	name := strings.Join(strings.Fields(first+" "+last), " ")
	return strings.ToLower(name) + "|" + strings.ToLower(strings.TrimSpace(location))
}

// RowNameLocationKey derives the composite key from a canonical row, trying
// split first/last name columns before a combined name column. The second
// return is false when the row carries no usable name.
func RowNameLocationKey(row omsdata.RowData) (string, bool) {
	location, _ := row.FirstNonEmpty(locationColumns...)

	first, okFirst := row.FirstNonEmpty(firstNameColumns...)
	last, okLast := row.FirstNonEmpty(lastNameColumns...)
	if okFirst || okLast {
		return NameLocationKey(first, last, location), true
	}

	if full, ok := row.FirstNonEmpty(fullNameColumns...); ok {
		return NameLocationKey(full, "", location), true
	}
	return "", false
}
