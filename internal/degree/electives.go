package degree

import (
	"strconv"
	"strings"
	"unicode"
)

var (
	nonElectiveCS = map[string]bool{
		"CS 196": true, "CS 198": true, "CS 390A": true, "CS 390B": true, "CS 390C": true,
	}
	electiveDepartments = map[string]bool{"EE": true, "MATH": true, "STATS": true}
	namedSeminars       = map[string]bool{"CS 300": true, "EE 380": true, "EE 385A": true}
)

// splitCode splits "CS 224N" into ("CS", 224). ok is false when the code
// has no subject or no leading digits.
func splitCode(code string) (subject string, number int, ok bool) {
	subject, id, found := strings.Cut(strings.TrimSpace(code), " ")
	if !found {
		return "", 0, false
	}
	digits := strings.TrimRightFunc(id, func(r rune) bool { return !unicode.IsDigit(r) })
	digits = strings.TrimLeftFunc(digits, func(r rune) bool { return !unicode.IsDigit(r) })
	n, err := strconv.Atoi(digits)
	if err != nil {
		return subject, 0, false
	}
	return subject, n, true
}

// IsElective reports whether a course code counts as a general elective:
// CS above 111 except research and independent study, or EE, MATH and
// STATS at 100 and above. Seminars are classified by IsSeminar.
func IsElective(code string) bool {
	subject, n, ok := splitCode(code)
	if !ok {
		return false
	}
	if subject == "CS" && n > 111 && !nonElectiveCS[code] {
		return true
	}
	return electiveDepartments[subject] && n >= 100
}

// IsSeminar reports whether a course code is a seminar.
func IsSeminar(code string) bool {
	if namedSeminars[code] {
		return true
	}
	subject, n, ok := splitCode(code)
	return ok && subject == "CS" && n >= 500
}
