// Package validate holds the field format rules for contact data. All
// checks are pure predicates; callers decide what a false result means.
package validate

import "regexp"

var (
	// mobile numbers: leading 1, second digit 3-9, 11 digits total
	mobilePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)
	// landline numbers: 3-4 digit area code, hyphen, 7-8 digit number
	landlinePattern = regexp.MustCompile(`^\d{3,4}-\d{7,8}$`)
	// loose fallback: any 5-20 digit string
	loosePattern = regexp.MustCompile(`^\d{5,20}$`)

	emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

	// QQ numbers: 5-11 digits, must not start with 0
	qqPattern = regexp.MustCompile(`^[1-9][0-9]{4,10}$`)
)

// IsValidPhone reports whether s is an acceptable phone number: a
// mobile number, a landline number, or a plain digit string.
func IsValidPhone(s string) bool {
	return mobilePattern.MatchString(s) ||
		landlinePattern.MatchString(s) ||
		loosePattern.MatchString(s)
}

// IsValidEmail reports whether s has a local@domain.tld shape.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsValidQQ reports whether s is a well-formed QQ number.
func IsValidQQ(s string) bool {
	return qqPattern.MatchString(s)
}
