package utils // package utils provides helper functions for validation, hashing and tokens

import (
	"net/mail"
	"regexp"
	"strings"
)

// specialChars matches any character outside the plain alphanumeric set.
// Everything that is not a letter or a digit counts as a special character.
var specialChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// IsValidEmail reports whether s has the shape of an email address:
// local@domain with a dot in the domain part.  No DNS or mailbox
// verification is performed.
func IsValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	if at < 1 || at == len(s)-1 {
		return false
	}
	domain := s[at+1:]
	// require a dot-containing domain, not leading or trailing
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

// ContainsSpecialCharacters reports whether s contains any character
// outside [A-Za-z0-9].  Usernames must be purely alphanumeric.
func ContainsSpecialCharacters(s string) bool {
	return specialChars.MatchString(s)
}

// IsPasswordLongEnough applies the password policy: at least six
// characters.  This is a deliberate minimum bar, not a strength check.
func IsPasswordLongEnough(password string) bool {
	return len(password) > 5
}
