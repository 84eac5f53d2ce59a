// Package validation is the gate every task and account payload passes
// through before it may reach a store.
package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/geocoder89/taskhub/internal/domain/task"
)

const (
	TitleMinLen       = 3
	TitleMaxLen       = 100
	DescriptionMaxLen = 500
	PasswordMinLen    = 6
	NameMinLen        = 2
	NameMaxLen        = 50

	// bcrypt only looks at the first 72 bytes of its input
	PasswordMaxBytes = 72
)

func trimmedLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

func ValidTitle(s string) bool {
	n := trimmedLen(s)
	return n >= TitleMinLen && n <= TitleMaxLen
}

func ValidDescription(s string) bool {
	return trimmedLen(s) <= DescriptionMaxLen
}

func ValidStatus(s string) bool {
	return task.Status(s).IsValid()
}

// ValidEmail accepts the local@domain.tld shape: exactly one '@', no
// whitespace, and a dot inside the domain part.
func ValidEmail(s string) bool {
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return false
	}

	local, domain, ok := strings.Cut(s, "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return false
	}

	dot := strings.LastIndex(domain, ".")

	return dot > 0 && dot < len(domain)-1 && !strings.HasPrefix(domain, ".")
}

func ValidPassword(s string) bool {
	return utf8.RuneCountInString(s) >= PasswordMinLen
}

func ValidName(s string) bool {
	n := trimmedLen(s)
	return n >= NameMinLen && n <= NameMaxLen
}
