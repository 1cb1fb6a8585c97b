package email

import (
	"regexp"
	"strings"
)

// Minimal local@domain.tld shape. Deliverability is the mail server's problem;
// validation here only rejects obviously broken addresses.
var shape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Valid reports whether addr has the minimal local@domain.tld shape.
func Valid(addr string) bool {
	return shape.MatchString(addr)
}

// Redact masks the local part of addr except its first character, keeping the
// domain intact. Addresses without an @ are returned unchanged. Used before
// sending employee data to external services.
func Redact(addr string) string {
	at := strings.IndexByte(addr, '@')
	if at <= 0 {
		return addr
	}
	return addr[:1] + "***" + addr[at:]
}
