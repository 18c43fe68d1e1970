package utils

import (
	"net/mail"
	"net/url"
	"strings"
)

// IsValidEmail reports whether s parses as a bare email address.
func IsValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// Reject display-name forms like "Name <a@b.c>"
	return addr.Address == strings.TrimSpace(s)
}

// IsValidURL reports whether s is an absolute http(s) URL.
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
