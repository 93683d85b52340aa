// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/hay-kot/criterio"
)

// UserName validates a user name is non-empty and contains no whitespace or
// path separators.
func UserName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("user name is required")
	}
	if strings.ContainsFunc(name, unicode.IsSpace) {
		return fmt.Errorf("user name must not contain spaces")
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("user name must not contain slashes")
	}
	return nil
}

// UserNameField returns a criterio validator for user names.
func UserNameField(field, name string) error {
	return criterio.Run(field, name, UserName)
}

// HTTPURL validates raw is an absolute http or https URL.
func HTTPURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("url must include a host")
	}
	return nil
}

// Tag validates a single image tag.
func Tag(tag string) error {
	if strings.TrimSpace(tag) == "" {
		return fmt.Errorf("tag is empty")
	}
	if strings.Contains(tag, ",") {
		return fmt.Errorf("tag %q must not contain commas", tag)
	}
	return nil
}
