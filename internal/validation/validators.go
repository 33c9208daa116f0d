// Package validation holds the pure form checks run before any request is sent.
package validation

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"
)

// Validator checks a string value and returns a message if invalid.
type Validator func(v string) string

// MinLength rejects trimmed values shorter than n runes.
func MinLength(msg string, n int) Validator {
	return func(v string) string {
		if utf8.RuneCountInString(strings.TrimSpace(v)) < n {
			return msg
		}
		return ""
	}
}

// MinRawLength is MinLength without trimming; passwords keep their spaces.
func MinRawLength(msg string, n int) Validator {
	return func(v string) string {
		if utf8.RuneCountInString(v) < n {
			return msg
		}
		return ""
	}
}

// RequiredRange validates that a field is not empty and is between minLen and maxLen characters.
// Uses rune count for proper Unicode support.
func RequiredRange(fieldName string, minLen, maxLen int) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return fieldName + " is required"
		}
		n := utf8.RuneCountInString(v)
		if n < minLen || n > maxLen {
			return fmt.Sprintf("%s must be between %d and %d characters", fieldName, minLen, maxLen)
		}
		return ""
	}
}

// Optional validates that an optional field does not exceed maxLen characters if provided.
func Optional(fieldName string, maxLen int) Validator {
	return func(v string) string {
		if utf8.RuneCountInString(strings.TrimSpace(v)) > maxLen {
			return fmt.Sprintf("%s cannot exceed %d characters", fieldName, maxLen)
		}
		return ""
	}
}

// Satisfies wraps a predicate.
func Satisfies(msg string, ok func(string) bool) Validator {
	return func(v string) string {
		if !ok(v) {
			return msg
		}
		return ""
	}
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".svg": true,
}

// ImageURL accepts an empty value or an http(s) URL whose path ends in an image extension.
func ImageURL(msg string) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		p, err := url.Parse(v)
		if err != nil || (p.Scheme != "http" && p.Scheme != "https") || p.Host == "" {
			return msg
		}
		if !imageExtensions[strings.ToLower(path.Ext(p.Path))] {
			return msg
		}
		return ""
	}
}

// Collector accumulates violation messages in the order they were found.
type Collector struct {
	errors []string
}

// New creates a new Collector.
func New() *Collector {
	return &Collector{}
}

// Check runs every validator against value and records each failure.
func (c *Collector) Check(value string, validators ...Validator) *Collector {
	for _, v := range validators {
		if msg := v(value); msg != "" {
			c.errors = append(c.errors, msg)
		}
	}
	return c
}

// First runs validators until one fails and records only that message.
func (c *Collector) First(value string, validators ...Validator) *Collector {
	for _, v := range validators {
		if msg := v(value); msg != "" {
			c.errors = append(c.errors, msg)
			break
		}
	}
	return c
}

// Add records msg when cond is true.
func (c *Collector) Add(cond bool, msg string) *Collector {
	if cond {
		c.errors = append(c.errors, msg)
	}
	return c
}

// Errors returns the accumulated messages; nil means valid.
func (c *Collector) Errors() []string {
	return c.errors
}
