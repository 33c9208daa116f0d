package validation

import (
	"regexp"
	"strings"
	"time"

	domainauth "github.com/joinify/joinify-go/internal/domain/auth"
	"github.com/joinify/joinify-go/internal/domain/model"
)

const (
	MsgUsernameTooShort      = "Username must be at least 3 characters long"
	MsgLoginPasswordTooShort = "Password must be at least 6 characters long"
	MsgInvalidEmail          = "Please enter a valid email address"
	MsgPasswordTooShort      = "Password must be at least 8 characters long"
	MsgWeakPassword          = "Password must contain uppercase, lowercase, number, and special character"
	MsgRoleRequired          = "Please select a role"

	MsgDateRequired     = "Event date and time is required"
	MsgDateNotFuture    = "Event date must be in the future"
	MsgCapacityTooSmall = "Maximum capacity must be at least 1"
	MsgNegativeFee      = "Fee cannot be negative"
	MsgInvalidImageURL  = "Image URL must be a valid http(s) link to an image"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const passwordSymbols = "@#$%^&+=!*()"

// IsValidEmail reports whether email has the local@domain.tld shape.
func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsStrongPassword requires at least 8 characters including a lowercase
// letter, an uppercase letter, a digit and one of @#$%^&+=!*().
func IsStrongPassword(password string) bool {
	if len([]rune(password)) < 8 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

// ValidateLogin checks the login form. An empty result means valid.
func ValidateLogin(c domainauth.Credentials) []string {
	return New().
		Check(c.Username, MinLength(MsgUsernameTooShort, 3)).
		Check(c.Password, MinRawLength(MsgLoginPasswordTooShort, 6)).
		Errors()
}

// ValidateRegistration checks the sign-up form. An empty result means valid.
func ValidateRegistration(r domainauth.Registration) []string {
	return New().
		Check(r.Username, MinLength(MsgUsernameTooShort, 3)).
		Check(r.Email, Satisfies(MsgInvalidEmail, IsValidEmail)).
		Check(r.Password,
			MinRawLength(MsgPasswordTooShort, 8),
			Satisfies(MsgWeakPassword, IsStrongPassword),
		).
		Add(strings.TrimSpace(string(r.Role)) == "", MsgRoleRequired).
		Errors()
}

// ValidateEvent checks an event create/update form against now.
func ValidateEvent(in model.EventInput, now time.Time) []string {
	c := New().
		First(in.Title, RequiredRange("Title", 3, 100)).
		Check(in.Description, Optional("Description", 500)).
		First(in.Location, RequiredRange("Location", 3, 100))

	switch {
	case in.DateTime.IsZero():
		c.Add(true, MsgDateRequired)
	case !in.DateTime.After(now):
		c.Add(true, MsgDateNotFuture)
	}

	return c.
		Add(in.MaxCapacity < 1, MsgCapacityTooSmall).
		Add(in.Fee < 0, MsgNegativeFee).
		Check(in.ImageURL, ImageURL(MsgInvalidImageURL)).
		Errors()
}
