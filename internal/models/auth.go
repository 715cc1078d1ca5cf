package models

import (
	"fmt"
	"strings"
	"unicode"
)

// passwordSpecials is the set of characters accepted by the special-character rule.
const passwordSpecials = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// PasswordValidation holds the per-rule outcome of checking a password, for inline display on the signup form.
type PasswordValidation struct {
	MinLength bool // at least 8 characters
	Uppercase bool // at least one uppercase letter
	Lowercase bool // at least one lowercase letter
	Number    bool // at least one digit
	Special   bool // at least one special character
}

// Valid reports whether every rule passed.
func (v PasswordValidation) Valid() bool {
	return v.MinLength && v.Uppercase && v.Lowercase && v.Number && v.Special
}

// ValidatePassword checks a password against the fixed rule set.
func ValidatePassword(password string) PasswordValidation {
	v := PasswordValidation{MinLength: len(password) >= 8}
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			v.Uppercase = true
		case unicode.IsLower(r):
			v.Lowercase = true
		case unicode.IsDigit(r):
			v.Number = true
		case strings.ContainsRune(passwordSpecials, r):
			v.Special = true
		}
	}
	return v
}

// Credentials holds login form input.
type Credentials struct {
	Email    string
	Password string
}

// Validate checks that both login fields are present.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if c.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// SignupForm holds signup form input. Validation runs entirely client-side
// before anything is sent to the auth collaborator.
type SignupForm struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	AgreedToTerms   bool
}

// Validate checks the signup form: required fields, the password rule set,
// confirmation match, and terms acceptance.
func (f SignupForm) Validate() error {
	if strings.TrimSpace(f.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if strings.TrimSpace(f.FirstName) == "" || strings.TrimSpace(f.LastName) == "" {
		return fmt.Errorf("first and last name are required")
	}
	if !ValidatePassword(f.Password).Valid() {
		return fmt.Errorf("password does not meet all requirements")
	}
	if f.ConfirmPassword != f.Password {
		return fmt.Errorf("passwords do not match")
	}
	if !f.AgreedToTerms {
		return fmt.Errorf("terms and conditions must be accepted")
	}
	return nil
}

// Profile returns the account metadata captured by the form.
func (f SignupForm) Profile() Profile {
	return Profile{FirstName: strings.TrimSpace(f.FirstName), LastName: strings.TrimSpace(f.LastName)}
}
