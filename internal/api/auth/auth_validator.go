package auth

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/aura-analytics/aura-backend/internal/api"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail lowercases and trims an email address. All storage and
// lookups use the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateRegisterRequest checks and normalizes a registration payload before
// any side effect occurs. Every violation is collected so the client gets the
// full list in a single response.
func ValidateRegisterRequest(req *RegisterRequest) error {
	ve := &api.ValidationError{}

	req.Email = NormalizeEmail(req.Email)
	validateEmail(ve, req.Email)
	validatePasswordStrength(ve, req.Password)

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < 2 {
			ve.Add("name", "Name must be at least 2 characters")
		} else if len(name) > 100 {
			ve.Add("name", "Name must be less than 100 characters")
		}
		req.Name = &name
	}

	if ve.HasViolations() {
		return ve
	}
	return nil
}

// ValidateLoginRequest checks a login payload. Password strength is not
// re-validated here; any non-empty string is forwarded to comparison.
func ValidateLoginRequest(req *LoginRequest) error {
	ve := &api.ValidationError{}

	req.Email = NormalizeEmail(req.Email)
	validateEmail(ve, req.Email)

	if req.Password == "" {
		ve.Add("password", "Password is required")
	}

	if ve.HasViolations() {
		return ve
	}
	return nil
}

func validateEmail(ve *api.ValidationError, email string) {
	switch {
	case len(email) < 5:
		ve.Add("email", "Email must be at least 5 characters")
	case len(email) > 255:
		ve.Add("email", "Email must be less than 255 characters")
	case !emailRegex.MatchString(email):
		ve.Add("email", "Invalid email format")
	}
}

func validatePasswordStrength(ve *api.ValidationError, password string) {
	if len(password) < 8 {
		ve.Add("password", "Password must be at least 8 characters")
	}
	if len(password) > 100 {
		ve.Add("password", "Password must be less than 100 characters")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		ve.Add("password", "Password must contain at least one uppercase letter")
	}
	if !hasLower {
		ve.Add("password", "Password must contain at least one lowercase letter")
	}
	if !hasDigit {
		ve.Add("password", "Password must contain at least one number")
	}
}
