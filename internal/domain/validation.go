package domain

import (
	"fmt"
	"regexp"
	"time"
)

// Age-of-majority bounds accepted by IsAdult. Jurisdictions the bank operates
// in sit inside this range.
const (
	MinAgeOfMajority = 18
	MaxAgeOfMajority = 22
)

var ssnPattern = regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`)

// emailPattern is intentionally loose: one @ with something on both sides and
// a dotted domain. Deliverability checks belong to the provisioning flow.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// FieldError reports a single validation violation on a named field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// IsAdult reports whether someone born on dob has reached the given age of
// majority as of today. ageOfMajority outside the accepted bounds is an error.
func IsAdult(dob time.Time, ageOfMajority int) (bool, error) {
	if ageOfMajority < MinAgeOfMajority || ageOfMajority > MaxAgeOfMajority {
		return false, fmt.Errorf("age of majority must be between %d and %d", MinAgeOfMajority, MaxAgeOfMajority)
	}
	cutoff := time.Now().AddDate(-ageOfMajority, 0, 0)
	return !dob.After(cutoff), nil
}

// ValidatePerson checks the shared person attributes and returns every
// violation found. An empty slice means the person is valid.
func ValidatePerson(p Person) []FieldError {
	var errs []FieldError

	if l := len(p.FirstName); l < 2 || l > 50 {
		errs = append(errs, FieldError{"first_name", "first name must be between 2 and 50 characters"})
	}
	if l := len(p.LastName); l < 2 || l > 50 {
		errs = append(errs, FieldError{"last_name", "last name must be between 2 and 50 characters"})
	}
	if p.EmailAddress == "" || len(p.EmailAddress) > 50 {
		errs = append(errs, FieldError{"email_address", "email address is required and cannot exceed 50 characters"})
	} else if !emailPattern.MatchString(p.EmailAddress) {
		errs = append(errs, FieldError{"email_address", "invalid email address format"})
	}
	if p.SocialSecurityNumber != "" && !ssnPattern.MatchString(p.SocialSecurityNumber) {
		errs = append(errs, FieldError{"social_security_number", "social security number must be in the format XXX-XX-XXXX"})
	}
	if p.DateOfBirth.IsZero() {
		errs = append(errs, FieldError{"date_of_birth", "date of birth is required"})
	} else if adult, err := IsAdult(p.DateOfBirth, MinAgeOfMajority); err == nil && !adult {
		errs = append(errs, FieldError{"date_of_birth", fmt.Sprintf("the person must be at least %d years old", MinAgeOfMajority)})
	}

	return errs
}

// ValidateUserAccount checks a full account ahead of provisioning.
func ValidateUserAccount(u *UserAccount) []FieldError {
	errs := ValidatePerson(u.Person)

	if l := len(u.Username); l < 3 || l > 50 {
		errs = append(errs, FieldError{"username", "username must be between 3 and 50 characters"})
	}
	if l := len(u.PasswordHash); l < 6 || l > 250 {
		errs = append(errs, FieldError{"password_hash", "password hash must be between 6 and 250 characters"})
	}

	return errs
}

// ValidateRole checks a role ahead of provisioning.
func ValidateRole(r *Role) []FieldError {
	var errs []FieldError
	if l := len(r.Name); l == 0 || l > 50 {
		errs = append(errs, FieldError{"name", "role name is required and cannot exceed 50 characters"})
	}
	return errs
}

// ValidateLoginInput applies the interactive login bounds before any store
// lookup happens. Out-of-bounds input can never match a provisioned account.
func ValidateLoginInput(username, password string) []FieldError {
	var errs []FieldError
	if l := len(username); l < 3 || l > 50 {
		errs = append(errs, FieldError{"username", "username must be between 3 and 50 characters"})
	}
	if l := len(password); l < 6 || l > 100 {
		errs = append(errs, FieldError{"password", "password must be between 6 and 100 characters"})
	}
	return errs
}
