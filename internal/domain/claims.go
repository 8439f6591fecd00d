package domain

// Standard claim types issued by the profile service. Values follow the JWT
// claim names the downstream token engine expects.
const (
	ClaimSubject       = "sub"
	ClaimName          = "name"
	ClaimGivenName     = "given_name"
	ClaimFamilyName    = "family_name"
	ClaimEmail         = "email"
	ClaimEmailVerified = "email_verified"
	ClaimRole          = "role"
)

// Claim is a single (type, value) pair describing an authenticated subject.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
