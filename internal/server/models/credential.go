package models

// Sign-in methods.
const (
	MethodPassword  = "password"
	MethodGoogle    = "google"
	MethodPrincipal = "internet-identity"
)

// Credential is the input of a verifier. Each method accepts exactly one
// of the concrete types below.
type Credential interface {
	method() string
}

type PasswordCredential struct {
	Email    string
	Password string
}

// OAuthCredential is a profile the provider has already verified.
type OAuthCredential struct {
	Email   string
	Subject string
	Name    string
}

type PrincipalCredential struct {
	Principal string
}

func (PasswordCredential) method() string  { return MethodPassword }
func (OAuthCredential) method() string     { return MethodGoogle }
func (PrincipalCredential) method() string { return MethodPrincipal }

// VerifiedIdentity is what a verifier vouches for. Key is the resolution
// key; User is already set for password sign-ins.
type VerifiedIdentity struct {
	Method      string
	Key         string
	DisplayName string
	Secret      string
	User        *User
}
