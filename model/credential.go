package model

// CredentialRef is a name resolved lazily at driver execution time.
type CredentialRef struct {
	Name string `json:"name" yaml:"name"`
}

func (r CredentialRef) String() string { return r.Name }

// CredentialKind discriminates the Credential union.
type CredentialKind string

const (
	CredentialUserPassword CredentialKind = "user_password"
	CredentialSSHKey       CredentialKind = "ssh_key"
	CredentialBearerToken  CredentialKind = "bearer_token"
)

// Credential is a tagged union over the three supported secret shapes.
// Every field is exported for (de)serialization but String/GoString are
// overridden so the secret material never leaks into a log line.
type Credential struct {
	Kind CredentialKind `json:"kind"`

	// user_password
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`

	// ssh_key
	KeyPath    string `json:"key_path,omitempty"`
	Passphrase string `json:"passphrase,omitempty"`

	// bearer_token
	Token string `json:"token,omitempty"`
}

// String redacts all secret fields; only the kind and the non-secret
// fields (the username for user-password, the key path for ssh-key) are
// shown.
func (c Credential) String() string {
	switch c.Kind {
	case CredentialUserPassword:
		return "Credential{user_password, user=" + c.Username + ", password=<redacted>}"
	case CredentialSSHKey:
		return "Credential{ssh_key, path=" + c.KeyPath + ", passphrase=<redacted>}"
	case CredentialBearerToken:
		return "Credential{bearer_token, token=<redacted>}"
	default:
		return "Credential{<unknown>}"
	}
}

// GoString mirrors String so %#v in debug output never leaks secrets either.
func (c Credential) GoString() string { return c.String() }
