package auth

// Account is the credential view of a user, joined with the name of the role
// it references. RoleName is empty when the role no longer exists; an empty
// name can never equal the privileged role name, so dangling references fail
// the role gate naturally.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	RoleID       string
	RoleName     string
}
