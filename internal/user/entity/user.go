package entity

import "time"

// Role is the authorization role stored on a user row.
type Role string

const (
	RoleUser     Role = "USER"
	RoleClient   Role = "CLIENT"
	RoleOperator Role = "OPERATOR"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleClient, RoleOperator, RoleAdmin:
		return true
	}
	return false
}

// User represents an account row in the `users` table.
type User struct {
	ID            int64     `db:"id" json:"id,string"`
	Email         string    `db:"email" json:"email"`
	Name          string    `db:"name" json:"name"`
	Surname       string    `db:"surname" json:"surname"`
	Cellphone     *string   `db:"cellphone" json:"cellphone,omitempty"`
	Role          Role      `db:"role" json:"role"`
	PasswordHash  *string   `db:"password_hash" json:"-"`
	OAuthProvider string    `db:"oauth_provider" json:"oauthProvider"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// Profile is a user joined with its operator record, if any.
type Profile struct {
	User
	Operator *Operator `json:"operator,omitempty"`
}

// Operator is the organization attached one-to-one to an OPERATOR user.
type Operator struct {
	UserID           int64   `db:"user_id" json:"userId,string"`
	OrganizationName string  `db:"organization_name" json:"organizationName"`
	VATNumber        *string `db:"vat_number" json:"vatNumber,omitempty"`
	Telephone        *string `db:"telephone" json:"telephone,omitempty"`
	Website          *string `db:"website" json:"website,omitempty"`
}
