package entity

type UserRole string

const (
	RoleClient  UserRole = "client"
	RoleLaborer UserRole = "laborer"
)

type User struct {
	Base
	Email        string   `db:"email"`
	DisplayName  *string  `db:"display_name"`
	PasswordHash string   `db:"password_hash"`
	Role         UserRole `db:"role"`
	IsActive     bool     `db:"is_active"`
}
