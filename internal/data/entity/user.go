package entity

type UserRole string

const (
	RoleViewer  UserRole = "viewer"
	RoleCashier UserRole = "cashier"
	RoleAdmin   UserRole = "admin"
)

// CanSellForOthers reports whether the role may buy tickets on behalf of another user
func (r UserRole) CanSellForOthers() bool {
	return r == RoleCashier || r == RoleAdmin
}

type User struct {
	Base
	Username     string   `db:"username"`
	Email        string   `db:"email"`
	PasswordHash string   `db:"password_hash"`
	Role         UserRole `db:"role"`
}
