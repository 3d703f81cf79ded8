package model

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
type User struct {
	ID           uint64 // users.id
	Name         string // users.name
	Email        string // users.email
	PasswordHash string // users.password_hash
}

// Role represents a row in the `roles` table. It maps a small
// integer ID to a role name. The set is fixed and seeded at
// startup: 1 = Admin, 2 = Customer.
type Role struct {
	ID   uint8  // roles.id
	Name string // roles.name
}

// Role IDs matching the seeded rows in the roles table.
const (
	RoleAdminID    uint8 = 1
	RoleCustomerID uint8 = 2
)

// Role names as stored in roles.name and carried in authorization checks.
const (
	RoleAdmin    = "Admin"
	RoleCustomer = "Customer"
)

// UserRole links a user to a role in the `user_roles` join table.
// The pair (UserID, RoleID) forms the composite primary key; the
// table carries no other columns.
type UserRole struct {
	UserID uint64 // user_roles.user_id
	RoleID uint8  // user_roles.role_id
}
