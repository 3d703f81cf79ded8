package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/online-shop-api/internal/model"
)

// RoleRepo resolves role names for users and manages the fixed role set
// and its user_roles assignments.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// Seed makes sure the fixed role rows exist. It runs at startup and is
// idempotent: already-present rows are left untouched.
func (r *RoleRepo) Seed(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO roles (id, name) VALUES (?,?), (?,?)",
		model.RoleAdminID, model.RoleAdmin,
		model.RoleCustomerID, model.RoleCustomer)
	return err
}

// RolesOf returns the role names assigned to a user via the user_roles join
// table. A user without any assignment yields ErrNoRolesAssigned; callers
// treat that as an authorization failure since the identity itself was
// already verified.
func (r *RoleRepo) RolesOf(ctx context.Context, userID uint64) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT r.name
		 FROM user_roles ur
		 JOIN roles r ON r.id = ur.role_id
		 WHERE ur.user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, ErrNoRolesAssigned
	}
	return names, nil
}

// Assign links a user to a role. Assigning an already-held role is a no-op.
func (r *RoleRepo) Assign(ctx context.Context, userID uint64, roleID uint8) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO user_roles (user_id, role_id) VALUES (?,?)",
		userID, roleID)
	return err
}
