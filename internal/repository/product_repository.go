package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/online-shop-api/internal/model"
)

// ProductRepo provides CRUD operations for the products table. The GetByIDTx
// variant participates in the order placement transaction so line-item
// lookups see a consistent snapshot.
type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

// Create inserts a product and returns it with its generated ID.
func (r *ProductRepo) Create(ctx context.Context, name string, price float64) (model.Product, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO products (name, price) VALUES (?,?)", name, price)
	if err != nil {
		return model.Product{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Product{}, err
	}
	return model.Product{ID: uint64(id), Name: name, Price: price}, nil
}

// GetByID fetches a product by id.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	var p model.Product
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, price FROM products WHERE id=? LIMIT 1",
		id).Scan(&p.ID, &p.Name, &p.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, ErrProductNotFound
	}
	return p, err
}

// GetByIDTx fetches a product inside an existing transaction.
func (r *ProductRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Product, error) {
	var p model.Product
	err := tx.QueryRowContext(ctx,
		"SELECT id, name, price FROM products WHERE id=? LIMIT 1",
		id).Scan(&p.ID, &p.Name, &p.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, ErrProductNotFound
	}
	return p, err
}

// List returns all products ordered by id.
func (r *ProductRepo) List(ctx context.Context) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, name, price FROM products ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Update changes the provided columns of a product and returns the stored
// row. A nil price or empty name leaves the column untouched. Unknown ids
// yield ErrProductNotFound, which the bulk update endpoint silently skips.
func (r *ProductRepo) Update(ctx context.Context, id uint64, name string, price *float64) (model.Product, error) {
	sets := make([]string, 0, 2)
	args := make([]interface{}, 0, 3)
	if name != "" {
		sets = append(sets, "name=?")
		args = append(args, name)
	}
	if price != nil {
		sets = append(sets, "price=?")
		args = append(args, *price)
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE products SET "+strings.Join(sets, ", ")+" WHERE id=?", args...); err != nil {
			return model.Product{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a product. It returns ErrProductNotFound when no row
// was deleted.
func (r *ProductRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id=?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}
