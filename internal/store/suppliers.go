package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
)

const supplierColumns = `id, supplier_name, contact_person, phone, email, address, created_at`

// ListSuppliers orders by supplier name; search matches contact person,
// supplier name, phone or email.
func (s *Store) ListSuppliers(ctx context.Context, search string) ([]domain.Supplier, error) {
	q := `SELECT ` + supplierColumns + ` FROM suppliers`
	var args []any
	if strings.TrimSpace(search) != "" {
		like := likePattern(search)
		q += ` WHERE LOWER(contact_person) LIKE ? ESCAPE '\' OR LOWER(supplier_name) LIKE ? ESCAPE '\'` +
			` OR LOWER(phone) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`
		args = append(args, like, like, like, like)
	}
	q += " ORDER BY supplier_name ASC"

	suppliers := []domain.Supplier{}
	if err := s.db.SelectContext(ctx, &suppliers, s.rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, nil
}

func (s *Store) GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error) {
	var sup domain.Supplier
	if err := s.db.GetContext(ctx, &sup, s.rebind(`SELECT `+supplierColumns+` FROM suppliers WHERE id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get supplier %d: %w", id, err)
	}
	return &sup, nil
}

func (s *Store) CreateSupplier(ctx context.Context, sup domain.Supplier) (*domain.Supplier, error) {
	sup.CreatedAt = s.now()
	q := s.rebind(`INSERT INTO suppliers (supplier_name, contact_person, phone, email, address, created_at) VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	if err := s.db.QueryRowxContext(ctx, q, sup.SupplierName, sup.ContactPerson, sup.Phone, sup.Email, sup.Address, sup.CreatedAt).Scan(&sup.ID); err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}
	s.logger.Printf("supplier store: created id=%d name=%s", sup.ID, sup.SupplierName)
	return &sup, nil
}

func (s *Store) UpdateSupplier(ctx context.Context, sup domain.Supplier) (*domain.Supplier, error) {
	q := s.rebind(`UPDATE suppliers SET supplier_name = ?, contact_person = ?, phone = ?, email = ?, address = ? WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, q, sup.SupplierName, sup.ContactPerson, sup.Phone, sup.Email, sup.Address, sup.ID)
	if err != nil {
		return nil, fmt.Errorf("update supplier %d: %w", sup.ID, err)
	}
	n, err := rowsAffected(res, "update supplier")
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.ErrNotFound
	}
	return s.GetSupplier(ctx, sup.ID)
}

func (s *Store) DeleteSupplier(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM suppliers WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete supplier %d: %w", id, err)
	}
	n, err := rowsAffected(res, "delete supplier")
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	s.logger.Printf("supplier store: deleted id=%d", id)
	return nil
}
