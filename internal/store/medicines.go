package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
)

const medicineColumns = `id, code, name, group_name, stock, price, how_to_use, side_effects, created_at, updated_at`

// MedicineFilter narrows ListMedicines. Uncategorized wins over Group.
type MedicineFilter struct {
	Search        string
	Group         string
	Uncategorized bool
}

func (s *Store) ListMedicines(ctx context.Context, f MedicineFilter) ([]domain.Medicine, error) {
	var (
		clauses []string
		args    []any
	)
	if strings.TrimSpace(f.Search) != "" {
		like := likePattern(f.Search)
		clauses = append(clauses, `(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(code) LIKE ? ESCAPE '\')`)
		args = append(args, like, like)
	}
	switch {
	case f.Uncategorized:
		clauses = append(clauses, "group_name = ''")
	case f.Group != "":
		clauses = append(clauses, "group_name = ?")
		args = append(args, f.Group)
	}

	q := `SELECT ` + medicineColumns + ` FROM medicines`
	if len(clauses) > 0 {
		q += " WHERE " + strings.Join(clauses, " AND ")
	}
	q += " ORDER BY name ASC"

	medicines := []domain.Medicine{}
	if err := s.db.SelectContext(ctx, &medicines, s.rebind(q), args...); err != nil {
		s.logger.Printf("medicine store: list error=%v", err)
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	return medicines, nil
}

// ListSellable returns every medicine with stock on hand, ordered by name.
func (s *Store) ListSellable(ctx context.Context) ([]domain.Medicine, error) {
	medicines := []domain.Medicine{}
	q := `SELECT ` + medicineColumns + ` FROM medicines WHERE stock > 0 ORDER BY name ASC`
	if err := s.db.SelectContext(ctx, &medicines, q); err != nil {
		return nil, fmt.Errorf("list sellable medicines: %w", err)
	}
	return medicines, nil
}

// ListShortages returns medicines whose stock is below threshold.
func (s *Store) ListShortages(ctx context.Context, threshold int64) ([]domain.Medicine, error) {
	medicines := []domain.Medicine{}
	q := s.rebind(`SELECT ` + medicineColumns + ` FROM medicines WHERE stock < ? ORDER BY stock ASC, name ASC`)
	if err := s.db.SelectContext(ctx, &medicines, q, threshold); err != nil {
		return nil, fmt.Errorf("list shortages: %w", err)
	}
	return medicines, nil
}

func (s *Store) CountMedicines(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM medicines`); err != nil {
		return 0, fmt.Errorf("count medicines: %w", err)
	}
	return n, nil
}

func (s *Store) GetMedicine(ctx context.Context, id string) (*domain.Medicine, error) {
	var m domain.Medicine
	q := s.rebind(`SELECT ` + medicineColumns + ` FROM medicines WHERE id = ?`)
	if err := s.db.GetContext(ctx, &m, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get medicine %s: %w", id, err)
	}
	return &m, nil
}

// CreateMedicine inserts m with a fresh identifier. The group must exist.
func (s *Store) CreateMedicine(ctx context.Context, m domain.Medicine) (*domain.Medicine, error) {
	if err := s.requireGroup(ctx, m.GroupName); err != nil {
		return nil, err
	}
	m.ID = uuid.NewString()
	m.CreatedAt = s.now()
	m.UpdatedAt = m.CreatedAt
	q := s.rebind(`INSERT INTO medicines (` + medicineColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, q, m.ID, m.Code, m.Name, m.GroupName, m.Stock, m.Price, m.HowToUse, m.SideEffects, m.CreatedAt, m.UpdatedAt); err != nil {
		s.logger.Printf("medicine store: create name=%s error=%v", m.Name, err)
		return nil, fmt.Errorf("create medicine: %w", err)
	}
	s.logger.Printf("medicine store: created id=%s name=%s stock=%d", m.ID, m.Name, m.Stock)
	return &m, nil
}

func (s *Store) UpdateMedicine(ctx context.Context, m domain.Medicine) (*domain.Medicine, error) {
	if err := s.requireGroup(ctx, m.GroupName); err != nil {
		return nil, err
	}
	m.UpdatedAt = s.now()
	q := s.rebind(`UPDATE medicines SET code = ?, name = ?, group_name = ?, stock = ?, price = ?, how_to_use = ?, side_effects = ?, updated_at = ? WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, q, m.Code, m.Name, m.GroupName, m.Stock, m.Price, m.HowToUse, m.SideEffects, m.UpdatedAt, m.ID)
	if err != nil {
		return nil, fmt.Errorf("update medicine %s: %w", m.ID, err)
	}
	n, err := rowsAffected(res, "update medicine")
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.ErrNotFound
	}
	return s.GetMedicine(ctx, m.ID)
}

// SetStock overwrites the stock level, used for restocking.
func (s *Store) SetStock(ctx context.Context, id string, stock int64) error {
	if stock < 0 {
		return domain.ErrInvalidInput
	}
	q := s.rebind(`UPDATE medicines SET stock = ?, updated_at = ? WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, q, stock, s.now(), id)
	if err != nil {
		return fmt.Errorf("set stock %s: %w", id, err)
	}
	n, err := rowsAffected(res, "set stock")
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	s.logger.Printf("medicine store: stock id=%s stock=%d", id, stock)
	return nil
}

func (s *Store) DeleteMedicine(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM medicines WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete medicine %s: %w", id, err)
	}
	n, err := rowsAffected(res, "delete medicine")
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	s.logger.Printf("medicine store: deleted id=%s", id)
	return nil
}

func (s *Store) requireGroup(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.ErrUnknownGroup
	}
	var n int64
	if err := s.db.GetContext(ctx, &n, s.rebind(`SELECT COUNT(*) FROM medicine_groups WHERE name = ?`), name); err != nil {
		return fmt.Errorf("check group %s: %w", name, err)
	}
	if n == 0 {
		return domain.ErrUnknownGroup
	}
	return nil
}
