package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
)

func (s *Store) CountGroups(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM medicine_groups`); err != nil {
		return 0, fmt.Errorf("count groups: %w", err)
	}
	return n, nil
}

// ListGroupNames returns the master group names ordered by name.
func (s *Store) ListGroupNames(ctx context.Context) ([]string, error) {
	names := []string{}
	if err := s.db.SelectContext(ctx, &names, `SELECT name FROM medicine_groups ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("list group names: %w", err)
	}
	return names, nil
}

// ListGroups returns master groups with their medicine counts. Medicines
// without a group are reported under an extra non-master Uncategorized
// entry when there is at least one.
func (s *Store) ListGroups(ctx context.Context) ([]domain.MedicineGroup, error) {
	var groups []domain.MedicineGroup
	if err := s.db.SelectContext(ctx, &groups, `SELECT id, name, created_at FROM medicine_groups ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	var rows []struct {
		GroupName string `db:"group_name"`
		Count     int64  `db:"n"`
	}
	if err := s.db.SelectContext(ctx, &rows, `SELECT group_name, COUNT(*) AS n FROM medicines GROUP BY group_name`); err != nil {
		return nil, fmt.Errorf("count medicines per group: %w", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		name := strings.TrimSpace(r.GroupName)
		if name == "" {
			name = domain.Uncategorized
		}
		counts[name] += r.Count
	}

	result := make([]domain.MedicineGroup, 0, len(groups)+1)
	for _, g := range groups {
		g.Count = counts[g.Name]
		g.IsMaster = true
		result = append(result, g)
	}
	if n := counts[domain.Uncategorized]; n > 0 {
		result = append(result, domain.MedicineGroup{Name: domain.Uncategorized, Count: n})
	}
	return result, nil
}

func (s *Store) CreateGroup(ctx context.Context, name string) (*domain.MedicineGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, domain.Uncategorized) {
		return nil, domain.ErrInvalidInput
	}
	var exists int64
	if err := s.db.GetContext(ctx, &exists, s.rebind(`SELECT COUNT(*) FROM medicine_groups WHERE name = ?`), name); err != nil {
		return nil, fmt.Errorf("check group %s: %w", name, err)
	}
	if exists > 0 {
		return nil, domain.ErrAlreadyExists
	}

	g := domain.MedicineGroup{Name: name, IsMaster: true, CreatedAt: s.now()}
	q := s.rebind(`INSERT INTO medicine_groups (name, created_at) VALUES (?, ?) RETURNING id`)
	if err := s.db.QueryRowxContext(ctx, q, g.Name, g.CreatedAt).Scan(&g.ID); err != nil {
		return nil, fmt.Errorf("create group %s: %w", name, err)
	}
	s.logger.Printf("group store: created name=%s id=%d", g.Name, g.ID)
	return &g, nil
}

// DeleteGroup removes a master group by name. Groups still referenced by
// medicines are refused with ErrGroupInUse.
func (s *Store) DeleteGroup(ctx context.Context, name string) error {
	var inUse int64
	if err := s.db.GetContext(ctx, &inUse, s.rebind(`SELECT COUNT(*) FROM medicines WHERE group_name = ?`), name); err != nil {
		return fmt.Errorf("count group usage %s: %w", name, err)
	}
	if inUse > 0 {
		return fmt.Errorf("%w: %d medicines", domain.ErrGroupInUse, inUse)
	}
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM medicine_groups WHERE name = ?`), name)
	if err != nil {
		return fmt.Errorf("delete group %s: %w", name, err)
	}
	n, err := rowsAffected(res, "delete group")
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	s.logger.Printf("group store: deleted name=%s", name)
	return nil
}
