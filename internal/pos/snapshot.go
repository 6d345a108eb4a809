package pos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
)

const defaultSearchLimit = 10

// CatalogSource lists the medicines that can currently be sold.
type CatalogSource interface {
	ListSellable(ctx context.Context) ([]domain.Medicine, error)
}

// Snapshot is a read-only copy of the sellable catalog taken when a POS
// session opens. Stock figures are not refreshed afterwards.
type Snapshot struct {
	items    []domain.Medicine
	byID     map[string]int
	LoadedAt time.Time
}

func LoadSnapshot(ctx context.Context, src CatalogSource) (*Snapshot, error) {
	items, err := src.ListSellable(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog snapshot: %w", err)
	}
	return NewSnapshot(items, time.Now().UTC()), nil
}

func NewSnapshot(items []domain.Medicine, loadedAt time.Time) *Snapshot {
	s := &Snapshot{
		items:    make([]domain.Medicine, 0, len(items)),
		byID:     make(map[string]int, len(items)),
		LoadedAt: loadedAt,
	}
	for _, item := range items {
		if item.Stock <= 0 {
			continue
		}
		if _, dup := s.byID[item.ID]; dup {
			continue
		}
		s.byID[item.ID] = len(s.items)
		s.items = append(s.items, item)
	}
	return s
}

func (s *Snapshot) Lookup(id string) (domain.Medicine, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Medicine{}, false
	}
	return s.items[i], true
}

// Search returns up to limit items whose name contains query, ignoring case.
// An empty query returns the first limit items.
func (s *Snapshot) Search(query string, limit int) []domain.Medicine {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]domain.Medicine, 0, limit)
	for _, item := range s.items {
		if len(out) == limit {
			break
		}
		if query == "" || strings.Contains(strings.ToLower(item.Name), query) {
			out = append(out, item)
		}
	}
	return out
}

func (s *Snapshot) Len() int { return len(s.items) }
