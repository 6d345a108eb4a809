package report

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/store"
)

const dateLayout = "2006-01-02"

// Source is the read side of the store used for reporting.
type Source interface {
	SalesTotals(ctx context.Context) (store.SalesTotals, error)
	ListSales(ctx context.Context, f store.SaleFilter) ([]domain.Sale, error)
	ListShortages(ctx context.Context, threshold int64) ([]domain.Medicine, error)
	CountMedicines(ctx context.Context) (int64, error)
	CountGroups(ctx context.Context) (int64, error)
}

type InventoryStatus string

const (
	StatusGood     InventoryStatus = "Good"
	StatusWarnings InventoryStatus = "Warnings"
	StatusCritical InventoryStatus = "Critical"
)

// StatusFor grades inventory by the number of short items.
func StatusFor(shortages int) InventoryStatus {
	switch {
	case shortages > 5:
		return StatusCritical
	case shortages > 1:
		return StatusWarnings
	default:
		return StatusGood
	}
}

type ShortageItem struct {
	domain.Medicine
	Level string `json:"level"`
}

func shortageLevel(stock int64) string {
	if stock <= 5 {
		return "Critical"
	}
	return "Low"
}

type Dashboard struct {
	Revenue       decimal.Decimal `json:"revenue"`
	QuantitySold  int64           `json:"qty_sold"`
	Invoices      int64           `json:"invoices"`
	Medicines     int64           `json:"medicines_count"`
	Groups        int64           `json:"groups_count"`
	ShortageCount int             `json:"shortage_count"`
	Shortages     []ShortageItem  `json:"shortage_items"`
	Status        InventoryStatus `json:"status"`
}

type Summary struct {
	Revenue      decimal.Decimal `json:"total_revenue"`
	Transactions int64           `json:"transactions"`
}

// Query filters the sales and payments reports. Start and End are
// YYYY-MM-DD days, both inclusive.
type Query struct {
	Start  string
	End    string
	Method string
}

type ChartPoint struct {
	Date  string `json:"date"`
	Sales int    `json:"sales"`
}

type SalesReport struct {
	Revenue decimal.Decimal `json:"total_revenue"`
	Count   int             `json:"transaction_count"`
	History []domain.Sale   `json:"history"`
	Chart   []ChartPoint    `json:"chart"`
}

type Slice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type PaymentsReport struct {
	Revenue      decimal.Decimal `json:"total_revenue"`
	Count        int             `json:"transaction_count"`
	History      []domain.Sale   `json:"history"`
	Distribution []Slice         `json:"distribution"`
}

type Service struct {
	src       Source
	threshold int64
	loc       *time.Location
	logger    *log.Logger
}

func NewService(src Source, lowStockThreshold int64, logger *log.Logger) *Service {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 10
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{src: src, threshold: lowStockThreshold, loc: time.UTC, logger: logger}
}

func (s *Service) Threshold() int64 { return s.threshold }

func (s *Service) Shortages(ctx context.Context) ([]ShortageItem, error) {
	meds, err := s.src.ListShortages(ctx, s.threshold)
	if err != nil {
		return nil, err
	}
	items := make([]ShortageItem, 0, len(meds))
	for _, m := range meds {
		items = append(items, ShortageItem{Medicine: m, Level: shortageLevel(m.Stock)})
	}
	return items, nil
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	totals, err := s.src.SalesTotals(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	medicines, err := s.src.CountMedicines(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	groups, err := s.src.CountGroups(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	shortages, err := s.Shortages(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Revenue:       totals.Revenue,
		QuantitySold:  totals.Quantity,
		Invoices:      totals.Count,
		Medicines:     medicines,
		Groups:        groups,
		ShortageCount: len(shortages),
		Shortages:     shortages,
		Status:        StatusFor(len(shortages)),
	}, nil
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	totals, err := s.src.SalesTotals(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Revenue: totals.Revenue, Transactions: totals.Count}, nil
}

// Sales applies each date bound on its own; history is newest first and the
// per-day chart oldest first.
func (s *Service) Sales(ctx context.Context, q Query) (SalesReport, error) {
	f := store.SaleFilter{Method: q.Method}
	if q.Start != "" {
		from, err := s.day(q.Start)
		if err != nil {
			return SalesReport{}, err
		}
		f.From = &from
	}
	if q.End != "" {
		end, err := s.day(q.End)
		if err != nil {
			return SalesReport{}, err
		}
		to := end.AddDate(0, 0, 1)
		f.To = &to
	}

	sales, err := s.src.ListSales(ctx, f)
	if err != nil {
		return SalesReport{}, err
	}

	report := SalesReport{
		Revenue: revenue(sales),
		Count:   len(sales),
		History: make([]domain.Sale, len(sales)),
		Chart:   s.dailyChart(sales),
	}
	for i, sale := range sales {
		report.History[len(sales)-1-i] = sale
	}
	return report, nil
}

// Payments applies the date range only when both bounds are given.
func (s *Service) Payments(ctx context.Context, q Query) (PaymentsReport, error) {
	f := store.SaleFilter{Method: q.Method, Newest: true}
	if q.Start != "" && q.End != "" {
		from, err := s.day(q.Start)
		if err != nil {
			return PaymentsReport{}, err
		}
		end, err := s.day(q.End)
		if err != nil {
			return PaymentsReport{}, err
		}
		to := end.AddDate(0, 0, 1)
		f.From, f.To = &from, &to
	}

	sales, err := s.src.ListSales(ctx, f)
	if err != nil {
		return PaymentsReport{}, err
	}
	return PaymentsReport{
		Revenue:      revenue(sales),
		Count:        len(sales),
		History:      sales,
		Distribution: distribution(sales),
	}, nil
}

func (s *Service) day(value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", domain.ErrInvalidInput, value)
	}
	return t, nil
}

// dailyChart counts sales per calendar day of ascending sales.
func (s *Service) dailyChart(sales []domain.Sale) []ChartPoint {
	points := []ChartPoint{}
	index := map[string]int{}
	for _, sale := range sales {
		at := sale.CreatedAt.In(s.loc)
		key := at.Format(dateLayout)
		i, ok := index[key]
		if !ok {
			i = len(points)
			index[key] = i
			points = append(points, ChartPoint{Date: at.Format("2 Jan")})
		}
		points[i].Sales++
	}
	return points
}

// distribution counts sales by the first word of the payment method in
// order of first appearance.
func distribution(sales []domain.Sale) []Slice {
	slices := []Slice{}
	index := map[string]int{}
	for _, sale := range sales {
		name := domain.DefaultCustomer
		if fields := strings.Fields(sale.PaymentMethod); len(fields) > 0 {
			name = fields[0]
		}
		i, ok := index[name]
		if !ok {
			i = len(slices)
			index[name] = i
			slices = append(slices, Slice{Name: name})
		}
		slices[i].Value++
	}
	return slices
}

func revenue(sales []domain.Sale) decimal.Decimal {
	total := decimal.Zero
	for _, sale := range sales {
		total = total.Add(sale.TotalPrice)
	}
	return total
}
