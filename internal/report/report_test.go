package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/store"
)

type stubSource struct {
	sales     []domain.Sale
	medicines []domain.Medicine
	groups    int64
	filters   []store.SaleFilter
}

func (s *stubSource) SalesTotals(context.Context) (store.SalesTotals, error) {
	t := store.SalesTotals{Revenue: decimal.Zero}
	for _, sale := range s.sales {
		t.Revenue = t.Revenue.Add(sale.TotalPrice)
		t.Quantity += sale.Quantity
		t.Count++
	}
	return t, nil
}

// ListSales mimics the store: half-open date range, ascending unless Newest.
func (s *stubSource) ListSales(_ context.Context, f store.SaleFilter) ([]domain.Sale, error) {
	s.filters = append(s.filters, f)
	out := []domain.Sale{}
	for _, sale := range s.sales {
		if f.From != nil && sale.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !sale.CreatedAt.Before(*f.To) {
			continue
		}
		out = append(out, sale)
	}
	if f.Newest {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (s *stubSource) ListShortages(_ context.Context, threshold int64) ([]domain.Medicine, error) {
	out := []domain.Medicine{}
	for _, m := range s.medicines {
		if m.Stock < threshold {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubSource) CountMedicines(context.Context) (int64, error) { return int64(len(s.medicines)), nil }

func (s *stubSource) CountGroups(context.Context) (int64, error) { return s.groups, nil }

func at(day, hour int) time.Time {
	return time.Date(2026, time.January, day, hour, 0, 0, 0, time.UTC)
}

func sampleSales() []domain.Sale {
	return []domain.Sale{
		{ID: 1, MedicineID: "m1", Quantity: 2, TotalPrice: decimal.NewFromInt(10000), PaymentMethod: "Cash (Tunai)", CustomerName: "Umum", CreatedAt: at(2, 9)},
		{ID: 2, MedicineID: "m2", Quantity: 1, TotalPrice: decimal.NewFromInt(12000), PaymentMethod: "Debit Card", CustomerName: "Budi", CreatedAt: at(2, 15)},
		{ID: 3, MedicineID: "m1", Quantity: 1, TotalPrice: decimal.NewFromInt(5000), PaymentMethod: "Digital Wallet (QRIS)", CustomerName: "Rina", CreatedAt: at(4, 10)},
		{ID: 4, MedicineID: "m3", Quantity: 3, TotalPrice: decimal.NewFromInt(7500), PaymentMethod: "Cash (Tunai)", CustomerName: "Umum", CreatedAt: at(5, 23)},
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, StatusGood, StatusFor(0))
	assert.Equal(t, StatusGood, StatusFor(1))
	assert.Equal(t, StatusWarnings, StatusFor(2))
	assert.Equal(t, StatusWarnings, StatusFor(5))
	assert.Equal(t, StatusCritical, StatusFor(6))
}

func TestDashboard(t *testing.T) {
	src := &stubSource{
		sales:  sampleSales(),
		groups: 3,
		medicines: []domain.Medicine{
			{ID: "m1", Name: "Paracetamol", Stock: 40},
			{ID: "m2", Name: "Amoxicillin", Stock: 4},
			{ID: "m3", Name: "Vitamin C", Stock: 9},
		},
	}
	d, err := NewService(src, 10, nil).Dashboard(context.Background())
	require.NoError(t, err)

	assert.True(t, d.Revenue.Equal(decimal.NewFromInt(34500)))
	assert.Equal(t, int64(7), d.QuantitySold)
	assert.Equal(t, int64(4), d.Invoices)
	assert.Equal(t, int64(3), d.Medicines)
	assert.Equal(t, int64(3), d.Groups)
	assert.Equal(t, 2, d.ShortageCount)
	assert.Equal(t, StatusWarnings, d.Status)
	require.Len(t, d.Shortages, 2)
	assert.Equal(t, "Critical", d.Shortages[0].Level)
	assert.Equal(t, "Low", d.Shortages[1].Level)
}

func TestSummary(t *testing.T) {
	sum, err := NewService(&stubSource{sales: sampleSales()}, 0, nil).Summary(context.Background())
	require.NoError(t, err)
	assert.True(t, sum.Revenue.Equal(decimal.NewFromInt(34500)))
	assert.Equal(t, int64(4), sum.Transactions)
}

func TestSales_HistoryAndChart(t *testing.T) {
	r, err := NewService(&stubSource{sales: sampleSales()}, 10, nil).Sales(context.Background(), Query{})
	require.NoError(t, err)

	assert.Equal(t, 4, r.Count)
	assert.True(t, r.Revenue.Equal(decimal.NewFromInt(34500)))
	require.Len(t, r.History, 4)
	assert.Equal(t, int64(4), r.History[0].ID)
	assert.Equal(t, int64(1), r.History[3].ID)
	assert.Equal(t, []ChartPoint{{Date: "2 Jan", Sales: 2}, {Date: "4 Jan", Sales: 1}, {Date: "5 Jan", Sales: 1}}, r.Chart)
}

func TestSales_InclusiveDays(t *testing.T) {
	src := &stubSource{sales: sampleSales()}
	r, err := NewService(src, 10, nil).Sales(context.Background(), Query{Start: "2026-01-04", End: "2026-01-05", Method: "cash"})
	require.NoError(t, err)

	assert.Equal(t, 2, r.Count)
	f := src.filters[0]
	require.NotNil(t, f.From)
	require.NotNil(t, f.To)
	assert.Equal(t, at(4, 0), *f.From)
	assert.Equal(t, at(6, 0), *f.To)
	assert.Equal(t, "cash", f.Method)

	r, err = NewService(src, 10, nil).Sales(context.Background(), Query{End: "2026-01-02"})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Count)
}

func TestSales_BadDate(t *testing.T) {
	_, err := NewService(&stubSource{}, 10, nil).Sales(context.Background(), Query{Start: "02/01/2026"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPayments(t *testing.T) {
	src := &stubSource{sales: sampleSales()}
	svc := NewService(src, 10, nil)

	r, err := svc.Payments(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, 4, r.Count)
	assert.Equal(t, int64(4), r.History[0].ID)
	assert.Equal(t, []Slice{{Name: "Cash", Value: 2}, {Name: "Digital", Value: 1}, {Name: "Debit", Value: 1}}, r.Distribution)

	// a single bound is ignored
	r, err = svc.Payments(context.Background(), Query{Start: "2026-01-05"})
	require.NoError(t, err)
	assert.Equal(t, 4, r.Count)

	r, err = svc.Payments(context.Background(), Query{Start: "2026-01-02", End: "2026-01-02"})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Count)
	assert.True(t, r.Revenue.Equal(decimal.NewFromInt(22000)))
}

func TestDistribution_EmptyMethod(t *testing.T) {
	got := distribution([]domain.Sale{{PaymentMethod: ""}, {PaymentMethod: "  "}})
	assert.Equal(t, []Slice{{Name: "Umum", Value: 2}}, got)
}

func TestExportSales(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewService(&stubSource{sales: sampleSales()}, 10, nil).ExportSales(context.Background(), Query{}, &buf))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	sheet := file.Sheets[0]
	assert.Equal(t, "Sales", sheet.Name)
	require.Len(t, sheet.Rows, 6)
	assert.Equal(t, "Payment Method", sheet.Rows[0].Cells[5].String())
	assert.Equal(t, "Cash (Tunai)", sheet.Rows[1].Cells[5].String())
	assert.Equal(t, "Total", sheet.Rows[5].Cells[0].String())
	assert.Equal(t, "34500", sheet.Rows[5].Cells[4].String())
}
