package pos

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/store"
)

const cashier = int64(11)

func newSessionStore(t *testing.T, f *fixture, mode Mode) *SessionStore {
	t.Helper()
	catalog := NewCachedCatalog(f.store, nil, nil)
	return NewSessionStore(catalog, NewCommitter(f.store, mode, nil, nil), defaultPricing, testRenderer(), time.Hour, nil)
}

func TestSession_OpenSnapshotsSellableCatalog(t *testing.T) {
	f := newFixture(t, 10, 0, 3)
	ss := newSessionStore(t, f, ModeSequential)

	view, err := ss.Open(context.Background(), cashier)
	require.NoError(t, err)
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, StateIdle, view.State)
	assert.Equal(t, 2, view.CatalogSize)
	assert.Equal(t, "Cash (Tunai)", view.PaymentMethod)
	assert.Len(t, view.Date, len("2006-01-02"))

	found, err := ss.Search(cashier, view.ID, "vit", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Vitamin C", found[0].Name)

	_, err = ss.AddItem(cashier, view.ID, f.meds[1].ID, 1)
	assert.ErrorIs(t, err, ErrItemNotInCatalog)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSession_OwnedByOpeningUser(t *testing.T) {
	f := newFixture(t, 10)
	ss := newSessionStore(t, f, ModeSequential)
	view, err := ss.Open(context.Background(), cashier)
	require.NoError(t, err)

	_, err = ss.Get(cashier+1, view.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = ss.Get(cashier, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSession_CheckoutFlow(t *testing.T) {
	f := newFixture(t, 10, 5)
	ss := newSessionStore(t, f, ModeSequential)
	ctx := context.Background()

	view, err := ss.Open(ctx, cashier)
	require.NoError(t, err)
	id := view.ID

	_, err = ss.AddItem(cashier, id, f.meds[0].ID, 2)
	require.NoError(t, err)
	_, err = ss.AddItem(cashier, id, f.meds[1].ID, 1)
	require.NoError(t, err)
	view, err = ss.SetCustomer(cashier, id, "  Budi ")
	require.NoError(t, err)
	assert.Equal(t, "Budi", view.Customer)
	assert.True(t, view.Totals.Subtotal.Equal(decimal.NewFromInt(22000)))
	assert.True(t, view.Totals.Tax.Equal(decimal.NewFromInt(2420)))
	assert.True(t, view.Totals.Total.Equal(decimal.NewFromInt(24420)))

	opener := &bufferOpener{}
	require.NoError(t, ss.Label(cashier, id, 0, opener))
	assert.Contains(t, opener.surface.String(), "Nama Pasien: BUDI")
	assert.ErrorIs(t, ss.Label(cashier, id, 5, opener), ErrLineNotFound)

	view, err = ss.Checkout(ctx, cashier, id, CheckoutRequest{PaymentMethod: "Debit Card", Date: "2026-03-09", PrintInvoice: true})
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, view.State)
	assert.Empty(t, view.Lines)
	assert.Empty(t, view.Customer)
	assert.Equal(t, "Debit Card", view.PaymentMethod)
	require.NotNil(t, view.Receipt)
	assert.Equal(t, "Budi", view.Receipt.Customer)
	assert.Len(t, view.Receipt.SaleIDs, 2)
	assert.True(t, view.Receipt.Totals.Total.Equal(decimal.NewFromInt(24420)))

	assert.Equal(t, int64(8), f.stock(t, 0))
	assert.Equal(t, int64(4), f.stock(t, 1))
	assert.Len(t, f.sales(t), 2)

	// reloaded snapshot reflects the new stock
	found, err := ss.Search(cashier, id, "Paracetamol", 1)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(8), found[0].Stock)

	invoice := &bufferOpener{}
	require.NoError(t, ss.Invoice(cashier, id, invoice))
	assert.Contains(t, invoice.surface.String(), "TOTAL DUE: Rp 24,420")
	assert.Contains(t, invoice.surface.String(), "2026-03-09")
	assert.ErrorIs(t, ss.Invoice(cashier, id, invoice), ErrInvoiceUnavailable)
}

func TestSession_InvoiceRequiresOptIn(t *testing.T) {
	f := newFixture(t, 10)
	ss := newSessionStore(t, f, ModeSequential)
	ctx := context.Background()
	view, err := ss.Open(ctx, cashier)
	require.NoError(t, err)

	assert.ErrorIs(t, ss.Invoice(cashier, view.ID, &bufferOpener{}), ErrInvoiceUnavailable)

	_, err = ss.AddItem(cashier, view.ID, f.meds[0].ID, 1)
	require.NoError(t, err)
	_, err = ss.Checkout(ctx, cashier, view.ID, CheckoutRequest{})
	require.NoError(t, err)
	assert.ErrorIs(t, ss.Invoice(cashier, view.ID, &bufferOpener{}), ErrInvoiceUnavailable)
}

func TestSession_InvoiceSurfaceFailureCanBeRetried(t *testing.T) {
	f := newFixture(t, 10)
	ss := newSessionStore(t, f, ModeSequential)
	ctx := context.Background()
	view, err := ss.Open(ctx, cashier)
	require.NoError(t, err)
	_, err = ss.AddItem(cashier, view.ID, f.meds[0].ID, 1)
	require.NoError(t, err)
	_, err = ss.Checkout(ctx, cashier, view.ID, CheckoutRequest{PrintInvoice: true})
	require.NoError(t, err)

	err = ss.Invoice(cashier, view.ID, &bufferOpener{err: errors.New("blocked")})
	assert.ErrorIs(t, err, ErrSurfaceUnavailable)
	assert.NoError(t, ss.Invoice(cashier, view.ID, &bufferOpener{}))
}

func TestSession_CheckoutValidationLeavesSessionUntouched(t *testing.T) {
	f := newFixture(t, 10)
	ss := newSessionStore(t, f, ModeSequential)
	ctx := context.Background()
	view, err := ss.Open(ctx, cashier)
	require.NoError(t, err)

	_, err = ss.Checkout(ctx, cashier, view.ID, CheckoutRequest{})
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = ss.AddItem(cashier, view.ID, f.meds[0].ID, 1)
	require.NoError(t, err)
	_, err = ss.Checkout(ctx, cashier, view.ID, CheckoutRequest{PaymentMethod: "Barter"})
	assert.ErrorIs(t, err, ErrUnknownPaymentMethod)
	view, err = ss.Checkout(ctx, cashier, view.ID, CheckoutRequest{Date: "09/03/2026"})
	assert.ErrorIs(t, err, ErrInvalidDate)

	assert.Equal(t, StateIdle, view.State)
	assert.Len(t, view.Lines, 1)
	assert.Empty(t, f.sales(t))
}

func TestSession_FailedCheckoutRetainsCart(t *testing.T) {
	f := newFixture(t, 10, 5)
	ss := newSessionStore(t, f, ModeSequential)
	ctx := context.Background()
	view, err := ss.Open(ctx, cashier)
	require.NoError(t, err)
	_, err = ss.AddItem(cashier, view.ID, f.meds[0].ID, 2)
	require.NoError(t, err)
	_, err = ss.AddItem(cashier, view.ID, f.meds[1].ID, 5)
	require.NoError(t, err)
	_, err = ss.SetCustomer(cashier, view.ID, "Rina")
	require.NoError(t, err)
	require.NoError(t, f.store.SetStock(ctx, f.meds[1].ID, 2))

	view, err = ss.Checkout(ctx, cashier, view.ID, CheckoutRequest{})
	var ce *CommitError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 1, ce.Index)

	assert.Equal(t, StateFailed, view.State)
	assert.NotEmpty(t, view.LastError)
	assert.Len(t, view.Lines, 2)
	assert.Equal(t, "Rina", view.Customer)
	assert.Nil(t, view.Receipt)
	assert.Len(t, f.sales(t), 1)

	view, removed, err := ss.RemoveItem(cashier, view.ID, 1)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, StateIdle, view.State)
	assert.Empty(t, view.LastError)

	_, removed, err = ss.RemoveItem(cashier, view.ID, 7)
	require.NoError(t, err)
	assert.False(t, removed)
}

type staticCatalog struct{ items []domain.Medicine }

func (c staticCatalog) ListSellable(context.Context) ([]domain.Medicine, error) { return c.items, nil }
func (c staticCatalog) Reload(context.Context) ([]domain.Medicine, error) { return c.items, nil }

type nopWriter struct{}

func (nopWriter) InsertSale(_ context.Context, sale *domain.Sale) error {
	sale.ID = 1
	return nil
}

func (nopWriter) DecrementStock(context.Context, string, int64) error { return nil }

type blockingStore struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) WithinSalesTx(_ context.Context, fn func(store.SaleLineWriter) error) error {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return fn(nopWriter{})
}

func TestSession_ConcurrentCheckoutRefused(t *testing.T) {
	bs := &blockingStore{entered: make(chan struct{}), release: make(chan struct{})}
	catalog := staticCatalog{items: []domain.Medicine{paracetamol}}
	ss := NewSessionStore(catalog, NewCommitter(bs, ModeSequential, nil, nil), defaultPricing, testRenderer(), time.Hour, nil)
	ctx := context.Background()

	view, err := ss.Open(ctx, cashier)
	require.NoError(t, err)
	_, err = ss.AddItem(cashier, view.ID, paracetamol.ID, 1)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := ss.Checkout(ctx, cashier, view.ID, CheckoutRequest{})
		done <- err
	}()
	<-bs.entered

	_, err = ss.Checkout(ctx, cashier, view.ID, CheckoutRequest{})
	assert.ErrorIs(t, err, ErrCheckoutInProgress)
	_, err = ss.AddItem(cashier, view.ID, paracetamol.ID, 1)
	assert.ErrorIs(t, err, ErrCheckoutInProgress)
	got, err := ss.Get(cashier, view.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCommitting, got.State)

	close(bs.release)
	require.NoError(t, <-done)
	got, err = ss.Get(cashier, view.ID)
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, got.State)
}

func TestSession_ExpiresAfterIdleTTL(t *testing.T) {
	ss := NewSessionStore(staticCatalog{items: []domain.Medicine{paracetamol}}, nil, defaultPricing, testRenderer(), time.Minute, nil)
	clock := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	ss.now = func() time.Time { return clock }

	view, err := ss.Open(context.Background(), cashier)
	require.NoError(t, err)

	clock = clock.Add(30 * time.Second)
	_, err = ss.Get(cashier, view.ID)
	require.NoError(t, err)

	clock = clock.Add(2 * time.Minute)
	_, err = ss.Get(cashier, view.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSession_Close(t *testing.T) {
	ss := NewSessionStore(staticCatalog{}, nil, defaultPricing, testRenderer(), time.Hour, nil)
	view, err := ss.Open(context.Background(), cashier)
	require.NoError(t, err)

	require.NoError(t, ss.Close(cashier, view.ID))
	assert.ErrorIs(t, ss.Close(cashier, view.ID), ErrSessionNotFound)
}
