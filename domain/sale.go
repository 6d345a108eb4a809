package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCustomer is recorded when a sale has no customer name.
const DefaultCustomer = "Umum"

type Sale struct {
	ID            int64           `db:"id" json:"id"`
	MedicineID    string          `db:"medicine_id" json:"medicine_id"`
	Quantity      int64           `db:"quantity" json:"quantity"`
	TotalPrice    decimal.Decimal `db:"total_price" json:"total_price"`
	PaymentMethod string          `db:"payment_method" json:"payment_method"`
	CustomerName  string          `db:"customer_name" json:"customer_name"`
	UserID        *int64          `db:"user_id" json:"user_id,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// PaymentMethods lists the tender types accepted at the counter.
var PaymentMethods = []string{
	"Cash (Tunai)",
	"Debit Card",
	"Digital Wallet (QRIS)",
	"Credit Card",
}

func IsPaymentMethod(method string) bool {
	for _, m := range PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}
