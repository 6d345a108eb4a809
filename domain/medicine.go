package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Medicine struct {
	ID          string          `db:"id" json:"id"`
	Code        string          `db:"code" json:"code"`
	Name        string          `db:"name" json:"name"`
	GroupName   string          `db:"group_name" json:"group_name"`
	Stock       int64           `db:"stock" json:"stock"`
	Price       decimal.Decimal `db:"price" json:"price"`
	HowToUse    string          `db:"how_to_use" json:"how_to_use"`
	SideEffects string          `db:"side_effects" json:"side_effects"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// Uncategorized is the pseudo group reported for medicines without a group.
const Uncategorized = "Uncategorized"

type MedicineGroup struct {
	ID        int64     `db:"id" json:"id,omitempty"`
	Name      string    `db:"name" json:"name"`
	Count     int64     `db:"-" json:"count"`
	IsMaster  bool      `db:"-" json:"is_master"`
	CreatedAt time.Time `db:"created_at" json:"created_at,omitempty"`
}
