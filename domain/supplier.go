package domain

import "time"

type Supplier struct {
	ID            int64     `db:"id" json:"supplier_id"`
	SupplierName  string    `db:"supplier_name" json:"supplier_name"`
	ContactPerson string    `db:"contact_person" json:"contact_person"`
	Phone         string    `db:"phone" json:"phone"`
	Email         string    `db:"email" json:"email"`
	Address       string    `db:"address" json:"address"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
