package model

import "time"

// Item categories. Stored as an ENUM in MySQL.
const (
	CategoryFood  = "FOOD"
	CategoryDrink = "DRINK"
	CategoryOther = "OTHER"
)

// Item is a sellable catalog entry (menu product). Price changes do
// not touch historical order lines: every OrderItem snapshots the
// name and price at the moment of sale.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique product name.
//  Category  – FOOD, DRINK or OTHER.
//  Price     – unit price, minor currency units.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Item struct {
	ID        uint64    `json:"id"`       // items.id
	Name      string    `json:"name"`     // items.name
	Category  string    `json:"category"` // items.category
	Price     int64     `json:"price"`    // items.price
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidCategory reports whether s is one of the known item categories.
func ValidCategory(s string) bool {
	switch s {
	case CategoryFood, CategoryDrink, CategoryOther:
		return true
	}
	return false
}
