package model

import "github.com/shopspring/decimal"

// MaxMealPrice is the largest price the DECIMAL(5,2) column can hold.
var MaxMealPrice = decimal.RequireFromString("999.99")

// Category groups menu items (starters, mains, desserts...).
type Category struct {
    ID   uint64 `json:"id"`
    Name string `json:"name"`
}

// Meal is one item of the restaurant menu.  A meal may belong to several
// categories; the menu is independent of table reservations.
//
// Fields:
//  Price      – two decimal places, stored as DECIMAL(5,2).
//  Picture    – URL or path of the illustration, may be empty.
//  Categories – attached categories in id order.
type Meal struct {
    ID          uint64          `json:"id"`
    Name        string          `json:"name"`
    Description string          `json:"description"`
    Price       decimal.Decimal `json:"price"`
    Picture     string          `json:"picture"`
    Categories  []Category      `json:"categories"`
}

// CategoryIDs returns the IDs of the attached categories.
func (m Meal) CategoryIDs() []uint64 {
    ids := make([]uint64, 0, len(m.Categories))
    for _, c := range m.Categories {
        ids = append(ids, c.ID)
    }
    return ids
}

// ValidPrice reports whether p is positive, fits the column and has at
// most two decimal places.
func ValidPrice(p decimal.Decimal) bool {
    return p.IsPositive() && p.LessThanOrEqual(MaxMealPrice) && p.Equal(p.Round(2))
}
