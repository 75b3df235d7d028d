package models

import "time"

// CropUnit enumerates the units a harvest can be recorded in.
type CropUnit string

const (
	UnitKg    CropUnit = "kg"
	UnitTons  CropUnit = "tons"
	UnitCount CropUnit = "count"
)

// IsValid reports whether the unit is one of the supported crop units.
func (u CropUnit) IsValid() bool {
	switch u {
	case UnitKg, UnitTons, UnitCount:
		return true
	}
	return false
}

// Yield is a recorded harvest. Yields are never updated once stored; sales
// reduce the remaining quantity through their own records, and Remaining is
// derived from them on read.
type Yield struct {
	ID          string    `bson:"_id" json:"id"`
	OwnerID     string    `bson:"owner_id" json:"-"`
	CropName    string    `bson:"crop_name" json:"cropName"`
	Quantity    float64   `bson:"quantity" json:"quantity"`
	Unit        CropUnit  `bson:"unit" json:"unit"`
	HarvestDate time.Time `bson:"harvest_date" json:"harvestDate"`
	Remaining   float64   `bson:"-" json:"remaining"`
}

// Sale captures part of a yield sold to a buyer. Price is the total amount
// received for the quantity.
type Sale struct {
	ID       string    `bson:"_id" json:"id"`
	OwnerID  string    `bson:"owner_id" json:"-"`
	CropID   string    `bson:"crop_id" json:"cropId"`
	CropName string    `bson:"crop_name" json:"cropName"`
	Quantity float64   `bson:"quantity" json:"quantity"`
	Price    float64   `bson:"price" json:"price"`
	Seller   string    `bson:"seller" json:"seller"`
	Date     time.Time `bson:"date" json:"date"`
}
