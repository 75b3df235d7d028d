package models

// InventoryItem is a simple stock record.
type InventoryItem struct {
	ID       string  `bson:"_id" json:"id"`
	OwnerID  string  `bson:"owner_id" json:"-"`
	ItemName string  `bson:"item_name" json:"itemName"`
	ItemType string  `bson:"item_type" json:"itemType"`
	Quantity float64 `bson:"quantity" json:"quantity"`
	Unit     string  `bson:"unit" json:"unit"`
}
