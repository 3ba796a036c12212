package model

import "time"

// RawMaterial は仕入資材を表す。
// TotalCostは purchaseQty × purchaseUnitCost のスナップショット。
type RawMaterial struct {
	ID               string
	Name             string
	Vendor           string
	PurchaseQty      float64
	PurchaseUnitCost float64
	TotalCost        float64
	CreatedAt        time.Time
}
