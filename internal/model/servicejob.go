package model

import "time"

// SpareUsed は修理作業で消費した資材を表す。
// UnitCostは使用時点の単価のスナップショット。
type SpareUsed struct {
	ID            string
	RawMaterialID string
	Qty           float64
	UnitCost      float64
	TotalCost     float64
}

// ServiceJob は顧客向けの修理・保守作業を表す。
type ServiceJob struct {
	ID            string
	CustomerID    string
	JobDesc       string
	Spares        []SpareUsed
	ServiceCharge float64
	CreatedAt     time.Time
}
