package model

import "time"

// VisitRefType は訪問の参照先種別を表す。
type VisitRefType string

const (
	// VisitRefOrder は注文に紐付く訪問を示す。
	VisitRefOrder VisitRefType = "ORDER"
	// VisitRefService は修理作業に紐付く訪問を示す。
	VisitRefService VisitRefType = "SERVICE"
	// VisitRefOther はその他の訪問を示す。デフォルト値。
	VisitRefOther VisitRefType = "OTHER"
)

// IsValid はVisitRefTypeが定義済みの値であるかを返す。
func (t VisitRefType) IsValid() bool {
	switch t {
	case VisitRefOrder, VisitRefService, VisitRefOther:
		return true
	}
	return false
}

// Visit は顧客への訪問記録を表す。
// TotalTravelCostは distanceKm × costPerKm のスナップショット。
type Visit struct {
	ID              string
	RefType         VisitRefType
	RefID           string
	CustomerID      string
	UserID          string
	Date            time.Time
	DistanceKm      float64
	CostPerKm       float64
	TotalTravelCost float64
	CreatedAt       time.Time
}
