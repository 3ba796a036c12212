package model

import "time"

// OrderItem は注文明細を表す。
// BasePriceは注文時点の商品単価のスナップショットで、
// 以降の商品価格変更の影響を受けない。
type OrderItem struct {
	ID        string
	ProductID string
	Qty       int
	BasePrice float64
	Total     float64
}

// Order は顧客の注文を表す。
// BaseTotalは全明細Totalの合計のスナップショット。
type Order struct {
	ID         string
	CustomerID string
	Items      []OrderItem
	Mode       Mode
	BaseTotal  float64
	CreatedAt  time.Time
}
