package model

import "time"

// Mode は商品・注文の取引形態を表す。
type Mode string

const (
	// ModeSale は販売を示す。デフォルトの取引形態。
	ModeSale Mode = "SALE"
	// ModeFree は無償提供を示す。
	ModeFree Mode = "FREE"
	// ModeRental はレンタルを示す。
	ModeRental Mode = "RENTAL"
)

// IsValid はModeが定義済みの値であるかを返す。
func (m Mode) IsValid() bool {
	switch m {
	case ModeSale, ModeFree, ModeRental:
		return true
	}
	return false
}

// Product は商品を表す。
type Product struct {
	ID          string
	SKU         string
	Name        string
	Description string
	BasePrice   float64
	Mode        Mode
	CreatedAt   time.Time
}
