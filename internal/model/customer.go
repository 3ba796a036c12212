package model

import "time"

// Location は顧客所在地の2次元座標（経度・緯度）を表す。
type Location struct {
	Lng float64
	Lat float64
}

// Customer は顧客を表す。
type Customer struct {
	ID          string
	Name        string
	ContactName string
	Email       string
	Phone       string
	Address     string
	Location    *Location
	CreatedAt   time.Time
}
