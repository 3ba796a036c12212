// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの役割を表す。
type Role string

const (
	// RoleAdmin は管理者を示す。
	RoleAdmin Role = "admin"
	// RoleSales は営業担当を示す。新規ユーザーのデフォルト役割。
	RoleSales Role = "sales"
	// RoleTech は技術担当を示す。
	RoleTech Role = "tech"
)

// IsValid はRoleが定義済みの値であるかを返す。
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSales, RoleTech:
		return true
	}
	return false
}

// User はサービス利用ユーザーを表す。
// 外部IdPの認証クレームから初回ログイン時に遅延作成され、
// 以降このライフサイクルでは更新されない。
type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	CreatedAt time.Time
}

// Claim は外部IdPが認証成功時に表明するユーザー属性を表す。
// 永続化されず、1リクエストの間のみ有効。
type Claim struct {
	ID                string
	FirstName         string
	LastName          string
	Email             string
	ProfilePictureURL string
}
