// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// JSONレスポンスでは安定した error / message フィールドとして公開される。
type APIError struct {
	Code    string // エラーコード（errorフィールドに載る）
	Message string // エラーメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeMissingAuthCode    = "MISSING_AUTH_CODE"
	ErrCodeProvisioningFailed = "PROVISIONING_FAILED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewValidationError は必須フィールド未指定などの入力エラーを生成する。
// fieldには問題のあったフィールド名を指定する。
func NewValidationError(field, reason string) *APIError {
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Message: fmt.Sprintf("%s: %s", field, reason),
	}
}

// NewNotFoundError は対象リソース未検出エラーを生成する。
func NewNotFoundError(resource, id string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%sが見つかりません: %s", resource, id),
	}
}

// NewUnauthorizedError は認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: "認証が必要です。",
	}
}

// NewProvisioningError はユーザープロビジョニング失敗エラーを生成する。
// 認証拒否とは区別され、500として返される。
func NewProvisioningError() *APIError {
	return &APIError{
		Code:    ErrCodeProvisioningFailed,
		Message: "ユーザー情報の作成に失敗しました。",
	}
}
