// Package middleware はHTTPミドルウェアを提供する。
package middleware

import "net/http"

// SessionCookieName は封印セッションを保持するCookieの名前。
const SessionCookieName = "wos-session"

// SessionCookieConfig はセッションCookieの属性設定。
type SessionCookieConfig struct {
	MaxAge int    // 有効期間（秒）
	Secure bool   // HTTPS経由でのみ送信するか
	Domain string // Cookieのドメイン（空なら発行元のみ）
}

// SetSessionCookie は封印セッションをHTTP Only Cookieとして設定する。
// SameSite=Laxにより、外部サイトからのPOSTにはCookieが送信されない。
func SetSessionCookie(w http.ResponseWriter, sealedSession string, config SessionCookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sealedSession,
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   config.MaxAge,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie はセッションCookieを無効化する。
// 設定時と同じ属性（Path、Domain）でなければブラウザは削除しない。
func ClearSessionCookie(w http.ResponseWriter, config SessionCookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
