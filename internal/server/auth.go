package server

import (
	"crypto/hmac"
	"net/http"
	"strings"
)

const (
	telegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"
	opsTokenHeader       = "X-Ops-Token"
)

// webhookAuthMiddleware сверяет секрет, который Telegram присылает с каждым webhook.
// Без TELEGRAM_SECRET_TOKEN проверка выключена.
func (s *Server) webhookAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret := s.config.Telegram.SecretToken
		if secret != "" && !tokensEqual(r.Header.Get(telegramSecretHeader), secret) {
			s.securityLogger.LogFailedAuth(r, "invalid_webhook_secret")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// opsAuthMiddleware закрывает служебные эндпоинты токеном OPS_TOKEN
// (заголовок X-Ops-Token, "Authorization: Bearer" или ?token=)
func (s *Server) opsAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.config.Ops.Token
		if token != "" && !tokensEqual(opsTokenFrom(r), token) {
			s.securityLogger.LogFailedAuth(r, "invalid_ops_token")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func opsTokenFrom(r *http.Request) string {
	if t := r.Header.Get(opsTokenHeader); t != "" {
		return t
	}
	if t, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return t
	}
	return r.URL.Query().Get("token")
}

// tokensEqual сравнивает токены за постоянное время
func tokensEqual(got, want string) bool {
	return hmac.Equal([]byte(got), []byte(want))
}
