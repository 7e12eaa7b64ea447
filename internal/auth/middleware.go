package auth

import (
	"net/http"
	"time"
)

// SessionMiddleware implements the sliding session: a valid cookie that
// is past half of its lifetime is reissued. Requests are never rejected
// here; operations decide themselves whether they need a caller.
func (h *AuthHandler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, exp, err := h.ParseToken(cookie.Value)
		if err == nil && !exp.IsZero() && time.Until(exp) < TokenDuration/2 {
			if newToken, err := h.GenerateToken(userID); err == nil {
				http.SetCookie(w, h.sessionCookie(newToken))
			}
		}

		next.ServeHTTP(w, r)
	})
}
