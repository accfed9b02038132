package server

import (
	"net/http"

	"github.com/debemdeboas/composer/internal/config"
)

const (
	flashMaxAge       = 60
	flashArticleSaved = "article-saved"
)

// The cookie only carries a key, so a forged cookie cannot inject text.
var flashMessages = map[string]string{
	flashArticleSaved: config.MsgArticleSaved,
}

// setFlash leaves a one-shot message for the page the writer lands on next.
// Toasts for the draft are dropped when it is torn down after a submit.
func setFlash(w http.ResponseWriter, key string) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.CookieFlash,
		Value:    key,
		Path:     "/",
		MaxAge:   flashMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash returns the pending message, if any, and clears the cookie.
func takeFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(config.CookieFlash)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     config.CookieFlash,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return flashMessages[cookie.Value]
}
