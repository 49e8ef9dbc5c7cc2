package handlers

import (
	"encoding/base64"
	"net/http"
	"strings"
)

const flashCookieName = "flash"

// Flash messages survive exactly one redirect: a POST sets the cookie, the
// next render pops it. Reading clears the cookie, which is what makes the
// banner transient.

// SetFlashSuccess queues a success banner for the next page render.
func SetFlashSuccess(w http.ResponseWriter, msg string) { setFlash(w, "success", msg) }

// SetFlashError queues an error banner for the next page render.
func SetFlashError(w http.ResponseWriter, msg string) { setFlash(w, "error", msg) }

func setFlash(w http.ResponseWriter, kind, msg string) {
	val := kind + "." + base64.RawURLEncoding.EncodeToString([]byte(msg))
	http.SetCookie(w, &http.Cookie{Name: flashCookieName, Value: val, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// PopFlash returns and clears the pending flash message, if any.
func PopFlash(w http.ResponseWriter, r *http.Request) (kind, msg string) {
	c, err := r.Cookie(flashCookieName)
	if err != nil || c.Value == "" {
		return "", ""
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	kind, enc, ok := strings.Cut(c.Value, ".")
	if !ok {
		return "", ""
	}
	raw, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil {
		return "", ""
	}
	return kind, string(raw)
}
