package handlers

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"
)

const sessionName = "remindex-session"

// newCookieStore derives signing and encryption keys from the
// configured session key.
func newCookieStore(sessionKey string, devMode bool) *sessions.CookieStore {
	// Auth key for signing (HMAC)
	authKey := sha256.Sum256([]byte(sessionKey + "auth"))
	// Encryption key for content encryption (AES)
	encKey := sha256.Sum256([]byte(sessionKey + "encryption"))

	store := sessions.NewCookieStore(authKey[:], encKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   !devMode,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// cookieUserID returns the user id bound to the request's cookie
// session, or 0 when the browser is not authenticated.
func (h *Handlers) cookieUserID(r *http.Request) int64 {
	cookieSession, _ := h.cookies.Get(r, sessionName)
	if id, ok := cookieSession.Values["userID"].(int64); ok {
		return id
	}
	return 0
}

func (h *Handlers) setCookieSession(w http.ResponseWriter, r *http.Request, userID int64) {
	cookieSession, _ := h.cookies.Get(r, sessionName)
	cookieSession.Values["userID"] = userID
	cookieSession.Save(r, w)
}

func (h *Handlers) clearCookieSession(w http.ResponseWriter, r *http.Request) {
	cookieSession, _ := h.cookies.Get(r, sessionName)
	cookieSession.Options.MaxAge = -1
	cookieSession.Save(r, w)
}
