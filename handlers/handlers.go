// Package handlers is the JSON presentation facade over the services.
// It owns no business rules: it decodes input, calls the services and
// maps their errors to localized responses.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/dchest/captcha"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"remindex/auth"
	"remindex/i18n"
	"remindex/reminder"
	"remindex/repo"
	"remindex/session"
	"remindex/validate"
)

type Handlers struct {
	auth      *auth.Service
	reminders *reminder.Service
	sessions  *session.Manager
	// checker is shared by every client: a new check cancels the one
	// in flight and the superseded request is answered with 204, the
	// same supersede-on-keystroke behavior a single signup form gets.
	checker *auth.AvailabilityChecker
	cookies *sessions.CookieStore

	// devMode relaxes the captcha requirement on signup and is also
	// reflected in the cookie flags.
	devMode bool

	loginLimiter  *rateLimiter
	signupLimiter *rateLimiter
}

func New(authSvc *auth.Service, reminderSvc *reminder.Service, sessionMgr *session.Manager, checker *auth.AvailabilityChecker, sessionKey string, devMode bool) *Handlers {
	return &Handlers{
		auth:          authSvc,
		reminders:     reminderSvc,
		sessions:      sessionMgr,
		checker:       checker,
		cookies:       newCookieStore(sessionKey, devMode),
		devMode:       devMode,
		loginLimiter:  newRateLimiter(),
		signupLimiter: newRateLimiter(),
	}
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/login", h.LoginHandler)
	mux.HandleFunc("/api/v1/logout", h.LogoutHandler)
	mux.HandleFunc("/api/v1/signup", h.SignupHandler)
	mux.HandleFunc("/api/v1/session", h.SessionHandler)
	mux.HandleFunc("/api/v1/csrf", h.CSRFTokenHandler)
	mux.HandleFunc("/api/v1/captcha/new", h.NewCaptchaHandler)
	mux.HandleFunc("/api/v1/username-check", h.UsernameCheckHandler)

	mux.HandleFunc("/api/v1/reminders", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.ListRemindersHandler(w, r)
		case http.MethodPost:
			h.CreateReminderHandler(w, r)
		case http.MethodPut:
			h.UpdateReminderHandler(w, r)
		case http.MethodDelete:
			h.DeleteReminderHandler(w, r)
		default:
			h.fail(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
		}
	})
	mux.HandleFunc("/api/v1/reminders/search", h.SearchRemindersHandler)
	mux.HandleFunc("/api/v1/reminders/categories", h.CategoriesHandler)
	mux.HandleFunc("/api/v1/preferences", h.PreferencesHandler)

	// Captcha images referenced by /api/v1/captcha/new
	mux.Handle("/captcha/", captcha.Server(captcha.StdWidth, captcha.StdHeight))
}

type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func sendJSONResponse(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// fail sends a localized error response for a known message key.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, status int, key string) {
	lang := i18n.DetectLanguage(r)
	sendJSONResponse(w, status, APIResponse{Status: "error", Message: i18n.T(lang, key)})
}

// failErr maps service errors onto status codes and localized
// messages. Unknown errors are logged and reported as internal.
func (h *Handlers) failErr(w http.ResponseWriter, r *http.Request, err error) {
	var fe *validate.FieldError
	switch {
	case errors.As(err, &fe):
		h.fail(w, r, http.StatusBadRequest, fe.Key)
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.fail(w, r, http.StatusUnauthorized, "InvalidCredentials")
	case errors.Is(err, auth.ErrUsernameTaken):
		h.fail(w, r, http.StatusConflict, "UsernameAlreadyExists")
	case errors.Is(err, auth.ErrEmailTaken):
		h.fail(w, r, http.StatusConflict, "EmailAlreadyExists")
	case errors.Is(err, reminder.ErrNoSession):
		h.fail(w, r, http.StatusUnauthorized, "NoActiveSession")
	case errors.Is(err, repo.ErrNotFound):
		h.fail(w, r, http.StatusNotFound, "NotFound")
	default:
		log.Printf("internal error on %s %s: %v", r.Method, r.URL.Path, err)
		h.fail(w, r, http.StatusInternalServerError, "InternalError")
	}
}

// requireUser gates reminder endpoints on the browser cookie, the
// durable session record, and their agreement. A cookie minted for an
// account that is no longer the signed-in one is stale and gets
// cleared; serving it would hand one user's data to another browser.
func (h *Handlers) requireUser(w http.ResponseWriter, r *http.Request) bool {
	id := h.cookieUserID(r)
	if id == 0 || !h.sessions.HasValidSession() {
		h.fail(w, r, http.StatusUnauthorized, "NoActiveSession")
		return false
	}
	if id != h.sessions.CurrentUserID() {
		h.clearCookieSession(w, r)
		h.fail(w, r, http.StatusUnauthorized, "NoActiveSession")
		return false
	}
	return true
}

// CSRFTokenHandler hands the SPA a token for subsequent mutating
// requests (sent back in the X-CSRF-Token header).
func (h *Handlers) CSRFTokenHandler(w http.ResponseWriter, r *http.Request) {
	sendJSONResponse(w, http.StatusOK, APIResponse{
		Status: "success",
		Data:   map[string]any{"csrf_token": csrf.Token(r)},
	})
}
