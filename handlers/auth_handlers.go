package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/dchest/captcha"

	"remindex/auth"
	"remindex/i18n"
	"remindex/models"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type signupRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	DisplayName   string `json:"display_name"`
	Email         string `json:"email"`
	Remember      bool   `json:"remember"`
	CaptchaID     string `json:"captcha_id"`
	CaptchaAnswer string `json:"captcha_answer"`
}

// userPayload is the public projection of a user. The password never
// leaves the server but the shape is kept explicit anyway.
type userPayload struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
}

func toUserPayload(u models.User) userPayload {
	return userPayload{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName, Email: u.Email}
}

func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.fail(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
		return
	}

	ip := getClientIP(r)
	if !h.loginLimiter.Allow(ip) {
		h.fail(w, r, http.StatusTooManyRequests, "TooManyAttempts")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, http.StatusBadRequest, "InvalidRequestBody")
		return
	}

	user, err := h.auth.Login(r.Context(), req.Username, req.Password, req.Remember)
	if err != nil {
		if err == auth.ErrInvalidCredentials {
			h.loginLimiter.RecordFailure(ip)
		}
		h.failErr(w, r, err)
		return
	}

	h.loginLimiter.Reset(ip)
	h.setCookieSession(w, r, user.ID)
	log.Printf("user %q logged in from %s", user.Username, ip)

	sendJSONResponse(w, http.StatusOK, APIResponse{
		Status: "success",
		Data:   toUserPayload(user),
	})
}

func (h *Handlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.fail(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
		return
	}

	if err := h.auth.Logout(); err != nil {
		h.failErr(w, r, err)
		return
	}
	h.clearCookieSession(w, r)

	lang := i18n.DetectLanguage(r)
	sendJSONResponse(w, http.StatusOK, APIResponse{
		Status:  "success",
		Message: i18n.T(lang, "LoggedOut"),
	})
}

func (h *Handlers) SignupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.fail(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
		return
	}

	ip := getClientIP(r)
	if !h.signupLimiter.Allow(ip) {
		h.fail(w, r, http.StatusTooManyRequests, "TooManyAttempts")
		return
	}

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, http.StatusBadRequest, "InvalidRequestBody")
		return
	}

	if !h.devMode && !captcha.VerifyString(req.CaptchaID, req.CaptchaAnswer) {
		h.signupLimiter.RecordFailure(ip)
		h.fail(w, r, http.StatusBadRequest, "CaptchaFailed")
		return
	}

	user, err := h.auth.Register(r.Context(), auth.RegisterInput{
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Email:       req.Email,
	}, req.Remember)
	if err != nil {
		h.failErr(w, r, err)
		return
	}

	h.signupLimiter.Reset(ip)
	h.setCookieSession(w, r, user.ID)
	log.Printf("user %q registered from %s", user.Username, ip)

	sendJSONResponse(w, http.StatusCreated, APIResponse{
		Status: "success",
		Data:   toUserPayload(user),
	})
}

// SessionHandler reports the current session. The user row is
// re-fetched so a deleted account invalidates the session immediately.
func (h *Handlers) SessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.fail(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
		return
	}

	id := h.cookieUserID(r)
	if id == 0 {
		sendJSONResponse(w, http.StatusOK, APIResponse{
			Status: "success",
			Data:   map[string]any{"logged_in": false},
		})
		return
	}
	// A cookie for a different account than the signed-in one is stale
	if id != h.sessions.CurrentUserID() {
		h.clearCookieSession(w, r)
		sendJSONResponse(w, http.StatusOK, APIResponse{
			Status: "success",
			Data:   map[string]any{"logged_in": false},
		})
		return
	}

	user, err := h.auth.CurrentUser(r.Context())
	if err != nil {
		if err == auth.ErrInvalidCredentials {
			h.clearCookieSession(w, r)
			sendJSONResponse(w, http.StatusOK, APIResponse{
				Status: "success",
				Data:   map[string]any{"logged_in": false},
			})
			return
		}
		h.failErr(w, r, err)
		return
	}

	sendJSONResponse(w, http.StatusOK, APIResponse{
		Status: "success",
		Data: map[string]any{
			"logged_in":      true,
			"user":           toUserPayload(user),
			"remember_login": h.sessions.RememberLogin(),
		},
	})
}

func (h *Handlers) NewCaptchaHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.fail(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
		return
	}

	id := captcha.NewLen(6)
	sendJSONResponse(w, http.StatusOK, APIResponse{
		Status: "success",
		Data: map[string]any{
			"captcha_id":  id,
			"captcha_url": "/captcha/" + id + ".png",
		},
	})
}

// UsernameCheckHandler answers availability queries from the signup
// form. Each request supersedes the previous one; a superseded request
// returns 204 with no body.
func (h *Handlers) UsernameCheckHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.fail(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
		return
	}

	username := r.URL.Query().Get("username")
	lang := i18n.DetectLanguage(r)

	results := h.checker.Check(r.Context(), username)
	res, ok := <-results
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if res.Err != nil {
		h.failErr(w, r, res.Err)
		return
	}

	key := "UsernameAvailable"
	if !res.Available {
		key = "UsernameUnavailable"
	}
	sendJSONResponse(w, http.StatusOK, APIResponse{
		Status:  "success",
		Message: i18n.T(lang, key),
		Data: map[string]any{
			"username":  res.Username,
			"available": res.Available,
		},
	})
}
