package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"remindex/models"
)

type reminderRequest struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Priority int    `json:"priority"`
}

// reminderPayload adds the display label for the numeric priority.
type reminderPayload struct {
	models.Reminder
	PriorityLabel string `json:"priority_label"`
}

func toReminderPayload(rem models.Reminder) reminderPayload {
	return reminderPayload{Reminder: rem, PriorityLabel: models.PriorityName(rem.Priority)}
}

func toReminderPayloads(items []models.Reminder) []reminderPayload {
	payloads := make([]reminderPayload, 0, len(items))
	for _, rem := range items {
		payloads = append(payloads, toReminderPayload(rem))
	}
	return payloads
}

// ListRemindersHandler serves the reminder list. ?q= switches to
// substring search, ?category= and ?priority= filter. The stored
// sort-order preference is applied on top of the repository ordering.
func (h *Handlers) ListRemindersHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requireUser(w, r) {
		return
	}

	var (
		items []models.Reminder
		err   error
	)
	q := r.URL.Query()
	switch {
	case q.Get("q") != "":
		items, err = h.reminders.Search(r.Context(), q.Get("q"))
	case q.Get("category") != "":
		items, err = h.reminders.ByCategory(r.Context(), q.Get("category"))
	case q.Get("priority") != "":
		p, convErr := strconv.Atoi(q.Get("priority"))
		if convErr != nil {
			h.fail(w, r, http.StatusBadRequest, "InvalidRequestBody")
			return
		}
		items, err = h.reminders.ByPriority(r.Context(), p)
	default:
		items, err = h.reminders.List(r.Context())
	}
	if err != nil {
		h.failErr(w, r, err)
		return
	}

	applySortOrder(items, h.sessions.SortOrder())

	sendJSONResponse(w, http.StatusOK, APIResponse{
		Status: "success",
		Data: map[string]any{
			"reminders": toReminderPayloads(items),
			"count":     len(items),
		},
	})
}

// SearchRemindersHandler serves substring search over title and
// content. An empty query returns the full list, matching the list
// endpoint's behavior.
func (h *Handlers) SearchRemindersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.fail(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
		return
	}
	if !h.requireUser(w, r) {
		return
	}

	items, err := h.reminders.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.failErr(w, r, err)
		return
	}
	applySortOrder(items, h.sessions.SortOrder())

	sendJSONResponse(w, http.StatusOK, APIResponse{
		Status: "success",
		Data: map[string]any{
			"reminders": toReminderPayloads(items),
			"count":     len(items),
		},
	})
}

// applySortOrder reorders in place per the preference value. Unknown
// values keep the repository order (most recently updated first).
func applySortOrder(items []models.Reminder, order string) {
	switch order {
	case models.SortDateAsc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].UpdatedAt.Before(items[j].UpdatedAt)
		})
	case models.SortPriorityDesc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Priority > items[j].Priority
		})
	case models.SortTitleAsc:
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].Title) < strings.ToLower(items[j].Title)
		})
	}
}

func (h *Handlers) CreateReminderHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requireUser(w, r) {
		return
	}

	var req reminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, http.StatusBadRequest, "InvalidRequestBody")
		return
	}

	rem, err := h.reminders.Create(r.Context(), req.Title, req.Content, req.Category, req.Priority)
	if err != nil {
		h.failErr(w, r, err)
		return
	}

	sendJSONResponse(w, http.StatusCreated, APIResponse{Status: "success", Data: toReminderPayload(rem)})
}

func (h *Handlers) UpdateReminderHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requireUser(w, r) {
		return
	}

	var req reminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
		h.fail(w, r, http.StatusBadRequest, "InvalidRequestBody")
		return
	}

	rem, err := h.reminders.Update(r.Context(), req.ID, req.Title, req.Content, req.Category, req.Priority)
	if err != nil {
		h.failErr(w, r, err)
		return
	}

	sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success", Data: toReminderPayload(rem)})
}

// DeleteReminderHandler deletes one reminder by ?id=, or every
// reminder of the current user when ?all=true.
func (h *Handlers) DeleteReminderHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requireUser(w, r) {
		return
	}

	if r.URL.Query().Get("all") == "true" {
		deleted, err := h.reminders.DeleteAll(r.Context())
		if err != nil {
			h.failErr(w, r, err)
			return
		}
		sendJSONResponse(w, http.StatusOK, APIResponse{
			Status: "success",
			Data:   map[string]any{"deleted": deleted},
		})
		return
	}

	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		h.fail(w, r, http.StatusBadRequest, "InvalidRequestBody")
		return
	}

	if err := h.reminders.Delete(r.Context(), id); err != nil {
		h.failErr(w, r, err)
		return
	}
	sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success"})
}

func (h *Handlers) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.fail(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
		return
	}
	if !h.requireUser(w, r) {
		return
	}

	categories, err := h.reminders.Categories(r.Context())
	if err != nil {
		h.failErr(w, r, err)
		return
	}

	sendJSONResponse(w, http.StatusOK, APIResponse{
		Status: "success",
		Data:   map[string]any{"categories": categories},
	})
}

type preferencesPayload struct {
	SortOrder       string `json:"sort_order"`
	DefaultCategory string `json:"default_category"`
	ThemeMode       string `json:"theme_mode"`
}

var validSortOrders = map[string]bool{
	models.SortDateDesc:     true,
	models.SortDateAsc:      true,
	models.SortPriorityDesc: true,
	models.SortTitleAsc:     true,
}

// PreferencesHandler reads (GET) or updates (PUT) the display
// preferences. On PUT, empty fields are left unchanged.
func (h *Handlers) PreferencesHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requireUser(w, r) {
		return
	}

	switch r.Method {
	case http.MethodGet:
		sendJSONResponse(w, http.StatusOK, APIResponse{
			Status: "success",
			Data: preferencesPayload{
				SortOrder:       h.sessions.SortOrder(),
				DefaultCategory: h.sessions.DefaultCategory(),
				ThemeMode:       h.sessions.ThemeMode(),
			},
		})

	case http.MethodPut:
		var req preferencesPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.fail(w, r, http.StatusBadRequest, "InvalidRequestBody")
			return
		}

		if req.SortOrder != "" {
			if !validSortOrders[req.SortOrder] {
				h.fail(w, r, http.StatusBadRequest, "InvalidRequestBody")
				return
			}
			if err := h.sessions.SetSortOrder(req.SortOrder); err != nil {
				h.failErr(w, r, err)
				return
			}
		}
		if req.DefaultCategory != "" {
			if err := h.sessions.SetDefaultCategory(req.DefaultCategory); err != nil {
				h.failErr(w, r, err)
				return
			}
		}
		if req.ThemeMode != "" {
			switch req.ThemeMode {
			case "system", "light", "dark":
			default:
				h.fail(w, r, http.StatusBadRequest, "InvalidRequestBody")
				return
			}
			if err := h.sessions.SetThemeMode(req.ThemeMode); err != nil {
				h.failErr(w, r, err)
				return
			}
		}

		sendJSONResponse(w, http.StatusOK, APIResponse{
			Status: "success",
			Data: preferencesPayload{
				SortOrder:       h.sessions.SortOrder(),
				DefaultCategory: h.sessions.DefaultCategory(),
				ThemeMode:       h.sessions.ThemeMode(),
			},
		})

	default:
		h.fail(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
	}
}
