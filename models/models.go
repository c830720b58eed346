package models

import "time"

// Priority levels for reminders.
const (
	PriorityNormal    = 0
	PriorityImportant = 1
	PriorityUrgent    = 2
)

// DefaultCategory is applied when a reminder is created without one.
const DefaultCategory = "Default"

// Sort-order preference values understood by the presentation layer.
const (
	SortDateDesc     = "date_desc"
	SortDateAsc      = "date_asc"
	SortPriorityDesc = "priority_desc"
	SortTitleAsc     = "title_asc"
)

type User struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Password    string    `json:"-"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Reminder struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Category  string    `json:"category"`
	Priority  int       `json:"priority"`
}

// PriorityName returns the display label for a priority value.
// Unknown values fall back to the normal label.
func PriorityName(p int) string {
	switch p {
	case PriorityImportant:
		return "Important"
	case PriorityUrgent:
		return "Urgent"
	default:
		return "Normal"
	}
}
