package reminder

import (
	"context"

	"remindex/db"
	"remindex/models"
)

// Watch delivers the current user's reminder list and re-delivers it
// after every write to the reminders table, until ctx is done. The
// first result set is sent immediately; no polling is involved.
func (s *Service) Watch(ctx context.Context) (<-chan []models.Reminder, error) {
	return s.watch(ctx, s.reminders.AllForUser)
}

// WatchSearch is Watch over a substring search result set.
func (s *Service) WatchSearch(ctx context.Context, query string) (<-chan []models.Reminder, error) {
	return s.watch(ctx, func(ctx context.Context, userID int64) ([]models.Reminder, error) {
		return s.reminders.Search(ctx, userID, query)
	})
}

// WatchCategory is Watch over a category-filtered result set.
func (s *Service) WatchCategory(ctx context.Context, category string) (<-chan []models.Reminder, error) {
	return s.watch(ctx, func(ctx context.Context, userID int64) ([]models.Reminder, error) {
		return s.reminders.ByCategory(ctx, userID, category)
	})
}

func (s *Service) watch(ctx context.Context, fetch func(context.Context, int64) ([]models.Reminder, error)) (<-chan []models.Reminder, error) {
	userID, err := s.currentUser()
	if err != nil {
		return nil, err
	}

	initial, err := fetch(ctx, userID)
	if err != nil {
		return nil, err
	}

	sub := s.notifier.Subscribe(db.TableReminders)
	out := make(chan []models.Reminder, 1)
	out <- initial

	go func() {
		defer close(out)
		defer sub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-sub.C():
				if !ok {
					return
				}
				result, err := fetch(ctx, userID)
				if err != nil {
					// The stream ends when the query can no longer run
					// (store closed, context cancelled mid-query).
					return
				}
				select {
				case out <- result:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
