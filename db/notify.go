package db

import "sync"

// Notifier is the in-process publish/subscribe channel behind live
// queries. The store publishes a signal per affected table after each
// write; subscribers re-run their query when signalled. Signals are
// coalesced: a subscriber that has not drained its channel receives a
// single pending signal, which is enough because it re-reads the
// current state anyway.
type Notifier struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// Subscription delivers change signals for a set of tables. Close must
// be called when the subscriber is done.
type Subscription struct {
	notifier *Notifier
	tables   map[string]struct{}
	ch       chan struct{}

	once sync.Once
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers interest in writes to the given tables. With no
// tables, every write signals the subscription.
func (n *Notifier) Subscribe(tables ...string) *Subscription {
	sub := &Subscription{
		notifier: n,
		ch:       make(chan struct{}, 1),
	}
	if len(tables) > 0 {
		sub.tables = make(map[string]struct{}, len(tables))
		for _, t := range tables {
			sub.tables[t] = struct{}{}
		}
	}

	n.mu.Lock()
	n.subs[sub] = struct{}{}
	n.mu.Unlock()
	return sub
}

// Publish signals every subscription watching the table. It never
// blocks: a full channel already carries a pending signal.
func (n *Notifier) Publish(table string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for sub := range n.subs {
		if sub.tables != nil {
			if _, ok := sub.tables[table]; !ok {
				continue
			}
		}
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
}

// C returns the signal channel. It is closed when the subscription is.
func (s *Subscription) C() <-chan struct{} {
	return s.ch
}

// Close removes the subscription and closes its channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.notifier.mu.Lock()
		delete(s.notifier.subs, s)
		s.notifier.mu.Unlock()
		close(s.ch)
	})
}
