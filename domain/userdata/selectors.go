package userdata

import (
	"context"

	"go.uber.org/zap"
)

// Counts summarizes collection sizes for UI cap checks.
type Counts struct {
	SearchHistory int `json:"search_history"`
	Bookmarks     int `json:"bookmarks"`
	BookmarkLimit int `json:"bookmark_limit"`
}

// Counts returns the current collection sizes.
func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Counts{
		SearchHistory: len(s.history),
		Bookmarks:     len(s.order),
		BookmarkLimit: MaxBookmarks,
	}
}

// SearchHistory returns the raw history, most-recent-first, including
// entries without a cached result payload.
func (s *Store) SearchHistory() []SearchEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SearchEntry, len(s.history))
	copy(out, s.history)
	return out
}

// ValidSearchHistory returns the entries that carry a complete cached
// result. Entries without one are pruned from the collection and the
// snapshot is re-persisted, so stale entries do not survive across
// sessions.
func (s *Store) ValidSearchHistory(ctx context.Context) []SearchEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	valid := make([]SearchEntry, 0, len(s.history))
	for _, e := range s.history {
		if e.HasCachedResult() {
			valid = append(valid, e)
		}
	}

	if len(valid) != len(s.history) {
		dropped := len(s.history) - len(valid)
		s.history = append([]SearchEntry{}, valid...)
		s.persist(ctx)
		s.logger.Debug("Pruned search history entries without cached results",
			zap.Int("dropped", dropped),
		)
	}

	out := make([]SearchEntry, len(valid))
	copy(out, valid)
	return out
}

// GroupedBookmarks returns the bookmarks grouped by standard, each group
// most-recent-first. Groups appear for every standard that has at least
// one bookmark.
func (s *Store) GroupedBookmarks() map[string][]Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make(map[string][]Bookmark)
	for _, id := range s.order {
		b, ok := s.bookmarks[id]
		if !ok {
			continue
		}
		groups[b.Standard] = append(groups[b.Standard], b)
	}
	return groups
}
