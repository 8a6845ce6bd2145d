// Package userdata owns the locally persisted user data: bounded search
// history and bookmark collections with a single-key JSON snapshot behind
// a pluggable blob store.
package userdata

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SchemaVersion tags the persisted snapshot. On mismatch the store accepts
// whatever shape is present; explicit migration steps are a future
// extension point.
const SchemaVersion = 1

// DefaultKey is the namespaced blob key holding the serialized snapshot.
const DefaultKey = "pmwiki:user-data"

// BlobStore is the persistence surface the store requires: a single JSON
// blob per key. A nil blob with a nil error means no prior data. Write and
// Remove failures are treated as best effort by the store; in-memory state
// stays authoritative for the session.
type BlobStore interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, blob []byte) error
	Remove(ctx context.Context, key string) error
}

// snapshot is the persisted document layout.
type snapshot struct {
	Version int           `json:"version"`
	State   snapshotState `json:"state"`
}

type snapshotState struct {
	SearchHistory []SearchEntry       `json:"searchHistory"`
	Bookmarks     map[string]Bookmark `json:"bookmarks"`
	BookmarkOrder []string            `json:"bookmarkOrder"`
}

// Store is the single source of truth for search history and bookmarks.
// All mutations go through its methods; each mutation serializes the full
// state to the blob store. Construct with New and restore persisted state
// with Load — there is no package-level instance.
type Store struct {
	mu        sync.RWMutex
	history   []SearchEntry // most-recent-first, len <= MaxSearchHistory
	bookmarks map[string]Bookmark
	order     []string // bookmark ids, most-recent-first, len <= MaxBookmarks

	blobs  BlobStore
	key    string
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// Option customizes a Store. Used by tests to control time and id
// generation.
type Option func(*Store)

// WithClock overrides the store's clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the search-entry id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithKey overrides the blob key the snapshot is stored under.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// New creates an empty store bound to the given blob store. Call Load to
// restore any persisted snapshot.
func New(blobs BlobStore, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		history:   []SearchEntry{},
		bookmarks: make(map[string]Bookmark),
		order:     []string{},
		blobs:     blobs,
		key:       DefaultKey,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load restores state from the blob store. Absent or corrupt data yields
// an empty store; a version mismatch is accepted as-is. Load never fails.
func (s *Store) Load(ctx context.Context) {
	blob, err := s.blobs.Read(ctx, s.key)
	if err != nil {
		s.logger.Warn("Failed to read persisted user data, starting empty",
			zap.String("key", s.key),
			zap.Error(err),
		)
		return
	}
	if blob == nil {
		return
	}

	var snap snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		s.logger.Warn("Persisted user data is corrupt, starting empty",
			zap.String("key", s.key),
			zap.Error(err),
		)
		return
	}

	if snap.Version != SchemaVersion {
		s.logger.Info("User data snapshot has a different schema version, accepting as-is",
			zap.Int("found", snap.Version),
			zap.Int("current", SchemaVersion),
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.State.SearchHistory != nil {
		s.history = snap.State.SearchHistory
	}
	if snap.State.Bookmarks != nil {
		s.bookmarks = snap.State.Bookmarks
	}
	if snap.State.BookmarkOrder != nil {
		s.order = snap.State.BookmarkOrder
	}

	// Re-apply the caps in case an older or foreign snapshot exceeds them.
	if len(s.history) > MaxSearchHistory {
		s.history = s.history[:MaxSearchHistory]
	}
	if len(s.order) > MaxBookmarks {
		for _, id := range s.order[MaxBookmarks:] {
			delete(s.bookmarks, id)
		}
		s.order = s.order[:MaxBookmarks]
	}
}

// persist serializes the full state and writes it to the blob store.
// Failures are logged and swallowed: the in-memory state remains
// authoritative for the rest of the session. Callers must hold s.mu.
func (s *Store) persist(ctx context.Context) {
	snap := snapshot{
		Version: SchemaVersion,
		State: snapshotState{
			SearchHistory: s.history,
			Bookmarks:     s.bookmarks,
			BookmarkOrder: s.order,
		},
	}

	blob, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("Failed to serialize user data snapshot", zap.Error(err))
		return
	}

	if err := s.blobs.Write(ctx, s.key, blob); err != nil {
		s.logger.Warn("Failed to persist user data, in-memory state retained",
			zap.String("key", s.key),
			zap.Error(err),
		)
	}
}

// AddSearch records a completed search at the front of the history. If an
// entry with the same query already exists (case-insensitive), it is
// replaced by the new entry with a fresh id and timestamp. The collection
// is then truncated to MaxSearchHistory entries; anything older is
// permanently dropped. Returns the stored entry.
func (s *Store) AddSearch(ctx context.Context, entry SearchEntry) SearchEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Drop any existing entry for the same query before reinserting.
	kept := s.history[:0:len(s.history)]
	for _, e := range s.history {
		if !strings.EqualFold(e.Query, entry.Query) {
			kept = append(kept, e)
		}
	}

	entry.ID = s.newID()
	entry.Timestamp = s.now().UnixMilli()

	s.history = append([]SearchEntry{entry}, kept...)
	if len(s.history) > MaxSearchHistory {
		s.history = s.history[:MaxSearchHistory]
	}

	s.persist(ctx)
	return entry
}

// RemoveSearch deletes the entry with the given id. Removing an unknown id
// is a no-op, not an error.
func (s *Store) RemoveSearch(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.history[:0:len(s.history)]
	removed := false
	for _, e := range s.history {
		if e.ID == id {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	if !removed {
		return
	}

	s.history = kept
	s.persist(ctx)
}

// ClearSearchHistory empties the history collection.
func (s *Store) ClearSearchHistory(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = []SearchEntry{}
	s.persist(ctx)
}

// SearchByQuery looks up an entry by query, case-insensitively.
func (s *Store) SearchByQuery(query string) (SearchEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.history {
		if strings.EqualFold(e.Query, query) {
			return e, true
		}
	}
	return SearchEntry{}, false
}

// AddBookmark inserts a bookmark at the front of the order list and
// reports whether it was stored. An already bookmarked id is left
// untouched (the existing entry keeps its position and timestamp), and a
// full collection rejects the insert; both cases return false. Callers
// that need to distinguish the two should check IsBookmarked or
// BookmarkCount first.
func (s *Store) AddBookmark(ctx context.Context, b Bookmark) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.addBookmarkLocked(ctx, b) {
		return false
	}
	s.persist(ctx)
	return true
}

func (s *Store) addBookmarkLocked(ctx context.Context, b Bookmark) bool {
	if _, exists := s.bookmarks[b.ID]; exists {
		return false
	}
	if len(s.order) >= MaxBookmarks {
		s.logger.Debug("Bookmark rejected, collection at capacity",
			zap.String("id", b.ID),
			zap.Int("limit", MaxBookmarks),
		)
		return false
	}

	b.BookmarkedAt = s.now().UnixMilli()
	s.bookmarks[b.ID] = b
	s.order = append([]string{b.ID}, s.order...)
	return true
}

// RemoveBookmark deletes a bookmark from the mapping and the order list.
// Unknown ids are a no-op.
func (s *Store) RemoveBookmark(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.removeBookmarkLocked(id) {
		return
	}
	s.persist(ctx)
}

func (s *Store) removeBookmarkLocked(id string) bool {
	if _, exists := s.bookmarks[id]; !exists {
		return false
	}
	delete(s.bookmarks, id)

	kept := s.order[:0:len(s.order)]
	for _, oid := range s.order {
		if oid != id {
			kept = append(kept, oid)
		}
	}
	s.order = kept
	return true
}

// ToggleBookmark removes the bookmark if present, adds it otherwise. The
// outcome distinguishes a capacity rejection from a successful add, so the
// reported state never diverges from the stored state.
func (s *Store) ToggleBookmark(ctx context.Context, b Bookmark) ToggleOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bookmarks[b.ID]; exists {
		s.removeBookmarkLocked(b.ID)
		s.persist(ctx)
		return ToggleRemoved
	}

	if !s.addBookmarkLocked(ctx, b) {
		return ToggleRejected
	}
	s.persist(ctx)
	return ToggleAdded
}

// ClearBookmarks empties the bookmark mapping and order list.
func (s *Store) ClearBookmarks(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookmarks = make(map[string]Bookmark)
	s.order = []string{}
	s.persist(ctx)
}

// IsBookmarked reports membership for a section id.
func (s *Store) IsBookmarked(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.bookmarks[id]
	return exists
}

// AllBookmarks returns every bookmark, most-recent-first.
func (s *Store) AllBookmarks() []Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.projectOrderLocked("")
}

// BookmarksByStandard returns the bookmarks for one standard,
// most-recent-first.
func (s *Store) BookmarksByStandard(standard string) []Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.projectOrderLocked(standard)
}

// projectOrderLocked projects the order list through the mapping,
// optionally filtered by exact standard match. Callers must hold s.mu.
func (s *Store) projectOrderLocked(standard string) []Bookmark {
	out := make([]Bookmark, 0, len(s.order))
	for _, id := range s.order {
		b, ok := s.bookmarks[id]
		if !ok {
			continue
		}
		if standard != "" && b.Standard != standard {
			continue
		}
		out = append(out, b)
	}
	return out
}

// BookmarkCount returns the size of the order list. UIs should check this
// against MaxBookmarks before adding, to pre-empt the silent rejection.
func (s *Store) BookmarkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.order)
}
