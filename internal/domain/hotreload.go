package domain

import (
	"sync"

	m "storylist.dev/pkg/storylist/internal/model"
)

// hotReloadBlock accepts updates of the generated module in a live session.
// Updates that only remove or change stories swap `stories` in place; any new
// story ID forces a full reload.
const hotReloadBlock = `if (import.meta.hot) {
  import.meta.hot.accept(({ module }) => {
    if (Object.keys(module.stories).every((item) => Object.keys(stories).includes(item))) {
      stories = module.stories;
    } else {
      // full refresh when new stories are added
      import.meta.hot.invalidate();
    }
  });
}`

// DecideReload applies the hot-reload policy: swap when every updated key is
// already live, invalidate as soon as one key is new.
func DecideReload(current, updated []string) m.ReloadDecision {
	live := make(map[string]struct{}, len(current))
	for _, key := range current {
		live[key] = struct{}{}
	}

	for _, key := range updated {
		if _, ok := live[key]; !ok {
			return m.ReloadInvalidate
		}
	}

	return m.ReloadSwap
}

// StoryRegistry holds the live story registry of a development session.
// Accept is the only way to replace its content; readers may run
// concurrently with it.
type StoryRegistry struct {
	mu      sync.RWMutex
	keys    []string
	stories map[string]m.StoryRecord
}

// NewStoryRegistry creates a registry holding records.
func NewStoryRegistry(records []m.StoryRecord) *StoryRegistry {
	r := &StoryRegistry{}
	r.replace(records)

	return r
}

// Accept offers an updated record set. It is swapped in when DecideReload
// allows it; otherwise the registry is left untouched and the caller must
// perform a full reload (see Reload).
func (r *StoryRegistry) Accept(updated []m.StoryRecord) m.ReloadDecision {
	r.mu.Lock()
	defer r.mu.Unlock()

	decision := DecideReload(r.keys, storyIDs(updated))
	if decision == m.ReloadSwap {
		r.replaceLocked(updated)
	}

	return decision
}

// Reload replaces the registry unconditionally, as a full reload does.
func (r *StoryRegistry) Reload(records []m.StoryRecord) {
	r.replace(records)
}

// Keys returns the live story IDs in registry order.
func (r *StoryRegistry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, len(r.keys))
	copy(keys, r.keys)

	return keys
}

// Lookup returns the live record for a story ID.
func (r *StoryRegistry) Lookup(storyID string) (m.StoryRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.stories[storyID]

	return record, ok
}

// Len returns the number of distinct live story IDs.
func (r *StoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.keys)
}

func (r *StoryRegistry) replace(records []m.StoryRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.replaceLocked(records)
}

// replaceLocked mirrors object literal semantics: a repeated key keeps its
// first position and takes the last value.
func (r *StoryRegistry) replaceLocked(records []m.StoryRecord) {
	stories := make(map[string]m.StoryRecord, len(records))
	keys := make([]string, 0, len(records))

	for _, record := range records {
		if _, ok := stories[record.StoryID]; !ok {
			keys = append(keys, record.StoryID)
		}

		stories[record.StoryID] = record
	}

	r.keys = keys
	r.stories = stories
}

func storyIDs(records []m.StoryRecord) []string {
	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.StoryID)
	}

	return ids
}
