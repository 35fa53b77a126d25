// Package policy decides whether an applied tag set is security-relevant.
// The contract is a plain key intersection: a watched key being present
// triggers, whatever its value. Values are carried through for reporting
// but never interpreted.
package policy

import (
	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/types"
)

// WatchList is the immutable set of security-sensitive tag keys.
type WatchList struct {
	keys []string
	set  map[string]struct{}
}

// NewWatchList builds a watch-list from the configured keys. Order is
// preserved for reporting; duplicates are dropped.
func NewWatchList(keys []string) WatchList {
	w := WatchList{set: make(map[string]struct{}, len(keys))}
	for _, key := range keys {
		if _, dup := w.set[key]; dup {
			continue
		}
		w.set[key] = struct{}{}
		w.keys = append(w.keys, key)
	}
	return w
}

// Keys returns the watched keys in configuration order.
func (w WatchList) Keys() []string {
	return w.keys
}

// IsEmpty reports whether nothing is being watched. An empty watch-list
// is a valid "nothing configured" state: no event ever matches.
func (w WatchList) IsEmpty() bool {
	return len(w.keys) == 0
}

// Contains reports whether key is watched.
func (w WatchList) Contains(key string) bool {
	_, ok := w.set[key]
	return ok
}

// Match intersects the applied tag set against the watch-list. Matched
// tags keep their event order and their values, including empty values.
// Tags outside the watch-list never appear in the result.
func (w WatchList) Match(applied types.TagSet) Match {
	if w.IsEmpty() || applied.IsEmpty() {
		return Match{}
	}
	var matched types.TagSet
	for _, tag := range applied {
		if w.Contains(tag.Key) {
			matched = append(matched, tag)
		}
	}
	return Match{Tags: matched}
}

// Match is the result of intersecting one tag set with the watch-list.
type Match struct {
	// Tags are the matched (key, value) pairs in event order.
	Tags types.TagSet
}

// IsEmpty reports whether no watched key was applied.
func (m Match) IsEmpty() bool {
	return len(m.Tags) == 0
}

// Keys returns the matched keys in event order.
func (m Match) Keys() []string {
	return m.Tags.Keys()
}
