package policy

import (
	"reflect"
	"testing"

	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/types"
)

func TestNewWatchList(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want []string
	}{
		{
			name: "preserves order",
			keys: []string{"soc-public-ok", "allow-public", "audited"},
			want: []string{"soc-public-ok", "allow-public", "audited"},
		},
		{
			name: "drops duplicates",
			keys: []string{"soc-public-ok", "allow-public", "soc-public-ok"},
			want: []string{"soc-public-ok", "allow-public"},
		},
		{
			name: "empty",
			keys: nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWatchList(tt.keys)
			if got := w.Keys(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Keys() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWatchListIsEmpty(t *testing.T) {
	if !NewWatchList(nil).IsEmpty() {
		t.Error("nil watch-list should be empty")
	}
	if NewWatchList([]string{"soc-public-ok"}).IsEmpty() {
		t.Error("populated watch-list should not be empty")
	}
}

func TestWatchListContains(t *testing.T) {
	w := NewWatchList([]string{"soc-public-ok", "allow-public"})

	if !w.Contains("soc-public-ok") {
		t.Error("expected soc-public-ok to be watched")
	}
	if w.Contains("Environment") {
		t.Error("Environment should not be watched")
	}
	if w.Contains("SOC-PUBLIC-OK") {
		t.Error("matching is case-sensitive")
	}
}

func TestWatchListMatch(t *testing.T) {
	watched := NewWatchList([]string{"soc-public-ok", "allow-public"})

	tests := []struct {
		name    string
		watch   WatchList
		applied types.TagSet
		want    []string
	}{
		{
			name:    "single watched key",
			watch:   watched,
			applied: types.TagSet{{Key: "soc-public-ok", Value: "true"}},
			want:    []string{"soc-public-ok"},
		},
		{
			name:  "multiple watched keys in event order",
			watch: watched,
			applied: types.TagSet{
				{Key: "allow-public", Value: "yes"},
				{Key: "Environment", Value: "prod"},
				{Key: "soc-public-ok", Value: "true"},
			},
			want: []string{"allow-public", "soc-public-ok"},
		},
		{
			name:    "empty value still matches",
			watch:   watched,
			applied: types.TagSet{{Key: "soc-public-ok", Value: ""}},
			want:    []string{"soc-public-ok"},
		},
		{
			name:  "unwatched keys ignored",
			watch: watched,
			applied: types.TagSet{
				{Key: "Environment", Value: "prod"},
				{Key: "Team", Value: "payments"},
			},
			want: nil,
		},
		{
			name:    "empty tag set",
			watch:   watched,
			applied: types.TagSet{},
			want:    nil,
		},
		{
			name:    "empty watch-list never matches",
			watch:   NewWatchList(nil),
			applied: types.TagSet{{Key: "soc-public-ok", Value: "true"}},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.watch.Match(tt.applied)
			if got := m.Keys(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Match().Keys() = %v, want %v", got, tt.want)
			}
			if m.IsEmpty() != (len(tt.want) == 0) {
				t.Errorf("IsEmpty() = %v with %d matches", m.IsEmpty(), len(tt.want))
			}
		})
	}
}

func TestMatchKeepsValues(t *testing.T) {
	w := NewWatchList([]string{"soc-public-ok", "allow-public"})
	m := w.Match(types.TagSet{
		{Key: "soc-public-ok", Value: "true"},
		{Key: "allow-public", Value: ""},
	})

	if len(m.Tags) != 2 {
		t.Fatalf("expected 2 matched tags, got %d", len(m.Tags))
	}
	if m.Tags[0].Value != "true" {
		t.Errorf("expected value true, got %q", m.Tags[0].Value)
	}
	if m.Tags[1].Value != "" {
		t.Errorf("expected empty value preserved, got %q", m.Tags[1].Value)
	}
}
