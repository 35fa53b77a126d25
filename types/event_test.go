package types

import (
	"testing"
)

func TestTagSetKeys(t *testing.T) {
	tests := []struct {
		name string
		set  TagSet
		want []string
	}{
		{
			name: "preserves event order",
			set: TagSet{
				{Key: "soar:s3:request-publicly-readable", Value: "true"},
				{Key: "env", Value: "prod"},
			},
			want: []string{"soar:s3:request-publicly-readable", "env"},
		},
		{
			name: "empty set",
			set:  TagSet{},
			want: nil,
		},
		{
			name: "nil set",
			set:  nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.set.Keys()
			if len(got) != len(tt.want) {
				t.Fatalf("Keys() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Keys()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTagSetGet(t *testing.T) {
	set := TagSet{
		{Key: "env", Value: "prod"},
		{Key: "empty-value", Value: ""},
	}

	if v, ok := set.Get("env"); !ok || v != "prod" {
		t.Errorf("Get(env) = %q, %v; want prod, true", v, ok)
	}

	// A present key with an empty value is still present.
	if v, ok := set.Get("empty-value"); !ok || v != "" {
		t.Errorf("Get(empty-value) = %q, %v; want \"\", true", v, ok)
	}

	if _, ok := set.Get("missing"); ok {
		t.Error("Get(missing) reported present")
	}
}

func TestTagSetIsEmpty(t *testing.T) {
	if !(TagSet{}).IsEmpty() {
		t.Error("empty TagSet not reported empty")
	}
	if (TagSet{{Key: "a"}}).IsEmpty() {
		t.Error("non-empty TagSet reported empty")
	}
}

func TestBucketARN(t *testing.T) {
	e := TaggingEvent{BucketName: "my-data-bucket"}
	want := "arn:aws:s3:::my-data-bucket"
	if got := e.BucketARN(); got != want {
		t.Errorf("BucketARN() = %q, want %q", got, want)
	}
}
