package cuid2

import (
	"strings"
	"testing"
	"time"
)

func TestEncodeTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int64
		expected string
	}{
		{"Zero timestamp", 0, "000000"},
		{"One second", 1, "000001"},
		{"62 seconds", 62, "000010"},
		{"One minute", 60, "00000y"},
		{"One hour", 3600, "0000w4"},
		{"One day", 86400, "000MTY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := encodeTimestamp(tt.seconds)
			if result != tt.expected {
				t.Errorf("encodeTimestamp(%d) = %s, want %s", tt.seconds, result, tt.expected)
			}
		})
	}
}

func TestEncodeTimestampSortable(t *testing.T) {
	now := time.Now().Unix()
	a := encodeTimestamp(now)
	b := encodeTimestamp(now + 1)
	if !(a < b) {
		t.Errorf("timestamps not lexicographically sortable: %s >= %s", a, b)
	}
}

func TestGenerateLengthAndAlphabet(t *testing.T) {
	id := Generate()

	if len(id) != 6+randomLength {
		t.Errorf("Generated ID length = %d, want %d", len(id), 6+randomLength)
	}

	for _, c := range id {
		if !strings.ContainsRune(base62Alphabet, c) {
			t.Errorf("ID contains non-base62 character: %c in %s", c, id)
		}
	}
}

func TestGenerateUniqueness(t *testing.T) {
	ids := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := Generate()
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

func TestRandomBase62Length(t *testing.T) {
	for _, length := range []int{1, 8, 18, 32} {
		s := randomBase62(length)
		if len(s) != length {
			t.Errorf("randomBase62(%d) returned %d characters", length, len(s))
		}
	}
}
