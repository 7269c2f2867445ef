package perf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"instant", 0, StatusFast},
		{"under fast threshold", 2900 * time.Millisecond, StatusFast},
		{"exactly three seconds is still fast", 3 * time.Second, StatusFast},
		{"just over three seconds", 3*time.Second + time.Millisecond, StatusSlow},
		{"exactly ten seconds is still slow", 10 * time.Second, StatusSlow},
		{"just over ten seconds", 10*time.Second + time.Millisecond, StatusTimeout},
		{"way over", time.Minute, StatusTimeout},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.d))
		})
	}
}
