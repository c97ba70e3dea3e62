package logging

import (
	"bytes"
	"os"
	"testing"
)

// unsetenv removes key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestColorDisabled(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want bool
	}{
		{"nothing set", nil, false},
		{"NO_COLOR", map[string]string{"NO_COLOR": ""}, true},
		{"dumb terminal", map[string]string{"TERM": "dumb"}, true},
		{"MCPKIT_COLOR=none", map[string]string{"MCPKIT_COLOR": "none"}, true},
		{"MCPKIT_COLOR=truecolor", map[string]string{"MCPKIT_COLOR": "truecolor"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TERM", "xterm-256color")
			t.Setenv("MCPKIT_COLOR", "")
			unsetenv(t, "NO_COLOR")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if got := colorDisabled(); got != tt.want {
				t.Errorf("colorDisabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSupportsColor_Buffer(t *testing.T) {
	var buf bytes.Buffer
	if IsTTY(&buf) {
		t.Error("a buffer is not a terminal")
	}
	if SupportsColor(&buf) {
		t.Error("a buffer should not get colors")
	}
}
