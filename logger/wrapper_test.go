package logger

import (
	"strings"
	"testing"
)

func TestHandleLogLine(t *testing.T) {
	xrsLogger := NewLogger("Test wrapper")

	t.Run("json line passes through without panic state", func(t *testing.T) {
		var builder strings.Builder
		foundPanic := handleLogLine([]byte(`{"level_name":"info"}`), false, &builder, xrsLogger)
		if foundPanic {
			t.Error("JSON log line must not switch the wrapper into panic mode")
		}
		if builder.Len() != 0 {
			t.Errorf("JSON log line must not be collected as panic output, got %q", builder.String())
		}
	})

	t.Run("panic prefix starts collecting", func(t *testing.T) {
		var builder strings.Builder
		foundPanic := handleLogLine([]byte("panic: runtime error"), false, &builder, xrsLogger)
		if !foundPanic {
			t.Error("Line starting with 'panic' must switch the wrapper into panic mode")
		}
		if got := builder.String(); got != "panic: runtime error\n" {
			t.Errorf("Panic line was not collected, got %q", got)
		}
	})

	t.Run("lines after panic keep collecting", func(t *testing.T) {
		var builder strings.Builder
		foundPanic := handleLogLine([]byte("panic: boom"), false, &builder, xrsLogger)
		foundPanic = handleLogLine([]byte("goroutine 1 [running]:"), foundPanic, &builder, xrsLogger)
		if !foundPanic {
			t.Error("Panic mode must be sticky")
		}
		if got := builder.String(); got != "panic: boom\ngoroutine 1 [running]:\n" {
			t.Errorf("Stack lines were not collected, got %q", got)
		}
	})

	t.Run("empty line is skipped", func(t *testing.T) {
		var builder strings.Builder
		foundPanic := handleLogLine(nil, false, &builder, xrsLogger)
		if foundPanic || builder.Len() != 0 {
			t.Error("Empty line must be ignored")
		}
	})
}

func TestIsJSON(t *testing.T) {
	valid := []string{`{"a":1}`, `[1,2]`, `"line"`, `42`}
	for _, line := range valid {
		if !isJSON([]byte(line)) {
			t.Errorf("Expected %q to be treated as JSON", line)
		}
	}
	invalid := []string{"panic: boom", "", "{broken", "plain text"}
	for _, line := range invalid {
		if isJSON([]byte(line)) {
			t.Errorf("Expected %q to not be treated as JSON", line)
		}
	}
}
