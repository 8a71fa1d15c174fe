package executor

import (
	"context"
	"strings"
	"testing"
)

func TestExecute(t *testing.T) {
	e := New()
	if !e.Available("sh") {
		t.Skip("sh not available")
	}

	tests := []struct {
		name       string
		script     string
		wantOut    string
		wantErr    bool
		errContain string
	}{
		{"stdout captured", "echo hello", "hello\n", false, ""},
		{"stderr in error", "echo broken >&2; exit 3", "", true, "broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.Execute(context.Background(), "sh", "-c", tt.script)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if out != tt.wantOut {
				t.Errorf("Execute() = %q, want %q", out, tt.wantOut)
			}
			if tt.errContain != "" && !strings.Contains(err.Error(), tt.errContain) {
				t.Errorf("error %q does not contain %q", err, tt.errContain)
			}
		})
	}
}

func TestAvailable(t *testing.T) {
	if New().Available("definitely-not-a-real-binary-xyz") {
		t.Error("Available() = true for a missing binary")
	}
}
