package sprocc_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vvka-141/sprocc/pkg/sprocc"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, sprocc.ExitSuccess},
		{"invalid config", sprocc.ErrInvalidConfig, sprocc.ExitConfigError},
		{"wrapped invalid config", fmt.Errorf("bad: %w", sprocc.ErrInvalidConfig), sprocc.ExitConfigError},
		{"source missing", sprocc.ErrSourceNotFound, sprocc.ExitSourceMissing},
		{"approval denied", sprocc.ErrApprovalDenied, sprocc.ExitApprovalDenied},
		{"compile failed", sprocc.ErrCompileFailed, sprocc.ExitCompileFailed},
		{"connection failed", sprocc.ErrConnectionFailed, sprocc.ExitConnectionError},
		{"unsupported auth", sprocc.ErrUnsupportedAuthMethod, sprocc.ExitConfigError},
		{"unknown flag", errors.New("unknown flag --foo"), sprocc.ExitUsageError},
		{"unknown shorthand flag", errors.New("unknown shorthand flag: 'x'"), sprocc.ExitUsageError},
		{"accepts args", errors.New("accepts 1 arg(s), received 0"), sprocc.ExitUsageError},
		{"required flag", errors.New("required flag \"database\" not set"), sprocc.ExitUsageError},
		{"connection refused", errors.New("dial tcp: connection refused"), sprocc.ExitConnectionError},
		{"general error", errors.New("something went wrong"), sprocc.ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sprocc.ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
