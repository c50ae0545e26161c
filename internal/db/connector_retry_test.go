package db

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vvka-141/sprocc/internal/retry"
	"github.com/vvka-141/sprocc/pkg/sprocc"
)

// recordingLogger captures warnings for assertions; other levels are
// discarded. Shared across the package's connector tests.
type recordingLogger struct {
	mu       sync.Mutex
	warnings []string
}

func (l *recordingLogger) Verbose(format string, args ...interface{}) {}

func (l *recordingLogger) Info(format string, args ...interface{}) {}

func (l *recordingLogger) Warn(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Error(format string, args ...interface{}) {}

func (l *recordingLogger) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warnings...)
}

func TestStandardConnector_RetryConfiguration(t *testing.T) {
	config := &sprocc.ConnectionConfig{
		Host:     "localhost",
		Port:     3306,
		Database: "testdb",
		Username: "testuser",
		Password: "testpass",
	}

	connector := NewStandardConnector(config, &recordingLogger{})

	if connector.retryExecutor == nil {
		t.Fatal("Expected retryExecutor to be initialized")
	}

	if connector.config != config {
		t.Error("Expected config to be set")
	}
}

// TestStandardConnector_LogsRetryAttempts verifies that transient
// connection failures surface as warnings on the connector's logger, one
// per retry wait.
func TestStandardConnector_LogsRetryAttempts(t *testing.T) {
	// Grab a port that refuses connections by closing its listener.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	config := &sprocc.ConnectionConfig{
		Host:     "127.0.0.1",
		Port:     port,
		Database: "testdb",
		Username: "testuser",
		Password: "testpass",
	}

	logger := &recordingLogger{}
	connector := NewStandardConnector(config, logger)

	if _, err := connector.Connect(context.Background()); err == nil {
		t.Fatal("Connect() error = nil, want connection failure")
	}

	warnings := logger.Warnings()
	if len(warnings) != sprocc.DefaultRetryMaxAttempts {
		t.Fatalf("got %d retry warnings, want %d: %v",
			len(warnings), sprocc.DefaultRetryMaxAttempts, warnings)
	}
	for i, warning := range warnings {
		if !strings.Contains(warning, "retrying in") {
			t.Errorf("warning %d = %q, want retry wait message", i, warning)
		}
		if !strings.Contains(warning, fmt.Sprintf("attempt %d", i+1)) {
			t.Errorf("warning %d = %q, want attempt number %d", i, warning, i+1)
		}
	}
}

// Test error classification integration
func TestErrorClassification_Integration(t *testing.T) {
	classifier := retry.NewMySQLErrorClassifier()

	tests := []struct {
		name        string
		err         error
		expectRetry bool
	}{
		{
			name:        "connection refused is retryable",
			err:         errors.New("connection refused"),
			expectRetry: true,
		},
		{
			name:        "network unreachable is retryable",
			err:         errors.New("network is unreachable"),
			expectRetry: true,
		},
		{
			name:        "generic error is not retryable",
			err:         errors.New("some unrelated error"),
			expectRetry: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isTransient := classifier.IsTransient(tt.err)
			if isTransient != tt.expectRetry {
				t.Errorf("Expected IsTransient=%v for error %q, got %v",
					tt.expectRetry, tt.err.Error(), isTransient)
			}
		})
	}
}

// Test backoff strategy integration
func TestBackoffStrategy_Integration(t *testing.T) {
	strategy := retry.NewExponentialBackoff(3,
		retry.WithInitialDelay(100*time.Millisecond),
		retry.WithMaxDelay(1*time.Minute),
		retry.WithJitter(0), // Disable jitter for deterministic testing
	)

	// Verify backoff progression
	expectedDelays := []time.Duration{
		100 * time.Millisecond, // Attempt 0
		200 * time.Millisecond, // Attempt 1
		400 * time.Millisecond, // Attempt 2
	}

	for i, expected := range expectedDelays {
		actual := strategy.NextDelay(i)
		if actual != expected {
			t.Errorf("Attempt %d: expected delay %v, got %v", i, expected, actual)
		}
	}

	if strategy.MaxAttempts() != 3 {
		t.Errorf("Expected MaxAttempts=3, got %d", strategy.MaxAttempts())
	}

	// Verify max delay constraint: even for very large attempt numbers,
	// delay should never exceed 1 minute
	for attempt := 10; attempt <= 20; attempt++ {
		delay := strategy.NextDelay(attempt)
		if delay > 1*time.Minute {
			t.Errorf("Attempt %d: delay %v exceeds max delay of 1 minute", attempt, delay)
		}
	}
}
