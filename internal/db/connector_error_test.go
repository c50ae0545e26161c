package db

import (
	"errors"
	"strings"
	"testing"

	"github.com/vvka-141/sprocc/pkg/sprocc"
)

func TestWrapConnectionError(t *testing.T) {
	tests := []struct {
		name         string
		errMsg       string
		host         string
		port         int
		database     string
		wantContains string
	}{
		{
			name:         "connection refused",
			errMsg:       "dial tcp 127.0.0.1:3306: connection refused",
			host:         "127.0.0.1",
			port:         3306,
			database:     "mydb",
			wantContains: "connection refused to 127.0.0.1:3306",
		},
		{
			name:         "actively refused (Windows)",
			errMsg:       "dial tcp 127.0.0.1:3306: connectex: No connection could be made because the target machine actively refused it",
			host:         "127.0.0.1",
			port:         3306,
			database:     "mydb",
			wantContains: "connection refused to 127.0.0.1:3306",
		},
		{
			name:         "no such host",
			errMsg:       "dial tcp: lookup badhost.example.com: no such host",
			host:         "badhost.example.com",
			port:         3306,
			database:     "mydb",
			wantContains: `cannot resolve host "badhost.example.com"`,
		},
		{
			name:         "access denied",
			errMsg:       "Error 1045 (28000): Access denied for user 'app'@'10.0.0.7' (using password: YES)",
			host:         "localhost",
			port:         3306,
			database:     "testdb",
			wantContains: `access denied for database "testdb"`,
		},
		{
			name:         "unknown database",
			errMsg:       "Error 1049 (42000): Unknown database 'nope'",
			host:         "localhost",
			port:         3306,
			database:     "nope",
			wantContains: `database "nope" does not exist`,
		},
		{
			name:         "timeout",
			errMsg:       "dial tcp 10.0.0.1:3306: i/o timeout",
			host:         "10.0.0.1",
			port:         3306,
			database:     "mydb",
			wantContains: "connection timed out to 10.0.0.1:3306",
		},
		{
			name:         "TLS error",
			errMsg:       "tls: handshake failure",
			host:         "localhost",
			port:         3306,
			database:     "mydb",
			wantContains: "SSL/TLS connection error",
		},
		{
			name:         "too many connections",
			errMsg:       "Error 1040: Too many connections",
			host:         "localhost",
			port:         3306,
			database:     "busydb",
			wantContains: `too many connections to database "busydb"`,
		},
		{
			name:         "unknown error falls through to default",
			errMsg:       "something completely unexpected happened",
			host:         "localhost",
			port:         3306,
			database:     "mydb",
			wantContains: "failed to connect to database",
		},
		{
			name:         "case insensitive matching",
			errMsg:       "CONNECTION REFUSED by firewall",
			host:         "firewall.host",
			port:         3307,
			database:     "mydb",
			wantContains: "connection refused to firewall.host:3307",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			originalErr := errors.New(tt.errMsg)
			wrapped := wrapConnectionError(originalErr, tt.host, tt.port, tt.database)

			if !strings.Contains(wrapped.Error(), tt.wantContains) {
				t.Errorf("wrapConnectionError() = %q, want it to contain %q", wrapped.Error(), tt.wantContains)
			}

			// Verify original error is wrapped (unwrappable)
			if !errors.Is(wrapped, originalErr) {
				t.Error("wrapped error does not unwrap to original error")
			}

			// Verify ErrConnectionFailed sentinel is chained
			if !errors.Is(wrapped, sprocc.ErrConnectionFailed) {
				t.Error("wrapped error does not chain sprocc.ErrConnectionFailed")
			}
		})
	}
}
