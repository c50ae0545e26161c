package cli

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// promptPassword interactively reads a password without echoing it.
// Returns an empty password without error when stdin is not a terminal
// (CI pipelines with passwordless accounts or socket auth).
func promptPassword(username string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}

	fmt.Fprintf(os.Stderr, "Password for user %s: ", username)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}
