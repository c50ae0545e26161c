package sprocc

import "context"

// Compiler is the main interface for executing batch compile runs.
// Implementations handle the full workflow: connection, source discovery,
// per-routine compilation and metadata persistence. A single bad source
// file must not abort the batch; per-routine failures are reported and
// the run continues.
type Compiler interface {
	// Compile executes a batch run using the provided configuration.
	// It returns ErrCompileFailed (wrapped) if any routine failed.
	Compile(ctx context.Context, config CompileConfig) error
}
