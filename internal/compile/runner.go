package compile

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/vvka-141/sprocc/internal/checksum"
	"github.com/vvka-141/sprocc/internal/db"
	"github.com/vvka-141/sprocc/internal/params"
	"github.com/vvka-141/sprocc/internal/source"
	"github.com/vvka-141/sprocc/internal/store"
	"github.com/vvka-141/sprocc/pkg/sprocc"
)

type connectorFactory func(*sprocc.ConnectionConfig) (sprocc.Connector, error)

type storeOpener func(path string) (sprocc.MetadataStore, error)

// Runner implements sprocc.Compiler: it connects, discovers routine
// sources and drives the per-routine pipeline across the batch. A single
// bad source never aborts the run; per-routine failures are logged and
// counted, and the batch result reports them collectively.
//
// Thread-Safety: NOT safe for concurrent Compile() calls on the same
// instance. Create separate instances for concurrent runs.
type Runner struct {
	logger           sprocc.Logger
	connectorFactory connectorFactory
	approver         sprocc.Approver
	pipeline         *Pipeline
	sourceLoader     *source.Loader
	openStore        storeOpener
}

// NewRunner creates a batch compile runner with all dependencies
// injected.
//
// Panics on nil dependencies: those are programmer errors that should
// fail loudly at startup. Runtime conditions (bad config, connection
// failures, parse errors) are returned as errors from Compile.
func NewRunner(
	logger sprocc.Logger,
	factory connectorFactory,
	approver sprocc.Approver,
) *Runner {
	if logger == nil {
		panic("logger cannot be nil")
	}
	if factory == nil {
		panic("factory cannot be nil")
	}
	if approver == nil {
		panic("approver cannot be nil")
	}
	return &Runner{
		logger:           logger,
		connectorFactory: factory,
		approver:         approver,
		pipeline:         NewPipeline(logger),
		sourceLoader:     source.NewLoader(checksum.New()),
		openStore: func(path string) (sprocc.MetadataStore, error) {
			return store.Open(path)
		},
	}
}

// NewDefaultRunner creates a runner wired with the standard connector
// factory. Connection retries surface on the runner's logger.
func NewDefaultRunner(logger sprocc.Logger, approver sprocc.Approver) *Runner {
	factory := func(config *sprocc.ConnectionConfig) (sprocc.Connector, error) {
		return db.NewConnector(config, logger)
	}
	return NewRunner(logger, factory, approver)
}

var _ sprocc.Compiler = (*Runner)(nil)

// Compile executes a batch run using the provided configuration.
func (r *Runner) Compile(ctx context.Context, config sprocc.CompileConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	connConfig, err := r.resolveConnConfig(config)
	if err != nil {
		return err
	}

	extension := config.Extension
	if extension == "" {
		extension = sprocc.DefaultExtension
	}

	paths, err := source.Discover(config.SourcePath, extension)
	if err != nil {
		return fmt.Errorf("%w: %w", sprocc.ErrSourceNotFound, err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w: directory %q contains no %q sources",
			sprocc.ErrSourceNotFound, config.SourcePath, extension)
	}
	r.logger.Verbose("Discovered %d routine source(s) in %s", len(paths), config.SourcePath)

	if config.Rebuild {
		approved, err := r.approver.RequestApproval(ctx, config.DatabaseName)
		if err != nil {
			return fmt.Errorf("approval request failed: %w", err)
		}
		if !approved {
			return sprocc.ErrApprovalDenied
		}
	}

	storePath := config.StorePath
	if storePath == "" {
		storePath = filepath.Join(config.SourcePath, sprocc.DefaultStoreFileName)
	}
	metaStore, err := r.openStore(storePath)
	if err != nil {
		return fmt.Errorf("%w: failed to open metadata store: %w", sprocc.ErrInvalidConfig, err)
	}

	connector, err := r.connectorFactory(connConfig)
	if err != nil {
		return fmt.Errorf("failed to create connector: %w", err)
	}
	conn, err := connector.Connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	session, err := r.pipeline.loader.ResolveSession(ctx, conn, config.Session)
	if err != nil {
		return err
	}
	r.logger.Verbose("Session: sql_mode=%q character_set=%q collation=%q",
		session.SQLMode, session.CharacterSet, session.Collation)

	table := params.NewTable(config.Placeholders)
	buildID := uuid.New()

	compiled, skipped, failed := 0, 0, 0
	for _, path := range paths {
		src, err := r.sourceLoader.Load(path, extension)
		if err != nil {
			r.logger.Error("✗ %v", err)
			failed++
			continue
		}

		previous, err := metaStore.Load(src.Routine)
		if err != nil {
			r.logger.Error("✗ %v", describeError(src, err))
			failed++
			continue
		}

		result, err := r.pipeline.CompileRoutine(ctx, conn, RoutineInput{
			BuildID:  buildID,
			Source:   src,
			Database: config.DatabaseName,
			Table:    table,
			Previous: previous,
			Session:  session,
			Rebuild:  config.Rebuild,
		})
		if err != nil {
			r.logger.Error("✗ %v", describeError(src, err))
			failed++
			continue
		}

		for _, warning := range result.Warnings {
			r.logger.Warn("⚠ %s", warning)
		}

		if result.Skipped {
			skipped++
			continue
		}

		if err := metaStore.Save(result.Metadata); err != nil {
			r.logger.Error("✗ %v", describeError(src, err))
			failed++
			continue
		}
		r.logger.Info("✓ Compiled %s", src.Routine)
		compiled++
	}

	r.logger.Info("Compiled %d, up to date %d, failed %d (of %d routines)",
		compiled, skipped, failed, len(paths))

	if failed > 0 {
		return fmt.Errorf("%d of %d routines failed: %w", failed, len(paths), sprocc.ErrCompileFailed)
	}
	return nil
}

// resolveConnConfig parses the connection string and applies the
// compile-level auth settings on top.
func (r *Runner) resolveConnConfig(config sprocc.CompileConfig) (*sprocc.ConnectionConfig, error) {
	connConfig, err := db.ParseConnectionString(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if connConfig.Database == "" {
		connConfig.Database = config.DatabaseName
	}
	if config.AuthMethod != sprocc.AuthMethodStandard {
		connConfig.AuthMethod = config.AuthMethod
	}
	connConfig.AzureTenantID = config.AzureTenantID
	connConfig.AzureClientID = config.AzureClientID
	connConfig.AzureClientSecret = config.AzureClientSecret
	connConfig.AWSRegion = config.AWSRegion
	connConfig.GoogleInstance = config.GoogleInstance

	return connConfig, nil
}
