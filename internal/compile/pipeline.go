// Package compile orchestrates the per-routine compilation pipeline and
// the batch runner that drives it across a source directory.
package compile

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vvka-141/sprocc/internal/annotate"
	"github.com/vvka-141/sprocc/internal/catalog"
	"github.com/vvka-141/sprocc/internal/db/manager"
	"github.com/vvka-141/sprocc/internal/doccomment"
	"github.com/vvka-141/sprocc/internal/loader"
	"github.com/vvka-141/sprocc/internal/params"
	"github.com/vvka-141/sprocc/internal/source"
	"github.com/vvka-141/sprocc/internal/stale"
	"github.com/vvka-141/sprocc/internal/typemap"
	"github.com/vvka-141/sprocc/pkg/sprocc"
)

// RoutineInput carries everything the pipeline needs to compile one
// routine.
type RoutineInput struct {
	// BuildID identifies the batch pass; stamped into the synthesized
	// metadata.
	BuildID uuid.UUID

	Source   *source.RoutineSource
	Database string

	// Table is the caller-supplied placeholder replacement table.
	Table params.Table

	// Previous is the prior-generation metadata, nil on first compile.
	Previous *sprocc.BuildMetadata

	// Session is the resolved session triple for this pass.
	Session sprocc.SessionSettings

	// Rebuild bypasses the staleness gate.
	Rebuild bool
}

// RoutineResult is the outcome of one per-routine pipeline run.
type RoutineResult struct {
	Routine string

	// Skipped reports that the staleness gate found the routine fresh;
	// Metadata then carries the unchanged previous generation.
	Skipped bool

	// Reason is the staleness decision, for diagnostics.
	Reason string

	// Warnings are non-fatal documentation/catalog findings.
	Warnings []sprocc.Warning

	Metadata *sprocc.BuildMetadata
}

// Pipeline compiles a single routine: scan, staleness gate, load,
// catalog reconciliation, type mapping, documentation reconciliation and
// metadata synthesis. Failures abort the current routine only; the
// caller decides whether to continue the batch.
//
// Thread-Safety: safe for concurrent use, but the batch runner invokes
// it strictly sequentially since drop/create of the same routine name
// would race at the database.
type Pipeline struct {
	logger     sprocc.Logger
	scanner    *annotate.Scanner
	loader     *loader.Loader
	reconciler *catalog.Reconciler
	manager    *manager.Manager
}

// NewPipeline creates a per-routine compilation pipeline.
// Panics if logger is nil.
func NewPipeline(logger sprocc.Logger) *Pipeline {
	if logger == nil {
		panic("logger cannot be nil")
	}
	mgr := manager.New()
	return &Pipeline{
		logger:     logger,
		scanner:    annotate.NewScanner(),
		loader:     loader.New(logger, mgr),
		reconciler: catalog.NewReconciler(logger, mgr),
		manager:    mgr,
	}
}

// CompileRoutine runs the full pipeline for one routine source. On
// success it returns either the freshly synthesized metadata or, when the
// staleness gate short-circuits, the unchanged previous generation.
func (p *Pipeline) CompileRoutine(ctx context.Context, conn sprocc.DBConn, in RoutineInput) (*RoutineResult, error) {
	src := in.Source

	ann, err := p.scanner.Scan(src, in.Table)
	if err != nil {
		return nil, err
	}

	_, catalogExists, err := p.manager.RoutineKind(ctx, conn, in.Database, src.Routine)
	if err != nil {
		return nil, err
	}

	reason := "rebuild requested"
	if !in.Rebuild {
		decision := stale.Check(stale.Input{
			Previous:      in.Previous,
			ModTime:       src.ModTime,
			Placeholders:  ann.Placeholders,
			CatalogExists: catalogExists,
			Session:       in.Session,
		})
		if !decision.Stale {
			p.logger.Verbose("Routine %s is up to date, skipping", src.Routine)
			return &RoutineResult{
				Routine:  src.Routine,
				Skipped:  true,
				Reason:   decision.Reason,
				Metadata: in.Previous,
			}, nil
		}
		reason = decision.Reason
	}
	p.logger.Verbose("Compiling %s: %s", src.Routine, reason)

	if err := p.loader.Load(ctx, conn, in.Database, src, ann.Placeholders, in.Session); err != nil {
		return nil, err
	}

	catalogParams, err := p.reconciler.Parameters(ctx, conn, in.Database, src.Routine, ann.Extended)
	if err != nil {
		return nil, err
	}

	var fields []string
	if ann.Designation.Kind == sprocc.DesignationBulkInsert {
		columns, err := p.reconciler.BulkColumns(ctx, conn, in.Database, src.Routine, ann.Designation, catalogParams)
		if err != nil {
			return nil, err
		}
		fields = make([]string, len(columns))
		for i, column := range columns {
			fields[i] = column.Name
		}
	}

	doc := doccomment.Parse(ann.DocComment)
	warnings := doccomment.Reconcile(src.Routine, doc, catalogParams)

	parameters, err := resolveParameters(src.Routine, catalogParams, doc)
	if err != nil {
		return nil, err
	}

	meta := synthesize(in, ann, parameters, fields, doc)

	return &RoutineResult{
		Routine:  src.Routine,
		Reason:   reason,
		Warnings: warnings,
		Metadata: meta,
	}, nil
}

// resolveParameters pairs each catalog parameter with its semantic type
// and matched documentation.
func resolveParameters(routine string, catalogParams []sprocc.CatalogParameter, doc sprocc.RoutineDoc) ([]sprocc.Parameter, error) {
	parameters := make([]sprocc.Parameter, 0, len(catalogParams))
	for _, cp := range catalogParams {
		semantic, err := typemap.MapParameter(routine, cp)
		if err != nil {
			return nil, err
		}
		parameters = append(parameters, sprocc.Parameter{
			Name:           cp.Name,
			Mode:           cp.Mode,
			Ordinal:        cp.Ordinal,
			DataType:       cp.DataType,
			TypeDescriptor: cp.TypeDescriptor,
			SemanticType:   semantic,
			List:           cp.List,
			Description:    doccomment.Describe(doc, cp.Name),
		})
	}
	return parameters, nil
}

// synthesize assembles the final metadata record. Only reached after
// every prior stage succeeded; no partial record is ever produced.
func synthesize(in RoutineInput, ann *annotate.Annotations, parameters []sprocc.Parameter, fields []string, doc sprocc.RoutineDoc) *sprocc.BuildMetadata {
	src := in.Source
	meta := &sprocc.BuildMetadata{
		BuildID:        in.BuildID,
		Routine:        src.Routine,
		Kind:           ann.Kind,
		Designation:    ann.Designation,
		Parameters:     parameters,
		Placeholders:   ann.Placeholders,
		ExtendedParams: ann.Extended,
		Doc:            doc,
		Session:        in.Session,
		ModTime:        src.ModTime,
		Checksum:       src.Checksum,
		ChecksumRaw:    src.ChecksumRaw,
	}
	if ann.Designation.Kind == sprocc.DesignationBulkInsert {
		meta.TableName = ann.Designation.Table
		meta.Columns = ann.Designation.Columns
		meta.Fields = fields
	}
	return meta
}

// describeError prefixes a pipeline failure with the routine identity so
// batch logs always name the failing source.
func describeError(src *source.RoutineSource, err error) error {
	return fmt.Errorf("routine %s (%s): %w", src.Routine, src.Path, err)
}
