// Package stale decides whether a routine source must be recompiled.
// The decision is a pure function of the previous build record and the
// current state of the source, the replacement table, the catalog, and
// the session settings.
package stale

import (
	"fmt"
	"time"

	"github.com/vvka-141/sprocc/pkg/sprocc"
)

// Input gathers everything the staleness decision depends on for one
// routine.
type Input struct {
	// Previous is the build record of the last successful compile, or
	// nil when the routine has never been compiled.
	Previous *sprocc.BuildMetadata

	// ModTime is the current modification time of the source file.
	ModTime time.Time

	// Placeholders maps the tokens resolved for the current run to
	// their values.
	Placeholders map[string]string

	// CatalogExists reports whether the routine currently exists in
	// the database catalog.
	CatalogExists bool

	// Session is the session-settings triple in effect for this run.
	Session sprocc.SessionSettings
}

// Result carries the decision and a human-readable reason for the
// verbose log.
type Result struct {
	Stale  bool
	Reason string
}

// Check applies the recompilation rules in order and short-circuits on
// the first one that fires. Only placeholders recorded in the previous
// build participate in the comparison; tokens that are new to the
// source do not by themselves force a rebuild.
func Check(in Input) Result {
	if in.Previous == nil {
		return Result{Stale: true, Reason: "no previous build recorded"}
	}

	if !in.Previous.ModTime.Equal(in.ModTime) {
		return Result{Stale: true, Reason: fmt.Sprintf(
			"source modified (recorded %s, found %s)",
			in.Previous.ModTime.Format(time.RFC3339), in.ModTime.Format(time.RFC3339))}
	}

	for token, recorded := range in.Previous.Placeholders {
		current, ok := in.Placeholders[token]
		if !ok {
			return Result{Stale: true, Reason: fmt.Sprintf(
				"placeholder %s no longer resolves", token)}
		}
		if current != recorded {
			return Result{Stale: true, Reason: fmt.Sprintf(
				"placeholder %s changed value", token)}
		}
	}

	if !in.CatalogExists {
		return Result{Stale: true, Reason: "routine missing from database catalog"}
	}

	if in.Previous.Session != in.Session {
		return Result{Stale: true, Reason: "session settings changed"}
	}

	return Result{}
}
