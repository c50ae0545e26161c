// Package manager provides catalog-level lifecycle operations for stored
// routines:
//   - Looking up whether a routine exists and which kind it is
//   - Dropping an existing routine before recompilation
//   - Checking base-table existence for bulk-insert targets
//
// Identifier quoting goes through sprocc.QuoteIdentifier, preventing SQL
// injection while handling names with backticks or special characters.
//
// # Example Usage
//
//	mgr := manager.New()
//
//	// Check if a routine exists
//	kind, ok, err := mgr.RoutineKind(ctx, conn, "app", "get_user")
//
//	// Drop it before recreating
//	if ok {
//		err = mgr.DropRoutine(ctx, conn, kind, "app", "get_user")
//	}
//
// # Thread Safety
//
// Manager is stateless; thread safety depends on the injected DBConn.
package manager
