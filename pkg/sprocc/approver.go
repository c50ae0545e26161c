package sprocc

import "context"

// Approver handles user interaction for approval workflows, particularly
// for the destructive rebuild workflow that drops and recreates every
// routine in the target schema.
//
// Implementations:
//   - ForcedApprover: shows a countdown and automatically approves
//   - InteractiveApprover: prompts the user to type the database name
type Approver interface {
	// RequestApproval prompts for confirmation before dropping and
	// recreating all routines in the named database.
	//
	// Returns:
	//   - bool: true if approved, false if denied
	//   - error: any error that occurred during the approval process
	RequestApproval(ctx context.Context, dbName string) (bool, error)
}
