// Package db establishes and adapts MySQL connections.
//
// A single dedicated session backs each sprocc.DBConn so that SET
// statements and temporary tables created during compilation stay
// visible for the whole run. Connectors exist for standard password
// authentication and for AWS IAM, Google Cloud SQL IAM, and Azure
// Entra ID token-based authentication, all with automatic retry on
// transient failures.
package db
