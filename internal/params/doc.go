// Package params builds the placeholder replacement table: the mapping
// from uppercased placeholder name to substitution value that the
// annotation scanner resolves @NAME@ tokens against.
//
// Values are layered from three sources, later ones overriding earlier:
// the project config file, .env-style placeholder files, and CLI
// key=value flags.
package params
