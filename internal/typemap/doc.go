// Package typemap translates engine parameter types into the small
// abstract type vocabulary recorded in build metadata.
package typemap
