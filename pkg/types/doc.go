// Package types defines the core data structures for the Mercetto client kit.
// It includes the error taxonomy, the uniform response envelope produced by
// the request engine, and the client configuration record.
package types
