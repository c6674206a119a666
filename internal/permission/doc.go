// Package permission holds the in-memory snapshot of screens, users and
// user to screen permission edges, loaded from the backend and mutated
// through create, delete and bulk assign operations.
//
// Readers work on an immutable Snapshot; every mutation publishes a new one.
package permission
