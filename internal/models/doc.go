// Package models contains the session core's domain records: users, roles,
// screens, permission edges and credentials.
//
// Payloads arriving from the backend are loosely typed. The JSON decoders in
// this package normalise the shapes the backend has been observed to emit
// (numeric or string identifiers, role spellings, lower case screen status)
// and Validate checks the decoded records before anything else sees them.
package models
