// Package credential implements the durable key/value store holding the
// session's access token, refresh token and cached user profile.
//
// The Store is pure storage. It knows the credential keys and how to write
// them together, but it never decides whether a token is valid; that is the
// token package's job.
//
// Values live in a Backend, the same Get/Set/Delete/Reset/Close shape the
// gofiber storage drivers implement, so the store can sit on a local sqlite
// file (gorm), a shared MySQL/PostgreSQL database (gorm or gofiber storage)
// or process memory. An optional Sealer encrypts every value at rest.
package credential
