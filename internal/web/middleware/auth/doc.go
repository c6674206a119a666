// Package auth provides the route guard of the console shell.
//
// The guard asks the session for every request:
//   - JSON endpoints under /api answer 401 without a session, except the
//     anonymous ones such as the session state.
//   - Page routes redirect to the login route without a session; the login
//     route itself redirects to the home route once logged in.
//   - Screen routes answer 403 when canAccess denies them. The home route
//     is open to every authenticated user.
//
// The id of the logged in user is stored in fiber.Locals for the access log.
//
// Usage:
//
//	app.Use(authmiddleware.New(authmiddleware.Config{Session: sess}))
package auth
