// Package auth is the authorization engine of the console.
//
// It answers whether a user may open a route. The answer combines two rules:
//   - Users with the Admin role may open every route
//   - Everyone else needs a permission edge to an ACTIVE screen whose route
//     equals the requested route exactly
//
// The engine is pure. It reads the permission data through the View
// interface and never performs I/O, so it can be consulted for every
// protected route or action.
//
// Example usage:
//
//	snapshot := repo.Snapshot()
//
//	if !auth.CanAccess(user, auth.RouteVendors, snapshot) {
//	    return fiber.ErrForbidden
//	}
//
//	menu := auth.AccessibleRoutes(user, snapshot)
package auth
