package auth

// Route constants name the application screens the console ships with.
// Screens are a backend catalog, so routes outside this list are valid too.
const (
	// RouteDashboard is the landing page after login.
	RouteDashboard = "/dashboard"
	// RouteLogin is the entry route after logout.
	RouteLogin = "/login"

	// RouteProperties lists the managed properties.
	RouteProperties = "/properties"
	// RouteTenants lists tenants and their leases.
	RouteTenants = "/tenants"
	// RouteVendors lists maintenance vendors.
	RouteVendors = "/vendors"
	// RouteWorkOrders lists maintenance work orders.
	RouteWorkOrders = "/work-orders"
	// RouteInvoices lists vendor invoices.
	RouteInvoices = "/invoices"
	// RouteReports shows the reporting screens.
	RouteReports = "/reports"

	// RouteAdminUsers manages user accounts.
	RouteAdminUsers = "/admin/users"
	// RouteAdminScreens manages the screen catalog.
	RouteAdminScreens = "/admin/screens"
	// RouteAdminPermissions assigns screens to users.
	RouteAdminPermissions = "/admin/permissions"
)

// PublicRoutes are reachable without a session.
var PublicRoutes = []string{RouteLogin} //nolint:gochecknoglobals

// IsPublic reports whether route is reachable without a session.
func IsPublic(route string) bool {
	for _, r := range PublicRoutes {
		if r == route {
			return true
		}
	}

	return false
}
