// Package navigation builds the menu and breadcrumbs of the console shell
// from the screens the current user may open.
package navigation

import (
	"slices"
	"strings"

	"github.com/PropDesk/PropDesk-Console/internal/models"
)

// HomeTitle is the breadcrumb title of the home route.
const HomeTitle = "Home"

// BreadcrumbItem represents a single breadcrumb link.
type BreadcrumbItem struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

// MenuItem is one entry of the navigation menu.
type MenuItem struct {
	Title   string `json:"title"`
	Route   string `json:"route"`
	Section string `json:"section"`
	Active  bool   `json:"active"`
}

// Context represents the navigation context for a page.
type Context struct {
	ActiveSection string           `json:"activeSection"`
	ActivePage    string           `json:"activePage"`
	Breadcrumbs   []BreadcrumbItem `json:"breadcrumbs"`
	PageTitle     string           `json:"pageTitle"`
	Menu          []MenuItem       `json:"menu"`
}

// NewContext creates a new navigation context.
func NewContext(pageTitle, activeSection, activePage string) *Context {
	return &Context{
		PageTitle:     pageTitle,
		ActiveSection: activeSection,
		ActivePage:    activePage,
		Breadcrumbs:   make([]BreadcrumbItem, 0),
		Menu:          make([]MenuItem, 0),
	}
}

// AddBreadcrumb adds a breadcrumb item to the context.
func (c *Context) AddBreadcrumb(title, url string, active bool) *Context {
	c.Breadcrumbs = append(c.Breadcrumbs, BreadcrumbItem{
		Title:  title,
		URL:    url,
		Active: active,
	})

	return c
}

// IsActive checks if the given section and page match the current context.
func (c *Context) IsActive(section, page string) bool {
	return c.ActiveSection == section && c.ActivePage == page
}

// IsSectionActive checks if the given section is active.
func (c *Context) IsSectionActive(section string) bool {
	return c.ActiveSection == section
}

// Section returns the first path segment of route: "/admin/users" is in
// section "admin", "/tenants" in "tenants".
func Section(route string) string {
	trimmed := strings.Trim(route, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}

	return trimmed
}

// Build returns the navigation context of route. The menu lists the catalog
// screens whose route is in allowed, in catalog order.
func Build(route, homeRoute string, catalog []models.Screen, allowed []string) *Context {
	title := route

	for i := range catalog {
		if catalog[i].Route == route {
			title = catalog[i].Name
			break
		}
	}

	ctx := NewContext(title, Section(route), route)

	for i := range catalog {
		s := catalog[i]
		if !slices.Contains(allowed, s.Route) {
			continue
		}

		ctx.Menu = append(ctx.Menu, MenuItem{
			Title:   s.Name,
			Route:   s.Route,
			Section: Section(s.Route),
			Active:  s.Route == route,
		})
	}

	if route == homeRoute {
		return ctx.AddBreadcrumb(HomeTitle, homeRoute, true)
	}

	ctx.AddBreadcrumb(HomeTitle, homeRoute, false)

	if section := Section(route); section != "" && "/"+section != route {
		ctx.AddBreadcrumb(sectionTitle(section), "", false)
	}

	return ctx.AddBreadcrumb(title, route, true)
}

func sectionTitle(section string) string {
	words := strings.Split(section, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}

	return strings.Join(words, " ")
}
