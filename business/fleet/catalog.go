package fleet

import (
	"strings"

	"github.com/Biswayan2006/SIH2025-sub001/business/data/bus"
)

// Catalog is the read only route collection. It is built once and needs no locking
type Catalog struct {
	routes []bus.Route
	byId   map[string]int
}

// NewCatalog indexes routes, keeping their order. A later route with a repeated id is ignored
func NewCatalog(routes []bus.Route) *Catalog {
	c := &Catalog{
		routes: make([]bus.Route, 0, len(routes)),
		byId:   make(map[string]int),
	}
	for _, route := range routes {
		if _, present := c.byId[route.RouteId]; present {
			continue
		}
		c.byId[route.RouteId] = len(c.routes)
		c.routes = append(c.routes, route)
	}
	return c
}

// Route returns the route with routeId
func (c *Catalog) Route(routeId string) (bus.Route, bool) {
	i, present := c.byId[routeId]
	if !present {
		return bus.Route{}, false
	}
	return c.routes[i], true
}

// ListRoutes returns the route matching routeId exactly, or the whole catalog in load order when routeId is empty
func (c *Catalog) ListRoutes(routeId string) []bus.Route {
	if routeId == "" {
		results := make([]bus.Route, len(c.routes))
		copy(results, c.routes)
		return results
	}
	results := make([]bus.Route, 0, 1)
	if route, present := c.Route(routeId); present {
		results = append(results, route)
	}
	return results
}

// SearchRoutes returns routes whose id, name, from, to or any stop name contains query, ignoring case.
// Results keep catalog order. A blank query matches nothing.
func (c *Catalog) SearchRoutes(query string) []bus.Route {
	results := make([]bus.Route, 0)
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return results
	}
	for _, route := range c.routes {
		if routeMatches(&route, needle) {
			results = append(results, route)
		}
	}
	return results
}

// routeMatches checks the searchable fields of route against a lower cased needle
func routeMatches(route *bus.Route, needle string) bool {
	for _, field := range []string{route.RouteId, route.Name, route.From, route.To} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	for _, stop := range route.Stops {
		if strings.Contains(strings.ToLower(stop.Name), needle) {
			return true
		}
	}
	return false
}
