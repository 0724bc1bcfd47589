package middleware

import (
	"sort"
	"strings"
)

// RouteClass decides what a guarded route demands of the session.
type RouteClass int

const (
	// RoutePrivate requires an authenticated session. The default for
	// anything not listed.
	RoutePrivate RouteClass = iota
	// RoutePublic is reachable by anyone; an identity is attached when
	// one resolves.
	RoutePublic
	// RoutePublicRedirect is public, but authenticated users are
	// redirected away (login and signup pages).
	RoutePublicRedirect
)

// RouteTable maps request paths to route classes. Exact entries win over
// prefix entries; longer prefixes win over shorter ones. The zero table
// classifies everything private.
type RouteTable struct {
	exact    map[string]routeRule
	prefixes []prefixRule
	allow    map[string]struct{}
}

type routeRule struct {
	class RouteClass
	// role, when set, is the role a private route demands on top of
	// authentication. Admins always satisfy it.
	role string
}

type prefixRule struct {
	prefix string
	routeRule
}

// NewRouteTable starts an empty table.
func NewRouteTable() *RouteTable {
	return &RouteTable{
		exact: make(map[string]routeRule),
		allow: make(map[string]struct{}),
	}
}

// Exact classifies one path. An optional role restricts the route to
// identities holding it.
func (t *RouteTable) Exact(path string, class RouteClass, role ...string) *RouteTable {
	t.exact[path] = routeRule{class: class, role: first(role)}
	return t
}

// Prefix classifies every path under prefix. An optional role restricts
// the subtree to identities holding it.
func (t *RouteTable) Prefix(prefix string, class RouteClass, role ...string) *RouteTable {
	t.prefixes = append(t.prefixes, prefixRule{
		prefix:    prefix,
		routeRule: routeRule{class: class, role: first(role)},
	})
	sort.SliceStable(t.prefixes, func(i, j int) bool {
		return len(t.prefixes[i].prefix) > len(t.prefixes[j].prefix)
	})
	return t
}

func first(role []string) string {
	if len(role) > 0 {
		return role[0]
	}
	return ""
}

// Allow exempts a path from guarding entirely: no resolution, no
// redirect. Health checks and static assets go here.
func (t *RouteTable) Allow(path string) *RouteTable {
	t.allow[path] = struct{}{}
	return t
}

// Allowed reports whether the path bypasses the guard.
func (t *RouteTable) Allowed(path string) bool {
	if t == nil {
		return false
	}
	_, ok := t.allow[path]
	return ok
}

// Classify returns the route class for path. Unlisted paths are private.
func (t *RouteTable) Classify(path string) RouteClass {
	return t.lookup(path).class
}

// RoleFor returns the role the route at path demands, or "" when any
// authenticated identity will do. Precedence matches Classify.
func (t *RouteTable) RoleFor(path string) string {
	return t.lookup(path).role
}

func (t *RouteTable) lookup(path string) routeRule {
	if t == nil {
		return routeRule{class: RoutePrivate}
	}
	if rule, ok := t.exact[path]; ok {
		return rule
	}
	for _, rule := range t.prefixes {
		if strings.HasPrefix(path, rule.prefix) {
			return rule.routeRule
		}
	}
	return routeRule{class: RoutePrivate}
}
