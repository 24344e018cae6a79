// Package catalog holds the static endpoint catalogs and the weighted
// selector that draws from them.
package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"loadprobe/internal/core"
)

const (
	NameDefault       = "default"
	NameValidation    = "validation"
	NameComprehensive = "comprehensive"
)

var (
	ErrEmptyCatalog   = errors.New("catalog is empty")
	ErrNegativeWeight = errors.New("negative endpoint weight")
	ErrZeroWeight     = errors.New("catalog total weight is zero")
)

// Default is the mixed public/protected set used by the quick benchmark
// and the load test.
func Default() []core.Endpoint {
	return []core.Endpoint{
		{Path: "/", Method: http.MethodGet, Weight: 30, Description: "Home page"},
		{Path: "/api/health", Method: http.MethodGet, Weight: 20, Description: "Health check"},
		{Path: "/api/status", Method: http.MethodGet, Weight: 15, Description: "Service status"},
		{Path: "/login", Method: http.MethodGet, Weight: 10, Description: "Login page"},
		{Path: "/dashboard", Method: http.MethodGet, Weight: 10, Description: "Dashboard (protected)"},
		{Path: "/api/user/profile", Method: http.MethodGet, Weight: 10, Description: "User profile API (protected)"},
		{Path: "/api/metrics", Method: http.MethodGet, Weight: 5, Description: "Metrics endpoint"},
	}
}

// Validation contains only endpoints expected to answer with a success
// status, for a clean success-rate baseline.
func Validation() []core.Endpoint {
	return []core.Endpoint{
		{Path: "/", Method: http.MethodGet, Weight: 35, Description: "Home page"},
		{Path: "/api/health", Method: http.MethodGet, Weight: 30, Description: "Health check"},
		{Path: "/api/status", Method: http.MethodGet, Weight: 20, Description: "Service status"},
		{Path: "/login", Method: http.MethodGet, Weight: 15, Description: "Login page"},
	}
}

// Comprehensive extends Default with endpoints expected to fail with
// 404, 401 and 405.
func Comprehensive() []core.Endpoint {
	eps := Default()
	return append(eps,
		core.Endpoint{Path: "/api/admin/users", Method: http.MethodGet, Weight: 5, Description: "Admin API (expects 401)"},
		core.Endpoint{Path: "/nonexistent-page", Method: http.MethodGet, Weight: 5, Description: "Missing page (expects 404)"},
		core.Endpoint{Path: "/api/does-not-exist", Method: http.MethodGet, Weight: 3, Description: "Missing API route (expects 404)"},
		core.Endpoint{Path: "/api/health", Method: http.MethodDelete, Weight: 2, Description: "Wrong method (expects 405)"},
	)
}

// Lookup returns a copy of the named built-in catalog.
func Lookup(name string) ([]core.Endpoint, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameDefault:
		return Default(), nil
	case NameValidation:
		return Validation(), nil
	case NameComprehensive:
		return Comprehensive(), nil
	default:
		return nil, fmt.Errorf("unknown catalog %q (expected %s|%s|%s)",
			name, NameDefault, NameValidation, NameComprehensive)
	}
}

// Validate checks that a catalog can be selected from.
func Validate(endpoints []core.Endpoint) error {
	if len(endpoints) == 0 {
		return ErrEmptyCatalog
	}
	total := 0
	for i, ep := range endpoints {
		if strings.TrimSpace(ep.Path) == "" {
			return fmt.Errorf("endpoint %d: path is required", i)
		}
		if strings.TrimSpace(ep.Method) == "" {
			return fmt.Errorf("endpoint %d (%s): method is required", i, ep.Path)
		}
		if ep.Weight < 0 {
			return fmt.Errorf("endpoint %d (%s): %w: %d", i, ep.Path, ErrNegativeWeight, ep.Weight)
		}
		total += ep.Weight
	}
	if total == 0 {
		return ErrZeroWeight
	}
	return nil
}

// TotalWeight sums the weights of all entries.
func TotalWeight(endpoints []core.Endpoint) int {
	total := 0
	for _, ep := range endpoints {
		total += ep.Weight
	}
	return total
}
