// Package plugin collects checks contributed outside the built-in set.
// There is no runtime discovery: each plugin file registers its factory
// from an init function, and Registrations hands the table to the CLI
// in registration order.
package plugin

import "github.com/khanhnv2901/webscan/internal/scanner"

var registry []scanner.Registration

func register(r scanner.Registration) {
	registry = append(registry, r)
}

// Registrations returns the registered plugin checks.
func Registrations() []scanner.Registration {
	out := make([]scanner.Registration, len(registry))
	copy(out, registry)
	return out
}
