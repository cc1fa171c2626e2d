// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// The package supports multiple GTFS feeds and allows feed selection by name.
// Search defaults (bounds, reluctances, heuristic) live under the search key
// and are copied into every routing request unless a request overrides them.
package config
