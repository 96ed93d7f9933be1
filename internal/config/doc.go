// Package config loads parkdash configuration from TOML.
//
// # Configuration Discovery
//
// Load reads ~/.config/parkdash/config.toml unless a path is given. A missing
// file is not an error: Default values apply, so parkdash works out of the box
// against the public Open Data Hub endpoint.
//
// # Example
//
//	api_base = "https://mobility.api.opendatahub.com"
//	stations = "103,104,105,106"
//	refresh_seconds = 60
//	threshold_red = 80
//	threshold_orange = 50
//	threshold_gray_minutes = 15
//	show_timestamp = false
//
// Every field is optional. Blank strings fall back to defaults and tilde paths
// are expanded.
//
// # Station Lists
//
// Stations are a comma separated list of station codes, matching the widget's
// "parkings" attribute. ParseStations drops blank entries and falls back to the
// default list when nothing is left, so a poll never issues an empty filter.
//
// # Validation
//
// Validate checks thresholds (0 <= orange <= red <= 100), intervals, the API
// base URL, and the display timezone, and joins every problem into one error.
package config
