// Package config loads, normalizes, and validates collector configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for
// secrets such as INSUNIVERSE_LOGIN_ID and MAKE_WEBHOOK_URL. The Config type
// centralizes every knob the CLI and the pipeline need: portal endpoints and
// credentials, fetch pacing, the job store location, sink settings, and log
// output.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical locale tags, and clear validation errors.
package config
