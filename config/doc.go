// Package config loads httppipe configuration from YAML files, .env files
// and the process environment using Viper.
//
// Environment variables override file values. Nested keys map to upper-case,
// underscore-separated names under an optional prefix, so with prefix
// "HTTPPIPE" the key "client.timeout" is read from HTTPPIPE_CLIENT_TIMEOUT.
//
// Env gives policies a view of individual environment switches that is
// re-read on every lookup rather than captured at startup.
package config
