// Package testutil holds helpers shared by the package tests: recorded HTTP
// interactions and loggers that write to a buffer.
//
// Cassettes live under testdata/fixtures of the package using them. Tests
// replay them by default; set VCR_MODE=record to capture fresh ones against
// the live endpoints.
package testutil
