// Package errors provides the unified application error type used across
// httppipe. Pipeline and client errors convert into *AppError through
// errors.As, so callers can branch on a stable Code regardless of which
// layer produced the failure.
package errors
