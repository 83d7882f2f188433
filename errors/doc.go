// Package errors provides the structured error type used across seqkit.
// Every failure the engine surfaces is an *AppError carrying a machine-readable
// code, so callers can branch with Is or As instead of matching strings.
package errors
