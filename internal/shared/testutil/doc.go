// Package testutil holds helpers shared by package tests: a capturing slog
// handler for asserting on structured logs, and a small on-disk copy of the
// e-commerce CSV layout for loader and report tests.
package testutil
