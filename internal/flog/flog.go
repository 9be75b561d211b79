// Package flog threads a single hclog.Logger through the front-end the
// way hashicorp-nomad threads one through its agent and client
// subsystems: a component takes a Logger in its constructor, names it,
// and never reaches for a package-level global.
package flog

import "github.com/hashicorp/go-hclog"

// New returns the default logger for a translation unit: a named,
// stderr-backed logger at Warn level, quiet enough that running the
// front-end in a test suite doesn't spam output: the analyzer's Debug
// and Trace records are dropped.
func New(name string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  name,
		Level: hclog.Warn,
	})
}

// Null returns a logger that discards everything, for call sites (tests,
// library embedders that supply their own) that don't want analyzer
// trace output at all.
func Null() hclog.Logger {
	return hclog.NewNullLogger()
}
