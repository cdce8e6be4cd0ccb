// Package cli implements the cabaliser command line: compile, generate,
// ingest and inspect. Settings come from an optional YAML file and are
// overridden by flags.
package cli
