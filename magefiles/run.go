//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Search builds the CLI and searches today's date, printing a table.
func Search() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "search", "--today", "--format", "table")
}

// Extract builds the CLI and runs the extractor on the saved births section fixture.
func Extract() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "extract", "--all", "internal/extract/testdata/births.html")
}

// Export builds the CLI and exports the library to YAML.
func Export() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath, "library", "export", "--format", "yaml")
}
