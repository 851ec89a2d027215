//go:build mage

// Package main provides build targets for bookshelf using Mage.
//
// Usage:
//
//	mage build    Compile the bookshelf binary to bin/
//	mage test     Run all tests
//	mage cover    Run tests with a coverage profile
//	mage lint     Run golangci-lint
//	mage run      Build and serve the catalog
//	mage clean    Remove build artifacts
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "bookshelf"
	binaryDir  = "bin"
	coverFile  = "coverage.out"
)

// Build compiles the bookshelf binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	ldflags := "-X github.com/htol/bookshelf/app.Version=" + version
	return sh.RunV("go", "build", "-v", "-ldflags", ldflags, "-o", filepath.Join(binaryDir, binaryName), ".")
}

// Test runs all tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Cover runs all tests and writes a coverage profile.
func Cover() error {
	if err := sh.RunV("go", "test", "-coverprofile="+coverFile, "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func="+coverFile)
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Run builds and starts the web server.
func Run() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binaryDir, binaryName), "serve")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	if err := sh.Rm(coverFile); err != nil {
		return err
	}
	return sh.RunV("go", "clean")
}
