//go:build mage

// Package main provides build targets for cafememo using Mage.
//
// Usage:
//
//	mage build      Compile the cafememo binary to bin/
//	mage test       Run all tests
//	mage cover      Run tests with a coverage profile in bin/
//	mage lint       Run golangci-lint
//	mage clean      Remove build artifacts
//	mage install    Install cafememo to GOPATH/bin
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "cafememo"
	binaryDir  = "bin"
	cmdDir     = "./cmd/cafememo"
	versionVar = "github.com/mesh-intelligence/cafememo/internal/cli.Version"
)

// ldflags stamps the version from git, falling back to the default in code.
func ldflags() string {
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		return ""
	}
	return fmt.Sprintf("-X %s=%s", versionVar, strings.TrimPrefix(version, "v"))
}

// Build compiles the cafememo binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-v", "-ldflags", ldflags(),
		"-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Cover runs all tests and writes bin/coverage.out.
func Cover() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	profile := filepath.Join(binaryDir, "coverage.out")
	if err := sh.RunV("go", "test", "-coverprofile", profile, "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func", profile)
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV("go", "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
