// Package modules_test verifies module boundary compliance.
package modules_test

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"
)

const modulePath = "github.com/flowsynx/plugin-csv/"

// TestModuleBoundaryCompliance checks that the input, operation and output
// modules only depend on shared building blocks, never on the packages that
// assemble and run jobs.
func TestModuleBoundaryCompliance(t *testing.T) {
	packages := []string{
		"internal/modules/input",
		"internal/modules/filter",
		"internal/modules/output",
		"internal/csvcodec",
		"pkg/csvplugin",
	}
	forbidden := []string{
		"internal/runtime",
		"internal/factory",
		"internal/operation",
		"internal/config",
		"internal/cli",
		"cmd/",
	}

	for _, pkgPath := range packages {
		t.Run(pkgPath, func(t *testing.T) {
			matches, err := filepath.Glob(filepath.Join("..", "..", pkgPath, "*.go"))
			if err != nil {
				t.Fatalf("failed to glob package %s: %v", pkgPath, err)
			}
			if len(matches) == 0 {
				t.Fatalf("no Go files found in %s", pkgPath)
			}

			for _, file := range matches {
				// Tests may reach further to build fixtures.
				if strings.HasSuffix(file, "_test.go") {
					continue
				}

				f, err := parser.ParseFile(token.NewFileSet(), file, nil, parser.ImportsOnly)
				if err != nil {
					t.Fatalf("failed to parse file %s: %v", file, err)
				}

				for _, imp := range f.Imports {
					importPath := strings.Trim(imp.Path.Value, `"`)
					local, ok := strings.CutPrefix(importPath, modulePath)
					if !ok {
						continue
					}
					for _, bad := range forbidden {
						if strings.HasPrefix(local, bad) {
							t.Errorf("BOUNDARY VIOLATION: %s imports %s", filepath.Base(file), importPath)
						}
					}
				}
			}
		})
	}
}

// TestPublicPackageIsSelfContained checks that pkg/csvplugin, the type
// package shared with hosts, imports nothing internal.
func TestPublicPackageIsSelfContained(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("..", "..", "pkg", "csvplugin", "*.go"))
	if err != nil {
		t.Fatal(err)
	}
	for _, file := range matches {
		if strings.HasSuffix(file, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(token.NewFileSet(), file, nil, parser.ImportsOnly)
		if err != nil {
			t.Fatalf("failed to parse file %s: %v", file, err)
		}
		for _, imp := range f.Imports {
			if strings.Contains(strings.Trim(imp.Path.Value, `"`), "/internal/") {
				t.Errorf("%s imports internal package %s", filepath.Base(file), imp.Path.Value)
			}
		}
	}
}
