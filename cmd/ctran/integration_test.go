package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// IntegrationTestSpec represents a single integration test case
type IntegrationTestSpec struct {
	Name      string   `yaml:"name"`
	Input     string   `yaml:"input"`
	Expect    []string `yaml:"expect"`     // strings that must appear in output
	ExpectNot []string `yaml:"expect_not"` // strings that must NOT appear
	Skip      string   `yaml:"skip,omitempty"`
}

// IntegrationTestFile represents the integration.yaml file structure
type IntegrationTestFile struct {
	Tests []IntegrationTestSpec `yaml:"tests"`
}

// TestIntegrationYAML renders each corpus file and checks the output,
// then verifies the render/reparse round trip with --check.
func TestIntegrationYAML(t *testing.T) {
	data, err := os.ReadFile("../../testdata/integration.yaml")
	if err != nil {
		t.Fatalf("integration.yaml not found: %v", err)
	}

	var testFile IntegrationTestFile
	if err := yaml.Unmarshal(data, &testFile); err != nil {
		t.Fatalf("failed to parse integration.yaml: %v", err)
	}

	for _, tc := range testFile.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			if tc.Skip != "" {
				t.Skip(tc.Skip)
			}

			tmpDir := t.TempDir()
			srcFile := filepath.Join(tmpDir, "test.c")
			if err := os.WriteFile(srcFile, []byte(tc.Input), 0644); err != nil {
				t.Fatalf("failed to write test file: %v", err)
			}

			resetFlags()
			var out, errOut bytes.Buffer
			cmd := newRootCmd(&out, &errOut)
			cmd.SetArgs([]string{srcFile})
			if err := cmd.Execute(); err != nil {
				t.Fatalf("ctran failed: %v\nStderr: %s", err, errOut.String())
			}

			output := out.String()
			for _, exp := range tc.Expect {
				if !strings.Contains(output, exp) {
					t.Errorf("expected output to contain %q\nGot:\n%s", exp, output)
				}
			}
			for _, exp := range tc.ExpectNot {
				if strings.Contains(output, exp) {
					t.Errorf("expected output NOT to contain %q\nGot:\n%s", exp, output)
				}
			}

			resetFlags()
			var checkOut, checkErr bytes.Buffer
			cmd = newRootCmd(&checkOut, &checkErr)
			cmd.SetArgs([]string{"--check", srcFile})
			if err := cmd.Execute(); err != nil {
				t.Errorf("round trip check failed: %v\nStderr: %s", err, checkErr.String())
			}
		})
	}
}

// TestIncludeDirective tests that quoted includes resolve through -I
func TestIncludeDirective(t *testing.T) {
	tmpDir := t.TempDir()

	includeDir := filepath.Join(tmpDir, "include")
	if err := os.Mkdir(includeDir, 0755); err != nil {
		t.Fatalf("failed to create include dir: %v", err)
	}

	headerContent := `#ifndef MYHEADER_H
#define MYHEADER_H
#define MY_CONSTANT 42
#endif
`
	if err := os.WriteFile(filepath.Join(includeDir, "myheader.h"), []byte(headerContent), 0644); err != nil {
		t.Fatalf("failed to write header: %v", err)
	}

	sourceContent := `#include "myheader.h"
int main() {
    return MY_CONSTANT;
}
`
	sourcePath := filepath.Join(tmpDir, "test.c")
	if err := os.WriteFile(sourcePath, []byte(sourceContent), 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	resetFlags()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"-I", includeDir, sourcePath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("ctran failed: %v\nStderr: %s", err, errOut.String())
	}

	if !strings.Contains(out.String(), "return 42;") {
		t.Errorf("expected MY_CONSTANT to expand to 42\nGot:\n%s", out.String())
	}
}

// TestPreprocessedFileExtension tests that .i files skip preprocessing
func TestPreprocessedFileExtension(t *testing.T) {
	sourcePath := filepath.Join(t.TempDir(), "test.i")
	if err := os.WriteFile(sourcePath, []byte("int main() {\n    return 42;\n}\n"), 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	resetFlags()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{sourcePath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("ctran failed: %v\nStderr: %s", err, errOut.String())
	}
	if !strings.Contains(out.String(), "return 42;") {
		t.Errorf("expected rendered body\nGot:\n%s", out.String())
	}
}
