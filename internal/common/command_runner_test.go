package common

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"atsmatch/internal/errors"
	"atsmatch/internal/textsource"
	"atsmatch/internal/types"
)

func newTestRunner(stdout *bytes.Buffer) *Runner {
	runner := NewRunner(textsource.NewLoader(0, nil), errors.Discard())
	runner.Output.WithStdout(stdout)
	return runner
}

func TestRunFileCommand(t *testing.T) {
	dir := t.TempDir()
	resume := filepath.Join(dir, "cv.txt")
	if err := os.WriteFile(resume, []byte("Go and Kubernetes"), 0600); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	runner := newTestRunner(&stdout)

	var logged string
	err := RunFileCommand(context.Background(), runner,
		CommandConfig{OutputFormat: "text"},
		[]string{resume},
		func(sources []textsource.Source) (string, error) { return sources[0].Text, nil },
		func(_ context.Context, text string) (types.KeywordsOutput, error) {
			return types.KeywordsOutput{Source: "cv.txt", Keywords: strings.Fields(strings.ToLower(text))}, nil
		},
		func(input string, _ CommandConfig) { logged = input },
	)
	if err != nil {
		t.Fatalf("RunFileCommand failed: %v", err)
	}
	if logged != "Go and Kubernetes" {
		t.Errorf("Expected logDetails to see the input, got %q", logged)
	}
	if !strings.Contains(stdout.String(), "=== KEYWORDS: cv.txt ===") {
		t.Errorf("Unexpected output:\n%s", stdout.String())
	}
}

func TestRunFileCommandMissingFile(t *testing.T) {
	var stdout bytes.Buffer
	err := RunFileCommand(context.Background(), newTestRunner(&stdout),
		CommandConfig{OutputFormat: "json"},
		[]string{filepath.Join(t.TempDir(), "nope.txt")},
		func(sources []textsource.Source) (int, error) { return len(sources), nil },
		func(_ context.Context, n int) (int, error) { return n, nil },
		nil,
	)
	if !errors.HasCode(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Expected FILE_NOT_FOUND, got %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("Expected no output on failure")
	}
}

func TestReadSourcesRejectsDoubleStdin(t *testing.T) {
	loader := textsource.NewLoader(0, nil)
	loader.Stdin = strings.NewReader("text")
	fp := NewFileProcessor(loader, errors.Discard())

	_, err := fp.ReadSources("-", "-")
	if !errors.HasCode(err, errors.ErrCodeInvalidRequest) {
		t.Errorf("Expected INVALID_REQUEST, got %v", err)
	}
}

func TestHandleOutputToFile(t *testing.T) {
	var stdout bytes.Buffer
	runner := newTestRunner(&stdout)
	target := filepath.Join(t.TempDir(), "reports", "out.json")

	err := RunCommand(context.Background(), runner, CommandConfig{OutputFile: target, OutputFormat: "json"},
		func(context.Context) (types.SessionStatus, error) {
			return types.SessionStatus{CurrentPage: "/upload", Theme: types.ThemeLight}, nil
		})
	if err != nil {
		t.Fatalf("RunCommand failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("Expected output file: %v", err)
	}
	if !strings.Contains(string(data), `"currentPage": "/upload"`) {
		t.Errorf("Unexpected file content: %s", data)
	}
	if stdout.Len() != 0 {
		t.Errorf("Expected nothing on stdout when writing to a file")
	}
}
