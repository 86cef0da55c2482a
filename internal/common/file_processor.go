package common

import (
	"fmt"
	"os"
	"path/filepath"

	"atsmatch/internal/errors"
	"atsmatch/internal/textsource"
)

// FileProcessor handles command file input and output
type FileProcessor struct {
	loader *textsource.Loader
	logger *errors.Logger
}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor(loader *textsource.Loader, logger *errors.Logger) *FileProcessor {
	return &FileProcessor{loader: loader, logger: logger}
}

// Loader returns the loader used for command input.
func (fp *FileProcessor) Loader() *textsource.Loader {
	return fp.loader
}

// ReadSources loads every path in order. At most one path may be stdin.
func (fp *FileProcessor) ReadSources(paths ...string) ([]textsource.Source, error) {
	sources := make([]textsource.Source, len(paths))
	stdinUsed := false

	for i, path := range paths {
		if path == textsource.StdinName {
			if stdinUsed {
				return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
					"standard input can only be used for one argument", nil)
			}
			stdinUsed = true
		}

		src, err := fp.loader.Load(path)
		if err != nil {
			return nil, err
		}
		sources[i] = src
	}

	return sources, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		err := os.MkdirAll(dir, 0750)
		if err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	err := os.WriteFile(filename, []byte(content), 0600)
	if err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout
	}

	if err := textsource.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}
