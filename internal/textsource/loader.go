// Package textsource turns input files into plain text for analysis.
//
// Binary document formats are rejected: text is expected to be extracted
// already. HTML, such as a saved job posting, is converted to markdown first.
package textsource

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"atsmatch/internal/errors"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// StdinName selects standard input instead of a file.
const StdinName = "-"

// DefaultMaxFileSize applies when Loader.MaxFileSize is zero.
const DefaultMaxFileSize int64 = 1 << 20

// Format describes how a source was decoded.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// Source is text loaded from a file or standard input.
type Source struct {
	Text     string
	FileName string
	Format   Format
}

// Loader reads input sources.
type Loader struct {
	MaxFileSize int64
	Stdin       io.Reader
	logger      *errors.Logger
}

// NewLoader creates a loader reading stdin from os.Stdin.
func NewLoader(maxFileSize int64, logger *errors.Logger) *Loader {
	if logger == nil {
		logger = errors.Discard()
	}
	return &Loader{MaxFileSize: maxFileSize, Stdin: os.Stdin, logger: logger}
}

func (l *Loader) limit() int64 {
	if l.MaxFileSize <= 0 {
		return DefaultMaxFileSize
	}
	return l.MaxFileSize
}

// Load reads path, or stdin when path is "-".
func (l *Loader) Load(path string) (Source, error) {
	if path == StdinName {
		return l.loadReader(l.Stdin, "stdin", FormatText)
	}

	if IsBinaryDocument(path) {
		return Source{}, errors.NewValidationError(errors.ErrCodeUnsupportedDocument,
			fmt.Sprintf("%s documents are not supported, export the text first", FileExtension(path)), nil).
			WithContext("file", path)
	}

	if err := ValidateInputFile(path); err != nil {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return Source{}, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", path), err)
		}
		return Source{}, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", path), err)
	}

	format := FormatText
	switch {
	case IsHTMLFile(path):
		format = FormatHTML
	case !IsTextFile(path):
		l.logger.Warn("File may not be a text file", "filename", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return Source{}, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", path), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			l.logger.Warn("Failed to close file", "filename", path, "error", err)
		}
	}()

	return l.loadReader(file, filepath.Base(path), format)
}

// LoadText is Load returning only the text.
func (l *Loader) LoadText(path string) (string, error) {
	src, err := l.Load(path)
	return src.Text, err
}

func (l *Loader) loadReader(r io.Reader, name string, format Format) (Source, error) {
	limit := l.limit()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return Source{}, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read content: %s", name), err)
	}
	if int64(len(data)) > limit {
		return Source{}, errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("%s exceeds the %s limit", name, FormatFileSize(limit)), nil)
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return Source{}, errors.NewValidationError(errors.ErrCodeUnsupportedDocument,
			fmt.Sprintf("%s looks like a binary file", name), nil)
	}

	text := string(data)
	if format == FormatHTML {
		md, err := htmltomarkdown.ConvertString(text)
		if err != nil {
			return Source{}, errors.NewValidationError(errors.ErrCodeInvalidFormat,
				fmt.Sprintf("Cannot convert HTML: %s", name), err)
		}
		text = md
	}

	if strings.TrimSpace(text) == "" {
		return Source{}, errors.NewValidationError(errors.ErrCodeEmptyInput,
			fmt.Sprintf("%s contains no text", name), nil)
	}

	l.logger.Debug("Loaded text source", "name", name, "format", format, "size", FormatFileSize(int64(len(data))))
	return Source{Text: text, FileName: name, Format: format}, nil
}
