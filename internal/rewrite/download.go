package rewrite

import (
	"fmt"
	"os"
	"path/filepath"

	"atsmatch/internal/errors"
)

// DefaultDownloadName is used when no file name is given.
const DefaultDownloadName = "improved-resume.txt"

// ContentType is the media type of a downloaded resume.
const ContentType = "text/plain; charset=utf-8"

// Download saves text as a plain text file. An empty target writes
// DefaultDownloadName into the working directory and a directory target
// writes DefaultDownloadName inside it. It returns the path written.
func Download(text, target string) (string, error) {
	path := resolveDownloadPath(target)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return "", errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	if err := os.WriteFile(path, []byte(text), 0600); err != nil {
		return "", errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", path), err)
	}
	return path, nil
}

func resolveDownloadPath(target string) string {
	if target == "" {
		return DefaultDownloadName
	}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		return filepath.Join(target, DefaultDownloadName)
	}
	return target
}
