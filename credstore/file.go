package credstore

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// File persists the credential in a single file. The file holds the raw
// bearer string and nothing else; a missing file means anonymous.
type File struct {
	path string
}

// NewFile returns a file-backed store writing to path. The file is
// created with 0600 on first Set.
func NewFile(path string) *File {
	return &File{path: path}
}

// Get reads the credential file. A missing file is not an error; it
// yields the empty credential.
func (f *File) Get(context.Context) (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read credential file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Set writes the credential file.
func (f *File) Set(_ context.Context, credential string) error {
	if err := os.WriteFile(f.path, []byte(credential), 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	return nil
}

// Clear removes the credential file. Removing an absent file is not an
// error.
func (f *File) Clear(context.Context) error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}
