// Package resume validates the candidate's resume attachment and ships it to
// the upload endpoint.
package resume

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// MaxBytes is the default size ceiling for an attachment (8 MiB inclusive).
const MaxBytes int64 = 8 << 20

const pdfType = "application/pdf"

var (
	ErrNotPDF = errors.New("Only PDF files are allowed")
	// ErrTooLarge matches every *SizeError via errors.Is.
	ErrTooLarge = errors.New("file too large")
)

// SizeError rejects a file above Limit bytes. Its message names the limit.
type SizeError struct {
	Size  int64
	Limit int64
}

func (e *SizeError) Error() string {
	return "File size must be less than " + formatLimit(e.Limit)
}

func (e *SizeError) Is(target error) bool { return target == ErrTooLarge }

func formatLimit(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// File is a user-selected file reference. Open returns a fresh reader over its
// content each time it is called.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Artifact pairs a selected file with the outcome of validating it.
type Artifact struct {
	File       File
	Validation error
}

// Accepted reports whether the file passed validation.
func (a Artifact) Accepted() bool { return a.Validation == nil }

// Check validates f and wraps the outcome.
func Check(f File, maxBytes int64) Artifact {
	return Artifact{File: f, Validation: Validate(f, maxBytes)}
}

// Validate rejects files whose type is not PDF or whose size exceeds
// maxBytes. The type is checked first. A non-positive maxBytes means MaxBytes.
func Validate(f File, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = MaxBytes
	}
	if !IsPDF(f.ContentType) {
		return ErrNotPDF
	}
	if f.Size > maxBytes {
		return &SizeError{Size: f.Size, Limit: maxBytes}
	}
	return nil
}

// IsPDF reports whether a MIME type (parameters allowed) names a PDF.
func IsPDF(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == pdfType
}

// FromPath builds a File from disk, sniffing the content type from the first
// bytes and falling back to the extension.
func FromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat resume: %w", err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("resume %s is a directory", filepath.Base(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("open resume: %w", err)
	}
	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	f.Close() //nolint:errcheck // read-only
	ct := http.DetectContentType(head[:n])
	if ct == "application/octet-stream" || ct == "text/plain; charset=utf-8" {
		if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
			ct = byExt
		}
	}
	return File{
		Name:        filepath.Base(path),
		ContentType: ct,
		Size:        info.Size(),
		Open:        func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// FromBytes builds an in-memory File.
func FromBytes(name, contentType string, data []byte) File {
	return File{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open:        func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}
