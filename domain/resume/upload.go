package resume

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// ErrUpload wraps every upload failure.
var ErrUpload = errors.New("resume upload failed")

// Uploader ships a validated resume and returns the stored reference.
type Uploader interface {
	Upload(ctx context.Context, f File) (string, error)
}

// UploaderFunc adapts a function to Uploader.
type UploaderFunc func(ctx context.Context, f File) (string, error)

func (fn UploaderFunc) Upload(ctx context.Context, f File) (string, error) { return fn(ctx, f) }

// HTTPUploader posts the resume as a multipart form to URL.
type HTTPUploader struct {
	URL    string
	Field  string
	Client *http.Client
	Logger *slog.Logger
}

// NewHTTPUploader returns an uploader with its own client and timeout.
func NewHTTPUploader(url, field string, timeout time.Duration, logger *slog.Logger) *HTTPUploader {
	if field == "" {
		field = "file"
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &HTTPUploader{URL: url, Field: field, Client: &http.Client{Timeout: timeout}, Logger: logger}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload streams the file through a pipe so large files are never buffered
// whole in memory.
func (u *HTTPUploader) Upload(ctx context.Context, f File) (string, error) {
	if f.Open == nil {
		return "", fmt.Errorf("%w: file %q has no content", ErrUpload, f.Name)
	}
	src, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("%w: open %q: %v", ErrUpload, f.Name, err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		defer src.Close() //nolint:errcheck // read side
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(u.Field), quoteEscaper.Replace(f.Name)))
		h.Set("Content-Type", f.ContentType)
		part, err := mw.CreatePart(h)
		if err == nil {
			_, err = io.Copy(part, src)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err) //nolint:errcheck // nil closes normally
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.URL, pr)
	if err != nil {
		pr.Close() //nolint:errcheck // unblock writer
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	client := u.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		pr.Close() //nolint:errcheck // unblock writer
		if u.Logger != nil {
			u.Logger.Error("resume upload", "error", err)
		}
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if u.Logger != nil {
			u.Logger.Error("resume upload", "status", resp.StatusCode)
		}
		return "", fmt.Errorf("%w: HTTP %d", ErrUpload, resp.StatusCode)
	}
	var out uploadResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: decode response: %v", ErrUpload, err)
	}
	if u.Logger != nil {
		u.Logger.Info("resume uploaded", "name", f.Name, "size", f.Size, "url", out.URL)
	}
	return out.URL, nil
}
