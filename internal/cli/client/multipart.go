package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Upload is an image file sent alongside a multipart request
type Upload struct {
	Filename string
	Data     []byte
}

// ReadUpload loads a file from disk for upload
func ReadUpload(path string) (*Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	return &Upload{Filename: filepath.Base(path), Data: data}, nil
}

// multipartRequest builds a request with an optional JSON "data" part and an
// optional file part.
func multipartRequest(method, path string, data any, fileField string, upload *Upload) (request, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			return request{}, fmt.Errorf("failed to marshal request: %w", err)
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="data"`)
		header.Set("Content-Type", "application/json")
		part, err := writer.CreatePart(header)
		if err != nil {
			return request{}, fmt.Errorf("failed to create data part: %w", err)
		}
		if _, err := part.Write(payload); err != nil {
			return request{}, fmt.Errorf("failed to write data part: %w", err)
		}
	}

	if upload != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, upload.Filename))
		header.Set("Content-Type", http.DetectContentType(upload.Data))
		part, err := writer.CreatePart(header)
		if err != nil {
			return request{}, fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := part.Write(upload.Data); err != nil {
			return request{}, fmt.Errorf("failed to write file part: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return request{}, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return request{
		method:      method,
		path:        path,
		body:        buf.Bytes(),
		contentType: writer.FormDataContentType(),
	}, nil
}

// checkID rejects anything that is not a UUID before it reaches a URL path
func checkID(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", fmt.Errorf("%w %q", ErrInvalidID, id)
	}
	return parsed.String(), nil
}
