// Package storage implements the attachment upload collaborator: files
// land on local disk under a generated name and come back as the
// {url, type, filename, size} descriptor messages embed.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"tutor-chat/domain"
)

// Disk stores attachments in a flat directory. The content type is
// detected from the bytes, never trusted from the client.
type Disk struct {
	dir     string
	baseURL string
}

func NewDisk(dir, baseURL string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("attachment dir: %w", err)
	}
	return &Disk{dir: dir, baseURL: baseURL}, nil
}

// Save writes the upload to disk and returns its descriptor. The stored
// name is a UUID plus the detected extension, so collisions and path
// traversal via the original filename are impossible.
func (d *Disk) Save(r io.Reader, originalName string) (domain.Attachment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Attachment{}, err
	}

	detected := mimetype.Detect(data)
	name := uuid.NewString() + detected.Extension()
	path := filepath.Join(d.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return domain.Attachment{}, err
	}

	return domain.Attachment{
		URL:      d.baseURL + "/" + name,
		Type:     detected.String(),
		Filename: filepath.Base(originalName),
		Size:     int64(len(data)),
	}, nil
}
