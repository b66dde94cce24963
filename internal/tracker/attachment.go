package tracker

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// DefaultAttachmentLimit is the largest file ReadAttachment accepts by default
const DefaultAttachmentLimit int64 = 2 << 20

// ReadAttachment reads a file into an Attachment. Files larger than limit
// bytes are rejected with ErrAttachmentTooLarge; limit <= 0 means
// DefaultAttachmentLimit.
func ReadAttachment(path string, limit int64) (*Attachment, error) {
	if limit <= 0 {
		limit = DefaultAttachmentLimit
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening attachment: %w", err)
	}
	defer f.Close()

	// read one byte past the limit to detect oversized files without
	// trusting Stat on special files
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading attachment: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrAttachmentTooLarge, filepath.Base(path), limit)
	}

	return NewAttachment(filepath.Base(path), data), nil
}

// NewAttachment wraps data, detecting its MIME type from the name and then
// from the content
func NewAttachment(name string, data []byte) *Attachment {
	mt := mime.TypeByExtension(filepath.Ext(name))
	if mt == "" {
		mt = http.DetectContentType(data)
	}
	return &Attachment{
		Name: name,
		MIME: mt,
		Size: int64(len(data)),
		Data: data,
	}
}
