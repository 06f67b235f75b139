package app

import (
	"fmt"
	"time"

	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"crateview/app/archive"
	"crateview/app/metrics"
)

// sniffAllowed is the set of media types uploads may sniff as. Compressed
// tarballs sniff as their compression wrapper, not as tar.
var sniffAllowed = map[string]bool{
	"zip": true,
	"tar": true,
	"gz":  true,
	"xz":  true,
	"zst": true,
}

// UploadArchive validates and walks raw archive bytes into a new upload.
// The name must carry a recognized container extension and the content must
// sniff as a matching media type; mismatches are rejected before any
// decoding happens.
func (a *App) UploadArchive(name string, data []byte, uploadedBy string) (UploadSummary, error) {
	if err := a.validateUpload(name, data); err != nil {
		metrics.RecordUpload("rejected", 0)
		return UploadSummary{}, err
	}

	result, err := archive.Walk(name, data, uploadedBy)
	if err != nil {
		metrics.RecordUpload("failed", 0)
		return UploadSummary{}, err
	}

	hash, err := HashBytes(data)
	if err != nil {
		metrics.RecordUpload("failed", 0)
		return UploadSummary{}, err
	}

	up := &Upload{
		ID:         newID(),
		Name:       name,
		Hash:       hash,
		Root:       result.Root,
		UploadedAt: time.Now(),
		Entries:    result.Entries,
		Skipped:    result.Skipped,
		Dropped:    result.Dropped,
	}

	a.mu.Lock()
	a.uploads[up.ID] = up
	a.mu.Unlock()

	metrics.RecordUpload("accepted", len(data))
	metrics.RecordWalk(archive.CountNodes(up.Root), up.Skipped, up.Dropped)
	a.logger.Info("archive uploaded",
		zap.String("uploadId", up.ID),
		zap.String("name", name),
		zap.Int("bytes", len(data)),
		zap.Int("entries", up.Entries),
		zap.Int("skipped", up.Skipped),
		zap.Int("dropped", up.Dropped))

	return summarizeUpload(up), nil
}

func (a *App) validateUpload(name string, data []byte) error {
	if name == "" {
		return fmt.Errorf("missing archive name")
	}
	if !archive.IsArchiveName(name) {
		return fmt.Errorf("%w: %s", archive.ErrUnsupportedFile, name)
	}
	if limit := int64(a.settings.MaxUploadSizeMB) * 1024 * 1024; limit > 0 && int64(len(data)) > limit {
		return fmt.Errorf("archive too large: %d bytes exceeds %d MB limit", len(data), a.settings.MaxUploadSizeMB)
	}

	// Content sniff. Unknown content falls through to the decoder, which
	// reports a proper decode error with context.
	kind, _ := filetype.Match(data)
	if kind != filetype.Unknown && !sniffAllowed[kind.Extension] {
		return fmt.Errorf("%w: content is %s, not an archive", archive.ErrUnsupportedFile, kind.MIME.Value)
	}
	return nil
}
