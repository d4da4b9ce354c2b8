package storage

import "context"

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectArchive captures the minimal operations the import path needs:
// keep a raw copy of every ingested file and let operators pull them
// back for audit.
type ObjectArchive interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key string, destPath string) error
	UploadObject(ctx context.Context, key string, data []byte) error
}

// noopArchive is used when archiving is disabled.
type noopArchive struct{}

// NewNoopArchive returns an archive that drops everything.
func NewNoopArchive() ObjectArchive {
	return &noopArchive{}
}

func (n *noopArchive) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	return nil, nil
}

func (n *noopArchive) DownloadObject(ctx context.Context, key string, destPath string) error {
	return nil
}

func (n *noopArchive) UploadObject(ctx context.Context, key string, data []byte) error {
	return nil
}
