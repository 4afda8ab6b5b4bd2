// Package storage persists uploaded videos so they can be replayed
// through the offline frame-extraction pipeline.
package storage

import "io"

// UploadInfo carries the client-supplied metadata for an upload. The
// original filename is used only for its extension; stored names are
// generated.
type UploadInfo struct {
	OriginalName string
	ContentType  string
	Size         int64
}

type Storage interface {
	// SaveUpload stores the stream and returns the generated filename.
	SaveUpload(r io.Reader, info UploadInfo) (string, error)
	Open(name string) (io.ReadSeekCloser, error)
	// Path resolves a stored name to an absolute path for tools that
	// need a real file on disk, such as ffmpeg.
	Path(name string) (string, error)
	Remove(name string) error
}
