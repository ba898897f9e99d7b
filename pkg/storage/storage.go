package stores

import (
	"io"

	"suraksha/pkg/util"
)

// Store is the blob-storage boundary. Recordings are written once and read
// back by their object key; keys look like recordings/emergency-audio-<ms>.webm.
type Store interface {
	Write(key string, r io.Reader, size int64, contentType string) error
	Read(key string) (io.ReadCloser, int64, error)
	Delete(key string) error
	Exists(key string) (bool, error)
	PublicURL(key string) string
}

// NewStore picks the backend from STORAGE_TYPE. MinIO in production, the
// local filesystem for development and tests.
func NewStore() Store {
	switch util.GetEnv("STORAGE_TYPE") {
	case "minio":
		return NewMinioStore()
	}
	return NewLocalStore(util.GetEnvDefault("LOCAL_DATA_PATH", "data"))
}
