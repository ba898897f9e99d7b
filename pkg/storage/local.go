package stores

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps blobs under a base directory. Object keys map straight to
// relative paths, so recordings/foo.webm lands in <base>/recordings/foo.webm.
type LocalStore struct {
	base string
}

func NewLocalStore(base string) *LocalStore {
	return &LocalStore{base: base}
}

func (l *LocalStore) path(key string) string {
	return filepath.Join(l.base, filepath.FromSlash(strings.TrimPrefix(key, "/")))
}

func (l *LocalStore) Write(key string, r io.Reader, size int64, contentType string) error {
	p := l.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, r)
	return err
}

func (l *LocalStore) Read(key string) (io.ReadCloser, int64, error) {
	f, err := os.Open(l.path(key))
	if err != nil {
		return nil, 0, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, st.Size(), nil
}

func (l *LocalStore) Delete(key string) error {
	return os.Remove(l.path(key))
}

func (l *LocalStore) Exists(key string) (bool, error) {
	_, err := os.Stat(l.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (l *LocalStore) PublicURL(key string) string {
	return "/" + strings.TrimPrefix(key, "/")
}
