package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/jhoicas/docs-api/internal/application/document"
	"github.com/jhoicas/docs-api/internal/domain"
)

var _ document.BlobStore = (*LocalStore)(nil)

// LocalStore guarda los blobs como archivos planos bajo el directorio de subidas.
type LocalStore struct {
	fs afero.Fs
}

// NewLocalStore crea el directorio raíz si no existe y restringe el acceso a él (BasePathFs).
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("crear directorio de subidas: %w", err)
	}
	return NewLocalStoreFs(afero.NewBasePathFs(afero.NewOsFs(), root)), nil
}

// NewLocalStoreFs construye el store sobre un afero.Fs arbitrario (MemMapFs en tests).
func NewLocalStoreFs(fsys afero.Fs) *LocalStore {
	return &LocalStore{fs: fsys}
}

// Put escribe el blob; una clave existente no se sobreescribe.
func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader, _ int64, _ string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	f, err := s.fs.OpenFile(key, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return fmt.Errorf("crear blob %s: %w", key, err)
	}
	if _, err := io.Copy(f, readerWithContext(ctx, r)); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(key)
		return fmt.Errorf("escribir blob %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(key)
		return fmt.Errorf("cerrar blob %s: %w", key, err)
	}
	return nil
}

func (s *LocalStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	f, err := s.fs.Open(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("abrir blob %s: %w", key, err)
	}
	return f, nil
}

// Delete es idempotente: borrar una clave inexistente no es error.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := s.fs.Remove(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("borrar blob %s: %w", key, err)
	}
	return nil
}

// checkKey las claves son planas (uuid + extensión); nunca rutas.
func checkKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: clave de blob %q", domain.ErrInvalidFilename, key)
	}
	return nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}
