// Package filestore keeps uploaded expediente files on the local disk.
package filestore

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
)

const PDFContentType = "application/pdf"

var (
	ErrNotPDF   = errors.New("el archivo debe ser un PDF")
	ErrTooLarge = errors.New("el archivo excede el tamaño máximo permitido")
)

// LocalStore saves files under root, in one directory per year/month.
type LocalStore struct {
	root    string
	maxSize int64
}

func NewLocalStore(conf core.StorageConfig) *LocalStore {
	return &LocalStore{root: conf.MediaDir, maxSize: conf.MaxUploadSize}
}

// SavePDF stores the content of r and returns its path relative to the store root.
// The content must start with the PDF magic number and fit in the configured size.
func (s *LocalStore) SavePDF(r io.Reader) (string, error) {
	limited := io.LimitReader(r, s.maxSize+1)
	head := make([]byte, 512)
	n, err := io.ReadFull(limited, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		if err == io.EOF {
			return "", ErrNotPDF
		}
		return "", errors.Wrap(err, "reading upload")
	}
	head = head[:n]
	if !bytes.HasPrefix(head, []byte("%PDF-")) || http.DetectContentType(head) != PDFContentType {
		return "", ErrNotPDF
	}

	now := time.Now().UTC()
	rel := filepath.Join("expedientes", now.Format("2006"), now.Format("01"), uuid.New().String()+".pdf")
	full := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", errors.Wrap(err, "creating upload dir")
	}

	f, err := os.Create(full)
	if err != nil {
		return "", errors.Wrap(err, "creating file")
	}
	written, err := io.Copy(f, io.MultiReader(bytes.NewReader(head), limited))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && written > s.maxSize {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(full)
		if err == ErrTooLarge {
			return "", err
		}
		return "", errors.Wrap(err, "writing file")
	}
	return filepath.ToSlash(rel), nil
}

// Open opens a stored file; it refuses paths escaping the store root.
func (s *LocalStore) Open(rel string) (*os.File, error) {
	full, err := s.path(rel)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// Delete removes a stored file; deleting a missing file is not an error.
func (s *LocalStore) Delete(rel string) error {
	if rel == "" {
		return nil
	}
	full, err := s.path(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "deleting file")
	}
	return nil
}

func (s *LocalStore) path(rel string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	root := filepath.Clean(s.root) + string(filepath.Separator)
	if !strings.HasPrefix(full, root) {
		return "", errors.Errorf("invalid path %q", rel)
	}
	return full, nil
}
