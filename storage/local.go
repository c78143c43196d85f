package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// sniffLen is how many leading bytes are used for content detection.
const sniffLen = 3072

var allowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// FileRef points at a stored file.
type FileRef struct {
	Path        string // filesystem path
	URL         string // public URL
	Size        int64
	ContentType string
}

// FileStore accepts uploaded files and removes them again.
type FileStore interface {
	Save(ctx context.Context, field string, fh *multipart.FileHeader) (FileRef, error)
	Remove(ref FileRef) error
}

// LocalStore writes uploads below Root in dated directories and serves them from PublicBase.
type LocalStore struct {
	Root       string
	PublicBase string
	Prefix     string
	MaxSize    int64
	now        func() time.Time
}

// NewLocalStore creates a LocalStore writing to root/prefix/YYYY/MM/DD.
func NewLocalStore(root, publicBase, prefix string, maxSize int64) *LocalStore {
	return &LocalStore{
		Root:       root,
		PublicBase: strings.TrimRight(publicBase, "/"),
		Prefix:     prefix,
		MaxSize:    maxSize,
		now:        time.Now,
	}
}

// Save stores the file of the given form field. A nil header is reported as a missing file.
func (s *LocalStore) Save(ctx context.Context, field string, fh *multipart.FileHeader) (FileRef, error) {
	if fh == nil {
		return FileRef{}, &UploadError{Code: UploadMissing, Field: field, Msg: "file is required"}
	}
	if s.MaxSize > 0 && fh.Size > s.MaxSize {
		return FileRef{}, s.tooLarge(field)
	}
	if err := ctx.Err(); err != nil {
		return FileRef{}, err
	}

	src, err := fh.Open()
	if err != nil {
		return FileRef{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return FileRef{}, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return FileRef{}, &UploadError{Code: UploadMissing, Field: field, Msg: "file is empty"}
	}

	mt := mimetype.Detect(head)
	if !mimetype.EqualsAny(mt.String(), allowedTypes...) {
		return FileRef{}, &UploadError{Code: UploadUnsupportedType, Field: field, Msg: "unsupported file type " + mt.String()}
	}

	now := s.now()
	relDir := path.Join(s.Prefix, now.Format("2006"), now.Format("01"), now.Format("02"))
	dir := filepath.Join(s.Root, filepath.FromSlash(relDir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return FileRef{}, fmt.Errorf("create upload directory: %w", err)
	}

	name := uuid.NewString() + mt.Extension()
	dst := filepath.Join(dir, name)
	out, err := os.Create(dst)
	if err != nil {
		return FileRef{}, fmt.Errorf("create file: %w", err)
	}

	// Enforce the size limit even when the header lies about it
	r := io.MultiReader(bytes.NewReader(head), src)
	var lr io.Reader = r
	if s.MaxSize > 0 {
		lr = &io.LimitedReader{R: r, N: s.MaxSize + 1}
	}
	written, err := io.Copy(out, lr)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return FileRef{}, fmt.Errorf("write file: %w", err)
	}
	if s.MaxSize > 0 && written > s.MaxSize {
		_ = os.Remove(dst)
		return FileRef{}, s.tooLarge(field)
	}

	return FileRef{
		Path:        dst,
		URL:         s.PublicBase + "/" + path.Join(relDir, name),
		Size:        written,
		ContentType: mt.String(),
	}, nil
}

// Remove deletes a stored file. Removing a file that is already gone is not an error.
func (s *LocalStore) Remove(ref FileRef) error {
	if ref.Path == "" {
		return nil
	}
	if err := os.Remove(ref.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", ref.Path, err)
	}
	return nil
}

func (s *LocalStore) tooLarge(field string) error {
	return &UploadError{
		Code:  UploadTooLarge,
		Field: field,
		Msg:   fmt.Sprintf("file size exceeds %dMB", s.MaxSize/(1024*1024)),
	}
}
