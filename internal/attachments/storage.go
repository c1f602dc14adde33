package attachments

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/utulok/shelter-backend/pkg/errors"
)

// allowedImageTypes maps accepted upload content types to file extensions.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// DiskStorage writes uploads under a local directory served as static
// files at /uploads/.
type DiskStorage struct {
	dir string
}

// NewDiskStorage ensures the upload directory exists.
func NewDiskStorage(dir string) (*DiskStorage, error) {
	if dir == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "uploads dir required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create uploads dir")
	}
	return &DiskStorage{dir: dir}, nil
}

// Dir returns the root upload directory.
func (s *DiskStorage) Dir() string {
	return s.dir
}

// Save streams an upload to disk under a generated unique name and
// returns the stored file name and the public URL path.
func (s *DiskStorage) Save(contentType string, src io.Reader) (string, string, error) {
	ext, ok := allowedImageTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "unsupported image type")
	}

	fileName := uuid.NewString() + ext
	path := filepath.Join(s.dir, fileName)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create upload file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write upload file")
	}

	return fileName, fmt.Sprintf("/uploads/%s", fileName), nil
}

// Remove deletes a stored file. A missing file is not an error.
func (s *DiskStorage) Remove(fileName string) error {
	if fileName == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(fileName)))
	if err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove upload file")
	}
	return nil
}
