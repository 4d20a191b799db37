// Package upload persists multipart file attachments on local disk and hands
// out storage-relative paths. The public site serves them under /storage/,
// so a stored path like "products/3f2a...-brochure.pdf" is rendered by
// prefixing the fixed public storage base.
package upload

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tracnorth/site/internal/config"
	"github.com/tracnorth/site/internal/domain"
)

// Storage saves and removes uploaded files under a single root directory.
type Storage struct {
	dir        string
	maxBytes   int64
	allowedExt map[string]struct{}
}

// New creates a Storage rooted at cfg.Dir, creating the directory if needed.
// An empty allowed-extension list accepts any extension.
func New(cfg *config.UploadConfig) (*Storage, error) {
	if cfg == nil {
		return nil, errors.New("upload config is nil")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory %q: %w", cfg.Dir, err)
	}

	allowed := make(map[string]struct{}, len(cfg.AllowedExt))
	for _, ext := range cfg.AllowedExt {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	maxBytes := int64(cfg.MaxSizeMB) << 20
	return &Storage{dir: cfg.Dir, maxBytes: maxBytes, allowedExt: allowed}, nil
}

// Dir returns the storage root, for mounting the /storage file route.
func (s *Storage) Dir() string { return s.dir }

// Save stores the uploaded file under subdir with a content-hash prefix and
// returns its storage-relative path. Validation failures (size, extension)
// surface as domain validation errors so they can be shown next to the
// originating form field.
func (s *Storage) Save(fh *multipart.FileHeader, subdir string) (string, error) {
	if fh == nil {
		return "", domain.NewAppError(domain.CodeValidation, "no file provided", nil)
	}
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", domain.NewAppError(domain.CodeValidation,
			fmt.Sprintf("file exceeds the maximum size of %d MB", s.maxBytes>>20), nil)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if len(s.allowedExt) > 0 {
		if _, ok := s.allowedExt[ext]; !ok {
			return "", domain.NewAppError(domain.CodeValidation,
				fmt.Sprintf("file type %q is not allowed", ext), nil)
		}
	}

	src, err := fh.Open()
	if err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "open uploaded file", err)
	}
	defer src.Close()

	h := sha256.New()
	if _, err := io.Copy(h, src); err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "hash uploaded file", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "rewind uploaded file", err)
	}

	name := hex.EncodeToString(h.Sum(nil))[:16] + ext
	rel := path.Join(subdir, name)

	dstDir := filepath.Join(s.dir, filepath.FromSlash(subdir))
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "create upload subdirectory", err)
	}

	dst, err := os.Create(filepath.Join(s.dir, filepath.FromSlash(rel)))
	if err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "create stored file", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "write stored file", err)
	}

	return rel, nil
}

// Remove deletes a stored file by its storage-relative path. Missing files
// are not an error; a cleaned-up reference must never block the record
// mutation that triggered it. Paths escaping the storage root are rejected.
func (s *Storage) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	clean := path.Clean("/" + rel)[1:] // strip any traversal
	if clean == "" || clean == "." {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(clean)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stored file %q: %w", rel, err)
	}
	return nil
}

// FileField resolves the keep/replace/remove protocol for one multipart form
// field against the currently stored path:
//
//   - a new file under the field name replaces the stored one (which is
//     deleted after the new file is safely written)
//   - form value "remove_<field>" = "true" removes the stored file
//   - neither keeps the stored path unchanged
//
// It returns the path to persist on the record.
func (s *Storage) FileField(c *gin.Context, field, subdir, existing string) (string, error) {
	if c.PostForm("remove_"+field) == "true" {
		if err := s.Remove(existing); err != nil {
			return "", domain.NewAppError(domain.CodeInternal, "remove stored file", err)
		}
		return "", nil
	}

	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return existing, nil
		}
		return "", domain.NewAppError(domain.CodeValidation, "malformed file field "+field, err)
	}

	rel, err := s.Save(fh, subdir)
	if err != nil {
		return "", err
	}
	if existing != "" && existing != rel {
		if err := s.Remove(existing); err != nil {
			return "", domain.NewAppError(domain.CodeInternal, "remove replaced file", err)
		}
	}
	return rel, nil
}
