package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tracnorth/site/internal/config"
	"github.com/tracnorth/site/internal/domain"
)

func newTestStorage(t *testing.T, allowedExt []string, maxSizeMB int) *Storage {
	t.Helper()
	s, err := New(&config.UploadConfig{
		Dir:        t.TempDir(),
		MaxSizeMB:  maxSizeMB,
		AllowedExt: allowedExt,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// multipartRequest builds a multipart form with optional file and values.
func multipartRequest(t *testing.T, field, filename string, content []byte, values map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := fw.Write(content); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	for k, v := range values {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/x", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func testContext(req *http.Request) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	return c
}

func formFile(t *testing.T, req *http.Request, field string) *multipart.FileHeader {
	t.Helper()
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse form: %v", err)
	}
	fhs := req.MultipartForm.File[field]
	if len(fhs) == 0 {
		t.Fatalf("no file for field %q", field)
	}
	return fhs[0]
}

func TestSave_StoresUnderSubdirWithHashName(t *testing.T) {
	s := newTestStorage(t, []string{".pdf"}, 10)
	req := multipartRequest(t, "brochure", "specs.pdf", []byte("pdf-bytes"), nil)

	rel, err := s.Save(formFile(t, req, "brochure"), "products")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(rel, "products/") || !strings.HasSuffix(rel, ".pdf") {
		t.Errorf("rel=%q; want products/<hash>.pdf", rel)
	}

	stored, err := os.ReadFile(filepath.Join(s.Dir(), filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(stored) != "pdf-bytes" {
		t.Errorf("stored content=%q", stored)
	}
}

func TestSave_RejectsDisallowedExtension(t *testing.T) {
	s := newTestStorage(t, []string{".jpg", ".png"}, 10)
	req := multipartRequest(t, "image", "malware.exe", []byte("x"), nil)

	_, err := s.Save(formFile(t, req, "image"), "blogs")
	if !domain.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSave_RejectsOversizedFile(t *testing.T) {
	s := newTestStorage(t, nil, 1)
	req := multipartRequest(t, "image", "big.jpg", bytes.Repeat([]byte("a"), 2<<20), nil)

	_, err := s.Save(formFile(t, req, "image"), "blogs")
	if !domain.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestRemove_MissingFileIsNotAnError(t *testing.T) {
	s := newTestStorage(t, nil, 10)

	if err := s.Remove("blogs/never-existed.jpg"); err != nil {
		t.Errorf("Remove of missing file: %v", err)
	}
}

func TestRemove_RejectsTraversal(t *testing.T) {
	s := newTestStorage(t, nil, 10)

	outside := filepath.Join(filepath.Dir(s.Dir()), "victim.txt")
	if err := os.WriteFile(outside, []byte("keep me"), 0o644); err != nil {
		t.Fatalf("write victim: %v", err)
	}

	_ = s.Remove("../victim.txt")

	if _, err := os.Stat(outside); err != nil {
		t.Error("traversal path escaped the storage root")
	}
}

func TestFileField_KeepReplaceRemove(t *testing.T) {
	s := newTestStorage(t, []string{".jpg"}, 10)

	// Replace: a fresh upload takes over and the old file is deleted.
	c := testContext(multipartRequest(t, "image", "one.jpg", []byte("first"), nil))
	first, err := s.FileField(c, "image", "blogs", "")
	if err != nil {
		t.Fatalf("FileField initial: %v", err)
	}

	c = testContext(multipartRequest(t, "image", "two.jpg", []byte("second"), nil))
	second, err := s.FileField(c, "image", "blogs", first)
	if err != nil {
		t.Fatalf("FileField replace: %v", err)
	}
	if second == first {
		t.Fatal("expected a new stored path for the replacement")
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), filepath.FromSlash(first))); !os.IsNotExist(err) {
		t.Error("replaced file should be deleted")
	}

	// Keep: no file part and no remove flag leaves the path unchanged.
	c = testContext(multipartRequest(t, "image", "", nil, map[string]string{"title": "x"}))
	kept, err := s.FileField(c, "image", "blogs", second)
	if err != nil {
		t.Fatalf("FileField keep: %v", err)
	}
	if kept != second {
		t.Errorf("kept=%q; want %q", kept, second)
	}

	// Remove: the flag clears the path and deletes the file.
	c = testContext(multipartRequest(t, "image", "", nil, map[string]string{"remove_image": "true"}))
	removed, err := s.FileField(c, "image", "blogs", second)
	if err != nil {
		t.Fatalf("FileField remove: %v", err)
	}
	if removed != "" {
		t.Errorf("removed=%q; want empty", removed)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), filepath.FromSlash(second))); !os.IsNotExist(err) {
		t.Error("removed file should be deleted")
	}
}

func TestFileField_NonMultipartKeepsExisting(t *testing.T) {
	s := newTestStorage(t, nil, 10)

	req := httptest.NewRequest(http.MethodPut, "/x", strings.NewReader(`{"title":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	c := testContext(req)

	got, err := s.FileField(c, "image", "blogs", "blogs/existing.jpg")
	if err != nil {
		t.Fatalf("FileField: %v", err)
	}
	if got != "blogs/existing.jpg" {
		t.Errorf("got=%q; want existing path kept", got)
	}
}
