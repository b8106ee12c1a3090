package filestorage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	url, err := ls.Save(uploadHeader(t, "Brief.PDF", "hello"), "../assignments")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/assignments/"))
	assert.True(t, strings.HasSuffix(url, ".pdf"))
	assert.True(t, ls.Owns(url))

	stored := filepath.Join(dir, "assignments", filepath.Base(url))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, ls.Delete(url))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))

	// idempotent
	assert.NoError(t, ls.Delete(url))
}

func TestLocalStorage_RejectsForeignURLs(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)

	assert.False(t, ls.Owns("https://example.com/file.pdf"))
	assert.False(t, ls.Owns("http://localhost:8080/uploads/../secrets"))
	assert.ErrorIs(t, ls.Delete("https://example.com/file.pdf"), ErrNotManaged)
}
