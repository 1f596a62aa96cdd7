package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_PutOpenRemove(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/files/")
	require.NoError(t, err)

	obj, err := s.Put(ctx, "payslips/c1/2024-02/p1.pdf", strings.NewReader("payslip"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, Object{Key: "payslips/c1/2024-02/p1.pdf", Size: 7, ContentType: "application/pdf"}, obj)

	stat, err := s.Stat(ctx, obj.Key)
	require.NoError(t, err)
	assert.EqualValues(t, 7, stat.Size)
	assert.Equal(t, "application/pdf", stat.ContentType)

	rc, err := s.Open(ctx, obj.Key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "payslip", string(body))

	url, err := s.URL(obj.Key)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/payslips/c1/2024-02/p1.pdf", url)

	require.NoError(t, s.Remove(ctx, obj.Key))
	require.NoError(t, s.Remove(ctx, obj.Key))

	_, err = s.Open(ctx, obj.Key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
	_, err = s.Stat(ctx, obj.Key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStorage_PutOverwritesWithoutLeftovers(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewLocalStorage(root, "http://localhost:8080/files")
	require.NoError(t, err)

	_, err = s.Put(ctx, "doc.pdf", strings.NewReader("first version"), "application/pdf")
	require.NoError(t, err)
	_, err = s.Put(ctx, "doc.pdf", strings.NewReader("v2"), "application/pdf")
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(root, "doc.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(raw))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLocalStorage_KeysStayBelowRoot(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/files")
	require.NoError(t, err)

	obj, err := s.Put(ctx, "../../etc/evil.pdf", strings.NewReader("x"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "etc/evil.pdf", obj.Key)

	_, err = s.Put(ctx, "/", strings.NewReader("x"), "application/pdf")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = s.URL("")
	assert.ErrorIs(t, err, ErrInvalidKey)
}
