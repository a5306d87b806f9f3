package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deppfellow/webbrayns-backend/internal/errs"
	"github.com/deppfellow/webbrayns-backend/internal/sandbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireRPCCode(t *testing.T, err error, code int) *errs.RPCError {
	t.Helper()
	var rpcErr *errs.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, code, rpcErr.Code, rpcErr.Text)
	return rpcErr
}

func newFileService(t *testing.T, maxReadSize int64) (*FileService, string) {
	t.Helper()
	root := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "proj", "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "proj", "b.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "proj", "a.txt"), []byte(""), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(root, "proj", "sub"), filepath.Join(root, "proj", "link")))

	return NewFileService(sandbox.New(root), maxReadSize), root + "/"
}

func TestFileServiceRoot(t *testing.T) {
	svc, root := newFileService(t, 1024)
	assert.Equal(t, RootInfo{Root: root}, svc.Root())
}

func TestListDir(t *testing.T) {
	svc, root := newFileService(t, 1024)

	listing, err := svc.ListDir(context.Background(), "proj")
	require.NoError(t, err)
	assert.Equal(t, root+"proj/", listing.Path)

	names := make([]string, 0, len(listing.Children))
	sizes := map[string]*int64{}
	for _, child := range listing.Children {
		names = append(names, child.Name)
		sizes[child.Name] = child.Size
	}
	assert.Equal(t, []string{"a.txt", "b.txt", "link", "sub"}, names)

	require.NotNil(t, sizes["b.txt"])
	assert.Equal(t, int64(5), *sizes["b.txt"])
	require.NotNil(t, sizes["a.txt"])
	assert.Equal(t, int64(0), *sizes["a.txt"])
	assert.Nil(t, sizes["sub"])
	assert.Nil(t, sizes["link"], "symlinks to directories are directories")
}

func TestListDirDanglingSymlink(t *testing.T) {
	svc, root := newFileService(t, 1024)
	require.NoError(t, os.Symlink(root+"missing", root+"proj/dangling"))

	_, err := svc.ListDir(context.Background(), "proj")
	requireRPCCode(t, err, errs.CodeUnexpected)
}

func TestListDirRootAndEmpty(t *testing.T) {
	svc, root := newFileService(t, 1024)

	listing, err := svc.ListDir(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, root, listing.Path)
	require.Len(t, listing.Children, 1)

	listing, err = svc.ListDir(context.Background(), "proj/sub")
	require.NoError(t, err)
	assert.NotNil(t, listing.Children)
	assert.Empty(t, listing.Children)
}

func TestListDirErrors(t *testing.T) {
	svc, _ := newFileService(t, 1024)

	_, err := svc.ListDir(context.Background(), "../../etc")
	requireRPCCode(t, err, errs.CodePathEscape)

	_, err = svc.ListDir(context.Background(), "nope")
	requireRPCCode(t, err, errs.CodeUnexpected)

	_, err = svc.ListDir(context.Background(), "proj/b.txt")
	requireRPCCode(t, err, errs.CodeUnexpected)
}

func TestReadFile(t *testing.T) {
	svc, root := newFileService(t, 1024)

	content, err := svc.ReadFile(context.Background(), "proj/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", content)

	content, err = svc.ReadFile(context.Background(), root+"proj/./sub/../a.txt")
	require.NoError(t, err)
	assert.Equal(t, "", content)
}

func TestReadFileErrors(t *testing.T) {
	svc, root := newFileService(t, 4)

	_, err := svc.ReadFile(context.Background(), "../../etc/passwd")
	requireRPCCode(t, err, errs.CodePathEscape)

	rpcErr := requireRPCCode(t, func() error { _, err := svc.ReadFile(context.Background(), "proj/sub"); return err }(), errs.CodeNotAFile)
	assert.Equal(t, "Not a file: "+root+"proj/sub", rpcErr.Text)

	_, err = svc.ReadFile(context.Background(), "proj/none.txt")
	requireRPCCode(t, err, errs.CodeNotAFile)

	for _, path := range []string{"", ".", "proj/..", root} {
		_, err = svc.ReadFile(context.Background(), path)
		requireRPCCode(t, err, errs.CodePathEscape)
	}

	rpcErr = requireRPCCode(t, func() error { _, err := svc.ReadFile(context.Background(), "proj/b.txt"); return err }(), errs.CodeUnexpected)
	assert.True(t, strings.Contains(rpcErr.Text, "read limit"))
}

func TestReadFileBinary(t *testing.T) {
	svc, root := newFileService(t, 1024)
	require.NoError(t, os.WriteFile(root+"proj/blob.bin", []byte{0xff, 0xfe, 0x00}, 0o644))

	_, err := svc.ReadFile(context.Background(), "proj/blob.bin")
	requireRPCCode(t, err, errs.CodeUnexpected)
}
