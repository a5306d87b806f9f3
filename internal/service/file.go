package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/deppfellow/webbrayns-backend/internal/errs"
	"github.com/deppfellow/webbrayns-backend/internal/sandbox"
)

// FileService exposes the sandboxed filesystem.
type FileService struct {
	sandbox     *sandbox.Sandbox
	maxReadSize int64
}

func NewFileService(sb *sandbox.Sandbox, maxReadSize int64) *FileService {
	return &FileService{sandbox: sb, maxReadSize: maxReadSize}
}

// DirEntry is one child of a listed directory. Size is nil for
// sub-directories.
type DirEntry struct {
	Name string `json:"name"`
	Size *int64 `json:"size,omitempty"`
}

type DirListing struct {
	Path     string     `json:"path"`
	Children []DirEntry `json:"children"`
}

type RootInfo struct {
	Root string `json:"root"`
}

// Root returns the directory every path is resolved against.
func (s *FileService) Root() RootInfo {
	return RootInfo{Root: s.sandbox.Root()}
}

// ListDir lists a directory. Symlinks are followed for the type and the
// size, so a dangling one fails the whole listing.
func (s *FileService) ListDir(_ context.Context, path string) (*DirListing, error) {
	dir, err := s.sandbox.ResolveDir(path)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errs.Unexpected(err)
	}

	children := make([]DirEntry, 0, len(entries))
	for _, entry := range entries {
		info, err := os.Stat(dir + entry.Name())
		if err != nil {
			return nil, errs.Unexpected(err)
		}

		child := DirEntry{Name: entry.Name()}
		if !info.IsDir() {
			size := info.Size()
			child.Size = &size
		}
		children = append(children, child)
	}

	return &DirListing{Path: dir, Children: children}, nil
}

// ReadFile returns the content of a text file.
func (s *FileService) ReadFile(_ context.Context, path string) (string, error) {
	abs, err := s.sandbox.Resolve(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err != nil || !info.Mode().IsRegular() {
		return "", errs.NotAFile(abs)
	}
	if info.Size() > s.maxReadSize {
		return "", errs.Unexpected(fmt.Errorf("%s is %d bytes, above the %d bytes read limit", abs, info.Size(), s.maxReadSize))
	}

	f, err := os.Open(abs)
	if err != nil {
		return "", errs.Unexpected(err)
	}
	defer f.Close()

	// The file may have grown since Stat.
	content, err := io.ReadAll(io.LimitReader(f, s.maxReadSize+1))
	if err != nil {
		return "", errs.Unexpected(err)
	}
	if int64(len(content)) > s.maxReadSize {
		return "", errs.Unexpected(fmt.Errorf("%s is above the %d bytes read limit", abs, s.maxReadSize))
	}
	if !utf8.Valid(content) {
		return "", errs.Unexpected(fmt.Errorf("%s is not a UTF-8 text file", abs))
	}

	return string(content), nil
}
