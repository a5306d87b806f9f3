// Package sandbox resolves user supplied paths against a fixed root
// directory and rejects every path that would leave it.
//
// Resolution is purely lexical: "." and empty segments are dropped, ".."
// pops the last resolved segment. Symbolic links are not followed.
package sandbox

import (
	"strings"

	"github.com/deppfellow/webbrayns-backend/internal/errs"
)

// Sandbox confines paths to Root.
type Sandbox struct {
	root string
}

// New returns a Sandbox rooted at root. The root is normalized to the
// "/a/b/" form, so "/a/b", "/a//b/" and "/a/./b" are equivalent.
func New(root string) *Sandbox {
	segments := split(root)
	normalized := "/" + strings.Join(segments, "/")
	if len(segments) > 0 {
		normalized += "/"
	}
	return &Sandbox{root: normalized}
}

// Root returns the normalized root, always ending with "/".
func (s *Sandbox) Root() string {
	return s.root
}

// Resolve turns p into an absolute path strictly below the root.
//
// An empty p stands for the root and a p not starting with "/" is relative
// to the root. The returned path has no trailing slash and must start with
// the root, "/"-terminated, so the root itself is rejected.
func (s *Sandbox) Resolve(p string) (string, error) {
	return s.resolve(p, "")
}

// ResolveDir is Resolve with a trailing "/", the form directory listings
// report back to the client. The root itself is accepted.
func (s *Sandbox) ResolveDir(p string) (string, error) {
	return s.resolve(p, "/")
}

func (s *Sandbox) resolve(p, suffix string) (string, error) {
	path := p
	if path == "" {
		path = s.root
	} else if path[0] != '/' {
		path = s.root + path
	}

	var resolved []string
	for _, piece := range strings.Split(path, "/") {
		switch piece {
		case "", ".":
			continue
		case "..":
			if len(resolved) == 0 {
				return "", errs.PathEscape("Attempt to go outside of the ROOT!")
			}
			resolved = resolved[:len(resolved)-1]
		default:
			resolved = append(resolved, piece)
		}
	}

	absPath := "/" + strings.Join(resolved, "/")
	if len(resolved) > 0 {
		absPath += suffix
	}
	if !strings.HasPrefix(absPath, s.root) {
		return "", errs.PathEscape("%s is outside of %s", absPath, s.root)
	}
	return absPath, nil
}

func split(p string) []string {
	var out []string
	for _, piece := range strings.Split(p, "/") {
		if piece == "" || piece == "." {
			continue
		}
		if piece == ".." {
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
			continue
		}
		out = append(out, piece)
	}
	return out
}
