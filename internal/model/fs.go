package model

import "github.com/deppfellow/webbrayns-backend/internal/errs"

// PathRequest is the payload of the directory listing and file read
// endpoints. A relative path is taken from the sandbox root.
type PathRequest struct {
	Path *string `json:"path"`
}

func (r *PathRequest) Validate() error {
	if r.Path == nil {
		return errs.BadInput("Missing 'path' attribute!")
	}
	return nil
}
