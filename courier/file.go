package courier

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jonnyholland/ComposableArchitecturePattern/api"
	"github.com/jonnyholland/ComposableArchitecturePattern/errors"
)

// File serves canned responses from a directory tree. For a request path
// /users/42 it tries, in order:
//
//	users/42.GET.json
//	users/42.json
//	users/42
//
// A request with no matching file fails like an HTTP 404. File is meant
// for tests, previews and offline development.
type File struct {
	fsys fs.FS
}

// NewFile creates a courier rooted at dir. An empty dir serves file://
// URLs from their absolute paths.
func NewFile(dir string) *File {
	if dir == "" {
		return &File{}
	}
	return &File{fsys: os.DirFS(dir)}
}

// NewFileFS creates a courier over an fs.FS.
func NewFileFS(fsys fs.FS) *File {
	return &File{fsys: fsys}
}

// Send implements Courier.
func (f *File) Send(ctx context.Context, req api.Request, _ string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Cancelled(err)
	}
	if req.URL == nil {
		return nil, errors.Network(fmt.Errorf("courier: request has no URL"))
	}

	for _, name := range candidates(req) {
		data, err := f.read(name)
		if err == nil {
			return data, nil
		}
		if !stderrors.Is(err, fs.ErrNotExist) && !stderrors.Is(err, fs.ErrInvalid) {
			return nil, errors.Network(err)
		}
	}

	return nil, errors.ClassifyStatusCode(404, nil).WithCause(
		fmt.Errorf("courier: no canned response for %s", req))
}

func (f *File) read(name string) ([]byte, error) {
	if f.fsys == nil {
		return os.ReadFile(filepath.FromSlash("/" + name))
	}
	return fs.ReadFile(f.fsys, name)
}

func candidates(req api.Request) []string {
	p := strings.TrimPrefix(path.Clean("/"+req.URL.Path), "/")
	if p == "" {
		p = "index"
	}
	return []string{
		p + "." + string(req.Method) + ".json",
		p + ".json",
		p,
	}
}
