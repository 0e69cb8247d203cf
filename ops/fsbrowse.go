package ops

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/justapithecus/optree/ioctx"
	"github.com/justapithecus/optree/op"
)

// FSBrowse failure tags.
const (
	FSBrowseFailureNotFound         op.FailureTag = "notFound"
	FSBrowseFailurePermissionDenied op.FailureTag = "permissionDenied"
)

// FSBrowseOp lists Dir's entries and prompts the user to either drill
// into a subdirectory or pick a file. Directory traversal uses only
// os/io/fs — no library in the retrieved pack targets this (see
// DESIGN.md).
type FSBrowseOp struct {
	op.Base
	OpName string
	Dir    string
}

// Name implements op.Op.
func (o *FSBrowseOp) Name() string {
	if o.OpName != "" {
		return o.OpName
	}
	return "FSBrowseOp"
}

// Run implements op.Op.
func (o *FSBrowseOp) Run(_ context.Context, io *ioctx.Context) op.Outcome {
	entries, err := os.ReadDir(o.Dir)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return o.Fail(FSBrowseFailureNotFound, err.Error())
		case errors.Is(err, fs.ErrPermission):
			return o.Fail(FSBrowseFailurePermissionDenied, err.Error())
		default:
			return o.FailWithUnknownError(err.Error())
		}
	}

	labels := make([]string, 0, len(entries)+1)
	labels = append(labels, "..")
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		labels = append(labels, name)
	}

	menu := &MenuOp{OpName: o.Name() + ".menu", Title: fmt.Sprintf("Browse %s", o.Dir), Items: labels}
	return o.HandleOutcome(menu, func(result op.Outcome) op.Op {
		if !result.OK() {
			return terminal(o.Name(), result)
		}
		idx, ok := op.As[int](result)
		if !ok {
			return terminal(o.Name(), result)
		}

		if idx == 0 {
			parent := filepath.Dir(o.Dir)
			return &FSBrowseOp{OpName: o.OpName, Dir: parent}
		}

		entry := entries[idx-1]
		chosen := filepath.Join(o.Dir, entry.Name())
		if entry.IsDir() {
			return &FSBrowseOp{OpName: o.OpName, Dir: chosen}
		}
		fmt.Fprintln(io.Out, chosen)
		return terminal(o.Name(), o.Succeed(chosen))
	})
}
