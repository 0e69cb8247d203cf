package ioctx

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stringReadCloser struct {
	r      io.Reader
	closed bool
}

func newStringReadCloser(s string) *stringReadCloser {
	return &stringReadCloser{r: strings.NewReader(s)}
}

func (s *stringReadCloser) Read(p []byte) (int, error) { return s.r.Read(p) }

func (s *stringReadCloser) Close() error {
	s.closed = true
	return nil
}

func TestRecordableInputForwardsBytesUnchanged(t *testing.T) {
	src := newStringReadCloser("abc")
	rec := NewRecordableInput(src, nil)

	buf := make([]byte, 3)
	n, err := rec.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf[:n]))
}

func TestRecordableInputRecordsEachReadAsEvent(t *testing.T) {
	src := newStringReadCloser("ab")
	rec := NewRecordableInput(src, nil)

	buf := make([]byte, 1)
	_, err := rec.Read(buf)
	require.NoError(t, err)
	_, err = rec.Read(buf)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, rec.Save(path))

	sess, err := LoadSession(path)
	require.NoError(t, err)
	require.Len(t, sess.Events, 2)
	assert.Equal(t, "a", sess.Events[0].Data)
	assert.Equal(t, "b", sess.Events[1].Data)
}

func TestRecordableInputCloseForwards(t *testing.T) {
	src := newStringReadCloser("")
	rec := NewRecordableInput(src, nil)
	require.NoError(t, rec.Close())
	assert.True(t, src.closed)
}

type fakeRawMode struct {
	calls []bool
	err   error
}

func (f *fakeRawMode) SetRawMode(enabled bool) error {
	f.calls = append(f.calls, enabled)
	return f.err
}

func TestRecordableInputForwardsRawModeToggles(t *testing.T) {
	raw := &fakeRawMode{}
	rec := NewRecordableInput(newStringReadCloser(""), raw)

	require.NoError(t, rec.SetRawMode(true))
	assert.Equal(t, []bool{true}, raw.calls)
}

func TestRecordableInputRawModeNilIsNoop(t *testing.T) {
	rec := NewRecordableInput(newStringReadCloser(""), nil)
	assert.NoError(t, rec.SetRawMode(true))
}

func TestRecordableInputPropagatesRawModeError(t *testing.T) {
	boom := errors.New("boom")
	raw := &fakeRawMode{err: boom}
	rec := NewRecordableInput(newStringReadCloser(""), raw)
	assert.ErrorIs(t, rec.SetRawMode(false), boom)
}
