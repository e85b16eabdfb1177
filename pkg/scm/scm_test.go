package scm_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/issuetrack/pkg/component"
	"github.com/Sumatoshi-tech/issuetrack/pkg/gitlib"
	"github.com/Sumatoshi-tech/issuetrack/pkg/scm"
)

func TestNewInfo(t *testing.T) {
	t.Parallel()

	_, err := scm.NewInfo(nil)
	require.ErrorIs(t, err, scm.ErrNoChangesets)

	info, err := scm.NewInfo(map[int]scm.Changeset{
		1: {Revision: "a", Date: time.Unix(100, 0)},
		2: {Revision: "b", Date: time.Unix(300, 0)},
		3: {Revision: "c", Date: time.Unix(200, 0)},
	})
	require.NoError(t, err)

	assert.True(t, info.HasChangesetForLine(2))
	assert.False(t, info.HasChangesetForLine(4))
	assert.Equal(t, "b", info.LatestChangeset().Revision)
	assert.Equal(t, 3, info.LineCount())

	changeset, ok := info.ChangesetForLine(3)
	require.True(t, ok)
	assert.Equal(t, "c", changeset.Revision)
}

type countingReader struct {
	calls atomic.Int32
	info  *scm.Info
	err   error
}

func (r *countingReader) Read(context.Context, *component.Component) (*scm.Info, error) {
	r.calls.Add(1)

	return r.info, r.err
}

func TestRepositoryCachesPerFile(t *testing.T) {
	t.Parallel()

	info, err := scm.NewInfo(map[int]scm.Changeset{1: {Date: time.Unix(1, 0)}})
	require.NoError(t, err)

	reader := &countingReader{info: info}
	repo := scm.NewRepository(reader, nil)
	file := &component.Component{UUID: "f", Key: "p:f", Type: component.TypeFile}

	for range 3 {
		got, ok, getErr := repo.ScmInfo(context.Background(), file)
		require.NoError(t, getErr)
		assert.True(t, ok)
		assert.Same(t, info, got)
	}

	assert.Equal(t, int32(1), reader.calls.Load())

	_, ok, err := repo.ScmInfo(context.Background(), &component.Component{Type: component.TypeDirectory})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int32(1), reader.calls.Load())
}

func TestRepositoryCachesAbsence(t *testing.T) {
	t.Parallel()

	reader := &countingReader{}
	repo := scm.NewRepository(reader, nil)
	file := &component.Component{UUID: "f", Type: component.TypeFile}

	for range 2 {
		_, ok, err := repo.ScmInfo(context.Background(), file)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	assert.Equal(t, int32(1), reader.calls.Load())
}

func TestRepositoryPropagatesErrors(t *testing.T) {
	t.Parallel()

	errRead := errors.New("read failed")
	repo := scm.NewRepository(&countingReader{err: errRead}, nil)

	_, _, err := repo.ScmInfo(context.Background(), &component.Component{UUID: "f", Key: "p:f", Type: component.TypeFile})
	require.ErrorIs(t, err, errRead)
}

type fakeBlamer struct {
	lines []gitlib.BlameLine
	err   error
}

func (b fakeBlamer) BlameFile(string) ([]gitlib.BlameLine, error) {
	return b.lines, b.err
}

func TestGitReader(t *testing.T) {
	t.Parallel()

	rev, err := gitlib.ParseHash("0123456789abcdef0123456789abcdef01234567")
	require.NoError(t, err)

	file := &component.Component{UUID: "f", Type: component.TypeFile, Path: "a.go"}

	reader := scm.NewGitReader(fakeBlamer{lines: []gitlib.BlameLine{
		{Line: 1, Revision: rev, Author: gitlib.Signature{Email: "dev@example.com", When: time.Unix(10, 0)}},
		{Line: 2, Revision: rev, Author: gitlib.Signature{Email: "dev@example.com", When: time.Unix(20, 0)}},
	}})

	info, err := reader.Read(context.Background(), file)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, time.Unix(20, 0), info.LatestChangeset().Date)
	assert.Equal(t, rev.String(), info.LatestChangeset().Revision)

	untracked := scm.NewGitReader(fakeBlamer{err: gitlib.ErrFileNotTracked})
	info, err = untracked.Read(context.Background(), file)
	require.NoError(t, err)
	assert.Nil(t, info)

	noPath, err := reader.Read(context.Background(), &component.Component{Type: component.TypeFile})
	require.NoError(t, err)
	assert.Nil(t, noPath)
}
