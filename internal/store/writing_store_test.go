package store

import (
	"context"
	"errors"
	"testing"
	"writequest_app/internal/model"
	"writequest_app/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProjectRemote struct {
	upserts  []string
	deletes  []string
	failNext bool
}

func (f *fakeProjectRemote) UpsertWritingProject(ctx context.Context, project *model.WritingProject) error {
	if f.failNext {
		f.failNext = false
		return errors.New("network unreachable")
	}
	f.upserts = append(f.upserts, project.ID)
	return nil
}

func (f *fakeProjectRemote) DeleteWritingProject(ctx context.Context, id string) error {
	f.deletes = append(f.deletes, id)
	return nil
}

func TestCreateProjectValidation(t *testing.T) {
	s := NewWritingStore(&fakeProjectRemote{}, nil)

	_, err := s.CreateProject("   ", model.GenreStory)
	assert.ErrorIs(t, err, util.ErrEmptyTitle)

	_, err = s.CreateProject("My Story", model.Genre("screenplay"))
	assert.ErrorIs(t, err, util.ErrInvalidGenre)
}

func TestCreateProjectBecomesCurrent(t *testing.T) {
	s := NewWritingStore(&fakeProjectRemote{}, nil)
	s.SetUser("user-1")

	p, err := s.CreateProject("Dragon Tale", model.GenreStory)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "user-1", p.UserID)
	assert.Equal(t, 0, p.WordCount)

	current := s.CurrentProject()
	require.NotNil(t, current)
	assert.Equal(t, p.ID, current.ID)
	assert.True(t, s.HasDirty(), "a new project is pending a remote write")
}

func TestUpdateContentRecalculatesWordCount(t *testing.T) {
	s := NewWritingStore(&fakeProjectRemote{}, nil)
	_, err := s.CreateProject("Dragon Tale", model.GenreStory)
	require.NoError(t, err)

	require.NoError(t, s.UpdateContent("Once upon a time there was a dragon"))

	current := s.CurrentProject()
	require.NotNil(t, current)
	assert.Equal(t, 8, current.WordCount)
	assert.False(t, current.DateModified.IsZero())
}

func TestUpdateContentWithoutCurrentProject(t *testing.T) {
	s := NewWritingStore(&fakeProjectRemote{}, nil)
	assert.ErrorIs(t, s.UpdateContent("orphan text"), util.ErrNoCurrentProject)

	s2 := NewWritingStore(&fakeProjectRemote{}, nil)
	_, err := s2.CreateProject("A", model.GenreEssay)
	require.NoError(t, err)
	s2.ClearCurrentProject()
	assert.ErrorIs(t, s2.UpdateContent("still orphan"), util.ErrNoCurrentProject)
}

func TestDeleteProjectRemovesLocallyAndRemotely(t *testing.T) {
	remote := &fakeProjectRemote{}
	s := NewWritingStore(remote, nil)
	p, err := s.CreateProject("Doomed", model.GenrePoetry)
	require.NoError(t, err)

	require.NoError(t, s.DeleteProject(context.Background(), p.ID))
	assert.Nil(t, s.CurrentProject())
	assert.Empty(t, s.Projects())
	assert.Equal(t, []string{p.ID}, remote.deletes)

	assert.ErrorIs(t, s.DeleteProject(context.Background(), p.ID), util.ErrProjectNotFound)
}

func TestFlushDirtyRetriesFailures(t *testing.T) {
	remote := &fakeProjectRemote{failNext: true}
	s := NewWritingStore(remote, nil)
	p, err := s.CreateProject("Flaky", model.GenreJournalism)
	require.NoError(t, err)

	assert.Error(t, s.FlushDirty(context.Background()))
	assert.True(t, s.HasDirty(), "failed upsert stays queued")

	require.NoError(t, s.FlushDirty(context.Background()))
	assert.False(t, s.HasDirty())
	assert.Equal(t, []string{p.ID}, remote.upserts)
}

func TestToggleFocusMode(t *testing.T) {
	s := NewWritingStore(&fakeProjectRemote{}, nil)
	assert.False(t, s.FocusMode())
	assert.True(t, s.ToggleFocusMode())
	assert.False(t, s.ToggleFocusMode())
}

func TestClearDropsEverythingWithoutRemoteCalls(t *testing.T) {
	remote := &fakeProjectRemote{}
	s := NewWritingStore(remote, nil)
	_, err := s.CreateProject("Gone", model.GenreLetter)
	require.NoError(t, err)

	s.Clear()

	assert.Empty(t, s.Projects())
	assert.False(t, s.HasDirty())
	assert.Empty(t, remote.upserts)
	assert.Empty(t, remote.deletes)
}
