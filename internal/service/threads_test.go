package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/raphaelgruber/flirtassist/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededThreads(t *testing.T, n int) (*ThreadService, ThreadStore) {
	t.Helper()
	st := testStore()
	for i := 1; i <= n; i++ {
		require.NoError(t, st.Upsert(context.Background(), storedThread(fmt.Sprintf("t%d", i))))
	}
	return NewThreadService(st, testOptions()...), st
}

func TestListAndRecent(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededThreads(t, 7)

	all, err := svc.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 7)
	assert.Equal(t, "t7", all[0].ID, "most recent first")

	limited, err := svc.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, limited, 3)

	recent, err := svc.Recent(ctx)
	require.NoError(t, err)
	assert.Len(t, recent, RecentLimit)
	assert.Equal(t, all[:RecentLimit], recent)
}

func TestRecentFewerThanLimit(t *testing.T) {
	svc, _ := seededThreads(t, 2)

	recent, err := svc.Recent(context.Background())
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestGetAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, st := seededThreads(t, 3)

	th, err := svc.Get(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, "t2", th.ID)

	_, err = svc.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrThreadNotFound)

	require.NoError(t, svc.Delete(ctx, "t2"))
	gone, err := st.Get(ctx, "t2")
	require.NoError(t, err)
	assert.Nil(t, gone)

	rest, err := svc.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	assert.ErrorIs(t, svc.Delete(ctx, "t2"), ErrThreadNotFound)
}

func TestAddMessage(t *testing.T) {
	ctx := context.Background()
	svc, st := seededThreads(t, 1)

	updated, err := svc.AddMessage(ctx, "t1", models.RoleOther, "  wanna grab coffee?  ")
	require.NoError(t, err)
	require.Len(t, updated.Context, 3)

	msg := updated.Context[2]
	assert.Equal(t, models.RoleOther, msg.Role)
	assert.Equal(t, "wanna grab coffee?", msg.Text)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, fixedNow.UnixMilli(), msg.TS.Millis())
	assert.Equal(t, fixedNow.UnixMilli(), updated.UpdatedAt.Millis())

	stored, err := st.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, *updated, *stored)
}

func TestAddMessageErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededThreads(t, 1)

	tests := []struct {
		name    string
		id      string
		role    models.Role
		text    string
		wantErr error
	}{
		{name: "blank text", id: "t1", role: models.RoleUser, text: "   ", wantErr: ErrEmptyMessage},
		{name: "unknown thread", id: "zzz", role: models.RoleUser, text: "hi", wantErr: ErrThreadNotFound},
		{name: "invalid role", id: "t1", role: "narrator", text: "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddMessage(ctx, tt.id, tt.role, tt.text)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	th, err := svc.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, th.Context, 2, "failed adds leave the thread alone")
}

func TestImportTranscriptIntoExisting(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededThreads(t, 1)

	th, err := svc.ImportTranscript(ctx, "t1", strings.NewReader("---\ntitle: Ignored\n---\nthem: hi\nme: hello\n"))
	require.NoError(t, err)

	assert.Equal(t, "Sam", th.Title, "existing title is kept")
	require.Len(t, th.Context, 4)
	assert.Equal(t, "hi", th.Context[2].Text)
	assert.Equal(t, models.RoleUser, th.Context[3].Role)
	assert.Len(t, th.Suggestions, 1)
}

func TestImportTranscriptNewThread(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededThreads(t, 0)

	th, err := svc.ImportTranscript(ctx, "", strings.NewReader("---\ntitle: Alex\nmood: sexy\n---\nthem: you up?\n"))
	require.NoError(t, err)
	assert.Equal(t, "Alex", th.Title)
	assert.Equal(t, models.MoodSexy, th.Mood)
	require.Len(t, th.Context, 1)

	recent, err := svc.Recent(ctx)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, th.ID, recent[0].ID)

	plain, err := svc.ImportTranscript(ctx, "", strings.NewReader("me: hi"))
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTitle, plain.Title)
	assert.Equal(t, models.DefaultMood, plain.Mood)
}

func TestImportTranscriptErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededThreads(t, 1)

	_, err := svc.ImportTranscript(ctx, "t1", strings.NewReader("# just a heading\n"))
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = svc.ImportTranscript(ctx, "missing", strings.NewReader("me: hi"))
	assert.ErrorIs(t, err, ErrThreadNotFound)
}
