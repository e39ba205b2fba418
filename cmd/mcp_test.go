package cmd

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dejay09121/Noteapp/internal/domain"
	"github.com/dejay09121/Noteapp/internal/service"
	"github.com/dejay09121/Noteapp/pkg/code"
	apperrors "github.com/dejay09121/Noteapp/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRemote 内存远程存储，只通过 SyncService 访问
type memRemote struct {
	mu      sync.Mutex
	notes   []*domain.Note
	seq     int
	listErr error
}

func (r *memRemote) List(ctx context.Context, ownerID string) ([]*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*domain.Note, 0, len(r.notes))
	for _, n := range r.notes {
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memRemote) add(ownerID string, in *domain.NoteInput) *domain.Note {
	r.seq++
	n := &domain.Note{
		ID:        fmt.Sprintf("n%d", r.seq),
		OwnerID:   ownerID,
		Title:     in.Title,
		Content:   in.Content,
		MediaURL:  in.MediaURL,
		CreatedAt: time.Unix(int64(r.seq), 0),
	}
	r.notes = append(r.notes, n)
	return n
}

func (r *memRemote) Insert(ctx context.Context, ownerID string, in *domain.NoteInput) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.add(ownerID, in)
	return &cp, nil
}

func (r *memRemote) Update(ctx context.Context, ownerID, id string, in *domain.NoteInput) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notes {
		if n.ID == id {
			n.Title, n.Content, n.MediaURL = in.Title, in.Content, in.MediaURL
			cp := *n
			return &cp, nil
		}
	}
	return nil, code.ErrorNoteNotFound
}

func (r *memRemote) DeleteBatch(ctx context.Context, ownerID string, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := r.notes[:0]
	for _, n := range r.notes {
		if !drop[n.ID] {
			kept = append(kept, n)
		}
	}
	r.notes = kept
	return nil
}

func newToolsOver(t *testing.T, remote *memRemote) *noteTools {
	t.Helper()
	svc, err := service.NewSyncService(service.SyncDeps{
		Remote:  remote,
		Session: service.StaticSession{User: &domain.User{ID: "u1"}},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Stop(context.Background()) })
	return &noteTools{sync: svc}
}

func TestNoteTools(t *testing.T) {
	remote := &memRemote{}
	tools := newToolsOver(t, remote)
	ctx := context.Background()

	_, created, err := tools.create(ctx, nil, CreateInput{Title: "Groceries", Content: "milk"})
	require.NoError(t, err)
	_, _, err = tools.create(ctx, nil, CreateInput{Title: "Trip", Content: "grocery run", MediaURL: "https://cdn.example.com/clip.mp4"})
	require.NoError(t, err)

	// 新建后立即列出，不依赖变更通知
	_, out, err := tools.list(ctx, nil, ListInput{})
	require.NoError(t, err)
	require.Len(t, out.Notes, 2)
	assert.Equal(t, "Trip", out.Notes[0].Title)

	_, out, err = tools.list(ctx, nil, ListInput{Search: "  grocer "})
	require.NoError(t, err)
	assert.Equal(t, "grocer", out.Term)
	assert.Len(t, out.Notes, 2)

	_, updated, err := tools.update(ctx, nil, UpdateInput{ID: created.Note.ID, Title: "Shopping"})
	require.NoError(t, err)
	assert.Equal(t, "Shopping", updated.Note.Title)
	_, out, err = tools.list(ctx, nil, ListInput{Search: "shopping"})
	require.NoError(t, err)
	assert.Len(t, out.Notes, 1)

	res, _, err := tools.update(ctx, nil, UpdateInput{ID: "missing", Title: "x"})
	assert.True(t, apperrors.Is(err, code.ErrorRemoteFailure))
	assert.True(t, res.IsError)

	res, _, err = tools.update(ctx, nil, UpdateInput{})
	assert.Error(t, err)
	assert.True(t, res.IsError)

	_, del, err := tools.delete(ctx, nil, DeleteInput{IDs: []string{created.Note.ID}})
	require.NoError(t, err)
	assert.Equal(t, DeleteOutput{Deleted: 1, Remaining: 1}, del)
}

func TestNoteTools_ListSeesOutsideWrites(t *testing.T) {
	remote := &memRemote{}
	tools := newToolsOver(t, remote)

	remote.mu.Lock()
	remote.add("u1", &domain.NoteInput{Title: "from another device"})
	remote.mu.Unlock()

	_, out, err := tools.list(context.Background(), nil, ListInput{})
	require.NoError(t, err)
	require.Len(t, out.Notes, 1)
	assert.Equal(t, "from another device", out.Notes[0].Title)
}

func TestNoteTools_ListRefreshFailure(t *testing.T) {
	remote := &memRemote{listErr: errors.New("offline")}
	tools := newToolsOver(t, remote)

	res, _, err := tools.list(context.Background(), nil, ListInput{})
	assert.True(t, apperrors.Is(err, code.ErrorRemoteFailure))
	assert.True(t, res.IsError)
}

func TestNewMCPServer(t *testing.T) {
	assert.NotNil(t, newMCPServer(newFakeSync()))
}
