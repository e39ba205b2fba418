package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dejay09121/Noteapp/internal/domain"
	"github.com/dejay09121/Noteapp/pkg/code"
	apperrors "github.com/dejay09121/Noteapp/pkg/errors"
	"github.com/dejay09121/Noteapp/pkg/writequeue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memRepo struct {
	mu    sync.Mutex
	notes map[string]*domain.Note
	seq   int
}

func newMemRepo() *memRepo {
	return &memRepo{notes: map[string]*domain.Note{}}
}

func (r *memRepo) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Note
	for _, n := range r.notes {
		if n.OwnerID == ownerID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memRepo) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	note.ID = fmt.Sprintf("n%d", r.seq)
	note.CreatedAt = time.Now()
	r.notes[note.ID] = note
	return note, nil
}

func (r *memRepo) Update(ctx context.Context, ownerID, id string, in *domain.NoteInput) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok || n.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	n.Title, n.Content, n.MediaURL = in.Title, in.Content, in.MediaURL
	return n, nil
}

func (r *memRepo) DeleteByIDs(ctx context.Context, ownerID string, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if note, ok := r.notes[id]; ok && note.OwnerID == ownerID {
			delete(r.notes, id)
			n++
		}
	}
	return n, nil
}

type capturePublisher struct {
	mu      sync.Mutex
	changes []domain.NoteChange
}

func (p *capturePublisher) Publish(c domain.NoteChange) {
	p.mu.Lock()
	p.changes = append(p.changes, c)
	p.mu.Unlock()
}

func (p *capturePublisher) actions() []domain.NoteAction {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.NoteAction, len(p.changes))
	for i, c := range p.changes {
		out[i] = c.Action
	}
	return out
}

func TestNoteService_WritesPublishChanges(t *testing.T) {
	pub := &capturePublisher{}
	svc := NewNoteService(newMemRepo(), pub, nil)
	ctx := context.Background()

	n, err := svc.Insert(ctx, "u1", &domain.NoteInput{Title: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "u1", n.OwnerID)

	_, err = svc.Update(ctx, "u1", n.ID, &domain.NoteInput{Title: "hello again"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBatch(ctx, "u1", []string{n.ID}))

	assert.Equal(t, []domain.NoteAction{domain.NoteActionInsert, domain.NoteActionUpdate, domain.NoteActionDelete}, pub.actions())
}

func TestNoteService_OwnerIsolation(t *testing.T) {
	pub := &capturePublisher{}
	svc := NewNoteService(newMemRepo(), pub, nil)
	ctx := context.Background()

	n, err := svc.Insert(ctx, "u1", &domain.NoteInput{Title: "mine"})
	require.NoError(t, err)

	list, err := svc.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Update(ctx, "u2", n.ID, &domain.NoteInput{Title: "stolen"})
	assert.True(t, apperrors.Is(err, code.ErrorNoteNotFound))

	require.NoError(t, svc.DeleteBatch(ctx, "u2", []string{n.ID}))
	list, err = svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	// 未删除任何记录时不发布
	assert.Equal(t, []domain.NoteAction{domain.NoteActionInsert}, pub.actions())
}

func TestNoteService_RequiresOwner(t *testing.T) {
	svc := NewNoteService(newMemRepo(), nil, nil)

	_, err := svc.List(context.Background(), "")
	assert.True(t, apperrors.Is(err, code.ErrorAuthenticationAbsent))
	_, err = svc.Insert(context.Background(), "", &domain.NoteInput{})
	assert.True(t, apperrors.Is(err, code.ErrorAuthenticationAbsent))
}

func TestNoteService_WriteQueue(t *testing.T) {
	wq := writequeue.New(nil, nil)
	defer wq.Shutdown(context.Background())
	repo := newMemRepo()
	svc := NewNoteService(repo, nil, nil, WithWriteQueue(wq))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Insert(ctx, "u1", &domain.NoteInput{Title: "t"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 10)
}
