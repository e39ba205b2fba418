package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dejay09121/Noteapp/internal/domain"
	"github.com/dejay09121/Noteapp/pkg/code"
	apperrors "github.com/dejay09121/Noteapp/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func mkNote(id string, minutes int, title string) *domain.Note {
	return &domain.Note{ID: id, OwnerID: "u1", Title: title, CreatedAt: t0.Add(time.Duration(minutes) * time.Minute)}
}

func noteIDs(notes []*domain.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

type listResult struct {
	notes []*domain.Note
	err   error
}

// fakeRemote 内存中的远程存储，gates 非空时 List 会阻塞到测试放行
type fakeRemote struct {
	mu        sync.Mutex
	notes     []*domain.Note
	listErr   error
	deleteErr error
	updateErr error
	listCalls int
	gates     []chan listResult
	started   chan struct{}
	deleted   [][]string
	inserted  []*domain.NoteInput
	owners    []string
}

func (f *fakeRemote) List(ctx context.Context, ownerID string) ([]*domain.Note, error) {
	f.mu.Lock()
	f.listCalls++
	f.owners = append(f.owners, ownerID)
	var gate chan listResult
	if len(f.gates) > 0 {
		gate, f.gates = f.gates[0], f.gates[1:]
	}
	notes := append([]*domain.Note(nil), f.notes...)
	err := f.listErr
	f.mu.Unlock()

	if gate != nil {
		f.started <- struct{}{}
		r := <-gate
		return r.notes, r.err
	}
	return notes, err
}

func (f *fakeRemote) Insert(ctx context.Context, ownerID string, in *domain.NoteInput) (*domain.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, in)
	n := &domain.Note{ID: "new", OwnerID: ownerID, Title: in.Title, Content: in.Content, CreatedAt: time.Now()}
	f.notes = append(f.notes, n)
	return n, nil
}

func (f *fakeRemote) Update(ctx context.Context, ownerID, id string, in *domain.NoteInput) (*domain.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for _, n := range f.notes {
		if n.ID == id {
			n.Title, n.Content = in.Title, in.Content
			return n, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeRemote) DeleteBatch(ctx context.Context, ownerID string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, ids)
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := f.notes[:0]
	for _, n := range f.notes {
		if !drop[n.ID] {
			kept = append(kept, n)
		}
	}
	f.notes = kept
	return nil
}

func (f *fakeRemote) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func newSync(t *testing.T, remote domain.NoteRemote, user *domain.User) SyncService {
	t.Helper()
	svc, err := NewSyncService(SyncDeps{Remote: remote, Session: StaticSession{User: user}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Stop(context.Background()) })
	return svc
}

var owner = &domain.User{ID: "u1", Nickname: "alice"}

func TestRefresh_ReplacesStore(t *testing.T) {
	remote := &fakeRemote{notes: []*domain.Note{mkNote("1", 1, ""), mkNote("2", 2, "")}}
	svc := newSync(t, remote, owner)

	require.NoError(t, svc.Refresh(context.Background()))
	assert.Equal(t, []string{"2", "1"}, noteIDs(svc.Store().Notes()))
	assert.Equal(t, []string{"u1"}, remote.owners)
}

func TestRefresh_NoUserIsSilentNoop(t *testing.T) {
	remote := &fakeRemote{notes: []*domain.Note{mkNote("1", 1, "")}}
	svc := newSync(t, remote, nil)

	require.NoError(t, svc.Refresh(context.Background()))
	require.NoError(t, svc.Start(context.Background()))
	require.NoError(t, svc.FocusRegained(context.Background()))

	assert.Zero(t, remote.calls())
	assert.Zero(t, svc.Store().Len())
}

func TestRefresh_FailureLeavesStoreUnchanged(t *testing.T) {
	remote := &fakeRemote{notes: []*domain.Note{mkNote("1", 1, "kept")}}
	svc := newSync(t, remote, owner)
	require.NoError(t, svc.Refresh(context.Background()))

	remote.mu.Lock()
	remote.listErr = errors.New("connection reset")
	remote.mu.Unlock()

	err := svc.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, code.ErrorRemoteFailure))
	assert.Equal(t, []string{"1"}, noteIDs(svc.Store().Notes()))
}

func TestRefresh_StaleResultDiscarded(t *testing.T) {
	gateA, gateB := make(chan listResult), make(chan listResult)
	remote := &fakeRemote{gates: []chan listResult{gateA, gateB}, started: make(chan struct{})}
	svc := newSync(t, remote, owner)
	ctx := context.Background()

	doneA, doneB := make(chan error, 1), make(chan error, 1)
	go func() { doneA <- svc.Refresh(ctx) }()
	<-remote.started
	go func() { doneB <- svc.Refresh(ctx) }()
	<-remote.started

	// B 先返回并生效，A 后返回应被丢弃
	gateB <- listResult{notes: []*domain.Note{mkNote("b", 2, "newer")}}
	require.NoError(t, <-doneB)
	gateA <- listResult{notes: []*domain.Note{mkNote("a", 1, "older")}}
	require.NoError(t, <-doneA)

	assert.Equal(t, []string{"b"}, noteIDs(svc.Store().Notes()))
}

func TestRefresh_DropsForeignNotes(t *testing.T) {
	foreign := &domain.Note{ID: "x", OwnerID: "u2", CreatedAt: t0}
	remote := &fakeRemote{notes: []*domain.Note{mkNote("1", 1, ""), foreign}}
	svc := newSync(t, remote, owner)

	require.NoError(t, svc.Refresh(context.Background()))
	assert.Equal(t, []string{"1"}, noteIDs(svc.Store().Notes()))
}

func TestNotifyChanged_TriggersRefresh(t *testing.T) {
	remote := &fakeRemote{notes: []*domain.Note{mkNote("1", 1, "")}}
	svc := newSync(t, remote, owner)

	svc.NotifyChanged(domain.NoteChange{OwnerID: "u1", Action: domain.NoteActionInsert, At: t0})

	require.Eventually(t, func() bool { return svc.Store().Len() == 1 }, time.Second, 5*time.Millisecond)
}

type fakeChanges struct {
	mu       sync.Mutex
	onChange func(domain.NoteChange)
	owner    string
	unsubbed bool
}

func (f *fakeChanges) Subscribe(ctx context.Context, ownerID string, onChange func(domain.NoteChange)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owner, f.onChange = ownerID, onChange
	return func() {
		f.mu.Lock()
		f.unsubbed = true
		f.mu.Unlock()
	}, nil
}

func (f *fakeChanges) fire() {
	f.mu.Lock()
	cb := f.onChange
	f.mu.Unlock()
	cb(domain.NoteChange{OwnerID: f.owner, Action: domain.NoteActionUpdate})
}

func TestStart_SubscribesAndRefreshes(t *testing.T) {
	remote := &fakeRemote{notes: []*domain.Note{mkNote("1", 1, "")}}
	changes := &fakeChanges{}
	svc, err := NewSyncService(SyncDeps{Remote: remote, Changes: changes, Session: StaticSession{User: owner}})
	require.NoError(t, err)

	require.NoError(t, svc.Start(context.Background()))
	assert.Equal(t, "u1", changes.owner)
	assert.Equal(t, 1, svc.Store().Len())

	remote.mu.Lock()
	remote.notes = append(remote.notes, mkNote("2", 2, ""))
	remote.mu.Unlock()
	changes.fire()
	require.Eventually(t, func() bool { return svc.Store().Len() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, svc.Stop(context.Background()))
	assert.True(t, changes.unsubbed)
}

func TestCreate_RequiresOwner(t *testing.T) {
	remote := &fakeRemote{}
	svc := newSync(t, remote, nil)

	_, err := svc.Create(context.Background(), &domain.NoteInput{Title: "t"})
	assert.True(t, apperrors.Is(err, code.ErrorAuthenticationAbsent))
	_, err = svc.Update(context.Background(), "1", &domain.NoteInput{Title: "t"})
	assert.True(t, apperrors.Is(err, code.ErrorAuthenticationAbsent))
	assert.Empty(t, remote.inserted)
}

func TestCreate_InvalidInput(t *testing.T) {
	svc := newSync(t, &fakeRemote{}, owner)

	_, err := svc.Create(context.Background(), &domain.NoteInput{MediaURL: "not a url"})
	assert.True(t, apperrors.Is(err, code.ErrorInvalidParams))
}

func TestCreate_RefreshesStore(t *testing.T) {
	remote := &fakeRemote{}
	svc := newSync(t, remote, owner)

	n, err := svc.Create(context.Background(), &domain.NoteInput{Title: "Buy milk"})
	require.NoError(t, err)
	assert.Equal(t, "u1", n.OwnerID)

	// 不依赖变更通知，写入返回时列表已包含新笔记
	require.Equal(t, 1, svc.Store().Len())
	assert.Equal(t, "Buy milk", svc.Store().Notes()[0].Title)
	assert.Equal(t, 1, remote.calls())
}

func TestCreate_RefreshFailureKeepsWriteResult(t *testing.T) {
	remote := &fakeRemote{listErr: errors.New("list down")}
	var reported []error
	svc, err := NewSyncService(SyncDeps{
		Remote:  remote,
		Session: StaticSession{User: owner},
		OnError: func(err error) { reported = append(reported, err) },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Stop(context.Background()) })

	n, err := svc.Create(context.Background(), &domain.NoteInput{Title: "t"})
	require.NoError(t, err)
	assert.Equal(t, "new", n.ID)
	require.Len(t, reported, 1)
	assert.True(t, apperrors.Is(reported[0], code.ErrorRemoteFailure))
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		in        *domain.NoteInput
		updateErr error
		wantCode  *code.Code
		wantTitle string
	}{
		{name: "updates and refreshes", id: "1", in: &domain.NoteInput{Title: "renamed"}, wantTitle: "renamed"},
		{name: "id required", id: "", in: &domain.NoteInput{Title: "x"}, wantCode: code.ErrorInvalidParams, wantTitle: "orig"},
		{name: "invalid media url", id: "1", in: &domain.NoteInput{MediaURL: "not a url"}, wantCode: code.ErrorInvalidParams, wantTitle: "orig"},
		{name: "remote error wrapped", id: "1", in: &domain.NoteInput{Title: "x"}, updateErr: errors.New("permission denied"), wantCode: code.ErrorRemoteFailure, wantTitle: "orig"},
		{name: "unknown id", id: "missing", in: &domain.NoteInput{Title: "x"}, wantCode: code.ErrorRemoteFailure, wantTitle: "orig"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &fakeRemote{notes: []*domain.Note{mkNote("1", 1, "orig")}, updateErr: tt.updateErr}
			svc := newSync(t, remote, owner)
			require.NoError(t, svc.Refresh(context.Background()))

			n, err := svc.Update(context.Background(), tt.id, tt.in)
			if tt.wantCode != nil {
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, tt.wantCode))
				assert.Nil(t, n)
				assert.Equal(t, 1, remote.calls())
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.id, n.ID)
				assert.Equal(t, 2, remote.calls())
			}
			require.Equal(t, 1, svc.Store().Len())
			assert.Equal(t, tt.wantTitle, svc.Store().Notes()[0].Title)
		})
	}
}

func TestDeleteBatch_ClearsSelectionAndRefreshes(t *testing.T) {
	remote := &fakeRemote{notes: []*domain.Note{mkNote("1", 1, ""), mkNote("2", 2, ""), mkNote("3", 3, "")}}
	svc := newSync(t, remote, owner)
	require.NoError(t, svc.Refresh(context.Background()))

	sel := svc.Selection()
	sel.SetActive(true)
	sel.Toggle("1")
	sel.Toggle("3")

	require.NoError(t, svc.DeleteSelected(context.Background()))

	assert.Equal(t, [][]string{{"1", "3"}}, remote.deleted)
	assert.Equal(t, []string{"2"}, noteIDs(svc.Store().Notes()))
	assert.Empty(t, sel.Selected())
	assert.False(t, sel.Active())
}

func TestDeleteBatch_EmptyIsNoop(t *testing.T) {
	remote := &fakeRemote{}
	svc := newSync(t, remote, owner)
	svc.Selection().SetActive(true)

	require.NoError(t, svc.DeleteBatch(context.Background(), nil))
	require.NoError(t, svc.DeleteSelected(context.Background()))

	assert.Empty(t, remote.deleted)
	assert.Zero(t, remote.calls())
	assert.True(t, svc.Selection().Active())
}

func TestDeleteBatch_FailureKeepsSelection(t *testing.T) {
	remote := &fakeRemote{notes: []*domain.Note{mkNote("1", 1, "")}, deleteErr: errors.New("boom")}
	svc := newSync(t, remote, owner)
	require.NoError(t, svc.Refresh(context.Background()))
	svc.Selection().SetActive(true)
	svc.Selection().Toggle("1")

	err := svc.DeleteSelected(context.Background())
	assert.True(t, apperrors.Is(err, code.ErrorRemoteFailure))
	assert.Equal(t, []string{"1"}, svc.Selection().Selected())
	assert.True(t, svc.Selection().Active())
	assert.Equal(t, 1, svc.Store().Len())
}

func TestUniqueIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, uniqueIDs([]string{"a", "", "b", "a"}))
	assert.Empty(t, uniqueIDs(nil))
}
