package realtime

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dejay09121/Noteapp/internal/domain"
	pkgapp "github.com/dejay09121/Noteapp/pkg/app"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_EncodeDecode(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	b, err := Encode(TypeNoteChanged, domain.NoteChange{OwnerID: "u1", Action: domain.NoteActionDelete, At: at})
	require.NoError(t, err)

	f, err := Decode(string(b))
	require.NoError(t, err)
	assert.Equal(t, TypeNoteChanged, f.Type)

	var change domain.NoteChange
	require.NoError(t, f.Bind(&change))
	assert.Equal(t, "u1", change.OwnerID)
	assert.Equal(t, domain.NoteActionDelete, change.Action)
	assert.True(t, at.Equal(change.At))

	raw, err := Encode(TypeAuthorization, "tok|en")
	require.NoError(t, err)
	f, err = Decode(string(raw))
	require.NoError(t, err)
	assert.Equal(t, "tok|en", string(f.Data))

	_, err = Decode("no separator")
	assert.ErrorIs(t, err, ErrIllegalFrame)
}

func TestBroker_RoutesByOwner(t *testing.T) {
	b := NewBroker()
	var mu sync.Mutex
	got := map[string]int{}
	record := func(name string) func(domain.NoteChange) {
		return func(domain.NoteChange) {
			mu.Lock()
			got[name]++
			mu.Unlock()
		}
	}

	unsub1, err := b.Subscribe(context.Background(), "u1", record("u1"))
	require.NoError(t, err)
	_, err = b.Subscribe(context.Background(), "u2", record("u2"))
	require.NoError(t, err)
	unsubAll := b.SubscribeAll(record("all"))

	b.Publish(domain.NoteChange{OwnerID: "u1"})
	unsub1()
	unsub1()
	b.Publish(domain.NoteChange{OwnerID: "u1"})
	unsubAll()
	b.Publish(domain.NoteChange{OwnerID: "u2"})

	assert.Equal(t, map[string]int{"u1": 1, "u2": 1, "all": 2}, got)
	assert.Zero(t, b.Subscribers("u1"))
}

func TestBroker_ContextCancelUnsubscribes(t *testing.T) {
	b := NewBroker()
	ctx, cancel := context.WithCancel(context.Background())
	_, err := b.Subscribe(ctx, "u1", func(domain.NoteChange) {})
	require.NoError(t, err)
	require.Equal(t, 1, b.Subscribers("u1"))

	cancel()
	require.Eventually(t, func() bool { return b.Subscribers("u1") == 0 }, time.Second, 5*time.Millisecond)
}

func newTestHub(t *testing.T) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := NewHub(HubConfig{}, func(token string) (*pkgapp.UserEntity, error) {
		if token != "good" {
			return nil, errors.New("bad token")
		}
		return &pkgapp.UserEntity{UID: "u1", Nickname: "alice"}, nil
	}, nil)

	r := gin.New()
	r.GET("/api/notes/ws", hub.Run())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, WebsocketURL(srv.URL, "/api/notes/ws")
}

func TestHubSubscriber_DeliversOwnerChanges(t *testing.T) {
	hub, url := newTestHub(t)
	sub := NewSubscriber(SubscriberConfig{URL: url, Token: func() string { return "good" }}, nil)

	changes := make(chan domain.NoteChange, 4)
	unsubscribe, err := sub.Subscribe(context.Background(), "u1", func(c domain.NoteChange) { changes <- c })
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Online("u1") == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast(domain.NoteChange{OwnerID: "u2", Action: domain.NoteActionInsert})
	hub.Broadcast(domain.NoteChange{OwnerID: "u1", Action: domain.NoteActionInsert})

	select {
	case c := <-changes:
		assert.Equal(t, "u1", c.OwnerID)
		assert.Equal(t, domain.NoteActionInsert, c.Action)
	case <-time.After(2 * time.Second):
		t.Fatal("no change delivered")
	}

	unsubscribe()
	unsubscribe()
	require.Eventually(t, func() bool { return hub.Online("u1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubSubscriber_RejectsBadToken(t *testing.T) {
	_, url := newTestHub(t)
	sub := NewSubscriber(SubscriberConfig{URL: url, Token: func() string { return "bad" }}, nil)

	_, err := sub.Subscribe(context.Background(), "u1", func(domain.NoteChange) {})
	assert.Error(t, err)
}

func TestWebsocketURL(t *testing.T) {
	assert.Equal(t, "ws://127.0.0.1:9000/api/notes/ws", WebsocketURL("http://127.0.0.1:9000/", "/api/notes/ws"))
	assert.Equal(t, "wss://notes.example.com/api/notes/ws", WebsocketURL("https://notes.example.com", "/api/notes/ws"))
}
