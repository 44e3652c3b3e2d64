package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dozersim/dozersim/session"
	"github.com/dozersim/dozersim/vehicle"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *Server) (*websocket.Conn, func()) {
	t.Helper()
	hs := httptest.NewServer(srv)
	url := "ws" + strings.TrimPrefix(hs.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	var greeting Message
	require.NoError(t, conn.ReadJSON(&greeting))
	require.Equal(t, MessageTypeInfo, greeting.Type)

	return conn, func() {
		_ = conn.Close()
		hs.Close()
	}
}

func TestInputFromClient(t *testing.T) {
	log, _ := test.NewNullLogger()
	srv := NewServer(log)
	conn, done := dial(t, srv)
	defer done()

	require.NoError(t, conn.WriteJSON(InputMessage{Type: MessageTypeInput, Keys: []string{"ArrowUp", "t", "Bogus"}}))
	require.Eventually(t, func() bool {
		return srv.Input().Pressed(vehicle.KeyUp)
	}, time.Second, 5*time.Millisecond)

	in := srv.Input()
	assert.True(t, in.Pressed(vehicle.KeyT))
	assert.False(t, in.Pressed(vehicle.KeyDown))

	require.NoError(t, conn.WriteJSON(InputMessage{Keys: nil}))
	require.Eventually(t, func() bool {
		return srv.Input().Empty()
	}, time.Second, 5*time.Millisecond)
}

func TestInputMergedAcrossClients(t *testing.T) {
	log, _ := test.NewNullLogger()
	srv := NewServer(log)
	a, doneA := dial(t, srv)
	defer doneA()
	b, doneB := dial(t, srv)
	defer doneB()

	require.NoError(t, a.WriteJSON(InputMessage{Keys: []string{"ArrowLeft"}}))
	require.NoError(t, b.WriteJSON(InputMessage{Keys: []string{"Tab"}}))
	require.Eventually(t, func() bool {
		in := srv.Input()
		return in.Pressed(vehicle.KeyLeft) && in.Pressed(vehicle.KeyTab)
	}, time.Second, 5*time.Millisecond)
}

func TestMalformedMessage(t *testing.T) {
	log, _ := test.NewNullLogger()
	srv := NewServer(log)
	conn, done := dial(t, srv)
	defer done()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	var reply Message
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, MessageTypeError, reply.Type)
}

func TestBroadcast(t *testing.T) {
	log, _ := test.NewNullLogger()
	srv := NewServer(log)
	conn, done := dial(t, srv)
	defer done()

	require.Eventually(t, func() bool { return srv.Clients() == 1 }, time.Second, 5*time.Millisecond)
	srv.Broadcast(session.Frame{Tick: 7, Seeder: "ready", Particles: 3})

	var msg struct {
		Type string        `json:"type"`
		Data session.Frame `json:"data"`
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageTypeFrame, msg.Type)
	assert.EqualValues(t, 7, msg.Data.Tick)
	assert.Equal(t, "ready", msg.Data.Seeder)
	assert.Equal(t, 3, msg.Data.Particles)
}

func TestClientRemovedOnDisconnect(t *testing.T) {
	log, _ := test.NewNullLogger()
	srv := NewServer(log)
	conn, done := dial(t, srv)
	defer done()

	require.NoError(t, conn.WriteJSON(InputMessage{Keys: []string{"ArrowUp"}}))
	require.Eventually(t, func() bool { return srv.Input().Pressed(vehicle.KeyUp) }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return srv.Clients() == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, srv.Input().Empty())
}

func TestSafeWriterConcurrentWrites(t *testing.T) {
	received := make(chan int, 10)
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for i := 0; i < 10; i++ {
			var v struct{ ID int }
			if err := conn.ReadJSON(&v); err != nil {
				return
			}
			received <- v.ID
		}
	}))
	defer hs.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(hs.URL, "http"), nil)
	require.NoError(t, err)
	w := NewSafeWriter(conn)
	defer w.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			assert.NoError(t, w.WriteJSON(struct{ ID int }{id}))
		}(i)
	}
	wg.Wait()

	seen := make(map[int]struct{})
	for i := 0; i < 10; i++ {
		select {
		case id := <-received:
			seen[id] = struct{}{}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for messages")
		}
	}
	assert.Len(t, seen, 10)
}

func TestWriteTimeoutDoesNotOutliveWrite(t *testing.T) {
	received := make(chan string, 2)
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for i := 0; i < 2; i++ {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- string(msg)
		}
	}))
	defer hs.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(hs.URL, "http"), nil)
	require.NoError(t, err)
	w := NewSafeWriter(conn)
	defer w.Close()

	require.NoError(t, w.WriteMessageTimeout(websocket.TextMessage, []byte("first"), 20*time.Millisecond))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, w.WriteMessage(websocket.TextMessage, []byte("second")))

	for _, want := range []string{"first", "second"} {
		select {
		case got := <-received:
			assert.Equal(t, want, got)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}
