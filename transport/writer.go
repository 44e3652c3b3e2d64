package transport

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// SafeWriter serialises writes to a websocket connection. gorilla/websocket allows one concurrent
// writer per connection, while frames are broadcast from the simulation goroutine and replies are
// written from the read loop.
type SafeWriter struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewSafeWriter wraps conn.
func NewSafeWriter(conn *websocket.Conn) *SafeWriter {
	return &SafeWriter{conn: conn}
}

// WriteJSON writes v as a JSON text message.
func (w *SafeWriter) WriteJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(v)
}

// WriteMessage writes a raw message of the given type.
func (w *SafeWriter) WriteMessage(messageType int, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(messageType, data)
}

// WriteMessageTimeout writes a raw message and fails if the peer does not accept it within d.
// The deadline only applies to this write.
func (w *SafeWriter) WriteMessageTimeout(messageType int, data []byte, d time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.conn.SetWriteDeadline(time.Now().Add(d)); err != nil {
		return err
	}
	err := w.conn.WriteMessage(messageType, data)
	if resetErr := w.conn.SetWriteDeadline(time.Time{}); err == nil {
		err = resetErr
	}
	return err
}

// Close closes the underlying connection.
func (w *SafeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.Close()
}
