package spectate

import (
	"time"

	"github.com/gorilla/websocket"
)

const defaultHeartbeat = 30 * time.Second

// writeWithHeartbeat pumps send into conn and writes a ping message whenever
// the connection has been idle for interval. It returns nil once send is
// closed.
func writeWithHeartbeat(conn *websocket.Conn, send <-chan []byte, interval time.Duration) error {
	if interval <= 0 {
		interval = defaultHeartbeat
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < interval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
