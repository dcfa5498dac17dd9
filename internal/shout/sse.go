// SSE wire framing. Frames are pre-encoded to bytes once per broadcast so the
// hub never re-serializes per subscriber.
package shout

import (
	"encoding/json"

	"github.com/deckforge/go-shoutbox-backend/internal/domain"
)

// HelloFrame is the named event sent once, immediately after a stream opens,
// acknowledging the connection. History is fetched separately by the client.
func HelloFrame() []byte {
	return []byte("event: hello\ndata: \"ok\"\n\n")
}

// PingFrame is the keep-alive comment frame; clients ignore lines starting
// with ':'.
func PingFrame() []byte {
	return []byte(": ping\n\n")
}

// DataFrame encodes a message as a data-only SSE frame.
func DataFrame(msg domain.Shout) []byte {
	b, _ := json.Marshal(msg) // Shout contains no unmarshalable types
	frame := make([]byte, 0, len(b)+8)
	frame = append(frame, "data: "...)
	frame = append(frame, b...)
	frame = append(frame, "\n\n"...)
	return frame
}
