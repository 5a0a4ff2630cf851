package api

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

// heartbeatInterval keeps intermediaries from reaping idle streams.
const heartbeatInterval = 15 * time.Second

// handleEvents is the realtime stream. The connection is registered in the
// presence tracker for the authenticated user and receives every lifecycle
// event fanned out to that user until the client goes away. Missed events
// are reconciled over the paginated history endpoint, not here.
func (s *Server) handleEvents(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	conn := s.opts.Registry.Register(caller(c).UserID)
	defer s.opts.Registry.Unregister(conn)

	writeSSE(c.Writer, "connected", gin.H{"connectionId": conn.ID})
	c.Writer.Flush()

	ctx := c.Request.Context()
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			writeSSE(c.Writer, "heartbeat", gin.H{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			c.Writer.Flush()
		case ev, ok := <-conn.Events():
			if !ok {
				return
			}
			writeSSE(c.Writer, ev.Type, ev)
			c.Writer.Flush()
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
