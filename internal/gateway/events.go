// Package gateway fans lifecycle events out to users' live connections. It
// keeps no outbound queue: a disconnected client reconciles missed history
// through REST pagination, so delivery here is at-least-once and best-effort.
package gateway

// Event types pushed over live connections.
const (
	EventMessageCreated   = "message.created"
	EventMessageEdited    = "message.edited"
	EventMessageDeleted   = "message.deleted"
	EventReactionUpserted = "reaction.upserted"
	EventReadAdvanced     = "read.advanced"
	EventTyping           = "typing"
)

// Event is the envelope pushed to clients. Clients reconcile by the
// message ordering key and must tolerate duplicates and reordering.
type Event struct {
	Type           string      `json:"type"`
	ConversationID uint        `json:"conversationId"`
	Payload        interface{} `json:"payload"`
}

// Broadcaster pushes one event to every live connection of every recipient.
// It reports how many connections accepted the event.
type Broadcaster interface {
	Broadcast(ev Event, recipients []uint) int
}
