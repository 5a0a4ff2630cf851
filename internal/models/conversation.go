package models

import "time"

// Conversation kinds.
const (
	KindPrivate  = "private"
	KindProperty = "property"
)

// Participant roles.
const (
	RoleParticipant = "participant"
	RoleAdmin       = "admin"
)

// Conversation is a container of messages between a fixed set of participants,
// either a private thread between two users or a thread anchored to a property
// listing. ScopeKey is the uniqueness key that makes creation idempotent:
// "private:<loUserID>:<hiUserID>" for private threads,
// "property:<propertyID>:<initiatorID>" for property threads.
type Conversation struct {
	ID            uint    `gorm:"primaryKey;autoIncrement"`
	Kind          string  `gorm:"size:16;not null;index"`
	Title         string  `gorm:"size:256"`
	PropertyID    *uint   `gorm:"index"`
	ScopeKey      string  `gorm:"size:64;not null;uniqueIndex"`
	LastMessageAt time.Time `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Participants []Participant `gorm:"foreignKey:ConversationID"`
	Messages     []Message     `gorm:"foreignKey:ConversationID"`
}

// Participant is a user's membership record in a conversation, carrying the
// per-user read state. Rows are never hard-deleted while the conversation
// exists; leaving flips Active instead, so history attribution survives.
type Participant struct {
	ConversationID uint   `gorm:"primaryKey"`
	UserID         uint   `gorm:"primaryKey"`
	Role           string `gorm:"size:16;default:participant"`
	Active         bool   `gorm:"default:true"`
	LastReadAt     time.Time
	UnreadCount    int `gorm:"default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Conversation Conversation `gorm:"foreignKey:ConversationID"`
}
