package models

import "time"

// Message delivery states. The progression is monotonic: sent → delivered → read.
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
)

// Message content types.
const (
	ContentText  = "text"
	ContentImage = "image"
	ContentAudio = "audio"
	ContentFile  = "file"
)

// Message is a single entry in a conversation. Soft deletion is a tombstone
// flag: the row keeps its slot in (CreatedAt, ID) ordering so other
// participants' scrollback stays stable.
type Message struct {
	ID             uint    `gorm:"primaryKey;autoIncrement"`
	ConversationID uint    `gorm:"not null;index:idx_messages_conv_created,priority:1"`
	SenderID       uint    `gorm:"not null;index"`
	Content        *string `gorm:"type:text"`
	ContentType    string  `gorm:"size:16;default:text"`
	Status         string  `gorm:"size:16;default:sent;index"`
	Edited         bool    `gorm:"default:false"`
	Deleted        bool    `gorm:"default:false;index"`
	CreatedAt      time.Time `gorm:"index:idx_messages_conv_created,priority:2"`
	UpdatedAt      time.Time

	Attachments []Attachment `gorm:"foreignKey:MessageID"`
	Reactions   []Reaction   `gorm:"foreignKey:MessageID"`
}

// Attachment is a file owned by exactly one message. Attachments are created
// in the same transaction as their message and are never exposed as an
// independently deletable resource.
type Attachment struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	MessageID uint   `gorm:"not null;index"`
	URL       string `gorm:"size:512;not null"`
	Mime      string `gorm:"size:128"`
	Size      int64
	CreatedAt time.Time
}

// Reaction is one user's reaction to one message. The composite primary key
// enforces at most one row per (message, user); a second reaction from the
// same user replaces the first.
type Reaction struct {
	MessageID uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"primaryKey"`
	Reaction  string `gorm:"size:32;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
