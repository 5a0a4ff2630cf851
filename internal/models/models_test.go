package models

import (
	"reflect"
	"strings"
	"testing"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

// assertFieldType checks that a struct field has the expected Go type.
func assertFieldType(t *testing.T, typ reflect.Type, fieldName, expectedType string) {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	got := f.Type.String()
	if got != expectedType {
		t.Errorf("%s.%s type = %q, want %q", typ.Name(), fieldName, got, expectedType)
	}
}

func TestConversation_Fields(t *testing.T) {
	typ := reflect.TypeOf(Conversation{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "Kind", "size:16")
	assertGormTag(t, typ, "Kind", "index")
	assertGormTag(t, typ, "Title", "size:256")
	assertGormTag(t, typ, "ScopeKey", "uniqueIndex")
	assertGormTag(t, typ, "LastMessageAt", "index")

	assertFieldType(t, typ, "PropertyID", "*uint")
	assertFieldType(t, typ, "LastMessageAt", "time.Time")
	assertFieldType(t, typ, "Participants", "[]models.Participant")
	assertFieldType(t, typ, "Messages", "[]models.Message")
}

func TestParticipant_CompositeKey(t *testing.T) {
	typ := reflect.TypeOf(Participant{})

	assertGormTag(t, typ, "ConversationID", "primaryKey")
	assertGormTag(t, typ, "UserID", "primaryKey")
	assertGormTag(t, typ, "Role", "default:participant")
	assertGormTag(t, typ, "Active", "default:true")
	assertGormTag(t, typ, "UnreadCount", "default:0")

	assertFieldType(t, typ, "LastReadAt", "time.Time")
	assertFieldType(t, typ, "UnreadCount", "int")
}

func TestMessage_Fields(t *testing.T) {
	typ := reflect.TypeOf(Message{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ConversationID", "not null")
	assertGormTag(t, typ, "SenderID", "not null")
	assertGormTag(t, typ, "Status", "default:sent")
	assertGormTag(t, typ, "ContentType", "default:text")
	assertGormTag(t, typ, "Deleted", "default:false")
	assertGormTag(t, typ, "Deleted", "index")

	// Content is nullable: attachment-only messages carry no text.
	assertFieldType(t, typ, "Content", "*string")
	assertFieldType(t, typ, "Attachments", "[]models.Attachment")
	assertFieldType(t, typ, "Reactions", "[]models.Reaction")
}

func TestMessage_OrderingIndex(t *testing.T) {
	typ := reflect.TypeOf(Message{})

	// Pagination orders by (created_at, id) within a conversation; both
	// columns share the composite index.
	assertGormTag(t, typ, "ConversationID", "idx_messages_conv_created")
	assertGormTag(t, typ, "CreatedAt", "idx_messages_conv_created")
}

func TestAttachment_Fields(t *testing.T) {
	typ := reflect.TypeOf(Attachment{})

	assertGormTag(t, typ, "MessageID", "not null")
	assertGormTag(t, typ, "MessageID", "index")
	assertGormTag(t, typ, "URL", "size:512")
	assertGormTag(t, typ, "URL", "not null")
	assertFieldType(t, typ, "Size", "int64")
}

func TestReaction_CompositeKey(t *testing.T) {
	typ := reflect.TypeOf(Reaction{})

	assertGormTag(t, typ, "MessageID", "primaryKey")
	assertGormTag(t, typ, "UserID", "primaryKey")
	assertGormTag(t, typ, "Reaction", "size:32")
	assertGormTag(t, typ, "Reaction", "not null")
}

func TestStatusConstants(t *testing.T) {
	if StatusSent != "sent" || StatusDelivered != "delivered" || StatusRead != "read" {
		t.Errorf("status constants = %q/%q/%q", StatusSent, StatusDelivered, StatusRead)
	}
	if KindPrivate != "private" || KindProperty != "property" {
		t.Errorf("kind constants = %q/%q", KindPrivate, KindProperty)
	}
}
