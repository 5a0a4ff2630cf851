package conversations

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Tshikamisava/kasi-rent-sub001/internal/gateway"
	"github.com/Tshikamisava/kasi-rent-sub001/internal/models"
	"github.com/Tshikamisava/kasi-rent-sub001/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB creates an in-memory SQLite database with all messaging tables.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Conversation{},
		&models.Participant{},
		&models.Message{},
		&models.Attachment{},
		&models.Reaction{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func TestManager_CreateOrGetPrivate_Idempotent(t *testing.T) {
	db := testDB(t)
	m := NewManager(db, nil, nil, nil)
	ctx := context.Background()

	a, created, err := m.CreateOrGetPrivate(ctx, 1, 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created {
		t.Error("first call should create")
	}
	b, created, err := m.CreateOrGetPrivate(ctx, 2, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if created || a.ID != b.ID {
		t.Errorf("got id %d (created=%v), want %d", b.ID, created, a.ID)
	}
}

func TestManager_CreateOrGetProperty_UsesDirectory(t *testing.T) {
	db := testDB(t)
	dir := StaticDirectory{
		42: {ID: 42, OwnerID: 5, Title: "2-bed in Khayelitsha"},
	}
	m := NewManager(db, dir, nil, nil)
	ctx := context.Background()

	conv, created, err := m.CreateOrGetProperty(ctx, 9, 42)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created {
		t.Error("first call should create")
	}
	if conv.Title != "2-bed in Khayelitsha" {
		t.Errorf("title = %q", conv.Title)
	}

	var owner models.Participant
	if err := db.Where("conversation_id = ? AND user_id = ?", conv.ID, 5).First(&owner).Error; err != nil {
		t.Fatalf("owner participant: %v", err)
	}
	if owner.Role != models.RoleAdmin {
		t.Errorf("owner role = %q, want admin", owner.Role)
	}
}

func TestManager_CreateOrGetProperty_UnknownProperty(t *testing.T) {
	db := testDB(t)
	m := NewManager(db, StaticDirectory{}, nil, nil)

	_, _, err := m.CreateOrGetProperty(context.Background(), 9, 404)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestManager_MarkRead_BroadcastsToOthers(t *testing.T) {
	db := testDB(t)
	reg := gateway.NewRegistry(nil)
	m := NewManager(db, nil, reg, nil)
	ctx := context.Background()

	conv, _, err := m.CreateOrGetPrivate(ctx, 1, 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	peer := reg.Register(1)
	reader := reg.Register(2)

	if _, err := m.MarkRead(ctx, conv.ID, 2); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	select {
	case ev := <-peer.Events():
		if ev.Type != gateway.EventReadAdvanced {
			t.Errorf("peer event = %q, want read.advanced", ev.Type)
		}
		if ev.ConversationID != conv.ID {
			t.Errorf("event conversation = %d, want %d", ev.ConversationID, conv.ID)
		}
	default:
		t.Error("peer did not receive read.advanced")
	}
	if len(reader.Events()) != 0 {
		t.Error("the reader's own connections should not be notified")
	}
}

func TestManager_MarkRead_NonParticipant(t *testing.T) {
	db := testDB(t)
	m := NewManager(db, nil, nil, nil)
	conv, _, _ := m.CreateOrGetPrivate(context.Background(), 1, 2)

	_, err := m.MarkRead(context.Background(), conv.ID, 9)
	if !errors.Is(err, store.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestHTTPDirectory_Property(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/properties/42":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":42,"ownerID":5,"title":"Backyard room, Soweto"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	dir := NewHTTPDirectory(srv.URL)
	prop, err := dir.Property(context.Background(), 42)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if prop.OwnerID != 5 || prop.Title != "Backyard room, Soweto" {
		t.Errorf("property = %+v", prop)
	}

	_, err = dir.Property(context.Background(), 999)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing property err = %v, want ErrNotFound", err)
	}
}
