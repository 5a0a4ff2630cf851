package db

import (
	"testing"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		password string
		host     string
		port     int
		database string
		want     string
	}{
		{
			name:     "no password",
			user:     "root",
			host:     "127.0.0.1",
			port:     3306,
			database: "kasirent_messaging",
			want:     "root@tcp(127.0.0.1:3306)/kasirent_messaging?parseTime=true&charset=utf8mb4",
		},
		{
			name:     "with password",
			user:     "chat",
			password: "s3cret",
			host:     "db.vpc.internal",
			port:     3307,
			database: "messaging",
			want:     "chat:s3cret@tcp(db.vpc.internal:3307)/messaging?parseTime=true&charset=utf8mb4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DSN(tt.user, tt.password, tt.host, tt.port, tt.database)
			if got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConnectSQLite_MissingPath(t *testing.T) {
	_, err := ConnectSQLite("")
	if err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestAutoMigrate_InMemory(t *testing.T) {
	db, err := ConnectSQLite(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}

	for _, table := range []string{"conversations", "participants", "messages", "attachments", "reactions"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("table %q not created", table)
		}
	}
}

func TestAllModels_Count(t *testing.T) {
	if got := len(AllModels()); got != 5 {
		t.Errorf("AllModels() returned %d models, want 5", got)
	}
}
