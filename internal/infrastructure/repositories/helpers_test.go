package repositories

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		verified BOOLEAN NOT NULL DEFAULT 0,
		is_admin BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createVerificationTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE verification_codes (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		code TEXT NOT NULL,
		expires_at DATETIME NOT NULL,
		created_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE pending_signups (
		email TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		expires_at DATETIME NOT NULL,
		created_at DATETIME
	);`)
}

func createChatTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE chats (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		client_key TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE UNIQUE INDEX idx_chats_user_client_key ON chats(user_id, client_key);`)
	mustExec(t, db, `CREATE TABLE messages (
		id TEXT PRIMARY KEY,
		chat_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME
	);`)
}

func createCarPartTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE car_parts (
		id TEXT PRIMARY KEY,
		name_ar TEXT NOT NULL,
		name_en TEXT NOT NULL,
		name_fr TEXT NOT NULL,
		category TEXT NOT NULL,
		price_dzd REAL NOT NULL,
		brand TEXT,
		compatible TEXT,
		in_stock BOOLEAN NOT NULL,
		stock_count INTEGER NOT NULL DEFAULT 0,
		description TEXT,
		image_url TEXT,
		search_key TEXT NOT NULL DEFAULT '',
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createOilChangeTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE oil_changes (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		car_model TEXT,
		purchase_date DATETIME,
		change_date DATETIME NOT NULL,
		kilometers_done INTEGER NOT NULL,
		notes TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createAllTables(t *testing.T, db *gorm.DB) {
	createUserTable(t, db)
	createVerificationTables(t, db)
	createChatTables(t, db)
	createCarPartTable(t, db)
	createOilChangeTable(t, db)
}
