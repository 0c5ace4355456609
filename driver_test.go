package sqlite

import (
	"context"
	"database/sql"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var sharedDB *sql.DB

func TestMain(m *testing.M) {
	if libErr == nil {
		var err error
		sharedDB, err = sql.Open("sqlitego", ":memory:")
		if err != nil {
			log.Fatalf("Failed to create database: %v", err)
		}
		if err := sharedDB.Ping(); err != nil {
			log.Fatalf("Error pinging database: %v", err)
		}
		// one connection: memory databases are per-connection
		sharedDB.SetMaxOpenConns(1)
		defer sharedDB.Close()
	}
	m.Run()
}

func openMem(t *testing.T) *sql.DB {
	t.Helper()
	requireLibLoaded(t)
	db, err := sql.Open("sqlitego", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDriverCRUD(t *testing.T) {
	db := openMem(t)
	_, err := db.Exec("CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, age INTEGER)")
	require.NoError(t, err)

	res, err := db.Exec("INSERT INTO users (name, age) VALUES (?, ?)", "alice", 30)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	require.Equal(t, int64(1), id)
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	var name string
	var age int
	err = db.QueryRow("SELECT name, age FROM users WHERE id = ?", id).Scan(&name, &age)
	require.NoError(t, err)
	require.Equal(t, "alice", name)
	require.Equal(t, 30, age)

	_, err = db.Exec("UPDATE users SET age = ? WHERE id = ?", 31, id)
	require.NoError(t, err)
	_, err = db.Exec("DELETE FROM users WHERE id = ?", id)
	require.NoError(t, err)
	err = db.QueryRow("SELECT name FROM users WHERE id = ?", id).Scan(&name)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDriverMultiStatementExec(t *testing.T) {
	db := openMem(t)
	_, err := db.Exec("CREATE TABLE a (x); CREATE TABLE b (y); INSERT INTO a VALUES (1); INSERT INTO b VALUES (2)")
	require.NoError(t, err)
	var x, y int
	require.NoError(t, db.QueryRow("SELECT x FROM a").Scan(&x))
	require.NoError(t, db.QueryRow("SELECT y FROM b").Scan(&y))
	require.Equal(t, 1, x)
	require.Equal(t, 2, y)
}

func TestDriverNamedArgs(t *testing.T) {
	db := openMem(t)
	_, err := db.Exec("CREATE TABLE t (a, b)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO t VALUES (:first, :second)",
		sql.Named("first", 1), sql.Named("second", "two"))
	require.NoError(t, err)

	var a int
	var b string
	err = db.QueryRow("SELECT a, b FROM t WHERE a = :first", sql.Named("first", 1)).Scan(&a, &b)
	require.NoError(t, err)
	require.Equal(t, 1, a)
	require.Equal(t, "two", b)
}

func TestDriverUnknownNamedArg(t *testing.T) {
	db := openMem(t)
	_, err := db.Exec("SELECT :known", sql.Named("unknown", 1))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown named parameter")
}

func TestDriverPreparedStatement(t *testing.T) {
	db := openMem(t)
	_, err := db.Exec("CREATE TABLE t (n)")
	require.NoError(t, err)

	stmt, err := db.Prepare("INSERT INTO t VALUES (?)")
	require.NoError(t, err)
	defer stmt.Close()
	for i := 0; i < 5; i++ {
		_, err := stmt.Exec(i)
		require.NoError(t, err)
	}
	var count int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM t").Scan(&count))
	require.Equal(t, 5, count)
}

func TestDriverArgCountMismatch(t *testing.T) {
	db := openMem(t)
	_, err := db.Exec("SELECT ?, ?", 1)
	require.Error(t, err)
}

func TestDriverTransactions(t *testing.T) {
	db := openMem(t)
	_, err := db.Exec("CREATE TABLE t (n)")
	require.NoError(t, err)

	tx, err := db.Begin()
	require.NoError(t, err)
	_, err = tx.Exec("INSERT INTO t VALUES (1)")
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	var count int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM t").Scan(&count))
	require.Equal(t, 0, count)

	tx, err = db.Begin()
	require.NoError(t, err)
	_, err = tx.Exec("INSERT INTO t VALUES (1)")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.NoError(t, db.QueryRow("SELECT count(*) FROM t").Scan(&count))
	require.Equal(t, 1, count)
}

func TestDriverNullValues(t *testing.T) {
	db := openMem(t)
	_, err := db.Exec("CREATE TABLE t (s TEXT)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO t VALUES (NULL)")
	require.NoError(t, err)
	var s sql.NullString
	require.NoError(t, db.QueryRow("SELECT s FROM t").Scan(&s))
	require.False(t, s.Valid)
}

func TestDriverTimestampDecoding(t *testing.T) {
	db := openMem(t)
	_, err := db.Exec("CREATE TABLE events (at DATETIME)")
	require.NoError(t, err)

	want := time.Date(2024, 5, 17, 12, 30, 45, 0, time.UTC)
	_, err = db.Exec("INSERT INTO events VALUES (?)", want)
	require.NoError(t, err)

	var got time.Time
	require.NoError(t, db.QueryRow("SELECT at FROM events").Scan(&got))
	require.True(t, want.Equal(got), "want %v, got %v", want, got)

	// plain textual timestamps decode too
	_, err = db.Exec("DELETE FROM events; INSERT INTO events VALUES ('2024-05-17 12:30:45')")
	require.NoError(t, err)
	require.NoError(t, db.QueryRow("SELECT at FROM events").Scan(&got))
	require.Equal(t, want, got)
}

func TestDriverBlobRoundTrip(t *testing.T) {
	db := openMem(t)
	_, err := db.Exec("CREATE TABLE t (b BLOB)")
	require.NoError(t, err)
	payload := []byte{0, 1, 2, 0xff}
	_, err = db.Exec("INSERT INTO t VALUES (?)", payload)
	require.NoError(t, err)
	var got []byte
	require.NoError(t, db.QueryRow("SELECT b FROM t").Scan(&got))
	require.Equal(t, payload, got)
}

func TestDriverConnector(t *testing.T) {
	requireLibLoaded(t)
	connector, err := NewConnector(":memory:", WithConnectorBusyTimeout(time.Second))
	require.NoError(t, err)
	db := sql.OpenDB(connector)
	defer db.Close()
	require.NoError(t, db.Ping())
}

func TestDriverDSNModes(t *testing.T) {
	cfg, err := parseDSN("/tmp/x.db?mode=ro&_busy_timeout=250")
	require.NoError(t, err)
	require.Equal(t, "/tmp/x.db", cfg.path)
	require.Equal(t, OpenReadOnly, cfg.flags)
	require.Equal(t, 250*time.Millisecond, cfg.busyTimeout)

	cfg, err = parseDSN("x.db?_busy_timeout=0")
	require.NoError(t, err)
	require.Equal(t, time.Duration(-1), cfg.busyTimeout)

	_, err = parseDSN("x.db?mode=bogus")
	require.Error(t, err)

	cfg, err = parseDSN("plain.db")
	require.NoError(t, err)
	require.Equal(t, "plain.db", cfg.path)
	require.Equal(t, OpenReadWrite|OpenCreate, cfg.flags)
}

func TestDriverContextCancellation(t *testing.T) {
	db := openMem(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := db.ExecContext(ctx, "SELECT 1")
	require.ErrorIs(t, err, context.Canceled)
}

func TestDriverSharedDB(t *testing.T) {
	requireLibLoaded(t)
	require.NotNil(t, sharedDB)
	var one int
	require.NoError(t, sharedDB.QueryRow("SELECT 1").Scan(&one))
	require.Equal(t, 1, one)
}
