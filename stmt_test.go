package sqlite

import (
	"errors"
	"testing"
)

func prepareOne(t *testing.T, c *Conn, sql string) *Stmt {
	t.Helper()
	stmt, err := c.Query(sql)
	if err != nil {
		t.Fatalf("prepare %q: %v", sql, err)
	}
	t.Cleanup(func() { _ = stmt.Close() })
	return stmt
}

func TestStepStateMachine(t *testing.T) {
	c := openMemoryConn(t)
	stmt := prepareOne(t, c, "SELECT 1 UNION ALL SELECT 2")

	more, err := stmt.Step()
	if err != nil || !more {
		t.Fatalf("first Step = %v, %v", more, err)
	}
	more, err = stmt.Step()
	if err != nil || !more {
		t.Fatalf("second Step = %v, %v", more, err)
	}
	more, err = stmt.Step()
	if err != nil || more {
		t.Fatalf("third Step = %v, %v, want done", more, err)
	}

	// stepping a completed statement stays done and touches nothing
	for i := 0; i < 3; i++ {
		more, err = stmt.Step()
		if err != nil || more {
			t.Fatalf("Step after done = %v, %v", more, err)
		}
	}

	if err := stmt.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	more, err = stmt.Step()
	if err != nil || !more {
		t.Fatalf("Step after Reset = %v, %v", more, err)
	}
}

func TestColumnAccessRequiresRow(t *testing.T) {
	c := openMemoryConn(t)
	stmt := prepareOne(t, c, "SELECT 1")

	if _, err := stmt.ColumnInt64(0); err == nil {
		t.Fatal("column read before Step succeeded")
	}
	if _, err := stmt.Step(); err != nil {
		t.Fatal(err)
	}
	if _, err := stmt.ColumnInt64(0); err != nil {
		t.Fatalf("column read on row failed: %v", err)
	}
	if _, err := stmt.ColumnInt64(1); err == nil {
		t.Fatal("out-of-range column read succeeded")
	}
	if _, err := stmt.ColumnInt64(-1); err == nil {
		t.Fatal("negative column read succeeded")
	}
}

func TestBindRoundTrip(t *testing.T) {
	c := openMemoryConn(t)
	if err := c.Exec("CREATE TABLE t (i, f, s, b, n)"); err != nil {
		t.Fatal(err)
	}
	ins := prepareOne(t, c, "INSERT INTO t VALUES (?, ?, ?, ?, ?)")
	if err := ins.BindInt64(1, 42); err != nil {
		t.Fatal(err)
	}
	if err := ins.BindFloat64(2, 2.5); err != nil {
		t.Fatal(err)
	}
	if err := ins.BindText(3, "hello"); err != nil {
		t.Fatal(err)
	}
	if err := ins.BindBlob(4, []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := ins.BindNull(5); err != nil {
		t.Fatal(err)
	}
	if err := ins.StepToCompletion(); err != nil {
		t.Fatal(err)
	}

	sel := prepareOne(t, c, "SELECT i, f, s, b, n FROM t")
	if _, err := sel.Step(); err != nil {
		t.Fatal(err)
	}
	classes := []StorageClass{Integer, Float, Text, Blob, Null}
	for i, want := range classes {
		got, err := sel.ColumnType(i)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("column %d class = %v, want %v", i, got, want)
		}
	}
	if v, _ := sel.ColumnInt64(0); v != 42 {
		t.Errorf("i = %d", v)
	}
	if v, _ := sel.ColumnFloat64(1); v != 2.5 {
		t.Errorf("f = %v", v)
	}
	if v, _ := sel.ColumnText(2); v != "hello" {
		t.Errorf("s = %q", v)
	}
	if v, _ := sel.ColumnBlob(3); string(v) != "\x01\x02\x03" {
		t.Errorf("b = %v", v)
	}
}

func TestBindRangeChecked(t *testing.T) {
	c := openMemoryConn(t)
	stmt := prepareOne(t, c, "SELECT ?")

	var e *Error
	if err := stmt.BindInt64(0, 1); !errors.As(err, &e) || e.Code != RANGE {
		t.Fatalf("bind index 0 = %v, want RANGE", err)
	}
	if err := stmt.BindInt64(2, 1); !errors.As(err, &e) || e.Code != RANGE {
		t.Fatalf("bind index 2 = %v, want RANGE", err)
	}
	if err := stmt.BindInt64(1, 1); err != nil {
		t.Fatalf("bind index 1 failed: %v", err)
	}
}

func TestBindWhileRowActive(t *testing.T) {
	c := openMemoryConn(t)
	stmt := prepareOne(t, c, "SELECT ?")
	if err := stmt.BindInt64(1, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := stmt.Step(); err != nil {
		t.Fatal(err)
	}
	var e *Error
	if err := stmt.BindInt64(1, 2); !errors.As(err, &e) || e.Code != MISUSE {
		t.Fatalf("bind while row active = %v, want MISUSE", err)
	}
	if err := stmt.Reset(); err != nil {
		t.Fatal(err)
	}
	if err := stmt.BindInt64(1, 2); err != nil {
		t.Fatalf("bind after Reset failed: %v", err)
	}
}

func TestResetPreservesBindings(t *testing.T) {
	c := openMemoryConn(t)
	stmt := prepareOne(t, c, "SELECT ?")
	if err := stmt.BindInt64(1, 9); err != nil {
		t.Fatal(err)
	}
	for round := 0; round < 2; round++ {
		if _, err := stmt.Step(); err != nil {
			t.Fatal(err)
		}
		v, err := stmt.ColumnInt64(0)
		if err != nil || v != 9 {
			t.Fatalf("round %d: value = %d, %v", round, v, err)
		}
		if err := stmt.Reset(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestClearBindings(t *testing.T) {
	c := openMemoryConn(t)
	stmt := prepareOne(t, c, "SELECT ?")
	if err := stmt.BindInt64(1, 9); err != nil {
		t.Fatal(err)
	}
	if err := stmt.ClearBindings(); err != nil {
		t.Fatal(err)
	}
	if _, err := stmt.Step(); err != nil {
		t.Fatal(err)
	}
	cls, err := stmt.ColumnType(0)
	if err != nil || cls != Null {
		t.Fatalf("cleared binding class = %v, %v, want Null", cls, err)
	}
}

func TestNamedParameters(t *testing.T) {
	c := openMemoryConn(t)
	stmt := prepareOne(t, c, "SELECT :a + @b")

	if stmt.BindParameterCount() != 2 {
		t.Fatalf("parameter count = %d, want 2", stmt.BindParameterCount())
	}
	if idx := stmt.BindParameterIndex(":a"); idx != 1 {
		t.Fatalf("index of :a = %d, want 1", idx)
	}
	if idx := stmt.BindParameterIndex("@b"); idx != 2 {
		t.Fatalf("index of @b = %d, want 2", idx)
	}
	if idx := stmt.BindParameterIndex(":missing"); idx != 0 {
		t.Fatalf("index of :missing = %d, want 0", idx)
	}

	params, err := stmt.Parameters()
	if err != nil {
		t.Fatal(err)
	}
	if len(params) != 2 || params[0].Name != ":a" || params[1].Name != "@b" {
		t.Fatalf("parameters = %+v", params)
	}

	if err := stmt.BindName(":a", IntegerValue(40)); err != nil {
		t.Fatal(err)
	}
	if err := stmt.BindName("@b", IntegerValue(2)); err != nil {
		t.Fatal(err)
	}
	if _, err := stmt.Step(); err != nil {
		t.Fatal(err)
	}
	v, err := stmt.ColumnInt64(0)
	if err != nil || v != 42 {
		t.Fatalf("sum = %d, %v", v, err)
	}
}

func TestColumnInfo(t *testing.T) {
	c := openMemoryConn(t)
	if err := c.Exec("CREATE TABLE t (a INTEGER, b TEXT)"); err != nil {
		t.Fatal(err)
	}
	stmt := prepareOne(t, c, "SELECT a AS alias, b FROM t")
	name, err := stmt.ColumnName(0)
	if err != nil || name != "alias" {
		t.Fatalf("name = %q, %v", name, err)
	}
	info, err := stmt.ColumnInfo(0)
	if err != nil {
		t.Fatal(err)
	}
	if info.Name != "alias" {
		t.Fatalf("info name = %q", info.Name)
	}
	if info.DeclType != "INTEGER" {
		t.Fatalf("decltype = %q, want INTEGER", info.DeclType)
	}
	if hasColumnMetadata && (info.Table != "t" || info.Origin != "a") {
		t.Fatalf("origin = %q.%q, want t.a", info.Table, info.Origin)
	}
}

func TestScan(t *testing.T) {
	c := openMemoryConn(t)
	stmt := prepareOne(t, c, "SELECT 1, 2.5, 'x', x'0a', NULL")
	if _, err := stmt.Step(); err != nil {
		t.Fatal(err)
	}
	var (
		i  int64
		f  float64
		s  string
		b  []byte
		av any
	)
	if err := stmt.Scan(&i, &f, &s, &b, &av); err != nil {
		t.Fatal(err)
	}
	if i != 1 || f != 2.5 || s != "x" || len(b) != 1 || b[0] != 0x0a || av != nil {
		t.Fatalf("scanned %v %v %q %v %v", i, f, s, b, av)
	}
}

func TestStmtExecConvenience(t *testing.T) {
	c := openMemoryConn(t)
	if err := c.Exec("CREATE TABLE t (a)"); err != nil {
		t.Fatal(err)
	}
	stmt := prepareOne(t, c, "INSERT INTO t VALUES (?)")
	for i := 1; i <= 3; i++ {
		if err := stmt.Exec(i); err != nil {
			t.Fatalf("Exec(%d) failed: %v", i, err)
		}
	}
	if got := c.Changes(); got != 1 {
		t.Fatalf("Changes = %d, want 1", got)
	}
	count := prepareOne(t, c, "SELECT count(*) FROM t")
	if _, err := count.Step(); err != nil {
		t.Fatal(err)
	}
	if n, _ := count.ColumnInt64(0); n != 3 {
		t.Fatalf("count = %d, want 3", n)
	}
}

func TestStmtCloseLifecycle(t *testing.T) {
	c := openMemoryConn(t)
	stmt, err := c.Query("SELECT 1")
	if err != nil {
		t.Fatal(err)
	}
	if err := stmt.Close(); err != nil {
		t.Fatal(err)
	}
	if err := stmt.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if _, err := stmt.Step(); !errors.Is(err, ErrStmtClosed) {
		t.Fatalf("Step after Close = %v, want ErrStmtClosed", err)
	}
	if err := stmt.BindInt64(1, 1); !errors.Is(err, ErrStmtClosed) {
		t.Fatalf("Bind after Close = %v, want ErrStmtClosed", err)
	}
}

func TestStmtSQLAndReadOnly(t *testing.T) {
	c := openMemoryConn(t)
	if err := c.Exec("CREATE TABLE t (a)"); err != nil {
		t.Fatal(err)
	}
	sel := prepareOne(t, c, "SELECT a FROM t")
	if !sel.ReadOnly() {
		t.Fatal("SELECT not read-only")
	}
	if sel.SQL() != "SELECT a FROM t" {
		t.Fatalf("SQL = %q", sel.SQL())
	}
	ins := prepareOne(t, c, "INSERT INTO t VALUES (1)")
	if ins.ReadOnly() {
		t.Fatal("INSERT reported read-only")
	}
}
