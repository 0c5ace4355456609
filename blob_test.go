package sqlite

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func openTestBlob(t *testing.T, readWrite bool) (*Conn, *BlobStream) {
	t.Helper()
	c := openMemoryConn(t)
	if err := c.Exec("CREATE TABLE t (b BLOB); INSERT INTO t VALUES (x'00010203040506070809')"); err != nil {
		t.Fatal(err)
	}
	blob, err := c.OpenBlob("main", "t", "b", c.LastInsertRowID(), readWrite)
	if err != nil {
		t.Fatalf("OpenBlob failed: %v", err)
	}
	t.Cleanup(func() { _ = blob.Close() })
	return c, blob
}

func TestBlobLenAndRead(t *testing.T) {
	_, blob := openTestBlob(t, false)
	n, err := blob.Len()
	if err != nil || n != 10 {
		t.Fatalf("Len = %d, %v, want 10", n, err)
	}
	buf := make([]byte, 10)
	got, err := blob.Read(buf)
	if err != nil || got != 10 {
		t.Fatalf("Read = %d, %v", got, err)
	}
	if !bytes.Equal(buf, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}) {
		t.Fatalf("content = %v", buf)
	}
	if _, err := blob.Read(buf); err != io.EOF {
		t.Fatalf("Read at end = %v, want io.EOF", err)
	}
}

func TestBlobReadClampedPastEnd(t *testing.T) {
	_, blob := openTestBlob(t, false)
	if _, err := blob.Seek(8, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 10)
	n, err := blob.Read(buf)
	if err != nil || n != 2 {
		t.Fatalf("Read near end = %d, %v, want 2", n, err)
	}
	if buf[0] != 8 || buf[1] != 9 {
		t.Fatalf("content = %v", buf[:n])
	}
}

func TestBlobReadAt(t *testing.T) {
	_, blob := openTestBlob(t, false)
	buf := make([]byte, 3)
	n, err := blob.ReadAt(buf, 4)
	if err != nil || n != 3 {
		t.Fatalf("ReadAt = %d, %v", n, err)
	}
	if !bytes.Equal(buf, []byte{4, 5, 6}) {
		t.Fatalf("content = %v", buf)
	}
	// position is unaffected
	first := make([]byte, 1)
	if _, err := blob.Read(first); err != nil || first[0] != 0 {
		t.Fatalf("Read after ReadAt = %v, %v", first, err)
	}
	if _, err := blob.ReadAt(buf, 10); err != io.EOF {
		t.Fatalf("ReadAt past end = %v, want io.EOF", err)
	}
}

func TestBlobWrite(t *testing.T) {
	c, blob := openTestBlob(t, true)
	if _, err := blob.Seek(2, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	n, err := blob.Write([]byte{0xaa, 0xbb})
	if err != nil || n != 2 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if err := blob.Close(); err != nil {
		t.Fatal(err)
	}

	stmt := prepareOne(t, c, "SELECT b FROM t")
	if _, err := stmt.Step(); err != nil {
		t.Fatal(err)
	}
	b, err := stmt.ColumnBlob(0)
	if err != nil {
		t.Fatal(err)
	}
	if b[2] != 0xaa || b[3] != 0xbb || b[0] != 0 {
		t.Fatalf("content after write = %v", b)
	}
}

func TestBlobWriteCannotGrow(t *testing.T) {
	_, blob := openTestBlob(t, true)
	if _, err := blob.Seek(8, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	n, err := blob.Write([]byte{1, 2, 3, 4})
	if err != io.ErrShortWrite {
		t.Fatalf("Write past end = %v, want io.ErrShortWrite", err)
	}
	if n != 2 {
		t.Fatalf("short write count = %d, want 2", n)
	}
	// entirely past the end writes nothing
	n, err = blob.Write([]byte{1})
	if err != io.ErrShortWrite || n != 0 {
		t.Fatalf("Write at end = %d, %v", n, err)
	}
}

func TestBlobReadOnlyRejectsWrite(t *testing.T) {
	_, blob := openTestBlob(t, false)
	var e *Error
	if _, err := blob.Write([]byte{1}); !errors.As(err, &e) || e.Code != MISUSE {
		t.Fatalf("Write on read-only blob = %v, want MISUSE", err)
	}
}

func TestBlobSeekClamps(t *testing.T) {
	_, blob := openTestBlob(t, false)
	pos, err := blob.Seek(-5, io.SeekStart)
	if err != nil || pos != 0 {
		t.Fatalf("Seek(-5) = %d, %v", pos, err)
	}
	pos, err = blob.Seek(100, io.SeekStart)
	if err != nil || pos != 10 {
		t.Fatalf("Seek(100) = %d, %v", pos, err)
	}
	pos, err = blob.Seek(-4, io.SeekEnd)
	if err != nil || pos != 6 {
		t.Fatalf("Seek(-4, End) = %d, %v", pos, err)
	}
	pos, err = blob.Seek(1, io.SeekCurrent)
	if err != nil || pos != 7 {
		t.Fatalf("Seek(1, Current) = %d, %v", pos, err)
	}
	if _, err := blob.Seek(0, 99); err == nil {
		t.Fatal("Seek with bad whence succeeded")
	}
}

func TestBlobCloseLifecycle(t *testing.T) {
	c, blob := openTestBlob(t, false)
	if err := blob.Close(); err != nil {
		t.Fatal(err)
	}
	if err := blob.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if _, err := blob.Read(make([]byte, 1)); !errors.Is(err, ErrBlobClosed) {
		t.Fatalf("Read after Close = %v, want ErrBlobClosed", err)
	}
	if len(c.blobs) != 0 {
		t.Fatalf("connection still tracks %d blobs", len(c.blobs))
	}
}

func TestBlobOnNonBlobColumn(t *testing.T) {
	c := openMemoryConn(t)
	if err := c.Exec("CREATE TABLE t (n); INSERT INTO t VALUES (42)"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.OpenBlob("main", "t", "n", 1, false); err == nil {
		t.Fatal("OpenBlob on integer cell succeeded")
	}
}

func TestZeroBlobReservesSpace(t *testing.T) {
	c := openMemoryConn(t)
	if err := c.Exec("CREATE TABLE t (b BLOB)"); err != nil {
		t.Fatal(err)
	}
	ins := prepareOne(t, c, "INSERT INTO t VALUES (?)")
	if err := ins.BindZeroBlob(1, 100); err != nil {
		t.Fatal(err)
	}
	if err := ins.StepToCompletion(); err != nil {
		t.Fatal(err)
	}
	blob, err := c.OpenBlob("main", "t", "b", c.LastInsertRowID(), true)
	if err != nil {
		t.Fatal(err)
	}
	defer blob.Close()
	n, err := blob.Len()
	if err != nil || n != 100 {
		t.Fatalf("reserved length = %d, %v, want 100", n, err)
	}
	if _, err := blob.Write([]byte("payload")); err != nil {
		t.Fatalf("Write into reserved space failed: %v", err)
	}
}
