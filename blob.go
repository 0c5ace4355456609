package sqlite

import "io"

// BlobStream streams the content of a single blob cell incrementally, without
// materializing the whole value. It implements io.Reader, io.Writer and
// io.Seeker over a fixed-length region: the blob's length is fixed when the
// stream opens and writes cannot grow it. Use ZeroBlob to reserve space
// first when inserting large values.
//
// The stream is bound to the row it was opened on. If that row is deleted
// or its rowid changes underneath the stream, subsequent reads and writes
// fail with an ABORT error.
type BlobStream struct {
	conn     *Conn
	blob     sqlite3_blob
	length   int64
	pos      int64
	readOnly bool
}

// OpenBlob opens an incremental stream over the blob in the given column of
// the row with rowid in table. database names the attached database, "main"
// for the primary. With readWrite false the stream rejects writes. Opening
// fails if the cell does not hold a blob (a MISUSE-class engine error).
func (c *Conn) OpenBlob(database, table, column string, rowid int64, readWrite bool) (*BlobStream, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	h, rc := sqlite3_blob_open(c.db, database, table, column, rowid, readWrite)
	if rc != OK {
		return nil, errConn(rc, c.db)
	}
	b := &BlobStream{
		conn:     c,
		blob:     h,
		length:   int64(sqlite3_blob_bytes(h)),
		readOnly: !readWrite,
	}
	c.blobs = append(c.blobs, b)
	return b, nil
}

func (b *BlobStream) checkOpen() error {
	if b.blob == nil {
		return ErrBlobClosed
	}
	return nil
}

// Len returns the blob's length in bytes, fixed at open time.
func (b *BlobStream) Len() (int64, error) {
	if err := b.checkOpen(); err != nil {
		return 0, err
	}
	return b.length, nil
}

// Read copies bytes from the current position into p, advancing the
// position. Requests extending past the end are truncated to the available
// bytes; at the end it returns 0, io.EOF.
func (b *BlobStream) Read(p []byte) (int, error) {
	if err := b.checkOpen(); err != nil {
		return 0, err
	}
	if b.pos >= b.length {
		return 0, io.EOF
	}
	n := int64(len(p))
	if rem := b.length - b.pos; n > rem {
		n = rem
	}
	if n == 0 {
		return 0, nil
	}
	if rc := sqlite3_blob_read(b.blob, p[:n], int(b.pos)); rc != OK {
		return 0, errConn(rc, b.conn.db)
	}
	b.pos += n
	return int(n), nil
}

// ReadAt copies bytes starting at off without moving the position.
func (b *BlobStream) ReadAt(p []byte, off int64) (int, error) {
	if err := b.checkOpen(); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, rangeErr("blob read at negative offset %d", off)
	}
	if off >= b.length {
		return 0, io.EOF
	}
	n := int64(len(p))
	if rem := b.length - off; n > rem {
		n = rem
	}
	if n == 0 {
		return 0, nil
	}
	if rc := sqlite3_blob_read(b.blob, p[:n], int(off)); rc != OK {
		return 0, errConn(rc, b.conn.db)
	}
	if n < int64(len(p)) {
		return int(n), io.EOF
	}
	return int(n), nil
}

// Write copies p into the blob at the current position, advancing the
// position. The blob cannot grow: bytes that would land past the fixed
// length are dropped and a short count returned with io.ErrShortWrite.
func (b *BlobStream) Write(p []byte) (int, error) {
	if err := b.checkOpen(); err != nil {
		return 0, err
	}
	if b.readOnly {
		return 0, misuse("write on read-only blob")
	}
	n := int64(len(p))
	if rem := b.length - b.pos; n > rem {
		n = rem
	}
	if n > 0 {
		if rc := sqlite3_blob_write(b.blob, p[:n], int(b.pos)); rc != OK {
			return 0, errConn(rc, b.conn.db)
		}
		b.pos += n
	}
	if n < int64(len(p)) {
		return int(n), io.ErrShortWrite
	}
	return int(n), nil
}

// Seek sets the position for the next Read or Write. Positions outside
// [0, Len] are clamped to the nearer bound.
func (b *BlobStream) Seek(offset int64, whence int) (int64, error) {
	if err := b.checkOpen(); err != nil {
		return 0, err
	}
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = b.pos + offset
	case io.SeekEnd:
		pos = b.length + offset
	default:
		return 0, misuse("invalid seek whence %d", whence)
	}
	if pos < 0 {
		pos = 0
	}
	if pos > b.length {
		pos = b.length
	}
	b.pos = pos
	return pos, nil
}

// Close releases the stream and detaches it from the connection. Closing a
// write stream commits its writes as part of the enclosing transaction.
// Close is idempotent.
func (b *BlobStream) Close() error {
	if b.blob == nil {
		return nil
	}
	err := b.release()
	b.conn.forgetBlob(b)
	return err
}

// release closes the native handle without touching the connection's open
// set; the connection's close cascade iterates that set itself.
func (b *BlobStream) release() error {
	if b.blob == nil {
		return nil
	}
	h := b.blob
	b.blob = nil
	if rc := sqlite3_blob_close(h); rc != OK {
		return errCode(rc)
	}
	return nil
}

var (
	_ io.Reader   = (*BlobStream)(nil)
	_ io.ReaderAt = (*BlobStream)(nil)
	_ io.Writer   = (*BlobStream)(nil)
	_ io.Seeker   = (*BlobStream)(nil)
	_ io.Closer   = (*BlobStream)(nil)
)
