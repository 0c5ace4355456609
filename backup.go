package sqlite

// Backup copies a database between two connections page by page, online:
// the source stays usable between steps, and source writes made through
// other connections restart the copy automatically. Both connections record
// the backup as a dependent and force-close it if either closes first.
type Backup struct {
	src    *Conn
	dst    *Conn
	backup sqlite3_backup
}

// BackupTo starts copying srcName on this connection into dstName on dst.
// Names follow the attached-database convention, "main" for the primary.
// The destination database is overwritten. Drive the copy with Step and
// finish with Close.
func (c *Conn) BackupTo(srcName string, dst *Conn, dstName string) (*Backup, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if dst == nil {
		return nil, misuse("nil destination connection")
	}
	if err := dst.checkOpen(); err != nil {
		return nil, err
	}
	h := sqlite3_backup_init(dst.db, dstName, c.db, srcName)
	if h == nil {
		// Init failure leaves the error on the destination handle.
		return nil, errConn(Code(sqlite3_extended_errcode(dst.db)), dst.db)
	}
	b := &Backup{src: c, dst: dst, backup: h}
	c.backups = append(c.backups, b)
	if dst != c {
		dst.backups = append(dst.backups, b)
	}
	return b, nil
}

func (b *Backup) checkOpen() error {
	if b.backup == nil {
		return ErrBackupClosed
	}
	return nil
}

// Step copies up to nPages pages and reports whether pages remain.
// Non-positive nPages copies everything left in one call. A BUSY or LOCKED
// condition on the source is not fatal: Step returns the error and may be
// retried later.
func (b *Backup) Step(nPages int) (bool, error) {
	if err := b.checkOpen(); err != nil {
		return false, err
	}
	if nPages <= 0 {
		nPages = -1
	}
	switch rc := sqlite3_backup_step(b.backup, nPages); rc {
	case OK:
		return true, nil
	case DONE:
		return false, nil
	default:
		return false, errCode(rc)
	}
}

// Remaining returns the number of pages still to copy as of the last Step.
func (b *Backup) Remaining() (int, error) {
	if err := b.checkOpen(); err != nil {
		return 0, err
	}
	return sqlite3_backup_remaining(b.backup), nil
}

// PageCount returns the source's total page count as of the last Step.
func (b *Backup) PageCount() (int, error) {
	if err := b.checkOpen(); err != nil {
		return 0, err
	}
	return sqlite3_backup_pagecount(b.backup), nil
}

// Close finishes the backup and detaches it from both connections. If the
// copy never ran to completion the destination is left unmodified or
// partial; the returned error reflects the final state. Close is
// idempotent.
func (b *Backup) Close() error {
	if b.backup == nil {
		return nil
	}
	err := b.release()
	b.src.forgetBackup(b)
	if b.dst != b.src {
		b.dst.forgetBackup(b)
	}
	return err
}

func (b *Backup) release() error {
	if b.backup == nil {
		return nil
	}
	h := b.backup
	b.backup = nil
	if rc := sqlite3_backup_finish(h); rc != OK {
		return errCode(rc)
	}
	return nil
}
