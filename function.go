package sqlite

import "unsafe"

const utf8Rep = 1 // SQLITE_UTF8

// CreateFunction registers fn as a scalar SQL function on this connection.
// nArg fixes the argument count; -1 accepts any number. fn replaces any
// function previously registered under the same name and argument count;
// nil fn removes it. Registrations are connection-local.
func (c *Conn) CreateFunction(name string, nArg int, fn ScalarFunc) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if fn == nil {
		return c.dropFunction(name, nArg)
	}
	id := functions.register(&funcDef{name: name, scalar: fn})
	rc := Code(c_sqlite3_create_function_v2(unsafe.Pointer(c.db),
		name, int32(nArg), utf8Rep, id,
		funcTrampoline, 0, 0, destroyFuncTrampoline))
	if rc != OK {
		functions.unregister(id)
		return errConn(rc, c.db)
	}
	return nil
}

// CreateAggregate registers an aggregate SQL function. make is invoked once
// per group to seed a fresh accumulator; the engine then feeds the group's
// rows to Step and reads the result from Final. A group with no rows
// finalizes a fresh accumulator directly.
func (c *Conn) CreateAggregate(name string, nArg int, make func() Aggregate) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if make == nil {
		return c.dropFunction(name, nArg)
	}
	id := functions.register(&funcDef{name: name, makeAgg: make})
	rc := Code(c_sqlite3_create_function_v2(unsafe.Pointer(c.db),
		name, int32(nArg), utf8Rep, id,
		0, stepTrampoline, finalTrampoline, destroyFuncTrampoline))
	if rc != OK {
		functions.unregister(id)
		return errConn(rc, c.db)
	}
	return nil
}

// dropFunction removes a prior registration. The engine invokes the destroy
// callback of the replaced definition, which releases its token.
func (c *Conn) dropFunction(name string, nArg int) error {
	rc := Code(c_sqlite3_create_function_v2(unsafe.Pointer(c.db),
		name, int32(nArg), utf8Rep, 0, 0, 0, 0, 0))
	if rc != OK {
		return errConn(rc, c.db)
	}
	return nil
}

// CreateCollation registers cmp as a collating sequence usable in COLLATE
// clauses and index definitions on this connection. cmp must implement a
// total order; a cmp that panics falls back to byte comparison for that
// call so ordering stays consistent. nil cmp removes the collation.
func (c *Conn) CreateCollation(name string, cmp CollationFunc) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if cmp == nil {
		rc := Code(c_sqlite3_create_collation_v2(unsafe.Pointer(c.db),
			name, utf8Rep, 0, 0, 0))
		if rc != OK {
			return errConn(rc, c.db)
		}
		return nil
	}
	id := collations.register(cmp)
	rc := Code(c_sqlite3_create_collation_v2(unsafe.Pointer(c.db),
		name, utf8Rep, id, collationTrampoline, destroyCollationTrampoline))
	if rc != OK {
		collations.unregister(id)
		return errConn(rc, c.db)
	}
	return nil
}
