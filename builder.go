package sqlite

import "time"

type openConfig struct {
	flags       int
	vfs         string
	busyTimeout time.Duration
}

// OpenOption adjusts how Open creates a connection.
type OpenOption func(*openConfig)

// WithFlags replaces the default OpenReadWrite|OpenCreate flags.
func WithFlags(flags int) OpenOption {
	return func(cfg *openConfig) { cfg.flags = flags }
}

// WithVFS selects a named VFS instead of the platform default.
func WithVFS(name string) OpenOption {
	return func(cfg *openConfig) { cfg.vfs = name }
}

// WithBusyTimeout sets the lock-retry timeout immediately after opening.
func WithBusyTimeout(d time.Duration) OpenOption {
	return func(cfg *openConfig) { cfg.busyTimeout = d }
}

// ConnBuilder accumulates connection configuration without holding any
// native resource. Nothing touches the engine until Open; every Open call
// yields an independent connection with the full set of registrations
// applied, in the order they were added. The builder is immutable: each
// method returns a derived builder, so partially configured builders can be
// shared and extended independently.
type ConnBuilder struct {
	path  string
	opts  []OpenOption
	setup []func(*Conn) error
}

// NewBuilder starts a builder for the database at path.
func NewBuilder(path string, opts ...OpenOption) *ConnBuilder {
	return &ConnBuilder{path: path, opts: opts}
}

func (b *ConnBuilder) with(f func(*Conn) error) *ConnBuilder {
	d := &ConnBuilder{path: b.path}
	d.opts = append(d.opts[:0:0], b.opts...)
	d.setup = append(b.setup[:len(b.setup):len(b.setup)], f)
	return d
}

// Option appends open options.
func (b *ConnBuilder) Option(opts ...OpenOption) *ConnBuilder {
	d := &ConnBuilder{path: b.path, setup: b.setup}
	d.opts = append(b.opts[:len(b.opts):len(b.opts)], opts...)
	return d
}

// Function registers a scalar function on every connection the builder
// opens.
func (b *ConnBuilder) Function(name string, nArg int, fn ScalarFunc) *ConnBuilder {
	return b.with(func(c *Conn) error { return c.CreateFunction(name, nArg, fn) })
}

// Aggregate registers an aggregate function on every connection the builder
// opens.
func (b *ConnBuilder) Aggregate(name string, nArg int, make func() Aggregate) *ConnBuilder {
	return b.with(func(c *Conn) error { return c.CreateAggregate(name, nArg, make) })
}

// Collation registers a collating sequence on every connection the builder
// opens.
func (b *ConnBuilder) Collation(name string, cmp CollationFunc) *ConnBuilder {
	return b.with(func(c *Conn) error { return c.CreateCollation(name, cmp) })
}

// CommitHook installs a commit hook on every connection the builder opens.
func (b *ConnBuilder) CommitHook(f func() bool) *ConnBuilder {
	return b.with(func(c *Conn) error { return c.CommitHook(f) })
}

// UpdateHook installs an update hook on every connection the builder opens.
func (b *ConnBuilder) UpdateHook(f UpdateFunc) *ConnBuilder {
	return b.with(func(c *Conn) error { return c.UpdateHook(f) })
}

// Authorizer installs an authorizer on every connection the builder opens.
func (b *ConnBuilder) Authorizer(f AuthorizerFunc) *ConnBuilder {
	return b.with(func(c *Conn) error { return c.Authorizer(f) })
}

// Trace installs a statement trace on every connection the builder opens.
func (b *ConnBuilder) Trace(f func(sql string)) *ConnBuilder {
	return b.with(func(c *Conn) error { return c.Trace(f) })
}

// Exec runs sql on every connection the builder opens, before it is handed
// to the caller. Useful for PRAGMAs and schema setup.
func (b *ConnBuilder) Exec(sql string) *ConnBuilder {
	return b.with(func(c *Conn) error { return c.Exec(sql) })
}

// Open creates a connection and applies the accumulated configuration in
// order. If any step fails the connection is closed and the first error
// returned.
func (b *ConnBuilder) Open() (*Conn, error) {
	c, err := Open(b.path, b.opts...)
	if err != nil {
		return nil, err
	}
	for _, f := range b.setup {
		if err := f(c); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return c, nil
}
