package sqlite

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/ebitengine/purego"
)

// Callback plumbing. The engine invokes C function pointers; purego turns Go
// funcs into such pointers, but those trampolines are a scarce resource, so
// exactly one is created per callback kind at package init. Each trampoline
// receives the user-data pointer the connection registered, which is a token
// into one of the registries below rather than a real pointer. Dispatch is
// token -> Go closure; no Go pointer ever crosses the boundary.
//
// All callbacks run synchronously on the thread driving the native call that
// triggered them and may reenter the owning connection, so nothing here
// takes a lock while user code runs.

var (
	commitHooks    = newRegistry() // func() bool
	rollbackHooks  = newRegistry() // func()
	updateHooks    = newRegistry() // UpdateFunc
	traceHooks     = newRegistry() // *traceState
	progressHooks  = newRegistry() // func() bool
	authorizers    = newRegistry() // AuthorizerFunc
	functions      = newRegistry() // *funcDef
	collations     = newRegistry() // CollationFunc
	aggregateState = newRegistry() // Aggregate instances, one per group
)

// UpdateFunc receives row-change notifications. op is one of the engine's
// authorizer action codes for INSERT, UPDATE or DELETE.
type UpdateFunc func(op int, database, table string, rowid int64)

// AuthorizerFunc inspects an action during statement compilation and returns
// AuthOK, AuthDeny or AuthIgnore.
type AuthorizerFunc func(action int, arg1, arg2, database, trigger string) int

// CollationFunc compares two text values, returning <0, 0 or >0.
type CollationFunc func(a, b string) int

// ScalarFunc implements a user-defined scalar SQL function. The argument
// values are backed by live engine memory and only valid for the duration of
// the call; Detach them to keep them.
type ScalarFunc func(args []NativeValue) (Value, error)

// Aggregate is per-group accumulator state for a user-defined aggregate
// function. A fresh instance is created for every group, so implementations
// are free to keep plain mutable fields.
type Aggregate interface {
	// Step folds one row's arguments into the accumulator.
	Step(args []NativeValue) error
	// Final produces the group's value. It is called exactly once.
	Final() (Value, error)
}

type funcDef struct {
	name    string
	scalar  ScalarFunc
	makeAgg func() Aggregate
}

type traceState struct {
	trace   func(sql string)
	profile func(sql string, elapsed time.Duration)
}

const ptrSize = unsafe.Sizeof(uintptr(0))

// nativeArgs wraps the argv array of a function callback. The live flag is
// shared by all values of one invocation and flipped off when it returns.
func nativeArgs(argc int32, argv uintptr, live *bool) []NativeValue {
	args := make([]NativeValue, argc)
	for i := int32(0); i < argc; i++ {
		p := *(*uintptr)(unsafe.Pointer(argv + uintptr(i)*ptrSize))
		args[i] = NativeValue{handle: sqlite3_value((*sqlite3_value_t)(unsafe.Pointer(p))), live: live}
	}
	return args
}

// resultValue writes v into the function result slot.
func resultValue(ctx sqlite3_context, v Value) {
	switch v.Class() {
	case Integer:
		sqlite3_result_int64(ctx, v.Int64())
	case Float:
		sqlite3_result_double(ctx, v.Float64())
	case Text:
		sqlite3_result_text(ctx, v.text)
	case Blob:
		if v.IsZeroBlob() {
			sqlite3_result_zeroblob(ctx, v.zeroLen)
		} else {
			sqlite3_result_blob(ctx, v.blob)
		}
	default:
		sqlite3_result_null(ctx)
	}
}

// resultRecovered translates a recovered panic or returned error from user
// code into a function error, so one misbehaving callback fails only the
// invoking query.
func resultRecovered(ctx sqlite3_context, recovered any, err error) {
	switch {
	case recovered != nil:
		sqlite3_result_error(ctx, fmt.Sprintf("panic in user function: %v", recovered))
	case err != nil:
		sqlite3_result_error(ctx, err.Error())
	}
}

var (
	commitTrampoline = purego.NewCallback(func(arg uintptr) uintptr {
		f, _ := commitHooks.lookup(arg).(func() bool)
		if f != nil && f() {
			return 1 // abort the commit, roll back instead
		}
		return 0
	})

	rollbackTrampoline = purego.NewCallback(func(arg uintptr) uintptr {
		if f, _ := rollbackHooks.lookup(arg).(func()); f != nil {
			f()
		}
		return 0
	})

	updateTrampoline = purego.NewCallback(func(arg uintptr, op uintptr, db uintptr, tbl uintptr, rowid int64) uintptr {
		if f, _ := updateHooks.lookup(arg).(UpdateFunc); f != nil {
			f(int(int32(op)), copyCString(unsafe.Pointer(db)), copyCString(unsafe.Pointer(tbl)), rowid)
		}
		return 0
	})

	traceTrampoline = purego.NewCallback(func(mask uintptr, arg uintptr, p uintptr, x uintptr) uintptr {
		st, _ := traceHooks.lookup(arg).(*traceState)
		if st == nil {
			return 0
		}
		switch uint32(mask) {
		case traceStmt:
			if st.trace != nil {
				st.trace(copyCString(unsafe.Pointer(x)))
			}
		case traceProfile:
			if st.profile != nil {
				nanos := *(*int64)(unsafe.Pointer(x))
				sql := ""
				if p != 0 {
					sql = copyCString(c_sqlite3_sql(unsafe.Pointer(p)))
				}
				st.profile(sql, time.Duration(nanos))
			}
		}
		return 0
	})

	progressTrampoline = purego.NewCallback(func(arg uintptr) uintptr {
		f, _ := progressHooks.lookup(arg).(func() bool)
		if f != nil && f() {
			return 1 // nonzero interrupts the running statement
		}
		return 0
	})

	authorizerTrampoline = purego.NewCallback(func(arg uintptr, action uintptr, a1, a2, db, trigger uintptr) uintptr {
		f, _ := authorizers.lookup(arg).(AuthorizerFunc)
		if f == nil {
			return AuthOK
		}
		verdict := AuthOK
		func() {
			defer func() {
				if recover() != nil {
					verdict = AuthDeny
				}
			}()
			verdict = f(int(int32(action)),
				copyCString(unsafe.Pointer(a1)),
				copyCString(unsafe.Pointer(a2)),
				copyCString(unsafe.Pointer(db)),
				copyCString(unsafe.Pointer(trigger)))
		}()
		return uintptr(int32(verdict))
	})

	funcTrampoline = purego.NewCallback(func(ctxPtr uintptr, argc int32, argv uintptr) uintptr {
		ctx := sqlite3_context((*sqlite3_context_t)(unsafe.Pointer(ctxPtr)))
		def, _ := functions.lookup(c_sqlite3_user_data(unsafe.Pointer(ctx))).(*funcDef)
		if def == nil || def.scalar == nil {
			sqlite3_result_error(ctx, "unknown function")
			return 0
		}
		live := true
		defer func() { live = false }()
		var out Value
		var err error
		panicked := true
		func() {
			defer func() {
				if panicked {
					resultRecovered(ctx, recover(), nil)
				}
			}()
			out, err = def.scalar(nativeArgs(argc, argv, &live))
			panicked = false
		}()
		if panicked {
			return 0
		}
		if err != nil {
			resultRecovered(ctx, nil, err)
			return 0
		}
		resultValue(ctx, out)
		return 0
	})

	stepTrampoline = purego.NewCallback(func(ctxPtr uintptr, argc int32, argv uintptr) uintptr {
		ctx := sqlite3_context((*sqlite3_context_t)(unsafe.Pointer(ctxPtr)))
		def, _ := functions.lookup(c_sqlite3_user_data(unsafe.Pointer(ctx))).(*funcDef)
		if def == nil || def.makeAgg == nil {
			sqlite3_result_error(ctx, "unknown aggregate")
			return 0
		}
		// Eight bytes of per-group scratch space hold the token of this
		// group's accumulator. Zero means first row of a new group.
		slot := c_sqlite3_aggregate_context(unsafe.Pointer(ctx), 8)
		if slot == nil {
			sqlite3_result_error(ctx, "out of memory")
			return 0
		}
		id := *(*uintptr)(slot)
		var acc Aggregate
		if id == 0 {
			acc = def.makeAgg()
			id = aggregateState.register(acc)
			*(*uintptr)(slot) = id
		} else {
			acc, _ = aggregateState.lookup(id).(Aggregate)
		}
		if acc == nil {
			sqlite3_result_error(ctx, "lost aggregate state")
			return 0
		}
		live := true
		defer func() { live = false }()
		var err error
		func() {
			defer func() { resultRecovered(ctx, recover(), nil) }()
			err = acc.Step(nativeArgs(argc, argv, &live))
		}()
		if err != nil {
			resultRecovered(ctx, nil, err)
		}
		return 0
	})

	finalTrampoline = purego.NewCallback(func(ctxPtr uintptr) uintptr {
		ctx := sqlite3_context((*sqlite3_context_t)(unsafe.Pointer(ctxPtr)))
		def, _ := functions.lookup(c_sqlite3_user_data(unsafe.Pointer(ctx))).(*funcDef)
		if def == nil || def.makeAgg == nil {
			sqlite3_result_error(ctx, "unknown aggregate")
			return 0
		}
		var acc Aggregate
		// Zero allocation size: only retrieve scratch space if xStep ever
		// allocated it. A group with no rows finalizes a fresh seed.
		if slot := c_sqlite3_aggregate_context(unsafe.Pointer(ctx), 0); slot != nil {
			if id := *(*uintptr)(slot); id != 0 {
				acc, _ = aggregateState.unregister(id).(Aggregate)
			}
		}
		if acc == nil {
			acc = def.makeAgg()
		}
		var out Value
		var err error
		panicked := true
		func() {
			defer func() {
				if panicked {
					resultRecovered(ctx, recover(), nil)
				}
			}()
			out, err = acc.Final()
			panicked = false
		}()
		if panicked {
			return 0
		}
		if err != nil {
			resultRecovered(ctx, nil, err)
			return 0
		}
		resultValue(ctx, out)
		return 0
	})

	destroyFuncTrampoline = purego.NewCallback(func(arg uintptr) uintptr {
		functions.unregister(arg)
		return 0
	})

	collationTrampoline = purego.NewCallback(func(arg uintptr, aLen int32, a uintptr, bLen int32, b uintptr) uintptr {
		f, _ := collations.lookup(arg).(CollationFunc)
		sa := string(copyCBytes(unsafe.Pointer(a), aLen))
		sb := string(copyCBytes(unsafe.Pointer(b), bLen))
		cmp := 0
		func() {
			defer func() {
				if recover() != nil {
					// A broken collation must still be a total order; fall
					// back to byte comparison.
					cmp = compareBytes(sa, sb)
				}
			}()
			if f != nil {
				cmp = f(sa, sb)
			} else {
				cmp = compareBytes(sa, sb)
			}
		}()
		return uintptr(int32(cmp))
	})

	destroyCollationTrampoline = purego.NewCallback(func(arg uintptr) uintptr {
		collations.unregister(arg)
		return 0
	})
)

func compareBytes(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
