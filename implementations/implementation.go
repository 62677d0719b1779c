package implementations

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/notargets/defelement/elements"
	"github.com/notargets/defelement/types"
)

var (
	ErrNotImplemented        = types.ErrNotImplemented
	ErrVariantNotImplemented = types.ErrVariantNotImplemented
	ErrLibraryMissing        = types.ErrLibraryMissing
)

// Implementation is a finite element library that can be compared against
// the reference. Implementations are not safe for concurrent use; each
// worker creates its own. Those holding external resources also implement
// io.Closer.
type Implementation interface {
	ID() string
	Name() string
	// Verification reports whether the library takes part in verification.
	Verification() bool
	// EntityDOFsAndTabulator creates the element for one example. Errors
	// wrap ErrNotImplemented or ErrLibraryMissing where they apply.
	EntityDOFsAndTabulator(ctx context.Context, el *elements.Element, ex Example) (types.EntityDOFs, types.Tabulator, error)
}

type Config struct {
	// Python is the interpreter the subprocess adapters run.
	Python string
	// CacheSize bounds each tabulation cache, in tables.
	CacheSize int
	Logger    *slog.Logger
}

func DefaultConfig() Config {
	return Config{Python: "python3", CacheSize: 16, Logger: slog.Default()}
}

type Factory func(cfg Config) (Implementation, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a library available by id. It panics on duplicates, as it
// is called from package init functions.
func Register(id string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[id]; dup {
		panic(fmt.Errorf("implementation %q registered twice", id))
	}
	registry[id] = f
}

func New(id string, cfg Config) (Implementation, error) {
	registryMu.RLock()
	f, ok := registry[id]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown implementation %q", id)
	}
	return f(cfg)
}

// IDs lists every registered library, sorted.
func IDs() (ids []string) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return
}

// VerificationIDs lists the registered libraries that take part in
// verification, sorted.
func VerificationIDs() (ids []string) {
	for _, id := range IDs() {
		impl, err := New(id, DefaultConfig())
		if err != nil {
			continue
		}
		if impl.Verification() {
			ids = append(ids, id)
		}
		if c, ok := impl.(interface{ Close() error }); ok {
			_ = c.Close()
		}
	}
	return
}

// displayOnly is a library DefElement lists but cannot verify.
type displayOnly struct {
	id, name string
}

func (d displayOnly) ID() string         { return d.id }
func (d displayOnly) Name() string       { return d.name }
func (d displayOnly) Verification() bool { return false }

func (d displayOnly) EntityDOFsAndTabulator(context.Context, *elements.Element, Example) (types.EntityDOFs, types.Tabulator, error) {
	return nil, nil, fmt.Errorf("%s does not support verification: %w", d.name, ErrNotImplemented)
}

func init() {
	for _, d := range []displayOnly{{"ufl", "UFL"}, {"bempp", "Bempp-cl"}} {
		d := d
		Register(d.id, func(Config) (Implementation, error) { return d, nil })
	}
}
