// Package idx generates the ULID identifiers used for users, devices,
// attempt records and challenges. ULIDs sort by creation time, which keeps
// "newest first" listings a plain ORDER BY id.
package idx

import (
	"crypto/rand"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type ID string

// Zero represents the zero value ID, don't use this unless its a placeholder.
const Zero ID = ""

// ErrInvalid reports a malformed ULID string.
var ErrInvalid = errors.New("idx: invalid ulid")

// Generator safely generates ULIDs concurrently from a monotonic source.
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewGenerator builds a generator over r. Tests pass a deterministic reader.
func NewGenerator(r io.Reader) *Generator {
	return &Generator{entropy: ulid.Monotonic(r, 0)}
}

// New returns an ID stamped with the current time.
func (g *Generator) New() ID {
	return g.NewAt(time.Now().UTC())
}

// NewAt returns an ID stamped with t. It panics if the entropy source fails,
// since continuing without unique identifiers is not an option.
func (g *Generator) NewAt(t time.Time) ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	u := ulid.MustNew(ulid.Timestamp(t), g.entropy)
	return ID(u.String())
}

var (
	globalOnce sync.Once
	global     *Generator
)

func defaultGenerator() *Generator {
	globalOnce.Do(func() { global = NewGenerator(rand.Reader) })
	return global
}

// New returns a new lexicographically sortable ID using the current time in
// UTC and the process wide generator.
func New() ID { return defaultGenerator().New() }

// NewAt generates an ID at the provided time, useful for tests.
func NewAt(t time.Time) ID { return defaultGenerator().NewAt(t) }

// Parse parses a ULID string into an ID and validates its form.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalid
	}

	if _, err := ulid.ParseStrict(s); err != nil {
		return Zero, ErrInvalid
	}

	return ID(s), nil
}

// MustParse parses or panics. Useful for hard-coded IDs in tests.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Valid reports whether s is a well formed ID. Handlers use it to reject
// garbage before it reaches the store.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool { return id == Zero }

// String returns the canonical string form.
func (id ID) String() string { return string(id) }

// Time extracts the embedded UTC timestamp from the ID.
// If the ID is invalid or zero, it returns the zero time.
func (id ID) Time() time.Time {
	if id.IsZero() {
		return time.Time{}
	}

	u, err := ulid.ParseStrict(id.String())
	if err != nil {
		return time.Time{}
	}

	return ulid.Time(u.Time()).UTC()
}

// Compare reports the lexical ordering between a and b.
func Compare(a, b ID) int {
	return strings.Compare(a.String(), b.String())
}
