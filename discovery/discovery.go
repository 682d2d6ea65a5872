// Package discovery collects test group descriptors. Test packages
// register their groups explicitly, usually from an init function, the
// way database/sql drivers register themselves; the orchestrator never
// performs reflection.
package discovery

import (
	"fmt"
	"sort"
	"sync"

	"github.com/micro-hil/go-hil/types"
)

// Warning records a test module that failed to load. Warnings are
// non-fatal by default: the module is excluded from the run. A strict
// policy outside this package may promote them to a fatal abort.
// Warnings never surface as TestResults.
type Warning struct {
	Module string
	Err    error
}

func (w Warning) String() string {
	return fmt.Sprintf("module %s failed to load: %v", w.Module, w.Err)
}

// Loader produces the ordered group descriptors for one run.
type Loader interface {
	Load() ([]types.TestGroup, []Warning)
}

// Registrar accumulates registered groups and load failures.
type Registrar struct {
	mu       sync.Mutex
	groups   map[string]types.TestGroup
	warnings []Warning
}

// NewRegistrar creates an empty registrar.
func NewRegistrar() *Registrar {
	return &Registrar{groups: make(map[string]types.TestGroup)}
}

// Register adds a group. Duplicate names are rejected so two modules
// cannot silently shadow each other's results.
func (r *Registrar) Register(group types.TestGroup) error {
	if group.Name == "" {
		return fmt.Errorf("test group name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.groups[group.Name]; exists {
		return fmt.Errorf("test group %q already registered", group.Name)
	}
	r.groups[group.Name] = group
	return nil
}

// RegisterError records a module that could not be loaded. It is the
// analog of an import failure in a scanning loader.
func (r *Registrar) RegisterError(module string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, Warning{Module: module, Err: err})
}

// Load returns the registered groups sorted lexically by name, so
// repeated runs against unchanged input see identical ordering, plus any
// accumulated load warnings.
func (r *Registrar) Load() ([]types.TestGroup, []Warning) {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.groups))
	for name := range r.groups {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]types.TestGroup, 0, len(names))
	for _, name := range names {
		groups = append(groups, r.groups[name])
	}
	warnings := make([]Warning, len(r.warnings))
	copy(warnings, r.warnings)
	return groups, warnings
}

// Default is the process-wide registrar used by self-registering test
// packages.
var Default = NewRegistrar()

// Register adds a group to the default registrar.
func Register(group types.TestGroup) error {
	return Default.Register(group)
}

// RegisterError records a load failure on the default registrar.
func RegisterError(module string, err error) {
	Default.RegisterError(module, err)
}
