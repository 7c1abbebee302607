package lint

import (
	"cmp"
	"maps"
	"slices"
	"sync"

	"github.com/yaklabco/marklint/pkg/config"
)

// Registry indexes rules by ID and by name, with an alias table for legacy
// markdownlint spellings. All methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	byID    map[string]Rule
	byName  map[string]Rule
	aliases map[string]string // alias -> canonical ID
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:    make(map[string]Rule),
		byName:  make(map[string]Rule),
		aliases: make(map[string]string),
	}
}

// Register adds a rule, replacing any earlier rule with the same ID.
func (r *Registry) Register(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[rule.ID()] = rule
	r.byName[rule.Name()] = rule
}

// RegisterAlias maps a legacy spelling to a canonical rule ID, e.g.
// "single-h1" -> "MD041".
func (r *Registry) RegisterAlias(alias, ruleID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[alias] = ruleID
}

// lookup finds a rule by ID or, failing that, by name. Callers hold the lock.
func (r *Registry) lookup(key string) (Rule, bool) {
	if rule, ok := r.byID[key]; ok {
		return rule, true
	}
	rule, ok := r.byName[key]
	return rule, ok
}

// Get retrieves a rule by ID or name.
func (r *Registry) Get(key string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(key)
}

// GetByID retrieves a rule by its ID only.
func (r *Registry) GetByID(id string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.byID[id]
	return rule, ok
}

// GetByName retrieves a rule by its name only.
func (r *Registry) GetByName(name string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.byName[name]
	return rule, ok
}

// Resolve maps a key to its canonical ID and rule. The key may be a rule ID,
// a rule name, or a registered alias.
func (r *Registry) Resolve(key string) (string, Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rule, ok := r.lookup(key); ok {
		return rule.ID(), rule, true
	}
	if target, ok := r.aliases[key]; ok {
		if rule, ok := r.byID[target]; ok {
			return rule.ID(), rule, true
		}
	}
	return "", nil, false
}

// Rules returns every registered rule, sorted by ID.
func (r *Registry) Rules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := slices.Collect(maps.Values(r.byID))
	slices.SortFunc(rules, func(a, b Rule) int {
		return cmp.Compare(a.ID(), b.ID())
	})
	return rules
}

// IDs returns every registered rule ID, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.byID))
}

// DefaultRegistry is the process-wide registry that built-in rules join
// during init().
//
//nolint:gochecknoglobals // Shared registration target for built-in rules.
var DefaultRegistry = NewRegistry()

// init publishes registry metadata to the config package, which uses
// it to document every rule in generated templates. The provider reads
// the registry lazily, so rules registered later still appear.
//
//nolint:gochecknoinits // Wires the metadata seam once at startup.
func init() {
	config.DefaultRuleInfoProvider = func() []config.RuleInfo {
		rules := DefaultRegistry.Rules()
		infos := make([]config.RuleInfo, 0, len(rules))
		for _, rule := range rules {
			infos = append(infos, config.RuleInfo{
				ID:          rule.ID(),
				Name:        rule.Name(),
				Description: rule.Description(),
				Enabled:     rule.DefaultEnabled(),
				Severity:    rule.DefaultSeverity(),
				Tags:        rule.Tags(),
				CanFix:      rule.CanFix(),
			})
		}
		return infos
	}
}
