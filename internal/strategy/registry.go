package strategy

import (
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Registry holds the strategies a host can run. It is append-only.
type Registry interface {
	// Add registers def. A definition whose type is already registered is rejected.
	Add(def StrategyDefinition) error
	// Get looks a definition up by type.
	Get(strategyType string) (StrategyDefinition, error)
	// List returns all definitions in registration order, built-ins first.
	List() []StrategyDefinition
}

// RegistryV1 is a Registry backed by an insertion-ordered map.
type RegistryV1 struct {
	strategies *orderedmap.OrderedMap[string, StrategyDefinition]
	validate   *validator.Validate
	mu         sync.RWMutex
}

// NewRegistry creates a registry pre-loaded with the built-in strategies.
func NewRegistry() Registry {
	registry := newRegistryV1()

	for _, def := range BuiltinStrategies() {
		// built-ins are known to be valid and unique
		_ = registry.Add(def)
	}

	return registry
}

// NewEmptyRegistry creates a registry without the built-in strategies.
func NewEmptyRegistry() Registry {
	return newRegistryV1()
}

func newRegistryV1() *RegistryV1 {
	return &RegistryV1{
		strategies: orderedmap.New[string, StrategyDefinition](),
		validate:   validator.New(),
		mu:         sync.RWMutex{},
	}
}

// Add implements Registry.
func (r *RegistryV1) Add(def StrategyDefinition) error {
	if err := r.validate.Struct(def); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidStrategy, err, "invalid strategy definition %q", def.Type)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies.Get(def.Type); exists {
		return errors.Newf(errors.ErrCodeStrategyAlreadyExists, "strategy with type %s already registered", def.Type)
	}

	r.strategies.Set(def.Type, cloneDefinition(def))

	return nil
}

// Get implements Registry.
func (r *RegistryV1) Get(strategyType string) (StrategyDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.strategies.Get(strategyType)
	if !exists {
		return StrategyDefinition{}, errors.Newf(errors.ErrCodeStrategyNotFound, "strategy with type %s not found", strategyType)
	}

	return cloneDefinition(def), nil
}

// List implements Registry.
func (r *RegistryV1) List() []StrategyDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]StrategyDefinition, 0, r.strategies.Len())
	for pair := r.strategies.Oldest(); pair != nil; pair = pair.Next() {
		defs = append(defs, cloneDefinition(pair.Value))
	}

	return defs
}
