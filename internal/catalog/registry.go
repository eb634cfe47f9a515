package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shaiso/Enricher/internal/engine"
)

// Registry — реестр операций по имени.
//
// Позволяет регистрировать и получать реализации engine.Operation по имени.
// Потокобезопасен.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]engine.Operation
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		ops: make(map[string]engine.Operation),
	}
}

// Register регистрирует операцию в реестре.
// Если операция с таким именем уже существует, она будет перезаписана.
func (r *Registry) Register(op engine.Operation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[op.Name()] = op
}

// Get возвращает операцию по имени.
// Возвращает ErrOperationNotFound, если операция не найдена.
func (r *Registry) Get(name string) (engine.Operation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	op, exists := r.ops[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrOperationNotFound, name)
	}

	return op, nil
}

// Has проверяет, зарегистрирована ли операция.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.ops[name]
	return exists
}

// Names возвращает отсортированный список имён операций.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count возвращает количество зарегистрированных операций.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ops)
}

// Unregister удаляет операцию из реестра.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ops, name)
}

// Lookup возвращает операции по списку имён.
// Если хотя бы одной нет — ErrOperationNotResolved со списком отсутствующих.
func (r *Registry) Lookup(ctx context.Context, names ...string) (map[string]engine.Operation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ops := make(map[string]engine.Operation, len(names))
	var missing []string
	for _, name := range names {
		op, ok := r.ops[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		ops[name] = op
	}

	if len(missing) > 0 {
		return nil, notResolved(missing)
	}
	return ops, nil
}

func notResolved(missing []string) error {
	return fmt.Errorf("%w: %s", ErrOperationNotResolved, strings.Join(missing, ", "))
}
