package entity

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Registry holds all known definitions by entity name.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]*Definition
}

// NewRegistry creates a Registry and registers the given definitions.
func NewRegistry(definitions ...*Definition) (*Registry, error) {
	r := &Registry{definitions: make(map[string]*Definition, len(definitions))}

	for _, definition := range definitions {
		if err := r.Register(definition); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register adds a definition.
func (r *Registry) Register(definition *Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[definition.Name()]; exists {
		return errors.Join(ErrDuplicateEntity, fmt.Errorf("entity %q", definition.Name()))
	}

	r.definitions[definition.Name()] = definition

	return nil
}

// Get returns the definition of the given entity.
func (r *Registry) Get(name string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	definition, ok := r.definitions[name]
	if !ok {
		return nil, errors.Join(ErrUnknownEntity, fmt.Errorf("entity %q", name))
	}

	return definition, nil
}

// Names returns the sorted entity names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Validate checks that every association, foreign key and translation definition
// references a registered entity.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error

	for _, name := range r.sortedNamesLocked() {
		definition := r.definitions[name]

		for _, field := range definition.Fields().Elements() {
			var reference string

			switch f := field.(type) {
			case AssociationField:
				reference = f.ReferenceEntity()
			case *FkField:
				reference = f.ReferenceEntity()
			default:
				continue
			}

			if _, ok := r.definitions[reference]; !ok {
				errs = append(errs, fmt.Errorf("%s.%s -> %q", name, field.PropertyName(), reference))
			}
		}

		if translation := definition.TranslationDefinition(); translation != "" {
			if _, ok := r.definitions[translation]; !ok {
				errs = append(errs, fmt.Errorf("%s translation -> %q", name, translation))
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrUnknownAssociation}, errs...)...)
	}

	return nil
}

func (r *Registry) sortedNamesLocked() []string {
	names := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
