package classifier

import (
	"fmt"
	"sort"

	"CrimeScanner/internal/ports"
)

// Registry keeps a mapping from classifier names to their implementations.
type Registry struct {
	classifiers map[string]ports.Classifier
}

// NewRegistry builds a registry holding the keyword classifier.
func NewRegistry() *Registry {
	r := &Registry{classifiers: map[string]ports.Classifier{}}
	r.Register(NewKeyword())
	return r
}

// Register adds or replaces a classifier implementation.
func (r *Registry) Register(c ports.Classifier) {
	if r.classifiers == nil {
		r.classifiers = map[string]ports.Classifier{}
	}
	r.classifiers[c.Name()] = c
}

// Resolve returns a classifier by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.Classifier, error) {
	if name == "" {
		name = KeywordName
	}
	if c, ok := r.classifiers[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("classifier %s is not registered", name)
}

// Names lists registered classifiers in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.classifiers))
	for name := range r.classifiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
