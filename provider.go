package pubsub

import (
	"reflect"
	"sync"
)

// TopicDefnProvider supplies a topic's message data specification on
// demand, for topics declared in bulk rather than one at a time via
// Topic.SetMsgArgSpec. Ported from pypubsub's topicdefnprovider.py
// ITopicDefnProvider, generalized from its two built-in sources (a module
// of sub-classed Topic stand-ins, and a dict-of-dicts "specification
// tree") to any caller-supplied lookup.
type TopicDefnProvider interface {
	// GetDefn returns the TopicSpec for name, and whether one exists.
	GetDefn(name Name) (*TopicSpec, bool)
}

// TopicDefnProviderFunc adapts a plain function to TopicDefnProvider.
type TopicDefnProviderFunc func(name Name) (*TopicSpec, bool)

func (f TopicDefnProviderFunc) GetDefn(name Name) (*TopicSpec, bool) { return f(name) }

// MapTopicDefnProvider is a TopicDefnProvider backed by a plain map from
// dotted topic name to TopicSpec, the Go analogue of pypubsub's
// TopicDefnProviderSimpleDict.
type MapTopicDefnProvider map[string]TopicSpec

func (p MapTopicDefnProvider) GetDefn(name Name) (*TopicSpec, bool) {
	spec, ok := p[name.String()]
	if !ok {
		return nil, false
	}
	return &spec, true
}

// defnProviderRegistry holds the ordered, deduplicated set of providers a
// TopicManager consults when a topic is created without an explicit spec.
// Ported from pypubsub's topicmgr.py's TopicManager.addDefnProvider,
// which silently ignores re-adding the same provider.
type defnProviderRegistry struct {
	mu        sync.RWMutex
	providers []TopicDefnProvider
	seen      map[TopicDefnProvider]struct{}
}

func newDefnProviderRegistry() *defnProviderRegistry {
	return &defnProviderRegistry{seen: make(map[TopicDefnProvider]struct{})}
}

// Add registers p if it has not already been registered. Providers backed
// by types that are not comparable (e.g. a map or a func type, such as
// MapTopicDefnProvider and TopicDefnProviderFunc) are always appended,
// since Go cannot check those for identity.
func (r *defnProviderRegistry) Add(p TopicDefnProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if isComparableProvider(p) {
		if _, ok := r.seen[p]; ok {
			return
		}
		r.seen[p] = struct{}{}
	}
	r.providers = append(r.providers, p)
}

func isComparableProvider(p TopicDefnProvider) bool {
	return reflect.TypeOf(p).Comparable()
}

// Lookup consults every registered provider, in registration order,
// returning the first spec found.
func (r *defnProviderRegistry) Lookup(name Name) (*TopicSpec, bool) {
	r.mu.RLock()
	providers := append([]TopicDefnProvider{}, r.providers...)
	r.mu.RUnlock()
	for _, p := range providers {
		if spec, ok := p.GetDefn(name); ok {
			return spec, true
		}
	}
	return nil, false
}
