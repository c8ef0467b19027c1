package extension

import (
	"fmt"
	"sort"
	"sync"

	"github.com/viant/qgate/model/action"
	"github.com/viant/qgate/model/types"
)

// Actions provides action services
type Actions struct {
	services map[string]types.Service
	routes   map[action.Kind]types.Service
	mux      sync.RWMutex
}

// Lookup returns a service by name
func (s *Actions) Lookup(name string) types.Service {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.services[name]
}

// Route returns the service handling kind.
func (s *Actions) Route(kind action.Kind) (types.Service, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	ret, ok := s.routes[kind]
	return ret, ok
}

// Kinds returns the routed kinds in name order.
func (s *Actions) Kinds() []action.Kind {
	s.mux.RLock()
	defer s.mux.RUnlock()
	ret := make([]action.Kind, 0, len(s.routes))
	for kind := range s.routes {
		ret = append(ret, kind)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret
}

// Register registers a service and routes its kinds. A kind can be served by
// one service only, and only kinds of the closed action set are accepted.
func (s *Actions) Register(service types.Service) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	for _, signature := range service.Methods() {
		if !signature.Kind.IsKnown() {
			return fmt.Errorf("service %v: unknown action %v", service.Name(), signature.Kind)
		}
		if owner, ok := s.routes[signature.Kind]; ok && owner.Name() != service.Name() {
			return fmt.Errorf("service %v: action %v already served by %v", service.Name(), signature.Kind, owner.Name())
		}
	}
	s.services[service.Name()] = service
	for _, signature := range service.Methods() {
		s.routes[signature.Kind] = service
	}
	return nil
}

// NewActions creates a new action registry
func NewActions() *Actions {
	return &Actions{
		services: make(map[string]types.Service),
		routes:   make(map[action.Kind]types.Service),
	}
}
