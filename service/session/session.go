// Package session holds the host context every pipeline reads: the selected
// account, the node and the operator's preferences. Pipelines receive an
// immutable snapshot per invocation; changes are announced to subscribers.
package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/viant/qgate/policy"
	"github.com/viant/qgate/service/keystore"
)

// Event topics.
const (
	TopicAccountChanged = "account.changed"
	TopicConfigChanged  = "config.changed"
	TopicNavigation     = "navigation"
)

// Snapshot is a read-only view of the host context.
type Snapshot struct {
	Version int64             `json:"version"`
	Account *keystore.Account `json:"account,omitempty"`
	Node    string            `json:"node,omitempty"`
	Policy  *policy.Policy    `json:"policy,omitempty"`
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	ret := *s
	if s.Account != nil {
		account := *s.Account
		ret.Account = &account
	}
	ret.Policy = s.Policy.Clone()
	return &ret
}

// Event announces a change or a navigation request.
type Event struct {
	Topic    string    `json:"topic"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
	Link     string    `json:"link,omitempty"`
}

// Service stores the current snapshot and fans events out.
type Service struct {
	current atomic.Pointer[Snapshot]

	mu          sync.Mutex
	seq         int
	subscribers map[int]chan *Event
}

// New creates a session with initial context.
func New(initial *Snapshot) *Service {
	ret := &Service{subscribers: map[int]chan *Event{}}
	if initial == nil {
		initial = &Snapshot{}
	}
	ret.current.Store(initial.Clone())
	return ret
}

// Snapshot returns a copy of the current context.
func (s *Service) Snapshot() *Snapshot {
	return s.current.Load().Clone()
}

// SetAccount switches the selected account.
func (s *Service) SetAccount(account *keystore.Account) *Snapshot {
	return s.update(TopicAccountChanged, func(snapshot *Snapshot) {
		snapshot.Account = account
	})
}

// SetPolicy replaces the operator preferences.
func (s *Service) SetPolicy(p *policy.Policy) *Snapshot {
	return s.update(TopicConfigChanged, func(snapshot *Snapshot) {
		snapshot.Policy = p.Clone()
	})
}

// SetNode switches the node URL.
func (s *Service) SetNode(node string) *Snapshot {
	return s.update(TopicConfigChanged, func(snapshot *Snapshot) {
		snapshot.Node = node
	})
}

// Navigate announces a resource link the app asked the host to open.
func (s *Service) Navigate(link string) {
	s.publish(&Event{Topic: TopicNavigation, Link: link})
}

func (s *Service) update(topic string, fn func(snapshot *Snapshot)) *Snapshot {
	s.mu.Lock()
	next := s.current.Load().Clone()
	fn(next)
	next.Version++
	s.current.Store(next)
	s.mu.Unlock()
	s.publish(&Event{Topic: topic, Snapshot: next.Clone()})
	return next.Clone()
}

// Subscribe returns a channel receiving every subsequent event and a cancel
// function. Slow subscribers miss events rather than block publishers.
func (s *Service) Subscribe(buffer int) (<-chan *Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan *Event, buffer)
	s.mu.Lock()
	s.seq++
	id := s.seq
	s.subscribers[id] = ch
	s.mu.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Service) publish(event *Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

type ctxKeyType string

const ctxKey ctxKeyType = "session"

// WithSnapshot returns a child context carrying snapshot.
func WithSnapshot(ctx context.Context, snapshot *Snapshot) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, snapshot)
}

// FromContext returns the snapshot carried by ctx or nil.
func FromContext(ctx context.Context) *Snapshot {
	if ctx == nil {
		return nil
	}
	snapshot, _ := ctx.Value(ctxKey).(*Snapshot)
	return snapshot
}

// Account returns the account selected in the snapshot carried by ctx, or the
// key store account when none is carried.
func Account(ctx context.Context, keys keystore.Store) (*keystore.Account, error) {
	if snapshot := FromContext(ctx); snapshot != nil && snapshot.Account != nil {
		ret := *snapshot.Account
		return &ret, nil
	}
	return keys.Account(ctx)
}
