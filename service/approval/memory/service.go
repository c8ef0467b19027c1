package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/viant/qgate/internal/clock"
	"github.com/viant/qgate/internal/idgen"
	"github.com/viant/qgate/service/approval"
	"github.com/viant/qgate/service/dao"
	"github.com/viant/qgate/service/dao/store"
	"github.com/viant/qgate/service/messaging"
	qmem "github.com/viant/qgate/service/messaging/memory"
)

type service struct {
	reqDAO dao.Service[string, approval.Request]
	decDAO dao.Service[string, approval.Decision]

	events messaging.Queue[approval.Event]

	mu      sync.Mutex
	waiters map[string][]chan *approval.Decision

	// decided keeps ids of released decisions so that a late Decide
	// reports a conflict; bounded by maxDecided, oldest first out.
	decided map[string]struct{}
	order   []string
}

const maxDecided = 1024

func eventsConfig() qmem.Config {
	ret := qmem.DefaultConfig()
	ret.DropWhenFull = true
	return ret
}

func reqKey(r *approval.Request) string  { return r.ID }
func decKey(d *approval.Decision) string { return d.ID }

// New creates an in-memory approval service.
func New(options ...Option) approval.Service {
	ret := &service{
		reqDAO:  store.NewMemoryStore[string, approval.Request](reqKey),
		decDAO:  store.NewMemoryStore[string, approval.Decision](decKey),
		events:  qmem.NewQueue[approval.Event](eventsConfig()),
		waiters: map[string][]chan *approval.Decision{},
		decided: map[string]struct{}{},
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (s *service) RequestApproval(ctx context.Context, r *approval.Request) error {
	if r == nil {
		return errors.New("invalid request")
	}
	if r.ID == "" {
		r.ID = idgen.NewWithPrefix(string(r.Action))
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = clock.Now()
	}
	if err := s.reqDAO.Save(ctx, r); err != nil {
		return err
	}
	s.publish(ctx, &approval.Event{Topic: approval.TopicRequestCreated, Data: r})
	return nil
}

func (s *service) ListPending(ctx context.Context) ([]*approval.Request, error) {
	return s.reqDAO.List(ctx, func(r *approval.Request) bool {
		d, _ := s.decDAO.Load(ctx, r.ID)
		return d == nil
	})
}

func (s *service) Decide(ctx context.Context, id string,
	ok bool, reason string, options ...approval.DecisionOption) (*approval.Decision, error) {

	if id == "" {
		return nil, errors.New("empty id")
	}
	s.mu.Lock()
	request, _ := s.reqDAO.Load(ctx, id)
	if request == nil {
		_, released := s.decided[id]
		s.mu.Unlock()
		if released {
			return nil, approval.ErrAlreadyDecided
		}
		return nil, fmt.Errorf("request %s %w", id, approval.ErrNotFound)
	}
	if d, _ := s.decDAO.Load(ctx, id); d != nil {
		s.mu.Unlock()
		return nil, approval.ErrAlreadyDecided
	}
	d := &approval.Decision{
		ID:        id,
		Approved:  ok,
		Reason:    reason,
		DecidedAt: clock.Now(),
	}
	for _, option := range options {
		option(d)
	}
	_ = s.decDAO.Save(ctx, d)
	waiters := s.waiters[id]
	delete(s.waiters, id)
	s.mu.Unlock()

	for _, ch := range waiters {
		ch <- d
	}
	s.publish(ctx, &approval.Event{Topic: approval.TopicDecisionCreated, Data: d})
	return d, nil
}

func (s *service) Wait(ctx context.Context, id string) (*approval.Decision, error) {
	s.mu.Lock()
	if request, _ := s.reqDAO.Load(ctx, id); request == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("request %s %w", id, approval.ErrNotFound)
	}
	if d, _ := s.decDAO.Load(ctx, id); d != nil {
		s.mu.Unlock()
		s.release(ctx, id)
		return d, nil
	}
	ch := make(chan *approval.Decision, 1)
	s.waiters[id] = append(s.waiters[id], ch)
	s.mu.Unlock()

	select {
	case d := <-ch:
		s.release(ctx, id)
		return d, nil
	case <-ctx.Done():
		s.mu.Lock()
		s.dropWaiter(id, ch)
		s.mu.Unlock()
		return nil, ctx.Err()
	}
}

func (s *service) Withdraw(ctx context.Context, id string) error {
	s.mu.Lock()
	request, _ := s.reqDAO.Load(ctx, id)
	if request == nil {
		s.mu.Unlock()
		return nil
	}
	if d, _ := s.decDAO.Load(ctx, id); d != nil {
		s.mu.Unlock()
		return approval.ErrAlreadyDecided
	}
	_ = s.reqDAO.Delete(ctx, id)
	delete(s.waiters, id)
	s.mu.Unlock()
	s.publish(ctx, &approval.Event{Topic: approval.TopicRequestWithdrawn, Data: request})
	return nil
}

// publish is best effort; a full queue only affects prompt surfaces, never
// the waiting pipeline.
func (s *service) publish(ctx context.Context, event *approval.Event) {
	_ = s.events.Publish(ctx, event)
}

func (s *service) release(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if request, _ := s.reqDAO.Load(ctx, id); request == nil {
		return
	}
	_ = s.reqDAO.Delete(ctx, id)
	_ = s.decDAO.Delete(ctx, id)
	s.decided[id] = struct{}{}
	s.order = append(s.order, id)
	if len(s.order) > maxDecided {
		delete(s.decided, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *service) dropWaiter(id string, ch chan *approval.Decision) {
	waiters := s.waiters[id]
	for i, candidate := range waiters {
		if candidate == ch {
			s.waiters[id] = append(waiters[:i], waiters[i+1:]...)
			break
		}
	}
	if len(s.waiters[id]) == 0 {
		delete(s.waiters, id)
	}
}

func (s *service) Queue() messaging.Queue[approval.Event] { return s.events }

var _ approval.Service = (*service)(nil)
