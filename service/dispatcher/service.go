// Package dispatcher routes inbound app messages to action pipelines and
// frames exactly one reply for every routed request.
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/viant/qgate/extension"
	"github.com/viant/qgate/fault"
	"github.com/viant/qgate/internal/logger"
	"github.com/viant/qgate/model/action"
	"github.com/viant/qgate/model/envelope"
	"github.com/viant/qgate/model/types"
	"github.com/viant/qgate/policy"
	"github.com/viant/qgate/service/approval"
	"github.com/viant/qgate/service/session"
	"github.com/viant/qgate/service/validator"
	"github.com/viant/qgate/tracing"
)

const unexpected = "Request could not be fulfilled"

// Service dispatches requests.
type Service struct {
	actions  *extension.Actions
	sessions *session.Service
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// New creates a dispatcher over the registered actions.
func New(actions *extension.Actions, options ...Option) *Service {
	ret := &Service{actions: actions}
	for _, option := range options {
		option(ret)
	}
	if ret.logger == nil {
		ret.logger = logger.Discard()
	}
	ret.logger = ret.logger.With("component", "dispatcher")
	return ret
}

// Go dispatches raw on its own goroutine.
func (s *Service) Go(ctx context.Context, raw []byte, replier envelope.Replier) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Dispatch(ctx, raw, replier)
	}()
}

// Wait blocks until every dispatch started with Go has replied.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Dispatch parses raw and replies through replier. Messages without a known
// action are dropped without a reply.
func (s *Service) Dispatch(ctx context.Context, raw []byte, replier envelope.Replier) {
	request, ok := action.Parse(raw)
	if !ok {
		s.logger.Debug("dropped message without action", "size", len(raw))
		return
	}
	reply, ok := s.Handle(ctx, request)
	if !ok {
		return
	}
	if err := replier.Reply(ctx, reply); err != nil {
		s.logger.Warn("failed to reply", "action", request.Kind, "requestId", request.ID, "error", err)
	}
}

// Handle runs request and returns its framed reply. ok is false when no
// reply must be sent: unknown actions and one-way notifications.
func (s *Service) Handle(ctx context.Context, request *action.Request) (reply *envelope.Envelope, ok bool) {
	service, found := s.actions.Route(request.Kind)
	if !found {
		s.logger.Debug("dropped unknown action", "action", request.Kind)
		return nil, false
	}
	signature := service.Methods().Lookup(request.Kind)
	if signature == nil {
		s.logger.Error("missing signature", "action", request.Kind, "service", service.Name())
		return envelope.Failure(fault.Upstream(unexpected, nil)).WithRequestID(request.ID), !request.Kind.IsNotification()
	}

	ctx, span := tracing.StartSpan(ctx, "dispatch "+string(request.Kind), tracing.KindServer)
	span.WithAttributes(map[string]string{"action": string(request.Kind), "service": service.Name()})
	ctx = s.withHost(ctx)

	output, err := s.run(ctx, service, signature, request)
	tracing.EndSpan(span, err)

	log := s.logger.With("action", request.Kind, "requestId", request.ID)
	if err != nil {
		log.Info("request failed", "kind", fault.KindOf(err), "error", err)
	} else {
		log.Debug("request completed")
	}
	if silent, isSilent := output.(types.Silent); request.Kind.IsNotification() || (isSilent && silent.NoReply()) {
		return nil, false
	}
	if err != nil {
		return envelope.Failure(err).WithRequestID(request.ID), true
	}
	return envelope.Success(result(output)).WithRequestID(request.ID), true
}

func (s *Service) withHost(ctx context.Context) context.Context {
	if s.sessions == nil {
		return ctx
	}
	snapshot := s.sessions.Snapshot()
	ctx = session.WithSnapshot(ctx, snapshot)
	if snapshot != nil && snapshot.Policy != nil {
		ctx = policy.WithPolicy(ctx, snapshot.Policy)
	}
	return ctx
}

// run validates, decodes and executes; a panicking pipeline is reported as
// a failure. The pipeline runs detached from ctx: a caller that goes away
// only dismisses a pending prompt.
func (s *Service) run(ctx context.Context, service types.Service, signature *types.Signature, request *action.Request) (output interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("pipeline panic", "action", request.Kind, "panic", r, "stack", string(debug.Stack()))
			err = fault.Upstream(unexpected, fmt.Errorf("panic: %v", r))
		}
	}()
	if !policy.FromContext(ctx).IsAllowed(request.Kind) {
		return nil, fault.Unauthorized(fmt.Sprintf("Action %s is not allowed", request.Kind))
	}
	if err = validator.Check(request.Fields, signature.Required, signature.Present); err != nil {
		return nil, err
	}
	input := signature.NewInput()
	if err = request.Decode(input); err != nil {
		return nil, fault.Wrap(fault.KindInvalidInput, "Invalid request", err)
	}
	execute, err := service.Method(request.Kind)
	if err != nil {
		return nil, fault.Upstream(unexpected, err)
	}
	output = signature.NewOutput()
	if err = execute(approval.Detach(ctx), input, output); err != nil {
		return output, err
	}
	return output, nil
}

func result(output interface{}) interface{} {
	if resulter, ok := output.(types.Resulter); ok {
		return resulter.Result()
	}
	return output
}
