package qgate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/viant/qgate/extension"
	"github.com/viant/qgate/internal/logger"
	"github.com/viant/qgate/model/types"
	"github.com/viant/qgate/policy"
	"github.com/viant/qgate/service/action/account"
	"github.com/viant/qgate/service/action/at"
	"github.com/viant/qgate/service/action/chat"
	acipher "github.com/viant/qgate/service/action/cipher"
	"github.com/viant/qgate/service/action/file"
	"github.com/viant/qgate/service/action/group"
	"github.com/viant/qgate/service/action/list"
	"github.com/viant/qgate/service/action/navigation"
	"github.com/viant/qgate/service/action/publish"
	awallet "github.com/viant/qgate/service/action/wallet"
	"github.com/viant/qgate/service/approval"
	"github.com/viant/qgate/service/approval/console"
	"github.com/viant/qgate/service/approval/memory"
	"github.com/viant/qgate/service/cipher"
	"github.com/viant/qgate/service/dispatcher"
	"github.com/viant/qgate/service/keystore"
	"github.com/viant/qgate/service/node"
	"github.com/viant/qgate/service/pow"
	"github.com/viant/qgate/service/session"
	"github.com/viant/qgate/service/storage"
	"github.com/viant/qgate/service/tx"
	"github.com/viant/qgate/service/wallet"
	"github.com/viant/qgate/tracing"
	"github.com/viant/qgate/transport/api"
	"github.com/viant/qgate/transport/ws"
)

const (
	// Name identifies the gateway in traces.
	Name = "qgate"
	// Version is the gateway version.
	Version = "0.1.0"

	shutdownTimeout = 10 * time.Second
)

// Service is the gateway facade: it wires the node client, key store,
// approvals and action pipelines behind the dispatcher and transports.
type Service struct {
	config            *Config
	logger            *slog.Logger
	keys              keystore.Store
	client            *node.Client
	submitter         tx.Submitter
	approvals         approval.Service
	session           *session.Service
	picker            storage.Picker
	actions           *extension.Actions
	dispatcher        *dispatcher.Service
	handler           http.Handler
	extensionServices []types.Service
	shutdowns         []tracing.Shutdown
}

// New creates the gateway. Key material is loaded from Config.Keystore
// unless a store was supplied with WithKeyStore.
func New(ctx context.Context, options ...Option) (*Service, error) {
	ret := &Service{}
	for _, option := range options {
		option(ret)
	}
	if err := ret.init(ctx); err != nil {
		_ = ret.Shutdown(ctx)
		return nil, err
	}
	return ret, nil
}

func (s *Service) init(ctx context.Context) error {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if s.logger == nil {
		var err error
		if s.logger, err = logger.New(s.config.Logging); err != nil {
			return err
		}
	}
	if s.config.Tracing.Enabled {
		shutdown, err := tracing.Init(Name, Version, s.config.Tracing.Output)
		if err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
		s.shutdowns = append(s.shutdowns, shutdown)
	}
	if err := s.ensureKeys(ctx); err != nil {
		return err
	}
	identity, err := s.keys.Account(ctx)
	if err != nil {
		return err
	}
	codec, err := cipher.New(s.config.CacheSize)
	if err != nil {
		return err
	}
	s.client = node.New(s.config.Node)
	stager := pow.New(nil)
	if s.submitter == nil {
		submitter := node.NewSubmitter(s.client, s.keys, codec)
		stager = submitter.Offload(node.PathArbitraryCompute)
		s.submitter = submitter
	}
	if s.approvals == nil {
		s.approvals = memory.New()
	}
	s.session = session.New(&session.Snapshot{
		Account: identity,
		Node:    s.client.URL(),
		Policy:  policy.FromConfig(s.config.Policy),
	})

	var storageOptions []storage.Option
	if s.picker != nil {
		storageOptions = append(storageOptions, storage.WithPicker(s.picker))
	}
	files := storage.New(s.config.DownloadURL, storageOptions...)
	gate := approval.NewGate(s.approvals)
	funds := wallet.New(s.client, s.keys)

	s.actions = extension.NewActions()
	services := []types.Service{
		account.New(gate, s.keys),
		acipher.New(codec, s.keys),
		list.New(gate, s.client),
		publish.New(gate, codec, s.keys, s.client, s.submitter, stager),
		chat.New(gate, s.client, s.submitter),
		group.New(gate, s.client, s.keys, s.submitter),
		at.New(gate, s.client, s.keys, s.submitter),
		awallet.New(gate, funds, s.client, s.keys, s.submitter),
		file.New(gate, files),
		navigation.New(s.session),
	}
	for _, service := range append(services, s.extensionServices...) {
		if err = s.actions.Register(service); err != nil {
			return err
		}
	}
	s.dispatcher = dispatcher.New(s.actions, dispatcher.WithLogger(s.logger), dispatcher.WithSession(s.session))
	app := ws.New(s.dispatcher, ws.WithLogger(s.logger))
	s.handler = api.New(s.approvals, s.session, api.WithApp(app), api.WithLogger(s.logger))
	s.logger.Info("gateway ready", "node", s.client.URL(), "address", identity.Address, "actions", len(s.actions.Kinds()))
	return nil
}

func (s *Service) ensureKeys(ctx context.Context) error {
	if s.keys != nil {
		return nil
	}
	if s.config.Keystore.URL == "" {
		return errors.New("keystore url was empty")
	}
	keys := keystore.New(s.config.Keystore.URL, s.config.Keystore.Key)
	if err := keys.Load(ctx); err != nil {
		return err
	}
	s.keys = keys
	return nil
}

// Config returns the effective configuration.
func (s *Service) Config() *Config { return s.config }

// Approvals returns the approval service operators decide on.
func (s *Service) Approvals() approval.Service { return s.approvals }

// Session returns the host context.
func (s *Service) Session() *session.Service { return s.session }

// Actions returns the action registry.
func (s *Service) Actions() *extension.Actions { return s.actions }

// Dispatcher returns the message dispatcher.
func (s *Service) Dispatcher() *dispatcher.Service { return s.dispatcher }

// Handler returns the HTTP handler serving /app and the admin API.
func (s *Service) Handler() http.Handler { return s.handler }

// Serve listens on Config.Listen until ctx is done, then drains in-flight
// requests. With Config.Console set, approvals are also prompted on stdin.
func (s *Service) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %v: %w", s.config.Listen, err)
	}
	return s.ServeListener(ctx, listener)
}

// ServeListener serves on listener until ctx is done.
func (s *Service) ServeListener(ctx context.Context, listener net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	server := &http.Server{
		Handler:     s.handler,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	if s.config.Console {
		prompter := console.New(s.approvals)
		go func() {
			if err := prompter.Run(ctx); err != nil {
				s.logger.Error("console prompter stopped", "error", err)
			}
		}()
	}
	errs := make(chan error, 1)
	go func() {
		errs <- server.Serve(listener)
	}()
	s.logger.Info("listening", "addr", listener.Addr().String())

	select {
	case err := <-errs:
		cancel()
		s.dispatcher.Wait()
		return err
	case <-ctx.Done():
	}
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	err := server.Shutdown(shutdownCtx)
	cancel()
	s.dispatcher.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return err
}

// Shutdown flushes tracing.
func (s *Service) Shutdown(ctx context.Context) error {
	var errs []error
	for _, shutdown := range s.shutdowns {
		errs = append(errs, shutdown(ctx))
	}
	s.shutdowns = nil
	return errors.Join(errs...)
}
