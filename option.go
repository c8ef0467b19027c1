package qgate

import (
	"log/slog"

	"github.com/viant/qgate/model/types"
	"github.com/viant/qgate/service/approval"
	"github.com/viant/qgate/service/keystore"
	"github.com/viant/qgate/service/storage"
	"github.com/viant/qgate/service/tx"
	"github.com/viant/qgate/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the gateway.
type Option func(s *Service)

// WithConfig sets the configuration; DefaultConfig is used otherwise.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithLogger sets the logger instead of building one from Config.Logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithKeyStore supplies the key store instead of loading Config.Keystore.
func WithKeyStore(keys keystore.Store) Option {
	return func(s *Service) { s.keys = keys }
}

// WithApprovalService sets the approval service.
func WithApprovalService(svc approval.Service) Option {
	return func(s *Service) { s.approvals = svc }
}

// WithSubmitter replaces the node backed transaction submitter.
func WithSubmitter(submitter tx.Submitter) Option {
	return func(s *Service) { s.submitter = submitter }
}

// WithPicker sets the interactive save-as picker used by SAVE_FILE.
func WithPicker(picker storage.Picker) Option {
	return func(s *Service) { s.picker = picker }
}

// WithExtensionServices registers additional action services. Each must serve
// kinds no built-in service handles.
func WithExtensionServices(services ...types.Service) Option {
	return func(s *Service) {
		s.extensionServices = append(s.extensionServices, services...)
	}
}

// WithTracingExporter installs tracing with a custom span exporter.
func WithTracingExporter(exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		if shutdown, err := tracing.InitWithExporter(Name, Version, exporter); err == nil {
			s.shutdowns = append(s.shutdowns, shutdown)
		}
	}
}
