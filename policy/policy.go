package policy

import (
	"context"
	"strings"

	"github.com/viant/qgate/model/action"
)

// Evaluation modes.
const (
	ModeAsk  = "ask"  // prompt the human (default)
	ModeAuto = "auto" // approve without prompting
	ModeDeny = "deny" // refuse without prompting
)

// Policy is the host preference snapshot.
//
//   - AutoAuth lets GET_USER_ACCOUNT skip the prompt.
//   - AutoLists lets GET_LIST_ITEMS skip the prompt.
//   - AllowList, BlockList filter action kinds regardless of the above.
//   - Mode deny refuses everything.
//
// A nil *Policy prompts for everything.
type Policy struct {
	Mode      string   `json:"mode,omitempty"`
	AutoAuth  bool     `json:"autoAuth"`
	AutoLists bool     `json:"autoLists"`
	AllowList []string `json:"allow,omitempty"`
	BlockList []string `json:"block,omitempty"`
}

// Config is the serialisable form of Policy.
type Config struct {
	Mode      string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	AutoAuth  bool     `json:"autoAuth,omitempty" yaml:"autoAuth,omitempty"`
	AutoLists bool     `json:"autoLists,omitempty" yaml:"autoLists,omitempty"`
	AllowList []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	BlockList []string `json:"block,omitempty" yaml:"block,omitempty"`
}

// ToConfig converts a Policy into its persistable Config.
func ToConfig(p *Policy) *Config {
	if p == nil {
		return nil
	}
	return &Config{
		Mode:      p.Mode,
		AutoAuth:  p.AutoAuth,
		AutoLists: p.AutoLists,
		AllowList: append([]string(nil), p.AllowList...),
		BlockList: append([]string(nil), p.BlockList...),
	}
}

// FromConfig converts a stored Config back into a Policy.
func FromConfig(c *Config) *Policy {
	if c == nil {
		return nil
	}
	return &Policy{
		Mode:      c.Mode,
		AutoAuth:  c.AutoAuth,
		AutoLists: c.AutoLists,
		AllowList: append([]string(nil), c.AllowList...),
		BlockList: append([]string(nil), c.BlockList...),
	}
}

// Clone returns a deep copy.
func (p *Policy) Clone() *Policy {
	return FromConfig(ToConfig(p))
}

// IsAllowed evaluates AllowList and BlockList by case-insensitive kind match.
func (p *Policy) IsAllowed(kind action.Kind) bool {
	if p == nil {
		return true
	}
	normalized := strings.ToLower(string(kind))
	for _, b := range p.BlockList {
		if normalized == strings.ToLower(b) {
			return false
		}
	}
	if len(p.AllowList) == 0 {
		return true
	}
	for _, a := range p.AllowList {
		if normalized == strings.ToLower(a) {
			return true
		}
	}
	return false
}

// Evaluate returns the mode for kind. Only read-only disclosure kinds can be
// auto approved.
func (p *Policy) Evaluate(kind action.Kind) string {
	if p == nil {
		return ModeAsk
	}
	if !p.IsAllowed(kind) || strings.EqualFold(p.Mode, ModeDeny) {
		return ModeDeny
	}
	switch kind {
	case action.GetUserAccount:
		if p.AutoAuth {
			return ModeAuto
		}
	case action.GetListItems:
		if p.AutoLists {
			return ModeAuto
		}
	}
	return ModeAsk
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the policy or nil.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
