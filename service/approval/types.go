package approval

import (
	"time"

	"github.com/viant/qgate/model/action"
)

// Event topics published on the service queue.
const (
	TopicRequestCreated   = "request.created"
	TopicRequestWithdrawn = "request.withdrawn"
	TopicDecisionCreated  = "decision.created"
)

// Event is published for every request and decision.
type Event struct {
	Topic   string
	Data    interface{} // *Request | *Decision
	Headers map[string]string `json:"headers,omitempty"`
}

// Choice is an auxiliary yes/no option offered alongside accept/reject.
type Choice struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Default bool   `json:"default"`
}

// Request is a pending prompt. Summary is a display snapshot and never holds
// secret material.
type Request struct {
	ID        string                 `json:"id"`
	Action    action.Kind            `json:"action"`
	Summary   map[string]interface{} `json:"summary,omitempty"`
	Choices   []Choice               `json:"choices,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
}

// Decision resolves a request.
type Decision struct {
	ID        string                 `json:"id"`
	Approved  bool                   `json:"approved"`
	Reason    string                 `json:"reason,omitempty"`
	Auxiliary map[string]interface{} `json:"auxiliary,omitempty"`
	DecidedAt time.Time              `json:"decidedAt"`
}

// Outcome is what a pipeline sees once the gate resolves.
type Outcome struct {
	Accepted  bool
	Auxiliary map[string]interface{}
}

// Bool returns an auxiliary boolean choice or def when unset.
func (o *Outcome) Bool(name string, def bool) bool {
	if o == nil || o.Auxiliary == nil {
		return def
	}
	switch actual := o.Auxiliary[name].(type) {
	case bool:
		return actual
	case string:
		switch actual {
		case "true", "yes", "y", "1":
			return true
		case "false", "no", "n", "0":
			return false
		}
	}
	return def
}
