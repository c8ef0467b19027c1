// Package console resolves approval requests interactively on a terminal.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/viant/qgate/service/approval"
	"github.com/viant/toolbox"
)

// Prompter consumes approval events and asks the operator one request at a
// time. Readers and writers can be substituted in tests.
type Prompter struct {
	service approval.Service
	reader  *bufio.Reader
	out     io.Writer
}

// New returns a prompter on stdin/stdout.
func New(service approval.Service) *Prompter {
	return NewWithIO(service, os.Stdin, os.Stdout)
}

// NewWithIO returns a prompter bound to in/out.
func NewWithIO(service approval.Service, in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{service: service, reader: bufio.NewReader(in), out: out}
}

// Run blocks until ctx is done, prompting for every created request that is
// still pending when its turn comes.
func (p *Prompter) Run(ctx context.Context) error {
	queue := p.service.Queue()
	for {
		msg, err := queue.Consume(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		event := msg.T()
		_ = msg.Ack()
		if event == nil || event.Topic != approval.TopicRequestCreated {
			continue
		}
		request, ok := event.Data.(*approval.Request)
		if !ok || !p.pending(ctx, request.ID) {
			continue
		}
		approved, auxiliary, err := p.Ask(request)
		if err != nil {
			return err
		}
		reason := ""
		if !approved {
			reason = "declined at console"
		}
		// the request may have been withdrawn while the operator was typing
		_, _ = p.service.Decide(ctx, request.ID, approved, reason, approval.WithAuxiliary(auxiliary))
	}
}

func (p *Prompter) pending(ctx context.Context, id string) bool {
	requests, err := p.service.ListPending(ctx)
	if err != nil {
		return false
	}
	for _, candidate := range requests {
		if candidate.ID == id {
			return true
		}
	}
	return false
}

// Ask renders request and reads the operator's answers. An empty or
// unrecognised answer to the main question rejects; choices fall back to
// their defaults.
func (p *Prompter) Ask(request *approval.Request) (bool, map[string]interface{}, error) {
	fmt.Fprintf(p.out, "\n[%s] %s\n", request.ID, request.Action)
	keys := make([]string, 0, len(request.Summary))
	for k := range request.Summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(p.out, "  %s: %s\n", k, toolbox.AsString(request.Summary[k]))
	}

	answer, err := p.readLine("Accept? (y/N): ")
	if err != nil {
		return false, nil, err
	}
	approved, ok := parseYesNo(answer)
	if !ok || !approved {
		return false, nil, nil
	}

	var auxiliary map[string]interface{}
	for _, choice := range request.Choices {
		def := "n"
		if choice.Default {
			def = "y"
		}
		label := strings.TrimSpace(choice.Label)
		if label == "" {
			label = choice.Name
		}
		answer, err := p.readLine(fmt.Sprintf("%s (y/n) [%s]: ", label, def))
		if err != nil {
			return false, nil, err
		}
		value, ok := parseYesNo(answer)
		if !ok {
			value = choice.Default
		}
		if auxiliary == nil {
			auxiliary = map[string]interface{}{}
		}
		auxiliary[choice.Name] = value
	}
	return true, auxiliary, nil
}

func (p *Prompter) readLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	response, err := p.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(response), nil
}

func parseYesNo(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "1", "accept":
		return true, true
	case "n", "no", "0", "reject":
		return false, true
	}
	return false, false
}
