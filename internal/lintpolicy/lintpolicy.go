// Package lintpolicy is an optional, additive diagnostics layer over the
// generated AUTOINST connections: it flags a template override that binds a
// pin absent from the resolved target module. The core engine
// (internal/expander, internal/lsp) never consults this package — a host
// may call it separately to surface extra warnings (spec §7: "No
// user-visible diagnostics are required by the core; the host may layer
// them on").
package lintpolicy

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/open-policy-agent/opa/ast"
	"github.com/open-policy-agent/opa/rego"
)

//go:embed connections.rego
var policyFS embed.FS

// Connection is one AUTO_TEMPLATE ".pin(connection)" binding that applies
// to a single instance, alongside the target module's real pin names so the
// policy can detect a template override naming a nonexistent pin.
type Connection struct {
	InstanceName   string   `json:"instance_name"`
	ModuleName     string   `json:"module_name"`
	PinName        string   `json:"pin_name"`
	ModulePinNames []string `json:"module_pin_names"`
}

// Violation is one flagged connection.
type Violation struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Instance string `json:"instance"`
	Module   string `json:"module"`
	Pin      string `json:"pin"`
	Message  string `json:"message"`
}

// Engine evaluates the embedded rego rules against generated connections.
type Engine struct {
	violations rego.PreparedEvalQuery
}

// New compiles the embedded policy. An error here means the embedded rule
// file itself is broken.
func New() (*Engine, error) {
	content, err := policyFS.ReadFile("connections.rego")
	if err != nil {
		return nil, fmt.Errorf("reading embedded connections.rego: %w", err)
	}
	query, err := rego.New(
		rego.Module("connections.rego", string(content)),
		rego.Query("data.autoexpand.lint.all_violations"),
		rego.SetRegoVersion(ast.RegoV0),
	).PrepareForEval(context.Background())
	if err != nil {
		return nil, fmt.Errorf("preparing violations query: %w", err)
	}
	return &Engine{violations: query}, nil
}

// Evaluate runs the policy against a batch of generated connections.
func (e *Engine) Evaluate(conns []Connection) ([]Violation, error) {
	ctx := context.Background()
	input, err := structToMap(struct {
		Connections []Connection `json:"connections"`
	}{conns})
	if err != nil {
		return nil, fmt.Errorf("converting input: %w", err)
	}

	rs, err := e.violations.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, fmt.Errorf("evaluating violations: %w", err)
	}

	var out []Violation
	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		items, ok := rs[0].Expressions[0].Value.([]interface{})
		if ok {
			for _, it := range items {
				m, ok := it.(map[string]interface{})
				if !ok {
					continue
				}
				out = append(out, Violation{
					Rule:     getString(m, "rule"),
					Severity: getString(m, "severity"),
					Instance: getString(m, "instance"),
					Module:   getString(m, "module"),
					Pin:      getString(m, "pin"),
					Message:  getString(m, "message"),
				})
			}
		}
	}
	return out, nil
}

func structToMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	err = json.Unmarshal(data, &result)
	return result, err
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
