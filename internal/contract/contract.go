// Package contract is the engine's "crash early, crash loud" boundary
// guard: CUE schema validation of the core DTOs that cross package
// boundaries inside the engine (Port Model/Module Index output, and the
// edit list the Expander hands to the LSP layer).
//
// Unlike an expansion-time error, a contract violation here is not a
// recoverable outcome — it means an internal invariant broke (a malformed
// ModulePorts, a negative byte range) and the caller should see that
// immediately rather than silently emit corrupted edits.
package contract

import (
	"embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/qshan/verible-autoexpand-ls/internal/port"
)

//go:embed module_ports.cue
var modulePortsFS embed.FS

//go:embed text_edits.cue
var textEditsFS embed.FS

// Guard validates the engine's own DTOs against embedded CUE schemas.
type Guard struct {
	ctx            *cue.Context
	modulePortsDef cue.Value
	textEditsDef   cue.Value
}

// New compiles the embedded schemas. An error here means the schemas
// themselves are broken, not that any data was rejected.
func New() (*Guard, error) {
	ctx := cuecontext.New()

	mpBytes, err := modulePortsFS.ReadFile("module_ports.cue")
	if err != nil {
		return nil, fmt.Errorf("loading module_ports.cue: %w", err)
	}
	mpSchema := ctx.CompileBytes(mpBytes)
	if mpSchema.Err() != nil {
		return nil, fmt.Errorf("compiling module_ports.cue: %w", mpSchema.Err())
	}

	teBytes, err := textEditsFS.ReadFile("text_edits.cue")
	if err != nil {
		return nil, fmt.Errorf("loading text_edits.cue: %w", err)
	}
	teSchema := ctx.CompileBytes(teBytes)
	if teSchema.Err() != nil {
		return nil, fmt.Errorf("compiling text_edits.cue: %w", teSchema.Err())
	}

	return &Guard{
		ctx:            ctx,
		modulePortsDef: mpSchema.LookupPath(cue.ParsePath("#ModulePorts")),
		textEditsDef:   teSchema.LookupPath(cue.ParsePath("#TextEdits")),
	}, nil
}

type wirePort struct {
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Order     int    `json:"order"`
}

type wireModulePorts struct {
	Name  string     `json:"name"`
	Ports []wirePort `json:"ports"`
}

// ValidateModulePorts checks a resolved ModulePorts against #ModulePorts
// before the Expander is allowed to consume it.
func (g *Guard) ValidateModulePorts(mp port.ModulePorts) error {
	wire := wireModulePorts{Name: mp.Name, Ports: []wirePort{}}
	for _, p := range mp.Ports {
		wire.Ports = append(wire.Ports, wirePort{Name: p.Name, Direction: p.Direction.String(), Order: p.Order})
	}
	return g.validate(g.modulePortsDef, wire)
}

type wireTextEdit struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	NewText string `json:"new_text"`
}

type wireTextEdits struct {
	Edits []wireTextEdit `json:"edits"`
}

// ValidateTextEdits checks the Expander's output before it is handed to
// the LSP layer for position conversion.
func (g *Guard) ValidateTextEdits(starts, ends []int, texts []string) error {
	wire := wireTextEdits{Edits: []wireTextEdit{}}
	for i := range starts {
		wire.Edits = append(wire.Edits, wireTextEdit{Start: starts[i], End: ends[i], NewText: texts[i]})
	}
	return g.validate(g.textEditsDef, wire)
}

func (g *Guard) validate(def cue.Value, data interface{}) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling data to JSON: %w", err)
	}
	dataValue := g.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling data as CUE: %w", dataValue.Err())
	}
	unified := def.Unify(dataValue)
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
