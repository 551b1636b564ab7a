package contract

import (
	"strings"
	"testing"

	"github.com/qshan/verible-autoexpand-ls/internal/port"
)

func validModulePorts() port.ModulePorts {
	return port.ModulePorts{
		Name: "sub",
		Ports: []port.Port{
			{Name: "clk", Direction: port.Input, Order: 0},
			{Name: "dout", Direction: port.Output, Order: 1},
		},
	}
}

func TestValidateModulePortsAcceptsWellFormedInput(t *testing.T) {
	g, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := g.ValidateModulePorts(validModulePorts()); err != nil {
		t.Fatalf("expected well-formed ModulePorts to pass, got %v", err)
	}
}

func TestValidateModulePortsRejectsEmptyName(t *testing.T) {
	g, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	mp := validModulePorts()
	mp.Name = ""
	if err := g.ValidateModulePorts(mp); err == nil {
		t.Fatalf("expected empty module name to be rejected")
	}
}

func TestValidateModulePortsRejectsNegativeOrder(t *testing.T) {
	g, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	mp := validModulePorts()
	mp.Ports[0].Order = -1
	if err := g.ValidateModulePorts(mp); err == nil {
		t.Fatalf("expected negative order to be rejected")
	}
}

func TestValidateModulePortsAcceptsUnresolvedDirectionString(t *testing.T) {
	g, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	mp := port.ModulePorts{
		Name: "sub",
		Ports: []port.Port{
			{Name: "floating", Direction: port.Unresolved, Order: 0},
		},
	}
	if err := g.ValidateModulePorts(mp); err != nil {
		t.Fatalf("expected the unresolved direction string to be a valid schema value, got %v", err)
	}
}

func TestValidateTextEditsAcceptsWellFormedEdits(t *testing.T) {
	g, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	err = g.ValidateTextEdits([]int{0, 10}, []int{5, 20}, []string{"foo", "bar"})
	if err != nil {
		t.Fatalf("expected well-formed edits to pass, got %v", err)
	}
}

func TestValidateTextEditsRejectsNegativeOffset(t *testing.T) {
	g, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	err = g.ValidateTextEdits([]int{-1}, []int{5}, []string{"foo"})
	if err == nil {
		t.Fatalf("expected a negative start offset to be rejected")
	}
	if !strings.Contains(err.Error(), "schema validation failed") {
		t.Fatalf("expected a schema validation error, got %v", err)
	}
}

func TestValidateTextEditsAcceptsEmptyEditSet(t *testing.T) {
	g, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := g.ValidateTextEdits(nil, nil, nil); err != nil {
		t.Fatalf("expected an empty edit set to be valid, got %v", err)
	}
}
