package port

import "testing"

func TestHeaderConcreteDirectionWinsOverBodyRedeclaration(t *testing.T) {
	b := NewBuilder()
	b.AddHeader("clk", Input)
	b.AddBody("clk", Output)

	mp := b.Build("m")
	p, ok := mp.ByName("clk")
	if !ok {
		t.Fatalf("expected clk to be present")
	}
	if p.Direction != Input {
		t.Fatalf("expected header direction to win, got %s", p.Direction)
	}
}

func TestNonANSIHeaderNameAllowsBodyToResolveDirection(t *testing.T) {
	b := NewBuilder()
	b.AddHeader("clk", Unresolved) // non-ANSI header: name only, no direction
	b.AddBody("clk", Input)

	mp := b.Build("m")
	p, ok := mp.ByName("clk")
	if !ok {
		t.Fatalf("expected clk to be present")
	}
	if p.Direction != Input {
		t.Fatalf("expected body declaration to resolve direction, got %s", p.Direction)
	}
}

func TestFirstBodyRedeclarationWins(t *testing.T) {
	b := NewBuilder()
	b.AddHeader("sel", Unresolved)
	b.AddBody("sel", Input)
	b.AddBody("sel", Output) // second body decl of the same name must lose

	mp := b.Build("m")
	p, _ := mp.ByName("sel")
	if p.Direction != Input {
		t.Fatalf("expected first body declaration to win, got %s", p.Direction)
	}
}

func TestUnresolvedPortsExcludedFromAllBuckets(t *testing.T) {
	b := NewBuilder()
	b.AddHeader("mystery", Unresolved)
	b.AddHeader("clk", Input)

	mp := b.Build("m")
	if len(mp.Inputs()) != 1 || mp.Inputs()[0].Name != "clk" {
		t.Fatalf("expected only clk in Inputs, got %v", mp.Inputs())
	}
	if len(mp.Inouts()) != 0 || len(mp.Outputs()) != 0 {
		t.Fatalf("expected no inout/output buckets")
	}
	if _, ok := mp.ByName("mystery"); !ok {
		t.Fatalf("expected mystery port still present in Ports, just unresolved")
	}
}

func TestBucketsPreserveDeclarationOrder(t *testing.T) {
	b := NewBuilder()
	b.AddHeader("a", Output)
	b.AddHeader("b", Output)
	b.AddHeader("c", Output)

	mp := b.Build("m")
	outputs := mp.Outputs()
	if len(outputs) != 3 {
		t.Fatalf("expected 3 outputs, got %d", len(outputs))
	}
	for i, want := range []string{"a", "b", "c"} {
		if outputs[i].Name != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, outputs[i].Name)
		}
	}
}

func TestDirectionString(t *testing.T) {
	cases := map[Direction]string{
		Input: "input", Inout: "inout", Output: "output", Unresolved: "unresolved",
	}
	for d, want := range cases {
		if got := d.String(); got != want {
			t.Errorf("Direction(%d).String() = %q, want %q", d, got, want)
		}
	}
}
