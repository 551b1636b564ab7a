package template

import (
	"testing"

	"github.com/qshan/verible-autoexpand-ls/internal/verilog"
)

func TestLookupResolvesSimpleBinding(t *testing.T) {
	src := []byte(`/* sub AUTO_TEMPLATE (
  .clk (sysclk),
); */
module top;
  sub u_sub(/*AUTOINST*/);
endmodule`)
	f := verilog.Parse(src)
	reg := Build(f)

	inst := f.Modules[0].Instances[0]
	bindings := reg.Lookup(inst.DirectiveStart, "sub")
	if bindings["clk"] != "sysclk" {
		t.Fatalf("expected clk bound to sysclk, got %v", bindings)
	}
}

func TestLookupWithMultipleTargetsInOneBlock(t *testing.T) {
	src := []byte(`/* sub_a AUTO_TEMPLATE
   sub_b AUTO_TEMPLATE (
  .clk (sysclk),
); */
module top;
  sub_a u_a(/*AUTOINST*/);
  sub_b u_b(/*AUTOINST*/);
endmodule`)
	f := verilog.Parse(src)
	reg := Build(f)

	instA := f.Modules[0].Instances[0]
	instB := f.Modules[0].Instances[1]
	if reg.Lookup(instA.DirectiveStart, "sub_a")["clk"] != "sysclk" {
		t.Fatalf("expected sub_a to receive the shared binding")
	}
	if reg.Lookup(instB.DirectiveStart, "sub_b")["clk"] != "sysclk" {
		t.Fatalf("expected sub_b to receive the shared binding")
	}
}

func TestLaterBlockOverridesEarlierAsAWhole(t *testing.T) {
	src := []byte(`/* sub AUTO_TEMPLATE (
  .clk (sysclk),
  .rst (sysrst),
); */
/* sub AUTO_TEMPLATE (
  .clk (altclk),
); */
module top;
  sub u_sub(/*AUTOINST*/);
endmodule`)
	f := verilog.Parse(src)
	reg := Build(f)

	inst := f.Modules[0].Instances[0]
	bindings := reg.Lookup(inst.DirectiveStart, "sub")
	if bindings["clk"] != "altclk" {
		t.Fatalf("expected later block's clk binding to win, got %v", bindings)
	}
	if _, ok := bindings["rst"]; ok {
		t.Fatalf("expected the later block to replace the earlier one wholesale, not merge: got %v", bindings)
	}
}

func TestLookupIgnoresBlockAfterInstanceSite(t *testing.T) {
	src := []byte(`module top;
  sub u_sub(/*AUTOINST*/);
endmodule
/* sub AUTO_TEMPLATE (
  .clk (toolate),
); */`)
	f := verilog.Parse(src)
	reg := Build(f)

	inst := f.Modules[0].Instances[0]
	bindings := reg.Lookup(inst.DirectiveStart, "sub")
	if bindings != nil {
		t.Fatalf("expected no binding from a block that appears after the instance, got %v", bindings)
	}
}

func TestLookupIgnoresBlockForDifferentTarget(t *testing.T) {
	src := []byte(`/* other AUTO_TEMPLATE (
  .clk (wrong),
); */
module top;
  sub u_sub(/*AUTOINST*/);
endmodule`)
	f := verilog.Parse(src)
	reg := Build(f)

	inst := f.Modules[0].Instances[0]
	bindings := reg.Lookup(inst.DirectiveStart, "sub")
	if bindings != nil {
		t.Fatalf("expected no binding for an unrelated target module, got %v", bindings)
	}
}

func TestMalformedBlockMissingKeywordSkippedSilently(t *testing.T) {
	src := []byte(`/* sub NOT_A_TEMPLATE (
  .clk (sysclk),
); */
module top;
  sub u_sub(/*AUTOINST*/);
endmodule`)
	f := verilog.Parse(src)
	if len(f.TemplateComments) != 0 {
		// "AUTO_TEMPLATE" substring isn't present, so it's not even collected.
		t.Fatalf("expected no template comments collected, got %d", len(f.TemplateComments))
	}
	reg := Build(f)
	if len(reg.Blocks) != 0 {
		t.Fatalf("expected no parsed blocks, got %d", len(reg.Blocks))
	}
}

func TestMalformedBlockUnbalancedParensSkippedSilently(t *testing.T) {
	src := []byte(`/* sub AUTO_TEMPLATE (
  .clk (sysclk
); */
module top;
  sub u_sub(/*AUTOINST*/);
endmodule`)
	f := verilog.Parse(src)
	reg := Build(f)
	if len(reg.Blocks) != 0 {
		t.Fatalf("expected the unbalanced block to be skipped, got %d blocks", len(reg.Blocks))
	}
}
