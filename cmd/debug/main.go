package main

import (
	"fmt"

	"github.com/qshan/verible-autoexpand-ls/internal/locator"
	"github.com/qshan/verible-autoexpand-ls/internal/verilog"
)

func main() {
	source := []byte(`module top;
  sub u_sub(
    .clk(clk),
    /*AUTOINST*/);
endmodule`)

	f := verilog.Parse(source)
	fmt.Printf("found %d module(s)\n", len(f.Modules))
	for _, m := range f.Modules {
		fmt.Printf("module %q: %d instance(s), %d body port decl(s)\n", m.Name, len(m.Instances), len(m.BodyPorts))
	}

	for _, s := range locator.Locate(f) {
		fmt.Printf("site kind=%v owning=%q instance=%q indent=%q preexisting=%v\n",
			s.Kind, s.OwningModule, s.InstanceModule, s.Indent, s.PreexistingBindings)
	}
}
