package locator

import (
	"testing"

	"github.com/qshan/verible-autoexpand-ls/internal/verilog"
)

func TestLocateFindsAutoargSite(t *testing.T) {
	src := []byte(`module foo(
  input clk,
  /*AUTOARG*/);
endmodule`)
	f := verilog.Parse(src)
	sites := Locate(f)
	if len(sites) != 1 {
		t.Fatalf("expected 1 site, got %d", len(sites))
	}
	s := sites[0]
	if s.Kind != AUTOARG {
		t.Fatalf("expected AUTOARG kind")
	}
	if s.OwningModule != "foo" {
		t.Fatalf("expected owning module foo, got %q", s.OwningModule)
	}
	if !s.PreexistingBindings["clk"] {
		t.Fatalf("expected clk to be recorded as a preexisting binding, got %v", s.PreexistingBindings)
	}
}

func TestLocateFindsAutoinstSiteWithPreexistingBindings(t *testing.T) {
	src := []byte(`module top;
  sub u_sub(
    .clk(clk),
    /*AUTOINST*/);
endmodule`)
	f := verilog.Parse(src)
	sites := Locate(f)
	if len(sites) != 1 {
		t.Fatalf("expected 1 site, got %d", len(sites))
	}
	s := sites[0]
	if s.Kind != AUTOINST {
		t.Fatalf("expected AUTOINST kind")
	}
	if s.InstanceModule != "sub" {
		t.Fatalf("expected instance module sub, got %q", s.InstanceModule)
	}
	if !s.PreexistingBindings["clk"] {
		t.Fatalf("expected clk pin to be recorded as preexisting, got %v", s.PreexistingBindings)
	}
}

func TestLocateIgnoresDirectiveOutsideAcceptedPosition(t *testing.T) {
	// An AUTOARG comment at module-body level, not inside a header port
	// list, must never surface as a site.
	src := []byte(`module foo;
  /*AUTOARG*/
  wire x;
endmodule`)
	f := verilog.Parse(src)
	sites := Locate(f)
	if len(sites) != 0 {
		t.Fatalf("expected no sites, got %d", len(sites))
	}
}

func TestIndentMatchesEnclosingDeclarationLineNotDirectiveLine(t *testing.T) {
	src := []byte("module top;\n  sub u_sub(\n      /*AUTOINST*/);\nendmodule")
	f := verilog.Parse(src)
	sites := Locate(f)
	if len(sites) != 1 {
		t.Fatalf("expected 1 site, got %d", len(sites))
	}
	if sites[0].Indent != "  " {
		t.Fatalf("expected indent %q (instance's own line), got %q", "  ", sites[0].Indent)
	}
}

func TestRegionBoundsExcludeDirectiveAndTrailingParen(t *testing.T) {
	src := []byte(`module foo(
  input clk,
  /*AUTOARG*/);
endmodule`)
	f := verilog.Parse(src)
	s := Locate(f)[0]
	if s.RegionStart != s.DirectiveEnd {
		t.Fatalf("expected region to start right after the directive")
	}
	region := TextAt(f, s.RegionStart, s.RegionEnd)
	if region != "" {
		t.Fatalf("expected an empty region between the directive and the closing paren, got %q", region)
	}
}
