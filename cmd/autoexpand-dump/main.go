package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/qshan/verible-autoexpand-ls/internal/config"
	"github.com/qshan/verible-autoexpand-ls/internal/port"
	"github.com/qshan/verible-autoexpand-ls/internal/project"
)

// dumpedPort and dumpedModule are the JSON wire shapes for this tool's
// output; kept separate from internal/port's own types so the CLI's output
// format doesn't have to track every internal field.
type dumpedPort struct {
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Order     int    `json:"order"`
}

type dumpedModule struct {
	Name  string       `json:"name"`
	Ports []dumpedPort `json:"ports"`
}

func main() {
	output := flag.String("output", "", "write dump JSON to file (default: stdout)")
	flag.StringVar(output, "o", "", "write dump JSON to file (shorthand)")
	deltaFrom := flag.String("delta-from", "", "previous dump JSON to compute delta from")
	deltaOut := flag.String("delta-out", "", "write delta JSON to file (requires --delta-from)")
	configPath := flag.String("config", "", "config file path")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: autoexpand-dump [--output file] [--delta-from prev.json --delta-out delta.json] <path>")
		os.Exit(1)
	}
	path := args[0]

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	p := project.New(cfg)
	if err := p.Load(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	modules := dumpModules(p.Index().All())

	if *output != "" {
		if err := writeJSON(*output, modules); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing dump: %v\n", err)
			os.Exit(1)
		}
	} else {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(modules); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding dump: %v\n", err)
			os.Exit(1)
		}
	}

	if *deltaFrom != "" || *deltaOut != "" {
		if *deltaFrom == "" || *deltaOut == "" {
			fmt.Fprintln(os.Stderr, "Error: --delta-from and --delta-out must be used together")
			os.Exit(1)
		}
		prev, err := readModules(*deltaFrom)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading delta-from: %v\n", err)
			os.Exit(1)
		}
		if err := writeJSON(*deltaOut, computeDelta(prev, modules)); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing delta: %v\n", err)
			os.Exit(1)
		}
	}
}

func dumpModules(mps []port.ModulePorts) []dumpedModule {
	out := make([]dumpedModule, len(mps))
	for i, mp := range mps {
		dm := dumpedModule{Name: mp.Name}
		for _, p := range mp.Ports {
			dm.Ports = append(dm.Ports, dumpedPort{Name: p.Name, Direction: p.Direction.String(), Order: p.Order})
		}
		out[i] = dm
	}
	return out
}

// delta reports modules added, removed, or changed in shape (port set or
// directions) between two dumps, for idempotence spot-checks between runs.
type delta struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
	Changed []string `json:"changed"`
}

func computeDelta(prev, curr []dumpedModule) delta {
	prevByName := make(map[string]dumpedModule, len(prev))
	for _, m := range prev {
		prevByName[m.Name] = m
	}
	currByName := make(map[string]dumpedModule, len(curr))
	for _, m := range curr {
		currByName[m.Name] = m
	}

	var d delta
	for name, cm := range currByName {
		pm, ok := prevByName[name]
		if !ok {
			d.Added = append(d.Added, name)
			continue
		}
		if !sameModule(pm, cm) {
			d.Changed = append(d.Changed, name)
		}
	}
	for name := range prevByName {
		if _, ok := currByName[name]; !ok {
			d.Removed = append(d.Removed, name)
		}
	}
	return d
}

func sameModule(a, b dumpedModule) bool {
	if len(a.Ports) != len(b.Ports) {
		return false
	}
	for i := range a.Ports {
		if a.Ports[i] != b.Ports[i] {
			return false
		}
	}
	return true
}

func readModules(path string) ([]dumpedModule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var modules []dumpedModule
	if err := json.NewDecoder(f).Decode(&modules); err != nil {
		return nil, err
	}
	return modules, nil
}

func writeJSON(path string, data interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
