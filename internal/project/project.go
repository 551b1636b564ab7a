// Package project wires the core engine (internal/verilog, internal/port,
// internal/modindex, internal/template, internal/locator, internal/expander)
// into a batch, multi-file pipeline for the CLI layer: scan the configured
// source roots, build one project-wide symbol table, then expand every
// accepted AUTOARG/AUTOINST site in every file (spec's "Supplemented
// Features": project-wide multi-file resolution, SPEC_FULL.md §12).
//
// The pipeline shape (load config, scan files, parallel per-file work,
// aggregate, report) is the same one internal/indexer/indexer.go uses; this
// package is the Verilog-domain counterpart with no fact-table machinery,
// since the engine's own job ends at producing TextEdits. The only policy
// evaluation is the optional internal/lintpolicy pass enabled by Lint.
package project

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/qshan/verible-autoexpand-ls/internal/config"
	"github.com/qshan/verible-autoexpand-ls/internal/contract"
	"github.com/qshan/verible-autoexpand-ls/internal/expander"
	"github.com/qshan/verible-autoexpand-ls/internal/lintpolicy"
	"github.com/qshan/verible-autoexpand-ls/internal/locator"
	"github.com/qshan/verible-autoexpand-ls/internal/lsp"
	"github.com/qshan/verible-autoexpand-ls/internal/modindex"
	"github.com/qshan/verible-autoexpand-ls/internal/template"
	"github.com/qshan/verible-autoexpand-ls/internal/verilog"
)

// FileResult is the outcome of expanding one project file.
type FileResult struct {
	Path  string
	Edits []lsp.TextEdit

	// rawEdits carries the same edits as byte-offset ranges, for Apply;
	// Edits is the LSP-position form meant for reporting/JSON output.
	rawEdits []expander.TextEdit

	// Violations are additive lintpolicy findings over this file's
	// generated AUTOINST connections; nil if lint policy is disabled.
	Violations []lintpolicy.Violation

	ParseErr error
}

// Result is the outcome of expanding an entire project.
type Result struct {
	Files []FileResult
}

// Project owns the loaded configuration and the scanned, parsed files that
// back the shared project-wide symbol table.
type Project struct {
	Config *config.Config

	mu     sync.Mutex
	parsed map[string]*verilog.File
	index  *modindex.ProjectIndex

	Verbose bool
	Lint    bool
	Guard   bool
}

// New creates a Project with the given configuration. A nil cfg loads
// config.DefaultConfig().
func New(cfg *config.Config) *Project {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Project{Config: cfg, parsed: map[string]*verilog.File{}}
}

// Index returns the project-wide symbol table built by Load, for tooling
// that needs direct Module Index access (cmd/autoexpand-dump).
func (p *Project) Index() *modindex.ProjectIndex {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

// Load scans rootPath for Verilog/SystemVerilog source per the configured
// source roots, parses every file, and builds the shared module index. It
// must be called before Expand.
func (p *Project) Load(rootPath string) error {
	files, err := p.Config.GetAllFiles(rootPath)
	if err != nil {
		return fmt.Errorf("scanning project files: %w", err)
	}

	var filtered []string
	for _, f := range files {
		if p.Config.ShouldIgnoreFile(f) {
			continue
		}
		if !config.IsVerilogSource(f) {
			continue
		}
		filtered = append(filtered, f)
	}
	sort.Strings(filtered)

	if p.Verbose {
		fmt.Printf("Found %d Verilog/SystemVerilog files\n", len(filtered))
	}

	type parseJob struct {
		path string
		file *verilog.File
		err  error
	}
	jobs := make([]parseJob, len(filtered))
	var sem chan struct{}
	if n := p.Config.Analysis.MaxParallelFiles; n > 0 {
		sem = make(chan struct{}, n)
	}
	var wg sync.WaitGroup
	for i, path := range filtered {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			src, err := os.ReadFile(path)
			if err != nil {
				jobs[i] = parseJob{path: path, err: fmt.Errorf("%s: %w", path, err)}
				return
			}
			jobs[i] = parseJob{path: path, file: verilog.Parse(src)}
		}(i, path)
	}
	wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	idx := modindex.NewProjectIndex()
	var errs []error
	for _, j := range jobs {
		if j.err != nil {
			errs = append(errs, j.err)
			continue
		}
		p.parsed[j.path] = j.file
		idx.AddFile(j.path, j.file)
	}
	idx.Build()
	p.index = idx

	if len(errs) > 0 {
		return fmt.Errorf("reading files:\n%s", joinErrs(errs))
	}
	return nil
}

// Expand computes the edit set for every scanned file. Files that parse to
// zero accepted sites are omitted from the result (spec §4.4/§7: a directive
// that resolves to no change contributes no edit).
func (p *Project) Expand() (Result, error) {
	p.mu.Lock()
	paths := make([]string, 0, len(p.parsed))
	for path := range p.parsed {
		paths = append(paths, path)
	}
	idx := p.index
	p.mu.Unlock()
	sort.Strings(paths)

	var guard *contract.Guard
	if p.Guard {
		g, err := contract.New()
		if err != nil {
			return Result{}, fmt.Errorf("initializing contract guard: %w", err)
		}
		guard = g
	}

	var lintEngine *lintpolicy.Engine
	if p.Lint {
		e, err := lintpolicy.New()
		if err != nil {
			return Result{}, fmt.Errorf("initializing lint policy: %w", err)
		}
		lintEngine = e
	}

	var result Result
	for _, path := range paths {
		f := p.parsed[path]
		fr, err := p.expandFile(path, f, idx, guard, lintEngine)
		if err != nil {
			result.Files = append(result.Files, FileResult{Path: path, ParseErr: err})
			continue
		}
		if len(fr.Edits) == 0 && len(fr.Violations) == 0 {
			continue
		}
		result.Files = append(result.Files, fr)
	}
	return result, nil
}

func (p *Project) expandFile(path string, f *verilog.File, idx *modindex.ProjectIndex, guard *contract.Guard, lintEngine *lintpolicy.Engine) (FileResult, error) {
	sites := locator.Locate(f)
	reg := template.Build(f)

	if guard != nil {
		for _, m := range f.Modules {
			mp := modindex.BuildModulePorts(m)
			if err := guard.ValidateModulePorts(mp); err != nil {
				return FileResult{}, fmt.Errorf("%s: module %q failed contract validation: %w", path, m.Name, err)
			}
		}
	}

	edits := expander.Expand(sites, idx, reg)

	if guard != nil && len(edits) > 0 {
		starts := make([]int, len(edits))
		ends := make([]int, len(edits))
		texts := make([]string, len(edits))
		for i, e := range edits {
			starts[i], ends[i], texts[i] = e.Start, e.End, e.NewText
		}
		if err := guard.ValidateTextEdits(starts, ends, texts); err != nil {
			return FileResult{}, fmt.Errorf("%s: generated edits failed contract validation: %w", path, err)
		}
	}

	li := lsp.NewLineIndex(f.Source)
	wire := make([]lsp.TextEdit, len(edits))
	for i, e := range edits {
		wire[i] = lsp.TextEdit{Range: li.Range(e.Start, e.End), NewText: e.NewText}
	}
	sort.Slice(wire, func(i, j int) bool {
		if wire[i].Range.End.Line != wire[j].Range.End.Line {
			return wire[i].Range.End.Line > wire[j].Range.End.Line
		}
		return wire[i].Range.End.Character > wire[j].Range.End.Character
	})

	var violations []lintpolicy.Violation
	if lintEngine != nil {
		conns := instanceConnections(f, idx, reg)
		if len(conns) > 0 {
			v, err := lintEngine.Evaluate(conns)
			if err != nil {
				return FileResult{}, fmt.Errorf("%s: lint policy evaluation: %w", path, err)
			}
			violations = v
		}
	}

	return FileResult{Path: path, Edits: wire, rawEdits: edits, Violations: violations}, nil
}

// Apply writes fr's edits back into the file at fr.Path, replacing each
// byte range in descending end-offset order so earlier edits' offsets stay
// valid (spec §4.4's ordering rule applies to in-place application too, not
// only to LSP WorkspaceEdit consumers).
func Apply(fr FileResult) error {
	if len(fr.rawEdits) == 0 {
		return nil
	}
	out, err := applyEdits(fr)
	if err != nil {
		return err
	}
	if err := os.WriteFile(fr.Path, out, 0644); err != nil {
		return fmt.Errorf("%s: %w", fr.Path, err)
	}
	return nil
}

// Preview computes fr's post-expansion file contents without writing
// anything to disk, for hosts that only want to show a diff.
func Preview(fr FileResult) ([]byte, error) {
	if len(fr.rawEdits) == 0 {
		return os.ReadFile(fr.Path)
	}
	return applyEdits(fr)
}

func applyEdits(fr FileResult) ([]byte, error) {
	src, err := os.ReadFile(fr.Path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fr.Path, err)
	}

	edits := make([]expander.TextEdit, len(fr.rawEdits))
	copy(edits, fr.rawEdits)
	sort.Slice(edits, func(i, j int) bool { return edits[i].End > edits[j].End })

	for _, e := range edits {
		if e.Start < 0 || e.End > len(src) || e.Start > e.End {
			return nil, fmt.Errorf("%s: edit range [%d,%d) out of bounds for %d-byte file", fr.Path, e.Start, e.End, len(src))
		}
		var buf []byte
		buf = append(buf, src[:e.Start]...)
		buf = append(buf, []byte(e.NewText)...)
		buf = append(buf, src[e.End:]...)
		src = buf
	}
	return src, nil
}

// instanceConnections builds the lintpolicy.Connection batch for every
// instance in f whose target module is known, regardless of whether it
// carries an AUTOINST directive, so a plain AUTO_TEMPLATE override with a
// typo'd pin name is caught even without expansion.
func instanceConnections(f *verilog.File, idx *modindex.ProjectIndex, reg *template.Registry) []lintpolicy.Connection {
	var out []lintpolicy.Connection
	for _, m := range f.Modules {
		for _, inst := range m.Instances {
			mp, ok := idx.LookupModule(inst.ModuleName)
			if !ok {
				continue
			}
			pinNames := make([]string, len(mp.Ports))
			for i, pp := range mp.Ports {
				pinNames[i] = pp.Name
			}
			site := inst.DirectiveStart
			if site < 0 {
				site = inst.OpenParen
			}
			for pin := range reg.Lookup(site, inst.ModuleName) {
				out = append(out, lintpolicy.Connection{
					InstanceName:   inst.InstName,
					ModuleName:     inst.ModuleName,
					PinName:        pin,
					ModulePinNames: pinNames,
				})
			}
		}
	}
	return out
}

func joinErrs(errs []error) string {
	var b []byte
	for i, e := range errs {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, []byte("- "+e.Error())...)
	}
	return string(b)
}
