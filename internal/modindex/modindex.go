// Package modindex implements the Module Index: resolving a module name to
// its Port Model by consulting a project-wide symbol table built by
// scanning every file in the project (spec §4.1).
package modindex

import (
	"sort"

	"github.com/qshan/verible-autoexpand-ls/internal/port"
	"github.com/qshan/verible-autoexpand-ls/internal/verilog"
)

// SymbolTable is the engine's view of the project's module definitions. It
// mirrors the external collaborator described in spec §6
// (SetProject/UpdateFileContent/BuildProjectSymbolTable/LookupModule), but
// is implemented in-process here since no project loader exists outside
// this engine in this repository.
type SymbolTable interface {
	// LookupModule resolves name to its port model. ok is false if the
	// module has no definition anywhere in the project. Ambiguous
	// definitions resolve silently to the first one seen in scan order.
	LookupModule(name string) (port.ModulePorts, bool)
}

// fileEntry is one scanned project file, kept in scan order so ambiguity
// resolution can pick the first-seen definition deterministically.
type fileEntry struct {
	uri  string
	file *verilog.File
}

// ProjectIndex is the default SymbolTable implementation: a project-wide
// scan of every known file, producing one ModulePorts per distinct module
// name (first occurrence wins on duplicates).
type ProjectIndex struct {
	files   []fileEntry
	byName  map[string]port.ModulePorts
	built   bool
}

// NewProjectIndex returns an empty index. Use AddFile to register project
// files, then Build to resolve ports; or call LookupModule directly, which
// builds lazily on first use.
func NewProjectIndex() *ProjectIndex {
	return &ProjectIndex{byName: map[string]port.ModulePorts{}}
}

// AddFile registers a parsed file under uri, in project scan order. Call
// before the first LookupModule/Build.
func (idx *ProjectIndex) AddFile(uri string, f *verilog.File) {
	idx.files = append(idx.files, fileEntry{uri: uri, file: f})
	idx.built = false
}

// Build resolves every module name across all registered files. Modules
// defined more than once resolve to the first definition encountered,
// scanning files in AddFile order and, within a file, in byte order (spec
// §3 "ModuleIndex entry").
func (idx *ProjectIndex) Build() {
	idx.byName = map[string]port.ModulePorts{}
	seen := map[string]bool{}
	for _, fe := range idx.files {
		mods := make([]verilog.Module, len(fe.file.Modules))
		copy(mods, fe.file.Modules)
		sort.SliceStable(mods, func(i, j int) bool { return mods[i].Start < mods[j].Start })
		for _, m := range mods {
			if m.Name == "" || seen[m.Name] {
				continue
			}
			seen[m.Name] = true
			idx.byName[m.Name] = BuildModulePorts(m)
		}
	}
	idx.built = true
}

// LookupModule implements SymbolTable.
func (idx *ProjectIndex) LookupModule(name string) (port.ModulePorts, bool) {
	if !idx.built {
		idx.Build()
	}
	mp, ok := idx.byName[name]
	return mp, ok
}

// All returns every resolved ModulePorts in the index, sorted by module
// name, for tooling that needs to enumerate the whole project rather than
// look up one name at a time.
func (idx *ProjectIndex) All() []port.ModulePorts {
	if !idx.built {
		idx.Build()
	}
	names := make([]string, 0, len(idx.byName))
	for name := range idx.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]port.ModulePorts, len(names))
	for i, name := range names {
		out[i] = idx.byName[name]
	}
	return out
}

// BuildModulePorts computes the effective Port Model for a single scanned
// module: header declarations first (in header order), then body
// declarations, applying the direction-precedence rule in internal/port.
func BuildModulePorts(m verilog.Module) port.ModulePorts {
	b := port.NewBuilder()
	if m.Header != nil {
		for _, d := range m.Header.Decls {
			b.AddHeader(d.Name, d.Direction)
		}
	}
	for _, d := range m.BodyPorts {
		b.AddBody(d.Name, d.Direction)
	}
	return b.Build(m.Name)
}
