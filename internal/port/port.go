// Package port holds the Port Model: a module's declared ports, their
// effective direction, and their declaration order.
package port

// Direction is the effective direction of a port after combining the module
// header declaration (if any) with a body redeclaration (if any).
type Direction int

const (
	// Unresolved marks a port whose direction could not be determined from
	// either the header or the body. Such ports are excluded from generated
	// output entirely.
	Unresolved Direction = iota
	Input
	Inout
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Inout:
		return "inout"
	case Output:
		return "output"
	default:
		return "unresolved"
	}
}

// Port is a single declared port of a module.
type Port struct {
	Name      string
	Direction Direction
	// Order reflects the position of the port's first appearance, header or
	// body, whichever came first in the source.
	Order int
}

// ModulePorts is the ordered set of a module's ports, deduplicated by name
// (first occurrence wins).
type ModulePorts struct {
	Name  string
	Ports []Port
}

// Bucket returns the ports with the given direction, in declaration order.
// Unresolved ports are never returned by any bucket.
func (m ModulePorts) Bucket(d Direction) []Port {
	var out []Port
	for _, p := range m.Ports {
		if p.Direction == d {
			out = append(out, p)
		}
	}
	return out
}

// Inputs, Inouts and Outputs are the three buckets the Expander groups
// generated content into, in that fixed order.
func (m ModulePorts) Inputs() []Port  { return m.Bucket(Input) }
func (m ModulePorts) Inouts() []Port  { return m.Bucket(Inout) }
func (m ModulePorts) Outputs() []Port { return m.Bucket(Output) }

// ByName looks up a port by name, returning ok=false if absent.
func (m ModulePorts) ByName(name string) (Port, bool) {
	for _, p := range m.Ports {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// Builder accumulates ports declared first in the module header, then in the
// body, enforcing direction precedence: a header declaration that resolves a
// concrete direction wins over a body redeclaration of the same name; if the
// header leaves the direction unresolved (non-ANSI port list), the first
// body declaration that resolves it wins.
type Builder struct {
	order      int
	byName     map[string]int // name -> index into ports
	ports      []Port
	headerFixed map[string]bool // true once a concrete header direction is set
}

// NewBuilder returns an empty port accumulator for a module.
func NewBuilder() *Builder {
	return &Builder{byName: map[string]int{}, headerFixed: map[string]bool{}}
}

// AddHeader records a port named in the module's ANSI or non-ANSI header.
// dir is Unresolved for a non-ANSI name-only entry.
func (b *Builder) AddHeader(name string, dir Direction) {
	b.add(name, dir, true)
}

// AddBody records a standalone input/inout/output declaration in the module
// body.
func (b *Builder) AddBody(name string, dir Direction) {
	b.add(name, dir, false)
}

func (b *Builder) add(name string, dir Direction, header bool) {
	idx, seen := b.byName[name]
	if !seen {
		b.ports = append(b.ports, Port{Name: name, Direction: dir, Order: b.order})
		b.byName[name] = len(b.ports) - 1
		if header && dir != Unresolved {
			b.headerFixed[name] = true
		}
		b.order++
		return
	}
	if dir == Unresolved {
		return
	}
	if header {
		if !b.headerFixed[name] {
			b.ports[idx].Direction = dir
			b.headerFixed[name] = true
		}
		return
	}
	// Body declaration: only resolves direction if the header never fixed
	// one, and only if nothing has resolved it yet (first body decl wins).
	if !b.headerFixed[name] && b.ports[idx].Direction == Unresolved {
		b.ports[idx].Direction = dir
	}
}

// Build returns the finished, declaration-order ModulePorts.
func (b *Builder) Build(name string) ModulePorts {
	return ModulePorts{Name: name, Ports: b.ports}
}
