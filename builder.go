package mibresolver

import (
	"errors"
	"fmt"
	"sort"
)

// Definition describes one named node of a MIB module.
type Definition struct {
	Module    string
	Name      string
	OID       OID
	Kind      NodeKind
	TypeName  string
	Base      BaseType
	Hint      string
	Units     string
	Enums     []EnumValue
	FixedSize int

	// Index lists the INDEX columns of a row by OID. Augments is the OID of
	// the augmented row.
	Index    []IndexRef
	Augments OID
}

// IndexRef references an index column by OID.
type IndexRef struct {
	OID     OID
	Implied bool
}

// Alias records a second module defining an already defined node.
type Alias struct {
	Module string
	Label  string
	Node   uint32
}

// ErrEmptyDefinition is returned by Builder.Define for a definition
// without name or OID.
var ErrEmptyDefinition = errors.New("definition needs a name and an OID")

// Builder assembles a Model from definitions. Path nodes between a root and
// a defined node are created as NodeKindInternal.
//
// Builder is NOT safe for concurrent use.
type Builder struct {
	nodes       []Node
	roots       []uint32
	children    map[uint64]uint32 // parent<<32 | subid -> NodeId
	modules     []string
	seenModules map[string]bool
	aliases     []Alias
	index       map[uint32][]IndexRef
	augments    map[uint32]OID
	fingerprint string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		children:    make(map[uint64]uint32),
		seenModules: make(map[string]bool),
		index:       make(map[uint32][]IndexRef),
		augments:    make(map[uint32]OID),
	}
}

// AddModule registers a module name even if it defines no nodes.
func (b *Builder) AddModule(name string) {
	if name == "" || b.seenModules[name] {
		return
	}
	b.seenModules[name] = true
	b.modules = append(b.modules, name)
}

// SetFingerprint records an identifier of the sources the model is built from.
func (b *Builder) SetFingerprint(fp string) {
	b.fingerprint = fp
}

// Define adds a definition. When the OID is already defined by another
// module, the first definition is kept and the new name is recorded as an
// alias that still resolves by qualified and bare name.
func (b *Builder) Define(def Definition) error {
	if def.Name == "" || len(def.OID) == 0 {
		return fmt.Errorf("%w: %q %v", ErrEmptyDefinition, def.Name, def.OID)
	}
	b.AddModule(def.Module)

	id := b.path(def.OID)
	n := &b.nodes[id-1]
	if n.Label != "" {
		if n.Label != def.Name || n.Module != def.Module {
			b.aliases = append(b.aliases, Alias{Module: def.Module, Label: def.Name, Node: id})
		}
		return nil
	}

	n.Label = def.Name
	n.Module = def.Module
	n.Kind = def.Kind
	if n.Kind == NodeKindInternal {
		n.Kind = NodeKindNode
	}
	n.TypeName = def.TypeName
	n.Base = def.Base
	n.Hint = def.Hint
	n.Units = def.Units
	n.FixedSize = def.FixedSize
	if len(def.Enums) > 0 {
		n.Enums = append([]EnumValue(nil), def.Enums...)
	}
	if len(def.Index) > 0 {
		b.index[id] = append([]IndexRef(nil), def.Index...)
	}
	if len(def.Augments) > 0 {
		b.augments[id] = append(OID(nil), def.Augments...)
	}
	return nil
}

// path returns the node at oid, creating internal nodes along the way.
func (b *Builder) path(oid OID) uint32 {
	var parent uint32
	for _, arc := range oid {
		key := uint64(parent)<<32 | uint64(arc)
		id, ok := b.children[key]
		if !ok {
			b.nodes = append(b.nodes, Node{Subid: arc, Parent: parent})
			id = uint32(len(b.nodes))
			b.nodes[id-1].ID = id
			b.children[key] = id
			if parent == 0 {
				b.roots = append(b.roots, id)
			} else {
				p := &b.nodes[parent-1]
				p.Children = append(p.Children, id)
			}
		}
		parent = id
	}
	return parent
}

// lookup returns the node ID at exactly oid, or 0.
func (b *Builder) lookup(oid OID) uint32 {
	var id uint32
	for _, arc := range oid {
		next, ok := b.children[uint64(id)<<32|uint64(arc)]
		if !ok {
			return 0
		}
		id = next
	}
	return id
}

// Build returns the Model. Index references that name undefined OIDs are
// dropped. The Builder must not be used afterwards.
func (b *Builder) Build() *Model {
	m := &Model{
		nodes:       b.nodes,
		roots:       b.roots,
		modules:     b.modules,
		aliases:     b.aliases,
		fingerprint: b.fingerprint,
	}

	for id, refs := range b.index {
		items := make([]IndexItem, 0, len(refs))
		for _, ref := range refs {
			if obj := b.lookup(ref.OID); obj != 0 {
				items = append(items, IndexItem{Object: obj, Implied: ref.Implied})
			}
		}
		m.nodes[id-1].Index = items
	}
	for id, target := range b.augments {
		m.nodes[id-1].Augments = b.lookup(target)
	}

	m.sortChildren()
	m.buildIndices()
	return m
}

func (m *Model) sortChildren() {
	bySubid := func(ids []uint32) {
		sort.Slice(ids, func(i, j int) bool {
			return m.nodes[ids[i]-1].Subid < m.nodes[ids[j]-1].Subid
		})
	}
	bySubid(m.roots)
	for i := range m.nodes {
		bySubid(m.nodes[i].Children)
	}
}
