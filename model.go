package mibresolver

import (
	"sort"
	"strconv"
	"strings"
)

// Model is the in-memory MIB tree. Safe for concurrent read access.
//
// The Model is read-only after construction. All queries can be performed
// concurrently from multiple goroutines without locks.
type Model struct {
	// Node array (1-indexed: NodeId N maps to nodes[N-1])
	nodes []Node

	// Root node IDs sorted by Subid (typically ccitt=0, iso=1, joint=2)
	roots []uint32

	// Module names in load order
	modules []string

	// Extra names for nodes defined by more than one module
	aliases []Alias

	// Source fingerprint carried through snapshots, empty if unknown
	fingerprint string

	// Lookup indices (built on construction and on deserialize)
	oidIndex    map[string]uint32   // "1.3.6.1.2.1.1.1" -> NodeId
	nameIndex   map[string][]uint32 // "sysDescr" -> []NodeId
	qualIndex   map[string]uint32   // "SNMPv2-MIB::sysDescr" -> NodeId
	moduleIndex map[string]struct{} // "SNMPv2-MIB"
}

// Node represents a position in the OID tree.
type Node struct {
	ID       uint32   // NodeId (1-indexed)
	Subid    uint32   // Arc value at this position
	Parent   uint32   // NodeId, 0 = root
	Children []uint32 // []NodeId, sorted by Subid
	Kind     NodeKind // Semantic type, NodeKindInternal when undefined

	Label    string // Descriptor, e.g. "ifAdminStatus"
	Module   string // Defining module, e.g. "IF-MIB"
	TypeName string // Syntax type name, e.g. "DisplayString"
	Base     BaseType
	Hint     string // DISPLAY-HINT of the syntax, if any
	Units    string

	// Named values of an enumerated INTEGER, or named bits of a BITS syntax.
	Enums []EnumValue

	// FixedSize is the octet length of a fixed-size OCTET STRING syntax
	// (SIZE (n)), 0 otherwise.
	FixedSize int

	// Index lists the INDEX columns of a row. Augments names the row whose
	// INDEX a row shares, 0 = none.
	Index    []IndexItem
	Augments uint32
}

// EnumValue is a named integer value.
type EnumValue struct {
	Value int64
	Name  string
}

// IndexItem is a single entry in a row's INDEX clause.
type IndexItem struct {
	Object  uint32 // NodeId of the index column
	Implied bool
}

// IsDefined reports whether a MIB definition names this node.
func (n *Node) IsDefined() bool {
	return n != nil && n.Label != ""
}

// QualifiedName returns "MODULE::label", or the bare label when the
// defining module is unknown.
func (n *Node) QualifiedName() string {
	if n == nil {
		return ""
	}
	if n.Module == "" {
		return n.Label
	}
	return n.Module + "::" + n.Label
}

// EnumMap maps integer values to labels.
type EnumMap map[int64]string

// StringKeys returns the map keyed by decimal strings, e.g. {"1": "up"}.
func (e EnumMap) StringKeys() map[string]string {
	out := make(map[string]string, len(e))
	for k, v := range e {
		out[strconv.FormatInt(k, 10)] = v
	}
	return out
}

// Label returns the label for value, if any.
func (e EnumMap) Label(value int64) (string, bool) {
	label, ok := e[value]
	return label, ok
}

// EnumsOf returns the enum values attached to a node. It returns an empty,
// non-nil map when n is nil or carries no enumeration.
func EnumsOf(n *Node) EnumMap {
	if n == nil || len(n.Enums) == 0 {
		return EnumMap{}
	}
	m := make(EnumMap, len(n.Enums))
	for _, ev := range n.Enums {
		m[ev.Value] = ev.Name
	}
	return m
}

// === Query Methods ===

// GetNode returns a node by ID.
func (m *Model) GetNode(id uint32) *Node {
	if id == 0 || int(id) > len(m.nodes) {
		return nil
	}
	return &m.nodes[id-1]
}

// GetNodeByOID looks up a node by dotted OID string (e.g., "1.3.6.1.2.1.1.1").
// Returns nil if not found.
func (m *Model) GetNodeByOID(oid string) *Node {
	if id, ok := m.oidIndex[strings.TrimPrefix(oid, ".")]; ok {
		return m.GetNode(id)
	}
	return nil
}

// GetNodesByName returns all nodes with the given name.
// Multiple nodes may share the same name (defined in different modules).
func (m *Model) GetNodesByName(name string) []*Node {
	ids, ok := m.nameIndex[name]
	if !ok {
		return nil
	}
	nodes := make([]*Node, len(ids))
	for i, id := range ids {
		nodes[i] = m.GetNode(id)
	}
	return nodes
}

// GetNodeByQualifiedName looks up "MODULE::name" (e.g., "SNMPv2-MIB::sysDescr").
func (m *Model) GetNodeByQualifiedName(module, name string) *Node {
	if id, ok := m.qualIndex[module+"::"+name]; ok {
		return m.GetNode(id)
	}
	return nil
}

// HasModule reports whether a module of that name was loaded.
func (m *Model) HasModule(name string) bool {
	_, ok := m.moduleIndex[name]
	return ok
}

// Modules returns a copy of the loaded module names.
func (m *Model) Modules() []string {
	out := make([]string, len(m.modules))
	copy(out, m.modules)
	return out
}

// Fingerprint identifies the MIB sources the model was built from.
func (m *Model) Fingerprint() string {
	return m.fingerprint
}

// GetParent returns the parent node in the OID tree.
// Returns nil if the node is nil or is a root node.
func (m *Model) GetParent(n *Node) *Node {
	if n == nil || n.Parent == 0 {
		return nil
	}
	return m.GetNode(n.Parent)
}

// GetChildren returns the child nodes in the OID tree.
func (m *Model) GetChildren(n *Node) []*Node {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	children := make([]*Node, 0, len(n.Children))
	for _, id := range n.Children {
		if child := m.GetNode(id); child != nil {
			children = append(children, child)
		}
	}
	return children
}

// child finds the child of ids (a Subid-sorted ID list) with the given arc.
func (m *Model) child(ids []uint32, arc uint32) *Node {
	i := sort.Search(len(ids), func(i int) bool {
		return m.nodes[ids[i]-1].Subid >= arc
	})
	if i < len(ids) && m.nodes[ids[i]-1].Subid == arc {
		return &m.nodes[ids[i]-1]
	}
	return nil
}

// childByLabel finds a direct child of n (or a root when n is nil) by label.
func (m *Model) childByLabel(n *Node, label string) *Node {
	ids := m.roots
	if n != nil {
		ids = n.Children
	}
	for _, id := range ids {
		if c := m.GetNode(id); c != nil && c.Label == label {
			return c
		}
	}
	return nil
}

// GetOID computes the full OID of a node.
// Returns nil if the node is nil.
func (m *Model) GetOID(n *Node) OID {
	if n == nil {
		return nil
	}
	var arcs OID
	for current := n; current != nil; current = m.GetParent(current) {
		arcs = append(arcs, current.Subid)
	}
	for i, j := 0, len(arcs)-1; i < j; i, j = i+1, j-1 {
		arcs[i], arcs[j] = arcs[j], arcs[i]
	}
	return arcs
}

// GetNodeByOIDSlice looks up the node at exactly oid.
// Returns nil if not found.
func (m *Model) GetNodeByOIDSlice(oid OID) *Node {
	if len(oid) == 0 {
		return nil
	}
	current := m.child(m.roots, oid[0])
	for _, arc := range oid[1:] {
		if current == nil {
			return nil
		}
		current = m.child(current.Children, arc)
	}
	return current
}

// LookupPrefix finds the deepest defined node whose OID is a prefix of oid,
// and returns it together with the unmatched suffix (the instance part).
// Returns (nil, nil) if no defined node lies on the path.
//
// Response OIDs carry instance suffixes (sysName.0, ifDescr.1), so an exact
// match is the exception rather than the rule.
func (m *Model) LookupPrefix(oid OID) (node *Node, suffix OID) {
	if len(oid) == 0 {
		return nil, nil
	}

	var best *Node
	bestDepth := 0
	current := m.child(m.roots, oid[0])
	for depth := 1; current != nil; depth++ {
		if current.IsDefined() {
			best, bestDepth = current, depth
		}
		if depth == len(oid) {
			break
		}
		current = m.child(current.Children, oid[depth])
	}

	if best == nil {
		return nil, nil
	}
	if bestDepth < len(oid) {
		return best, oid[bestDepth:]
	}
	return best, nil
}

// Lookup returns the node whose definition covers oid: the node itself or
// its nearest defined ancestor. Returns nil when the tree has no definition
// on that path.
func (m *Model) Lookup(oid OID) *Node {
	node, _ := m.LookupPrefix(oid)
	return node
}

// IndexRow returns the row that defines the INDEX for a column node,
// following AUGMENTS. Returns nil if n is not a column of an indexed row.
func (m *Model) IndexRow(n *Node) *Node {
	if n == nil || n.Kind != NodeKindColumn {
		return nil
	}
	row := m.GetParent(n)
	for hops := 0; row != nil && hops < 8; hops++ {
		if len(row.Index) > 0 {
			return row
		}
		row = m.GetNode(row.Augments)
	}
	return nil
}

// Walk traverses the tree depth-first from a starting node.
// The callback returns false to stop descending below that node.
func (m *Model) Walk(nodeID uint32, fn func(*Node) bool) {
	node := m.GetNode(nodeID)
	if node == nil || !fn(node) {
		return
	}
	for _, childID := range node.Children {
		m.Walk(childID, fn)
	}
}

// WalkAll traverses all nodes starting from the roots.
func (m *Model) WalkAll(fn func(*Node) bool) {
	for _, rootID := range m.roots {
		m.Walk(rootID, fn)
	}
}

// NodeCount returns the number of nodes, including internal path nodes.
func (m *Model) NodeCount() int {
	return len(m.nodes)
}

// ModuleCount returns the number of modules.
func (m *Model) ModuleCount() int {
	return len(m.modules)
}

// === Index Building ===

func (m *Model) buildIndices() {
	m.oidIndex = make(map[string]uint32, len(m.nodes))
	m.nameIndex = make(map[string][]uint32)
	m.qualIndex = make(map[string]uint32)
	m.moduleIndex = make(map[string]struct{}, len(m.modules))

	for _, name := range m.modules {
		m.moduleIndex[name] = struct{}{}
	}

	// OIDs are computed incrementally down the tree to avoid
	// O(n*depth) parent walks.
	for _, rootID := range m.roots {
		m.buildNodeIndices(rootID, "")
	}

	for _, a := range m.aliases {
		if m.GetNode(a.Node) == nil {
			continue
		}
		m.nameIndex[a.Label] = append(m.nameIndex[a.Label], a.Node)
		if a.Module != "" {
			key := a.Module + "::" + a.Label
			if _, ok := m.qualIndex[key]; !ok {
				m.qualIndex[key] = a.Node
			}
		}
	}
}

// buildNodeIndices recursively indexes nodes.
// parentOID is the OID string of the parent node (empty for roots).
func (m *Model) buildNodeIndices(nodeID uint32, parentOID string) {
	node := m.GetNode(nodeID)
	if node == nil {
		return
	}

	oid := strconv.FormatUint(uint64(node.Subid), 10)
	if parentOID != "" {
		oid = parentOID + "." + oid
	}
	m.oidIndex[oid] = node.ID

	if node.Label != "" {
		m.nameIndex[node.Label] = append(m.nameIndex[node.Label], node.ID)
		if node.Module != "" {
			m.qualIndex[node.Module+"::"+node.Label] = node.ID
		}
	}

	for _, childID := range node.Children {
		m.buildNodeIndices(childID, oid)
	}
}
