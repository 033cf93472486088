package mibresolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
)

var (
	// ErrUnsupportedVersion is returned when the schema version is not supported.
	ErrUnsupportedVersion = errors.New("unsupported schema version")
	// ErrCorruptSnapshot is returned when a snapshot decodes but its tree
	// references are inconsistent.
	ErrCorruptSnapshot = errors.New("corrupt model snapshot")
)

const (
	schemaVersion = 1
)

// snapEncMode is the CBOR encoder mode for model snapshots.
// Canonical ordering keeps snapshots of the same model byte-identical.
var snapEncMode cbor.EncMode

// snapDecMode is the CBOR decoder mode for model snapshots.
var snapDecMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	snapEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	snapDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR decoder mode: %v", err))
	}
}

type snapshot struct {
	Version     uint32         `cbor:"1,keyasint"`
	Fingerprint string         `cbor:"2,keyasint,omitempty"`
	Modules     []string       `cbor:"3,keyasint"`
	Roots       []uint32       `cbor:"4,keyasint"`
	Nodes       []snapshotNode `cbor:"5,keyasint"`
	Aliases     []Alias        `cbor:"6,keyasint,omitempty"`
}

type snapshotNode struct {
	Subid     uint32      `cbor:"1,keyasint"`
	Parent    uint32      `cbor:"2,keyasint,omitempty"`
	Children  []uint32    `cbor:"3,keyasint,omitempty"`
	Kind      NodeKind    `cbor:"4,keyasint,omitempty"`
	Label     string      `cbor:"5,keyasint,omitempty"`
	Module    string      `cbor:"6,keyasint,omitempty"`
	TypeName  string      `cbor:"7,keyasint,omitempty"`
	Base      BaseType    `cbor:"8,keyasint,omitempty"`
	Hint      string      `cbor:"9,keyasint,omitempty"`
	Units     string      `cbor:"10,keyasint,omitempty"`
	Enums     []EnumValue `cbor:"11,keyasint,omitempty"`
	FixedSize int         `cbor:"12,keyasint,omitempty"`
	Index     []IndexItem `cbor:"13,keyasint,omitempty"`
	Augments  uint32      `cbor:"14,keyasint,omitempty"`
}

// Serialize encodes the model as a CBOR snapshot. Deserialize restores it
// without reparsing any MIB file.
func (m *Model) Serialize() ([]byte, error) {
	s := snapshot{
		Version:     schemaVersion,
		Fingerprint: m.fingerprint,
		Modules:     m.modules,
		Roots:       m.roots,
		Nodes:       make([]snapshotNode, len(m.nodes)),
		Aliases:     m.aliases,
	}
	for i := range m.nodes {
		n := &m.nodes[i]
		s.Nodes[i] = snapshotNode{
			Subid:     n.Subid,
			Parent:    n.Parent,
			Children:  n.Children,
			Kind:      n.Kind,
			Label:     n.Label,
			Module:    n.Module,
			TypeName:  n.TypeName,
			Base:      n.Base,
			Hint:      n.Hint,
			Units:     n.Units,
			Enums:     n.Enums,
			FixedSize: n.FixedSize,
			Index:     n.Index,
			Augments:  n.Augments,
		}
	}
	return snapEncMode.Marshal(s)
}

// Deserialize parses a snapshot produced by Model.Serialize.
func Deserialize(data []byte) (*Model, error) {
	var s snapshot
	if err := snapDecMode.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if s.Version != schemaVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, s.Version, schemaVersion)
	}

	m := &Model{
		nodes:       make([]Node, len(s.Nodes)),
		roots:       s.Roots,
		modules:     s.Modules,
		aliases:     s.Aliases,
		fingerprint: s.Fingerprint,
	}
	valid := func(id uint32) bool { return id > 0 && int(id) <= len(s.Nodes) }

	for i, sn := range s.Nodes {
		id := uint32(i + 1)
		if sn.Parent != 0 && !valid(sn.Parent) {
			return nil, fmt.Errorf("%w: node %d has parent %d", ErrCorruptSnapshot, id, sn.Parent)
		}
		for _, c := range sn.Children {
			if !valid(c) || s.Nodes[c-1].Parent != id {
				return nil, fmt.Errorf("%w: node %d has child %d", ErrCorruptSnapshot, id, c)
			}
		}
		for _, item := range sn.Index {
			if !valid(item.Object) {
				return nil, fmt.Errorf("%w: node %d indexes %d", ErrCorruptSnapshot, id, item.Object)
			}
		}
		m.nodes[i] = Node{
			ID:        id,
			Subid:     sn.Subid,
			Parent:    sn.Parent,
			Children:  sn.Children,
			Kind:      sn.Kind,
			Label:     sn.Label,
			Module:    sn.Module,
			TypeName:  sn.TypeName,
			Base:      sn.Base,
			Hint:      sn.Hint,
			Units:     sn.Units,
			Enums:     sn.Enums,
			FixedSize: sn.FixedSize,
			Index:     sn.Index,
			Augments:  sn.Augments,
		}
	}
	for _, r := range m.roots {
		if !valid(r) || s.Nodes[r-1].Parent != 0 {
			return nil, fmt.Errorf("%w: bad root %d", ErrCorruptSnapshot, r)
		}
	}
	if err := m.checkTree(); err != nil {
		return nil, err
	}

	m.buildIndices()
	return m, nil
}

// checkTree verifies that every node is reached exactly once from the roots
// and that sibling lists are sorted by Subid, as lookups expect.
func (m *Model) checkTree() error {
	seen := make([]bool, len(m.nodes))
	stack := make([]uint32, 0, len(m.roots))

	visit := func(parent uint32, ids []uint32) error {
		for i, id := range ids {
			if i > 0 && m.nodes[ids[i-1]-1].Subid >= m.nodes[id-1].Subid {
				return fmt.Errorf("%w: children of node %d are not sorted", ErrCorruptSnapshot, parent)
			}
			if seen[id-1] {
				return fmt.Errorf("%w: node %d is reached twice", ErrCorruptSnapshot, id)
			}
			seen[id-1] = true
			stack = append(stack, id)
		}
		return nil
	}

	if err := visit(0, m.roots); err != nil {
		return err
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if err := visit(id, m.nodes[id-1].Children); err != nil {
			return err
		}
	}

	for i, ok := range seen {
		if !ok {
			return fmt.Errorf("%w: node %d is not reachable from a root", ErrCorruptSnapshot, i+1)
		}
	}
	return nil
}

// WriteSnapshot serializes the model to path. The file is written next to
// its final name and renamed into place.
func (m *Model) WriteSnapshot(path string) error {
	data, err := m.Serialize()
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadSnapshot loads a model written by WriteSnapshot.
func ReadSnapshot(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Deserialize(data)
}
