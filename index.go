package mibresolver

import (
	"bytes"
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// IndexType represents the type of an index value.
type IndexType uint8

const (
	IndexTypeInteger   IndexType = 0 // INTEGER, Integer32, Unsigned32, etc.
	IndexTypeString    IndexType = 1 // OCTET STRING, DisplayString, etc.
	IndexTypeIpAddress IndexType = 2 // IpAddress (always 4 bytes)
	IndexTypeOID       IndexType = 3 // OBJECT IDENTIFIER
)

func (t IndexType) String() string {
	switch t {
	case IndexTypeInteger:
		return "integer"
	case IndexTypeString:
		return "string"
	case IndexTypeIpAddress:
		return "ipaddress"
	case IndexTypeOID:
		return "oid"
	default:
		return "unknown"
	}
}

// IndexValue is a decoded or to-be-encoded index value.
type IndexValue struct {
	Type    IndexType
	Integer uint32 // IndexTypeInteger
	Bytes   []byte // IndexTypeString, IndexTypeIpAddress
	OID     OID    // IndexTypeOID
}

// String renders the value the way net-snmp prints broken-down indexes:
// integers as numbers, printable strings quoted, addresses dotted, and
// anything else as dotted numbers.
func (v IndexValue) String() string {
	switch v.Type {
	case IndexTypeInteger:
		return strconv.FormatUint(uint64(v.Integer), 10)
	case IndexTypeIpAddress:
		if addr, ok := netip.AddrFromSlice(v.Bytes); ok {
			return addr.String()
		}
	case IndexTypeString:
		if isPrintableASCII(v.Bytes) && !strings.ContainsRune(string(v.Bytes), '"') {
			return strconv.Quote(string(v.Bytes))
		}
		arcs := make(OID, len(v.Bytes))
		for i, b := range v.Bytes {
			arcs[i] = uint32(b)
		}
		return arcs.String()
	case IndexTypeOID:
		return v.OID.String()
	}
	return ""
}

// Index decoding errors.
var (
	ErrNilRow             = errors.New("row object is nil")
	ErrNoIndex            = errors.New("row has no INDEX clause")
	ErrNotEnoughData      = errors.New("not enough data in OID suffix")
	ErrTrailingData       = errors.New("OID suffix longer than INDEX")
	ErrValueCountMismatch = errors.New("value count does not match index count")
	ErrUnsupportedType    = errors.New("unsupported index type")
	ErrInvalidIpAddress   = errors.New("IpAddress must be exactly 4 bytes")
)

// indexColumn is an INDEX entry with its syntax resolved.
type indexColumn struct {
	base      BaseType
	fixedSize int
	// open is true for the last column when IMPLIED: it takes the rest.
	open bool
}

func (m *Model) indexColumns(row *Node) ([]indexColumn, error) {
	if row == nil {
		return nil, ErrNilRow
	}
	if len(row.Index) == 0 {
		return nil, ErrNoIndex
	}
	cols := make([]indexColumn, len(row.Index))
	for i, item := range row.Index {
		node := m.GetNode(item.Object)
		if node == nil {
			return nil, fmt.Errorf("index %d: cannot find node", i)
		}
		cols[i] = indexColumn{
			base:      node.Base,
			fixedSize: node.FixedSize,
			open:      item.Implied && i == len(row.Index)-1,
		}
	}
	return cols, nil
}

// DecodeIndexOID decodes an instance suffix into typed index values for a
// table row. The suffix is what follows the column OID, e.g. for
// ifDescr.5 the suffix is [5].
func (m *Model) DecodeIndexOID(row *Node, suffix OID) ([]IndexValue, error) {
	cols, err := m.indexColumns(row)
	if err != nil {
		return nil, err
	}

	values := make([]IndexValue, 0, len(cols))
	rest := suffix
	for i, col := range cols {
		if len(rest) == 0 {
			return nil, fmt.Errorf("%w: expected %d indexes, ran out of data at index %d",
				ErrNotEnoughData, len(cols), i)
		}
		val, n, err := decodeIndex(col, rest)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		values = append(values, val)
		rest = rest[n:]
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("%w: %d components left", ErrTrailingData, len(rest))
	}
	return values, nil
}

func decodeIndex(col indexColumn, data OID) (IndexValue, int, error) {
	switch {
	case col.base == BaseTypeIpAddress:
		raw, err := takeOctets(data, 4)
		return IndexValue{Type: IndexTypeIpAddress, Bytes: raw}, 4, err

	case col.base == BaseTypeOctetString:
		n, start, err := sizeOf(data, col.fixedSize, col.open)
		if err != nil {
			return IndexValue{}, 0, err
		}
		raw, err := takeOctets(data[start:], n)
		return IndexValue{Type: IndexTypeString, Bytes: raw}, start + n, err

	case col.base == BaseTypeObjectIdentifier:
		n, start, err := sizeOf(data, 0, col.open)
		if err != nil {
			return IndexValue{}, 0, err
		}
		oid := make(OID, n)
		copy(oid, data[start:start+n])
		return IndexValue{Type: IndexTypeOID, OID: oid}, start + n, nil

	case col.base.IsInteger():
		return IndexValue{Type: IndexTypeInteger, Integer: data[0]}, 1, nil
	}
	return IndexValue{}, 0, fmt.Errorf("%w: %v", ErrUnsupportedType, col.base)
}

// sizeOf returns the element count of a variable-length index and where its
// elements start: fixed-size and IMPLIED values carry no length prefix.
func sizeOf(data OID, fixed int, open bool) (n, start int, err error) {
	switch {
	case fixed > 0:
		return fixed, 0, nil
	case open:
		return len(data), 0, nil
	}
	// Compare before converting so a huge prefix cannot overflow int.
	if data[0] > uint32(len(data)-1) {
		return 0, 0, fmt.Errorf("%w: length=%d but only %d components available",
			ErrNotEnoughData, data[0], len(data)-1)
	}
	return int(data[0]), 1, nil
}

func takeOctets(data OID, n int) ([]byte, error) {
	if len(data) < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrNotEnoughData, n, len(data))
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		if data[i] > 0xff {
			return nil, fmt.Errorf("%w: component %d is not an octet", ErrUnsupportedType, data[i])
		}
		out[i] = byte(data[i])
	}
	return out, nil
}

// EncodeIndexOID encodes typed index values into an instance suffix for a
// table row. The number of values must match the INDEX clause.
func (m *Model) EncodeIndexOID(row *Node, values []IndexValue) (OID, error) {
	cols, err := m.indexColumns(row)
	if err != nil {
		return nil, err
	}
	if len(values) != len(cols) {
		return nil, fmt.Errorf("%w: got %d values, need %d",
			ErrValueCountMismatch, len(values), len(cols))
	}

	var suffix OID
	for i, col := range cols {
		v := values[i]
		switch {
		case col.base == BaseTypeIpAddress:
			if len(v.Bytes) != 4 {
				return nil, fmt.Errorf("index %d: %w", i, ErrInvalidIpAddress)
			}
			suffix = appendOctets(suffix, v.Bytes)
		case col.base == BaseTypeOctetString:
			if col.fixedSize == 0 && !col.open {
				suffix = append(suffix, uint32(len(v.Bytes)))
			}
			suffix = appendOctets(suffix, v.Bytes)
		case col.base == BaseTypeObjectIdentifier:
			if !col.open {
				suffix = append(suffix, uint32(len(v.OID)))
			}
			suffix = append(suffix, v.OID...)
		case col.base.IsInteger():
			suffix = append(suffix, v.Integer)
		default:
			return nil, fmt.Errorf("index %d: %w: %v", i, ErrUnsupportedType, col.base)
		}
	}
	return suffix, nil
}

func appendOctets(dst OID, b []byte) OID {
	for _, c := range b {
		dst = append(dst, uint32(c))
	}
	return dst
}

// FormatName renders oid symbolically as "MODULE::object.suffix", e.g.
// "IF-MIB::ifDescr.1". When numericIndexes is false and the object is a
// table column, the suffix is broken down by the row's INDEX clause
// ("IF-MIB::ifName.\"eth0\""). Suffixes that do not decode, or whose
// broken-down form would not parse back to oid, stay numeric.
// Without a defining node the canonical numeric form is returned.
func (m *Model) FormatName(oid OID, numericIndexes bool) string {
	node, suffix := m.LookupPrefix(oid)
	if node == nil {
		return oid.String()
	}

	var b strings.Builder
	b.WriteString(node.QualifiedName())
	if len(suffix) == 0 {
		return b.String()
	}

	if !numericIndexes {
		if row := m.IndexRow(node); row != nil {
			if index, ok := m.formatIndex(row, suffix); ok {
				name := b.String() + index
				if back, err := m.ParseOID(name, len(oid)); err == nil && back.Equal(oid) {
					return name
				}
			}
		}
	}

	b.WriteByte('.')
	b.WriteString(suffix.String())
	return b.String()
}

// formatIndex renders a decoded instance suffix with one component per
// INDEX column, in the input syntax ParseOID accepts.
func (m *Model) formatIndex(row *Node, suffix OID) (string, bool) {
	values, err := m.DecodeIndexOID(row, suffix)
	if err != nil {
		return "", false
	}
	cols, err := m.indexColumns(row)
	if err != nil {
		return "", false
	}

	var b strings.Builder
	for i, v := range values {
		b.WriteByte('.')
		b.WriteString(cols[i].format(v))
	}
	return b.String(), true
}

// format renders v as the arcs it was decoded from. Printable strings are
// quoted: '"' when the column carries a length prefix, '\'' when not.
func (c indexColumn) format(v IndexValue) string {
	switch v.Type {
	case IndexTypeString:
		prefixed := c.fixedSize == 0 && !c.open
		quote := byte('\'')
		if prefixed {
			quote = '"'
		}
		if (len(v.Bytes) > 0 || prefixed) && isPrintableASCII(v.Bytes) && !bytes.ContainsRune(v.Bytes, rune(quote)) {
			return string(quote) + string(v.Bytes) + string(quote)
		}
		return withLength(prefixed, appendOctets(nil, v.Bytes)).String()
	case IndexTypeOID:
		return withLength(!c.open, v.OID).String()
	}
	return v.String()
}

func withLength(prefixed bool, arcs OID) OID {
	if !prefixed {
		return arcs
	}
	return append(OID{uint32(len(arcs))}, arcs...)
}
