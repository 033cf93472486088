package mibresolver

import (
	"strconv"
	"strings"
)

// HexCase controls uppercase vs lowercase hex output.
type HexCase bool

const (
	// HexLower outputs lowercase hex digits (0a:1b:2c).
	HexLower HexCase = false
	// HexUpper outputs uppercase hex digits (0A:1B:2C).
	HexUpper HexCase = true
)

func (c HexCase) digits() string {
	if c == HexUpper {
		return "0123456789ABCDEF"
	}
	return "0123456789abcdef"
}

// FormatInteger formats an integer as "label(value)" when the node's enum
// names it, appending units if the node has any. A nil node yields the
// plain number.
func FormatInteger(n *Node, value int64) string {
	var b strings.Builder
	name := ""
	if n != nil {
		for _, ev := range n.Enums {
			if ev.Value == value {
				name = ev.Name
				break
			}
		}
	}
	if name != "" {
		b.WriteString(name)
		b.WriteByte('(')
		b.WriteString(strconv.FormatInt(value, 10))
		b.WriteByte(')')
	} else {
		b.WriteString(strconv.FormatInt(value, 10))
	}
	writeUnits(&b, n)
	return b.String()
}

func writeUnits(b *strings.Builder, n *Node) {
	if n != nil && n.Units != "" {
		b.WriteByte(' ')
		b.WriteString(n.Units)
	}
}

// hintSpec is one octet-format specification of an RFC 2579 DISPLAY-HINT.
type hintSpec struct {
	star    bool // leading '*': first octet is a repeat count
	take    int  // octets consumed per application
	verb    byte // 'd', 'x', 'o', 'a' or 't'
	sep     byte
	hasSep  bool
	term    byte
	hasTerm bool
}

func (s hintSpec) consumes() bool { return s.take > 0 || s.star }

// parseOctetHint splits a DISPLAY-HINT into its specifications.
func parseOctetHint(hint string) ([]hintSpec, bool) {
	var specs []hintSpec
	isDigit := func(c byte) bool { return c >= '0' && c <= '9' }
	isDelim := func(c byte) bool { return !isDigit(c) && c != '*' }

	for i := 0; i < len(hint); {
		var s hintSpec
		if hint[i] == '*' {
			s.star = true
			i++
		}
		start := i
		for i < len(hint) && isDigit(hint[i]) {
			i++
		}
		if i == start || i-start > 6 {
			return nil, false
		}
		s.take, _ = strconv.Atoi(hint[start:i])

		if i >= len(hint) || !strings.ContainsRune("dxoat", rune(hint[i])) {
			return nil, false
		}
		s.verb = hint[i]
		i++

		if i < len(hint) && isDelim(hint[i]) {
			s.sep, s.hasSep = hint[i], true
			i++
		}
		if s.star && i < len(hint) && isDelim(hint[i]) {
			s.term, s.hasTerm = hint[i], true
			i++
		}
		specs = append(specs, s)
	}
	return specs, len(specs) > 0
}

// applyOctetHint renders data per an RFC 2579 octet DISPLAY-HINT. The last
// specification repeats until the data is exhausted, and separators are
// not emitted after the final octet. ok is false when the hint does not
// parse or cannot consume the data.
func applyOctetHint(hint string, data []byte, hexCase HexCase) (string, bool) {
	specs, ok := parseOctetHint(hint)
	if !ok || len(data) == 0 {
		return "", false
	}

	hex := hexCase.digits()
	var out strings.Builder
	out.Grow(len(data) * 3)

	pos := 0
	for i := 0; pos < len(data); i++ {
		s := specs[len(specs)-1]
		if i < len(specs) {
			s = specs[i]
		} else if !s.consumes() {
			return "", false
		}

		repeat := 1
		if s.star {
			repeat = int(data[pos])
			pos++
		}

		for r := 0; r < repeat && pos < len(data); r++ {
			end := min(pos+s.take, len(data))
			chunk := data[pos:end]
			switch s.verb {
			case 'd', 'o':
				if len(chunk) > 8 {
					return "", false
				}
				var v uint64
				for _, c := range chunk {
					v = v<<8 | uint64(c)
				}
				base := 10
				if s.verb == 'o' {
					base = 8
				}
				out.WriteString(strconv.FormatUint(v, base))
			case 'x':
				for _, c := range chunk {
					out.WriteByte(hex[c>>4])
					out.WriteByte(hex[c&0x0f])
				}
			default:
				out.Write(chunk)
			}
			pos = end

			lastOfGroup := s.hasTerm && r == repeat-1
			if s.hasSep && pos < len(data) && !lastOfGroup {
				out.WriteByte(s.sep)
			}
		}
		if s.hasTerm && pos < len(data) {
			out.WriteByte(s.term)
		}
	}
	return out.String(), true
}

// isPrintableASCII checks if all bytes are printable ASCII (0x20-0x7E).
func isPrintableASCII(data []byte) bool {
	for _, c := range data {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

// FormatOctetString formats an OCTET STRING using its DISPLAY-HINT. Without
// a usable hint, printable ASCII is returned verbatim and anything else as
// colon-separated hex.
func FormatOctetString(value []byte, hint string, hexCase HexCase) string {
	if len(value) == 0 {
		return ""
	}
	if hint != "" {
		if s, ok := applyOctetHint(hint, value, hexCase); ok {
			return s
		}
	}
	if isPrintableASCII(value) {
		return string(value)
	}

	hex := hexCase.digits()
	var b strings.Builder
	b.Grow(len(value) * 3)
	for i, c := range value {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

// FormatBits formats a BITS value as "{name, name}" using the node's named
// bits. Bit 0 is the most significant bit of the first octet.
func FormatBits(n *Node, value []byte) string {
	names := EnumsOf(n)
	var set []string
	for i, c := range value {
		for bit := 0; bit < 8; bit++ {
			if c&(0x80>>bit) == 0 {
				continue
			}
			pos := int64(i*8 + bit)
			if name, ok := names[pos]; ok && name != "" {
				set = append(set, name)
			} else {
				set = append(set, "bit"+strconv.FormatInt(pos, 10))
			}
		}
	}
	if len(set) == 0 {
		return "(none)"
	}
	return "{" + strings.Join(set, ", ") + "}"
}

// FormatTimeTicks formats centiseconds as "N days, H:MM:SS.cc" or
// "H:MM:SS.cc".
func FormatTimeTicks(value uint32) string {
	cs := uint64(value)
	days := cs / 8640000
	cs %= 8640000
	hours := cs / 360000
	cs %= 360000
	mins := cs / 6000
	cs %= 6000
	secs := cs / 100
	cs %= 100

	var b strings.Builder
	if days > 0 {
		b.WriteString(strconv.FormatUint(days, 10))
		if days == 1 {
			b.WriteString(" day, ")
		} else {
			b.WriteString(" days, ")
		}
	}
	b.WriteString(strconv.FormatUint(hours, 10))
	for _, v := range [...]uint64{mins, secs} {
		b.WriteByte(':')
		writeTwoDigits(&b, v)
	}
	b.WriteByte('.')
	writeTwoDigits(&b, cs)
	return b.String()
}

func writeTwoDigits(b *strings.Builder, v uint64) {
	if v < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatUint(v, 10))
}

// FormatOID formats an OID value as dotted numbers, followed by the node
// name in parentheses when m defines exactly that OID.
func FormatOID(m *Model, value OID) string {
	if len(value) == 0 {
		return ""
	}
	s := value.String()
	if m != nil {
		if node := m.GetNodeByOIDSlice(value); node.IsDefined() {
			s += "(" + node.Label + ")"
		}
	}
	return s
}

// FormatValue formats an SNMP value according to the node's syntax.
// Accepts the Go types gosnmp produces for PDU values. A nil node formats
// with default handling.
func FormatValue(m *Model, n *Node, value any) string {
	base := BaseTypeUnknown
	if n != nil {
		base = n.Base
	}

	switch v := value.(type) {
	case nil:
		return ""
	case int:
		return formatSigned(n, base, int64(v))
	case int32:
		return formatSigned(n, base, int64(v))
	case int64:
		return formatSigned(n, base, v)
	case uint:
		return formatUnsigned(n, base, uint64(v))
	case uint32:
		return formatUnsigned(n, base, uint64(v))
	case uint64:
		return formatUnsigned(n, base, v)
	case []byte:
		return formatBytes(n, base, v)
	case string:
		if base == BaseTypeObjectIdentifier {
			if oid, err := ParseOID(v, 0); err == nil {
				return FormatOID(m, oid)
			}
		}
		return formatBytes(n, base, []byte(v))
	case OID:
		return FormatOID(m, v)
	case []uint32:
		return FormatOID(m, v)
	}
	return ""
}

func formatSigned(n *Node, base BaseType, v int64) string {
	switch {
	case base == BaseTypeTimeTicks && v >= 0 && v <= 0xffffffff:
		return FormatTimeTicks(uint32(v))
	case base == BaseTypeInteger32:
		return FormatInteger(n, v)
	}
	var b strings.Builder
	b.WriteString(strconv.FormatInt(v, 10))
	writeUnits(&b, n)
	return b.String()
}

func formatUnsigned(n *Node, base BaseType, v uint64) string {
	switch {
	case base == BaseTypeTimeTicks && v <= 0xffffffff:
		return FormatTimeTicks(uint32(v))
	case base == BaseTypeInteger32 && v <= 1<<63-1:
		return FormatInteger(n, int64(v))
	}
	var b strings.Builder
	b.WriteString(strconv.FormatUint(v, 10))
	writeUnits(&b, n)
	return b.String()
}

func formatBytes(n *Node, base BaseType, v []byte) string {
	if base == BaseTypeBits {
		return FormatBits(n, v)
	}
	hint := ""
	if n != nil {
		hint = n.Hint
	}
	return FormatOctetString(v, hint, HexLower)
}
