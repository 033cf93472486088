package mibresolver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultMaxOIDLen is the default maximum number of OID components,
// matching net-snmp's MAX_OID_LEN.
const DefaultMaxOIDLen = 128

// Parse errors. A *ParseError wraps exactly one of these.
var (
	ErrEmpty         = errors.New("empty OID")
	ErrSyntax        = errors.New("invalid OID syntax")
	ErrRange         = errors.New("OID component out of range")
	ErrTooLong       = errors.New("OID exceeds maximum length")
	ErrUnknownModule = errors.New("unknown MIB module")
	ErrUnknownSymbol = errors.New("unknown MIB symbol")
)

// ParseError describes why an input could not be parsed as an OID.
type ParseError struct {
	Input string
	Err   error
	// Detail names the offending component, if any.
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("parsing %q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("parsing %q: %v: %s", e.Input, e.Err, e.Detail)
}

func (e *ParseError) Unwrap() error { return e.Err }

// OID is an object identifier as a sequence of sub-identifiers.
// Values returned by this package are never modified afterwards.
type OID []uint32

// String renders the OID in canonical dotted-numeric form without a
// leading dot, e.g. "1.3.6.1.2.1.1.1.0".
func (o OID) String() string {
	var b strings.Builder
	b.Grow(len(o) * 4)
	for i, arc := range o {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.FormatUint(uint64(arc), 10))
	}
	return b.String()
}

// Equal reports whether o and other have identical components.
func (o OID) Equal(other OID) bool {
	if len(o) != len(other) {
		return false
	}
	for i := range o {
		if o[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is a leading subsequence of o.
func (o OID) HasPrefix(prefix OID) bool {
	return len(prefix) <= len(o) && o[:len(prefix)].Equal(prefix)
}

// ParseOID parses a dotted-numeric OID such as "1.3.6.1.2.1.1.1.0" or
// ".1.3.6.1". Leading zeros in components are accepted and dropped.
// A maxLen <= 0 selects DefaultMaxOIDLen.
//
// Symbolic names need a loaded MIB tree; use Model.ParseOID for those.
func ParseOID(s string, maxLen int) (OID, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxOIDLen
	}
	if s == "" {
		return nil, &ParseError{Input: s, Err: ErrEmpty}
	}

	body := strings.TrimPrefix(s, ".")
	if body == "" {
		return nil, &ParseError{Input: s, Err: ErrEmpty}
	}

	oid := make(OID, 0, strings.Count(body, ".")+1)
	for _, part := range strings.Split(body, ".") {
		arc, err := parseArc(part)
		if err != nil {
			return nil, &ParseError{Input: s, Err: err, Detail: part}
		}
		if len(oid) == maxLen {
			return nil, &ParseError{Input: s, Err: ErrTooLong, Detail: strconv.Itoa(maxLen)}
		}
		oid = append(oid, arc)
	}
	return oid, nil
}

// parseArc parses one decimal sub-identifier.
func parseArc(part string) (uint32, error) {
	if part == "" || !isDigits(part) {
		return 0, ErrSyntax
	}
	n, err := strconv.ParseUint(part, 10, 32)
	if err != nil {
		return 0, ErrRange
	}
	return uint32(n), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
