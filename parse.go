package mibresolver

import (
	"strconv"
	"strings"
)

// ParseOID parses a numeric, symbolic or mixed OID against the model's
// symbol table. Accepted forms:
//
//	1.3.6.1.2.1.1.1.0          dotted numeric, optional leading dot
//	SNMPv2-MIB::sysDescr.0     module-qualified name with instance suffix
//	sysDescr.0                 bare name, first definition wins
//	iso.org.dod.internet.1     label path, each label a child of the previous
//	IF-MIB::ifName."eth0"      quoted index, length-prefixed octets
//	IF-MIB::ifName.'eth0'      quoted index, IMPLIED (no length prefix)
//
// A maxLen <= 0 selects DefaultMaxOIDLen. Errors are *ParseError values.
func (m *Model) ParseOID(input string, maxLen int) (OID, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxOIDLen
	}
	if input == "" {
		return nil, &ParseError{Input: input, Err: ErrEmpty}
	}

	p := oidParser{m: m, input: input, maxLen: maxLen}
	body := input

	if i := strings.Index(input, "::"); i >= 0 && !strings.ContainsAny(input[:i], `"'`) {
		module := input[:i]
		body = input[i+2:]
		if module == "" || body == "" {
			return nil, p.fail(ErrSyntax, input)
		}
		if !m.HasModule(module) {
			return nil, p.fail(ErrUnknownModule, module)
		}
		p.module = module
	} else {
		body = strings.TrimPrefix(body, ".")
		if body == "" {
			return nil, p.fail(ErrEmpty, "")
		}
	}

	parts, ok := splitComponents(body)
	if !ok {
		return nil, p.fail(ErrSyntax, body)
	}
	for i, part := range parts {
		if err := p.component(i, part); err != nil {
			return nil, err
		}
	}
	return p.oid, nil
}

// oidParser holds the walk state while components are consumed.
type oidParser struct {
	m      *Model
	input  string
	maxLen int
	module string

	oid OID
	// current is the tree node at oid, nil once the path leaves the tree.
	current *Node
}

func (p *oidParser) fail(err error, detail string) *ParseError {
	return &ParseError{Input: p.input, Err: err, Detail: detail}
}

func (p *oidParser) component(pos int, part string) error {
	switch {
	case part == "":
		return p.fail(ErrSyntax, "empty component")
	case part[0] == '"' || part[0] == '\'':
		return p.quoted(part)
	case part[0] >= '0' && part[0] <= '9':
		arc, err := parseArc(part)
		if err != nil {
			return p.fail(err, part)
		}
		return p.push(arc)
	case isLabel(part):
		return p.label(pos, part)
	default:
		return p.fail(ErrSyntax, part)
	}
}

// label resolves a descriptor. The first label of a qualified input is
// looked up in its module, the first label of an unqualified input anywhere
// in the tree, and every later label among the children of the current node.
func (p *oidParser) label(pos int, name string) error {
	var node *Node
	switch {
	case pos == 0 && p.module != "":
		node = p.m.GetNodeByQualifiedName(p.module, name)
	case pos == 0:
		if nodes := p.m.GetNodesByName(name); len(nodes) > 0 {
			node = nodes[0]
		}
	case p.current != nil:
		node = p.m.childByLabel(p.current, name)
	}
	if node == nil {
		return p.fail(ErrUnknownSymbol, name)
	}

	if pos == 0 {
		p.oid = p.m.GetOID(node)
		if len(p.oid) > p.maxLen {
			return p.fail(ErrTooLong, strconv.Itoa(p.maxLen))
		}
		p.current = node
		return nil
	}
	return p.push(node.Subid)
}

// quoted appends the octets of a quoted index string.
func (p *oidParser) quoted(part string) error {
	text := part[1 : len(part)-1]
	if part[0] == '"' {
		if err := p.push(uint32(len(text))); err != nil {
			return err
		}
	}
	for i := 0; i < len(text); i++ {
		if err := p.push(uint32(text[i])); err != nil {
			return err
		}
	}
	return nil
}

func (p *oidParser) push(arc uint32) error {
	if len(p.oid) >= p.maxLen {
		return p.fail(ErrTooLong, strconv.Itoa(p.maxLen))
	}
	if len(p.oid) == 0 {
		p.current = p.m.child(p.m.roots, arc)
	} else if p.current != nil {
		p.current = p.m.child(p.current.Children, arc)
	}
	p.oid = append(p.oid, arc)
	return nil
}

// splitComponents splits on dots outside quotes. A quote must open a
// component and its closing quote must end it.
func splitComponents(s string) ([]string, bool) {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\'':
			if i != start {
				return nil, false
			}
			end := strings.IndexByte(s[i+1:], s[i])
			if end < 0 {
				return nil, false
			}
			i += end + 1
			if i+1 < len(s) && s[i+1] != '.' {
				return nil, false
			}
		case '.':
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:]), true
}

// isLabel reports whether s is a MIB descriptor: a letter followed by
// letters, digits, hyphens or underscores.
func isLabel(s string) bool {
	if s == "" || !isLetter(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !isLetter(c) && !(c >= '0' && c <= '9') && c != '-' && c != '_' {
			return false
		}
	}
	return true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
