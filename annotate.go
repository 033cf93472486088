package mibresolver

import (
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/gosnmp/gosnmp"
)

// Annotation labels one SNMP variable with its MIB object.
type Annotation struct {
	OID    string // Canonical numeric OID
	MIB    string // "IF-MIB"
	Object string // "ifOperStatus"
	Index  string // "3", empty for the object itself
	Type   gosnmp.Asn1BER
	Value  string
	Labels map[string]string
}

// Annotator turns gosnmp variables into annotations. Safe for concurrent
// use once constructed.
type Annotator struct {
	resolver Resolver
	model    *Model
	logger   *slog.Logger
	// labelify holds canonical object OIDs, each with a trailing dot.
	labelify []string
}

// AnnotatorOption configures an Annotator.
type AnnotatorOption func(*Annotator)

// WithModel formats values by the syntax of their MIB object.
func WithModel(m *Model) AnnotatorOption {
	return func(a *Annotator) { a.model = m }
}

// WithLogger sets the logger. The default is slog.Default.
func WithLogger(l *slog.Logger) AnnotatorOption {
	return func(a *Annotator) { a.logger = l }
}

// WithLabelify moves string values of the named objects into the "value"
// and "hex" labels. Objects are given in any form Resolve accepts.
func WithLabelify(objects ...string) AnnotatorOption {
	return func(a *Annotator) {
		for _, obj := range objects {
			res, ok := a.resolver.Resolve(obj)
			if !ok {
				a.logger.Warn("cannot resolve labelify object, ignoring", "object", obj)
				continue
			}
			a.labelify = append(a.labelify, res.Canonical+".")
		}
	}
}

// NewAnnotator returns an Annotator resolving through r. A *Database
// resolver also supplies the model for value formatting.
func NewAnnotator(r Resolver, opts ...AnnotatorOption) *Annotator {
	a := &Annotator{resolver: r, logger: slog.Default()}
	if db, ok := r.(*Database); ok {
		a.model = db.Model()
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// labelTypes are the value types eligible for labelification.
var labelTypes = map[gosnmp.Asn1BER]bool{
	gosnmp.OctetString: true,
	gosnmp.IPAddress:   true,
}

// Annotate labels a single variable. ok is false when the variable is
// skipped: its OID does not resolve, resolves without a MIB module, or is
// an empty value of a labelified object.
func (a *Annotator) Annotate(pdu gosnmp.SnmpPDU) (Annotation, bool) {
	res, ok := a.resolver.Resolve(pdu.Name)
	if !ok {
		a.logger.Warn("failed to look up OID, ignoring", "oid", pdu.Name)
		return Annotation{}, false
	}

	mib, part, found := strings.Cut(res.Name, "::")
	if !found {
		a.logger.Warn("OID resolved without a MIB, ignoring", "oid", pdu.Name, "name", res.Name)
		return Annotation{}, false
	}
	obj, index, _ := strings.Cut(part, ".")

	ann := Annotation{
		OID:    res.Canonical,
		MIB:    mib,
		Object: obj,
		Index:  index,
		Type:   pdu.Type,
		Value:  a.formatValue(res, pdu),
		Labels: map[string]string{},
	}

	if a.labelified(res.Canonical) {
		raw := valueBytes(pdu.Value)
		if len(raw) == 0 || !labelTypes[pdu.Type] {
			return Annotation{}, false
		}
		ann.Labels["value"] = labelValue(string(raw))
		ann.Labels["hex"] = hex.EncodeToString(raw)
		ann.Value = "NaN"
	}

	if len(res.Enums) > 0 && pdu.Type == gosnmp.Integer {
		v := gosnmp.ToBigInt(pdu.Value)
		label, ok := "", false
		if v.IsInt64() {
			label, ok = res.Enums.Label(v.Int64())
		}
		if ok {
			ann.Labels["enum"] = label
		} else {
			a.logger.Warn("got invalid enum value, not labeling", "oid", res.Canonical, "value", v.String())
		}
	}
	return ann, true
}

// AnnotateAll labels pdus, dropping the skipped ones.
func (a *Annotator) AnnotateAll(pdus []gosnmp.SnmpPDU) []Annotation {
	out := make([]Annotation, 0, len(pdus))
	for _, pdu := range pdus {
		if ann, ok := a.Annotate(pdu); ok {
			out = append(out, ann)
		}
	}
	a.logger.Debug("annotation completed", "variables", len(pdus), "annotated", len(out))
	return out
}

func (a *Annotator) labelified(canonical string) bool {
	for _, prefix := range a.labelify {
		if strings.HasPrefix(canonical, prefix) {
			return true
		}
	}
	return false
}

func (a *Annotator) formatValue(res Result, pdu gosnmp.SnmpPDU) string {
	var node *Node
	if a.model != nil {
		node = a.model.Lookup(res.OID)
	}
	switch pdu.Type {
	case gosnmp.Null, gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView:
		return ""
	case gosnmp.IPAddress:
		// gosnmp decodes addresses to dotted text already.
		return string(valueBytes(pdu.Value))
	}
	return FormatValue(a.model, node, pdu.Value)
}

func valueBytes(v any) []byte {
	switch v := v.(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	}
	return nil
}

// labelValue keeps the printable ASCII of s, trimmed.
func labelValue(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 0x20 && c <= 0x7e {
			b.WriteByte(c)
		}
	}
	return strings.TrimSpace(b.String())
}
