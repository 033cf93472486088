package mibresolver

// NodeKind represents the semantic type of an OID node.
type NodeKind uint8

const (
	NodeKindInternal     NodeKind = 0 // Path node without definition
	NodeKindNode         NodeKind = 1 // OBJECT-IDENTITY, MODULE-IDENTITY, value assignment
	NodeKindScalar       NodeKind = 2 // OBJECT-TYPE not in table context
	NodeKindTable        NodeKind = 3 // SYNTAX SEQUENCE OF
	NodeKindRow          NodeKind = 4 // Has INDEX or AUGMENTS
	NodeKindColumn       NodeKind = 5 // Parent is Row
	NodeKindNotification NodeKind = 6 // NOTIFICATION-TYPE, TRAP-TYPE
	NodeKindGroup        NodeKind = 7 // OBJECT-GROUP, NOTIFICATION-GROUP
	NodeKindCompliance   NodeKind = 8 // MODULE-COMPLIANCE
	NodeKindCapabilities NodeKind = 9 // AGENT-CAPABILITIES
)

func (k NodeKind) String() string {
	switch k {
	case NodeKindInternal:
		return "internal"
	case NodeKindNode:
		return "node"
	case NodeKindScalar:
		return "scalar"
	case NodeKindTable:
		return "table"
	case NodeKindRow:
		return "row"
	case NodeKindColumn:
		return "column"
	case NodeKindNotification:
		return "notification"
	case NodeKindGroup:
		return "group"
	case NodeKindCompliance:
		return "compliance"
	case NodeKindCapabilities:
		return "capabilities"
	default:
		return "unknown"
	}
}

// IsObjectType returns true if this is an OBJECT-TYPE (scalar, table, row, or column).
func (k NodeKind) IsObjectType() bool {
	return k == NodeKindScalar || k == NodeKindTable || k == NodeKindRow || k == NodeKindColumn
}

// BaseType represents the underlying SNMP type of an object's syntax.
type BaseType uint8

const (
	BaseTypeUnknown          BaseType = 0  // Unknown/unresolved
	BaseTypeInteger32        BaseType = 1  // INTEGER, Integer32, enumerations
	BaseTypeUnsigned32       BaseType = 2  // Unsigned32
	BaseTypeCounter32        BaseType = 3  // Counter32
	BaseTypeCounter64        BaseType = 4  // Counter64
	BaseTypeGauge32          BaseType = 5  // Gauge32
	BaseTypeTimeTicks        BaseType = 6  // TimeTicks
	BaseTypeIpAddress        BaseType = 7  // IpAddress
	BaseTypeOctetString      BaseType = 8  // OCTET STRING
	BaseTypeObjectIdentifier BaseType = 9  // OBJECT IDENTIFIER
	BaseTypeOpaque           BaseType = 10 // Opaque
	BaseTypeBits             BaseType = 11 // BITS
)

var baseTypeNames = [...]string{
	"unknown", "INTEGER", "Unsigned32", "Counter32", "Counter64",
	"Gauge32", "TimeTicks", "IpAddress", "OCTET STRING",
	"OBJECT IDENTIFIER", "Opaque", "BITS",
}

func (b BaseType) String() string {
	if int(b) < len(baseTypeNames) {
		return baseTypeNames[b]
	}
	return "unknown"
}

// IsInteger returns true if this is an integer-based type.
func (b BaseType) IsInteger() bool {
	switch b {
	case BaseTypeInteger32, BaseTypeUnsigned32, BaseTypeCounter32,
		BaseTypeCounter64, BaseTypeGauge32, BaseTypeTimeTicks:
		return true
	}
	return false
}
