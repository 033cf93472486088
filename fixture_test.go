package mibresolver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	oidMib2        = OID{1, 3, 6, 1, 2, 1}
	oidIfEntry     = OID{1, 3, 6, 1, 2, 1, 2, 2, 1}
	oidIfXEntry    = OID{1, 3, 6, 1, 2, 1, 31, 1, 1, 1}
	oidEnterprises = OID{1, 3, 6, 1, 4, 1}
	oidTestTables  = OID{1, 3, 6, 1, 4, 1, 99996, 1}
)

func under(base OID, arcs ...uint32) OID {
	out := append(OID(nil), base...)
	return append(out, arcs...)
}

var ifOperStatusEnums = []EnumValue{
	{1, "up"}, {2, "down"}, {3, "testing"}, {4, "unknown"},
	{5, "dormant"}, {6, "notPresent"}, {7, "lowerLayerDown"},
}

// testDefinitions is a small slice of SNMPv2-MIB and IF-MIB plus a table
// module covering every index encoding.
func testDefinitions() []Definition {
	col := func(module, name string, oid OID, base BaseType, typeName string) Definition {
		return Definition{Module: module, Name: name, OID: oid, Kind: NodeKindColumn, Base: base, TypeName: typeName}
	}
	row := func(module, name string, oid OID, index ...IndexRef) Definition {
		return Definition{Module: module, Name: name, OID: oid, Kind: NodeKindRow, Index: index}
	}
	table := func(module, name string, oid OID) Definition {
		return Definition{Module: module, Name: name, OID: oid, Kind: NodeKindTable}
	}

	defs := []Definition{
		{Module: "SNMPv2-SMI", Name: "org", OID: OID{1, 3}},
		{Module: "SNMPv2-SMI", Name: "dod", OID: OID{1, 3, 6}},
		{Module: "SNMPv2-SMI", Name: "internet", OID: OID{1, 3, 6, 1}},
		{Module: "SNMPv2-SMI", Name: "mgmt", OID: OID{1, 3, 6, 1, 2}},
		{Module: "SNMPv2-SMI", Name: "mib-2", OID: oidMib2},
		{Module: "SNMPv2-SMI", Name: "enterprises", OID: oidEnterprises},

		{Module: "SNMPv2-MIB", Name: "system", OID: under(oidMib2, 1)},
		{Module: "SNMPv2-MIB", Name: "sysDescr", OID: under(oidMib2, 1, 1), Kind: NodeKindScalar,
			Base: BaseTypeOctetString, TypeName: "DisplayString", Hint: "255a"},
		{Module: "SNMPv2-MIB", Name: "sysObjectID", OID: under(oidMib2, 1, 2), Kind: NodeKindScalar,
			Base: BaseTypeObjectIdentifier},
		{Module: "SNMPv2-MIB", Name: "sysUpTime", OID: under(oidMib2, 1, 3), Kind: NodeKindScalar,
			Base: BaseTypeTimeTicks, TypeName: "TimeTicks"},
		// Same object again from the SMIv1 module.
		{Module: "RFC1213-MIB", Name: "sysDescr", OID: under(oidMib2, 1, 1), Kind: NodeKindScalar,
			Base: BaseTypeOctetString, TypeName: "DisplayString"},

		{Module: "IF-MIB", Name: "interfaces", OID: under(oidMib2, 2)},
		{Module: "IF-MIB", Name: "ifNumber", OID: under(oidMib2, 2, 1), Kind: NodeKindScalar, Base: BaseTypeInteger32},
		table("IF-MIB", "ifTable", under(oidMib2, 2, 2)),
		row("IF-MIB", "ifEntry", oidIfEntry, IndexRef{OID: under(oidIfEntry, 1)}),
		col("IF-MIB", "ifIndex", under(oidIfEntry, 1), BaseTypeInteger32, "InterfaceIndex"),
		{Module: "IF-MIB", Name: "ifDescr", OID: under(oidIfEntry, 2), Kind: NodeKindColumn,
			Base: BaseTypeOctetString, TypeName: "DisplayString", Hint: "255a"},
		{Module: "IF-MIB", Name: "ifMtu", OID: under(oidIfEntry, 4), Kind: NodeKindColumn,
			Base: BaseTypeInteger32, Units: "octets"},
		{Module: "IF-MIB", Name: "ifPhysAddress", OID: under(oidIfEntry, 6), Kind: NodeKindColumn,
			Base: BaseTypeOctetString, TypeName: "PhysAddress", Hint: "1x:"},
		{Module: "IF-MIB", Name: "ifAdminStatus", OID: under(oidIfEntry, 7), Kind: NodeKindColumn,
			Base: BaseTypeInteger32, Enums: []EnumValue{{1, "up"}, {2, "down"}, {3, "testing"}}},
		{Module: "IF-MIB", Name: "ifOperStatus", OID: under(oidIfEntry, 8), Kind: NodeKindColumn,
			Base: BaseTypeInteger32, Enums: ifOperStatusEnums},
		col("IF-MIB", "ifInOctets", under(oidIfEntry, 10), BaseTypeCounter32, "Counter32"),
		{Module: "IF-MIB", Name: "ifMIB", OID: under(oidMib2, 31)},
		{Module: "IF-MIB", Name: "ifMIBObjects", OID: under(oidMib2, 31, 1)},
		table("IF-MIB", "ifXTable", under(oidMib2, 31, 1, 1)),
		{Module: "IF-MIB", Name: "ifXEntry", OID: oidIfXEntry, Kind: NodeKindRow, Augments: oidIfEntry},
		{Module: "IF-MIB", Name: "ifName", OID: under(oidIfXEntry, 1), Kind: NodeKindColumn,
			Base: BaseTypeOctetString, TypeName: "DisplayString", Hint: "255a"},

		{Module: "TEST-INDEX-MIB", Name: "testIndexMIB", OID: under(oidEnterprises, 99996)},
		{Module: "TEST-INDEX-MIB", Name: "testIndexObjects", OID: oidTestTables},
	}

	// strTable: variable-length string index
	defs = append(defs,
		table("TEST-INDEX-MIB", "strTable", under(oidTestTables, 2)),
		row("TEST-INDEX-MIB", "strEntry", under(oidTestTables, 2, 1), IndexRef{OID: under(oidTestTables, 2, 1, 1)}),
		col("TEST-INDEX-MIB", "strIndex", under(oidTestTables, 2, 1, 1), BaseTypeOctetString, "DisplayString"),
		col("TEST-INDEX-MIB", "strValue", under(oidTestTables, 2, 1, 2), BaseTypeInteger32, ""),
	)
	// impliedStrTable: IMPLIED string index
	defs = append(defs,
		table("TEST-INDEX-MIB", "impliedStrTable", under(oidTestTables, 3)),
		row("TEST-INDEX-MIB", "impliedStrEntry", under(oidTestTables, 3, 1),
			IndexRef{OID: under(oidTestTables, 3, 1, 1), Implied: true}),
		col("TEST-INDEX-MIB", "impliedStrIndex", under(oidTestTables, 3, 1, 1), BaseTypeOctetString, "DisplayString"),
		col("TEST-INDEX-MIB", "impliedStrValue", under(oidTestTables, 3, 1, 2), BaseTypeInteger32, ""),
	)
	// ipTable: IpAddress index
	defs = append(defs,
		table("TEST-INDEX-MIB", "ipTable", under(oidTestTables, 4)),
		row("TEST-INDEX-MIB", "ipEntry", under(oidTestTables, 4, 1), IndexRef{OID: under(oidTestTables, 4, 1, 1)}),
		col("TEST-INDEX-MIB", "ipIndex", under(oidTestTables, 4, 1, 1), BaseTypeIpAddress, "IpAddress"),
		col("TEST-INDEX-MIB", "ipValue", under(oidTestTables, 4, 1, 2), BaseTypeInteger32, ""),
	)
	// multiTable: integer then string
	defs = append(defs,
		table("TEST-INDEX-MIB", "multiTable", under(oidTestTables, 5)),
		row("TEST-INDEX-MIB", "multiEntry", under(oidTestTables, 5, 1),
			IndexRef{OID: under(oidTestTables, 5, 1, 1)}, IndexRef{OID: under(oidTestTables, 5, 1, 2)}),
		col("TEST-INDEX-MIB", "multiInt", under(oidTestTables, 5, 1, 1), BaseTypeUnsigned32, "Unsigned32"),
		col("TEST-INDEX-MIB", "multiStr", under(oidTestTables, 5, 1, 2), BaseTypeOctetString, "DisplayString"),
		col("TEST-INDEX-MIB", "multiValue", under(oidTestTables, 5, 1, 3), BaseTypeInteger32, ""),
	)
	// fixedTable: fixed-size string index (MacAddress-like)
	fixed := col("TEST-INDEX-MIB", "fixedIndex", under(oidTestTables, 6, 1, 1), BaseTypeOctetString, "MacAddress")
	fixed.FixedSize = 6
	defs = append(defs,
		table("TEST-INDEX-MIB", "fixedTable", under(oidTestTables, 6)),
		row("TEST-INDEX-MIB", "fixedEntry", under(oidTestTables, 6, 1), IndexRef{OID: under(oidTestTables, 6, 1, 1)}),
		fixed,
		col("TEST-INDEX-MIB", "fixedValue", under(oidTestTables, 6, 1, 2), BaseTypeInteger32, ""),
	)
	// oidTable: OBJECT IDENTIFIER index
	defs = append(defs,
		table("TEST-INDEX-MIB", "oidTable", under(oidTestTables, 7)),
		row("TEST-INDEX-MIB", "oidEntry", under(oidTestTables, 7, 1), IndexRef{OID: under(oidTestTables, 7, 1, 1)}),
		col("TEST-INDEX-MIB", "oidIndex", under(oidTestTables, 7, 1, 1), BaseTypeObjectIdentifier, ""),
		col("TEST-INDEX-MIB", "oidValue", under(oidTestTables, 7, 1, 2), BaseTypeInteger32, ""),
	)
	// testBits: BITS scalar
	defs = append(defs, Definition{
		Module: "TEST-INDEX-MIB", Name: "testBits", OID: under(oidEnterprises, 99996, 2),
		Kind: NodeKindScalar, Base: BaseTypeBits,
		Enums: []EnumValue{{0, "alpha"}, {1, "beta"}, {9, "juliet"}},
	})
	return defs
}

func newTestModel(t testing.TB) *Model {
	t.Helper()

	b := NewBuilder()
	for _, root := range wellKnownRoots {
		require.NoError(t, b.Define(root))
	}
	for _, def := range testDefinitions() {
		require.NoError(t, b.Define(def), def.Name)
	}
	b.SetFingerprint("test")
	return b.Build()
}

func mustNode(t testing.TB, m *Model, module, name string) *Node {
	t.Helper()
	n := m.GetNodeByQualifiedName(module, name)
	require.NotNil(t, n, "%s::%s", module, name)
	return n
}
