// Command mibresolve resolves numeric or symbolic OIDs against a set of MIB
// modules.
//
// Usage:
//
//	mibresolve [flags] [OID...]
//
// OIDs are read one per line from stdin when none are given.
//
// Examples:
//
//	mibresolve --mib-dir /usr/share/snmp/mibs 1.3.6.1.2.1.2.2.1.7.1
//	mibresolve --mib-dir ./mibs --module IF-MIB --json IF-MIB::ifOperStatus.3
//	snmpwalk -On host | cut -d' ' -f1 | mibresolve --cache /var/cache/mibs.cbor
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
