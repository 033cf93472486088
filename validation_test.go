package mibresolver

import (
	"bufio"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smidumpEntry is one line of `smidump -f identifiers` output.
type smidumpEntry struct {
	Module string
	Name   string
	Kind   string
	OID    string // empty for types
}

var smidumpLine = regexp.MustCompile(`^(\S+)\s+(\S+)\s+(node|scalar|table|row|column|type|notification|group|compliance)\s+(\S*)`)

func parseSmidumpIdentifiers(output string) []smidumpEntry {
	var entries []smidumpEntry
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		if m := smidumpLine.FindStringSubmatch(line); m != nil {
			entries = append(entries, smidumpEntry{Module: m[1], Name: m[2], Kind: m[3], OID: m[4]})
		}
	}
	return entries
}

// runSmidump returns the identifiers of a MIB file. smidump exits non-zero
// on warnings while still printing everything it parsed.
func runSmidump(mibPath string) (string, error) {
	cmd := exec.Command("smidump", "-l", "0", "-f", "identifiers", mibPath)
	cmd.Env = append(os.Environ(), "SMIPATH="+testMIBDir)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return "", err
	}
	return string(out), nil
}

func smidumpKind(kind NodeKind) string {
	switch kind {
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
	case NodeKindCompliance, NodeKindCapabilities:
		return "compliance"
	default:
		return "node"
	}
}

func TestParseSmidumpIdentifiers(t *testing.T) {
	out := "# IF-MIB list of identifiers\n" +
		"IF-MIB ifMIB node 1.3.6.1.2.1.31\n" +
		"IF-MIB InterfaceIndex type \n" +
		"IF-MIB ifMtu column 1.3.6.1.2.1.2.2.1.4\n" +
		"garbage\n"

	assert.Equal(t, []smidumpEntry{
		{Module: "IF-MIB", Name: "ifMIB", Kind: "node", OID: "1.3.6.1.2.1.31"},
		{Module: "IF-MIB", Name: "InterfaceIndex", Kind: "type"},
		{Module: "IF-MIB", Name: "ifMtu", Kind: "column", OID: "1.3.6.1.2.1.2.2.1.4"},
	}, parseSmidumpIdentifiers(out))
}

// TestValidationAgainstSmidump cross-checks the compiled corpus against
// libsmi's own view of the same files, when smidump is installed.
func TestValidationAgainstSmidump(t *testing.T) {
	if _, err := exec.LookPath("smidump"); err != nil {
		t.Skip("smidump not found, skipping validation test")
	}
	model := loadTestCorpus(t)

	for _, mibName := range []string{"SNMPv2-MIB", "IF-MIB"} {
		t.Run(mibName, func(t *testing.T) {
			output, err := runSmidump(filepath.Join(testMIBDir, mibName))
			require.NoError(t, err)
			entries := parseSmidumpIdentifiers(output)
			require.NotEmpty(t, entries)

			for _, entry := range entries {
				if entry.OID == "" {
					continue
				}
				node := model.GetNodeByOID(entry.OID)
				if !assert.NotNil(t, node, "%s::%s at %s", entry.Module, entry.Name, entry.OID) {
					continue
				}
				if kind := smidumpKind(node.Kind); kind != entry.Kind {
					assert.True(t, entry.Kind == "node" && kind == "scalar",
						"%s::%s kind: smidump=%s ours=%s", entry.Module, entry.Name, entry.Kind, kind)
				}

				named := false
				for _, n := range model.GetNodesByName(entry.Name) {
					named = named || n.ID == node.ID
				}
				assert.True(t, named, "%s does not resolve to %s", entry.Name, entry.OID)
			}
		})
	}
}

func TestValidationDisplayHints(t *testing.T) {
	model := loadTestCorpus(t)

	tests := []struct {
		oid  string
		name string
		hint string
	}{
		{"1.3.6.1.2.1.1.1", "sysDescr", "255a"},
		{"1.3.6.1.2.1.2.2.1.6", "ifPhysAddress", "1x:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := model.GetNodeByOID(tt.oid)
			require.NotNil(t, node)
			assert.Equal(t, tt.hint, node.Hint)
		})
	}
}
