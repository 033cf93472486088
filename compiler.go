package mibresolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sleepinggenius2/gosmi"
	"github.com/sleepinggenius2/gosmi/types"
)

// wellKnownModule is the name gosmi gives to the built-in root nodes.
const wellKnownModule = "<well-known>"

// gosmi keeps its module table in process-global state, so at most one
// Compiler may be open at a time.
var gosmiMu sync.Mutex

// ErrCompilerClosed is returned by methods of a closed Compiler.
var ErrCompilerClosed = errors.New("compiler is closed")

// Compiler loads MIB modules with gosmi and snapshots them into a Model.
//
// Compiler is NOT safe for concurrent use, and NewCompiler blocks while
// another Compiler is open. The resulting Model IS safe for concurrent read
// access and does not depend on the Compiler after Resolve returns.
type Compiler struct {
	ctx         context.Context
	logger      *slog.Logger
	loaded      []string
	diagnostics []Diagnostic
	closed      bool
}

// NewCompiler opens the MIB parser. Call Close() when done.
func NewCompiler(ctx context.Context, logger *slog.Logger) (*Compiler, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	gosmiMu.Lock()
	gosmi.Init()

	return &Compiler{ctx: ctx, logger: logger}, nil
}

// Close releases the parser. The Compiler cannot be used afterwards.
func (c *Compiler) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	gosmi.Exit()
	gosmiMu.Unlock()
	return nil
}

// AppendPath adds directories to the module search path. Imports are
// resolved by module name against this path.
func (c *Compiler) AppendPath(dirs ...string) {
	if c.closed {
		return
	}
	for _, dir := range dirs {
		gosmi.AppendPath(dir)
	}
}

// LoadModule loads a module by name (searched in the path) or by file path.
// Failures are also recorded as diagnostics.
func (c *Compiler) LoadModule(name string) error {
	if c.closed {
		return ErrCompilerClosed
	}
	if err := c.ctx.Err(); err != nil {
		return err
	}

	module, err := gosmi.LoadModule(name)
	if err != nil {
		c.diagnostics = append(c.diagnostics, Diagnostic{
			Severity: SeverityError,
			Source:   name,
			Message:  err.Error(),
		})
		return fmt.Errorf("loading %s: %w", name, err)
	}
	c.loaded = append(c.loaded, module)
	c.logger.Debug("loaded MIB module", "module", module, "source", name)
	return nil
}

// Loaded returns the names of the modules loaded so far.
func (c *Compiler) Loaded() []string {
	return append([]string(nil), c.loaded...)
}

// GetDiagnostics returns the problems recorded while loading and resolving.
func (c *Compiler) GetDiagnostics() []Diagnostic {
	return append([]Diagnostic(nil), c.diagnostics...)
}

// Resolve snapshots every loaded module, including the modules pulled in
// through imports, into a new Model.
func (c *Compiler) Resolve() (*Model, error) {
	if c.closed {
		return nil, ErrCompilerClosed
	}
	if err := c.ctx.Err(); err != nil {
		return nil, err
	}

	b := NewBuilder()
	for _, root := range wellKnownRoots {
		if err := b.Define(root); err != nil {
			return nil, err
		}
	}

	for _, mod := range gosmi.GetLoadedModules() {
		name := string(mod.Name)
		if name == wellKnownModule {
			name = ""
		}
		b.AddModule(name)

		for _, node := range mod.GetNodes() {
			def := Definition{
				Module: name,
				Name:   string(node.Name),
				OID:    make(OID, 0, len(node.Oid)),
				Kind:   nodeKindOf(node.Kind),
			}
			for _, arc := range node.Oid {
				def.OID = append(def.OID, uint32(arc))
			}

			if t := node.Type; t != nil {
				def.TypeName = string(t.Name)
				def.Base = baseTypeOf(def.TypeName, t.BaseType)
				def.Hint = string(t.Format)
				def.Units = string(t.Units)
				if t.Enum != nil {
					for _, nn := range t.Enum.Values {
						def.Enums = append(def.Enums, EnumValue{Value: int64(nn.Value), Name: string(nn.Name)})
					}
				}
			}

			if def.Kind == NodeKindRow {
				for _, col := range node.GetIndex() {
					ref := IndexRef{OID: make(OID, 0, len(col.Oid))}
					for _, arc := range col.Oid {
						ref.OID = append(ref.OID, uint32(arc))
					}
					def.Index = append(def.Index, ref)
				}
			}

			if err := b.Define(def); err != nil {
				c.diagnostics = append(c.diagnostics, Diagnostic{
					Severity: SeverityWarning,
					Source:   name,
					Message:  err.Error(),
				})
			}
		}
	}

	model := b.Build()
	c.logger.Debug("resolved MIB model", "modules", model.ModuleCount(), "nodes", model.NodeCount())
	return model, nil
}

// wellKnownRoots are defined up front so label paths such as "iso.3.6.1"
// resolve even when gosmi does not report its built-in module.
var wellKnownRoots = []Definition{
	{Name: "ccitt", OID: OID{0}, Kind: NodeKindNode},
	{Name: "iso", OID: OID{1}, Kind: NodeKindNode},
	{Name: "joint-iso-ccitt", OID: OID{2}, Kind: NodeKindNode},
}

func nodeKindOf(k types.NodeKind) NodeKind {
	switch k {
	case types.NodeScalar:
		return NodeKindScalar
	case types.NodeTable:
		return NodeKindTable
	case types.NodeRow:
		return NodeKindRow
	case types.NodeColumn:
		return NodeKindColumn
	case types.NodeNotification:
		return NodeKindNotification
	case types.NodeGroup:
		return NodeKindGroup
	case types.NodeCompliance:
		return NodeKindCompliance
	case types.NodeCapabilities:
		return NodeKindCapabilities
	default:
		return NodeKindNode
	}
}

// baseTypeOf maps a gosmi type to a BaseType. SMIv2 application types are
// recognised by name since gosmi reports them by their ASN.1 base.
func baseTypeOf(name string, bt types.BaseType) BaseType {
	switch name {
	case "IpAddress":
		return BaseTypeIpAddress
	case "Counter32", "Counter":
		return BaseTypeCounter32
	case "Counter64":
		return BaseTypeCounter64
	case "Gauge32", "Gauge":
		return BaseTypeGauge32
	case "TimeTicks":
		return BaseTypeTimeTicks
	case "Opaque":
		return BaseTypeOpaque
	}

	switch bt {
	case types.BaseTypeInteger32, types.BaseTypeInteger64, types.BaseTypeEnum:
		return BaseTypeInteger32
	case types.BaseTypeUnsigned32, types.BaseTypeUnsigned64:
		return BaseTypeUnsigned32
	case types.BaseTypeOctetString:
		return BaseTypeOctetString
	case types.BaseTypeObjectIdentifier:
		return BaseTypeObjectIdentifier
	case types.BaseTypeBits:
		return BaseTypeBits
	default:
		return BaseTypeUnknown
	}
}
