package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhtech/snmpexporter/mibresolver"
	"github.com/dhtech/snmpexporter/mibresolver/internal/logger"
)

type options struct {
	configFile      string
	mibDirs         []string
	modules         []string
	cacheFile       string
	symbolicIndexes bool
	json            bool
	logLevel        string
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "mibresolve [flags] [OID...]",
		Short: "Resolve OIDs to canonical form, symbolic name and enum labels.",
		Long: `mibresolve loads MIB modules and resolves each OID given on the command
line, or read line by line from stdin, to its canonical numeric form, its
symbolic name and the enum labels of its object.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				fmt.Fprintln(stderr, err)
				return err
			}

			if !logger.Level.SetByName(opts.logLevel) {
				err := fmt.Errorf("unknown log level %q", opts.logLevel)
				fmt.Fprintln(stderr, err)
				return err
			}
			log := logger.New(stderr)

			db, err := mibresolver.Open(cmd.Context(), cfg, log)
			if err != nil {
				log.Error("initialization failed", "err", err)
				return err
			}

			inputs := args
			if len(inputs) == 0 {
				if inputs, err = readInputs(stdin); err != nil {
					log.Error("reading stdin", "err", err)
					return err
				}
			}

			return writeLookups(stdout, db.ResolveAll(inputs), opts.json)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "YAML configuration file")
	flags.StringArrayVarP(&opts.mibDirs, "mib-dir", "M", nil, "MIB search directory (repeatable)")
	flags.StringArrayVarP(&opts.modules, "module", "m", nil, "module to load, default all files in the MIB directories (repeatable)")
	flags.StringVar(&opts.cacheFile, "cache", "", "model snapshot file reused while the MIBs are unchanged")
	flags.BoolVar(&opts.symbolicIndexes, "symbolic-indexes", false, "break table instance suffixes down by INDEX")
	flags.BoolVar(&opts.json, "json", false, "write one JSON object per input")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")

	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd
}

// config merges the config file with the flags that were set explicitly.
func (o *options) config(cmd *cobra.Command) (mibresolver.Config, error) {
	cfg := mibresolver.DefaultConfig()
	if o.configFile != "" {
		var err error
		if cfg, err = mibresolver.LoadConfig(o.configFile); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("mib-dir") {
		cfg.MIBDirs = o.mibDirs
	}
	if flags.Changed("module") {
		cfg.Modules = o.modules
	}
	if flags.Changed("cache") {
		cfg.CacheFile = o.cacheFile
	}
	if flags.Changed("symbolic-indexes") {
		cfg.NumericIndexes = !o.symbolicIndexes
	}
	return cfg, cfg.Validate()
}

func readInputs(r io.Reader) ([]string, error) {
	var inputs []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			inputs = append(inputs, line)
		}
	}
	return inputs, sc.Err()
}

type jsonLookup struct {
	Input string            `json:"input"`
	Found bool              `json:"found"`
	OID   string            `json:"oid,omitempty"`
	Name  string            `json:"name,omitempty"`
	Enums map[string]string `json:"enums,omitempty"`
}

func writeLookups(w io.Writer, lookups []mibresolver.Lookup, asJSON bool) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	for _, l := range lookups {
		if asJSON {
			out := jsonLookup{Input: l.Input, Found: l.Found}
			if l.Found {
				out.OID = l.Result.Canonical
				out.Name = l.Result.Name
				out.Enums = l.Result.Enums.StringKeys()
			}
			if err := enc.Encode(out); err != nil {
				return err
			}
			continue
		}

		if !l.Found {
			fmt.Fprintf(bw, "%s: not found\n", l.Input)
			continue
		}
		fmt.Fprintf(bw, "%s = %s", l.Result.Canonical, l.Result.Name)
		if len(l.Result.Enums) > 0 {
			fmt.Fprintf(bw, " %s", formatEnums(l.Result.Enums))
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// formatEnums renders {1:up, 2:down} in value order.
func formatEnums(e mibresolver.EnumMap) string {
	keys := make([]int64, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d:%s", k, e[k])
	}
	b.WriteByte('}')
	return b.String()
}
