// Command mdsinfo inspects MDS run directories and their metadata files.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/robert-malhotra/go-mds/internal/diagnostics"
	"github.com/robert-malhotra/go-mds/internal/meta"
	"github.com/robert-malhotra/go-mds/mds"
)

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

type rootFlags struct {
	verbose bool
	logger  *zap.Logger
}

func newRootCommand(out io.Writer) *cobra.Command {
	rf := &rootFlags{}
	root := &cobra.Command{
		Use:          "mdsinfo",
		Short:        "mdsinfo - inspect MITgcm MDS output",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			cfg.Encoding = "console"
			cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
			if rf.verbose {
				cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
			}
			logger, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("building logger: %w", err)
			}
			rf.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rf.logger != nil {
				_ = rf.logger.Sync()
			}
		},
	}
	root.SetOut(out)
	root.PersistentFlags().BoolVarP(&rf.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newMetaCommand(),
		newDiagnosticsCommand(),
		newOpenCommand(rf),
	)
	return root
}

func newMetaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "meta <file.meta>...",
		Short: "print parsed metadata headers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, path := range args {
				if !strings.HasSuffix(path, meta.Ext) {
					path += meta.Ext
				}
				h, err := meta.ParseFile(path)
				if err != nil {
					return err
				}
				printHeader(w, path, h)
			}
			return nil
		},
	}
}

func printHeader(w io.Writer, path string, h *meta.Header) {
	fmt.Fprintf(w, "=== %s ===\n", path)
	fmt.Fprintf(w, "  Base name:  %s\n", h.BaseName)
	if h.Simulation != "" {
		fmt.Fprintf(w, "  Simulation: %s\n", h.Simulation)
	}
	fmt.Fprintf(w, "  Type:       %s\n", h.DataPrec)
	fmt.Fprintf(w, "  Shape:      %v\n", h.Shape())
	fmt.Fprintf(w, "  Records:    %d\n", h.NRecords)
	fmt.Fprintf(w, "  Data size:  %d bytes\n", h.DataSize())
	if h.TimeStepNumber != nil {
		fmt.Fprintf(w, "  Iteration:  %d\n", *h.TimeStepNumber)
	}
	if len(h.FieldList) > 0 {
		fmt.Fprintf(w, "  Fields:     %s\n", strings.Join(h.FieldList, " "))
	}
	if h.MissingValue != nil {
		fmt.Fprintf(w, "  Missing:    %g\n", *h.MissingValue)
	}
	for _, k := range sortedKeys(h.Extra) {
		fmt.Fprintf(w, "  %s = %s\n", k, h.Extra[k])
	}
}

func newDiagnosticsCommand() *cobra.Command {
	var layers map[string]int
	cmd := &cobra.Command{
		Use:   "diagnostics <available_diagnostics.log>",
		Short: "list the diagnostics catalogue with resolved dimensions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := diagnostics.ParseFile(args[0], layers)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, name := range sortedKeys(cat) {
				s := cat[name]
				fmt.Fprintf(w, "%4d %-8s %3d %-10s %-28s %s\n",
					s.ID, s.Name, s.Levels, s.Code, "("+strings.Join(s.Dims, ",")+")",
					s.Attrs[diagnostics.AttrUnits])
			}
			return nil
		},
	}
	cmd.Flags().StringToIntVar(&layers, "layer", nil, "layers coordinate and its number of bounds, e.g. 1RHO=31")
	return cmd
}

type openFlags struct {
	config   string
	iters    string
	prefixes []string
	grid     bool
	swapDims bool
	endian   string
	mmap     bool
	refDate  string
	deltaT   float64
	layers   map[string]int
	stats    bool
}

func newOpenCommand(rf *rootFlags) *cobra.Command {
	of := &openFlags{}
	cmd := &cobra.Command{
		Use:   "open <run-dir>",
		Short: "assemble a run directory and list its dimensions and variables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := of.options(cmd)
			if err != nil {
				return err
			}
			opts = append(opts, mds.WithLogger(rf.logger))

			ds, err := mds.Open(args[0], opts...)
			if err != nil {
				return err
			}
			defer ds.Close()
			return printDataset(cmd.OutOrStdout(), ds, of.stats)
		},
	}
	f := cmd.Flags()
	f.StringVar(&of.config, "config", "", "YAML file of open options; flags override it")
	f.StringVar(&of.iters, "iters", "all", `iterations: "all", "none" or a comma-separated list`)
	f.StringSliceVar(&of.prefixes, "prefix", nil, "file prefixes to read (default: inferred)")
	f.BoolVar(&of.grid, "grid", true, "read the grid files")
	f.BoolVar(&of.swapDims, "swap-dims", false, "relabel index dimensions with coordinate names")
	f.StringVar(&of.endian, "endian", "big", "byte order of the data files: big or little")
	f.BoolVar(&of.mmap, "mmap", true, "memory map data files")
	f.StringVar(&of.refDate, "ref-date", "", `reference date of iteration 0, e.g. "1990-1-1 0:0:0"`)
	f.Float64Var(&of.deltaT, "delta-t", 0, "model time step in seconds")
	f.StringToIntVar(&of.layers, "layer", nil, "layers coordinate and its number of bounds, e.g. 1RHO=31")
	f.BoolVar(&of.stats, "stats", true, "print min, max and mean of each variable")
	return cmd
}

// options builds the Open options from the config file, then from every
// flag given on the command line.
func (of *openFlags) options(cmd *cobra.Command) ([]mds.Option, error) {
	c := &mds.Config{}
	if of.config != "" {
		var err error
		if c, err = mds.LoadConfig(of.config); err != nil {
			return nil, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("iters") {
		spec, err := mds.ParseIterSpec(of.iters)
		if err != nil {
			return nil, err
		}
		c.Iters = spec
	}
	if changed("prefix") {
		c.Prefixes = of.prefixes
	}
	if changed("grid") {
		c.ReadGrid = &of.grid
	}
	if changed("swap-dims") {
		c.SwapDims = of.swapDims
	}
	if changed("endian") {
		c.Endian = of.endian
	}
	if changed("mmap") {
		c.Mmap = &of.mmap
	}
	if changed("ref-date") {
		c.RefDate = of.refDate
	}
	if changed("delta-t") {
		c.DeltaT = of.deltaT
	}
	if changed("layer") {
		c.Layers = of.layers
	}
	return c.Options()
}

func printDataset(w io.Writer, ds *mds.Dataset, stats bool) error {
	fmt.Fprintf(w, "=== %s ===\n\n", filepath.Clean(ds.Dir()))

	fmt.Fprintln(w, "Dimensions:")
	dims := ds.Dims()
	for _, name := range ds.DimNames() {
		fmt.Fprintf(w, "  %-24s %d\n", name, dims[name])
	}

	if iters := ds.Iterations(); len(iters) > 0 {
		fmt.Fprintf(w, "\nIterations: %v\n", iters)
		if times := ds.Times(); times != nil {
			fmt.Fprintf(w, "Times:      %s .. %s\n",
				times[0].Format(time.DateTime), times[len(times)-1].Format(time.DateTime))
		}
	}

	section := ""
	return mds.Walk(ds, func(v *mds.Variable, coord bool) error {
		title := "Data variables:"
		if coord {
			title = "Coordinates:"
		}
		if title != section {
			section = title
			fmt.Fprintf(w, "\n%s\n", title)
		}

		fmt.Fprintf(w, "  %-24s %-8s (%s) %v %s", v.Name(), v.Kind(), strings.Join(v.Dims(), ", "), v.Shape(), v.Type())
		if units, ok := v.Attr(mds.AttrUnits); ok && units != "" {
			fmt.Fprintf(w, " [%s]", units)
		}
		fmt.Fprintln(w)
		if !stats {
			return nil
		}
		values, err := v.ReadFloat64()
		if err != nil {
			return err
		}
		if len(values) == 0 {
			return nil
		}
		fmt.Fprintf(w, "  %24s min=%g max=%g mean=%g\n", "",
			floats.Min(values), floats.Max(values), stat.Mean(values, nil))
		return nil
	})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
