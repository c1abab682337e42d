package meta

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Write writes h in the layout the model itself uses for .meta files.
func Write(w io.Writer, h *Header) error {
	if len(h.DimList) != h.NDims {
		return fmt.Errorf("header has %d dims but nDims = %d", len(h.DimList), h.NDims)
	}
	if h.FieldList != nil && len(h.FieldList) != h.NRecords {
		return fmt.Errorf("header has %d field names for %d records", len(h.FieldList), h.NRecords)
	}

	bw := bufio.NewWriter(w)
	if h.Simulation != "" {
		fmt.Fprintf(bw, " simulation = { '%s' };\n", h.Simulation)
	}
	fmt.Fprintf(bw, " nDims = [ %3d ];\n", h.NDims)
	fmt.Fprintf(bw, " dimList = [\n")
	for i, d := range h.DimList {
		sep := ","
		if i == len(h.DimList)-1 {
			sep = ""
		}
		fmt.Fprintf(bw, " %5d, %5d, %5d%s\n", d.Global, d.Start, d.End, sep)
	}
	fmt.Fprintf(bw, " ];\n")
	fmt.Fprintf(bw, " dataprec = [ '%s' ];\n", h.DataPrec)
	fmt.Fprintf(bw, " nrecords = [ %5d ];\n", h.NRecords)
	if h.TimeStepNumber != nil {
		fmt.Fprintf(bw, " timeStepNumber = [ %10d ];\n", *h.TimeStepNumber)
	}
	if h.TimeInterval != nil {
		fmt.Fprintf(bw, " timeInterval = [ %s ];\n", formatFloats(h.TimeInterval))
	}
	if h.MissingValue != nil {
		fmt.Fprintf(bw, " missingValue = [ %s ];\n", formatFloats([]float64{*h.MissingValue}))
	}
	if h.FieldList != nil {
		fmt.Fprintf(bw, " fldList = {\n")
		for _, name := range h.FieldList {
			fmt.Fprintf(bw, " '%-8s'", name)
		}
		fmt.Fprintf(bw, "\n };\n")
	}

	names := make([]string, 0, len(h.Extra))
	for name := range h.Extra {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(bw, " %s = %s;\n", name, h.Extra[name])
	}

	return bw.Flush()
}

// WriteFile writes h to path.
func WriteFile(path string, h *Header) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, h); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloats(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'E', -1, 64)
	}
	return strings.Join(parts, " ")
}
