package main

import (
	"flag"
	"fmt"
	"log"
	"sort"

	"github.com/biancanev/SemiconductorDesign/pkg/netlist"
	"github.com/biancanev/SemiconductorDesign/pkg/util"
)

var (
	csvOut  = flag.String("o", "transient_results.csv", "CSV output path for transient results")
	plotOut = flag.String("plot", "", "optional waveform image output path")
)

// nodeLabels returns the non-ground node names ordered by node id.
func nodeLabels(names map[string]int) []string {
	type entry struct {
		name string
		id   int
	}
	var entries []entry
	for name, id := range names {
		if id > 0 {
			entries = append(entries, entry{name, id})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.name
	}
	return labels
}

func printOperatingPoint(p *netlist.Parser) {
	op := p.OP

	fmt.Println("\nNode Voltages:")
	for _, name := range nodeLabels(p.NodeNames()) {
		id := p.NodeNames()[name]
		fmt.Printf("V(%s) = %s\n", name, util.FormatValueFactor(op.NodeVoltage(id), "V"))
	}

	fmt.Println("\nBranch Currents:")
	for _, name := range op.SourceNames() {
		fmt.Printf("I(%s) = %s\n", name, util.FormatValueFactor(op.SourceCurrent(name), "A"))
	}
}

func printTransient(p *netlist.Parser) {
	tr := p.Tran
	points := tr.Points()
	fmt.Printf("\nTransient Analysis Results (%d time points):\n", len(points))

	fmt.Printf("%12s", "Time")
	for k := 1; k < tr.NumNodes(); k++ {
		fmt.Printf("%12s", fmt.Sprintf("Node%d", k))
	}
	fmt.Println()

	// First and last few rows; the CSV carries the full log.
	show := 5
	if len(points) <= 2*show {
		show = len(points)
	}
	printRow := func(i int) {
		fmt.Printf("%12.3e", points[i].Time)
		for k := 1; k < tr.NumNodes(); k++ {
			fmt.Printf("%12.6f", points[i].NodeVoltages[k])
		}
		fmt.Println()
	}
	for i := 0; i < show; i++ {
		printRow(i)
	}
	if len(points) > 2*show {
		fmt.Println("...")
		for i := len(points) - show; i < len(points); i++ {
			printRow(i)
		}
	}

	if err := tr.ExportCSV(*csvOut); err != nil {
		log.Printf("%v", err)
	} else {
		fmt.Printf("\nResults exported to %s\n", *csvOut)
	}

	if *plotOut != "" {
		if err := tr.SavePlot(*plotOut); err != nil {
			log.Printf("%v", err)
		} else {
			fmt.Printf("Waveforms written to %s\n", *plotOut)
		}
	}
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("Usage: spicesim [flags] <netlist_file>")
	}

	parser := netlist.NewParser()
	if err := parser.ParseFile(flag.Arg(0)); err != nil {
		log.Fatalf("Error reading netlist: %v", err)
	}

	fmt.Printf("Parsed %d components with %d unique nodes.\n",
		len(parser.Elements()), parser.NumNodes())

	if parser.OP != nil {
		printOperatingPoint(parser)
	}
	if parser.Tran != nil {
		printTransient(parser)
	}
	if parser.OP == nil && parser.Tran == nil {
		fmt.Println("No analysis requested (.op or .tran directive required)")
	}
}
