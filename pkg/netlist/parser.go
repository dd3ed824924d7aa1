package netlist

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/biancanev/SemiconductorDesign/pkg/analysis"
	"github.com/biancanev/SemiconductorDesign/pkg/device"
	"github.com/biancanev/SemiconductorDesign/pkg/util"
)

// ErrUnsupported marks a directive the parser recognizes but the engine
// does not execute (.ac, .dc sweeps).
var ErrUnsupported = errors.New("unsupported directive")

// Parser accumulates devices and a case-insensitive node-name table,
// then runs the analyses its directives request. Malformed lines are
// reported to the diagnostics log and parsing continues.
type Parser struct {
	nodeMap  map[string]int
	numNodes int
	elements []device.Device

	Diagnostics []string

	// Results of the most recent analysis runs, if any.
	OP   *analysis.OperatingPoint
	Tran *analysis.Transient
}

func NewParser() *Parser {
	return &Parser{
		nodeMap: map[string]int{
			"0":      0,
			"gnd":    0,
			"ground": 0,
		},
		numNodes: 1,
	}
}

func (p *Parser) Elements() []device.Device { return p.elements }

func (p *Parser) NumNodes() int { return p.numNodes }

// NodeNames returns the name-to-id table (ground aliases included).
func (p *Parser) NodeNames() map[string]int { return p.nodeMap }

func (p *Parser) diag(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	p.Diagnostics = append(p.Diagnostics, msg)
	log.Print(msg)
}

// ParseFile loads a netlist and runs any analyses it requests.
func (p *Parser) ParseFile(path string) error {
	lines, err := LoadFile(path)
	if err != nil {
		return err
	}
	p.ParseLines(lines)
	return nil
}

func (p *Parser) ParseLines(lines []string) {
	for _, line := range lines {
		tokens := TokenizeLine(line)
		if len(tokens) == 0 {
			continue
		}
		if tokens[0][0] == '.' {
			if done := p.parseDirective(tokens); done {
				return
			}
			continue
		}
		p.parseComponent(tokens)
	}
}

// nodeNumber resolves a node name, allocating the next sequential id
// for fresh names. Matching is case-insensitive.
func (p *Parser) nodeNumber(name string) int {
	key := strings.ToLower(name)
	if id, ok := p.nodeMap[key]; ok {
		return id
	}
	id := p.numNodes
	p.nodeMap[key] = id
	p.numNodes++
	return id
}

func (p *Parser) parseComponent(tokens []string) {
	name := tokens[0]
	switch byte(strings.ToLower(name)[0]) {
	case 'r':
		p.parseTwoTerminal(tokens, func(v float64) device.Device { return device.NewResistor(name, v) })
	case 'c':
		p.parseTwoTerminal(tokens, func(v float64) device.Device { return device.NewCapacitor(name, v) })
	case 'l':
		p.parseTwoTerminal(tokens, func(v float64) device.Device { return device.NewInductor(name, v) })
	case 'i':
		p.parseTwoTerminal(tokens, func(v float64) device.Device { return device.NewCurrentSource(name, v) })
	case 'v':
		p.parseVoltageSource(tokens)
	case 'd':
		p.parseDiode(tokens)
	case 'm':
		p.parseMOSFET(tokens)
	default:
		p.diag("unknown component type %q in %s", name[:1], name)
	}
}

func (p *Parser) parseTwoTerminal(tokens []string, build func(v float64) device.Device) {
	if len(tokens) < 4 {
		p.diag("%s: too few fields", tokens[0])
		return
	}
	n1 := p.nodeNumber(tokens[1])
	n2 := p.nodeNumber(tokens[2])
	value, err := util.ParseValue(tokens[3])
	if err != nil {
		p.diag("%s: %v", tokens[0], err)
		return
	}

	dev := build(value)
	dev.SetNodeForPin(0, n1)
	dev.SetNodeForPin(1, n2)
	p.elements = append(p.elements, dev)
}

func (p *Parser) parseVoltageSource(tokens []string) {
	if len(tokens) < 4 {
		p.diag("%s: too few fields", tokens[0])
		return
	}
	n1 := p.nodeNumber(tokens[1])
	n2 := p.nodeNumber(tokens[2])

	// Both "V1 1 0 5" and "V1 1 0 DC 5" are accepted.
	valueTok := tokens[3]
	if strings.EqualFold(valueTok, "dc") {
		if len(tokens) < 5 {
			p.diag("%s: missing DC value", tokens[0])
			return
		}
		valueTok = tokens[4]
	}
	value, err := util.ParseValue(valueTok)
	if err != nil {
		p.diag("%s: %v", tokens[0], err)
		return
	}

	v := device.NewVoltageSource(tokens[0], value)
	v.SetNodeForPin(0, n1)
	v.SetNodeForPin(1, n2)
	p.elements = append(p.elements, v)
}

func (p *Parser) parseDiode(tokens []string) {
	if len(tokens) < 4 {
		p.diag("%s: too few fields", tokens[0])
		return
	}
	n1 := p.nodeNumber(tokens[1])
	n2 := p.nodeNumber(tokens[2])

	d := device.NewDiode(tokens[0], tokens[3])
	d.SetNodeForPin(0, n1)
	d.SetNodeForPin(1, n2)
	p.elements = append(p.elements, d)
}

func (p *Parser) parseMOSFET(tokens []string) {
	if len(tokens) < 6 {
		p.diag("%s: too few fields", tokens[0])
		return
	}
	nd := p.nodeNumber(tokens[1])
	ng := p.nodeNumber(tokens[2])
	ns := p.nodeNumber(tokens[3])
	nb := p.nodeNumber(tokens[4])
	model := tokens[5]

	var m *device.Mosfet
	lower := strings.ToLower(model)
	if strings.Contains(lower, "pmos") || strings.Contains(lower, "pfet") {
		m = device.NewPMOSFET(tokens[0], model)
	} else {
		m = device.NewNMOSFET(tokens[0], model)
	}
	m.SetNodeForPin(0, nd)
	m.SetNodeForPin(1, ng)
	m.SetNodeForPin(2, ns)
	m.SetNodeForPin(3, nb)
	p.elements = append(p.elements, m)
}

// parseDirective handles dot commands. It reports true when parsing
// should stop (.end).
func (p *Parser) parseDirective(tokens []string) bool {
	switch strings.ToLower(tokens[0]) {
	case ".end":
		return true

	case ".op":
		p.runOperatingPoint()

	case ".dc":
		if len(tokens) == 1 {
			p.runOperatingPoint()
			break
		}
		if len(tokens) >= 5 {
			p.diag("%v: .dc sweep of %s recognized but not executed", ErrUnsupported, tokens[1])
			break
		}
		p.diag(".dc: expected no arguments or <src> <start> <stop> <step>")

	case ".tran":
		if len(tokens) < 3 {
			p.diag(".tran: expected <step> <stop> [start]")
			break
		}
		var settings analysis.TransientSettings
		var err error
		if settings.Step, err = util.ParseValue(tokens[1]); err != nil {
			p.diag(".tran: invalid step: %v", err)
			break
		}
		if settings.Stop, err = util.ParseValue(tokens[2]); err != nil {
			p.diag(".tran: invalid stop: %v", err)
			break
		}
		if len(tokens) >= 4 {
			if settings.Start, err = util.ParseValue(tokens[3]); err != nil {
				p.diag(".tran: invalid start: %v", err)
				break
			}
		}
		p.runTransient(settings)

	case ".ac":
		p.diag("%v: .ac analysis recognized but not executed", ErrUnsupported)

	default:
		p.diag("unknown directive %s", tokens[0])
	}
	return false
}

func (p *Parser) runOperatingPoint() {
	op, err := analysis.NewOperatingPoint(p.elements, p.numNodes)
	if err != nil {
		p.diag("%v", err)
		return
	}
	if err := op.Solve(); err != nil {
		p.diag("%v", err)
		return
	}
	p.OP = op
}

func (p *Parser) runTransient(settings analysis.TransientSettings) {
	tr, err := analysis.NewTransient(p.elements, p.numNodes, settings)
	if err != nil {
		p.diag("%v", err)
		return
	}
	if err := tr.Solve(); err != nil {
		// Earlier time points stay valid; keep the partial log.
		p.diag("%v", err)
	}
	p.Tran = tr
}
