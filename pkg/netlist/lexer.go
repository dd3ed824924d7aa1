// Package netlist reads SPICE netlists into the device model and
// dispatches analysis directives.
package netlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// TokenizeLine splits one netlist line into whitespace-delimited tokens.
// A trailing ";" comment is stripped and "*" comment lines yield nil.
func TokenizeLine(line string) []string {
	if idx := strings.IndexByte(line, ';'); idx >= 0 {
		line = line[:idx]
	}

	line = strings.TrimSpace(line)
	if line == "" || line[0] == '*' {
		return nil
	}

	return strings.Fields(line)
}

// LoadFile reads a netlist and folds "+" continuation lines into the
// previous retained line.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening netlist: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "+") && len(lines) > 0 {
			lines[len(lines)-1] += " " + strings.TrimSpace(line[1:])
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading netlist: %w", err)
	}

	return lines, nil
}
