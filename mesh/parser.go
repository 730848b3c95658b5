package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseScannerFile reads and parses a scanner report file
func ParseScannerFile(path string) ([]*Scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	defer f.Close()
	return ParseScanners(f)
}

// ParseScanners parses scanner blocks of the form
//
//	--- scanner 0 ---
//	404,-588,-901
//	528,-643,409
//
// Blocks may be separated by blank lines. The id is taken from the header;
// a header without a number gets the next sequential id.
func ParseScanners(r io.Reader) ([]*Scanner, error) {
	var (
		scanners []*Scanner
		id       int
		points   []Point
		inBlock  bool
		lineNo   int
	)

	flush := func() {
		if inBlock {
			scanners = append(scanners, NewScanner(id, points))
		}
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "---"):
			flush()
			id = headerID(line, len(scanners))
			points = nil
			inBlock = true
		default:
			if !inBlock {
				return nil, fmt.Errorf("line %d: coordinates before first scanner header", lineNo)
			}
			p, err := parsePoint(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			points = append(points, p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading scanner data: %w", err)
	}
	flush()

	return scanners, nil
}

// headerID extracts N from "--- scanner N ---", falling back to next.
func headerID(line string, next int) int {
	fields := strings.Fields(strings.Trim(line, "- "))
	for i, f := range fields {
		if strings.EqualFold(f, "scanner") && i+1 < len(fields) {
			if n, err := strconv.Atoi(fields[i+1]); err == nil {
				return n
			}
		}
	}
	return next
}

func parsePoint(line string) (Point, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return Point{}, fmt.Errorf("expected 3 comma-separated coordinates, got %q", line)
	}
	var c [3]int
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return Point{}, fmt.Errorf("invalid coordinate %q: %w", part, err)
		}
		c[i] = v
	}
	return Point{X: c[0], Y: c[1], Z: c[2]}, nil
}
