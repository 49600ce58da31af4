// Package input expands command arguments given as - (stdin) or @file into
// one value per non-empty line.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/marcus/phonebook/internal/output"
)

// ExpandArgs replaces "-" with the lines of stdin and "@path" with the lines
// of that file. stdin is read at most once; a repeated "-" is ignored.
func ExpandArgs(args []string, stdin io.Reader) ([]string, error) {
	var result []string
	stdinUsed := false
	for _, a := range args {
		switch {
		case a == "-":
			if stdinUsed {
				output.Warning("stdin already used, ignoring additional -")
				continue
			}
			stdinUsed = true
			lines, err := ReadLines(stdin)
			if err != nil {
				return nil, fmt.Errorf("read stdin: %w", err)
			}
			result = append(result, lines...)
		case strings.HasPrefix(a, "@") && len(a) > 1:
			lines, err := readFile(a[1:])
			if err != nil {
				return nil, err
			}
			result = append(result, lines...)
		default:
			result = append(result, a)
		}
	}
	return result, nil
}

func readFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()
	return ReadLines(f)
}

// ReadLines reads trimmed, non-empty lines from r.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
