// Command rmatch runs every pattern in a newline-delimited pattern file
// against an input file in a single streaming pass, printing one line per
// committed match.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/coregx/rmatch/matcher"
)

func main() {
	threshold := flag.Uint("threshold", 2000, "pattern count at which the Aho-Corasick prefilter activates")
	fastpath := flag.Bool("fastpath", false, "use the ASCII fast-lane engine instead of the default one")
	flag.Parse()

	patternFile := flag.Arg(0)
	inputFile := flag.Arg(1)
	if patternFile == "" || inputFile == "" {
		fmt.Fprintln(os.Stderr, "usage: rmatch [-threshold N] [-fastpath] PATTERNS INPUT")
		os.Exit(1)
	}

	patterns, err := readLines(patternFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rmatch: %v\n", err)
		os.Exit(1)
	}

	input, err := os.ReadFile(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rmatch: %v\n", err)
		os.Exit(1)
	}

	cfg := matcher.DefaultConfig().WithPrefilterThreshold(uint32(*threshold))
	if *fastpath {
		cfg = cfg.WithEngine(matcher.Fastpath)
	}
	m, err := matcher.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rmatch: %v\n", err)
		os.Exit(1)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	ok := true
	for _, pattern := range patterns {
		pattern := pattern
		if err := m.Add(pattern, func(buf []byte, start, end int) {
			fmt.Fprintf(w, "%s\t%d\t%d\n", pattern, start, end)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "rmatch: %v\n", err)
			ok = false
		}
	}
	if !ok {
		os.Exit(1)
	}

	m.Match(input)
	w.Flush()
}

// readLines returns every non-empty line of path, in order. Lines holding
// only whitespace are kept, as patterns.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
