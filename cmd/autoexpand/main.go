package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/qshan/verible-autoexpand-ls/internal/config"
	"github.com/qshan/verible-autoexpand-ls/internal/project"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var verbose, write, lint bool
	var configPath string
	var path string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-v", "--verbose":
			verbose = true
		case "-w", "--write":
			write = true
		case "--lint":
			lint = true
		case "-c", "--config":
			if i+1 >= len(args) {
				printUsage()
				os.Exit(1)
			}
			i++
			configPath = args[i]
		case "-h", "--help", "help":
			printUsage()
			return
		default:
			path = args[i]
		}
	}

	if path == "" {
		printUsage()
		os.Exit(1)
	}

	run(path, configPath, verbose, write, lint)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: autoexpand [options] <path>

Expands every /*AUTOARG*/ and /*AUTOINST*/ directive found under <path>.
By default the computed edits are printed as a unified diff to stdout;
pass -w to apply them in place.

Options:
  -v, --verbose     Enable verbose output
  -w, --write       Apply edits in place instead of printing a diff
  -c, --config      Specify config file: autoexpand -c autoexpand.json <path>
  --lint            Run the additive lint policy and report violations
  -h, --help        Show this help message

Configuration:
  autoexpand looks for configuration in:
    1. ./autoexpand.json / ./autoexpand.yaml
    2. ./.autoexpand.json / ./.autoexpand.yaml
    3. ~/.config/autoexpand/config.json`)
}

func run(path, configPath string, verbose, write, lint bool) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config %s: %v\n", configPath, err)
			os.Exit(1)
		}
	} else {
		cfg, err = config.Load(path)
		if err != nil {
			fmt.Printf("Warning: could not load config: %v (using defaults)\n", err)
			cfg = config.DefaultConfig()
		}
	}

	p := project.New(cfg)
	p.Verbose = verbose
	p.Lint = lint

	if err := p.Load(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	result, err := p.Expand()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(result.Files) == 0 {
		if verbose {
			fmt.Println("No AUTOARG/AUTOINST sites found.")
		}
		return
	}

	for _, fr := range result.Files {
		if fr.ParseErr != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", fr.Path, fr.ParseErr)
			continue
		}
		for _, v := range fr.Violations {
			fmt.Fprintf(os.Stderr, "%s: %s: %s\n", fr.Path, v.Rule, v.Message)
		}
		if len(fr.Edits) == 0 {
			continue
		}
		if write {
			if err := project.Apply(fr); err != nil {
				fmt.Fprintf(os.Stderr, "Error applying %s: %v\n", fr.Path, err)
				os.Exit(1)
			}
			if verbose {
				fmt.Printf("expanded %s (%d site(s))\n", fr.Path, len(fr.Edits))
			}
			continue
		}
		printDiff(fr)
	}
}

func printDiff(fr project.FileResult) {
	before, err := os.ReadFile(fr.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", fr.Path, err)
		return
	}
	after, err := project.Preview(fr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error previewing %s: %v\n", fr.Path, err)
		return
	}
	fmt.Printf("--- a/%s\n+++ b/%s\n", fr.Path, fr.Path)
	fmt.Print(unifiedDiff(string(before), string(after)))
}

// unifiedDiff renders a minimal line-based diff of a and b. It is not a
// general-purpose diff algorithm; it walks the longest common subsequence of
// lines and is sized for the small, localized hunks AUTOARG/AUTOINST
// expansion produces, not for arbitrary whole-file rewrites.
func unifiedDiff(a, b string) string {
	al := strings.Split(a, "\n")
	bl := strings.Split(b, "\n")
	lcs := lcsLines(al, bl)

	var out strings.Builder
	i, j := 0, 0
	for _, m := range lcs {
		for i < m.ai {
			out.WriteString("-" + al[i] + "\n")
			i++
		}
		for j < m.bi {
			out.WriteString("+" + bl[j] + "\n")
			j++
		}
		out.WriteString(" " + al[i] + "\n")
		i++
		j++
	}
	for i < len(al) {
		out.WriteString("-" + al[i] + "\n")
		i++
	}
	for j < len(bl) {
		out.WriteString("+" + bl[j] + "\n")
		j++
	}
	return out.String()
}

type lcsMatch struct{ ai, bi int }

func lcsLines(a, b []string) []lcsMatch {
	n, m := len(a), len(b)
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				dp[i][j] = dp[i+1][j+1] + 1
			} else if dp[i+1][j] >= dp[i][j+1] {
				dp[i][j] = dp[i+1][j]
			} else {
				dp[i][j] = dp[i][j+1]
			}
		}
	}
	var matches []lcsMatch
	i, j := 0, 0
	for i < n && j < m {
		if a[i] == b[j] {
			matches = append(matches, lcsMatch{i, j})
			i++
			j++
		} else if dp[i+1][j] >= dp[i][j+1] {
			i++
		} else {
			j++
		}
	}
	return matches
}
