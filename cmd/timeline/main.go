package main

import (
	"os"
	"strings"

	"timeline-cli/internal/cli"
)

func isSeedPath(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.HasSuffix(s, ".yaml") || strings.HasSuffix(s, ".yml")
}

func rewriteSeedFileArgs(argv []string) []string {
	// Convenience: `timeline shifts.yaml` works like `timeline --seed-file shifts.yaml`.
	//
	// Cobra treats the first non-flag token as a subcommand, so argv is
	// rewritten before parsing. Persistent flags may come first, so look for
	// the first positional token rather than argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--config":    true,
		"--seed-file": true,
		"--format":    true,
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}

		// First positional token.
		if isSeedPath(a) {
			out := make([]string, 0, len(argv)+1)
			out = append(out, argv[:i]...)
			out = append(out, "--seed-file")
			out = append(out, argv[i:]...)
			return out
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteSeedFileArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
