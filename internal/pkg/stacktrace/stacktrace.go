// Package stacktrace trims raw goroutine stacks down to the frames that
// belong to this repository, keeping panic logs readable.
package stacktrace

import "strings"

// InternalPaths returns the internal package frames from a raw stack trace.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, len(lines))

	for i := 0; i < len(lines)-1; i++ {
		line := strings.TrimSpace(lines[i+1])
		if !strings.Contains(line, "/internal/") || !strings.Contains(line, ".go") {
			continue
		}

		idx := strings.Index(line, ".go:")
		if idx == -1 {
			continue
		}

		end := strings.Index(line[idx:], " ")
		if end == -1 {
			end = len(line)
		} else {
			end += idx
		}

		short := line[:end]
		if internalIdx := strings.Index(short, "/internal/"); internalIdx != -1 {
			paths = append(paths, short[internalIdx+1:])
		}
	}

	return paths
}
