package vcs

import (
	"fmt"
	"strings"
)

// Log output is requested from both VCSes with fields joined by the ASCII
// unit separator. The byte cannot be typed into a commit message by accident,
// the format strings are fixed constants (git expands %x1f itself, mercurial
// unescapes \x1f in the template), and the message is always the trailing
// field. That makes parsing immune to messages containing '%', '{}', quotes
// or the field separator of some other tool.
const fieldSep = "\x1f"

// splitLogLine splits one log line into exactly want fields.
func splitLogLine(line string, want int) ([]string, error) {
	fields := strings.SplitN(line, fieldSep, want)
	if len(fields) != want {
		return nil, fmt.Errorf("malformed log line (%d of %d fields): %q", len(fields), want, line)
	}
	return fields, nil
}

// splitLogLines splits a whole log output, skipping blank lines.
func splitLogLines(out string, want int) ([][]string, error) {
	var records [][]string
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields, err := splitLogLine(line, want)
		if err != nil {
			return nil, err
		}
		records = append(records, fields)
	}
	return records, nil
}
