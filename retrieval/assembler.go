package retrieval

import (
	"fmt"
	"strings"

	"github.com/citymuse/wayfinder/core"
)

// AssembleContext renders ranked candidates into a plain-text context block
// of at most maxChars characters, one entry per line. Entries are included
// best-first and never truncated mid-entry: the first entry that does not
// fit ends assembly, and it and everything after it count as dropped.
// Returns the assembled text and the number of dropped candidates.
func AssembleContext(candidates []core.RankedCandidate, maxChars int) (string, int) {
	var b strings.Builder
	included := 0
	for _, c := range candidates {
		entry := formatEntry(c)
		need := len(entry)
		if included > 0 {
			need++ // newline separator
		}
		if b.Len()+need > maxChars {
			break
		}
		if included > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(entry)
		included++
	}
	return b.String(), len(candidates) - included
}

// formatEntry renders one candidate as a single line: name, kind,
// description, tags, and the stops and routes that support it.
func formatEntry(c core.RankedCandidate) string {
	var b strings.Builder

	name := c.Node.Name
	if name == "" {
		name = c.Node.ID
	}
	fmt.Fprintf(&b, "%s (%s)", name, c.Node.Kind)

	if c.Node.Description != "" && c.Node.Description != name {
		b.WriteString(": ")
		b.WriteString(c.Node.Description)
	}
	if len(c.Node.Tags) > 0 {
		b.WriteString(". tags: ")
		b.WriteString(strings.Join(c.Node.Tags, ", "))
	}
	if len(c.Support) > 0 {
		b.WriteString(". nearby: ")
		for i, nb := range c.Support {
			if i > 0 {
				b.WriteString("; ")
			}
			nbName := nb.Node.Name
			if nbName == "" {
				nbName = nb.Node.ID
			}
			hops := "hops"
			if nb.Hops == 1 {
				hops = "hop"
			}
			fmt.Fprintf(&b, "%s (%s, %d %s)", nbName, nb.Node.Kind, nb.Hops, hops)
		}
	}
	b.WriteByte('.')

	return b.String()
}
