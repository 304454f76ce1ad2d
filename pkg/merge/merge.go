// Package merge implements three-way content merge: given a base, a
// local ("mine") side, and an incoming ("theirs") side, produce merged
// content or a conflict-marked result. The shortcut cases (one side
// unchanged from base) skip the full merge entirely; the line-level
// alignment beneath the general case is a standard LCS diff, walked to
// find the "stable" base lines both sides kept unchanged and
// resolving everything between two stable points as one hunk.
package merge

import (
	"bytes"
	"strings"
)

// Outcome reports whether a merge produced clean content or left
// conflicts behind.
type Outcome struct {
	Merged        []byte
	HasConflicts  bool
	ConflictCount int
}

// Files performs a three-way merge of base/mine/theirs content. When
// mine and theirs are identical, or only one side diverged from base,
// the unmodified/changed side is returned directly with no conflict
// markers.
func Files(base, mine, theirs []byte) Outcome {
	if bytes.Equal(mine, theirs) {
		return Outcome{Merged: mine}
	}
	if bytes.Equal(mine, base) {
		return Outcome{Merged: theirs}
	}
	if bytes.Equal(theirs, base) {
		return Outcome{Merged: mine}
	}

	baseLines := splitLines(base)
	mineLines := splitLines(mine)
	theirLines := splitLines(theirs)

	keepMine, atMine := align(baseLines, mineLines)
	keepTheir, atTheir := align(baseLines, theirLines)

	var out []string
	conflicts := 0
	baseStart := 0
	n := len(baseLines)

	flush := func(end int) {
		mineStart, theirStart := 0, 0
		if baseStart > 0 {
			mineStart, theirStart = atMine[baseStart-1]+1, atTheir[baseStart-1]+1
		}
		mineSeg := mineLines[mineStart:atMine[end]]
		theirSeg := theirLines[theirStart:atTheir[end]]
		baseSeg := baseLines[baseStart:end]

		switch {
		case linesEqual(mineSeg, theirSeg):
			out = append(out, mineSeg...)
		case linesEqual(mineSeg, baseSeg):
			out = append(out, theirSeg...)
		case linesEqual(theirSeg, baseSeg):
			out = append(out, mineSeg...)
		default:
			conflicts++
			out = append(out, "<<<<<<< mine\n")
			out = append(out, mineSeg...)
			out = append(out, "=======\n")
			out = append(out, theirSeg...)
			out = append(out, ">>>>>>> theirs\n")
		}
	}

	for i := 0; i <= n; i++ {
		if i < n && !(keepMine[i] && keepTheir[i]) {
			continue
		}
		flush(i)
		if i < n {
			out = append(out, baseLines[i])
			baseStart = i + 1
		}
	}

	var buf bytes.Buffer
	writeLines(&buf, out)

	return Outcome{
		Merged:        buf.Bytes(),
		HasConflicts:  conflicts > 0,
		ConflictCount: conflicts,
	}
}

// align diffs base against changed with a line-level LCS and returns:
//   - keep[i]: whether base[i] survives unchanged in changed
//   - at[i]: for a kept base[i], the index in changed of the line it
//     matched (every insertion before it already consumed);
//     at[len(base)] always equals len(changed).
//
// Two alignments sharing the same base can be compared index-by-index
// to find "stable" lines both sides left untouched, which is exactly
// how diff3-style merges split the file into independent hunks.
func align(base, changed []string) (keep []bool, at []int) {
	n, m := len(base), len(changed)
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			switch {
			case base[i] == changed[j]:
				lcs[i][j] = lcs[i+1][j+1] + 1
			case lcs[i+1][j] >= lcs[i][j+1]:
				lcs[i][j] = lcs[i+1][j]
			default:
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	keep = make([]bool, n)
	at = make([]int, n+1)

	i, j := 0, 0
	for i < n || j < m {
		switch {
		case i < n && j < m && base[i] == changed[j]:
			keep[i] = true
			at[i] = j
			i++
			j++
		case i < n && (j >= m || lcs[i+1][j] >= lcs[i][j+1]):
			at[i] = j
			i++
		default:
			j++ // insertion belonging to the hunk that ends at base index i
		}
	}
	at[n] = m
	return keep, at
}

func linesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(data), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func writeLines(buf *bytes.Buffer, lines []string) {
	for _, l := range lines {
		buf.WriteString(l)
		if !strings.HasSuffix(l, "\n") {
			buf.WriteByte('\n')
		}
	}
}
