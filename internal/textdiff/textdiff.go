// Package textdiff computes line-level differences between two file
// versions: additions/deletions accounting for change summaries and
// unified diff text for review. Diff runs are memoized under an xxh3
// content key since the same pair is typically requested twice per
// agent turn (once for counts, once with patch text).
package textdiff

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/zeebo/xxh3"
)

// ContextLines is the number of unchanged lines shown around each hunk.
const ContextLines = 3

const cacheCap = 256

type lineOp struct {
	op   diffmatchpatch.Operation
	text string // includes trailing newline except possibly the last line
}

var (
	cacheMu sync.Mutex
	cache   = map[uint64][]lineOp{}
)

func cacheKey(a, b []byte) uint64 {
	h := xxh3.New()
	h.Write(a)
	h.Write([]byte{0})
	h.Write(b)
	return h.Sum64()
}

// lineDiff returns the whole-line edit script from a to b.
func lineDiff(a, b []byte) []lineOp {
	key := cacheKey(a, b)

	cacheMu.Lock()
	if ops, ok := cache[key]; ok {
		cacheMu.Unlock()
		return ops
	}
	cacheMu.Unlock()

	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(string(a), string(b))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var ops []lineOp
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			ops = append(ops, lineOp{op: d.Type, text: line})
		}
	}

	cacheMu.Lock()
	if len(cache) >= cacheCap {
		for k := range cache {
			delete(cache, k)
			break
		}
	}
	cache[key] = ops
	cacheMu.Unlock()

	return ops
}

// splitLines splits text into lines, each keeping its newline. A final
// fragment without a newline is still one line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	var out []string
	for {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			out = append(out, text)
			return out
		}
		out = append(out, text[:i+1])
		text = text[i+1:]
		if text == "" {
			return out
		}
	}
}

// CountLines counts the lines in content. A trailing newline does not
// start an extra line; empty content has zero lines.
func CountLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := strings.Count(string(content), "\n")
	if content[len(content)-1] != '\n' {
		n++
	}
	return n
}

// Stats returns the added and deleted line counts between two versions.
func Stats(a, b []byte) (additions, deletions int) {
	for _, op := range lineDiff(a, b) {
		switch op.op {
		case diffmatchpatch.DiffInsert:
			additions++
		case diffmatchpatch.DiffDelete:
			deletions++
		}
	}
	return additions, deletions
}

// Unified renders a unified diff between two versions of path, with
// ContextLines lines of context per hunk. Identical inputs yield "".
func Unified(path string, a, b []byte) string {
	ops := lineDiff(a, b)

	changed := false
	for _, op := range ops {
		if op.op != diffmatchpatch.DiffEqual {
			changed = true
			break
		}
	}
	if !changed {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n", path)
	fmt.Fprintf(&sb, "+++ b/%s\n", path)

	for _, h := range buildHunks(ops) {
		fmt.Fprintf(&sb, "@@ -%s +%s @@\n",
			hunkRange(h.aStart, h.aCount), hunkRange(h.bStart, h.bCount))
		for _, op := range h.ops {
			sb.WriteString(marker(op.op))
			sb.WriteString(op.text)
			if !strings.HasSuffix(op.text, "\n") {
				sb.WriteString("\n\\ No newline at end of file\n")
			}
		}
	}
	return sb.String()
}

func marker(op diffmatchpatch.Operation) string {
	switch op {
	case diffmatchpatch.DiffInsert:
		return "+"
	case diffmatchpatch.DiffDelete:
		return "-"
	default:
		return " "
	}
}

func hunkRange(start, count int) string {
	if count == 1 {
		return fmt.Sprintf("%d", start)
	}
	if count == 0 {
		// empty side: position is the line before the change
		return fmt.Sprintf("%d,0", start-1)
	}
	return fmt.Sprintf("%d,%d", start, count)
}

type hunk struct {
	aStart, aCount int
	bStart, bCount int
	ops            []lineOp
}

// buildHunks groups the edit script into hunks separated by more than
// 2*ContextLines unchanged lines.
func buildHunks(ops []lineOp) []hunk {
	var hunks []hunk
	var cur *hunk

	aLine, bLine := 1, 1
	// pending equal lines carried as potential leading context
	var pending []lineOp

	flush := func() {
		if cur != nil {
			hunks = append(hunks, *cur)
			cur = nil
		}
	}

	for _, op := range ops {
		switch op.op {
		case diffmatchpatch.DiffEqual:
			if cur != nil {
				pending = append(pending, op)
				if len(pending) > 2*ContextLines {
					// close the hunk with trailing context
					for _, p := range pending[:ContextLines] {
						cur.ops = append(cur.ops, p)
						cur.aCount++
						cur.bCount++
					}
					flush()
					// nearest equals stay as the next hunk's
					// leading context
					pending = append([]lineOp(nil), pending[len(pending)-ContextLines:]...)
				}
			} else {
				pending = append(pending, op)
				if len(pending) > ContextLines {
					pending = pending[len(pending)-ContextLines:]
				}
			}
			aLine++
			bLine++

		case diffmatchpatch.DiffDelete, diffmatchpatch.DiffInsert:
			if cur == nil {
				cur = &hunk{
					aStart: aLine - len(pending),
					bStart: bLine - len(pending),
				}
			}
			for _, p := range pending {
				cur.ops = append(cur.ops, p)
				cur.aCount++
				cur.bCount++
			}
			pending = nil

			cur.ops = append(cur.ops, op)
			if op.op == diffmatchpatch.DiffDelete {
				cur.aCount++
				aLine++
			} else {
				cur.bCount++
				bLine++
			}
		}
	}

	if cur != nil {
		n := len(pending)
		if n > ContextLines {
			n = ContextLines
		}
		for _, p := range pending[:n] {
			cur.ops = append(cur.ops, p)
			cur.aCount++
			cur.bCount++
		}
		flush()
	}
	return hunks
}
