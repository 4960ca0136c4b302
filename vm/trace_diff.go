package vm

import "github.com/sergi/go-diff/diffmatchpatch"

// Diff renders a line-level diff between two rendered trace trees,
// for a test failure message that shows exactly where two traces
// diverge instead of dumping both trees in full.
func Diff(want, got string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(want, got)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)
	return dmp.DiffPrettyText(diffs)
}
