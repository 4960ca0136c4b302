package parsetree

import "github.com/tchap/go-patricia/v2/patricia"

// reservedWords holds the identifiers that may never be used as a
// user-defined predicate, method, or field name. A patricia trie gives
// fast exact/prefix checks even though the set is small and fixed, so
// that a future reserved-prefix diagnostic (e.g. flagging "cut_count"
// as shadowing "cut") can reuse the same structure without a rewrite.
var reservedWords = newReservedTrie()

func newReservedTrie() *patricia.Trie {
	t := patricia.NewTrie()
	for _, w := range []string{"cut", "debug", "in", "new", "not", "isa", "if", "and", "or"} {
		t.Insert(patricia.Prefix(w), true)
	}
	return t
}

// isReserved reports whether name is exactly a reserved word.
func isReserved(name string) bool {
	return reservedWords.Get(patricia.Prefix(name)) != nil
}
