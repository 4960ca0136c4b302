package external

import "github.com/rulekit/rulekit/term"

// Registry routes a Request to the Resolver registered for its dispatch
// path, walking a trie of Symbol segments the same way a path-keyed
// resolver tree does: each segment narrows to a child node, and the
// deepest node reached along the walk that carries its own Resolver
// answers the call. A Resolver registered on [tag] alone therefore answers every
// attribute on that tag; one registered on [tag, attribute] overrides it
// for that attribute specifically.
type Registry struct {
	root *registryNode
}

type registryNode struct {
	resolver Resolver
	children map[term.Symbol]*registryNode
}

func newRegistryNode() *registryNode {
	return &registryNode{children: map[term.Symbol]*registryNode{}}
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{root: newRegistryNode()}
}

// Register binds r to path, creating intermediate nodes as needed. A
// second Register on the same path replaces the earlier binding.
func (reg *Registry) Register(path []term.Symbol, r Resolver) {
	node := reg.root
	for _, seg := range path {
		child, ok := node.children[seg]
		if !ok {
			child = newRegistryNode()
			node.children[seg] = child
		}
		node = child
	}
	node.resolver = r
}

// Resolve walks path and returns the Resolver registered on its longest
// registered prefix, or nil if no prefix of path was ever registered.
func (reg *Registry) Resolve(path []term.Symbol) Resolver {
	node := reg.root
	found := node.resolver
	for _, seg := range path {
		child, ok := node.children[seg]
		if !ok {
			break
		}
		node = child
		if node.resolver != nil {
			found = node.resolver
		}
	}
	return found
}

// ResolveRequest is a convenience wrapper that derives the dispatch path
// from req's instance tag and attribute, and reports whether anything was
// registered for it.
func (reg *Registry) ResolveRequest(req Request) (Resolver, bool) {
	tag, ok := TagOf(req.Instance)
	if !ok {
		return nil, false
	}
	r := reg.Resolve([]term.Symbol{tag, req.Attribute})
	return r, r != nil
}
