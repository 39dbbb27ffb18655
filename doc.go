// Package graphwire encodes object graphs, including shared and cyclic
// references, into a compact tagged byte stream and rebuilds isomorphic
// graphs from it.
//
// Every value starts with one tag byte. Lists, maps and objects each take
// the next object id on both sides of a pass; a value seen again is
// written as a back-reference r<id>; instead of being repeated. A class
// descriptor naming a struct type's fields is written once per type per
// pass and later instances refer to it by class id.
//
//	type Node struct {
//		Name string
//		Next *Node
//	}
//
//	x := &Node{Name: "x"}
//	x.Next = &Node{Name: "y", Next: x}
//	data, _ := graphwire.Marshal(x, graphwire.Options{})
//	// c4"Node"2{s4"name"s4"next"}o0{uxo0{uyr0;}}
//
// Codecs for further types plug in through a Registry. Writer and Reader
// instances hold per-pass state and must not be shared between
// goroutines; a Registry may be.
package graphwire
