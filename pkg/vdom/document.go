package vdom

// Document is a mutable DOM rooted at a single node.
type Document struct {
	root *VNode
}

// NewDocument wraps root in a Document.
func NewDocument(root *VNode) *Document {
	return &Document{root: root}
}

// Root returns the root node.
func (d *Document) Root() *VNode {
	return d.root
}

// Body returns the <body> element, or the root when the tree has none.
func (d *Document) Body() *VNode {
	var body *VNode
	d.root.Walk(func(n *VNode) bool {
		if n.Kind == KindElement && n.Tag == "body" {
			body = n
			return false
		}
		return true
	})
	if body == nil {
		return d.root
	}
	return body
}

// GetElementByID returns the first element with the given id, or nil.
func (d *Document) GetElementByID(id string) *VNode {
	return d.root.FindByID(id)
}

// QueryAll returns all elements matching pred in document order.
func (d *Document) QueryAll(pred func(*VNode) bool) []*VNode {
	return d.root.FindAll(pred)
}

// Contains reports whether node is part of the document.
func (d *Document) Contains(node *VNode) bool {
	found := false
	d.root.Walk(func(n *VNode) bool {
		if n == node {
			found = true
			return false
		}
		return true
	})
	return found
}

// Parent returns the parent of node, or nil for the root and for nodes not in
// the document.
func (d *Document) Parent(node *VNode) *VNode {
	parent, _ := d.locate(node)
	return parent
}

// NextSibling returns the node directly after node under the same parent.
func (d *Document) NextSibling(node *VNode) *VNode {
	parent, idx := d.locate(node)
	if parent == nil || idx+1 >= len(parent.Children) {
		return nil
	}
	return parent.Children[idx+1]
}

// InsertAfter inserts node right after ref. It reports false when ref is not
// in the document.
func (d *Document) InsertAfter(ref, node *VNode) bool {
	parent, idx := d.locate(ref)
	if parent == nil {
		return false
	}
	children := make([]*VNode, 0, len(parent.Children)+1)
	children = append(children, parent.Children[:idx+1]...)
	children = append(children, node)
	children = append(children, parent.Children[idx+1:]...)
	parent.Children = children
	return true
}

// Remove detaches node from its parent. It reports false when node is not in
// the document or is the root.
func (d *Document) Remove(node *VNode) bool {
	parent, idx := d.locate(node)
	if parent == nil {
		return false
	}
	parent.Children = append(parent.Children[:idx:idx], parent.Children[idx+1:]...)
	return true
}

// locate finds node's parent and index among its siblings.
func (d *Document) locate(node *VNode) (*VNode, int) {
	if node == nil {
		return nil, -1
	}
	var (
		parent *VNode
		index  = -1
	)
	d.root.Walk(func(n *VNode) bool {
		for i, c := range n.Children {
			if c == node {
				parent, index = n, i
				return false
			}
		}
		return true
	})
	return parent, index
}
