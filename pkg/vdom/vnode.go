package vdom

import (
	"strings"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement  VKind = iota // <div>, <button>, etc.
	KindText                  // Plain text node
	KindFragment              // Grouping without wrapper
	KindRaw                   // Raw HTML (dangerous)
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// VNode is a node of the server-side DOM.
type VNode struct {
	Kind     VKind    // Node type
	Tag      string   // Element tag name (e.g., "div")
	Props    Props    // Attributes and internal props
	Children []*VNode // Child nodes
	Text     string   // For KindText and KindRaw
}

// Props holds attributes.
type Props map[string]any

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// ID returns the element's id attribute.
func (v *VNode) ID() string {
	return v.Attr("id")
}

// Attr returns the string form of an attribute, or "" when it is absent.
// Boolean attributes report "true" when set.
func (v *VNode) Attr(key string) string {
	if v == nil || v.Props == nil {
		return ""
	}
	switch val := v.Props[key].(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return ""
	default:
		return toString(val)
	}
}

// HasAttr reports whether the attribute is present and not false.
func (v *VNode) HasAttr(key string) bool {
	if v == nil || v.Props == nil {
		return false
	}
	val, ok := v.Props[key]
	if !ok || val == nil {
		return false
	}
	if b, isBool := val.(bool); isBool {
		return b
	}
	return true
}

// SetAttr sets an attribute. A nil value removes it.
func (v *VNode) SetAttr(key string, value any) {
	if value == nil {
		v.RemoveAttr(key)
		return
	}
	if v.Props == nil {
		v.Props = make(Props)
	}
	v.Props[key] = value
}

// RemoveAttr removes an attribute.
func (v *VNode) RemoveAttr(key string) {
	if v.Props != nil {
		delete(v.Props, key)
	}
}

// Data returns the value of a data-* attribute.
func (v *VNode) Data(key string) string {
	return v.Attr("data-" + key)
}

// Prop returns an internal prop (key without the "_" prefix).
func (v *VNode) Prop(key string) any {
	if v == nil || v.Props == nil {
		return nil
	}
	return v.Props["_"+key]
}

// SetProp stores an internal prop that is never rendered. A nil value
// removes it.
func (v *VNode) SetProp(key string, value any) {
	v.SetAttr("_"+key, value)
}

// Classes returns the element's classes in order.
func (v *VNode) Classes() []string {
	return strings.Fields(v.Attr("class"))
}

// HasClass reports whether the element carries the class.
func (v *VNode) HasClass(class string) bool {
	for _, c := range v.Classes() {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass adds classes that are not present yet.
func (v *VNode) AddClass(classes ...string) {
	current := v.Classes()
	for _, class := range classes {
		if class == "" || v.HasClass(class) {
			continue
		}
		current = append(current, class)
		v.SetAttr("class", strings.Join(current, " "))
	}
}

// RemoveClass removes classes. The class attribute is dropped when empty.
func (v *VNode) RemoveClass(classes ...string) {
	drop := make(map[string]bool, len(classes))
	for _, c := range classes {
		drop[c] = true
	}
	kept := make([]string, 0, len(v.Classes()))
	for _, c := range v.Classes() {
		if !drop[c] {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		v.RemoveAttr("class")
		return
	}
	v.SetAttr("class", strings.Join(kept, " "))
}

// ToggleClass adds the class when on is true and removes it otherwise.
func (v *VNode) ToggleClass(class string, on bool) {
	if on {
		v.AddClass(class)
	} else {
		v.RemoveClass(class)
	}
}

// SetText replaces all children with a single text node.
func (v *VNode) SetText(text string) {
	v.Children = []*VNode{Text(text)}
}

// TextContent returns the concatenated text of the subtree.
func (v *VNode) TextContent() string {
	if v == nil {
		return ""
	}
	if v.Kind == KindText {
		return v.Text
	}
	var b strings.Builder
	for _, c := range v.Children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// Append adds children at the end.
func (v *VNode) Append(children ...*VNode) {
	for _, c := range children {
		if c != nil {
			v.Children = append(v.Children, c)
		}
	}
}

// ReplaceChildren replaces all children.
func (v *VNode) ReplaceChildren(children ...*VNode) {
	v.Children = make([]*VNode, 0, len(children))
	v.Append(children...)
}

// Walk visits the subtree in document order. Returning false from fn stops
// the walk.
func (v *VNode) Walk(fn func(*VNode) bool) bool {
	if v == nil {
		return true
	}
	if !fn(v) {
		return false
	}
	for _, c := range v.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// FindByID returns the first element in the subtree with the given id.
func (v *VNode) FindByID(id string) *VNode {
	if id == "" {
		return nil
	}
	var found *VNode
	v.Walk(func(n *VNode) bool {
		if n.Kind == KindElement && n.ID() == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindAll returns all elements in the subtree matching pred.
func (v *VNode) FindAll(pred func(*VNode) bool) []*VNode {
	var out []*VNode
	v.Walk(func(n *VNode) bool {
		if n.Kind == KindElement && pred(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}
