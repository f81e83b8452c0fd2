package vdom

import "testing"

func TestCreateElementArgs(t *testing.T) {
	child := Span(Text("x"))
	node := Div(
		ID("main"),
		[]Attr{Class("a", "b"), Data("nik", "123")},
		nil,
		child,
		[]*VNode{P(), nil},
		"tail",
	)

	if node.Tag != "div" || node.Kind != KindElement {
		t.Fatalf("unexpected node %+v", node)
	}
	if node.ID() != "main" {
		t.Errorf("ID() = %q, want main", node.ID())
	}
	if node.Attr("class") != "a b" {
		t.Errorf("class = %q, want %q", node.Attr("class"), "a b")
	}
	if node.Data("nik") != "123" {
		t.Errorf("Data(nik) = %q, want 123", node.Data("nik"))
	}
	if len(node.Children) != 3 {
		t.Fatalf("children = %d, want 3", len(node.Children))
	}
	if node.Children[2].Kind != KindText || node.Children[2].Text != "tail" {
		t.Errorf("string arg should become a text node, got %+v", node.Children[2])
	}
}

func TestClassOperations(t *testing.T) {
	n := Input(Class("form-control"))

	n.AddClass("is-invalid", "form-control")
	if got := n.Attr("class"); got != "form-control is-invalid" {
		t.Errorf("after AddClass class = %q", got)
	}
	if !n.HasClass("is-invalid") {
		t.Error("HasClass(is-invalid) = false")
	}

	n.RemoveClass("is-invalid")
	if n.HasClass("is-invalid") {
		t.Error("is-invalid still present after RemoveClass")
	}

	n.RemoveClass("form-control")
	if _, ok := n.Props["class"]; ok {
		t.Error("empty class attribute should be removed")
	}

	n.ToggleClass("d-none", true)
	if !n.HasClass("d-none") {
		t.Error("ToggleClass(true) did not add")
	}
	n.ToggleClass("d-none", false)
	if n.HasClass("d-none") {
		t.Error("ToggleClass(false) did not remove")
	}
}

func TestAttrHelpers(t *testing.T) {
	n := Button(Disabled(), TabIndex(2))

	if !n.HasAttr("disabled") {
		t.Error("HasAttr(disabled) = false")
	}
	if n.Attr("disabled") != "true" {
		t.Errorf("Attr(disabled) = %q", n.Attr("disabled"))
	}
	if n.Attr("tabindex") != "2" {
		t.Errorf("Attr(tabindex) = %q", n.Attr("tabindex"))
	}

	n.SetAttr("disabled", false)
	if n.HasAttr("disabled") {
		t.Error("disabled=false should not count as present")
	}
	n.SetAttr("disabled", nil)
	if _, ok := n.Props["disabled"]; ok {
		t.Error("SetAttr(nil) should remove the attribute")
	}
}

func TestInternalProps(t *testing.T) {
	n := Input()
	n.SetProp("file", "selection")
	if n.Prop("file") != "selection" {
		t.Errorf("Prop(file) = %v", n.Prop("file"))
	}
	if _, ok := n.Props["_file"]; !ok {
		t.Error("internal prop should be stored with _ prefix")
	}
	n.SetProp("file", nil)
	if n.Prop("file") != nil {
		t.Error("SetProp(nil) should clear")
	}
}

func TestTextContentAndSetText(t *testing.T) {
	n := Div(Span("Hello, "), Strong("Siti"))
	if got := n.TextContent(); got != "Hello, Siti" {
		t.Errorf("TextContent() = %q", got)
	}
	n.SetText("replaced")
	if len(n.Children) != 1 || n.TextContent() != "replaced" {
		t.Errorf("SetText did not replace children: %+v", n.Children)
	}
}

func TestFindAll(t *testing.T) {
	root := Form(
		Input(ID("ktp"), Type("file")),
		Div(Input(ID("kk"), Type("file"))),
		Input(ID("nik"), Type("hidden")),
	)
	files := root.FindAll(func(n *VNode) bool { return n.Tag == "input" && n.Attr("type") == "file" })
	if len(files) != 2 {
		t.Fatalf("FindAll = %d nodes, want 2", len(files))
	}
	if files[0].ID() != "ktp" || files[1].ID() != "kk" {
		t.Errorf("unexpected order: %s, %s", files[0].ID(), files[1].ID())
	}
}

func TestRange(t *testing.T) {
	nodes := Range([]string{"a", "", "c"}, func(s string, _ int) *VNode {
		return If(s != "", Span(s))
	})
	if len(nodes) != 2 {
		t.Errorf("Range = %d nodes, want 2", len(nodes))
	}
}
