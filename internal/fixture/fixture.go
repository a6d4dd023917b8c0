package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/domdrift/pkg/types"
)

// MutationKind names one kind of DOM edit
type MutationKind string

const (
	InsertElement   MutationKind = "insert_element"
	RemoveElement   MutationKind = "remove_element"
	EditText        MutationKind = "edit_text"
	ChangeAttribute MutationKind = "change_attribute"
)

// AllKinds lists every mutation kind in the order they are tried
var AllKinds = []MutationKind{InsertElement, RemoveElement, EditText, ChangeAttribute}

// ErrNoCandidates is returned when the document offers nothing to mutate
var ErrNoCandidates = errors.New("no mutation candidates")

// Options controls Mutate
type Options struct {
	Seed      uint64
	Mutations int            // Number of edits to apply
	Kinds     []MutationKind // Allowed kinds (default: AllKinds)
}

// Mutation records one applied edit
type Mutation struct {
	Kind   MutationKind
	Path   string // Element path, e.g. html>body>div[1]>p
	Detail string
}

func (m Mutation) String() string {
	return fmt.Sprintf("%s %s: %s", m.Kind, m.Path, m.Detail)
}

// Validate checks the options before any parsing happens
func (o Options) Validate() error {
	if o.Mutations < 0 {
		return fmt.Errorf("%w: mutations must not be negative, got %d", types.ErrInvalidConfiguration, o.Mutations)
	}
	for _, k := range o.Kinds {
		if _, err := ParseKind(string(k)); err != nil {
			return err
		}
	}
	return nil
}

// ParseKind converts a name to a MutationKind
func ParseKind(name string) (MutationKind, error) {
	for _, k := range AllKinds {
		if string(k) == strings.ToLower(strings.TrimSpace(name)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown mutation kind %q", types.ErrInvalidConfiguration, name)
}

// Mutate applies opts.Mutations pseudo-random edits to doc
func Mutate(doc string, opts Options) (string, []Mutation, error) {
	if err := opts.Validate(); err != nil {
		return "", nil, err
	}

	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse document: %w", err)
	}

	kinds := opts.Kinds
	if len(kinds) == 0 {
		kinds = AllKinds
	}

	m := &mutator{
		rng:   rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		root:  root,
		kinds: kinds,
	}

	mutations := make([]Mutation, 0, opts.Mutations)
	for i := 0; i < opts.Mutations; i++ {
		mut, err := m.next(i + 1)
		if err != nil {
			return "", mutations, err
		}
		mutations = append(mutations, mut)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return "", nil, fmt.Errorf("failed to render document: %w", err)
	}

	return buf.String(), mutations, nil
}

type mutator struct {
	rng   *rand.Rand
	root  *html.Node
	kinds []MutationKind
}

// next applies one edit. The kind is drawn at random; kinds without
// candidates are skipped in AllKinds order.
func (m *mutator) next(serial int) (Mutation, error) {
	first := m.rng.IntN(len(m.kinds))
	for i := range m.kinds {
		kind := m.kinds[(first+i)%len(m.kinds)]
		if mut, ok := m.apply(kind, serial); ok {
			return mut, nil
		}
	}
	return Mutation{}, fmt.Errorf("%w for kinds %v", ErrNoCandidates, m.kinds)
}

func (m *mutator) apply(kind MutationKind, serial int) (Mutation, bool) {
	switch kind {
	case InsertElement:
		return m.insertElement(serial)
	case RemoveElement:
		return m.removeElement()
	case EditText:
		return m.editText(serial)
	case ChangeAttribute:
		return m.changeAttribute(serial)
	}
	return Mutation{}, false
}

func (m *mutator) insertElement(serial int) (Mutation, bool) {
	parents := m.collect(func(n *html.Node) bool {
		return n.Type == html.ElementNode && inBody(n) && !isRawText(n) && !isVoid(n)
	})
	if len(parents) == 0 {
		return Mutation{}, false
	}
	parent := parents[m.rng.IntN(len(parents))]

	el := &html.Node{
		Type:     html.ElementNode,
		Data:     "p",
		DataAtom: atom.P,
		Attr:     []html.Attribute{{Key: "data-fixture", Val: fmt.Sprint(serial)}},
	}
	el.AppendChild(&html.Node{Type: html.TextNode, Data: fmt.Sprintf("fixture %d", serial)})

	children := childElements(parent)
	if len(children) == 0 {
		parent.AppendChild(el)
	} else {
		parent.InsertBefore(el, children[m.rng.IntN(len(children))])
	}

	return Mutation{Kind: InsertElement, Path: path(el), Detail: "inserted <p>"}, true
}

func (m *mutator) removeElement() (Mutation, bool) {
	targets := m.collect(func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom != atom.Body && inBody(n)
	})
	if len(targets) == 0 {
		return Mutation{}, false
	}
	target := targets[m.rng.IntN(len(targets))]

	p := path(target)
	target.Parent.RemoveChild(target)

	return Mutation{Kind: RemoveElement, Path: p, Detail: fmt.Sprintf("removed <%s>", target.Data)}, true
}

func (m *mutator) editText(serial int) (Mutation, bool) {
	targets := m.collect(func(n *html.Node) bool {
		return n.Type == html.TextNode && strings.TrimSpace(n.Data) != "" &&
			n.Parent != nil && !isRawText(n.Parent) && inBody(n)
	})
	if len(targets) == 0 {
		return Mutation{}, false
	}
	target := targets[m.rng.IntN(len(targets))]

	words := strings.Fields(target.Data)
	i := m.rng.IntN(len(words))
	old := words[i]
	words[i] = fmt.Sprintf("edit%d", serial)
	target.Data = strings.Join(words, " ")

	return Mutation{Kind: EditText, Path: path(target.Parent), Detail: fmt.Sprintf("%q -> %q", old, words[i])}, true
}

func (m *mutator) changeAttribute(serial int) (Mutation, bool) {
	targets := m.collect(func(n *html.Node) bool {
		return n.Type == html.ElementNode && len(n.Attr) > 0
	})
	if len(targets) == 0 {
		return Mutation{}, false
	}
	target := targets[m.rng.IntN(len(targets))]

	attr := &target.Attr[m.rng.IntN(len(target.Attr))]
	old := attr.Val
	attr.Val = fmt.Sprintf("%s-%d", old, serial)

	return Mutation{Kind: ChangeAttribute, Path: path(target), Detail: fmt.Sprintf("%s=%q -> %q", attr.Key, old, attr.Val)}, true
}

// collect walks the tree in document order
func (m *mutator) collect(match func(*html.Node) bool) []*html.Node {
	var nodes []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			nodes = append(nodes, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(m.root)
	return nodes
}

func inBody(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.DataAtom == atom.Body {
			return true
		}
	}
	return false
}

func isRawText(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Textarea, atom.Title:
		return true
	}
	return false
}

// isVoid reports elements that html.Render refuses to give children
func isVoid(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img, atom.Input,
		atom.Keygen, atom.Link, atom.Meta, atom.Param, atom.Source, atom.Track, atom.Wbr:
		return true
	}
	return false
}

func childElements(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// path renders the element ancestry; siblings with the same name are indexed from 1
func path(n *html.Node) string {
	var parts []string
	for p := n; p != nil && p.Type == html.ElementNode; p = p.Parent {
		part := p.Data
		if p.Parent != nil {
			same, index := 0, 0
			for c := p.Parent.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && c.Data == p.Data {
					same++
					if c == p {
						index = same
					}
				}
			}
			if same > 1 {
				part = fmt.Sprintf("%s[%d]", part, index)
			}
		}
		parts = append(parts, part)
	}

	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ">")
}
