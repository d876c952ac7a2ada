package view

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var ErrMissingElement = errors.New("modal element missing")

// Modal is rendered modal markup plus the id of its root element.
type Modal struct {
	RootID string
	HTML   template.HTML
}

// AttachSpec names the elements a mounted modal must expose.
type AttachSpec struct {
	RootID   string
	Required []string
}

// MissingElementsError lists ids not found when attaching a modal.
type MissingElementsError struct {
	RootID string
	IDs    []string
}

func (e *MissingElementsError) Error() string {
	return fmt.Sprintf("modal %s: missing elements %s", e.RootID, strings.Join(e.IDs, ", "))
}

func (e *MissingElementsError) Unwrap() error { return ErrMissingElement }

// Mount inserts the modal at the end of <body>, first removing every
// element that already carries the modal's root id, so one page never holds
// two instances of the same modal.
func Mount(page []byte, m Modal) ([]byte, error) {
	if m.RootID == "" {
		return nil, errors.New("mount: modal has no root id")
	}
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	body := findFirst(doc, func(n *html.Node) bool { return n.DataAtom == atom.Body })
	if body == nil {
		return nil, errors.New("mount: page has no body")
	}

	for _, n := range findAll(doc, func(n *html.Node) bool { return attr(n, "id") == m.RootID }) {
		n.Parent.RemoveChild(n)
	}

	nodes, err := html.ParseFragment(strings.NewReader(string(m.HTML)), body)
	if err != nil {
		return nil, fmt.Errorf("parse modal %s: %w", m.RootID, err)
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Attach checks that the mounted modal exposes every required element
// inside its root. Mounting is synchronous, so a single lookup is final.
func Attach(page []byte, want AttachSpec) error {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return fmt.Errorf("parse page: %w", err)
	}
	root := findFirst(doc, func(n *html.Node) bool { return attr(n, "id") == want.RootID })
	if root == nil {
		return &MissingElementsError{RootID: want.RootID, IDs: []string{want.RootID}}
	}
	var missing []string
	for _, id := range want.Required {
		if findFirst(root, func(n *html.Node) bool { return attr(n, "id") == id }) == nil {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return &MissingElementsError{RootID: want.RootID, IDs: missing}
	}
	return nil
}

// CountByID returns how many elements in page carry id.
func CountByID(page []byte, id string) int {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return 0
	}
	return len(findAll(doc, func(n *html.Node) bool { return attr(n, "id") == id }))
}

func attr(n *html.Node, key string) string {
	if n.Type != html.ElementNode {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}
