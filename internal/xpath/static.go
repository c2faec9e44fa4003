package xpath

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const nodeNameText = "#text"

var segmentPattern = regexp.MustCompile(`^([^\[\]/]+)\[(\d+)\]$`)

type UnresolvedPathError struct {
	Path    string
	Segment string
}

func (e *UnresolvedPathError) Error() string {
	return fmt.Sprintf("path %s does not resolve at segment %s", e.Path, e.Segment)
}

func NewUnresolvedPathError(path, segment string) error {
	return &UnresolvedPathError{
		Path:    path,
		Segment: segment,
	}
}

// FromHTML runs the in-page search against a static document.
func FromHTML(r io.Reader, text string) (string, bool, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", false, fmt.Errorf("failure creating goquery document: %w", err)
	}
	match, err := Find(doc, text)
	if err != nil {
		return "", false, err
	}
	if match == nil {
		return "", false, nil
	}
	return Path(match), true, nil
}

// Find returns the first element in document order whose first text child contains text, or nil.
func Find(doc *goquery.Document, text string) (*goquery.Selection, error) {
	needle := strings.TrimSpace(text)
	if needle == "" {
		return nil, ErrEmptyText
	}
	var match *goquery.Selection
	doc.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(firstText(s), needle) {
			match = s
			return false
		}
		return true
	})
	return match, nil
}

// Path builds the positional path of the first element in s.
func Path(s *goquery.Selection) string {
	var segments []string
	for cur := s.First(); cur.Length() > 0; cur = cur.Parent() {
		name := goquery.NodeName(cur)
		index := cur.PrevAll().FilterFunction(hasNodeName(name)).Length() + 1
		segments = append(segments, name+"["+strconv.Itoa(index)+"]")
	}
	var sb strings.Builder
	for i := len(segments) - 1; i >= 0; i-- {
		sb.WriteString("/" + segments[i])
	}
	return sb.String()
}

func Resolve(doc *goquery.Document, path string) (*goquery.Selection, error) {
	cur := doc.Selection
	for _, segment := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		m := segmentPattern.FindStringSubmatch(segment)
		if m == nil {
			return nil, NewUnresolvedPathError(path, segment)
		}
		index, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, NewUnresolvedPathError(path, segment)
		}
		children := cur.Children().FilterFunction(hasNodeName(m[1]))
		if index < 1 || index > children.Length() {
			return nil, NewUnresolvedPathError(path, segment)
		}
		cur = children.Eq(index - 1)
	}
	return cur, nil
}

// firstText mirrors contains(text(), ...) which only looks at the first text child.
func firstText(s *goquery.Selection) string {
	return s.Contents().FilterFunction(hasNodeName(nodeNameText)).First().Text()
}

func hasNodeName(name string) func(int, *goquery.Selection) bool {
	return func(_ int, s *goquery.Selection) bool {
		return goquery.NodeName(s) == name
	}
}
