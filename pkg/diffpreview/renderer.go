package diffpreview

import (
	"fmt"
	"strings"

	"github.com/loog-project/treediff/pkg/treediff"
)

type RenderOptions struct {
	IndentSize                int
	EnableBackgroundHighlight bool
	// OnlyChanges hides subtrees without any change.
	OnlyChanges bool
}

var DefaultRenderOptions = RenderOptions{
	IndentSize:                2,
	EnableBackgroundHighlight: true,
}

// Render renders a YAML-like diff view between left and right
func Render(left, right any, theme Theme) string {
	return RenderYAML(Annotate(left, right), theme, DefaultRenderOptions)
}

// RenderWithOptions renders a YAML-like diff view with custom options
func RenderWithOptions(left, right any, theme Theme, opts RenderOptions) string {
	return RenderYAML(Annotate(left, right), theme, opts)
}

// RenderYAML renders an annotated tree. Every line starts with a gutter
// marker: `+` added, `-` removed, `~` modified, blank otherwise.
func RenderYAML(node *AnnotatedNode, theme Theme, opts RenderOptions) string {
	var sb strings.Builder
	r := renderer{sb: &sb, theme: theme, opts: opts}
	r.children(node, 0)
	return sb.String()
}

type renderer struct {
	sb    *strings.Builder
	theme Theme
	opts  RenderOptions
}

func (r renderer) line(change ChangeType, indent int, content string) {
	marker := change.Marker()
	if r.opts.EnableBackgroundHighlight {
		marker = r.theme.BackgroundHighlight(change, marker)
	}
	r.sb.WriteString(marker)
	r.sb.WriteString(" ")
	r.sb.WriteString(strings.Repeat(" ", indent*r.opts.IndentSize))
	r.sb.WriteString(content)
	r.sb.WriteString("\n")
}

func (r renderer) label(node *AnnotatedNode, sequence bool) string {
	var label string
	if sequence {
		label = "-"
	} else {
		label = r.theme.SyntaxHighlight("key", fmt.Sprint(node.Key)) + ":"
	}
	if r.opts.EnableBackgroundHighlight {
		label = r.theme.BackgroundHighlight(node.Change, label)
	}
	return label
}

func (r renderer) children(node *AnnotatedNode, indent int) {
	for _, child := range node.Children {
		if r.opts.OnlyChanges && !child.HasChanges() {
			continue
		}
		label := r.label(child, node.Sequence)

		switch {
		case child.Change == Modified:
			r.line(Modified, indent, label+" "+
				r.scalar(child.OldValue, Modified)+
				r.theme.SyntaxHighlight("muted", " -> ")+
				r.scalar(child.Value, Modified))

		case hasChildren(child.Value):
			r.line(child.Change, indent, label)
			if child.Change == Unchanged {
				r.children(child, indent+1)
			} else {
				r.value(child.Value, child.Change, indent+1)
			}

		default:
			r.line(child.Change, indent, label+" "+r.scalar(child.Value, child.Change))
		}
	}
}

func hasChildren(v any) bool {
	return len(treediff.ChildKeys(v)) > 0
}

// value renders a whole (added or removed) subtree with the same marker on
// every line.
func (r renderer) value(v any, change ChangeType, indent int) {
	sequence := treediff.IsSequence(v)
	for _, key := range treediff.ChildKeys(v) {
		item, _ := treediff.Resolve(v, treediff.Path{key})
		label := r.label(&AnnotatedNode{Key: key, Change: change}, sequence)
		if hasChildren(item) {
			r.line(change, indent, label)
			r.value(item, change, indent+1)
			continue
		}
		r.line(change, indent, label+" "+r.scalar(item, change))
	}
}

func (r renderer) scalar(v any, change ChangeType) string {
	var content string
	switch tv := v.(type) {
	case string:
		content = r.theme.SyntaxHighlight("string", fmt.Sprintf("%q", tv))
	case bool:
		content = r.theme.SyntaxHighlight("bool", fmt.Sprintf("%v", tv))
	case int, int64, uint64, float64:
		content = r.theme.SyntaxHighlight("number", fmt.Sprintf("%v", tv))
	case nil:
		content = r.theme.SyntaxHighlight("null", "null")
	default:
		if treediff.IsMapping(v) && len(treediff.ChildKeys(v)) == 0 {
			content = "{}"
		} else if treediff.IsSequence(v) && len(treediff.ChildKeys(v)) == 0 {
			content = "[]"
		} else {
			content = fmt.Sprintf("%v", tv)
		}
	}
	if r.opts.EnableBackgroundHighlight {
		content = r.theme.BackgroundHighlight(change, content)
	}
	return content
}
