package widgets

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/odvcencio/kuberift/pkg/events"
	"github.com/odvcencio/kuberift/pkg/ui/backend"
	"github.com/odvcencio/kuberift/pkg/ui/runtime"
)

// truncate shortens s to at most width columns, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// padRight pads s with spaces to exactly width columns, truncating if needed.
func padRight(s string, width int) string {
	return runewidth.FillRight(truncate(s, width), width)
}

// wrap splits text into lines no wider than width.
func wrap(text string, width int) []string {
	if width <= 0 {
		return nil
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			for runewidth.StringWidth(word) > width {
				head := runewidth.Truncate(word, width, "")
				if head == "" {
					_, size := utf8.DecodeRuneInString(word)
					head = word[:size]
				}
				if line != "" {
					out = append(out, line)
					line = ""
				}
				out = append(out, head)
				word = word[len(head):]
			}
			switch {
			case line == "":
				line = word
			case runewidth.StringWidth(line)+1+runewidth.StringWidth(word) <= width:
				line += " " + word
			default:
				out = append(out, line)
				line = word
			}
		}
		out = append(out, line)
	}
	return out
}

// Paragraph draws static text.
type Paragraph struct {
	Base
	Text  string
	Style backend.Style
}

// NewParagraph creates a paragraph in the default style.
func NewParagraph(text string) *Paragraph {
	return &Paragraph{Text: text, Style: backend.DefaultStyle()}
}

func (p *Paragraph) Dispatch(events.Event, *runtime.Buffer, runtime.Rect) (Broadcast, error) {
	return Ignore(), nil
}

func (p *Paragraph) Draw(buf *runtime.Buffer, area runtime.Rect) error {
	for i, line := range wrap(p.Text, area.Width) {
		if i >= area.Height {
			break
		}
		buf.SetString(area.X, area.Y+i, line, p.Style, area)
	}
	return nil
}
