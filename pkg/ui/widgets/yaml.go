package widgets

import (
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/odvcencio/kuberift/pkg/events"
	"github.com/odvcencio/kuberift/pkg/ui/backend"
	"github.com/odvcencio/kuberift/pkg/ui/runtime"
	"github.com/odvcencio/kuberift/pkg/ui/terminal"
)

// Yaml is a scrollable YAML rendering of an object.
type Yaml struct {
	Base
	lines  []string
	offset int
	height int
}

// NewYaml renders obj as YAML. A marshal failure is shown in place of the
// document.
func NewYaml(obj any) *Yaml {
	data, err := yaml.Marshal(obj)
	if err != nil {
		return &Yaml{lines: []string{"error: " + err.Error()}, height: 1}
	}
	return &Yaml{lines: strings.Split(strings.TrimRight(string(data), "\n"), "\n"), height: 1}
}

// YamlTab builds a tab showing obj.
func YamlTab(name string, obj any) Tab {
	return Tab{Name: name, New: func() Element { return Element{Widget: NewYaml(obj)} }}
}

// Lines returns the rendered document.
func (y *Yaml) Lines() []string {
	return y.lines
}

// Offset returns the first visible line.
func (y *Yaml) Offset() int {
	return y.offset
}

func (y *Yaml) scroll(delta int) {
	last := max(len(y.lines)-y.height, 0)
	y.offset = max(0, min(y.offset+delta, last))
}

func (y *Yaml) Dispatch(ev events.Event, _ *runtime.Buffer, area runtime.Rect) (Broadcast, error) {
	key, ok := events.KeyOf(ev)
	if !ok {
		return Ignore(), nil
	}
	if area.Height > 0 {
		y.height = area.Height
	}
	switch {
	case key.Is(terminal.KeyUp), key.IsRune('k'):
		y.scroll(-1)
	case key.Is(terminal.KeyDown), key.IsRune('j'):
		y.scroll(1)
	case key.Is(terminal.KeyPageUp):
		y.scroll(-y.height)
	case key.Is(terminal.KeyPageDown), key.IsRune(' '):
		y.scroll(y.height)
	case key.Is(terminal.KeyHome), key.IsRune('g'):
		y.offset = 0
	case key.Is(terminal.KeyEnd), key.IsRune('G'):
		y.scroll(len(y.lines))
	default:
		return Ignore(), nil
	}
	return Consume(), nil
}

func (y *Yaml) Draw(buf *runtime.Buffer, area runtime.Rect) error {
	if area.IsEmpty() {
		return nil
	}
	y.height = area.Height
	y.scroll(0)
	buf.Fill(area, ' ', backend.DefaultStyle())

	keyStyle := backend.DefaultStyle().Foreground(backend.ColorCyan)
	for i := 0; i < area.Height && y.offset+i < len(y.lines); i++ {
		line := y.lines[y.offset+i]
		row := area.Y + i
		key, rest, found := strings.Cut(line, ":")
		if !found || strings.ContainsAny(strings.TrimLeft(key, " -"), " \"'") {
			buf.SetString(area.X, row, line, backend.DefaultStyle(), area)
			continue
		}
		n := buf.SetString(area.X, row, key, keyStyle, area)
		buf.SetString(area.X+n, row, ":"+rest, backend.DefaultStyle(), area)
	}
	return nil
}
