package dashboard

import "github.com/odvcencio/kuberift/pkg/ui/widgets"

// Mode is what currently owns the terminal: the widget tree or a raw
// takeover. Exactly one of UI and Raw is active at a time.
type Mode interface {
	isMode()
}

// UI draws the widget tree and dispatches events to it.
type UI struct {
	Widget widgets.Widget
}

// Raw hands the terminal to a raw widget. The widget tree is kept untouched
// in Suspended until the raw run completes.
type Raw struct {
	Raw       widgets.Raw
	Suspended widgets.Widget
}

func (UI) isMode()  {}
func (Raw) isMode() {}

// EnterRaw suspends the widget tree behind r.
func (m UI) EnterRaw(r widgets.Raw) Raw {
	return Raw{Raw: r, Suspended: m.Widget}
}

// Resume returns to the suspended widget tree.
func (m Raw) Resume() UI {
	return UI{Widget: m.Suspended}
}
