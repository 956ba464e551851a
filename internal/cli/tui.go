package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/versionsync/pkg/observability"
	"github.com/matzehuels/versionsync/pkg/pipeline"
)

// =============================================================================
// Messages
// =============================================================================

type serviceStartMsg struct{ name string }

type stageMsg struct{ name, stage string }

type serviceDoneMsg struct {
	name    string
	outcome string
	elapsed time.Duration
	err     error
}

// runDoneMsg is sent once Runner.Run has returned.
type runDoneMsg struct{}

// =============================================================================
// progressHooks - pipeline events to bubbletea messages
// =============================================================================

// progressHooks forwards pipeline events to a running program. tea.Program's
// Send is safe for concurrent use.
type progressHooks struct {
	send func(tea.Msg)
}

func (h progressHooks) OnRunStart(context.Context, string, int)                  {}
func (h progressHooks) OnRunComplete(context.Context, string, int, time.Duration) {}

func (h progressHooks) OnServiceStart(_ context.Context, service string) {
	h.send(serviceStartMsg{name: service})
}

func (h progressHooks) OnStage(_ context.Context, service, stage string) {
	h.send(stageMsg{name: service, stage: stage})
}

func (h progressHooks) OnServiceComplete(_ context.Context, service, outcome string, elapsed time.Duration, err error) {
	h.send(serviceDoneMsg{name: service, outcome: outcome, elapsed: elapsed, err: err})
}

var _ observability.PipelineHooks = progressHooks{}

// =============================================================================
// progressModel - live view of a run
// =============================================================================

type serviceRow struct {
	name    string
	stage   string
	started bool
	done    bool
	outcome string
	elapsed time.Duration
}

// progressModel shows one line per service in configuration order.
type progressModel struct {
	rows     []*serviceRow
	index    map[string]int
	finished int
	spin     spinner
	cancel   context.CancelFunc
	quitting bool
}

func newProgressModel(names []string, cancel context.CancelFunc) progressModel {
	m := progressModel{
		rows:   make([]*serviceRow, len(names)),
		index:  make(map[string]int, len(names)),
		cancel: cancel,
	}
	for i, name := range names {
		m.rows[i] = &serviceRow{name: name}
		m.index[name] = i
	}
	return m
}

func (m progressModel) Init() tea.Cmd {
	return m.spin.tick()
}

func (m progressModel) row(name string) *serviceRow {
	if i, ok := m.index[name]; ok {
		return m.rows[i]
	}
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			m.quitting = true
			return m, tea.Quit
		}
	case spinnerTickMsg:
		m.spin = m.spin.next()
		return m, m.spin.tick()
	case serviceStartMsg:
		if r := m.row(msg.name); r != nil {
			r.started = true
			r.stage = string(pipeline.StageInit)
		}
	case stageMsg:
		if r := m.row(msg.name); r != nil {
			r.stage = msg.stage
		}
	case serviceDoneMsg:
		if r := m.row(msg.name); r != nil && !r.done {
			r.done = true
			r.outcome = msg.outcome
			r.elapsed = msg.elapsed
			m.finished++
		}
	case runDoneMsg:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

var stageLabels = map[string]string{
	string(pipeline.StageInit):               "queued",
	string(pipeline.StageGitResolving):       "fetching release",
	string(pipeline.StageVersionExtracting):  "extracting version",
	string(pipeline.StageRegistryValidating): "checking registry",
	string(pipeline.StageDone):               "finishing",
}

func (m progressModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(fmt.Sprintf("Resolving %d services", len(m.rows))))
	b.WriteString("\n\n")

	width := 0
	for _, r := range m.rows {
		width = max(width, len(r.name))
	}
	for _, r := range m.rows {
		icon, status := StyleDim.Render(iconPending), StyleDim.Render("waiting")
		switch {
		case r.done:
			icon, status = outcomeIcon(r.outcome), r.outcome+StyleDim.Render(fmt.Sprintf(" (%s)", r.elapsed.Round(time.Millisecond)))
		case r.started:
			icon, status = m.spin.View(), StyleDim.Render(stageLabels[r.stage])
		}
		fmt.Fprintf(&b, "%s %-*s  %s\n", icon, width, r.name, status)
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]  q quit", m.finished, len(m.rows))))
	if !m.quitting {
		b.WriteString("\n")
	}
	return b.String()
}

func outcomeIcon(outcome string) string {
	switch outcome {
	case pipeline.KindFound.String():
		return styleIconSuccess.Render(iconSuccess)
	case pipeline.KindError.String():
		return styleIconError.Render(iconError)
	default:
		return styleIconWarning.Render(iconWarning)
	}
}
