package cli

import (
	"context"
	"fmt"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/flirtassist/internal/service"
)

// phaseMsg carries a phase change of the running Suggester.
type phaseMsg service.Phase

// suggestDoneMsg carries the outcome of the run.
type suggestDoneMsg struct {
	res *service.SuggestResult
	err error
}

// runFunc performs the suggestion run. It is called once, off the UI loop.
type runFunc func(ctx context.Context) (*service.SuggestResult, error)

// progressModel is the bubbletea model for a suggestion run.
type progressModel struct {
	run      runFunc
	ctx      context.Context
	cancel   context.CancelFunc
	phase    service.Phase
	progress progress.Model
	theme    Theme
	done     bool
	quitting bool
	res      *service.SuggestResult
	err      error
}

// newProgressModel creates a new progress model.
func newProgressModel(ctx context.Context, run runFunc) progressModel {
	// Create progress bar with color blend
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	ctx, cancel := context.WithCancel(ctx)
	return progressModel{
		run:      run,
		ctx:      ctx,
		cancel:   cancel,
		phase:    service.PhaseIdle,
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init starts the run.
func (m progressModel) Init() tea.Cmd {
	return tea.Batch(
		m.start(),
		m.progress.Init(),
	)
}

func (m progressModel) start() tea.Cmd {
	return func() tea.Msg {
		res, err := m.run(m.ctx)
		return suggestDoneMsg{res: res, err: err}
	}
}

// Update handles messages and returns the updated model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			return m, nil
		}

	case phaseMsg:
		m.phase = service.Phase(msg)
		return m, nil

	case suggestDoneMsg:
		m.done = true
		m.res = msg.res
		m.err = msg.err
		m.cancel()
		return m, tea.Quit

	case progress.FrameMsg:
		// Update progress bar animation
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m progressModel) renderContent() string {
	if m.done {
		return m.finalView()
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", phaseLabel(m.phase)))
	progressBar := m.progress.ViewAs(phasePercent(m.phase))

	hint := "Press Ctrl+C to cancel"
	if m.quitting {
		hint = "Cancelling..."
	}
	return fmt.Sprintf("%s %s\n%s\n", status, progressBar, m.theme.hintStyle().Render(hint))
}

// finalView renders the completion message. Results are printed after the
// program exits so they stay in the scrollback.
func (m progressModel) finalView() string {
	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("✗ %s", m.err)) + "\n"
	}
	return m.theme.completedStyle().Render("✓ Done") + "\n"
}

func phaseLabel(p service.Phase) string {
	switch p {
	case service.PhaseLoading:
		return "loading thread"
	case service.PhaseRequesting:
		return "asking for suggestions"
	case service.PhaseSaving:
		return "saving"
	case service.PhaseSuccess:
		return "done"
	case service.PhaseError:
		return "failed"
	}
	return "starting"
}

func phasePercent(p service.Phase) float64 {
	switch p {
	case service.PhaseLoading:
		return 0.1
	case service.PhaseRequesting:
		return 0.4
	case service.PhaseSaving:
		return 0.85
	case service.PhaseSuccess, service.PhaseError:
		return 1
	}
	return 0
}

// runWithProgress runs a suggestion with the interactive progress UI.
// newRun receives the phase observer to register on the Suggester it builds.
func runWithProgress(ctx context.Context, newRun func(observe func(service.Phase)) runFunc) (*service.SuggestResult, error) {
	var p *tea.Program
	observe := func(ph service.Phase) {
		if p != nil {
			p.Send(phaseMsg(ph))
		}
	}

	model := newProgressModel(ctx, newRun(observe))
	p = tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("progress UI error: %w", err)
	}

	m, ok := finalModel.(progressModel)
	if !ok {
		return nil, fmt.Errorf("progress UI error: unexpected model %T", finalModel)
	}
	return m.res, m.err
}
