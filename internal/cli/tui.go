package cli

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stringbean/pkg/core/plan"
	sbio "github.com/matzehuels/stringbean/pkg/io"
	"github.com/matzehuels/stringbean/pkg/pipeline"
)

var planHelpStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// PlanModel - Interactive planning progress
// =============================================================================

// planProgressMsg reports lines drawn so far.
type planProgressMsg plan.Progress

// planDoneMsg carries the planning result.
type planDoneMsg struct {
	doc    *sbio.Document
	cached bool
	err    error
}

// PlanModel is the bubbletea model for interactive planning. It shows a
// progress bar for the count strategy and a line counter for the loss
// strategy, whose length is not known up front.
type PlanModel struct {
	Title    string
	Total    int
	Lines    int
	Started  time.Time
	Stopping bool

	bar    progress.Model
	cancel context.CancelFunc

	doc    *sbio.Document
	cached bool
	err    error
}

// NewPlanModel creates a planning progress model. total <= 0 hides the bar.
// cancel is called when the user quits.
func NewPlanModel(title string, total int, cancel context.CancelFunc) PlanModel {
	return PlanModel{
		Title:   title,
		Total:   total,
		Started: time.Now(),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		cancel:  cancel,
	}
}

func (m PlanModel) Init() tea.Cmd {
	return nil
}

func (m PlanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// Planning stops at the next line; planDoneMsg ends the program.
			if m.cancel != nil {
				m.cancel()
			}
			m.Stopping = true
		}
	case planProgressMsg:
		m.Lines = msg.Lines
	case planDoneMsg:
		m.doc, m.cached, m.err = msg.doc, msg.cached, msg.err
		if m.doc != nil {
			m.Lines = m.doc.Lines()
		}
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-20, 10), 60)
	}
	return m, nil
}

// Percent returns the completed fraction, or 0 without a known total.
func (m PlanModel) Percent() float64 {
	if m.Total <= 0 {
		return 0
	}
	return min(float64(m.Lines)/float64(m.Total), 1)
}

func (m PlanModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n\n")

	elapsed := time.Since(m.Started).Round(100 * time.Millisecond)
	if m.Total > 0 {
		b.WriteString(m.bar.ViewAs(m.Percent()))
		b.WriteString("\n")
		b.WriteString(StyleDim.Render(fmt.Sprintf("%d/%d lines · %s", m.Lines, m.Total, elapsed)))
	} else {
		b.WriteString(StyleNumber.Render(fmt.Sprintf("%d", m.Lines)))
		b.WriteString(StyleDim.Render(fmt.Sprintf(" lines · %s", elapsed)))
	}
	b.WriteString("\n\n")

	if m.Stopping {
		b.WriteString(StyleWarning.Render("stopping..."))
	} else {
		b.WriteString(planHelpStyle.Render("q stop"))
	}
	b.WriteString("\n")
	return b.String()
}

// runInteractive plans img while a bubbletea program shows progress.
// Quitting the program cancels planning; the partial plan is returned.
func runInteractive(ctx context.Context, runner *pipeline.Runner, img *image.Gray, opts pipeline.Options, name string) (*sbio.Document, bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	total := opts.Chords
	if opts.Strategy == pipeline.StrategyLoss {
		total = 0
	}
	p := tea.NewProgram(NewPlanModel("Planning "+name, total, cancel))

	opts.Progress = func(pr plan.Progress) {
		p.Send(planProgressMsg(pr))
	}
	go func() {
		doc, hit, err := runner.PlanWithCacheInfo(ctx, img, opts)
		p.Send(planDoneMsg{doc: doc, cached: hit, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		return nil, false, fmt.Errorf("progress display: %w", err)
	}
	m := final.(PlanModel)
	return m.doc, m.cached, m.err
}
