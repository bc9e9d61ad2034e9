package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	m "glide.dev/pkg/glide/internal/model"
	"glide.dev/pkg/glide/pkg"
)

// maxRecent is the number of routed files kept on screen.
const maxRecent = 8

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	stageStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
	acceptedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	rejectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	skippedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	input  io.Reader
	output io.Writer

	mu      sync.Mutex
	program *tea.Program
	group   *errgroup.Group
}

// NewTUI creates a new TUI. A nil input disables key handling.
func NewTUI(input io.Reader, output io.Writer) *TUI {
	return &TUI{input: input, output: output}
}

// Start launches the Bubble Tea program in the background.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.program != nil {
		return errors.New("tui already started")
	}

	model := newCurateModel(newStartConfig(options))

	t.program = tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(t.input),
		tea.WithOutput(t.output),
	)

	group, _ := errgroup.WithContext(ctx)
	program := t.program

	group.Go(func() error {
		_, err := program.Run()
		return err
	})

	t.group = group

	return nil
}

// Close stops the program and waits for it to restore the terminal.
func (t *TUI) Close(ctx context.Context) {
	if program := t.current(); program != nil {
		program.Quit()
	}

	t.Wait(ctx)
}

// Wait blocks until the program exits.
func (t *TUI) Wait(_ context.Context) {
	t.mu.Lock()
	group := t.group
	t.mu.Unlock()

	if group == nil {
		return
	}

	if err := group.Wait(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		slog.Error("TUI exited with error", "error", err)
	}
}

// DisplayStage shows the current stage next to the spinner.
func (t *TUI) DisplayStage(ctx context.Context, stage Stage) {
	if err := ctx.Err(); err != nil {
		return
	}

	t.send(stageMsg{stage: stage})
}

// DisplayCandidate adds a routed file to the live view.
func (t *TUI) DisplayCandidate(ctx context.Context, c m.Candidate) {
	if err := ctx.Err(); err != nil {
		return
	}

	t.send(candidateMsg{candidate: c})
}

// DisplayBatch renders the final summary and lets the program exit.
func (t *TUI) DisplayBatch(ctx context.Context, batch m.Batch, journal pkg.FileSpill[m.Candidate]) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tally, err := tallyJournal(journal)
	if err != nil {
		return err
	}

	t.send(batchMsg{summary: renderSummary(batch, tally)})

	return nil
}

func (t *TUI) current() *tea.Program {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.program
}

func (t *TUI) send(msg tea.Msg) {
	if program := t.current(); program != nil {
		program.Send(msg)
	}
}

func renderSummary(batch m.Batch, tally decisionTally) string {
	var b strings.Builder

	b.WriteString(outcomeStyle(batch.Outcome).Render(batchHeadline(batch)))
	b.WriteString("\n")

	if batch.Reason != "" {
		b.WriteString(faintStyle.Render("Reason: " + batch.Reason))
		b.WriteString("\n")
	}

	if len(batch.Buckets) > 0 {
		b.WriteString("\n")
		b.WriteString(renderBucketTable(batch.Buckets))
	}

	b.WriteString("\n")
	b.WriteString(renderDecisionTable(tally))

	if batch.Archive != "" {
		fmt.Fprintf(&b, "Archive: %s\n", batch.Archive)
	}

	return b.String()
}

func outcomeStyle(outcome m.Outcome) lipgloss.Style {
	switch outcome {
	case m.OutcomeParsable:
		return acceptedStyle.Bold(true)
	case m.OutcomeRejected:
		return rejectedStyle.Bold(true)
	default:
		return skippedStyle.Bold(true)
	}
}

func decisionStyle(decision m.Decision) lipgloss.Style {
	switch decision {
	case m.Accepted:
		return acceptedStyle
	case m.Rejected:
		return rejectedStyle
	case m.Skipped:
		return skippedStyle
	default:
		return faintStyle
	}
}

type (
	stageMsg     struct{ stage Stage }
	candidateMsg struct{ candidate m.Candidate }
	batchMsg     struct{ summary string }
)

// curateModel is the Bubble Tea model for a running curation.
type curateModel struct {
	spinner   spinner.Model
	root      m.Path
	runID     string
	stage     Stage
	tally     decisionTally
	recent    []m.Candidate
	summary   string
	interrupt func()
	width     int
	done      bool
	quitting  bool
}

func newCurateModel(cfg StartConfig) curateModel {
	return curateModel{
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(stageStyle)),
		root:      cfg.root,
		runID:     cfg.runID,
		interrupt: cfg.interrupt,
	}
}

func (cm curateModel) Init() tea.Cmd {
	return cm.spinner.Tick
}

func (cm curateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		cm.width = msg.Width
		return cm, nil

	case tea.KeyMsg:
		return cm.handleKeyPress(msg)

	case spinner.TickMsg:
		if cm.done {
			return cm, nil
		}

		var cmd tea.Cmd
		cm.spinner, cmd = cm.spinner.Update(msg)

		return cm, cmd

	case stageMsg:
		cm.stage = msg.stage
		return cm, nil

	case candidateMsg:
		cm.tally.add(msg.candidate.Decision)

		cm.recent = append(cm.recent, msg.candidate)
		if len(cm.recent) > maxRecent {
			cm.recent = cm.recent[len(cm.recent)-maxRecent:]
		}

		return cm, nil

	case batchMsg:
		cm.summary = msg.summary
		cm.done = true

		return cm, tea.Quit
	}

	return cm, nil
}

//nolint:exhaustive // Only abort keys are handled
func (cm curateModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return cm.abort()
	default:
	}

	if msg.String() == "q" {
		return cm.abort()
	}

	return cm, nil
}

func (cm curateModel) abort() (tea.Model, tea.Cmd) {
	if !cm.done && cm.interrupt != nil {
		cm.interrupt()
	}

	cm.quitting = true

	return cm, tea.Quit
}

func (cm curateModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("glide"))

	if cm.root != "" {
		fmt.Fprintf(&b, " %s", cm.root)
	}

	if cm.runID != "" {
		b.WriteString(faintStyle.Render(" run " + cm.runID))
	}

	b.WriteString("\n\n")

	if cm.done {
		b.WriteString(cm.summary)
		return b.String()
	}

	stage := string(cm.stage)
	if stage == "" {
		stage = "starting"
	}

	fmt.Fprintf(&b, "%s %s\n", cm.spinner.View(), stageStyle.Render(stage))
	fmt.Fprintf(&b, "%s %d  %s %d  %s %d\n\n",
		acceptedStyle.Render("accepted"), cm.tally.accepted,
		rejectedStyle.Render("rejected"), cm.tally.rejected,
		skippedStyle.Render("skipped"), cm.tally.skipped,
	)

	for _, c := range cm.recent {
		line := fmt.Sprintf("#%d %s", c.Index, c.Path)
		if cm.width > 0 && len(line) > cm.width-12 && cm.width > 16 {
			line = "..." + line[len(line)-(cm.width-15):]
		}

		fmt.Fprintf(&b, "  %s %s\n", decisionStyle(c.Decision).Render(fmt.Sprintf("%-8s", c.Decision)), line)
	}

	if cm.quitting {
		b.WriteString("\n" + faintStyle.Render("aborting...") + "\n")
	} else {
		b.WriteString("\n" + faintStyle.Render("q/esc: abort") + "\n")
	}

	return b.String()
}
