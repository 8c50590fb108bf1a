package controller

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	m "github.com/mouse-blink/debugrun/model"
)

// BrowserConfig holds configuration for the failure browser.
type BrowserConfig struct {
	width  int
	height int
	out    io.Writer
	in     io.Reader
}

// BrowserOption is a functional option for ShowBrowser.
type BrowserOption func(*BrowserConfig)

// WithBrowserSize fixes the initial window size instead of querying
// the terminal.
func WithBrowserSize(width, height int) BrowserOption {
	return func(c *BrowserConfig) {
		c.width = width
		c.height = height
	}
}

// WithBrowserOutput redirects the browser rendering, used by tests.
func WithBrowserOutput(w io.Writer) BrowserOption {
	return func(c *BrowserConfig) {
		c.out = w
	}
}

// WithBrowserInput feeds the browser key events from r, used by tests.
func WithBrowserInput(r io.Reader) BrowserOption {
	return func(c *BrowserConfig) {
		c.in = r
	}
}

// ShowBrowser opens the interactive failure browser for a finished
// run. It returns right away when the run recorded no failures.
func ShowBrowser(name string, results *m.Results, opts ...BrowserOption) error {
	if results == nil || results.Failed == 0 {
		return nil
	}

	cfg := BrowserConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.width == 0 {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			cfg.width = w
			cfg.height = h
		}
	}

	mdl := newBrowserModel(name, results, cfg.width, cfg.height)

	teaOpts := []tea.ProgramOption{}
	if cfg.out != nil {
		teaOpts = append(teaOpts, tea.WithOutput(cfg.out))
	}

	if cfg.in != nil {
		teaOpts = append(teaOpts, tea.WithInput(cfg.in))
	}

	if _, err := tea.NewProgram(mdl, teaOpts...).Run(); err != nil {
		return fmt.Errorf("failed to run failure browser: %w", err)
	}

	return nil
}

// failureDelegate renders one failure per list row.
type failureDelegate struct {
	offset int
}

func (d failureDelegate) Height() int  { return 1 }
func (d failureDelegate) Spacing() int { return 0 }
func (d failureDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d failureDelegate) Render(w io.Writer, l list.Model, index int, item list.Item) {
	fi, ok := item.(failureItem)
	if !ok {
		return
	}

	isSelected := index == l.Index()

	errWidth := l.Width() - 34
	if errWidth < 10 {
		errWidth = 10
	}

	var line string

	if isSelected {
		selStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("6")).
			Bold(true)

		line = fmt.Sprintf("%s  %s",
			selStyle.Width(32).Align(lipgloss.Left).Render(fmt.Sprintf("%-30s", fi.failure.Test)),
			selStyle.Render(animateScroll(fi.failure.Err, errWidth, d.offset)),
		)
	} else {
		nameStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true).
			Width(32).
			Align(lipgloss.Left)

		errStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

		line = fmt.Sprintf("%s  %s",
			nameStyle.Render(fmt.Sprintf("%-30s", fi.failure.Test)),
			errStyle.Render(truncateToWidth(fi.failure.Err, errWidth)),
		)
	}

	_, _ = fmt.Fprint(w, line)
}

// browserModel is the interactive list of failures shown after a run
// with at least one failed test.
type browserModel struct {
	name         string
	results      *m.Results
	width        int
	height       int
	progressBar  progress.Model
	failuresList list.Model
	delegate     failureDelegate
	animOffset   int
	lastSelected int
	showDetail   bool
	copied       bool
}

func newBrowserModel(name string, results *m.Results, width, height int) browserModel {
	prog := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	if width == 0 {
		width = 80
	}

	if height == 0 {
		height = 24
	}

	items := make([]list.Item, 0, len(results.Failures))
	for _, failure := range results.Failures {
		items = append(items, failureItem{failure: failure})
	}

	delegate := failureDelegate{}
	failuresList := list.New(items, delegate, width-4, height-10)
	failuresList.SetShowPagination(false)
	failuresList.SetShowFilter(true)
	failuresList.SetShowHelp(false)
	failuresList.SetShowTitle(false)
	failuresList.SetShowStatusBar(false)
	failuresList.FilterInput.Placeholder = "Filter failures…"

	return browserModel{
		name:         name,
		results:      results,
		width:        width,
		height:       height,
		progressBar:  prog,
		failuresList: failuresList,
		delegate:     delegate,
		lastSelected: -1,
	}
}

func (b browserModel) Init() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (b browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b = b.handleWindowSize(msg)

	case tea.KeyMsg:
		b, cmd = b.handleKeyMsg(msg)

	case tea.MouseMsg:
		b, cmd = b.handleMouseMsg(msg)

	case tickMsg:
		return b.handleTickMsg(msg)
	}

	return b, cmd
}

func (b browserModel) handleKeyMsg(msg tea.KeyMsg) (browserModel, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return b, tea.Quit

	case "enter", " ":
		if b.failuresList.FilterState() != list.Filtering {
			b.showDetail = !b.showDetail

			return b, nil
		}

	case "c":
		if b.failuresList.FilterState() != list.Filtering {
			b = b.copySelected()

			return b, nil
		}
	}

	var cmd tea.Cmd

	b.failuresList, cmd = b.failuresList.Update(msg)
	b = b.resetOnSelectionChange()

	return b, cmd
}

func (b browserModel) handleMouseMsg(msg tea.MouseMsg) (browserModel, tea.Cmd) {
	var cmd tea.Cmd

	b.failuresList, cmd = b.failuresList.Update(msg)
	b = b.resetOnSelectionChange()

	if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease && b.failuresList.FilterState() != list.Filtering {
		b.showDetail = !b.showDetail
	}

	return b, cmd
}

func (b browserModel) handleWindowSize(msg tea.WindowSizeMsg) browserModel {
	b.width = msg.Width
	b.height = msg.Height

	b.progressBar.Width = b.width - 8
	if b.progressBar.Width < 20 {
		b.progressBar.Width = 20
	}

	return b
}

func (b browserModel) handleTickMsg(_ tickMsg) (browserModel, tea.Cmd) {
	if b.failuresList.FilterState() != list.Filtering {
		b.animOffset++
		b.delegate.offset = b.animOffset
		b.failuresList.SetDelegate(b.delegate)
	}

	return b, tea.Tick(time.Millisecond*150, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// resetOnSelectionChange restarts the scroll animation and closes the
// detail box when the cursor moves to another failure.
func (b browserModel) resetOnSelectionChange() browserModel {
	if b.failuresList.Index() == b.lastSelected {
		return b
	}

	b.lastSelected = b.failuresList.Index()
	b.animOffset = 0
	b.delegate.offset = 0
	b.failuresList.SetDelegate(b.delegate)
	b.showDetail = false
	b.copied = false

	return b
}

// copySelected puts the plain-text failure report on the system
// clipboard.
func (b browserModel) copySelected() browserModel {
	item := b.failuresList.SelectedItem()

	fi, ok := item.(failureItem)
	if !ok {
		return b
	}

	if err := clipboard.WriteAll(plainFailure(fi.failure)); err == nil {
		b.copied = true
	}

	return b
}

func (b browserModel) selectedFailure() (m.Failure, bool) {
	item := b.failuresList.SelectedItem()

	fi, ok := item.(failureItem)
	if !ok {
		return m.Failure{}, false
	}

	return fi.failure, true
}

func (b browserModel) View() string {
	accentColor := lipgloss.Color("6")

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true).
		Padding(1, 0, 0, 2)

	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Padding(0, 0, 1, 2)

	accentStyle := lipgloss.NewStyle().Foreground(accentColor)

	title := titleStyle.Render(fmt.Sprintf("🧪 %s Failed Tests", b.name))

	passRate := 0.0
	if b.results.Total > 0 {
		passRate = float64(b.results.Succeeded()) / float64(b.results.Total)
	}

	summary := summaryStyle.Render(fmt.Sprintf(
		"Total: %s  •  Succeeded: %s  •  Failed: %s",
		accentStyle.Render(fmt.Sprintf("%d", b.results.Total)),
		accentStyle.Render(fmt.Sprintf("%d", b.results.Succeeded())),
		accentStyle.Render(fmt.Sprintf("%d", b.results.Failed)),
	))

	progressStyle := lipgloss.NewStyle().Padding(0, 2)
	progressView := progressStyle.Render(b.progressBar.ViewAs(passRate))

	failuresBox := b.renderFailuresBox(accentColor)

	footerText := "↑/k up • ↓/j down • g/G top/bottom • / filter • enter/space detail • c copy • q quit"
	if b.copied {
		footerText = "copied to clipboard • " + footerText
	}

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Align(lipgloss.Center).
		Width(b.width)

	footer := footerStyle.Render(footerText)

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		summary,
		progressView,
		failuresBox,
		footer,
	)
}

func (b browserModel) renderFailuresBox(accentColor lipgloss.Color) string {
	listWidth := b.width - 4
	detailHeight := b.detailBoxHeight()

	listHeight := b.height - 10 - detailHeight
	if listHeight < 5 {
		listHeight = 5
	}

	b.failuresList.SetHeight(listHeight)
	b.failuresList.SetWidth(listWidth)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Bold(true).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("8")).
		Width(listWidth)

	headers := headerStyle.Render(fmt.Sprintf("%-32s  %s", "Test", "Panic"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Margin(0, 1, 0, 0).
		Padding(0, 1)

	box := boxStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			headers,
			b.failuresList.View(),
		),
	)

	detail := b.renderDetailBox(accentColor, listWidth)
	if detail == "" {
		return box
	}

	return lipgloss.JoinVertical(lipgloss.Left, box, detail)
}

func (b browserModel) detailMaxLines() int {
	maxLines := b.height / 2
	if maxLines < 8 {
		maxLines = 8
	}

	if maxLines > 24 {
		maxLines = 24
	}

	return maxLines
}

func (b browserModel) detailBoxHeight() int {
	if !b.showDetail {
		return 0
	}

	failure, ok := b.selectedFailure()
	if !ok {
		return 0
	}

	lines := detailLines(failure)

	maxLines := b.detailMaxLines()
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}

	return len(lines) + 3
}

func (b browserModel) renderDetailBox(accentColor lipgloss.Color, width int) string {
	if !b.showDetail {
		return ""
	}

	failure, ok := b.selectedFailure()
	if !ok {
		return ""
	}

	lines := detailLines(failure)
	maxLines := b.detailMaxLines()
	truncated := false

	if len(lines) > maxLines {
		lines = lines[:maxLines-1]
		truncated = true
	}

	contentWidth := width - 4
	if contentWidth < 10 {
		contentWidth = 10
	}

	bodyLines := make([]string, 0, len(lines)+1)
	for _, line := range lines {
		bodyLines = append(bodyLines, renderDetailLine(line, contentWidth))
	}

	if truncated {
		bodyLines = append(bodyLines, "…")
	}

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Bold(true)

	header := headerStyle.Render(truncateToWidth(fmt.Sprintf("%s • %s", failure.Group, failure.Test), contentWidth))

	body := lipgloss.JoinVertical(lipgloss.Left, bodyLines...)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Margin(0, 1, 0, 0).
		Padding(0, 1).
		Width(width)

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, body))
}

// detailLines flattens a failure into the lines the detail box shows:
// traceback, captured output and locals.
func detailLines(f m.Failure) []string {
	lines := strings.Split(f.Traceback(), "\n")

	if f.Output != "" {
		lines = append(lines, "  Captured stdout calls:")
		lines = append(lines, strings.Split(strings.TrimRight(f.Output, "\n"), "\n")...)
	}

	if len(f.Locals) > 0 {
		lines = append(lines, "  Local variables:")

		keys := make([]string, 0, len(f.Locals))
		for key := range f.Locals {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		for _, key := range keys {
			lines = append(lines, fmt.Sprintf("    %s = %s", key, f.Locals[key]))
		}
	}

	return lines
}

func renderDetailLine(line string, width int) string {
	trimmed := strings.TrimSpace(line)

	style := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	switch {
	case strings.HasPrefix(trimmed, "File \""):
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	case strings.HasPrefix(trimmed, "panic:"):
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	case trimmed == "Captured stdout calls:" || trimmed == "Local variables:":
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Bold(true)
	case trimmed == "":
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	}

	return style.Render(truncateToWidth(line, width))
}

// plainFailure renders a failure without styling, for the clipboard.
func plainFailure(f m.Failure) string {
	text := fmt.Sprintf("FAILED TEST: %s\n%s", f.Test, f.Traceback())

	if f.Output != "" {
		text += "\n  Captured stdout calls:\n" + strings.TrimRight(f.Output, "\n")
	}

	if len(f.Locals) > 0 {
		keys := make([]string, 0, len(f.Locals))
		for key := range f.Locals {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		text += "\n  Local variables:"
		for _, key := range keys {
			text += fmt.Sprintf("\n    %s = %s", key, f.Locals[key])
		}
	}

	return strings.TrimRight(text, "\n") + "\n"
}

func animateScroll(text string, width int, offset int) string {
	if width <= 0 {
		return ""
	}

	textWidth := lipgloss.Width(text)
	if textWidth <= width {
		return text
	}

	// Hold still for a few ticks before scrolling starts.
	pause := 5

	if offset < pause {
		return truncateToWidth(text, width)
	}

	effectiveStep := offset - pause

	runes := []rune(text + "   ")
	n := len(runes)

	if n == 0 {
		return ""
	}

	start := effectiveStep % n

	res := make([]rune, 0, width)
	for i := range width {
		idx := (start + i) % n
		res = append(res, runes[idx])
	}

	return string(res)
}

func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}

	if lipgloss.Width(text) <= width {
		return text
	}

	ellipsis := "…"

	maxWidth := width - lipgloss.Width(ellipsis)
	if maxWidth <= 0 {
		return ellipsis
	}

	currentWidth := 0

	result := make([]rune, 0, len(text))
	for _, r := range text {
		rWidth := lipgloss.Width(string(r))
		if currentWidth+rWidth > maxWidth {
			break
		}

		result = append(result, r)
		currentWidth += rWidth
	}

	return string(result) + ellipsis
}
