package review

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jobsift/internal/archive"
	"jobsift/internal/model"
)

// Lines per posting item in the list view (title + subtitle + blank separator).
const postingItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")) // dim gray

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("39"))

	inactiveHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	postingTitleStyle = lipgloss.NewStyle().
				Bold(true)

	postingSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")). // bright white
				Background(lipgloss.Color("24"))  // dark blue bg

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(14)

	detailValueStyle = lipgloss.NewStyle()

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	descDividerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	descHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	descBodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	relevantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")) // green

	notRelevantStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("196")) // red

	uncertainStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")) // orange

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// classifiedMsg is sent when an async on-demand classification completes.
type classifiedMsg struct {
	fingerprint string
	label       model.Label
	err         error
}

type reviewModel struct {
	runLabel      string
	newRows       []archive.Row
	seenRows      []archive.Row
	leftViewport  viewport.Model
	rightViewport viewport.Model
	activePane    int // 0=left (new), 1=right (seen)
	leftCursor    int
	rightCursor   int
	width         int
	height        int
	ready         bool

	// Detail view state
	view            viewState
	detailRow       archive.Row
	detailViewport  viewport.Model
	showDescription bool

	// On-demand classification state
	classifier      model.Classifier
	classifyLoading bool
	classifyError   string
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case classifiedMsg:
		m.classifyLoading = false
		if msg.err != nil {
			m.classifyError = fmt.Sprintf("classification failed: %v", msg.err)
		} else {
			m.classifyError = ""
			m.setLabel(msg.fingerprint, msg.label)
			if m.detailRow.Fingerprint == msg.fingerprint {
				m.detailRow.Posting.Label = msg.label
			}
			m.recalcContent()
		}
		m.detailViewport.SetContent(m.renderDetail())
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m reviewModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "left", "right":
		m.activePane = 1 - m.activePane
		m.recalcContent()
		return m, nil
	case "up", "k":
		m.moveCursor(-1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "enter":
		return m.openDetailView()
	}

	// Forward other keys (pgup/pgdn/home/end) to the active viewport.
	var cmd tea.Cmd
	if m.activePane == 0 {
		m.leftViewport, cmd = m.leftViewport.Update(msg)
	} else {
		m.rightViewport, cmd = m.rightViewport.Update(msg)
	}
	return m, cmd
}

func (m reviewModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		if m.detailRow.Posting.URL != "" {
			openURL(m.detailRow.Posting.URL)
		}
		return m, nil
	case "r":
		if m.detailRow.Posting.Description != "" {
			m.showDescription = !m.showDescription
			m.detailViewport.SetContent(m.renderDetail())
			m.detailViewport.SetYOffset(0)
		}
		return m, nil
	case "s":
		if m.classifier != nil && !m.classifyLoading && m.detailRow.Posting.Label == model.LabelNone {
			m.classifyLoading = true
			m.classifyError = ""
			m.detailViewport.SetContent(m.renderDetail())
			return m, m.classifyCmd(m.detailRow)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m reviewModel) classifyCmd(row archive.Row) tea.Cmd {
	classifier := m.classifier
	return func() tea.Msg {
		label, err := classifier.Classify(context.Background(), row.Posting)
		return classifiedMsg{fingerprint: row.Fingerprint, label: label, err: err}
	}
}

func (m *reviewModel) setLabel(fingerprint string, label model.Label) {
	for i := range m.newRows {
		if m.newRows[i].Fingerprint == fingerprint {
			m.newRows[i].Posting.Label = label
		}
	}
	for i := range m.seenRows {
		if m.seenRows[i].Fingerprint == fingerprint {
			m.seenRows[i].Posting.Label = label
		}
	}
}

func (m *reviewModel) moveCursor(delta int) {
	if m.activePane == 0 {
		m.leftCursor = clamp(m.leftCursor+delta, 0, max(len(m.newRows)-1, 0))
	} else {
		m.rightCursor = clamp(m.rightCursor+delta, 0, max(len(m.seenRows)-1, 0))
	}
}

func (m *reviewModel) ensureCursorVisible() {
	var vp *viewport.Model
	var cursor int
	if m.activePane == 0 {
		vp = &m.leftViewport
		cursor = m.leftCursor
	} else {
		vp = &m.rightViewport
		cursor = m.rightCursor
	}

	cursorTop := cursor * postingItemHeight
	cursorBottom := cursorTop + postingItemHeight - 1

	if cursorTop < vp.YOffset {
		vp.SetYOffset(cursorTop)
	} else if cursorBottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(cursorBottom - vp.Height + 1)
	}
}

func (m reviewModel) openDetailView() (tea.Model, tea.Cmd) {
	rows := m.activeRows()
	cursor := m.activeCursor()
	if len(rows) == 0 {
		return m, nil
	}

	m.view = viewDetail
	m.detailRow = rows[cursor]
	m.showDescription = false
	m.classifyError = ""
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

func (m *reviewModel) recalcLayout() {
	// 2 border chars per pane + 1 gap between panes.
	paneWidth := max((m.width-5)/2, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.leftViewport = viewport.New(paneWidth, paneHeight)
		m.rightViewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.leftViewport.Width = paneWidth
		m.leftViewport.Height = paneHeight
		m.rightViewport.Width = paneWidth
		m.rightViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *reviewModel) recalcContent() {
	m.leftViewport.SetContent(renderRows(m.newRows, m.leftCursor, m.activePane == 0))
	m.rightViewport.SetContent(renderRows(m.seenRows, m.rightCursor, m.activePane == 1))
}

func (m reviewModel) activeRows() []archive.Row {
	if m.activePane == 0 {
		return m.newRows
	}
	return m.seenRows
}

func (m reviewModel) activeCursor() int {
	if m.activePane == 0 {
		return m.leftCursor
	}
	return m.rightCursor
}

func (m reviewModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.view == viewDetail {
		return m.viewDetail()
	}

	return m.viewList()
}

func (m reviewModel) viewList() string {
	paneWidth := m.leftViewport.Width

	leftHeader := fmt.Sprintf(" New (%d)", len(m.newRows))
	rightHeader := fmt.Sprintf(" Seen (%d)", len(m.seenRows))

	var leftHeaderRendered, rightHeaderRendered string
	var leftBorder, rightBorder lipgloss.Style

	if m.activePane == 0 {
		leftHeaderRendered = activeHeaderStyle.Render(leftHeader)
		rightHeaderRendered = inactiveHeaderStyle.Render(rightHeader)
		leftBorder = activeBorderStyle.Width(paneWidth)
		rightBorder = inactiveBorderStyle.Width(paneWidth)
	} else {
		leftHeaderRendered = inactiveHeaderStyle.Render(leftHeader)
		rightHeaderRendered = activeHeaderStyle.Render(rightHeader)
		leftBorder = inactiveBorderStyle.Width(paneWidth)
		rightBorder = activeBorderStyle.Width(paneWidth)
	}

	leftPane := leftBorder.Render(m.leftViewport.View())
	rightPane := rightBorder.Render(m.rightViewport.View())

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(paneWidth+2).Render(leftHeaderRendered),
		" ",
		lipgloss.NewStyle().Width(paneWidth+2).Render(rightHeaderRendered),
	)

	panes := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, " ", rightPane)

	statusText := fmt.Sprintf(" run %s | %d new | %d seen    ←/→/Tab switch  ↑/↓ cursor  Enter detail  q quit",
		m.runLabel, len(m.newRows), len(m.seenRows))
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return headerRow + "\n" + panes + "\n" + statusBar
}

func (m reviewModel) viewDetail() string {
	title := detailTitleStyle.Render("Posting Details")
	if m.classifyLoading {
		title += "  (classifying...)"
	}

	border := activeBorderStyle.Width(m.width - 2)
	content := border.Render(m.detailViewport.View())

	statusText := " o open URL  esc/backspace back  ↑/↓ scroll  q quit"
	if m.detailRow.Posting.Description != "" {
		statusText = " o open URL  r desc  esc/backspace back  ↑/↓ scroll  q quit"
	}
	if m.classifier != nil && m.detailRow.Posting.Label == model.LabelNone && !m.classifyLoading {
		statusText = " o open URL  r desc  s classify  esc/backspace back  ↑/↓ scroll  q quit"
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return title + "\n" + content + "\n" + statusBar
}

func (m reviewModel) renderDetail() string {
	p := m.detailRow.Posting
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(detailValueStyle.Render(value))
		b.WriteByte('\n')
	}

	addField("Title", p.Title)
	addField("Company", p.Company)
	addField("Location", p.Location)
	addField("Site", p.Site)
	if p.PostedAt != nil {
		addField("Posted At", p.PostedAt.Format("2006-01-02 15:04 MST"))
	}
	addField("URL", p.URL)

	b.WriteByte('\n')
	b.WriteString(detailLabelStyle.Render("Relevance"))
	b.WriteString(renderLabel(p.Label))
	b.WriteByte('\n')

	if m.classifyError != "" {
		b.WriteByte('\n')
		b.WriteString(errorStyle.Render("⚠ "+m.classifyError) + "\n")
	}

	wrapWidth := max(m.width-8, 20)
	if m.classifyLoading {
		b.WriteByte('\n')
		b.WriteString(descHintStyle.Render("  asking the classifier...") + "\n")
	} else if m.classifier != nil && p.Label == model.LabelNone {
		b.WriteByte('\n')
		b.WriteString(descHintStyle.Render("  press s to classify this posting") + "\n")
	}

	if p.Description != "" {
		b.WriteByte('\n')
		if m.showDescription {
			fill := strings.Repeat("─", max(wrapWidth-len("── Description "), 3))
			b.WriteString(descDividerStyle.Render("── Description "+fill) + "\n\n")
			b.WriteString(descBodyStyle.Render(wordWrap(p.Description, wrapWidth)) + "\n")
		} else {
			b.WriteString(descHintStyle.Render("  press r to read the description") + "\n")
		}
	}

	return b.String()
}

func renderLabel(label model.Label) string {
	switch label {
	case model.LabelRelevant:
		return relevantStyle.Render(string(label))
	case model.LabelNotRelevant:
		return notRelevantStyle.Render(string(label))
	case model.LabelUncertain:
		return uncertainStyle.Render(string(label))
	default:
		return postingSubtitleStyle.Render("unclassified")
	}
}

func renderRows(rows []archive.Row, cursor int, isActive bool) string {
	if len(rows) == 0 {
		return "  (no postings)"
	}

	var b strings.Builder
	for i, r := range rows {
		isSelected := isActive && i == cursor

		titleSt := postingTitleStyle
		subtitleSt := postingSubtitleStyle
		prefix := "  "
		if isSelected {
			titleSt = selectedTitleStyle
			subtitleSt = selectedSubtitleStyle
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(r.Posting.Title))
		b.WriteByte('\n')

		subtitle := r.Posting.Company
		if r.Posting.Location != "" {
			subtitle += " · " + r.Posting.Location
		}
		if r.Posting.Label != model.LabelNone {
			subtitle += " · " + string(r.Posting.Label)
		}
		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(subtitle))
		b.WriteByte('\n')

		if i < len(rows)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the interactive split-pane review TUI over one archived run.
// classifier may be nil; when non-nil the 's' key classifies an unlabeled
// posting in the detail view.
func Run(runLabel string, rows []archive.Row, classifier model.Classifier) error {
	var newRows, seenRows []archive.Row
	for _, r := range rows {
		if r.IsNew {
			newRows = append(newRows, r)
		} else {
			seenRows = append(seenRows, r)
		}
	}

	m := reviewModel{
		runLabel:   runLabel,
		newRows:    newRows,
		seenRows:   seenRows,
		classifier: classifier,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
