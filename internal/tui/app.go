package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdxmph/tasks-tui/internal/tracker"
)

// Model represents the main application state
type Model struct {
	store    *tracker.Store
	view     tracker.View
	filter   tracker.FilterState
	order    tracker.SortOrder
	selected int
	width    int
	height   int
	status   string
	err      error

	// Search mode
	searchMode bool
	search     textinput.Model

	// Filter menu mode
	menuMode     bool
	menuDim      dimension
	menuSelected int

	// Task form mode (new or edit)
	formMode  bool
	formEdit  int64 // id of the task being edited, 0 for a new task
	formField int
	formTitle textinput.Model
	formDesc  textarea.Model
	formArea  int
	formPrio  int
	formResp  int

	// Delete confirmation mode
	deleteConfirmMode bool
	deleteID          int64
}

// dimension is one of the four filter dimensions
type dimension int

const (
	dimArea dimension = iota
	dimPriority
	dimResponsible
	dimStatus
)

func (d dimension) title() string {
	switch d {
	case dimArea:
		return "Filter by area"
	case dimPriority:
		return "Filter by priority"
	case dimResponsible:
		return "Filter by responsible"
	default:
		return "Filter by status"
	}
}

// Styles
var (
	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")).
			Strikethrough(true)

	urgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	waitingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")).
			Bold(true)

	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))

	overlayStyle = borderStyle.
			Padding(1, 2).
			Background(lipgloss.Color("235"))
)

// New creates a new application model
func New(store *tracker.Store, order tracker.SortOrder) (*Model, error) {
	if store == nil {
		return nil, fmt.Errorf("tui requires a task store")
	}

	ti := textinput.New()
	ti.Placeholder = "Search title or description..."
	ti.Width = 30
	ti.CharLimit = 80
	ti.Prompt = "/ "
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230"))
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	title := textinput.New()
	title.Placeholder = "Title"
	title.Width = 40
	title.CharLimit = 200

	desc := textarea.New()
	desc.Placeholder = "Description (optional)"
	desc.SetHeight(4)
	desc.SetWidth(50)
	desc.CharLimit = 1000
	desc.ShowLineNumbers = false

	m := &Model{
		store:     store,
		order:     order,
		search:    ti,
		formTitle: title,
		formDesc:  desc,
	}
	m.refresh()
	return m, nil
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.width > 0 {
			m.search.Width = m.width/2 - 6
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		switch {
		case m.deleteConfirmMode:
			return m.updateDeleteConfirm(msg)
		case m.formMode:
			return m.updateForm(msg)
		case m.menuMode:
			return m.updateMenu(msg)
		case m.searchMode:
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "j", "down":
		if m.selected < len(m.view.Items)-1 {
			m.selected++
		}

	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}

	case "g", "home":
		m.selected = 0

	case "G", "end":
		if len(m.view.Items) > 0 {
			m.selected = len(m.view.Items) - 1
		}

	case "x", " ":
		task, ok := m.current()
		if !ok {
			return m, nil
		}
		updated, err := m.store.ToggleComplete(task.ID)
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.refresh()
		m.status = ""
		if updated.Completed {
			m.status = "Completed: " + updated.Title
			if m.view.Stats.AllDone() {
				m.status = "All tasks complete! Nice work."
			}
		}

	case "n":
		return m.openForm(nil)

	case "e":
		if task, ok := m.current(); ok {
			return m.openForm(&task)
		}

	case "d":
		if task, ok := m.current(); ok {
			m.deleteConfirmMode = true
			m.deleteID = task.ID
		}

	case "/":
		m.searchMode = true
		cmd := m.search.Focus()
		return m, cmd

	case "s":
		m.order = m.order.Toggle()
		m.refresh()
		m.status = "Sorted " + m.order.Label()

	case "a":
		m.openMenu(dimArea)
	case "p":
		m.openMenu(dimPriority)
	case "r":
		m.openMenu(dimResponsible)
	case "c":
		m.openMenu(dimStatus)

	case "C":
		m.filter.Clear()
		m.search.Reset()
		m.refresh()
		m.status = "Filters cleared"

	case "esc":
		m.status = ""
		m.err = nil
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchMode = false
		m.search.Blur()
		m.search.Reset()
		m.filter.SetSearch("")
		m.refresh()
		return m, nil
	case "enter":
		m.searchMode = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.filter.SetSearch(m.search.Value())
	m.refresh()
	return m, cmd
}

func (m *Model) openMenu(d dimension) {
	m.menuMode = true
	m.menuDim = d
	m.menuSelected = 0
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	options := m.menuOptions()

	switch msg.String() {
	case "esc", "q", "enter":
		m.menuMode = false
		m.menuSelected = 0
	case "j", "down":
		if m.menuSelected < len(options)-1 {
			m.menuSelected++
		}
	case "k", "up":
		if m.menuSelected > 0 {
			m.menuSelected--
		}
	case " ", "x":
		if m.menuSelected < len(options) {
			m.toggleOption(options[m.menuSelected])
			m.refresh()
		}
	}
	return m, nil
}

// menuOptions lists the values of the open dimension. Area and responsible
// menus include values that only appear on tasks, so orphaned values stay
// filterable.
func (m Model) menuOptions() []string {
	switch m.menuDim {
	case dimArea:
		values := m.store.Areas()
		for _, t := range m.store.Tasks() {
			values = appendMissing(values, t.Area)
		}
		return values
	case dimPriority:
		values := make([]string, len(tracker.Priorities))
		for i, p := range tracker.Priorities {
			values[i] = string(p)
		}
		return values
	case dimResponsible:
		var values []string
		for _, c := range m.store.Collaborators() {
			values = appendMissing(values, c.Name)
		}
		for _, t := range m.store.Tasks() {
			values = appendMissing(values, t.Responsible)
		}
		return values
	default:
		return []string{string(tracker.StatusPending), string(tracker.StatusCompleted)}
	}
}

func (m *Model) toggleOption(value string) {
	switch m.menuDim {
	case dimArea:
		m.filter.ToggleArea(value)
	case dimPriority:
		m.filter.TogglePriority(tracker.Priority(value))
	case dimResponsible:
		m.filter.ToggleResponsible(value)
	case dimStatus:
		m.filter.ToggleStatus(tracker.Status(value))
	}
}

func (m Model) optionSelected(value string) bool {
	switch m.menuDim {
	case dimArea:
		return m.filter.Areas.Has(value)
	case dimPriority:
		return m.filter.Priorities.Has(tracker.Priority(value))
	case dimResponsible:
		return m.filter.Responsibles.Has(value)
	default:
		return m.filter.Statuses.Has(tracker.Status(value))
	}
}

func (m Model) updateDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if err := m.store.Delete(m.deleteID); err != nil {
			m.fail(err)
		} else {
			m.status = "Task deleted"
		}
		m.refresh()
	}
	// Any other key cancels
	m.deleteConfirmMode = false
	m.deleteID = 0
	return m, nil
}

// refresh re-runs the query and keeps the selection in bounds
func (m *Model) refresh() {
	m.view = m.store.View(m.filter, m.order)
	m.selected = m.ensureValidSelection()
}

// fail records err for display. A stale task id is not fatal: the view is
// reloaded and the user sees a note instead of the error screen.
func (m *Model) fail(err error) {
	if tracker.IsNotFound(err) {
		m.status = "That task no longer exists"
		m.refresh()
		return
	}
	if tracker.IsValidation(err) {
		m.status = err.Error()
		return
	}
	m.err = err
}

func (m Model) current() (tracker.Task, bool) {
	if len(m.view.Items) == 0 || m.selected >= len(m.view.Items) {
		return tracker.Task{}, false
	}
	return m.view.Items[m.selected], true
}

// ensureValidSelection ensures the current selection is within bounds
func (m Model) ensureValidSelection() int {
	if len(m.view.Items) == 0 {
		return 0
	}
	if m.selected >= len(m.view.Items) {
		return len(m.view.Items) - 1
	}
	if m.selected < 0 {
		return 0
	}
	return m.selected
}

// View renders the UI
func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress esc to dismiss, q to quit.", m.err)
	}

	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	switch {
	case m.deleteConfirmMode:
		return m.renderDeleteConfirmation()
	case m.formMode:
		return m.renderForm()
	case m.menuMode:
		return m.renderMenu()
	}

	listWidth := m.width / 2
	detailWidth := m.width - listWidth - 4
	paneHeight := m.height - 5

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		borderStyle.Width(listWidth).Height(paneHeight).Render(m.renderList(listWidth, paneHeight)),
		borderStyle.Width(detailWidth).Height(paneHeight).Render(m.renderDetail(detailWidth)),
	)

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), content, m.renderHelp())
}

// renderHeader renders the progress bar and the status line
func (m Model) renderHeader() string {
	s := m.view.Stats
	barWidth := 20
	filled := s.Percent * barWidth / 100
	bar := progressStyle.Render(strings.Repeat("█", filled)) +
		labelStyle.Render(strings.Repeat("░", barWidth-filled))

	header := fmt.Sprintf("%s %3d%%  %d / %d done", bar, s.Percent, s.Done, s.Total)
	if m.status != "" {
		header += "   " + statusStyle.Render(m.status)
	}
	return header
}

// renderList renders the task list
func (m Model) renderList(width, height int) string {
	var lines []string

	if m.searchMode || m.filter.Search != "" {
		lines = append(lines, m.search.View(), "")
		height -= 2
	}

	items := m.view.Items

	visibleHeight := height - 2 // account for header
	startIdx := 0
	if m.selected >= visibleHeight {
		startIdx = m.selected - visibleHeight + 1
	}

	header := fmt.Sprintf("Tasks (%d) · %s", len(items), m.order.Label())
	if indicators := m.filterIndicators(); len(indicators) > 0 {
		header += " [" + strings.Join(indicators, ", ") + "]"
	}
	lines = append(lines, header)
	lines = append(lines, strings.Repeat("─", max(width-2, 0)))

	for i := startIdx; i < len(items) && i < startIdx+visibleHeight; i++ {
		t := items[i]

		marker := lipgloss.NewStyle().Foreground(lipgloss.Color(m.store.ColorFor(t.Responsible))).Render("▌")
		check := "[ ] "
		if t.Completed {
			check = "[x] "
		}

		title := t.Title
		switch {
		case t.Completed:
			title = doneStyle.Render(title)
		case t.Priority == tracker.PriorityUrgent:
			title += " " + urgentStyle.Render("!")
		case t.Priority == tracker.PriorityWaiting:
			title += " " + waitingStyle.Render("~")
		}

		line := marker + check + title + " " + labelStyle.Render("["+t.Area+"]")
		if i == m.selected {
			line = selectedStyle.Render(marker + check + t.Title + " [" + t.Area + "]")
		}
		lines = append(lines, line)
	}

	if len(items) == 0 {
		if m.filter.Active() {
			lines = append(lines, labelStyle.Render("No tasks match the current filters"))
		} else {
			lines = append(lines, labelStyle.Render("No tasks yet, press n to create one"))
		}
	}

	return strings.Join(lines, "\n")
}

func (m Model) filterIndicators() []string {
	var out []string
	add := func(name string, values []string) {
		if len(values) > 0 {
			out = append(out, name+":"+strings.Join(values, "|"))
		}
	}
	add("area", setValues(m.filter.Areas))
	add("priority", setValues(m.filter.Priorities))
	add("responsible", setValues(m.filter.Responsibles))
	add("status", setValues(m.filter.Statuses))
	return out
}

// renderDetail renders the selected task
func (m Model) renderDetail(width int) string {
	t, ok := m.current()
	if !ok {
		return "No task selected"
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Render(t.Title))
	lines = append(lines, "")
	lines = append(lines, labelStyle.Render("Area:        ")+t.Area)
	lines = append(lines, labelStyle.Render("Priority:    ")+t.Priority.Label())
	resp := lipgloss.NewStyle().Foreground(lipgloss.Color(m.store.ColorFor(t.Responsible))).Render(t.Responsible)
	lines = append(lines, labelStyle.Render("Responsible: ")+resp)
	lines = append(lines, labelStyle.Render("Created:     ")+formatTime(t.CreatedAt))
	if t.CompletedAt != nil {
		lines = append(lines, labelStyle.Render("Completed:   ")+formatTime(*t.CompletedAt))
	} else {
		lines = append(lines, labelStyle.Render("Status:      ")+"pending")
	}

	if t.Attachment != nil {
		a := t.Attachment
		lines = append(lines, labelStyle.Render("Attachment:  ")+fmt.Sprintf("%s (%s, %d bytes)", a.Name, a.MIME, a.Size))
	}

	if t.Description != "" {
		lines = append(lines, "")
		lines = append(lines, wrapText(t.Description, width-2)...)
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderHelp() string {
	var help string
	switch {
	case m.searchMode:
		help = "type to search • enter: keep • esc: clear"
	default:
		help = "j/k: move • x: toggle • n: new • e: edit • d: delete • /: search • s: sort • a/p/r/c: filters • C: clear • q: quit"
	}
	return labelStyle.Render(help)
}

func (m Model) renderMenu() string {
	var lines []string
	lines = append(lines, m.menuDim.title(), "")

	for i, opt := range m.menuOptions() {
		check := "[ ] "
		if m.optionSelected(opt) {
			check = "[x] "
		}
		label := opt
		if m.menuDim == dimPriority {
			label = tracker.Priority(opt).Label()
		}
		line := check + label
		if i == m.menuSelected {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", labelStyle.Render("space: toggle • esc: close"))

	return m.centered(overlayStyle.Render(strings.Join(lines, "\n")))
}

func (m Model) renderDeleteConfirmation() string {
	title := ""
	if t, err := m.store.Get(m.deleteID); err == nil {
		title = t.Title
	}

	content := lipgloss.NewStyle().
		Width(50).
		Align(lipgloss.Center, lipgloss.Center).
		Render(fmt.Sprintf("Delete task?\n\n%s\n\n[y] yes   [any other key] cancel", title))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(1, 2).
		Render(content)

	return m.centered(box)
}

func (m Model) centered(s string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s)
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

// wrapText wraps text to the given width on word boundaries
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if len(line)+1+len(w) > width {
				lines = append(lines, line)
				line = w
				continue
			}
			line += " " + w
		}
		lines = append(lines, line)
	}
	return lines
}

func appendMissing(values []string, v string) []string {
	if v == "" {
		return values
	}
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}

func setValues[T ~string](s tracker.Set[T]) []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, string(v))
	}
	sort.Strings(out)
	return out
}
