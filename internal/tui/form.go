package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdxmph/tasks-tui/internal/tracker"
)

// Form field indices
const (
	FormFieldTitle = iota
	FormFieldDescription
	FormFieldArea
	FormFieldPriority
	FormFieldResponsible
	FormFieldCount // Total number of fields
)

// openForm shows the task form, prefilled from t when editing
func (m Model) openForm(t *tracker.Task) (tea.Model, tea.Cmd) {
	m.formMode = true
	m.formField = FormFieldTitle
	m.formTitle.Reset()
	m.formDesc.Reset()
	m.formArea = 0
	m.formPrio = priorityIndex(tracker.PriorityNoUrgency)
	m.formResp = 0
	m.formEdit = 0
	m.status = ""

	if t != nil {
		m.formEdit = t.ID
		m.formTitle.SetValue(t.Title)
		m.formDesc.SetValue(t.Description)
		m.formArea = indexOf(m.formAreas(), t.Area)
		m.formPrio = priorityIndex(t.Priority)
		m.formResp = indexOf(m.formResponsibles(), t.Responsible)
	}

	m.formDesc.Blur()
	cmd := m.formTitle.Focus()
	return m, cmd
}

func (m Model) closeForm() Model {
	m.formMode = false
	m.formEdit = 0
	m.formField = FormFieldTitle
	m.formTitle.Blur()
	m.formDesc.Blur()
	return m
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.closeForm(), nil

	case "ctrl+s":
		return m.submitForm()

	case "tab", "down":
		if m.formField == FormFieldDescription && msg.String() == "down" {
			break
		}
		return m.focusField(m.formField + 1)

	case "shift+tab", "up":
		if m.formField == FormFieldDescription && msg.String() == "up" {
			break
		}
		return m.focusField(m.formField - 1)

	case "enter":
		switch m.formField {
		case FormFieldTitle, FormFieldArea, FormFieldPriority:
			return m.focusField(m.formField + 1)
		case FormFieldResponsible:
			return m.submitForm()
		}

	case "left", "h":
		if m.cycleSelector(-1) {
			return m, nil
		}

	case "right", "l":
		if m.cycleSelector(1) {
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.formField {
	case FormFieldTitle:
		m.formTitle, cmd = m.formTitle.Update(msg)
	case FormFieldDescription:
		m.formDesc, cmd = m.formDesc.Update(msg)
	}
	return m, cmd
}

func (m Model) focusField(field int) (tea.Model, tea.Cmd) {
	if field < 0 || field >= FormFieldCount {
		return m, nil
	}
	m.formTitle.Blur()
	m.formDesc.Blur()
	m.formField = field

	switch field {
	case FormFieldTitle:
		cmd := m.formTitle.Focus()
		return m, cmd
	case FormFieldDescription:
		cmd := m.formDesc.Focus()
		return m, cmd
	}
	return m, nil
}

// cycleSelector moves the choice of the focused selector field. It reports
// false when the focused field is a text field.
func (m *Model) cycleSelector(delta int) bool {
	switch m.formField {
	case FormFieldArea:
		m.formArea = cycle(m.formArea, delta, len(m.formAreas()))
	case FormFieldPriority:
		m.formPrio = cycle(m.formPrio, delta, len(tracker.Priorities))
	case FormFieldResponsible:
		m.formResp = cycle(m.formResp, delta, len(m.formResponsibles()))
	default:
		return false
	}
	return true
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	in := tracker.NewTask{
		Title:       m.formTitle.Value(),
		Description: m.formDesc.Value(),
		Area:        pick(m.formAreas(), m.formArea),
		Priority:    string(tracker.Priorities[m.formPrio]),
		Responsible: pick(m.formResponsibles(), m.formResp),
	}

	var (
		t   tracker.Task
		err error
	)
	if m.formEdit != 0 {
		t, err = m.store.Edit(m.formEdit, in)
	} else {
		t, err = m.store.Create(in)
	}
	if err != nil {
		m.fail(err)
		if tracker.IsNotFound(err) {
			return m.closeForm(), nil
		}
		return m, nil
	}

	m = m.closeForm()
	m.refresh()
	m.selectTask(t.ID)
	m.status = "Saved: " + t.Title
	return m, nil
}

func (m *Model) selectTask(id int64) {
	for i, t := range m.view.Items {
		if t.ID == id {
			m.selected = i
			return
		}
	}
}

// formAreas lists the areas offered by the form. When editing a task whose
// area was removed from the list, that area is offered too.
func (m Model) formAreas() []string {
	areas := m.store.Areas()
	if m.formEdit != 0 {
		if t, err := m.store.Get(m.formEdit); err == nil {
			areas = appendMissing(areas, t.Area)
		}
	}
	return areas
}

func (m Model) formResponsibles() []string {
	var names []string
	for _, c := range m.store.Collaborators() {
		names = append(names, c.Name)
	}
	if m.formEdit != 0 {
		if t, err := m.store.Get(m.formEdit); err == nil {
			names = appendMissing(names, t.Responsible)
		}
	}
	return names
}

func (m Model) renderForm() string {
	heading := "New task"
	if m.formEdit != 0 {
		heading = "Edit task"
	}

	var lines []string
	lines = append(lines, heading, "")

	label := func(field int, text string) string {
		if field == m.formField {
			return selectedStyle.Render(text)
		}
		return labelStyle.Render(text)
	}

	lines = append(lines, label(FormFieldTitle, "Title"), m.formTitle.View(), "")
	lines = append(lines, label(FormFieldDescription, "Description"), m.formDesc.View(), "")

	selector := func(field int, name string, values []string, idx int) string {
		value := pick(values, idx)
		if value == "" {
			value = "(none)"
		}
		if field == m.formField {
			value = selectedStyle.Render("< " + value + " >")
		}
		return label(field, name) + "  " + value
	}

	lines = append(lines, selector(FormFieldArea, "Area       ", m.formAreas(), m.formArea))

	prios := make([]string, len(tracker.Priorities))
	for i, p := range tracker.Priorities {
		prios[i] = p.Label()
	}
	lines = append(lines, selector(FormFieldPriority, "Priority   ", prios, m.formPrio))
	lines = append(lines, selector(FormFieldResponsible, "Responsible", m.formResponsibles(), m.formResp))

	if m.status != "" {
		lines = append(lines, "", statusStyle.Render(m.status))
	}
	lines = append(lines, "", labelStyle.Render("tab: next field • ←/→: choose • ctrl+s: save • esc: cancel"))

	return m.centered(overlayStyle.Width(60).Render(strings.Join(lines, "\n")))
}

func priorityIndex(p tracker.Priority) int {
	for i, v := range tracker.Priorities {
		if v == p {
			return i
		}
	}
	return len(tracker.Priorities) - 1
}

func indexOf(values []string, v string) int {
	for i, existing := range values {
		if existing == v {
			return i
		}
	}
	return 0
}

func pick(values []string, i int) string {
	if i < 0 || i >= len(values) {
		return ""
	}
	return values[i]
}

func cycle(i, delta, n int) int {
	if n == 0 {
		return 0
	}
	return ((i+delta)%n + n) % n
}
