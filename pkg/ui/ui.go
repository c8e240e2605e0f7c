package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/TheEnigmaticT/twincli/pkg/tools"
)

var (
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	toolStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

type UI struct{}

func New() *UI {
	return &UI{}
}

func (u *UI) Print(msg string) {
	fmt.Println(msg)
}

func (u *UI) Dim(msg string) {
	fmt.Println(dimStyle.Render(msg))
}

func (u *UI) Info(msg string) {
	fmt.Println(infoStyle.Render("• " + msg))
}

func (u *UI) Warn(msg string) {
	fmt.Println(warnStyle.Render("⚠ " + msg))
}

func (u *UI) Error(msg string) {
	fmt.Println(errorStyle.Render("✗ " + msg))
}

// ToolAction announces a tool dispatch with a short arguments preview.
func (u *UI) ToolAction(name, argsPreview string) {
	line := toolStyle.Render("▸ "+name) + " " + dimStyle.Render(argsPreview)
	fmt.Println(line)
}

// ToolResult shows the outcome of one tool call.
func (u *UI) ToolResult(status tools.Status, preview string) {
	var tag string
	switch status {
	case tools.StatusError:
		tag = errorStyle.Render("  ✗")
	case tools.StatusWarning:
		tag = warnStyle.Render("  ⚠")
	default:
		tag = successStyle.Render("  ✓")
	}
	fmt.Println(tag + " " + dimStyle.Render(preview))
}

// Input handling

type inputModel struct {
	textInput    textinput.Model
	err          error
	output       string
	canceled     bool
	slashTrigger bool // "/" typed as the first character opens the picker
}

func initialInputModel(prompt string) inputModel {
	ti := textinput.New()
	ti.Placeholder = "Ask anything..."
	ti.Focus()
	ti.CharLimit = 0
	ti.Width = 80
	ti.Prompt = prompt

	return inputModel{
		textInput: ti,
	}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			m.output = m.textInput.Value()
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.canceled = true
			return m, tea.Quit
		case tea.KeyRunes:
			if len(msg.Runes) == 1 && msg.Runes[0] == '/' && m.textInput.Value() == "" {
				m.slashTrigger = true
				m.output = "/"
				return m, tea.Quit
			}
		}
	case error:
		m.err = msg
		return m, nil
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	return fmt.Sprintf("%s\n", m.textInput.View())
}

func (u *UI) Prompt(prompt string) string {
	p := tea.NewProgram(initialInputModel(prompt))
	m, err := p.Run()
	if err != nil {
		fmt.Printf("Input error: %v\n", err)
		return ""
	}

	if mModel, ok := m.(inputModel); ok {
		if mModel.canceled {
			return "exit"
		}
		return strings.TrimSpace(mModel.output)
	}
	return ""
}

// Stream handling

type streamModel struct {
	sub      <-chan string
	content  string
	showing  bool
	finished bool
}

type tokenMsg string
type finishMsg struct{}

func waitForToken(sub <-chan string) tea.Cmd {
	return func() tea.Msg {
		token, ok := <-sub
		if !ok {
			return finishMsg{}
		}
		return tokenMsg(token)
	}
}

func (m streamModel) Init() tea.Cmd {
	return waitForToken(m.sub)
}

func (m streamModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+o" {
			m.showing = !m.showing
			return m, nil
		}
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case tokenMsg:
		m.content += string(msg)
		return m, waitForToken(m.sub)
	case finishMsg:
		m.finished = true
		m.showing = true
		return m, tea.Quit
	}
	return m, nil
}

func (m streamModel) View() string {
	if !m.showing {
		return "Thinking... (Press Ctrl+O to show stream)"
	}
	return m.content
}

// DisplayStream renders model output as it arrives, then reprints the final
// content once the bubbletea program tears down its screen.
func (u *UI) DisplayStream(outputChan <-chan string) {
	m := streamModel{
		sub:     outputChan,
		showing: true,
	}
	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		fmt.Printf("Error in stream display: %v\n", err)
	}

	if sm, ok := finalModel.(streamModel); ok && sm.content != "" {
		fmt.Println(sm.content)
	}
}

// Command picker for slash commands

type CommandItem struct {
	name        string
	description string
}

func (i CommandItem) Title() string       { return "/" + i.name }
func (i CommandItem) Description() string { return i.description }
func (i CommandItem) FilterValue() string { return i.name }

type commandPickerModel struct {
	list     list.Model
	selected string
	canceled bool
}

func pickerDelegate() list.DefaultDelegate {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("62")).
		Foreground(lipgloss.Color("170")).
		Padding(0, 0, 0, 1)
	delegate.Styles.SelectedDesc = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("62")).
		Foreground(lipgloss.Color("240")).
		Padding(0, 0, 0, 1)
	return delegate
}

func newCommandPickerModel(items []CommandItem) commandPickerModel {
	listItems := make([]list.Item, len(items))
	for i, item := range items {
		listItems[i] = item
	}

	l := list.New(listItems, pickerDelegate(), 40, 10)
	l.Title = "Commands"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("170")).
		Bold(true).
		Padding(0, 1)

	return commandPickerModel{list: l}
}

func (m commandPickerModel) Init() tea.Cmd {
	return nil
}

func (m commandPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			if item, ok := m.list.SelectedItem().(CommandItem); ok {
				m.selected = item.name
			}
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.canceled = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m commandPickerModel) View() string {
	return m.list.View()
}

// CommandInfo holds command info for the picker
type CommandInfo struct {
	Name        string
	Description string
}

// PickCommand displays a command picker and returns the selected command
// name, or empty string if canceled.
func (u *UI) PickCommand(commands []CommandInfo) string {
	items := make([]CommandItem, len(commands))
	for i, cmd := range commands {
		items[i] = CommandItem{name: cmd.Name, description: cmd.Description}
	}

	p := tea.NewProgram(newCommandPickerModel(items))
	m, err := p.Run()
	if err != nil {
		fmt.Printf("Error in command picker: %v\n", err)
		return ""
	}

	if model, ok := m.(commandPickerModel); ok {
		if model.canceled {
			return ""
		}
		return model.selected
	}
	return ""
}

// Model picker for the /model command

type ModelItem struct {
	id          string
	name        string
	description string
	isCurrent   bool
}

func (i ModelItem) Title() string {
	indicator := "  "
	if i.isCurrent {
		indicator = "✓ "
	}
	return indicator + i.name
}
func (i ModelItem) Description() string { return i.description }
func (i ModelItem) FilterValue() string { return i.name }

type modelPickerModel struct {
	list     list.Model
	selected string
	canceled bool
}

func newModelPickerModel(models []ModelItem) modelPickerModel {
	items := make([]list.Item, len(models))
	for i, m := range models {
		items[i] = m
	}

	l := list.New(items, pickerDelegate(), 60, 14)
	l.Title = "Select Model"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("170")).
		Bold(true).
		Padding(0, 1)

	return modelPickerModel{list: l}
}

func (m modelPickerModel) Init() tea.Cmd {
	return nil
}

func (m modelPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			if item, ok := m.list.SelectedItem().(ModelItem); ok {
				m.selected = item.id
			}
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.canceled = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m modelPickerModel) View() string {
	return m.list.View()
}

// ModelChoice holds model info for the picker
type ModelChoice struct {
	ID          string
	Name        string
	Description string
	IsCurrent   bool
}

// PickModel displays a model picker and returns the selected model ID, or
// empty string if canceled.
func (u *UI) PickModel(models []ModelChoice) string {
	items := make([]ModelItem, len(models))
	for i, m := range models {
		items[i] = ModelItem{
			id:          m.ID,
			name:        m.Name,
			description: m.Description,
			isCurrent:   m.IsCurrent,
		}
	}

	p := tea.NewProgram(newModelPickerModel(items))
	m, err := p.Run()
	if err != nil {
		fmt.Printf("Error in model picker: %v\n", err)
		return ""
	}

	if model, ok := m.(modelPickerModel); ok {
		if model.canceled {
			return ""
		}
		return model.selected
	}
	return ""
}
