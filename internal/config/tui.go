package config

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type field struct {
	name    string
	preview string
	input   textinput.Model
}

func (f *field) activate() tea.Cmd {
	f.input.Cursor.Style = focusedStyle
	f.input.TextStyle = focusedStyle
	f.input.PromptStyle = focusedStyle
	f.input.Placeholder = f.preview
	return f.input.Focus()
}

func (f *field) deactivate() {
	f.input.Cursor.Style = noStyle
	f.input.TextStyle = noStyle
	f.input.PromptStyle = noStyle
	f.input.Placeholder = ""
	f.input.Blur()
}

type Model struct {
	cursor int
	fields []field
	conf   map[string]interface{}
	err    error
}

func (m *Model) Init() tea.Cmd {
	if len(m.fields) == 0 {
		return tea.Quit
	}
	return m.fields[0].activate()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch message := msg.(type) {
	case tea.KeyMsg:
		currentField := &m.fields[m.cursor]
		switch message.Type {
		case tea.KeyEsc, tea.KeyBreak:
			currentField.deactivate()
			m.err = ErrUserAborted
			return m, tea.Quit
		case tea.KeyEnter:
			currentField.deactivate()
			if err := m.updateConfigWithFieldInput(currentField); err != nil {
				m.err = err
				return m, tea.Quit
			}
			if m.cursor == len(m.fields)-1 {
				return m, tea.Quit
			}
			m.cursor++
			nextField := &m.fields[m.cursor]
			return m, nextField.activate()
		case tea.KeyTab:
			currentField.input.SetValue(currentField.input.Placeholder)
		}
	}
	return m, m.updateInput(msg)
}

func (m *Model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(titleMessage) + "\n")
	for _, f := range m.fields {
		if f.input.Focused() {
			sb.WriteString(focusedStyle.Render("> "))
		}
		sb.WriteString(f.name + ": " + f.input.View() + "\n")
	}
	sb.WriteString(helpStyle.Render(helpMessage))
	return sb.String()
}

// An empty input keeps the current value.
func (m *Model) updateConfigWithFieldInput(f *field) error {
	value := strings.TrimSpace(f.input.Value())
	if value == "" {
		return nil
	}
	current := m.conf[f.name]
	if current == nil {
		m.conf[f.name] = value
		return nil
	}
	switch reflect.TypeOf(current).Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("error parsing boolean for field %s: %w", f.name, err)
		}
		m.conf[f.name] = b
	case reflect.Int, reflect.Int32, reflect.Int64, reflect.Float64:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("error parsing integer for field %s: %w", f.name, err)
		}
		m.conf[f.name] = i
	default:
		if isDuration(current) {
			if _, err := time.ParseDuration(value); err != nil {
				return fmt.Errorf("error parsing duration for field %s: %w", f.name, err)
			}
		}
		m.conf[f.name] = value
	}
	return nil
}

func isDuration(value interface{}) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	_, err := time.ParseDuration(s)
	return err == nil
}

func (m *Model) updateInput(msg tea.Msg) tea.Cmd {
	commands := make([]tea.Cmd, len(m.fields))
	for i := range m.fields {
		m.fields[i].input, commands[i] = m.fields[i].input.Update(msg)
	}
	return tea.Batch(commands...)
}

func (m *Model) Err() error {
	return m.err
}

func (m *Model) Config() map[string]interface{} {
	return m.conf
}

func NewTeaProgram(conf map[string]interface{}, opts ...tea.ProgramOption) *tea.Program {
	keys := make([]string, 0, len(conf))
	for k := range conf {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	m := Model{
		fields: make([]field, 0, len(conf)),
		conf:   conf,
	}
	for _, key := range keys {
		preview := ""
		if value := conf[key]; value != nil {
			preview = fmt.Sprintf("%v", value)
		}
		m.fields = append(m.fields, field{
			name:    key,
			preview: preview,
			input:   defaultTextInput(),
		})
	}
	return tea.NewProgram(&m, opts...)
}

const (
	titleMessage = "wizardlite configuration"
	helpMessage  = "\n—— TAB autocomplete —— ENTER confirm —— ESC abort ——\n"
)

var (
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{
		Light: "#6200EE",
		Dark:  "#BB86FC",
	})
	titleStyle     = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	noStyle        = lipgloss.NewStyle()
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	ErrUserAborted = errors.New("user aborted")
)

func defaultTextInput() textinput.Model {
	m := textinput.New()
	m.Prompt = ""
	return m
}
