// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pyreworks/pyrectl/pkg/g560"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Interactive TUI for setting speaker lights",
	Long: `Set G560 speaker lights from an interactive terminal UI.

Pick a mode from the list, fill in targets, color, rate and brightness, and
press Enter to send. Tab and Shift+Tab move between fields; fields that do not
apply to the selected mode are skipped. Ctrl+C or Esc quits.

Supports USB, serial and WebSocket connections.`,
	Args: cobra.NoArgs,
	RunE: runInteractive,
}

func init() {
	g560Cmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	transport, connInfo, err := openTransport(cmd.Context())
	if err != nil {
		return err
	}

	// The alt screen owns the terminal; results go to the event log instead
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	saved := logger
	logger = quiet
	defer func() { logger = saved }()

	driver := g560.NewDriver(transport, g560.WithPolicy(cfg.Policy()), g560.WithLogger(quiet))
	defer driver.Close()

	m := newInteractiveModel(cmd.Context(), driver.Run, connInfo)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// Focus states
const (
	focusModeList = iota
	focusTargets
	focusColor
	focusRate
	focusBrightness
	focusSubmit
	focusCount
)

// Text input indexes
const (
	inputTargets = iota
	inputColor
	inputRate
	inputBrightness
	inputCount
)

// modeItem is a selectable light mode
type modeItem struct {
	mode        string
	description string
}

// Implement list.Item interface
func (i modeItem) Title() string       { return strings.ToUpper(i.mode) }
func (i modeItem) Description() string { return i.description }
func (i modeItem) FilterValue() string { return i.mode }

// runFunc dispatches commands; satisfied by (*g560.Driver).Run
type runFunc func(ctx context.Context, commands []g560.Command) (*g560.Report, error)

// eventLogEntry is one line in the event log
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// interactiveModel is the Bubble Tea model for the interactive TUI
type interactiveModel struct {
	ctx      context.Context
	run      runFunc
	connInfo string

	modes   list.Model
	inputs  []textinput.Model
	focused int

	sending       bool
	eventLog      []eventLogEntry
	maxLogEntries int

	width    int
	height   int
	quitting bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type runResultMsg struct {
	report *g560.Report
	err    error
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func newInteractiveModel(ctx context.Context, run runFunc, connInfo string) interactiveModel {
	items := []list.Item{
		modeItem{modeSolid, "One steady color"},
		modeItem{modeBreathe, "Fade a color in and out"},
		modeItem{modeCycle, "Rotate through the spectrum"},
		modeItem{modeOff, "Lights off"},
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	modes := list.New(items, delegate, 30, 16)
	modes.Title = "Mode"
	modes.SetShowStatusBar(false)
	modes.SetShowHelp(false)
	modes.SetFilteringEnabled(false)

	inputs := make([]textinput.Model, inputCount)

	inputs[inputTargets] = textinput.New()
	inputs[inputTargets].Placeholder = "all"
	inputs[inputTargets].SetValue("all")
	inputs[inputTargets].Width = 32

	inputs[inputColor] = textinput.New()
	inputs[inputColor].Placeholder = "#FFFFFF or white"
	inputs[inputColor].CharLimit = 32
	inputs[inputColor].Width = 20

	inputs[inputRate] = textinput.New()
	inputs[inputRate].Placeholder = strconv.Itoa(g560.DefaultRate)
	inputs[inputRate].SetValue(strconv.Itoa(g560.DefaultRate))
	inputs[inputRate].CharLimit = 6
	inputs[inputRate].Width = 10

	inputs[inputBrightness] = textinput.New()
	inputs[inputBrightness].Placeholder = strconv.Itoa(g560.DefaultBrightness)
	inputs[inputBrightness].SetValue(strconv.Itoa(g560.DefaultBrightness))
	inputs[inputBrightness].CharLimit = 3
	inputs[inputBrightness].Width = 10

	return interactiveModel{
		ctx:           ctx,
		run:           run,
		connInfo:      connInfo,
		modes:         modes,
		inputs:        inputs,
		focused:       focusModeList,
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case runResultMsg:
		m.sending = false
		m.recordResult(msg)
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m interactiveModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "q":
		if m.focused == focusModeList {
			m.quitting = true
			return m, tea.Quit
		}

	case "tab":
		m.cycleFocus(1)
		return m, nil

	case "shift+tab":
		m.cycleFocus(-1)
		return m, nil

	case "enter":
		if m.focused == focusModeList {
			m.cycleFocus(1)
			return m, nil
		}
		return m.submit()
	}

	return m.updateFocused(msg)
}

// updateFocused passes a message to the focused component
func (m interactiveModel) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focused {
	case focusModeList:
		m.modes, cmd = m.modes.Update(msg)
	case focusTargets, focusColor, focusRate, focusBrightness:
		i := m.focused - focusTargets
		m.inputs[i], cmd = m.inputs[i].Update(msg)
	}
	return m, cmd
}

func (m *interactiveModel) selectedMode() string {
	if item, ok := m.modes.SelectedItem().(modeItem); ok {
		return item.mode
	}
	return modeSolid
}

// fieldEnabled reports whether a focus target applies to the selected mode
func (m *interactiveModel) fieldEnabled(field int) bool {
	mode := m.selectedMode()
	switch field {
	case focusColor:
		return mode == modeSolid || mode == modeBreathe
	case focusRate, focusBrightness:
		return mode == modeBreathe || mode == modeCycle
	default:
		return true
	}
}

func (m *interactiveModel) cycleFocus(delta int) {
	for {
		m.focused = (m.focused + delta + focusCount) % focusCount
		if m.fieldEnabled(m.focused) {
			break
		}
	}

	for i := range m.inputs {
		if i == m.focused-focusTargets {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// settings reads the form into lightSettings
func (m *interactiveModel) settings() (lightSettings, error) {
	s := lightSettings{
		mode: m.selectedMode(),
		targets: strings.FieldsFunc(m.inputs[inputTargets].Value(), func(r rune) bool {
			return r == ',' || r == ' '
		}),
		color:      strings.TrimSpace(m.inputs[inputColor].Value()),
		rate:       g560.DefaultRate,
		brightness: g560.DefaultBrightness,
	}

	if m.fieldEnabled(focusRate) {
		rate, err := parseNumber("rate", m.inputs[inputRate].Value(), g560.DefaultRate)
		if err != nil {
			return lightSettings{}, err
		}
		brightness, err := parseNumber("brightness", m.inputs[inputBrightness].Value(), g560.DefaultBrightness)
		if err != nil {
			return lightSettings{}, err
		}
		s.rate = rate
		s.brightness = brightness
	}

	return s, nil
}

// parseNumber parses a form field, using def when it is blank
func parseNumber(name, value string, def int64) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	return n, nil
}

func (m interactiveModel) submit() (tea.Model, tea.Cmd) {
	if m.sending {
		m.addLogEntry("Still sending previous command", true)
		return m, nil
	}

	s, err := m.settings()
	if err != nil {
		m.addLogEntry(err.Error(), true)
		return m, nil
	}

	for _, name := range g560.UnknownNames(s.targets) {
		m.addLogEntry(fmt.Sprintf("Unknown target ignored: %s", name), true)
	}

	commands, err := buildCommands(s)
	if err != nil {
		m.addLogEntry(err.Error(), true)
		return m, nil
	}
	if len(commands) == 0 {
		m.addLogEntry("No zones selected, nothing to send", true)
		return m, nil
	}

	m.sending = true
	m.addLogEntry(fmt.Sprintf("Sending %s to %d zone(s)", strings.ToUpper(s.mode), len(commands)), false)

	ctx, run := m.ctx, m.run
	return m, func() tea.Msg {
		report, err := run(ctx, commands)
		return runResultMsg{report: report, err: err}
	}
}

func (m *interactiveModel) recordResult(msg runResultMsg) {
	if msg.report != nil {
		for _, r := range msg.report.Commands {
			if r.Delivered() {
				m.addLogEntry(fmt.Sprintf("%s (%d attempts)", g560.FormatCommand(r.Command), r.Attempts), false)
			} else {
				m.addLogEntry(fmt.Sprintf("%s not delivered: %v", g560.FormatCommand(r.Command), r.LastErr), true)
			}
		}
	}
	if msg.err != nil {
		m.addLogEntry(fmt.Sprintf("Dispatch interrupted: %v", msg.err), true)
	}
}

func (m *interactiveModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})

	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m interactiveModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	focusedBoxStyle := boxStyle.
		BorderForeground(lipgloss.Color("12"))

	s.WriteString(titleStyle.Render("PYRECTL G560"))
	s.WriteString(" ")
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | Tab=next Enter=send Esc=quit", m.connInfo)))
	s.WriteString("\n\n")

	leftWidth := 34
	rightWidth := max(m.width-leftWidth-7, 30)

	listStyle := boxStyle.Width(leftWidth)
	if m.focused == focusModeList {
		listStyle = focusedBoxStyle.Width(leftWidth)
	}
	modePanel := listStyle.Render(m.modes.View())
	formPanel := boxStyle.Width(rightWidth).Render(m.renderForm(headerStyle))

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, modePanel, " ", formPanel))
	s.WriteString("\n")
	s.WriteString(m.renderEventLog(headerStyle, boxStyle))

	return s.String()
}

func (m interactiveModel) renderForm(headerStyle lipgloss.Style) string {
	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	buttonStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("12")).
		Padding(0, 2)

	focusedButtonStyle := buttonStyle.
		Background(lipgloss.Color("10"))

	var s strings.Builder

	fields := []struct {
		focus int
		label string
	}{
		{focusTargets, "Targets:   "},
		{focusColor, "Color:     "},
		{focusRate, "Rate (ms): "},
		{focusBrightness, "Brightness:"},
	}

	for _, f := range fields {
		s.WriteString(labelStyle.Render(f.label))
		s.WriteString(" ")
		if m.fieldEnabled(f.focus) {
			s.WriteString(m.inputs[f.focus-focusTargets].View())
		} else {
			s.WriteString(headerStyle.Render("(not used)"))
		}
		s.WriteString("\n")
	}
	s.WriteString("\n")

	btnText := "Send"
	if m.sending {
		btnText = "Sending..."
	}
	if m.focused == focusSubmit {
		s.WriteString(focusedButtonStyle.Render(btnText))
	} else {
		s.WriteString(buttonStyle.Render(btnText))
	}

	return s.String()
}

func (m interactiveModel) renderEventLog(headerStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	infoStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	s.WriteString(labelStyle.Render("EVENTS"))
	s.WriteString("\n")

	logHeight := max(min(m.height-20, 8), 3)
	startIdx := max(len(m.eventLog)-logHeight, 0)

	if len(m.eventLog) == 0 {
		s.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for _, entry := range m.eventLog[startIdx:] {
			icon := "i"
			style := infoStyle
			if entry.isError {
				icon = "x"
				style = errorStyle
			}
			s.WriteString(fmt.Sprintf("%s %s %s\n",
				headerStyle.Render(entry.timestamp.Format("15:04:05.000")),
				style.Render(icon),
				entry.message))
		}
	}

	return boxStyle.Width(max(m.width-4, 40)).Render(s.String())
}
