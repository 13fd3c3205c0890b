package main

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"uwbdistance-go/bus"
	"uwbdistance-go/types"
)

const stepMM = 100

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF41"))
	styleLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA22")).Width(12)
	styleValue = lipgloss.NewStyle().Bold(true)
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00")).Bold(true)
	styleHelp  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	stylePanel = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00AA22")).Padding(0, 1)
)

// busMsg carries one telemetry message from the tag.
type busMsg struct{ m *bus.Message }

// frameMsg redraws the strip and the tag position, which are not on the bus.
type frameMsg time.Time

type model struct {
	w   *world
	sub *bus.Subscription

	positionMM uint64
	batteryMV  uint16

	distance types.DistanceValue
	rng      types.RangeValue
	battery  types.BatteryValue
	radio    types.RadioValue
	state    types.NodeState
	pixels   []color.RGBA
}

func newModel(w *world) model {
	return model{
		w:          w,
		sub:        w.tag.bus.NewConnection("view").Subscribe(bus.T("#")),
		positionMM: w.tag.radio.Position(),
		batteryMV:  flagBattery,
		rng:        types.RangeValue{Range: "out_of_range"},
	}
}

func waitBus(sub *bus.Subscription) tea.Cmd {
	return func() tea.Msg {
		m, ok := <-sub.Channel()
		if !ok {
			return nil
		}
		return busMsg{m}
	}
}

func frame() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitBus(m.sub), frame())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case busMsg:
		m.apply(msg.m)
		return m, waitBus(m.sub)
	case frameMsg:
		m.pixels = m.w.tag.strip.Pixels()
		m.positionMM = m.w.tag.radio.Position()
		return m, frame()
	}
	return m, nil
}

func (m *model) apply(msg *bus.Message) {
	switch p := msg.Payload.(type) {
	case types.DistanceValue:
		m.distance = p
	case types.RangeValue:
		m.rng = p
	case types.BatteryValue:
		m.battery = p
	case types.RadioValue:
		m.radio = p
	case types.NodeState:
		m.state = p
	}
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		return m, tea.Quit
	case "left", "h":
		m.positionMM = m.w.moveTag(-stepMM)
	case "right", "l":
		m.positionMM = m.w.moveTag(stepMM)
	case "b":
		// Drain the tag's battery; the next check shuts it down.
		if m.batteryMV >= 100 {
			m.batteryMV -= 100
		}
		m.w.tag.adc.SetBattery(m.batteryMV)
	case "B":
		m.batteryMV += 100
		m.w.tag.adc.SetBattery(m.batteryMV)
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("UWB distance indicator"))
	b.WriteString("\n\n")
	b.WriteString(renderStrip(m.pixels))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(styleLabel.Render(label))
		b.WriteString(styleValue.Render(value))
		b.WriteString("\n")
	}
	row("true", fmt.Sprintf("%d cm", m.positionMM/10))
	measured := "-"
	if m.distance.TS != 0 {
		measured = fmt.Sprintf("%d cm (last %d cm)", m.distance.AverageCm, m.distance.LatestCm)
		if !m.distance.Valid {
			measured += " " + styleWarn.Render("rejected")
		}
	}
	row("measured", measured)
	row("range", m.rng.Range)
	row("battery", fmt.Sprintf("%d mV %s", m.battery.MilliV, m.battery.Status))
	row("radio", fmt.Sprintf("%s, %d irq drops", m.radio.State, m.radio.Drops))
	state := m.state.Level
	if state == "shutdown" {
		state = styleWarn.Render(state)
	}
	row("tag", state)

	b.WriteString("\n")
	b.WriteString(styleHelp.Render("←/→ move tag  b/B battery -/+  q quit"))
	return stylePanel.Render(b.String())
}

// renderStrip draws the pixels as coloured blocks; unlit pixels are dim.
func renderStrip(px []color.RGBA) string {
	cells := make([]string, 0, len(px))
	for _, c := range px {
		hex := "#1a1a1a"
		if c.R|c.G|c.B != 0 {
			hex = fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
		}
		cells = append(cells, lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("██"))
	}
	return strings.Join(cells, " ")
}
