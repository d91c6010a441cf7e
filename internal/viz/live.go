package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/foodweb/internal/dynamo"
)

const (
	historyCapacity = 300
	maxLiveSeries   = 4
	tickRate        = time.Second / 30
)

type TickMsg time.Time

// Live steps a food web on every tick and shows the biomass of its largest
// species. Parameters of a dynamo.Configurable system can be tuned while it
// runs.
type Live struct {
	dyn          dynamo.System
	integrator   dynamo.Integrator
	state        dynamo.State
	initialState dynamo.State
	t, dt        float64
	stepsPerTick int
	running      bool
	title        string

	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int

	history  [][]float64
	totals   []float64
	theme    int
	showHelp bool
}

func NewLive(dyn dynamo.System, integ dynamo.Integrator, b0 []float64, dt float64, stepsPerTick int, title string) Live {
	params := make(map[string]float64)
	if c, ok := dyn.(dynamo.Configurable); ok {
		for k, v := range c.GetParams() {
			params[k] = v
		}
	}
	keys := make([]string, 0, len(params))
	initialParams := make(map[string]float64, len(params))
	for k, v := range params {
		keys = append(keys, k)
		initialParams[k] = v
	}
	sort.Strings(keys)

	if stepsPerTick < 1 {
		stepsPerTick = 1
	}

	return Live{
		dyn:           dyn,
		integrator:    integ,
		state:         dynamo.State(b0).Clone(),
		initialState:  dynamo.State(b0).Clone(),
		dt:            dt,
		stepsPerTick:  stepsPerTick,
		running:       true,
		title:         title,
		params:        params,
		initialParams: initialParams,
		paramKeys:     keys,
		history:       make([][]float64, len(b0)),
	}
}

func (m Live) Init() tea.Cmd { return tick() }

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			for i := 0; i < m.stepsPerTick; i++ {
				m.step()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Live) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

// adjustParam scales the selected parameter. Values the system rejects are
// left unchanged.
func (m *Live) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	c, ok := m.dyn.(dynamo.Configurable)
	if !ok {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.params[key] * factor
	if val == 0 {
		val = 0.01
	}
	if err := c.SetParam(key, val); err == nil {
		m.params[key] = val
	}
}

func (m *Live) step() {
	next := m.integrator.Step(m.dyn, m.state, m.t, m.dt).Clone()
	if p, ok := m.dyn.(dynamo.Projector); ok {
		next = p.Project(next)
	}
	if !next.IsValid() {
		m.running = false
		return
	}
	m.state = next
	m.t += m.dt

	for i, v := range m.state {
		m.history[i] = appendCapped(m.history[i], v)
	}
	m.totals = appendCapped(m.totals, m.state.Sum())
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

func (m *Live) reset() {
	m.t = 0
	m.state = m.initialState.Clone()
	for i := range m.history {
		m.history[i] = m.history[i][:0]
	}
	m.totals = m.totals[:0]
	c, ok := m.dyn.(dynamo.Configurable)
	for k, v := range m.initialParams {
		m.params[k] = v
		if ok {
			c.SetParam(k, v)
		}
	}
}

// largest returns the indices of up to n species with the most biomass.
func (m Live) largest(n int) []int {
	idx := make([]int, len(m.state))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return m.state[idx[a]] > m.state[idx[b]] })
	if len(idx) > n {
		idx = idx[:n]
	}
	return idx
}

func (m Live) alive() int {
	n := 0
	for _, v := range m.state {
		if v > 0 {
			n++
		}
	}
	return n
}

func (m Live) View() string {
	theme := Themes[m.theme]
	header := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary)
	active := lipgloss.NewStyle().Bold(true).Foreground(theme.Accent)

	var chart string
	if len(m.totals) > 1 {
		top := m.largest(maxLiveSeries)
		series := make([][]float64, 0, len(top))
		legends := make([]string, 0, len(top))
		for _, i := range top {
			series = append(series, m.history[i])
			legends = append(legends, fmt.Sprintf("B%d", i))
		}
		chart = asciigraph.PlotMany(series,
			asciigraph.Height(12),
			asciigraph.Width(60),
			asciigraph.Precision(3),
			asciigraph.SeriesColors(theme.Series...),
			asciigraph.SeriesLegends(legends...),
		)
	} else {
		chart = Subtle.Render("waiting for data...")
	}

	status := StatusRunning.Render("RUNNING")
	if !m.running {
		status = StatusPaused.Render("PAUSED")
	}

	var s strings.Builder
	s.WriteString(header.Render(strings.ToUpper(m.title)) + "  " + status + "\n\n")
	s.WriteString(MetricLabel.Render("Time") + MetricValue.Render(fmt.Sprintf("%.1f", m.t)) + "\n")
	s.WriteString(MetricLabel.Render("Biomass") + MetricValue.Render(fmt.Sprintf("%.4g", m.state.Sum())) + "\n")
	frac := 0.0
	if len(m.state) > 0 {
		frac = float64(m.alive()) / float64(len(m.state))
	}
	s.WriteString(MetricLabel.Render("Persisting") +
		ProgressBar(frac, 20) + MetricValue.Render(fmt.Sprintf(" %d/%d", m.alive(), len(m.state))) + "\n")
	s.WriteString(MetricLabel.Render("Trend") + SparklineChart(m.totals, 30) + "\n")

	s.WriteString("\nPARAMETERS\n")
	if len(m.paramKeys) == 0 {
		s.WriteString(Subtle.Render("  (none)") + "\n")
	}
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-6s %.4g", k, m.params[k])
		if i == m.selected {
			s.WriteString(active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + Subtle.Render(line) + "\n")
		}
	}
	s.WriteString("\n" + KeyHint.Render("space pause  r reset  tab/↑↓ tune  t theme  ? help  q quit"))

	view := lipgloss.JoinHorizontal(lipgloss.Top, GlassPanel.Render(chart), GlassPanel.Render(s.String()))
	if m.showHelp {
		help := GlassPanel.Render(strings.Join([]string{
			"Space    Pause/Resume",
			"R        Reset biomass and parameters",
			"Tab      Cycle parameters",
			"Up/K     Increase parameter (+5%)",
			"Down/J   Decrease parameter (-5%)",
			"T        Theme: " + theme.Name,
			"Q        Quit",
		}, "\n"))
		return help + "\n" + view
	}
	return view
}

// State returns the current biomass and time.
func (m Live) State() (dynamo.State, float64) { return m.state.Clone(), m.t }

// RunLive starts the interactive view on the alternate screen.
func RunLive(m Live) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
