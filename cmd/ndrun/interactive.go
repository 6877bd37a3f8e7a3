package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gridpointai/nd-runtime/array"
	"github.com/gridpointai/nd-runtime/ndimage"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	opStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#98FB98"))

	paramStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type opInfo struct {
	name   string
	params []opParam
	run    func(in *array.Array, args []string) (*array.Array, error)
}

type opParam struct {
	name        string
	placeholder string
}

type modelState int

const (
	stateSelectOp modelState = iota
	stateInputArgs
	stateShowResult
)

type interactiveModel struct {
	err      error
	grid     *array.Array
	filename string
	result   *array.Array
	ops      []opInfo
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
}

type loadedMsg struct {
	err  error
	grid *array.Array
}

type opResultMsg struct {
	err    error
	result *array.Array
}

func interactiveOps() []opInfo {
	return []opInfo{
		{
			name:   "uniform",
			params: []opParam{{"size", "3"}},
			run: func(in *array.Array, args []string) (*array.Array, error) {
				size, err := strconv.Atoi(args[0])
				if err != nil {
					return nil, err
				}
				tmp := array.Zeros(array.Float64, in.Dims())
				out := array.Zeros(array.Float64, in.Dims())
				if err := ndimage.UniformFilter1D(in, tmp, 0, size, mode, cfg.Cval, 0); err != nil {
					return nil, err
				}
				if err := ndimage.UniformFilter1D(tmp, out, 1, size, mode, cfg.Cval, 0); err != nil {
					return nil, err
				}
				return out, nil
			},
		},
		{
			name:   "minimum",
			params: []opParam{{"size", "3"}},
			run: func(in *array.Array, args []string) (*array.Array, error) {
				size, err := strconv.Atoi(args[0])
				if err != nil {
					return nil, err
				}
				out := array.Zeros(array.Float64, in.Dims())
				err = ndimage.MinOrMaxFilter(in, boxFootprint(size), nil, out, mode, cfg.Cval, nil, true)
				return out, err
			},
		},
		{
			name:   "maximum",
			params: []opParam{{"size", "3"}},
			run: func(in *array.Array, args []string) (*array.Array, error) {
				size, err := strconv.Atoi(args[0])
				if err != nil {
					return nil, err
				}
				out := array.Zeros(array.Float64, in.Dims())
				err = ndimage.MinOrMaxFilter(in, boxFootprint(size), nil, out, mode, cfg.Cval, nil, false)
				return out, err
			},
		},
		{
			name:   "rank",
			params: []opParam{{"size", "3"}, {"rank", "4"}},
			run: func(in *array.Array, args []string) (*array.Array, error) {
				size, err := strconv.Atoi(args[0])
				if err != nil {
					return nil, err
				}
				rank, err := strconv.Atoi(args[1])
				if err != nil {
					return nil, err
				}
				out := array.Zeros(array.Float64, in.Dims())
				err = ndimage.RankFilter(in, rank, boxFootprint(size), out, mode, cfg.Cval, nil)
				return out, err
			},
		},
		{
			name:   "zoom",
			params: []opParam{{"factor", "2.0"}, {"order", "1"}},
			run: func(in *array.Array, args []string) (*array.Array, error) {
				factor, err := strconv.ParseFloat(args[0], 64)
				if err != nil {
					return nil, err
				}
				order, err := strconv.Atoi(args[1])
				if err != nil {
					return nil, err
				}
				if factor <= 0 {
					return nil, fmt.Errorf("zoom factor must be positive")
				}
				dims := make([]int, in.Rank())
				zooms := make([]float64, in.Rank())
				for d := range dims {
					dims[d] = int(float64(in.Dim(d)) * factor)
					if dims[d] < 1 {
						dims[d] = 1
					}
					if dims[d] > 1 {
						zooms[d] = float64(in.Dim(d)-1) / float64(dims[d]-1)
					} else {
						zooms[d] = 1
					}
				}
				out := array.Zeros(array.Float64, dims)
				err = ndimage.ZoomShift(in, out, zooms, nil, order, mode, cfg.Cval)
				return out, err
			},
		},
		{
			name:   "erode",
			params: []opParam{{"iterations", "1"}},
			run: func(in *array.Array, args []string) (*array.Array, error) {
				niter, err := strconv.Atoi(args[0])
				if err != nil {
					return nil, err
				}
				strct := [][]int{{0, 1, 0}, {1, 1, 1}, {0, 1, 0}}
				out := array.Zeros(array.Float64, in.Dims())
				_, handle, err := ndimage.BinaryErosion(in, strct, nil, out, 0, nil, false, false, niter > 1)
				if err != nil {
					return nil, err
				}
				if niter > 1 {
					defer ndimage.RemoveHandle(handle)
					if err := ndimage.BinaryErosion2(out, strct, nil, niter-1, nil, false, handle); err != nil {
						return nil, err
					}
				}
				return out, nil
			},
		},
	}
}

func newInteractiveModel(filename string) *interactiveModel {
	return &interactiveModel{
		filename: filename,
		ops:      interactiveOps(),
		state:    stateSelectOp,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadGridCmd
}

func (m *interactiveModel) loadGridCmd() tea.Msg {
	if m.filename == "" {
		return loadedMsg{err: fmt.Errorf("no input grid; pass --in grid.csv")}
	}
	grid, err := loadGrid(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{grid: grid}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectOp && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectOp && m.selected < len(m.ops)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectOp:
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.runOp
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.runOp

			case stateShowResult:
				m.state = stateSelectOp
				m.result = nil
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectOp
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectOp
				m.result = nil
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.grid = msg.grid

	case opResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	op := m.ops[m.selected]
	m.inputs = make([]textinput.Model, len(op.params))
	for i, p := range op.params {
		ti := textinput.New()
		ti.Placeholder = p.placeholder
		ti.Prompt = p.name + ": "
		ti.Width = 20
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) runOp() tea.Msg {
	if m.grid == nil {
		return opResultMsg{err: fmt.Errorf("grid not loaded")}
	}
	op := m.ops[m.selected]
	args := make([]string, len(m.inputs))
	for i, input := range m.inputs {
		args[i] = input.Value()
		if args[i] == "" {
			args[i] = op.params[i].placeholder
		}
	}
	result, err := op.run(m.grid, args)
	if err != nil {
		return opResultMsg{err: err}
	}
	return opResultMsg{result: result}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.grid == nil {
		return "Loading grid..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("ndrun"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectOp:
		b.WriteString(renderGrid(m.grid))
		b.WriteString("\n\nSelect an operation:\n\n")
		for i, op := range m.ops {
			cursor := "  "
			line := op.name
			var params []string
			for _, p := range op.params {
				params = append(params, paramStyle.Render(p.name))
			}
			if len(params) > 0 {
				line += " (" + strings.Join(params, ", ") + ")"
			}
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString(cursor + opStyle.Render(line))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter run • q quit"))

	case stateInputArgs:
		op := m.ops[m.selected]
		b.WriteString(fmt.Sprintf("Parameters for %s\n\n", opStyle.Render(op.name)))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter run • esc back"))

	case stateShowResult:
		op := m.ops[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", opStyle.Render(op.name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(renderGrid(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func runInteractive(filename string) error {
	p := tea.NewProgram(newInteractiveModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
