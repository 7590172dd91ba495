package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/skalibog/bfsd/internal/state"
)

const (
	colWidth    = 3
	gutterWidth = 9
)

var (
	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999")).Italic(true)
	axisStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
)

// Frame готовый кадр графика
type Frame struct {
	Spec   Spec
	Labels []string
	Values []float64
	Body   string
}

// Renderer рисует графики символа в текст для терминала.
// Каждый вызов Render полностью заменяет предыдущие кадры.
type Renderer struct {
	height int
	frames map[Kind]*Frame
}

// NewRenderer создает рендерер с высотой области графика height строк
func NewRenderer(height int) *Renderer {
	if height < 3 {
		height = 3
	}
	return &Renderer{
		height: height,
		frames: make(map[Kind]*Frame),
	}
}

// Render перерисовывает все три графика по текущим буферам
func (r *Renderer) Render(st *state.SymbolState) []*Frame {
	if st == nil {
		st = &state.SymbolState{}
	}

	r.frames = make(map[Kind]*Frame, len(Specs))
	frames := make([]*Frame, 0, len(Specs))

	for _, spec := range Specs {
		labels := append([]string(nil), st.Timestamps...)
		values := append([]float64(nil), spec.Series(st)...)

		frame := &Frame{
			Spec:   spec,
			Labels: labels,
			Values: values,
			Body:   r.draw(spec, labels, values),
		}
		r.frames[spec.Kind] = frame
		frames = append(frames, frame)
	}

	return frames
}

// Frame возвращает последний нарисованный кадр графика
func (r *Renderer) Frame(kind Kind) (*Frame, bool) {
	f, ok := r.frames[kind]
	return f, ok
}

func (r *Renderer) draw(spec Spec, labels []string, values []float64) string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(spec.Color).Render(spec.Title))
	if len(values) > 0 {
		b.WriteString("  " + FormatValue(values[len(values)-1]))
	}
	b.WriteString("\n")

	if len(values) == 0 {
		b.WriteString(emptyStyle.Render("  нет данных"))
		b.WriteString("\n")
		return b.String()
	}

	lo, hi := bounds(spec, values)
	width := len(values) * colWidth
	grid := newGrid(r.height, width)

	if spec.Style == Bar {
		plotBars(grid, values, lo, hi)
	} else {
		plotLine(grid, values, lo, hi, spec.Fill)
	}

	lineStyle := lipgloss.NewStyle().Foreground(spec.Color)
	for row := range grid {
		label := ""
		switch row {
		case 0:
			label = FormatValue(hi)
		case len(grid) - 1:
			label = FormatValue(lo)
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s │", gutterWidth, label)))
		b.WriteString(lineStyle.Render(string(grid[row])))
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(strings.Repeat(" ", gutterWidth+1) + "└" + strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(axisStyle.Render(strings.Repeat(" ", gutterWidth+2) + axisLabels(labels, width)))
	b.WriteString("\n")

	return b.String()
}

func bounds(spec Spec, values []float64) (float64, float64) {
	if spec.FixedRange {
		return spec.YMin, spec.YMax
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	// столбцы растут от нуля
	if spec.Style == Bar {
		lo = math.Min(lo, 0)
		hi = math.Max(hi, 0)
	}

	if hi == lo {
		pad := math.Abs(hi) * 0.01
		if pad == 0 {
			pad = 1
		}
		lo -= pad
		hi += pad
	}
	return lo, hi
}

func newGrid(height, width int) [][]rune {
	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	return grid
}

func rowOf(v, lo, hi float64, height int) int {
	row := int(math.Round((hi - v) / (hi - lo) * float64(height-1)))
	if row < 0 {
		return 0
	}
	if row > height-1 {
		return height - 1
	}
	return row
}

func plotLine(grid [][]rune, values []float64, lo, hi float64, fill bool) {
	height := len(grid)
	prev := -1

	for i, v := range values {
		row := rowOf(v, lo, hi, height)
		col := i*colWidth + 1

		if fill {
			for rr := row + 1; rr < height; rr++ {
				grid[rr][col] = '░'
			}
		}

		if prev >= 0 {
			if prev == row {
				grid[row][col-2] = '─'
				grid[row][col-1] = '─'
			} else {
				from, to := prev, row
				if from > to {
					from, to = to, from
				}
				for rr := from; rr <= to; rr++ {
					grid[rr][col-1] = '│'
				}
			}
		}

		grid[row][col] = '●'
		prev = row
	}
}

func plotBars(grid [][]rune, values []float64, lo, hi float64) {
	height := len(grid)
	zero := rowOf(0, lo, hi, height)

	for i, v := range values {
		row := rowOf(v, lo, hi, height)
		from, to := row, zero
		if from > to {
			from, to = to, from
		}
		col := i*colWidth + 1
		for rr := from; rr <= to; rr++ {
			grid[rr][col] = '█'
			grid[rr][col+1] = '█'
		}
	}
}

func axisLabels(labels []string, width int) string {
	if len(labels) == 0 {
		return ""
	}
	first := labels[0]
	if len(labels) == 1 {
		return first
	}
	last := labels[len(labels)-1]
	pad := width - len(first) - len(last)
	if pad < 1 {
		return first
	}
	return first + strings.Repeat(" ", pad) + last
}

// FormatValue компактная запись числа для подписей
func FormatValue(v float64) string {
	a := math.Abs(v)
	switch {
	case a >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case a >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case a >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	case a >= 1 || a == 0:
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprintf("%.4f", v)
	}
}
