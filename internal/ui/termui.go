package ui

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/skalibog/bfsd/internal/analysis/sentiment"
	"github.com/skalibog/bfsd/internal/chart"
	"github.com/skalibog/bfsd/internal/config"
	"github.com/skalibog/bfsd/internal/dashboard"
	"github.com/skalibog/bfsd/pkg/logger"
	"github.com/skalibog/bfsd/pkg/models"
	"go.uber.org/zap"
)

// Стили UI
var (
	// Основные цвета
	primaryColor   = lipgloss.Color("#0077cc")
	secondaryColor = lipgloss.Color("#333333")
	errorColor     = lipgloss.Color("#cc3300")
	successColor   = lipgloss.Color("#33cc33")
	warningColor   = lipgloss.Color("#cccc00")

	appStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(primaryColor).
			Padding(0, 1).
			Align(lipgloss.Center)
	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#ffffff")).
				Background(secondaryColor).
				Padding(0, 1)
	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1)
	activeSymbolStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#ffffff")).
				Background(primaryColor).
				Padding(0, 1)
	cursorSymbolStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#222222")).
				Padding(0, 1)
	symbolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999")).
			Padding(0, 1)
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999")).
			Padding(0, 1)
)

const logTimeLayout = "02.01.2006 - 15:04:05.999999999Z07:00"

// Selector то, чем UI управляет выбором символа
type Selector interface {
	Select(symbol string) error
	OnRender(fn dashboard.RenderFunc)
}

// TermUI представляет терминальный интерфейс.
// Состояние меняется только в цикле событий bubbletea.
type TermUI struct {
	controller    Selector
	config        config.UIConfig
	program       *tea.Program
	symbols       []string
	selectedIndex int
	active        string
	update        *dashboard.Update
	logs          []string
	logFile       string
	width         int
	height        int
}

// Сообщения для обновления UI
type renderMsg dashboard.Update

type selectedMsg struct {
	symbol string
	err    error
}

type logTickMsg time.Time

// bubbleModel - модель для bubbletea
type bubbleModel struct {
	ui *TermUI
}

// NewTermUI создает интерфейс и подписывает его на перерисовки контроллера
func NewTermUI(cfg config.UIConfig, dash config.DashboardConfig, logFile string, controller Selector) *TermUI {
	ui := &TermUI{
		controller: controller,
		config:     cfg,
		symbols:    dash.Symbols,
		active:     dash.DefaultSymbol,
		logs:       []string{"BFSD запущен. Ожидание данных..."},
		logFile:    logFile,
		width:      120,
		height:     40,
	}

	for i, s := range ui.symbols {
		if s == ui.active {
			ui.selectedIndex = i
		}
	}

	controller.OnRender(ui.handleRender)
	return ui
}

// Start запускает UI, блокирует до выхода или отмены ctx
func (ui *TermUI) Start(ctx context.Context) error {
	ui.program = tea.NewProgram(bubbleModel{ui: ui}, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := ui.program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("ошибка запуска UI: %w", err)
	}
	return nil
}

// handleRender вызывается контроллером под его блокировкой, поэтому только пересылает сообщение
func (ui *TermUI) handleRender(update dashboard.Update) {
	if ui.program != nil {
		ui.program.Send(renderMsg(update))
	}
}

func (ui *TermUI) selectCmd(symbol string) tea.Cmd {
	return func() tea.Msg {
		return selectedMsg{symbol: symbol, err: ui.controller.Select(symbol)}
	}
}

func logTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return logTickMsg(t)
	})
}

// loadLogsFromFile перечитывает хвост JSON-лога
func (ui *TermUI) loadLogsFromFile() error {
	file, err := os.Open(ui.logFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	limit := ui.config.LogLines
	if limit <= 0 {
		limit = 6
	}

	scanner := bufio.NewScanner(file)
	var logs []string

	for scanner.Scan() {
		logs = append(logs, formatLogLine(scanner.Text()))
		if len(logs) > limit {
			logs = logs[1:]
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	if len(logs) > 0 {
		ui.logs = logs
	}
	return nil
}

// formatLogLine превращает JSON-запись zap в строку для экрана
func formatLogLine(line string) string {
	var zapLog map[string]interface{}
	if err := json.Unmarshal([]byte(line), &zapLog); err != nil {
		return line
	}

	level, _ := zapLog["level"].(string)
	ts, _ := zapLog["ts"].(string)
	msg, _ := zapLog["msg"].(string)

	timestamp := ""
	if t, err := time.Parse(logTimeLayout, ts); err == nil {
		timestamp = t.Format("15:04:05")
	}

	formatted := fmt.Sprintf("[%s] [%s] %s", timestamp, level, msg)

	// Дополнительные поля в стабильном порядке
	keys := make([]string, 0, len(zapLog))
	for k := range zapLog {
		if k != "level" && k != "ts" && k != "msg" && k != "caller" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		formatted += fmt.Sprintf(" (%s: %v)", k, zapLog[k])
	}

	return formatted
}

// Методы для bubbletea
func (m bubbleModel) Init() tea.Cmd {
	return tea.Batch(m.ui.selectCmd(m.ui.active), logTickCmd())
}

func (m bubbleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	ui := m.ui

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			ui.selectedIndex = max(0, ui.selectedIndex-1)
		case "down", "j":
			ui.selectedIndex = min(len(ui.symbols)-1, ui.selectedIndex+1)
		case "enter":
			return m, ui.choose(ui.selectedIndex)
		default:
			// 1-9 выбирают символ напрямую
			if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
				return m, ui.choose(int(s[0] - '1'))
			}
		}

	case tea.WindowSizeMsg:
		ui.width = msg.Width
		ui.height = msg.Height

	case renderMsg:
		// кадр мог уйти до смены символа
		if msg.Symbol != ui.active {
			return m, nil
		}
		update := dashboard.Update(msg)
		ui.update = &update

	case selectedMsg:
		if msg.err != nil {
			logger.Error("Не удалось выбрать символ", zap.String("symbol", msg.symbol), zap.Error(msg.err))
		}

	case logTickMsg:
		if err := ui.loadLogsFromFile(); err != nil {
			logger.Warn("Ошибка загрузки логов", zap.Error(err))
		}
		return m, logTickCmd()
	}

	return m, nil
}

// choose делает символ под индексом активным, сам выбор идет вне цикла событий
func (ui *TermUI) choose(index int) tea.Cmd {
	if index < 0 || index >= len(ui.symbols) {
		return nil
	}
	ui.selectedIndex = index
	symbol := ui.symbols[index]
	if symbol == ui.active && ui.update != nil {
		return nil
	}
	ui.active = symbol
	ui.update = nil
	return ui.selectCmd(symbol)
}

func (m bubbleModel) View() string {
	ui := m.ui

	title := titleStyle.Render("BFSD - Binance Futures Sentiment Dashboard")
	symbols := renderSymbols(ui.symbols, ui.selectedIndex, ui.active)
	summary := renderSummary(ui.active, ui.update)
	charts := renderCharts(ui.update)
	logs := renderLogsSection(ui.logs)
	footer := footerStyle.Render("Клавиши: ↑/↓ - навигация, Enter или 1-9 - выбор символа, Q - выход")

	return appStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			symbols,
			summary,
			charts,
			logs,
			footer,
		),
	)
}

func renderSymbols(symbols []string, selectedIndex int, active string) string {
	items := make([]string, 0, len(symbols))
	for i, s := range symbols {
		label := fmt.Sprintf("%d %s", i+1, s)
		switch {
		case s == active:
			items = append(items, activeSymbolStyle.Render(label))
		case i == selectedIndex:
			items = append(items, cursorSymbolStyle.Render("> "+label))
		default:
			items = append(items, symbolStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, items...)
}

func renderSummary(active string, update *dashboard.Update) string {
	header := sectionHeaderStyle.Render(active)

	if update == nil || update.Symbol != active || update.Result == nil {
		return lipgloss.JoinHorizontal(lipgloss.Top, header, "  Ожидание данных...")
	}

	res := update.Result
	line := fmt.Sprintf("  %s (%.2f)  Ставка: %s%%  OI: %s  Цена: %.2f  [%s]",
		formatSignalText(res),
		res.Score,
		chart.FormatValue(lastOf(update.State.FundingSeries)),
		chart.FormatValue(lastOf(update.State.OpenInterestSeries)),
		res.MarkPrice,
		res.Timestamp.Format("15:04:05"),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, header, line)
}

func renderCharts(update *dashboard.Update) string {
	if update == nil {
		return sectionStyle.Render("Загрузка графиков...")
	}

	bodies := make([]string, 0, len(update.Frames))
	for _, f := range update.Frames {
		bodies = append(bodies, sectionStyle.Render(strings.TrimRight(f.Body, "\n")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, bodies...)
}

func renderLogsSection(logs []string) string {
	header := sectionHeaderStyle.Render("ЛОГИ")
	content := strings.Builder{}

	for _, log := range logs {
		// Выделение по уровню логирования
		if strings.Contains(log, "[ERROR]") {
			log = lipgloss.NewStyle().Foreground(errorColor).Render(log)
		} else if strings.Contains(log, "[INFO]") {
			log = lipgloss.NewStyle().Foreground(successColor).Render(log)
		} else if strings.Contains(log, "[WARN]") {
			log = lipgloss.NewStyle().Foreground(warningColor).Render(log)
		} else if strings.Contains(log, "[DEBUG]") {
			log = lipgloss.NewStyle().Foreground(lipgloss.Color("#9999ff")).Render(log)
		}

		content.WriteString("  " + log + "\n")
	}

	return sectionStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			strings.TrimRight(content.String(), "\n"),
		),
	)
}

func formatSignalText(res *models.SentimentResult) string {
	var style lipgloss.Style

	switch res.Label {
	case sentiment.LabelBullish:
		style = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	case sentiment.LabelBearish:
		style = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	default:
		style = lipgloss.NewStyle().Foreground(warningColor)
	}

	return style.Render(res.Label)
}

func lastOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}
