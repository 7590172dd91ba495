package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/skalibog/bfsd/internal/analysis/sentiment"
	"github.com/skalibog/bfsd/internal/chart"
	"github.com/skalibog/bfsd/internal/scheduler"
	"github.com/skalibog/bfsd/internal/state"
	"github.com/skalibog/bfsd/pkg/logger"
	"github.com/skalibog/bfsd/pkg/models"
	"go.uber.org/zap"
)

// PollInterval интервал опроса биржи
const PollInterval = 30 * time.Second

// MarketSource источник рыночных данных для одного цикла опроса
type MarketSource interface {
	Fetch(ctx context.Context, symbol string) (*models.MarketSnapshot, error)
}

// Update перерисованные графики активного символа
type Update struct {
	Symbol string
	Frames []*chart.Frame
	State  state.SymbolState
	// Result последняя оценка по символу, nil пока данных нет
	Result *models.SentimentResult
}

// RenderFunc получает каждую перерисовку. Вызывается под блокировкой контроллера.
type RenderFunc func(update Update)

// Controller владеет активным символом, таймером опроса, хранилищем и рендерером.
// Мьютекс сериализует весь доступ к состоянию; сетевые запросы идут без него.
type Controller struct {
	mu       sync.Mutex
	ctx      context.Context
	source   MarketSource
	sched    scheduler.Scheduler
	store    *state.Store
	renderer *chart.Renderer
	interval time.Duration

	active   string
	handle   scheduler.Handle
	onRender RenderFunc
	latest   map[string]*models.SentimentResult

	spawn func(func())
}

// NewController создает контроллер
func NewController(ctx context.Context, source MarketSource, sched scheduler.Scheduler, renderer *chart.Renderer) *Controller {
	return &Controller{
		ctx:      ctx,
		source:   source,
		sched:    sched,
		store:    state.NewStore(),
		renderer: renderer,
		interval: PollInterval,
		latest:   make(map[string]*models.SentimentResult),
		spawn:    func(f func()) { go f() },
	}
}

// OnRender регистрирует получателя перерисовок
func (c *Controller) OnRender(fn RenderFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRender = fn
}

// Select делает символ активным: рисует его текущие буферы, отменяет прежний таймер,
// сразу запрашивает данные и запускает периодический опрос.
func (c *Controller) Select(symbol string) error {
	c.mu.Lock()

	logger.Info("Смена символа", zap.String("symbol", symbol), zap.String("previous", c.active))

	c.active = symbol
	c.store.Ensure(symbol)
	c.renderLocked(symbol)

	if c.handle != nil {
		c.handle.Cancel()
		c.handle = nil
	}

	handle, err := c.sched.Every(c.interval, func() { c.Refresh(symbol) })
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("ошибка запуска опроса для %s: %w", symbol, err)
	}
	c.handle = handle
	c.mu.Unlock()

	c.spawn(func() { c.Refresh(symbol) })
	return nil
}

// Refresh выполняет один цикл опроса для символа.
// При ошибке цикл пропускается без изменения состояния.
// Циклы не упорядочиваются: медленный ранний ответ может лечь в буфер после быстрого позднего.
func (c *Controller) Refresh(symbol string) {
	cycle := uuid.NewString()
	logger.Debug("Запрос новых данных", zap.String("symbol", symbol), zap.String("cycle", cycle))

	snapshot, err := c.source.Fetch(c.ctx, symbol)
	if err != nil {
		if c.ctx.Err() != nil {
			logger.Debug("Цикл прерван завершением работы", zap.String("symbol", symbol), zap.String("cycle", cycle))
			return
		}
		logger.Error("Не удалось получить данные",
			zap.String("symbol", symbol),
			zap.String("cycle", cycle),
			zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.store.Ensure(symbol)
	result := sentiment.Analyze(snapshot, sentiment.Previous{
		LastPrice:        st.LastPrice,
		LastOpenInterest: st.LastOpenInterest,
	})

	c.store.Remember(symbol, snapshot.MarkPrice, snapshot.OpenInterest)
	c.store.Append(symbol, models.Sample{
		SentimentScore:     result.Score,
		FundingRatePercent: snapshot.FundingRatePercent,
		OpenInterest:       snapshot.OpenInterest,
	})
	c.latest[symbol] = result

	logger.Info("Получены данные",
		zap.String("symbol", symbol),
		zap.String("cycle", cycle),
		zap.Float64("score", result.Score),
		zap.Float64("funding_pct", snapshot.FundingRatePercent),
		zap.Float64("open_interest", snapshot.OpenInterest),
		zap.Float64("mark_price", snapshot.MarkPrice))

	if c.active == symbol {
		c.renderLocked(symbol)
	}
}

// Stop отменяет активный таймер
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle != nil {
		c.handle.Cancel()
		c.handle = nil
	}
}

// Active возвращает активный символ
func (c *Controller) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Snapshot возвращает копию буферов символа
func (c *Controller) Snapshot(symbol string) (state.SymbolState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Snapshot(symbol)
}

// Latest возвращает последнюю оценку по символу
func (c *Controller) Latest(symbol string) (*models.SentimentResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.latest[symbol]
	return res, ok
}

func (c *Controller) renderLocked(symbol string) {
	st, ok := c.store.Get(symbol)
	if !ok {
		return
	}

	frames := c.renderer.Render(st)
	if c.onRender != nil {
		c.onRender(Update{
			Symbol: symbol,
			Frames: frames,
			State:  st.Clone(),
			Result: c.latest[symbol],
		})
	}
}
