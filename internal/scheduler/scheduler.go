package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/skalibog/bfsd/pkg/logger"
	"go.uber.org/zap"
)

// Handle отменяет запланированную задачу
type Handle interface {
	Cancel()
}

// Scheduler запускает задачу с фиксированным интервалом
type Scheduler interface {
	Every(interval time.Duration, job func()) (Handle, error)
}

// CronScheduler реализует Scheduler поверх robfig/cron.
// Каждая задача получает собственный экземпляр cron, его остановка и есть отмена.
type CronScheduler struct{}

// NewCronScheduler создает планировщик
func NewCronScheduler() *CronScheduler {
	return &CronScheduler{}
}

// Every запускает job каждые interval (не чаще раза в секунду).
// Первый запуск происходит через interval, а не сразу.
func (s *CronScheduler) Every(interval time.Duration, job func()) (Handle, error) {
	if interval < time.Second {
		return nil, fmt.Errorf("интервал %s меньше секунды", interval)
	}
	if job == nil {
		return nil, fmt.Errorf("задача не задана")
	}

	l := cronLogger{}
	c := cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l)),
	)
	c.Schedule(cron.Every(interval), cron.FuncJob(job))
	c.Start()

	logger.Debug("Запланирована задача", zap.Duration("interval", interval))
	return &cronHandle{cron: c}, nil
}

type cronHandle struct {
	cron *cron.Cron
	once sync.Once
}

// Cancel останавливает будущие запуски. Уже выполняющаяся задача не прерывается.
func (h *cronHandle) Cancel() {
	h.once.Do(func() {
		h.cron.Stop()
		logger.Debug("Задача отменена")
	})
}

// cronLogger пробрасывает журнал cron в zap
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.GetLogger().Sugar().Debugw("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.GetLogger().Sugar().Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
