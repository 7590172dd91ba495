package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/skalibog/bfsd/internal/chart"
	"github.com/skalibog/bfsd/internal/config"
	"github.com/skalibog/bfsd/internal/dashboard"
	"github.com/skalibog/bfsd/internal/exchange"
	"github.com/skalibog/bfsd/internal/scheduler"
	"github.com/skalibog/bfsd/internal/ui"
	"github.com/skalibog/bfsd/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Обработка флагов командной строки
	configPath := flag.String("config", "config.yaml", "путь к файлу конфигурации")
	flag.Parse()

	// Проверяем наличие файла конфигурации
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Файл конфигурации не найден: %s\n", *configPath)
		os.Exit(1)
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Options{
		File:     cfg.Log.File,
		JSONFile: cfg.Log.JSONFile,
		Level:    cfg.Log.Level,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer logger.GetLogger().Sync()

	logger.Info("Запуск BFSD",
		zap.String("config", *configPath),
		zap.Strings("symbols", cfg.Dashboard.Symbols),
		zap.String("default_symbol", cfg.Dashboard.DefaultSymbol))

	// Контекст отменяется по SIGINT/SIGTERM и закрывает UI
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Инициализируем клиент биржи
	client, err := exchange.NewBinanceClient(cfg.Binance)
	if err != nil {
		logger.Fatal("Ошибка инициализации клиента биржи", zap.Error(err))
	}

	controller := dashboard.NewController(ctx, client, scheduler.NewCronScheduler(), chart.NewRenderer(cfg.UI.ChartHeight))
	defer controller.Stop()

	userInterface := ui.NewTermUI(cfg.UI, cfg.Dashboard, cfg.Log.JSONFile, controller)

	// Запускаем UI в основном потоке (блокирующий вызов)
	if err := userInterface.Start(ctx); err != nil {
		logger.Error("UI завершился с ошибкой", zap.Error(err))
	}
	cancel()

	logger.Info("Завершение работы")
}
