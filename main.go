package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Vaflel/class-hours/config"
	"github.com/Vaflel/class-hours/infrastructure"
	"github.com/Vaflel/class-hours/usecases"
	"github.com/Vaflel/class-hours/web"
)

// openBrowser открывает адрес в браузере по умолчанию
func openBrowser(url string, logger *zap.Logger) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		logger.Warn("не удалось открыть браузер, откройте вручную", zap.String("url", url), zap.Error(err))
	}
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger, err := infrastructure.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Ошибка инициализации журнала: %v", err)
	}
	defer logger.Sync()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := cfg.Calendar.Location()
	if err != nil {
		logger.Fatal("неверный часовой пояс", zap.Error(err))
	}
	weekStart, err := cfg.Calendar.WeekStartIn(loc)
	if err != nil {
		logger.Fatal("неверная дата начала недели", zap.Error(err))
	}

	reader := infrastructure.NewSessionReader(cfg.Ingest.XLSCharset, logger)
	cache := infrastructure.NewTableCache(cfg.Cache.TTL)
	renderer := web.NewCalendarRenderer()

	service := usecases.NewReportService(reader, renderer, cache, usecases.ReportOptions{
		Lang:          cfg.Calendar.Lang,
		Hours:         cfg.Calendar.Hours,
		TitlePrefix:   cfg.Calendar.TitlePrefix,
		PeriodMinutes: cfg.Report.PeriodMinutes,
		WeekStart:     weekStart,
		Weeks:         cfg.Calendar.Weeks,
		Location:      loc,
	}, logger)

	server, err := web.NewServer(service, web.ServerOptions{
		Header:      cfg.Report.Header,
		Subheader:   cfg.Report.Subheader,
		Formats:     reader.Supported(),
		MaxUploadMB: cfg.Server.MaxUploadMB,
	}, logger)
	if err != nil {
		logger.Fatal("ошибка инициализации веб-сервера", zap.Error(err))
	}

	if cfg.Server.OpenBrowser {
		go func() {
			time.Sleep(500 * time.Millisecond)
			openBrowser(fmt.Sprintf("http://localhost:%d", cfg.Server.Port), logger)
		}()
	}

	if err := server.Start(cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("ошибка запуска веб-сервера", zap.Error(err))
	}
	logger.Info("сервер остановлен")
}
