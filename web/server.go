package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Vaflel/class-hours/domain"
	"github.com/Vaflel/class-hours/infrastructure"
	"github.com/Vaflel/class-hours/usecases"
)

// ServerOptions содержит тексты страниц и ограничения загрузки
type ServerOptions struct {
	Header      string
	Subheader   string
	Formats     []string // расширения, которые принимает форма загрузки
	MaxUploadMB int
}

type Server struct {
	service *usecases.ReportService
	opts    ServerOptions
	logger  *zap.Logger
	engine  *gin.Engine
	server  *http.Server
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewServer(service *usecases.ReportService, opts ServerOptions, logger *zap.Logger) (*Server, error) {
	if opts.MaxUploadMB <= 0 {
		opts.MaxUploadMB = 20
	}

	pages, err := template.New("pages").Funcs(template.FuncMap{
		"join": strings.Join,
	}).ParseFS(assets, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("не удалось загрузить шаблоны: %w", err)
	}
	static, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, err
	}

	s := &Server{service: service, opts: opts, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), Logger(logger))
	r.SetHTMLTemplate(pages)
	r.StaticFS("/static", http.FS(static))

	r.GET("/", s.handleIndex)
	r.POST("/upload", s.handleUpload)
	r.POST("/cache/clear", s.handleClearCache)
	r.POST("/shutdown", s.handleShutdown)

	tables := r.Group("/tables/:id")
	{
		tables.GET("", s.handleTable)
		// сущность передаётся в запросе: номер аудитории может содержать "/", имя преподавателя бывает пустым
		tables.GET("/instructors", s.handleReport(domain.Instructor, "name"))
		tables.GET("/instructors/calendar.ics", s.handleICS(domain.Instructor, "name"))
		tables.GET("/rooms", s.handleReport(domain.Room, "room"))
		tables.GET("/rooms/calendar.ics", s.handleICS(domain.Room, "room"))
		tables.GET("/hours", s.handleHours)
		tables.GET("/hours.xlsx", s.handleHoursXLSX)
		tables.GET("/hours.yaml", s.handleHoursYAML)
		tables.GET("/grid", s.handleGrid)
	}

	s.engine = r
	return s, nil
}

// Handler возвращает http.Handler со всеми маршрутами
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start запускает сервер; после /shutdown возвращает http.ErrServerClosed
func (s *Server) Start(port int) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("сервер запущен", zap.String("url", fmt.Sprintf("http://localhost:%d", port)))
	return s.server.ListenAndServe()
}

// Shutdown останавливает сервер, дожидаясь активных запросов
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) page(c *gin.Context, status int, name string, data gin.H) {
	data["Header"] = s.opts.Header
	data["Subheader"] = s.opts.Subheader
	c.HTML(status, name, data)
}

func (s *Server) handleIndex(c *gin.Context) {
	s.page(c, http.StatusOK, "index.html", gin.H{
		"Formats": strings.Join(s.opts.Formats, ","),
	})
}

func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(s.opts.MaxUploadMB)<<20)

	header, err := c.FormFile("file")
	if err != nil {
		s.failPage(c, http.StatusBadRequest, fmt.Errorf("файл не выбран или слишком велик: %w", err))
		return
	}
	f, err := header.Open()
	if err != nil {
		s.failPage(c, http.StatusBadRequest, err)
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		s.failPage(c, http.StatusBadRequest, err)
		return
	}

	summary, err := s.service.Load(header.Filename, content)
	if err != nil {
		s.failPage(c, statusOf(err), err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/tables/"+summary.ID)
}

func (s *Server) handleTable(c *gin.Context) {
	summary, err := s.service.Summary(c.Param("id"))
	if err != nil {
		s.failPage(c, statusOf(err), err)
		return
	}
	s.page(c, http.StatusOK, "table.html", gin.H{"Table": summary})
}

func (s *Server) handleReport(kind domain.EntityKind, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		entity, ok := c.GetQuery(param)
		if !ok {
			s.failPage(c, http.StatusBadRequest, fmt.Errorf("не указан параметр %q", param))
			return
		}
		report, err := s.service.Report(id, kind, entity)
		if err != nil {
			s.failPage(c, statusOf(err), err)
			return
		}

		data := gin.H{
			"TableID":  id,
			"Report":   report,
			"IsRoom":   kind == domain.Room,
			"Calendar": template.HTML(report.Calendar),
			"ICSURL":   c.Request.URL.Path + "/calendar.ics?" + url.Values{param: {entity}}.Encode(),
		}
		if report.RenderErr != nil {
			data["RenderError"] = report.RenderErr.Error()
		}
		s.page(c, http.StatusOK, "report.html", data)
	}
}

func (s *Server) handleICS(kind domain.EntityKind, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		entity, ok := c.GetQuery(param)
		if !ok {
			s.fail(c, http.StatusBadRequest, fmt.Errorf("не указан параметр %q", param))
			return
		}
		data, name, err := s.service.CalendarICS(c.Param("id"), kind, entity)
		if err != nil {
			s.fail(c, statusOf(err), err)
			return
		}
		attachment(c, name, "text/calendar; charset=utf-8", data)
	}
}

func (s *Server) handleHours(c *gin.Context) {
	kind, err := domain.ParseEntityKind(c.Query("kind"))
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	hours, err := s.service.Hours(c.Param("id"), kind)
	if err != nil {
		s.fail(c, statusOf(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind.String(), "entities": hours})
}

func (s *Server) handleHoursXLSX(c *gin.Context) {
	data, name, err := s.service.HoursXLSX(c.Param("id"))
	if err != nil {
		s.fail(c, statusOf(err), err)
		return
	}
	attachment(c, name, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (s *Server) handleHoursYAML(c *gin.Context) {
	kind, err := domain.ParseEntityKind(c.Query("kind"))
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	data, name, err := s.service.HoursYAML(c.Param("id"), kind)
	if err != nil {
		s.fail(c, statusOf(err), err)
		return
	}
	attachment(c, name, "application/yaml; charset=utf-8", data)
}

func (s *Server) handleGrid(c *gin.Context) {
	kind, err := domain.ParseEntityKind(c.Query("kind"))
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	grid, err := s.service.Grid(c.Param("id"), kind)
	if err != nil {
		s.fail(c, statusOf(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"kind":         kind.String(),
		"slot_minutes": domain.SlotMinutes,
		"grid":         grid,
	})
}

func (s *Server) handleClearCache(c *gin.Context) {
	n := s.service.ClearCache()
	c.JSON(http.StatusOK, Response{Success: true, Message: fmt.Sprintf("удалено таблиц: %d", n)})
}

func (s *Server) handleShutdown(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Message: "Сервер завершает работу"})

	go func() {
		s.logger.Info("завершение работы сервера")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(ctx); err != nil {
			s.logger.Error("ошибка при завершении работы", zap.Error(err))
		}
	}()
}

// statusOf сопоставляет ошибки приложения с кодами HTTP
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecases.ErrTableNotFound), errors.Is(err, usecases.ErrEntityNotFound):
		return http.StatusNotFound
	case errors.Is(err, infrastructure.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, infrastructure.ErrMissingColumns),
		errors.Is(err, infrastructure.ErrEmptyTable),
		errors.Is(err, domain.ErrNoEvents),
		errors.Is(err, domain.ErrInvalidEvent),
		errors.Is(err, domain.ErrInvalidConfig):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.JSON(status, Response{Success: false, Message: err.Error()})
}

func (s *Server) failPage(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	s.page(c, status, "error.html", gin.H{"Status": status, "Message": err.Error()})
}

func attachment(c *gin.Context, name, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, contentType, data)
}
