// Package server exposes the CV exporter over HTTP.
package server

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ByLCY/vitae/binding"
	"github.com/ByLCY/vitae/layout"
	"github.com/ByLCY/vitae/renderer"
	"github.com/ByLCY/vitae/renderer/backend"
	"github.com/ByLCY/vitae/resume"
)

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// Options configures New. Zero values fall back to backend.Default,
// layout.DefaultStyle and slog.Default.
type Options struct {
	Renderer string
	Style    *layout.Style
	Backends *backend.Set
	Logger   *slog.Logger
}

// Handler serves the export endpoints.
type Handler struct {
	renderer string
	style    layout.Style
	backends *backend.Set
	logger   *slog.Logger
}

// NewHandler fills in defaults for opts.
func NewHandler(opts Options) *Handler {
	h := &Handler{
		renderer: opts.Renderer,
		style:    layout.DefaultStyle(),
		backends: opts.Backends,
		logger:   opts.Logger,
	}
	if opts.Style != nil {
		h.style = *opts.Style
	}
	if h.backends == nil {
		h.backends = backend.NewSet()
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

// New builds the fiber app with every route registered.
func New(opts Options) *fiber.App {
	h := NewHandler(opts)
	app := fiber.New(fiber.Config{
		AppName:               "vitae",
		DisableStartupMessage: true,
		ErrorHandler:          h.handleError,
	})
	app.Use(h.requestLog)
	app.Get("/healthz", h.Health)
	v1 := app.Group("/v1/cv")
	v1.Post("/pdf", h.ExportPDF)
	v1.Post("/layout", h.Layout)
	return app
}

type errorBody struct {
	Error  string              `json:"error"`
	Fields []resume.FieldError `json:"fields,omitempty"`
}

// apiError is rendered by handleError with its own status and body.
type apiError struct {
	status int
	body   errorBody
}

func (e *apiError) Error() string { return e.body.Error }

func (h *Handler) requestLog(c *fiber.Ctx) error {
	id := c.Get(HeaderRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(HeaderRequestID, id)
	c.Locals("request_id", id)

	start := time.Now()
	err := c.Next()
	if err != nil {
		// 先交给错误处理器写响应，日志里才能拿到最终状态码
		if herr := h.handleError(c, err); herr != nil {
			return herr
		}
	}
	h.logger.Info("request",
		"id", id,
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
	)
	return nil
}

func (h *Handler) handleError(c *fiber.Ctx, err error) error {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return c.Status(apiErr.status).JSON(apiErr.body)
	}
	code := fiber.StatusInternalServerError
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code = ferr.Code
	}
	if code >= fiber.StatusInternalServerError {
		h.logger.Error("request failed", "id", c.Locals("request_id"), "error", err)
	}
	return c.Status(code).JSON(errorBody{Error: err.Error()})
}

// Health reports liveness.
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ExportPDF lays out the posted document and returns it as a PDF attachment.
// Query parameters: renderer (fpdf|canvas) and filename.
func (h *Handler) ExportPDF(c *fiber.Ctx) error {
	doc, b, err := h.prepare(c)
	if err != nil {
		return err
	}
	res, err := layout.Build(doc, layout.BuildOptions{Typesetter: b, Style: &h.style})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if cov, ok := b.(renderer.Coverage); ok {
		if missing := cov.Unsupported(res); len(missing) > 0 {
			h.logger.Warn("unsupported runes replaced", "id", c.Locals("request_id"), "runes", string(missing))
		}
	}
	pdf, err := b.Render(res)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	tmpl := c.Query("filename", h.style.FileName)
	c.Attachment(binding.FileName(tmpl, doc.Data()))
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(pdf)
}

// Layout returns the computed pages as JSON without encoding a PDF.
func (h *Handler) Layout(c *fiber.Ctx) error {
	doc, b, err := h.prepare(c)
	if err != nil {
		return err
	}
	res, err := layout.Build(doc, layout.BuildOptions{Typesetter: b, Style: &h.style})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{
		"sections": res.Sections(),
		"result":   res,
	})
}

// prepare decodes the body and picks the backend named by ?renderer=.
func (h *Handler) prepare(c *fiber.Ctx) (resume.Document, renderer.Backend, error) {
	doc, err := resume.DecodeBytes(c.Body())
	if err != nil {
		return resume.Document{}, nil, badRequest(err)
	}
	b, err := h.backends.Get(c.Query("renderer", h.renderer))
	if err != nil {
		return resume.Document{}, nil, &apiError{status: fiber.StatusBadRequest, body: errorBody{Error: err.Error()}}
	}
	return doc, b, nil
}

func badRequest(err error) *apiError {
	body := errorBody{Error: "invalid payload"}
	var schemaErr *resume.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		body.Fields = schemaErr.Errors
	case errors.Is(err, resume.ErrMissingName):
		body.Fields = []resume.FieldError{{Field: "personal_info.name", Message: "name is required"}}
	default:
		body.Error = err.Error()
	}
	return &apiError{status: fiber.StatusBadRequest, body: body}
}
