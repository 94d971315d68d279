// Package httpapi provides the thin HTTP contract boundary spec.md §6
// names for the core engine: POST / runs a query through
// pkg/engine.FindResults and returns a content-negotiated response.
// The HTML form, static file serving, and SVG debug rendering spec.md §6
// also lists are explicit Non-goals (external collaborators, not core) and
// are not implemented here.
package httpapi

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/aggregate"
	"github.com/thomasfischer-his/pbflookup-sub000/pkg/engine"
)

// defaultResultLimit is the HTTP layer's result cap (spec §4.10: "the HTTP
// layer uses 20").
const defaultResultLimit = 20

// Server wraps a fiber.App bound to a single engine.Engine.
type Server struct {
	app    *fiber.App
	engine *engine.Engine
	logger *zap.Logger
}

// NewServer builds a Server with the POST / contract route registered.
func NewServer(eng *engine.Engine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := fiber.New(fiber.Config{
		AppName:      "pbflookup",
		ErrorHandler: errorHandler(logger),
	})

	s := &Server{app: app, engine: eng, logger: logger}

	app.Use(requestID())
	app.Post("/", s.handleQuery)

	return s
}

// Listen starts serving on addr (e.g. "127.0.0.1:8080").
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// requestID tags every request with an X-Request-Id header and attaches it
// to access logs, mirroring the pack's location service request-id
// convention (google/uuid.New()).
func requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := uuid.New().String()
		c.Locals("request_id", id)
		c.Set("X-Request-Id", id)
		return c.Next()
	}
}

func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		if fe, ok := err.(*fiber.Error); ok {
			code = fe.Code
		}
		logger.Warn("request failed", zap.Int("status", code), zap.Error(err))
		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}

// queryResult is the wire shape for a single aggregate.Result.
type queryResult struct {
	XMLName xml.Name `xml:"result" json:"-"`
	Lon     float64  `xml:"lon,attr" json:"lon"`
	Lat     float64  `xml:"lat,attr" json:"lat"`
	Quality float64  `xml:"quality,attr" json:"quality"`
	Origin  string   `xml:"origin,attr" json:"origin"`
}

type queryResponse struct {
	XMLName xml.Name      `xml:"results" json:"-"`
	Results []queryResult `xml:"result" json:"results"`
}

// handleQuery implements POST / (spec §6): body is `text/plain` of the
// form "...\ntext=<query>"; response mime is chosen by ?accept= or the
// Accept header, defaulting to JSON here since the HTML form itself is out
// of scope (see package doc).
func (s *Server) handleQuery(c *fiber.Ctx) error {
	text := extractQueryText(string(c.Body()))
	if text == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing text parameter")
	}

	duplicateProximity := 0.0
	if v := c.Query("duplicate_proximity"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			duplicateProximity = parsed
		}
	}

	results := s.engine.FindResults(text, duplicateProximity, defaultResultLimit)

	requestID, _ := c.Locals("request_id").(string)
	s.logger.Info("query served",
		zap.String("request_id", requestID),
		zap.String("text", text),
		zap.Int("results", len(results)),
	)

	resp := toQueryResponse(results, s.grid())

	switch negotiateMime(c) {
	case "application/xml", "text/xml":
		c.Set(fiber.HeaderContentType, fiber.MIMETextXMLCharsetUTF8)
		return c.XML(resp)
	default:
		return c.JSON(resp)
	}
}

func (s *Server) grid() gridConverter {
	return s.engine
}

// gridConverter narrows *engine.Engine down to the lon/lat conversion this
// handler needs, so tests can substitute a fake without a full World.
type gridConverter interface {
	ToLonLat(x, y int32) (float64, float64)
}

func toQueryResponse(results []aggregate.Result, grid gridConverter) queryResponse {
	out := queryResponse{Results: make([]queryResult, 0, len(results))}
	for _, r := range results {
		lon, lat := grid.ToLonLat(r.Coord.X, r.Coord.Y)
		out.Results = append(out.Results, queryResult{
			Lon: lon, Lat: lat, Quality: r.Quality, Origin: r.Origin,
		})
	}
	return out
}

// negotiateMime honors ?accept= first, then the Accept header, defaulting
// to JSON (spec §6: "response mime selected by ?accept=... or by Accept:
// header; default HTML" — HTML is out of scope here, so JSON is this
// adapter's default).
func negotiateMime(c *fiber.Ctx) string {
	accept := c.Query("accept")
	if accept == "" {
		accept = c.Get(fiber.HeaderAccept)
	}
	if strings.Contains(accept, "xml") {
		return "application/xml"
	}
	return "application/json"
}

// extractQueryText pulls the value of "text=" from a text/plain body of
// the form described in spec §6 ("...\ntext=<query>").
func extractQueryText(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "text=") {
			return strings.TrimPrefix(line, "text=")
		}
	}
	return ""
}
