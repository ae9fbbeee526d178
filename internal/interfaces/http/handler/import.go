package handler

import (
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/feedbridge/backend/internal/application/importer"
	"github.com/feedbridge/backend/internal/domain/order"
	"github.com/feedbridge/backend/internal/domain/shared"
	"github.com/feedbridge/backend/internal/infrastructure/csvfeed"
	"github.com/feedbridge/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ImportHandler handles feed import endpoints, both the JSON API and the
// minimal HTML admin surface
type ImportHandler struct {
	BaseHandler
	service       *importer.Service
	runLogs       order.RunLogRepository
	maxUploadSize int64
	logger        *zap.Logger
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(service *importer.Service, runLogs order.RunLogRepository, maxUploadSize int64, logger *zap.Logger) *ImportHandler {
	return &ImportHandler{
		service:       service,
		runLogs:       runLogs,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// RunResponse summarizes one import run
type RunResponse struct {
	FileName   string    `json:"file_name"`
	DryRun     bool      `json:"dry_run"`
	RepairMode bool      `json:"repair_mode"`
	Created    int       `json:"created"`
	Skipped    int       `json:"skipped"`
	Repaired   int       `json:"repaired"`
	Failed     int       `json:"failed"`
	Lines      []string  `json:"lines"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func runResponseFrom(log *order.ImportRunLog) RunResponse {
	return RunResponse{
		FileName:   log.FileName,
		DryRun:     log.DryRun,
		RepairMode: log.RepairMode,
		Created:    log.Created,
		Skipped:    log.Skipped,
		Repaired:   log.Repaired,
		Failed:     log.Failed,
		Lines:      log.Lines,
		StartedAt:  log.StartedAt,
		FinishedAt: log.FinishedAt,
	}
}

// Run accepts a feed file upload and executes an import run
func (h *ImportHandler) Run(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if h.maxUploadSize > 0 && header.Size > h.maxUploadSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "file exceeds maximum upload size")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType != "" && contentType != "text/csv" && contentType != "text/tab-separated-values" &&
		contentType != "application/octet-stream" && contentType != "text/plain" &&
		contentType != "application/vnd.ms-excel" {
		h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeInvalidFeed, "file must be a CSV or TSV feed")
		return
	}

	opts := importer.Options{
		FileName:   header.Filename,
		DryRun:     formFlag(c, "dry_run"),
		RepairMode: formFlag(c, "repair_mode"),
	}

	runLog, err := h.service.Run(c.Request.Context(), file, opts)
	if err != nil {
		h.handleFeedError(c, err)
		return
	}

	h.logger.Info("Feed import run completed",
		zap.String("file", opts.FileName),
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("repair_mode", opts.RepairMode),
		zap.Int("created", runLog.Created),
		zap.Int("skipped", runLog.Skipped),
		zap.Int("repaired", runLog.Repaired),
		zap.Int("failed", runLog.Failed),
	)

	// The HTML form posts with redirect=1 and lands back on the admin page
	if c.PostForm("redirect") == "1" {
		c.Redirect(http.StatusSeeOther, c.Request.URL.Path)
		return
	}

	h.Success(c, runResponseFrom(runLog))
}

// LastRun returns the log of the most recent import run
func (h *ImportHandler) LastRun(c *gin.Context) {
	runLog, err := h.runLogs.Latest(c.Request.Context())
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "no import has run yet")
			return
		}
		h.HandleError(c, err)
		return
	}

	h.Success(c, runResponseFrom(runLog))
}

// handleFeedError maps feed pre-flight failures onto 400 responses
func (h *ImportHandler) handleFeedError(c *gin.Context, err error) {
	var missing *csvfeed.MissingColumnError
	switch {
	case errors.As(err, &missing):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidFeed, missing.Error())
	case errors.Is(err, csvfeed.ErrEmptyFile):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidFeed, "feed file is empty")
	case errors.Is(err, csvfeed.ErrInvalidEncoding):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidFeed, "feed file must be UTF-8 encoded")
	case errors.Is(err, csvfeed.ErrMissingHeader):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidFeed, "feed file is missing its header row")
	case errors.Is(err, csvfeed.ErrNoDataRows):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidFeed, "feed file contains no data rows")
	default:
		h.HandleError(c, err)
	}
}

// formFlag reads a checkbox-style form value
func formFlag(c *gin.Context, name string) bool {
	switch c.PostForm(name) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

var adminPageTemplate = template.Must(template.New("admin").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Feed Import</title>
<style>
body { font-family: sans-serif; margin: 2rem; max-width: 48rem; }
pre { background: #f4f4f4; padding: 1rem; overflow-x: auto; }
label { display: block; margin: 0.5rem 0; }
</style>
</head>
<body>
<h1>Feed Import</h1>
<form method="post" enctype="multipart/form-data">
<input type="hidden" name="redirect" value="1">
<label><input type="file" name="file" accept=".csv,.tsv,text/csv" required></label>
<label><input type="checkbox" name="dry_run" value="1"> Dry run (report only, no writes)</label>
<label><input type="checkbox" name="repair_mode" value="1"> Repair mode (rebuild items on existing orders)</label>
<button type="submit">Run import</button>
</form>
<h2>Last run</h2>
{{if .HasRun}}
<p>{{.FileName}} started {{.StartedAt}}{{if .DryRun}} (dry run){{end}}{{if .RepairMode}} (repair mode){{end}}</p>
<p>Created {{.Created}}, skipped {{.Skipped}}, repaired {{.Repaired}}, failed {{.Failed}}.</p>
<pre>{{.Log}}</pre>
{{else}}
<p>No import has run yet.</p>
{{end}}
</body>
</html>
`))

type adminPageData struct {
	HasRun     bool
	FileName   string
	DryRun     bool
	RepairMode bool
	Created    int
	Skipped    int
	Repaired   int
	Failed     int
	StartedAt  string
	Log        string
}

// ShowPage renders the HTML admin page with the upload form and last run log
func (h *ImportHandler) ShowPage(c *gin.Context) {
	data := adminPageData{}

	runLog, err := h.runLogs.Latest(c.Request.Context())
	switch {
	case err == nil:
		data = adminPageData{
			HasRun:     true,
			FileName:   runLog.FileName,
			DryRun:     runLog.DryRun,
			RepairMode: runLog.RepairMode,
			Created:    runLog.Created,
			Skipped:    runLog.Skipped,
			Repaired:   runLog.Repaired,
			Failed:     runLog.Failed,
			StartedAt:  runLog.StartedAt.Format("2006-01-02 15:04:05"),
			Log:        runLog.Text(),
		}
	case errors.Is(err, shared.ErrNotFound):
		// first run, page renders without a log
	default:
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := adminPageTemplate.Execute(c.Writer, data); err != nil {
		h.logger.Error("Failed to render admin page", zap.Error(err))
	}
}
