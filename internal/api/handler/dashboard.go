package handler

import (
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/timmy/producelens/internal/domain"
	"github.com/timmy/producelens/internal/logger"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var templateFS embed.FS

const dashboardTemplate = "dashboard.html"

// Templates parses the embedded dashboard templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"cell": formatCell,
	}).ParseFS(templateFS, "templates/*.html")
}

// DashboardHandler serves the HTML upload form and result page.
type DashboardHandler struct {
	analyzer       Analyzer
	maxUploadBytes int64
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(analyzer Analyzer, maxUploadBytes int64) *DashboardHandler {
	return &DashboardHandler{
		analyzer:       analyzer,
		maxUploadBytes: maxUploadBytes,
	}
}

type dashboardPage struct {
	Error  string
	Result *resultView
}

type resultView struct {
	Name       string
	Confidence string
	Preview    template.URL
	Facts      []domain.Nutrient
	Badges     []badgeSection
	Profile    []profileItem
}

type badgeSection struct {
	Title string
	Items []string
}

type profileItem struct {
	Title string
	Value string
}

// Index handles GET /.
func (h *DashboardHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, dashboardTemplate, dashboardPage{})
}

// Analyze handles POST /analyze.
func (h *DashboardHandler) Analyze(c *gin.Context) {
	data, err := readUpload(c, h.maxUploadBytes)
	if err != nil {
		msg := "Please select a fruit or vegetable image."
		if !errors.Is(err, errNoFile) {
			msg = err.Error()
		}
		c.HTML(uploadStatus(err), dashboardTemplate, dashboardPage{Error: msg})
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), data)
	if err != nil {
		logger.CtxWarn(c.Request.Context(), "Dashboard analyze failed: %v", err)
		c.HTML(http.StatusInternalServerError, dashboardTemplate, dashboardPage{
			Error: "Could not analyze this image: " + err.Error(),
		})
		return
	}

	c.HTML(http.StatusOK, dashboardTemplate, dashboardPage{Result: newResultView(result, data)})
}

func newResultView(r *domain.EnrichedResult, image []byte) *resultView {
	h := r.Health
	view := &resultView{
		Name:       cases.Title(language.English).String(r.Prediction.Label),
		Confidence: fmt.Sprintf("%.2f%%", r.RoundedConfidence()*100),
		Preview:    previewURL(image),
		Facts:      r.Nutrition.Facts(),
	}

	for _, b := range []badgeSection{
		{Title: "Best For", Items: h.BestFor},
		{Title: "Avoid If", Items: h.AvoidIf},
		{Title: "Season", Items: h.Season},
	} {
		if len(b.Items) > 0 {
			view.Badges = append(view.Badges, b)
		}
	}

	for _, p := range []profileItem{
		{Title: "Health Benefits", Value: strings.Join(h.HealthBenefits, ", ")},
		{Title: "Key Nutrients", Value: strings.Join(h.KeyNutrients, ", ")},
		{Title: "Glycemic Index", Value: h.GlycemicIndex.String()},
		{Title: "Origin", Value: h.Origin},
		{Title: "Popular In", Value: strings.Join(h.FamousIn, ", ")},
		{Title: "Preparation Tip", Value: h.PrepTip},
		{Title: "Pairs Well With", Value: strings.Join(h.PairsWellWith, ", ")},
	} {
		if p.Value != "" {
			view.Profile = append(view.Profile, p)
		}
	}
	return view
}

// previewURL inlines the upload as a data URL so nothing is written to disk.
func previewURL(image []byte) template.URL {
	mime := http.DetectContentType(image)
	if !strings.HasPrefix(mime, "image/") {
		return ""
	}
	return template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image))
}

// formatCell renders a nutrition value; missing values render blank.
func formatCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
