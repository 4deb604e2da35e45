package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"farmasys/internal/apierror"
	"farmasys/internal/service"
)

type RetentionHandler struct{ svc service.RetentionService }

func NewRetentionHandler(svc service.RetentionService) *RetentionHandler {
	return &RetentionHandler{svc: svc}
}

// RunArchival godoc
// @Summary Dispara manualmente o ciclo de arquivamento
// @Tags retention
// @Produce json
// @Success 200 {object} retention.RunSummary
// @Failure 409 {object} apierror.APIError
// @Router /v1/retention/archival/run [post]
func (h *RetentionHandler) RunArchival(c *gin.Context) {
	summary, err := h.svc.RunArchival(c.Request.Context())
	if err != nil {
		h.writeJobError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *RetentionHandler) RunAudit(c *gin.Context) {
	checks, err := h.svc.RunAudit(c.Request.Context())
	if err != nil {
		h.writeJobError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checks": checks})
}

func (h *RetentionHandler) RunPurge(c *gin.Context) {
	summary, err := h.svc.RunPurge(c.Request.Context())
	if err != nil {
		h.writeJobError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *RetentionHandler) writeJobError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrJobRunning) {
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
		return
	}
	_ = c.Error(err)
}

// reportPeriod parses year and month query params, defaulting to the
// previous calendar month.
func reportPeriod(c *gin.Context) (int, time.Month, bool) {
	now := time.Now().UTC().AddDate(0, -1, 0)
	year := queryInt(c, "year", now.Year())
	month := queryInt(c, "month", int(now.Month()))
	if month < 1 || month > 12 || year < 2000 {
		c.JSON(http.StatusBadRequest, apierror.New("Periodo invalido"))
		return 0, 0, false
	}
	return year, time.Month(month), true
}

func (h *RetentionHandler) MonthlyReport(c *gin.Context) {
	year, month, ok := reportPeriod(c)
	if !ok {
		return
	}
	report, err := h.svc.MonthlyReport(c.Request.Context(), year, month)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *RetentionHandler) AnnualReport(c *gin.Context) {
	year := queryInt(c, "year", time.Now().UTC().Year()-1)
	if year < 2000 {
		c.JSON(http.StatusBadRequest, apierror.New("Ano invalido"))
		return
	}
	report, err := h.svc.AnnualReport(c.Request.Context(), year)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *RetentionHandler) Dashboard(c *gin.Context) {
	dash, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (h *RetentionHandler) Alerts(c *gin.Context) {
	alerts, err := h.svc.Alerts(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (h *RetentionHandler) ExportMonthlyPDF(c *gin.Context) {
	year, month, ok := reportPeriod(c)
	if !ok {
		return
	}
	data, err := h.svc.ExportMonthlyPDF(c.Request.Context(), year, month)
	if err != nil {
		_ = c.Error(err)
		return
	}
	name := fmt.Sprintf("relatorio-arquivamento-%04d-%02d.pdf", year, month)
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *RetentionHandler) ExportMonthlyXLSX(c *gin.Context) {
	year, month, ok := reportPeriod(c)
	if !ok {
		return
	}
	data, err := h.svc.ExportMonthlyXLSX(c.Request.Context(), year, month)
	if err != nil {
		_ = c.Error(err)
		return
	}
	name := fmt.Sprintf("relatorio-arquivamento-%04d-%02d.xlsx", year, month)
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
