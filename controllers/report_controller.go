package controllers

import (
	"crypto_dashboard/core"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ReportController 日报控制器
type ReportController struct {
	manager *core.ReportManager
}

// NewReportController 创建日报控制器
func NewReportController(manager *core.ReportManager) *ReportController {
	return &ReportController{
		manager: manager,
	}
}

// GetReport 获取日报，缓存有效期内直接返回缓存
func (r *ReportController) GetReport(ctx *gin.Context) {
	report := r.manager.Get(ctx.Request.Context())
	ctx.JSON(http.StatusOK, report)
}

// RefreshReport 强制同步刷新日报并返回最新结果
func (r *ReportController) RefreshReport(ctx *gin.Context) {
	logrus.Info("收到手动刷新日报请求")
	report := r.manager.Refresh(ctx.Request.Context())
	ctx.JSON(http.StatusOK, report)
}

// GetReportMarkdown 以Markdown格式返回当前日报
func (r *ReportController) GetReportMarkdown(ctx *gin.Context) {
	report := r.manager.Get(ctx.Request.Context())
	ctx.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(core.RenderMarkdown(report)))
}
