package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"GeoScan-App/internal/domain/model"
	"GeoScan-App/internal/usecase"
)

// PredictHandler 推論に関するHTTPハンドラー
type PredictHandler struct {
	predictUseCase usecase.PredictUseCase
}

// NewPredictHandler PredictHandlerの新しいインスタンスを作成
func NewPredictHandler(predictUseCase usecase.PredictUseCase) *PredictHandler {
	return &PredictHandler{
		predictUseCase: predictUseCase,
	}
}

// Predict POST /api/models/:uid/predict - バッチ推論の実行
func (h *PredictHandler) Predict(c *gin.Context) {
	uid := c.Param("uid")

	var req model.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON format: " + err.Error(),
		})
		return
	}
	if len(req.Rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing_parameter",
			"message": "rows is required and must not be empty",
		})
		return
	}

	response, err := h.predictUseCase.Predict(c.Request.Context(), uid, &req)
	if err != nil {
		errorResponse(c, err, "Failed to run prediction")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetPredictionJob GET /api/predictions/:job_id - 保存済み推論結果の取得
func (h *PredictHandler) GetPredictionJob(c *gin.Context) {
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing_parameter",
			"message": "Job ID is required",
		})
		return
	}

	job, err := h.predictUseCase.GetPredictionJob(c.Request.Context(), jobID)
	if err != nil {
		errorResponse(c, err, "Failed to get prediction job")
		return
	}

	c.JSON(http.StatusOK, job)
}
