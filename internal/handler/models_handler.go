package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"GeoScan-App/internal/domain/model"
	"GeoScan-App/internal/usecase"
)

// ModelsHandler モデルレジストリに関するHTTPハンドラー
type ModelsHandler struct {
	modelUseCase usecase.ModelUseCase
}

// NewModelsHandler ModelsHandlerの新しいインスタンスを作成
func NewModelsHandler(modelUseCase usecase.ModelUseCase) *ModelsHandler {
	return &ModelsHandler{
		modelUseCase: modelUseCase,
	}
}

// statusForError ドメインエラーをHTTPステータスに対応づける
func statusForError(err error) int {
	switch {
	case errors.Is(err, model.ErrModelNotFound), errors.Is(err, model.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrEpsilonTooSmall), errors.Is(err, model.ErrInvalidShape):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrPathExists):
		return http.StatusConflict
	case errors.Is(err, model.ErrCorruptData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse エラーレスポンスを書き出す
func errorResponse(c *gin.Context, err error, fallback string) {
	status := statusForError(err)
	label := "internal_error"
	switch status {
	case http.StatusNotFound:
		label = "not_found"
	case http.StatusBadRequest:
		label = "invalid_request"
	case http.StatusConflict:
		label = "conflict"
	case http.StatusUnprocessableEntity:
		label = "corrupt_data"
	}
	c.JSON(status, gin.H{
		"error":   label,
		"message": fallback + ": " + err.Error(),
	})
}

// RegisterModel POST /api/models - モデルの登録
func (h *ModelsHandler) RegisterModel(c *gin.Context) {
	var req model.RegisterModelRequest

	// リクエストボディの解析（Ginが自動でContent-Type確認）
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON format: " + err.Error(),
		})
		return
	}

	m, err := h.modelUseCase.RegisterModel(c.Request.Context(), &req)
	if err != nil {
		errorResponse(c, err, "Failed to register model")
		return
	}

	c.JSON(http.StatusCreated, m)
}

// ListModels GET /api/models - モデル概要一覧の取得
func (h *ModelsHandler) ListModels(c *gin.Context) {
	summaries, err := h.modelUseCase.ListModels(c.Request.Context())
	if err != nil {
		errorResponse(c, err, "Failed to list models")
		return
	}

	c.JSON(http.StatusOK, gin.H{"models": summaries})
}

// GetModel GET /api/models/:uid - モデル詳細の取得
func (h *ModelsHandler) GetModel(c *gin.Context) {
	uid := c.Param("uid")
	if uid == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing_parameter",
			"message": "Model UID is required",
		})
		return
	}

	m, err := h.modelUseCase.GetModel(c.Request.Context(), uid)
	if err != nil {
		errorResponse(c, err, "Failed to get model")
		return
	}

	c.JSON(http.StatusOK, m)
}

// DeleteModel DELETE /api/models/:uid - モデルの削除
func (h *ModelsHandler) DeleteModel(c *gin.Context) {
	uid := c.Param("uid")

	if err := h.modelUseCase.DeleteModel(c.Request.Context(), uid); err != nil {
		errorResponse(c, err, "Failed to delete model")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": uid})
}

// ExportModel POST /api/models/:uid/export - モデルのアーティファクト書き出し
func (h *ModelsHandler) ExportModel(c *gin.Context) {
	uid := c.Param("uid")

	var req model.ExportModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON format: " + err.Error(),
		})
		return
	}
	if req.Path == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing_parameter",
			"message": "path is required",
		})
		return
	}

	if err := h.modelUseCase.ExportModel(c.Request.Context(), uid, req.Path, req.Overwrite); err != nil {
		errorResponse(c, err, "Failed to export model")
		return
	}

	c.JSON(http.StatusOK, gin.H{"uid": uid, "path": req.Path})
}

// ImportModel POST /api/models/import - アーティファクトからのモデル登録
func (h *ModelsHandler) ImportModel(c *gin.Context) {
	var req model.ImportModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON format: " + err.Error(),
		})
		return
	}
	if req.Path == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing_parameter",
			"message": "path is required",
		})
		return
	}

	m, err := h.modelUseCase.ImportModel(c.Request.Context(), req.Path)
	if err != nil {
		errorResponse(c, err, "Failed to import model")
		return
	}

	c.JSON(http.StatusCreated, m)
}

// GetTiles GET /api/models/:uid/tiles - タイルテーブルの展開
func (h *ModelsHandler) GetTiles(c *gin.Context) {
	uid := c.Param("uid")

	// layers省略時はモデル設定値を使用
	layers := -1
	if layersParam := c.Query("layers"); layersParam != "" {
		parsed, err := strconv.Atoi(layersParam)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_parameter",
				"message": "layers must be a non-negative integer",
			})
			return
		}
		layers = parsed
	}

	tiles, err := h.modelUseCase.GetTiles(c.Request.Context(), uid, layers)
	if err != nil {
		errorResponse(c, err, "Failed to expand tiles")
		return
	}

	c.JSON(http.StatusOK, gin.H{"uid": uid, "count": len(tiles), "tiles": tiles})
}
