package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyflow/internal/db"
	"github.com/studyflow/internal/service"
)

type studyModePayload struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Color string `json:"color"`
}

type failureReasonPayload struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// ListStudyModes 返回学习方式注册表
func (a *API) ListStudyModes(c *gin.Context) {
	modes, err := a.registry.ListStudyModes()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取学习方式失败")
		return
	}

	items := make([]gin.H, 0, len(modes))
	for _, mode := range modes {
		items = append(items, studyModeToPayload(mode))
	}
	c.JSON(http.StatusOK, gin.H{"studyModes": items})
}

// CreateStudyMode 新建学习方式
func (a *API) CreateStudyMode(c *gin.Context) {
	var payload studyModePayload
	if !bindJSON(c, &payload, "请求格式不正确") {
		return
	}

	mode, err := a.registry.CreateStudyMode(service.StudyModeInput(payload))
	if err != nil {
		respondError(c, http.StatusBadRequest, "学习方式名称不能为空")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"studyMode": studyModeToPayload(*mode)})
}

// UpdateStudyMode 更新学习方式
func (a *API) UpdateStudyMode(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的学习方式ID")
		return
	}

	var payload studyModePayload
	if !bindJSON(c, &payload, "请求格式不正确") {
		return
	}

	mode, err := a.registry.UpdateStudyMode(id, service.StudyModeInput(payload))
	if err != nil {
		if errors.Is(err, service.ErrStudyModeNotFound) {
			respondError(c, http.StatusNotFound, "学习方式不存在")
			return
		}
		respondError(c, http.StatusBadRequest, "学习方式名称不能为空")
		return
	}
	c.JSON(http.StatusOK, gin.H{"studyMode": studyModeToPayload(*mode)})
}

// DeleteStudyMode 删除学习方式
func (a *API) DeleteStudyMode(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的学习方式ID")
		return
	}

	if err := a.registry.DeleteStudyMode(id); err != nil {
		if errors.Is(err, service.ErrStudyModeNotFound) {
			respondError(c, http.StatusNotFound, "学习方式不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除学习方式失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "学习方式已删除"})
}

// ListFailureReasons 返回未完成原因注册表
func (a *API) ListFailureReasons(c *gin.Context) {
	reasons, err := a.registry.ListFailureReasons()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取未完成原因失败")
		return
	}

	items := make([]gin.H, 0, len(reasons))
	for _, reason := range reasons {
		items = append(items, failureReasonToPayload(reason))
	}
	c.JSON(http.StatusOK, gin.H{"failureReasons": items})
}

// CreateFailureReason 新建未完成原因
func (a *API) CreateFailureReason(c *gin.Context) {
	var payload failureReasonPayload
	if !bindJSON(c, &payload, "请求格式不正确") {
		return
	}

	reason, err := a.registry.CreateFailureReason(service.FailureReasonInput(payload))
	if err != nil {
		respondError(c, http.StatusBadRequest, "原因名称不能为空")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"failureReason": failureReasonToPayload(*reason)})
}

// UpdateFailureReason 更新未完成原因
func (a *API) UpdateFailureReason(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的原因ID")
		return
	}

	var payload failureReasonPayload
	if !bindJSON(c, &payload, "请求格式不正确") {
		return
	}

	reason, err := a.registry.UpdateFailureReason(id, service.FailureReasonInput(payload))
	if err != nil {
		if errors.Is(err, service.ErrFailureReasonNotFound) {
			respondError(c, http.StatusNotFound, "原因不存在")
			return
		}
		respondError(c, http.StatusBadRequest, "原因名称不能为空")
		return
	}
	c.JSON(http.StatusOK, gin.H{"failureReason": failureReasonToPayload(*reason)})
}

// DeleteFailureReason 删除未完成原因
func (a *API) DeleteFailureReason(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的原因ID")
		return
	}

	if err := a.registry.DeleteFailureReason(id); err != nil {
		if errors.Is(err, service.ErrFailureReasonNotFound) {
			respondError(c, http.StatusNotFound, "原因不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除原因失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "原因已删除"})
}

func studyModeToPayload(mode db.StudyMode) gin.H {
	return gin.H{
		"id":    mode.ID,
		"label": mode.Label,
		"value": mode.Value,
		"color": mode.Color,
	}
}

func failureReasonToPayload(reason db.FailureReason) gin.H {
	return gin.H{
		"id":    reason.ID,
		"label": reason.Label,
		"color": reason.Color,
	}
}
