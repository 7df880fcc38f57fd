package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyflow/internal/service"
)

type studentStatusPayload struct {
	Status string `json:"status"`
}

type studentCohortPayload struct {
	CohortID *uint `json:"cohortId"`
}

// ListStudents 返回学生列表 JSON，支持搜索与班级、状态筛选
func (a *API) ListStudents(c *gin.Context) {
	filter := service.StudentFilter{
		Search:   c.Query("search"),
		CohortID: parseUintQuery(c, "cohortId"),
		Status:   c.Query("status"),
	}

	students, err := a.users.ListStudents(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取学生列表失败")
		return
	}

	items := make([]gin.H, 0, len(students))
	for _, student := range students {
		items = append(items, userToPayload(student))
	}

	c.JSON(http.StatusOK, gin.H{"students": items})
}

// UpdateStudentStatus 流转学生账号状态：审批、拒绝或封禁
func (a *API) UpdateStudentStatus(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的学生ID")
		return
	}

	var payload studentStatusPayload
	if !bindJSON(c, &payload, "请求格式不正确") {
		return
	}

	student, err := a.users.SetStatus(id, payload.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "学生不存在")
		case errors.Is(err, service.ErrInvalidStatus):
			respondError(c, http.StatusBadRequest, "不支持的账号状态")
		default:
			respondError(c, http.StatusInternalServerError, "更新学生状态失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"student": userToPayload(*student)})
}

// UpdateStudentCohort 调整学生所属班级
func (a *API) UpdateStudentCohort(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的学生ID")
		return
	}

	var payload studentCohortPayload
	if !bindJSON(c, &payload, "请求格式不正确") {
		return
	}

	student, err := a.users.MoveCohort(id, payload.CohortID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "学生不存在")
		case errors.Is(err, service.ErrCohortNotFound):
			respondError(c, http.StatusNotFound, "班级不存在")
		default:
			respondError(c, http.StatusInternalServerError, "调整班级失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"student": userToPayload(*student)})
}
