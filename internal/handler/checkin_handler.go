package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/studyflow/internal/db"
	"github.com/studyflow/internal/service"
)

type checkInPayload struct {
	TaskID                uint   `json:"taskId"`
	Completed             bool   `json:"completed"`
	ActualDurationMinutes int    `json:"actualDurationMinutes"`
	Period                string `json:"period"`
	ReasonForFailure      string `json:"reasonForFailure"`
	Note                  string `json:"note"`
}

// CreateCheckIn 提交打卡
func (a *API) CreateCheckIn(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, http.StatusUnauthorized, "未登录")
		return
	}

	var payload checkInPayload
	if !bindJSON(c, &payload, "请求格式不正确") {
		return
	}

	record, err := a.checkins.Create(service.CheckInInput{
		TaskID:                payload.TaskID,
		StudentID:             user.ID,
		Completed:             payload.Completed,
		ActualDurationMinutes: payload.ActualDurationMinutes,
		Period:                payload.Period,
		ReasonForFailure:      payload.ReasonForFailure,
		Note:                  payload.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			respondError(c, http.StatusNotFound, "任务不存在")
		case errors.Is(err, service.ErrCheckInExists):
			respondError(c, http.StatusConflict, "该任务已打卡")
		case errors.Is(err, service.ErrCheckInInvalidInput):
			respondError(c, http.StatusBadRequest, "打卡字段不完整或格式不正确")
		default:
			respondError(c, http.StatusInternalServerError, "打卡失败")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"checkIn": checkInToPayload(*record)})
}

// UndoCheckIn 撤销打卡，任务回到待办
func (a *API) UndoCheckIn(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, http.StatusUnauthorized, "未登录")
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的打卡ID")
		return
	}

	if err := a.checkins.Undo(id, user.ID); err != nil {
		switch {
		case errors.Is(err, service.ErrCheckInNotFound):
			respondError(c, http.StatusNotFound, "打卡记录不存在")
		case errors.Is(err, service.ErrCheckInForbidden):
			respondError(c, http.StatusForbidden, "只能撤销自己的打卡")
		default:
			respondError(c, http.StatusInternalServerError, "撤销打卡失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "已撤销打卡"})
}

// GetCheckInStatus 返回当前学生按任务投影的打卡状态
func (a *API) GetCheckInStatus(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, http.StatusUnauthorized, "未登录")
		return
	}

	status, err := a.checkins.StatusMap(user.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取打卡状态失败")
		return
	}

	payload := make(map[uint]gin.H, len(status))
	for taskID, record := range status {
		payload[taskID] = checkInToPayload(record)
	}
	c.JSON(http.StatusOK, gin.H{"status": payload})
}

// ListCheckIns 返回当前学生的打卡历史，支持按日期与科目过滤
func (a *API) ListCheckIns(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, http.StatusUnauthorized, "未登录")
		return
	}

	filter := service.CheckInHistoryFilter{
		Date:    parseDateQuery(c, "date", false),
		Subject: strings.TrimSpace(c.Query("subject")),
	}

	records, err := a.checkins.ListForStudent(user.ID, filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取打卡历史失败")
		return
	}

	items := make([]gin.H, 0, len(records))
	for _, record := range records {
		payload := checkInToPayload(record)
		if record.Task.ID != 0 {
			payload["task"] = taskToPayload(record.Task)
		}
		items = append(items, payload)
	}
	c.JSON(http.StatusOK, gin.H{"checkIns": items})
}

func checkInToPayload(record db.CheckIn) gin.H {
	return gin.H{
		"id":                    record.ID,
		"taskId":                record.TaskID,
		"completed":             record.Completed,
		"actualDurationMinutes": record.ActualDurationMinutes,
		"period":                record.Period,
		"reasonForFailure":      record.ReasonForFailure,
		"note":                  record.Note,
		"timestamp":             record.Timestamp,
	}
}
