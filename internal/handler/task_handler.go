package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyflow/internal/db"
	"github.com/studyflow/internal/service"
)

type taskPayload struct {
	CohortID        uint   `json:"cohortId"`
	StudentID       *uint  `json:"studentId"`
	Subject         string `json:"subject"`
	Mode            string `json:"mode"`
	DurationMinutes int    `json:"durationMinutes"`
	DayOfWeek       string `json:"dayOfWeek"`
	Description     string `json:"description"`
}

type importPayload struct {
	StudentID uint   `json:"studentId"`
	CohortID  uint   `json:"cohortId"`
	Mode      string `json:"mode"`
}

// ListPlannerTasks 返回排课视图任务列表
// 不带 studentId 时为班级基础课表，带 studentId 时为该学生的个人课表
func (a *API) ListPlannerTasks(c *gin.Context) {
	filter := service.PlannerFilter{
		DayOfWeek: c.Query("day"),
		CohortID:  parseUintQuery(c, "cohortId"),
	}
	if studentID := parseUintQuery(c, "studentId"); studentID != 0 {
		filter.StudentID = &studentID
	}

	tasks, err := a.tasks.ListPlanner(filter)
	if err != nil {
		if errors.Is(err, service.ErrTaskInvalidInput) {
			respondError(c, http.StatusBadRequest, "无效的星期参数")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取课表失败")
		return
	}

	items := make([]gin.H, 0, len(tasks))
	for _, task := range tasks {
		payload := taskToPayload(task.Task)
		payload["trulyPersonalized"] = task.TrulyPersonalized
		items = append(items, payload)
	}

	response := gin.H{"tasks": items}
	// 学生模式附带是否已有个人课表，前端据此决定导入前是否弹确认
	if filter.StudentID != nil {
		hasTasks, err := a.tasks.StudentHasTasks(*filter.StudentID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "获取课表失败")
			return
		}
		response["hasPersonalTasks"] = hasTasks
	}

	c.JSON(http.StatusOK, response)
}

// CreateTask 新建任务
func (a *API) CreateTask(c *gin.Context) {
	var payload taskPayload
	if !bindJSON(c, &payload, "请求格式不正确") {
		return
	}

	task, err := a.tasks.Create(taskInputFromPayload(payload))
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"task": taskToPayload(*task)})
}

// UpdateTask 更新任务
func (a *API) UpdateTask(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的任务ID")
		return
	}

	var payload taskPayload
	if !bindJSON(c, &payload, "请求格式不正确") {
		return
	}

	task, err := a.tasks.Update(id, taskInputFromPayload(payload))
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": taskToPayload(*task)})
}

// DeleteTask 删除任务及其打卡记录
func (a *API) DeleteTask(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的任务ID")
		return
	}

	if err := a.tasks.Delete(id); err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "任务不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除任务失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "任务已删除"})
}

// ImportBaseTasks 将班级基础课表导入为学生个人课表
func (a *API) ImportBaseTasks(c *gin.Context) {
	var payload importPayload
	if !bindJSON(c, &payload, "请求格式不正确") {
		return
	}
	if payload.StudentID == 0 || payload.CohortID == 0 {
		respondError(c, http.StatusBadRequest, "缺少学生或班级参数")
		return
	}

	count, err := a.tasks.ImportBase(payload.StudentID, payload.CohortID, payload.Mode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoBaseTasks):
			respondError(c, http.StatusBadRequest, "该班级没有可导入的基础任务")
		case errors.Is(err, service.ErrInvalidImportMode):
			respondError(c, http.StatusBadRequest, "导入方式必须是 replace 或 merge")
		default:
			respondError(c, http.StatusInternalServerError, "导入课表失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"imported": count})
}

func handleTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		respondError(c, http.StatusNotFound, "任务不存在")
	case errors.Is(err, service.ErrCohortNotFound):
		respondError(c, http.StatusNotFound, "班级不存在")
	case errors.Is(err, service.ErrTaskInvalidInput):
		respondError(c, http.StatusBadRequest, "任务字段不完整或格式不正确")
	default:
		respondError(c, http.StatusInternalServerError, "保存任务失败")
	}
}

func taskInputFromPayload(payload taskPayload) service.TaskInput {
	return service.TaskInput{
		CohortID:        payload.CohortID,
		StudentID:       payload.StudentID,
		Subject:         payload.Subject,
		Mode:            payload.Mode,
		DurationMinutes: payload.DurationMinutes,
		DayOfWeek:       payload.DayOfWeek,
		Description:     payload.Description,
	}
}

func taskToPayload(task db.Task) gin.H {
	payload := gin.H{
		"id":              task.ID,
		"cohortId":        task.CohortID,
		"subject":         task.Subject,
		"mode":            task.Mode,
		"durationMinutes": task.DurationMinutes,
		"dayOfWeek":       task.DayOfWeek,
		"description":     task.Description,
		"descriptionHtml": renderMarkdown(task.Description),
	}
	if task.StudentID != nil {
		payload["studentId"] = *task.StudentID
	}
	if task.Student != nil {
		payload["studentName"] = task.Student.Name
	}
	return payload
}
