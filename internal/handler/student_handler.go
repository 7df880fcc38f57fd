package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyflow/internal/service"
)

// ListStudentTasks 返回当前学生某一天的任务列表
func (a *API) ListStudentTasks(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, http.StatusUnauthorized, "未登录")
		return
	}

	tasks, err := a.tasks.ListForStudent(user.ID, user.CohortID, c.Query("day"))
	if err != nil {
		if errors.Is(err, service.ErrTaskInvalidInput) {
			respondError(c, http.StatusBadRequest, "无效的星期参数")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取任务列表失败")
		return
	}

	items := make([]gin.H, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, taskToPayload(task))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": items})
}
