package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studyflow/internal/service"
)

// GetAdminDashboard 返回后台仪表盘统计
// 查询参数：cohortId、subject、studentId、start、end，均可省略
func (a *API) GetAdminDashboard(c *gin.Context) {
	filter := service.DashboardFilter{
		CohortID:  parseUintQuery(c, "cohortId"),
		Subject:   c.Query("subject"),
		StudentID: parseUintQuery(c, "studentId"),
		Start:     parseDateQuery(c, "start", false),
		End:       parseDateQuery(c, "end", true),
	}

	stats, err := a.adminAnalytics.Dashboard(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取仪表盘数据失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"dashboard": stats})
}

// GetStudentOverview 返回当前学生的个人统计
func (a *API) GetStudentOverview(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, http.StatusUnauthorized, "未登录")
		return
	}

	overview, err := a.studentAnalytics.Overview(user.ID, user.CohortID, time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取学习统计失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"overview": overview})
}
