package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyflow/internal/db"
	"github.com/studyflow/internal/service"
)

type cohortPayload struct {
	Name string `json:"name"`
}

// ListCohorts 返回班级列表 JSON
func (a *API) ListCohorts(c *gin.Context) {
	cohorts, err := a.cohorts.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取班级列表失败")
		return
	}

	items := make([]gin.H, 0, len(cohorts))
	for _, cohort := range cohorts {
		items = append(items, cohortToPayload(cohort))
	}

	c.JSON(http.StatusOK, gin.H{"cohorts": items})
}

// CreateCohort 新建班级
func (a *API) CreateCohort(c *gin.Context) {
	var payload cohortPayload
	if !bindJSON(c, &payload, "请求格式不正确") {
		return
	}

	cohort, err := a.cohorts.Create(payload.Name)
	if err != nil {
		if errors.Is(err, service.ErrCohortNameTaken) {
			respondError(c, http.StatusConflict, "班级名称已存在")
			return
		}
		respondError(c, http.StatusBadRequest, "班级名称不能为空")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"cohort": cohortToPayload(*cohort)})
}

// UpdateCohort 重命名班级
func (a *API) UpdateCohort(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的班级ID")
		return
	}

	var payload cohortPayload
	if !bindJSON(c, &payload, "请求格式不正确") {
		return
	}

	cohort, err := a.cohorts.Update(id, payload.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCohortNotFound):
			respondError(c, http.StatusNotFound, "班级不存在")
		case errors.Is(err, service.ErrCohortNameTaken):
			respondError(c, http.StatusConflict, "班级名称已存在")
		default:
			respondError(c, http.StatusBadRequest, "班级名称不能为空")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"cohort": cohortToPayload(*cohort)})
}

// DeleteCohort 删除班级
func (a *API) DeleteCohort(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的班级ID")
		return
	}

	if err := a.cohorts.Delete(id); err != nil {
		if errors.Is(err, service.ErrCohortNotFound) {
			respondError(c, http.StatusNotFound, "班级不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除班级失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "班级已删除"})
}

func cohortToPayload(cohort db.Cohort) gin.H {
	return gin.H{
		"id":        cohort.ID,
		"name":      cohort.Name,
		"createdAt": cohort.CreatedAt,
	}
}
