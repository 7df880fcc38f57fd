package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyflow/internal/db"
	"github.com/studyflow/internal/service"
)

type subjectPayload struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ListSubjects 返回科目列表 JSON
func (a *API) ListSubjects(c *gin.Context) {
	subjects, err := a.subjects.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取科目列表失败")
		return
	}

	items := make([]gin.H, 0, len(subjects))
	for _, subject := range subjects {
		items = append(items, subjectToPayload(subject))
	}

	c.JSON(http.StatusOK, gin.H{"subjects": items})
}

// CreateSubject 新建科目
func (a *API) CreateSubject(c *gin.Context) {
	var payload subjectPayload
	if !bindJSON(c, &payload, "请求格式不正确") {
		return
	}

	subject, err := a.subjects.Create(service.SubjectInput{Name: payload.Name, Color: payload.Color})
	if err != nil {
		if errors.Is(err, service.ErrSubjectNameTaken) {
			respondError(c, http.StatusConflict, "科目名称已存在")
			return
		}
		respondError(c, http.StatusBadRequest, "科目名称不能为空")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"subject": subjectToPayload(*subject)})
}

// UpdateSubject 更新科目
func (a *API) UpdateSubject(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的科目ID")
		return
	}

	var payload subjectPayload
	if !bindJSON(c, &payload, "请求格式不正确") {
		return
	}

	subject, err := a.subjects.Update(id, service.SubjectInput{Name: payload.Name, Color: payload.Color})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubjectNotFound):
			respondError(c, http.StatusNotFound, "科目不存在")
		case errors.Is(err, service.ErrSubjectNameTaken):
			respondError(c, http.StatusConflict, "科目名称已存在")
		default:
			respondError(c, http.StatusBadRequest, "科目名称不能为空")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"subject": subjectToPayload(*subject)})
}

// DeleteSubject 删除科目
func (a *API) DeleteSubject(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的科目ID")
		return
	}

	if err := a.subjects.Delete(id); err != nil {
		if errors.Is(err, service.ErrSubjectNotFound) {
			respondError(c, http.StatusNotFound, "科目不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除科目失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "科目已删除"})
}

func subjectToPayload(subject db.Subject) gin.H {
	return gin.H{
		"id":    subject.ID,
		"name":  subject.Name,
		"color": subject.Color,
	}
}
