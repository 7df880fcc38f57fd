package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyflow/internal/db"
	"github.com/studyflow/internal/service"
)

type settingsPayload struct {
	SchoolName     string `json:"schoolName"`
	InstructorName string `json:"instructorName"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	WelcomeMessage string `json:"welcomeMessage"`
	WhatsappLink   string `json:"whatsappLink"`
}

// GetSettings 返回机构信息；登录页也要展示校名，不要求会话
func (a *API) GetSettings(c *gin.Context) {
	setting, err := a.settings.Get()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取机构信息失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settingsToPayload(*setting)})
}

// UpdateSettings 保存机构信息
func (a *API) UpdateSettings(c *gin.Context) {
	var payload settingsPayload
	if !bindJSON(c, &payload, "请求格式不正确") {
		return
	}

	setting, err := a.settings.Update(service.SettingsInput(payload))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "保存机构信息失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settingsToPayload(*setting)})
}

func settingsToPayload(setting db.AppSetting) gin.H {
	return gin.H{
		"schoolName":         setting.SchoolName,
		"instructorName":     setting.InstructorName,
		"phone":              setting.Phone,
		"email":              setting.Email,
		"welcomeMessage":     setting.WelcomeMessage,
		"welcomeMessageHtml": renderMarkdown(setting.WelcomeMessage),
		"whatsappLink":       setting.WhatsappLink,
	}
}
