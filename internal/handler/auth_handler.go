package handler

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/studyflow/internal/db"
	"github.com/studyflow/internal/service"
)

const (
	sessionUserKey     = "user_id"
	currentUserContext = "__current_user"
)

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleLoginPayload struct {
	IDToken string `json:"idToken"`
}

type registerPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login 处理邮箱密码登录
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload, "请求格式不正确") {
		return
	}

	user, err := a.users.Authenticate(payload.Email, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, http.StatusUnauthorized, "邮箱或密码错误")
		case errors.Is(err, service.ErrUserBlocked):
			respondError(c, http.StatusForbidden, "账号已被封禁")
		default:
			respondError(c, http.StatusInternalServerError, "登录失败")
		}
		return
	}

	if !a.saveSession(c, user.ID) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userToPayload(*user)})
}

// LoginWithGoogle 处理 Google ID Token 登录，首次登录自动建号待审批
func (a *API) LoginWithGoogle(c *gin.Context) {
	var payload googleLoginPayload
	if !bindJSON(c, &payload, "请求格式不正确") {
		return
	}

	user, err := a.users.LoginWithGoogle(payload.IDToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidIDToken):
			respondError(c, http.StatusUnauthorized, "Google 凭证校验失败")
		case errors.Is(err, service.ErrUserBlocked):
			respondError(c, http.StatusForbidden, "账号已被封禁")
		default:
			respondError(c, http.StatusInternalServerError, "登录失败")
		}
		return
	}

	if !a.saveSession(c, user.ID) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userToPayload(*user)})
}

// Register 处理学生自助注册，注册后等待管理员审批
func (a *API) Register(c *gin.Context) {
	var payload registerPayload
	if !bindJSON(c, &payload, "请求格式不正确") {
		return
	}

	user, err := a.users.Register(service.RegisterInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			respondError(c, http.StatusConflict, "该邮箱已注册")
			return
		}
		respondError(c, http.StatusBadRequest, "注册信息不完整或格式不正确")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": userToPayload(*user)})
}

// Logout 处理登出
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.JSON(http.StatusOK, gin.H{"message": "已退出登录"})
}

// Me 返回当前登录用户
func (a *API) Me(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, http.StatusUnauthorized, "未登录")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userToPayload(*user)})
}

func (a *API) saveSession(c *gin.Context, userID uint) bool {
	session := sessions.Default(c)
	session.Set(sessionUserKey, userID)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return false
	}
	return true
}

// AuthRequired 校验会话并重新加载用户，封禁账号当场失效
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		rawID := session.Get(sessionUserKey)
		userID, ok := rawID.(uint)
		if !ok || userID == 0 {
			respondError(c, http.StatusUnauthorized, "未登录")
			c.Abort()
			return
		}

		user, err := a.users.Get(userID)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "会话已失效")
			c.Abort()
			return
		}
		if user.Status == db.StatusBlocked {
			session.Clear()
			session.Save()
			respondError(c, http.StatusForbidden, "账号已被封禁")
			c.Abort()
			return
		}

		c.Set(currentUserContext, user)
		c.Next()
	}
}

// AdminRequired 在 AuthRequired 之后校验管理员角色
func (a *API) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || user.Role != db.RoleAdmin {
			respondError(c, http.StatusForbidden, "需要管理员权限")
			c.Abort()
			return
		}
		c.Next()
	}
}

// StudentRequired 在 AuthRequired 之后校验学生角色与审批状态
func (a *API) StudentRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || user.Role != db.RoleStudent {
			respondError(c, http.StatusForbidden, "需要学生账号")
			c.Abort()
			return
		}
		if user.Status != db.StatusActive {
			respondError(c, http.StatusForbidden, "账号待审批")
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *db.User {
	cached, exists := c.Get(currentUserContext)
	if !exists {
		return nil
	}
	user, ok := cached.(*db.User)
	if !ok {
		return nil
	}
	return user
}

func userToPayload(user db.User) gin.H {
	payload := gin.H{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"role":      user.Role,
		"status":    user.Status,
		"avatarUrl": user.AvatarURL,
		"createdAt": user.CreatedAt,
	}
	if user.CohortID != nil {
		payload["cohortId"] = *user.CohortID
	}
	if user.Cohort != nil {
		payload["cohortName"] = user.Cohort.Name
	}
	return payload
}
