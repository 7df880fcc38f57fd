package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/studyflow/internal/config"
	"github.com/studyflow/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, cfg config.AppConfig) *gin.Engine {
	r := gin.Default()

	// 前端是独立部署的 SPA，需要携带凭证的跨域访问
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 配置会话中间件
	// 显式声明 Cookie 属性：本地 http 开发不能带 Secure，否则浏览器直接丢弃
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("studyflow_session", store))

	// 静态文件服务（头像等上传内容）
	r.Static(cfg.UploadURLPath, cfg.UploadDir)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	auth := r.Group("/api/auth")
	{
		auth.POST("/login", api.Login)
		auth.POST("/google", api.LoginWithGoogle)
		auth.POST("/register", api.Register)
		auth.POST("/logout", api.Logout)
	}

	// 登录页需要展示机构信息，读取不要求会话
	r.GET("/api/settings", api.GetSettings)

	// 登录后通用路由
	authed := r.Group("/api")
	authed.Use(api.AuthRequired())
	{
		authed.GET("/auth/me", api.Me)
		authed.GET("/cohorts", api.ListCohorts)
		authed.GET("/subjects", api.ListSubjects)
		authed.GET("/study-modes", api.ListStudyModes)
		authed.GET("/failure-reasons", api.ListFailureReasons)
		authed.POST("/uploads/avatar", api.UploadAvatar)
	}

	// 后台管理路由
	admin := r.Group("/api/admin")
	admin.Use(api.AuthRequired(), api.AdminRequired())
	{
		admin.GET("/analytics", api.GetAdminDashboard)

		admin.GET("/students", api.ListStudents)
		admin.PUT("/students/:id/status", api.UpdateStudentStatus)
		admin.PUT("/students/:id/cohort", api.UpdateStudentCohort)

		admin.GET("/cohorts", api.ListCohorts)
		admin.POST("/cohorts", api.CreateCohort)
		admin.PUT("/cohorts/:id", api.UpdateCohort)
		admin.DELETE("/cohorts/:id", api.DeleteCohort)

		admin.GET("/subjects", api.ListSubjects)
		admin.POST("/subjects", api.CreateSubject)
		admin.PUT("/subjects/:id", api.UpdateSubject)
		admin.DELETE("/subjects/:id", api.DeleteSubject)

		admin.GET("/tasks", api.ListPlannerTasks)
		admin.POST("/tasks", api.CreateTask)
		admin.PUT("/tasks/:id", api.UpdateTask)
		admin.DELETE("/tasks/:id", api.DeleteTask)
		admin.POST("/tasks/import", api.ImportBaseTasks)

		admin.POST("/study-modes", api.CreateStudyMode)
		admin.PUT("/study-modes/:id", api.UpdateStudyMode)
		admin.DELETE("/study-modes/:id", api.DeleteStudyMode)

		admin.POST("/failure-reasons", api.CreateFailureReason)
		admin.PUT("/failure-reasons/:id", api.UpdateFailureReason)
		admin.DELETE("/failure-reasons/:id", api.DeleteFailureReason)

		admin.PUT("/settings", api.UpdateSettings)
	}

	// 学生端路由
	student := r.Group("/api/student")
	student.Use(api.AuthRequired(), api.StudentRequired())
	{
		student.GET("/tasks", api.ListStudentTasks)
		student.GET("/analytics", api.GetStudentOverview)
		student.GET("/checkins", api.ListCheckIns)
		student.GET("/checkins/status", api.GetCheckInStatus)
		student.POST("/checkins", api.CreateCheckIn)
		student.DELETE("/checkins/:id", api.UndoCheckIn)
	}

	return r
}
