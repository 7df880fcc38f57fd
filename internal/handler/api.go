package handler

import (
	"github.com/studyflow/internal/config"
	"github.com/studyflow/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db               *gorm.DB
	users            *service.UserService
	cohorts          *service.CohortService
	subjects         *service.SubjectService
	tasks            *service.TaskService
	checkins         *service.CheckInService
	adminAnalytics   *service.AdminAnalyticsService
	studentAnalytics *service.StudentAnalyticsService
	settings         *service.SettingsService
	registry         *service.RegistryService
	uploadDir        string
	uploadURL        string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, cfg config.AppConfig) *API {
	verifier := service.NewGoogleVerifier(cfg.GoogleClientID)

	return &API{
		db:               gdb,
		users:            service.NewUserService(gdb, verifier),
		cohorts:          service.NewCohortService(gdb),
		subjects:         service.NewSubjectService(gdb),
		tasks:            service.NewTaskService(gdb),
		checkins:         service.NewCheckInService(gdb),
		adminAnalytics:   service.NewAdminAnalyticsService(gdb),
		studentAnalytics: service.NewStudentAnalyticsService(gdb),
		settings:         service.NewSettingsService(gdb),
		registry:         service.NewRegistryService(gdb),
		uploadDir:        cfg.UploadDir,
		uploadURL:        cfg.UploadURLPath,
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}

// SetGoogleVerifier 替换 Google 登录校验器，主要面向测试场景。
func (a *API) SetGoogleVerifier(verifier service.GoogleTokenVerifier) {
	a.users = service.NewUserService(a.db, verifier)
}
