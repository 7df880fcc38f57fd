package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/studyflow/internal/config"
	"github.com/studyflow/internal/db"
	"github.com/studyflow/internal/service"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeVerifier struct {
	claims *service.GoogleClaims
	err    error
}

func (f *fakeVerifier) Verify(idToken string) (*service.GoogleClaims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

func setupHandlerTest(t *testing.T) (*API, *gin.Engine, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := gdb.AutoMigrate(
		&db.User{},
		&db.Cohort{},
		&db.Subject{},
		&db.Task{},
		&db.CheckIn{},
		&db.AppSetting{},
		&db.StudyMode{},
		&db.FailureReason{},
	); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	db.DB = gdb

	api := NewAPI(gdb, config.AppConfig{})

	r := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("studyflow_session", store))

	auth := r.Group("/api/auth")
	{
		auth.POST("/login", api.Login)
		auth.POST("/google", api.LoginWithGoogle)
		auth.POST("/register", api.Register)
		auth.POST("/logout", api.Logout)
	}

	r.GET("/api/settings", api.GetSettings)

	authed := r.Group("/api")
	authed.Use(api.AuthRequired())
	{
		authed.GET("/auth/me", api.Me)
		authed.GET("/cohorts", api.ListCohorts)
		authed.GET("/subjects", api.ListSubjects)
		authed.GET("/study-modes", api.ListStudyModes)
	}

	admin := r.Group("/api/admin")
	admin.Use(api.AuthRequired(), api.AdminRequired())
	{
		admin.GET("/analytics", api.GetAdminDashboard)
		admin.GET("/students", api.ListStudents)
		admin.GET("/tasks", api.ListPlannerTasks)
		admin.POST("/tasks", api.CreateTask)
		admin.POST("/tasks/import", api.ImportBaseTasks)
	}

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

	cleanup := func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	return api, r, cleanup
}

func createHandlerUser(t *testing.T, gdb *gorm.DB, name, email, password, role, status string, cohortID *uint) *db.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := db.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     role,
		Status:   status,
		CohortID: cohortID,
	}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return &user
}

// doJSON 发起带会话 Cookie 的 JSON 请求并返回响应
func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		request.AddCookie(c)
	}

	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, request)
	return recorder
}

// loginAs 登录并返回会话 Cookie
func loginAs(t *testing.T, r *gin.Engine, email, password string) []*http.Cookie {
	t.Helper()

	recorder := doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{"email": email, "password": password}, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", recorder.Code, recorder.Body.String())
	}
	return recorder.Result().Cookies()
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return payload
}
