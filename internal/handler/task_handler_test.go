package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/studyflow/internal/db"
)

func TestPlannerCreateAndList(t *testing.T) {
	api, r, cleanup := setupHandlerTest(t)
	defer cleanup()

	createHandlerUser(t, api.DB(), "管理员", "admin@example.com", "admin123", db.RoleAdmin, db.StatusActive, nil)
	cohort := db.Cohort{Name: "冲刺一班"}
	if err := api.DB().Create(&cohort).Error; err != nil {
		t.Fatalf("failed to create cohort: %v", err)
	}

	cookies := loginAs(t, r, "admin@example.com", "admin123")

	body := gin.H{
		"cohortId":        cohort.ID,
		"subject":         "Math",
		"mode":            "Video",
		"durationMinutes": 90,
		"dayOfWeek":       "Monday",
		"description":     "**第三章** 微分",
	}
	recorder := doJSON(t, r, http.MethodPost, "/api/admin/tasks", body, cookies)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", recorder.Code, recorder.Body.String())
	}

	task := decodeBody(t, recorder)["task"].(map[string]interface{})
	html, _ := task["descriptionHtml"].(string)
	if html == "" {
		t.Fatal("expected rendered description html")
	}

	recorder = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/admin/tasks?day=Monday&cohortId=%d", cohort.ID), nil, cookies)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	tasks := decodeBody(t, recorder)["tasks"].([]interface{})
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].(map[string]interface{})["trulyPersonalized"] != false {
		t.Fatal("expected base task to not be personalized")
	}

	// 时长非法
	body["durationMinutes"] = 0
	recorder = doJSON(t, r, http.MethodPost, "/api/admin/tasks", body, cookies)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for zero duration, got %d", recorder.Code)
	}
}

func TestImportBaseTasksEndpoint(t *testing.T) {
	api, r, cleanup := setupHandlerTest(t)
	defer cleanup()

	createHandlerUser(t, api.DB(), "管理员", "admin@example.com", "admin123", db.RoleAdmin, db.StatusActive, nil)
	cohort := db.Cohort{Name: "冲刺一班"}
	if err := api.DB().Create(&cohort).Error; err != nil {
		t.Fatalf("failed to create cohort: %v", err)
	}
	student := createHandlerUser(t, api.DB(), "小雨", "rain@example.com", "secret123", db.RoleStudent, db.StatusActive, &cohort.ID)

	cookies := loginAs(t, r, "admin@example.com", "admin123")

	// 空班级导入报错
	recorder := doJSON(t, r, http.MethodPost, "/api/admin/tasks/import", gin.H{"studentId": student.ID, "cohortId": cohort.ID, "mode": "replace"}, cookies)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 without base tasks, got %d", recorder.Code)
	}

	for _, subject := range []string{"Math", "English"} {
		task := db.Task{CohortID: cohort.ID, Subject: subject, Mode: "Video", DurationMinutes: 60, DayOfWeek: "Monday"}
		if err := api.DB().Create(&task).Error; err != nil {
			t.Fatalf("failed to create base task: %v", err)
		}
	}

	recorder = doJSON(t, r, http.MethodPost, "/api/admin/tasks/import", gin.H{"studentId": student.ID, "cohortId": cohort.ID, "mode": "replace"}, cookies)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if decodeBody(t, recorder)["imported"].(float64) != 2 {
		t.Fatal("expected 2 imported tasks")
	}
}
