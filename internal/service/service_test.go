package service

import (
	"testing"
	"time"

	"github.com/studyflow/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
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
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	return func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func createTestCohort(t *testing.T, name string) *db.Cohort {
	t.Helper()
	cohort := db.Cohort{Name: name}
	if err := db.DB.Create(&cohort).Error; err != nil {
		t.Fatalf("failed to create cohort: %v", err)
	}
	return &cohort
}

func createTestStudent(t *testing.T, name, email string, cohortID *uint) *db.User {
	t.Helper()
	student := db.User{
		Name:     name,
		Email:    email,
		Password: "placeholder",
		Role:     db.RoleStudent,
		Status:   db.StatusActive,
		CohortID: cohortID,
	}
	if err := db.DB.Create(&student).Error; err != nil {
		t.Fatalf("failed to create student: %v", err)
	}
	return &student
}

func createTestTask(t *testing.T, cohortID uint, studentID *uint, subject, day string, minutes int) *db.Task {
	t.Helper()
	task := db.Task{
		CohortID:        cohortID,
		StudentID:       studentID,
		Subject:         subject,
		Mode:            "Video",
		DurationMinutes: minutes,
		DayOfWeek:       day,
	}
	if err := db.DB.Create(&task).Error; err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	return &task
}

func createTestCheckIn(t *testing.T, taskID, studentID uint, completed bool, minutes int, reason string, ts time.Time) *db.CheckIn {
	t.Helper()
	record := db.CheckIn{
		TaskID:                taskID,
		StudentID:             studentID,
		Completed:             completed,
		ActualDurationMinutes: minutes,
		Period:                db.PeriodMorning,
		ReasonForFailure:      reason,
		Timestamp:             ts,
	}
	if err := db.DB.Create(&record).Error; err != nil {
		t.Fatalf("failed to create check-in: %v", err)
	}
	return &record
}
