package service

import (
	"errors"
	"testing"

	"github.com/studyflow/internal/db"
)

func TestCohortServiceCRUD(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	svc := NewCohortService(db.DB)

	cohort, err := svc.Create("冲刺一班")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.Create("冲刺一班"); !errors.Is(err, ErrCohortNameTaken) {
		t.Fatalf("expected ErrCohortNameTaken, got %v", err)
	}
	if _, err := svc.Create("   "); err == nil {
		t.Fatal("expected error for blank name")
	}

	renamed, err := svc.Update(cohort.ID, "冲刺强化班")
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if renamed.Name != "冲刺强化班" {
		t.Fatalf("unexpected name: %s", renamed.Name)
	}

	if _, err := svc.Update(999, "x"); !errors.Is(err, ErrCohortNotFound) {
		t.Fatalf("expected ErrCohortNotFound, got %v", err)
	}
}

func TestCohortServiceDeleteDetachesStudents(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	svc := NewCohortService(db.DB)
	cohort := createTestCohort(t, "冲刺一班")
	student := createTestStudent(t, "小雨", "rain@example.com", &cohort.ID)
	createTestTask(t, cohort.ID, nil, "Math", "Monday", 60)

	if err := svc.Delete(cohort.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	var reloaded db.User
	if err := db.DB.First(&reloaded, student.ID).Error; err != nil {
		t.Fatalf("failed to reload student: %v", err)
	}
	if reloaded.CohortID != nil {
		t.Fatal("expected student to be detached from deleted cohort")
	}

	var taskCount int64
	if err := db.DB.Model(&db.Task{}).Where("cohort_id = ?", cohort.ID).Count(&taskCount).Error; err != nil {
		t.Fatalf("failed to count tasks: %v", err)
	}
	if taskCount != 0 {
		t.Fatalf("expected cohort tasks removed, got %d", taskCount)
	}

	if err := svc.Delete(cohort.ID); !errors.Is(err, ErrCohortNotFound) {
		t.Fatalf("expected ErrCohortNotFound on second delete, got %v", err)
	}
}
