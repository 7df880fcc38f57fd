package service

import (
	"testing"
	"time"

	"github.com/studyflow/internal/db"
)

func TestStudentOverviewSeries(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	svc := NewStudentAnalyticsService(db.DB)
	cohort := createTestCohort(t, "冲刺一班")
	student := createTestStudent(t, "小雨", "rain@example.com", &cohort.ID)

	// 2026-08-24 是周一
	now := time.Date(2026, 8, 24, 15, 0, 0, 0, time.Local)

	taskMon := createTestTask(t, cohort.ID, nil, "Math", "Monday", 90)
	createTestTask(t, cohort.ID, nil, "English", "Monday", 30)
	createTestTask(t, cohort.ID, &student.ID, "Physics", "Tuesday", 60)

	createTestCheckIn(t, taskMon.ID, student.ID, true, 60, "", now.Add(-time.Hour))

	overview, err := svc.Overview(student.ID, &cohort.ID, now)
	if err != nil {
		t.Fatalf("Overview returned error: %v", err)
	}

	if len(overview.Series) != 7 {
		t.Fatalf("expected 7 days, got %d", len(overview.Series))
	}

	// 序列旧→新，最后一项是今天
	today := overview.Series[6]
	if today.Date != "2026-08-24" || today.Day != "Monday" {
		t.Fatalf("unexpected last entry: %+v", today)
	}
	if today.MetaHours != 2.0 {
		t.Fatalf("expected meta 2.0 hours (90+30 min), got %v", today.MetaHours)
	}
	if today.RealHours != 1.0 {
		t.Fatalf("expected real 1.0 hour, got %v", today.RealHours)
	}

	// 六天前的上周二只有计划，无实际
	lastTuesday := overview.Series[0]
	if lastTuesday.Day != "Tuesday" {
		t.Fatalf("expected Tuesday, got %s", lastTuesday.Day)
	}
	if lastTuesday.MetaHours != 1.0 || lastTuesday.RealHours != 0 {
		t.Fatalf("unexpected Tuesday entry: %+v", lastTuesday)
	}

	if overview.Efficiency != 100 {
		t.Fatalf("expected efficiency 100, got %d", overview.Efficiency)
	}
	if overview.TotalCompleted != 1 {
		t.Fatalf("expected 1 completed, got %d", overview.TotalCompleted)
	}
}

func TestStudentOverviewStreak(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	svc := NewStudentAnalyticsService(db.DB)
	cohort := createTestCohort(t, "冲刺一班")
	student := createTestStudent(t, "小雨", "rain@example.com", &cohort.ID)

	now := time.Date(2026, 8, 24, 20, 0, 0, 0, time.Local)

	// 今天与昨天各一条完成记录，前天缺卡
	taskToday := createTestTask(t, cohort.ID, nil, "Math", "Monday", 60)
	taskYesterday := createTestTask(t, cohort.ID, nil, "English", "Sunday", 60)
	createTestCheckIn(t, taskToday.ID, student.ID, true, 30, "", now)
	createTestCheckIn(t, taskYesterday.ID, student.ID, true, 30, "", now.AddDate(0, 0, -1))

	overview, err := svc.Overview(student.ID, &cohort.ID, now)
	if err != nil {
		t.Fatalf("Overview returned error: %v", err)
	}
	if overview.Streak != 2 {
		t.Fatalf("expected streak 2, got %d", overview.Streak)
	}
}

func TestStudentOverviewStreakTodayPending(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	svc := NewStudentAnalyticsService(db.DB)
	cohort := createTestCohort(t, "冲刺一班")
	student := createTestStudent(t, "小雨", "rain@example.com", &cohort.ID)

	now := time.Date(2026, 8, 24, 9, 0, 0, 0, time.Local)

	// 今天还没打卡不清零：昨天与前天连续，连胜为 2
	taskA := createTestTask(t, cohort.ID, nil, "Math", "Sunday", 60)
	taskB := createTestTask(t, cohort.ID, nil, "English", "Saturday", 60)
	createTestCheckIn(t, taskA.ID, student.ID, true, 30, "", now.AddDate(0, 0, -1))
	createTestCheckIn(t, taskB.ID, student.ID, true, 30, "", now.AddDate(0, 0, -2))

	overview, err := svc.Overview(student.ID, &cohort.ID, now)
	if err != nil {
		t.Fatalf("Overview returned error: %v", err)
	}
	if overview.Streak != 2 {
		t.Fatalf("expected streak 2 with pending today, got %d", overview.Streak)
	}
}

func TestStudentOverviewFailedCheckInBreaksNothing(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	svc := NewStudentAnalyticsService(db.DB)
	cohort := createTestCohort(t, "冲刺一班")
	student := createTestStudent(t, "小雨", "rain@example.com", &cohort.ID)

	now := time.Date(2026, 8, 24, 20, 0, 0, 0, time.Local)

	// 仅有未完成打卡的一天不算学习日
	task := createTestTask(t, cohort.ID, nil, "Math", "Monday", 60)
	createTestCheckIn(t, task.ID, student.ID, false, 0, "Too Tired", now)

	overview, err := svc.Overview(student.ID, &cohort.ID, now)
	if err != nil {
		t.Fatalf("Overview returned error: %v", err)
	}
	if overview.Streak != 0 {
		t.Fatalf("expected streak 0, got %d", overview.Streak)
	}
	if overview.Efficiency != 0 {
		t.Fatalf("expected efficiency 0, got %d", overview.Efficiency)
	}
	if overview.Series[6].RealHours != 0 {
		t.Fatalf("expected no real hours from failed check-in, got %v", overview.Series[6].RealHours)
	}
}
