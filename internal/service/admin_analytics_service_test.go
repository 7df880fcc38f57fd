package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/studyflow/internal/db"
)

func TestDashboardEmptyHistory(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	svc := NewAdminAnalyticsService(db.DB)
	stats, err := svc.Dashboard(DashboardFilter{})
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}

	if stats.Efficiency != 0 {
		t.Fatalf("expected efficiency 0 with no data, got %d", stats.Efficiency)
	}
	if stats.TopFailure != TopFailureNone {
		t.Fatalf("expected %q sentinel, got %q", TopFailureNone, stats.TopFailure)
	}
	if len(stats.DailyAverageSeries) != 7 {
		t.Fatalf("expected 7 daily entries, got %d", len(stats.DailyAverageSeries))
	}
	for _, entry := range stats.DailyAverageSeries {
		if entry.Hours != 0 {
			t.Fatalf("expected zero hours for %s, got %v", entry.Day, entry.Hours)
		}
	}
}

func TestDashboardMondayAverage(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	svc := NewAdminAnalyticsService(db.DB)
	cohort := createTestCohort(t, "冲刺一班")
	studentA := createTestStudent(t, "小雨", "rain@example.com", &cohort.ID)
	createTestStudent(t, "小晴", "sun@example.com", &cohort.ID)

	taskMon := createTestTask(t, cohort.ID, nil, "Math", "Monday", 60)
	createTestTask(t, cohort.ID, nil, "English", "Monday", 30)
	createTestTask(t, cohort.ID, nil, "Physics", "Monday", 45)

	createTestCheckIn(t, taskMon.ID, studentA.ID, true, 90, "", time.Now())

	stats, err := svc.Dashboard(DashboardFilter{})
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}

	// 两名学生，一次 90 分钟完成：周一人均 (90/60)/2 = 0.75 小时
	if stats.DailyAverageSeries[0].Day != "Monday" {
		t.Fatalf("expected Monday first, got %s", stats.DailyAverageSeries[0].Day)
	}
	if stats.DailyAverageSeries[0].Hours != 0.75 {
		t.Fatalf("expected 0.75 hours, got %v", stats.DailyAverageSeries[0].Hours)
	}
	if stats.FilteredStudents != 2 {
		t.Fatalf("expected 2 filtered students, got %d", stats.FilteredStudents)
	}

	// 按单个学生筛选只收窄记录，人均分母仍是范围内全体学生
	stats, err = svc.Dashboard(DashboardFilter{StudentID: studentA.ID})
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if stats.DailyAverageSeries[0].Hours != 0.75 {
		t.Fatalf("expected 0.75 hours under student filter, got %v", stats.DailyAverageSeries[0].Hours)
	}
	if stats.FilteredStudents != 2 {
		t.Fatalf("expected 2 filtered students under student filter, got %d", stats.FilteredStudents)
	}
}

func TestDashboardEfficiencyAndFailures(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	svc := NewAdminAnalyticsService(db.DB)
	cohort := createTestCohort(t, "冲刺一班")
	student := createTestStudent(t, "小雨", "rain@example.com", &cohort.ID)

	// 10 条打卡：7 完成 3 未完成
	now := time.Now()
	for i := 0; i < 10; i++ {
		task := createTestTask(t, cohort.ID, nil, "Math", "Monday", 60)
		if i < 7 {
			createTestCheckIn(t, task.ID, student.ID, true, 30, "", now)
		} else {
			reason := "Too Tired"
			if i == 9 {
				reason = "Too Hard"
			}
			createTestCheckIn(t, task.ID, student.ID, false, 0, reason, now)
		}
	}

	stats, err := svc.Dashboard(DashboardFilter{})
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}

	if stats.Efficiency != 70 {
		t.Fatalf("expected efficiency 70, got %d", stats.Efficiency)
	}
	if stats.TopFailure != "Too Tired" {
		t.Fatalf("expected top failure Too Tired, got %s", stats.TopFailure)
	}
	if len(stats.FailureDistribution) != 2 {
		t.Fatalf("expected 2 failure reasons, got %d", len(stats.FailureDistribution))
	}
	if stats.FailureDistribution[0].Count != 2 {
		t.Fatalf("expected dominant reason count 2, got %d", stats.FailureDistribution[0].Count)
	}
}

func TestDashboardTopSubjectsCapped(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	svc := NewAdminAnalyticsService(db.DB)
	cohort := createTestCohort(t, "冲刺一班")
	student := createTestStudent(t, "小雨", "rain@example.com", &cohort.ID)

	subjects := []string{"Math", "English", "Physics", "Chemistry", "Biology", "History", "Geography"}
	now := time.Now()
	for i, subject := range subjects {
		task := createTestTask(t, cohort.ID, nil, subject, "Monday", 60)
		createTestCheckIn(t, task.ID, student.ID, true, (i+1)*60, "", now)
	}

	stats, err := svc.Dashboard(DashboardFilter{})
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}

	if len(stats.TopSubjects) != 5 {
		t.Fatalf("expected top subjects capped at 5, got %d", len(stats.TopSubjects))
	}
	for i := 1; i < len(stats.TopSubjects); i++ {
		if stats.TopSubjects[i].Hours > stats.TopSubjects[i-1].Hours {
			t.Fatal("expected top subjects sorted by descending hours")
		}
	}
	if stats.TopSubjects[0].Subject != "Geography" || stats.TopSubjects[0].Hours != 7 {
		t.Fatalf("unexpected leader: %+v", stats.TopSubjects[0])
	}
}

func TestDashboardFiltersAndCohortSeries(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	svc := NewAdminAnalyticsService(db.DB)
	cohortA := createTestCohort(t, "冲刺一班")
	cohortB := createTestCohort(t, "冲刺二班")
	studentA := createTestStudent(t, "小雨", "rain@example.com", &cohortA.ID)
	studentB := createTestStudent(t, "小晴", "sun@example.com", &cohortB.ID)
	loner := createTestStudent(t, "小雪", "snow@example.com", nil)

	now := time.Now()
	taskA := createTestTask(t, cohortA.ID, nil, "Math", "Monday", 60)
	taskB := createTestTask(t, cohortB.ID, nil, "English", "Tuesday", 60)
	taskC := createTestTask(t, cohortA.ID, nil, "Math", "Wednesday", 60)

	createTestCheckIn(t, taskA.ID, studentA.ID, true, 120, "", now)
	createTestCheckIn(t, taskB.ID, studentB.ID, false, 0, "Too Hard", now)
	createTestCheckIn(t, taskC.ID, loner.ID, true, 60, "", now)

	// 班级筛选只统计该班学生的记录
	stats, err := svc.Dashboard(DashboardFilter{CohortID: cohortA.ID})
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if stats.TotalCheckIns != 1 {
		t.Fatalf("expected 1 filtered check-in, got %d", stats.TotalCheckIns)
	}

	// 班级对比区块不随筛选收窄，始终覆盖全量历史
	if len(stats.PerCohortSeries) != 3 {
		t.Fatalf("expected 3 cohort buckets, got %d", len(stats.PerCohortSeries))
	}
	byName := make(map[string]CohortStat, len(stats.PerCohortSeries))
	for _, entry := range stats.PerCohortSeries {
		byName[entry.Cohort] = entry
	}
	if byName["冲刺一班"].Hours != 2 {
		t.Fatalf("expected cohort A hours 2, got %d", byName["冲刺一班"].Hours)
	}
	if byName["冲刺二班"].Failures != 1 {
		t.Fatalf("expected cohort B failures 1, got %d", byName["冲刺二班"].Failures)
	}
	if byName[NoCohortBucket].Hours != 1 {
		t.Fatalf("expected no-cohort hours 1, got %d", byName[NoCohortBucket].Hours)
	}

	// 日期区间为闭区间
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)
	stats, err = svc.Dashboard(DashboardFilter{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if stats.TotalCheckIns != 3 {
		t.Fatalf("expected 3 check-ins in range, got %d", stats.TotalCheckIns)
	}

	past := now.Add(-2 * time.Hour)
	stats, err = svc.Dashboard(DashboardFilter{Start: &past, End: &start})
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if stats.TotalCheckIns != 0 {
		t.Fatalf("expected 0 check-ins out of range, got %d", stats.TotalCheckIns)
	}

	// 科目与学生筛选
	stats, err = svc.Dashboard(DashboardFilter{Subject: "English"})
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if stats.TotalCheckIns != 1 || stats.FailedCount != 1 {
		t.Fatalf("unexpected subject filter result: %+v", stats)
	}

	stats, err = svc.Dashboard(DashboardFilter{StudentID: studentA.ID})
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if stats.TotalCheckIns != 1 || stats.CompletedCount != 1 {
		t.Fatalf("unexpected student filter result: %+v", stats)
	}
}

func TestDashboardEfficiencyBounds(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	svc := NewAdminAnalyticsService(db.DB)
	cohort := createTestCohort(t, "冲刺一班")
	student := createTestStudent(t, "小雨", "rain@example.com", &cohort.ID)

	now := time.Now()
	for i := 0; i < 4; i++ {
		task := createTestTask(t, cohort.ID, nil, fmt.Sprintf("Subject%d", i), "Monday", 60)
		createTestCheckIn(t, task.ID, student.ID, true, 30, "", now)
	}

	stats, err := svc.Dashboard(DashboardFilter{})
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if stats.Efficiency != 100 {
		t.Fatalf("expected efficiency 100, got %d", stats.Efficiency)
	}
}
