package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/studyflow/internal/db"
	"gorm.io/gorm"
)

// TopFailureNone 表示筛选范围内没有任何未完成原因
const TopFailureNone = "None"

// NoCohortBucket 是按班级聚合时未分班学生的归属桶
const NoCohortBucket = "No Cohort"

// AdminAnalyticsService 负责后台仪表盘的聚合统计
type AdminAnalyticsService struct {
	db *gorm.DB
}

// DashboardFilter 描述仪表盘的筛选条件，零值字段表示不过滤
// 班级条件按学生当前所属班级判定，转班后历史记录随学生迁移
type DashboardFilter struct {
	CohortID  uint
	Subject   string
	StudentID uint
	Start     *time.Time
	End       *time.Time
}

// DailyAverage 表示某个星期的人均完成小时数
type DailyAverage struct {
	Day   string  `json:"day"`
	Hours float64 `json:"hours"`
}

// SubjectHours 表示某科目的累计完成小时数
type SubjectHours struct {
	Subject string `json:"subject"`
	Hours   int    `json:"hours"`
}

// ReasonCount 表示某未完成原因的出现次数
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// CohortStat 表示某班级的完成小时数与未完成次数
type CohortStat struct {
	Cohort   string `json:"cohort"`
	Hours    int    `json:"hours"`
	Failures int    `json:"failures"`
}

// DashboardStats 汇总仪表盘全部统计区块
type DashboardStats struct {
	FilteredStudents    int            `json:"filteredStudentsCount"`
	TotalCheckIns       int            `json:"totalCheckIns"`
	CompletedCount      int            `json:"completedCount"`
	FailedCount         int            `json:"failedCount"`
	Efficiency          int            `json:"efficiency"`
	TopFailure          string         `json:"topFailure"`
	DailyAverageSeries  []DailyAverage `json:"dailyAverageSeries"`
	TopSubjects         []SubjectHours `json:"topSubjects"`
	FailureDistribution []ReasonCount  `json:"failureDistribution"`
	PerCohortSeries     []CohortStat   `json:"perCohortSeries"`
}

// NewAdminAnalyticsService 构造 AdminAnalyticsService
func NewAdminAnalyticsService(gdb *gorm.DB) *AdminAnalyticsService {
	return &AdminAnalyticsService{db: gdb}
}

// Dashboard 计算筛选条件下的仪表盘统计
// 班级对比区块始终基于全量历史，供跨班横向参照，不随筛选收窄
func (s *AdminAnalyticsService) Dashboard(filter DashboardFilter) (*DashboardStats, error) {
	var history []db.CheckIn
	if err := s.db.Preload("Task").Preload("Student").Preload("Student.Cohort").
		Find(&history).Error; err != nil {
		return nil, fmt.Errorf("load check-in history: %w", err)
	}

	filtered := make([]db.CheckIn, 0, len(history))
	for _, record := range history {
		if matchesFilter(record, filter) {
			filtered = append(filtered, record)
		}
	}

	studentCount, err := s.countFilteredStudents(filter)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		FilteredStudents:    studentCount,
		TotalCheckIns:       len(filtered),
		TopFailure:          TopFailureNone,
		DailyAverageSeries:  dailyAverageSeries(filtered, studentCount),
		TopSubjects:         topSubjects(filtered),
		FailureDistribution: failureDistribution(filtered),
		PerCohortSeries:     perCohortSeries(history),
	}

	for _, record := range filtered {
		if record.Completed {
			stats.CompletedCount++
		} else {
			stats.FailedCount++
		}
	}

	if stats.TotalCheckIns > 0 {
		stats.Efficiency = int(math.Round(100 * float64(stats.CompletedCount) / float64(stats.TotalCheckIns)))
	}

	if len(stats.FailureDistribution) > 0 {
		stats.TopFailure = stats.FailureDistribution[0].Reason
	}

	return stats, nil
}

// matchesFilter 判断单条记录是否通过全部生效筛选条件
func matchesFilter(record db.CheckIn, filter DashboardFilter) bool {
	if filter.CohortID != 0 {
		if record.Student.CohortID == nil || *record.Student.CohortID != filter.CohortID {
			return false
		}
	}
	if filter.Subject != "" && record.Task.Subject != filter.Subject {
		return false
	}
	if filter.StudentID != 0 && record.StudentID != filter.StudentID {
		return false
	}
	if filter.Start != nil && record.Timestamp.Before(*filter.Start) {
		return false
	}
	if filter.End != nil && record.Timestamp.After(*filter.End) {
		return false
	}
	return true
}

// countFilteredStudents 统计筛选范围内的学生数，作为人均口径的分母
// 口径只随班级收窄：按单个学生筛选时分母仍是该范围全体学生
func (s *AdminAnalyticsService) countFilteredStudents(filter DashboardFilter) (int, error) {
	query := s.db.Model(&db.User{}).Where("role = ?", db.RoleStudent)
	if filter.CohortID != 0 {
		query = query.Where("cohort_id = ?", filter.CohortID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return int(count), nil
}

// dailyAverageSeries 按排课星期聚合完成分钟数，折算为人均小时
// 保留精确值，一位小数的展示截断交给图表层
func dailyAverageSeries(records []db.CheckIn, studentCount int) []DailyAverage {
	minutesByDay := make(map[string]int, len(db.Weekdays))
	for _, record := range records {
		if record.Completed {
			minutesByDay[record.Task.DayOfWeek] += record.ActualDurationMinutes
		}
	}

	divisor := float64(studentCount)
	if divisor < 1 {
		divisor = 1
	}

	series := make([]DailyAverage, 0, len(db.Weekdays))
	for _, day := range db.Weekdays {
		series = append(series, DailyAverage{
			Day:   day,
			Hours: float64(minutesByDay[day]) / 60.0 / divisor,
		})
	}
	return series
}

// topSubjects 按科目聚合完成小时数，取前五
func topSubjects(records []db.CheckIn) []SubjectHours {
	minutesBySubject := make(map[string]int)
	for _, record := range records {
		if record.Completed {
			minutesBySubject[record.Task.Subject] += record.ActualDurationMinutes
		}
	}

	result := make([]SubjectHours, 0, len(minutesBySubject))
	for subject, minutes := range minutesBySubject {
		result = append(result, SubjectHours{
			Subject: subject,
			Hours:   int(math.Round(float64(minutes) / 60.0)),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Hours != result[j].Hours {
			return result[i].Hours > result[j].Hours
		}
		return result[i].Subject < result[j].Subject
	})

	if len(result) > 5 {
		result = result[:5]
	}
	return result
}

// failureDistribution 统计各未完成原因的出现次数，按次数降序
func failureDistribution(records []db.CheckIn) []ReasonCount {
	countByReason := make(map[string]int)
	for _, record := range records {
		if !record.Completed && record.ReasonForFailure != "" {
			countByReason[record.ReasonForFailure]++
		}
	}

	result := make([]ReasonCount, 0, len(countByReason))
	for reason, count := range countByReason {
		result = append(result, ReasonCount{Reason: reason, Count: count})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Reason < result[j].Reason
	})
	return result
}

// perCohortSeries 按学生所属班级聚合完成小时数与未完成次数
func perCohortSeries(history []db.CheckIn) []CohortStat {
	type cohortAcc struct {
		minutes  int
		failures int
	}

	accByName := make(map[string]*cohortAcc)
	for _, record := range history {
		name := NoCohortBucket
		if record.Student.Cohort != nil {
			name = record.Student.Cohort.Name
		}

		acc, ok := accByName[name]
		if !ok {
			acc = &cohortAcc{}
			accByName[name] = acc
		}

		if record.Completed {
			acc.minutes += record.ActualDurationMinutes
		} else {
			acc.failures++
		}
	}

	result := make([]CohortStat, 0, len(accByName))
	for name, acc := range accByName {
		result = append(result, CohortStat{
			Cohort:   name,
			Hours:    int(math.Round(float64(acc.minutes) / 60.0)),
			Failures: acc.failures,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Cohort < result[j].Cohort
	})
	return result
}
