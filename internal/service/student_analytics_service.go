package service

import (
	"fmt"
	"math"
	"time"

	"github.com/studyflow/internal/db"
	"gorm.io/gorm"
)

// streakLookbackDays 限制连胜回溯的最大天数
const streakLookbackDays = 30

// StudentAnalyticsService 负责学生端的个人学习统计
type StudentAnalyticsService struct {
	db *gorm.DB
}

// StudyDay 表示近七天序列中的一天：计划小时与实际完成小时
type StudyDay struct {
	Date      string  `json:"date"`
	Day       string  `json:"day"`
	MetaHours float64 `json:"metaHours"`
	RealHours float64 `json:"realHours"`
}

// StudentOverview 汇总学生端统计区块
type StudentOverview struct {
	Series         []StudyDay `json:"series"`
	Streak         int        `json:"streak"`
	Efficiency     int        `json:"efficiency"`
	TotalCompleted int        `json:"totalCompleted"`
	TotalFailed    int        `json:"totalFailed"`
}

// NewStudentAnalyticsService 构造 StudentAnalyticsService
func NewStudentAnalyticsService(gdb *gorm.DB) *StudentAnalyticsService {
	return &StudentAnalyticsService{db: gdb}
}

// Overview 计算学生近七天的计划/实际对比与连续学习天数
// now 由调用方传入，便于测试固定时间
func (s *StudentAnalyticsService) Overview(studentID uint, cohortID *uint, now time.Time) (*StudentOverview, error) {
	var tasks []db.Task
	query := s.db.Model(&db.Task{})
	if cohortID != nil {
		query = query.Where("(cohort_id = ? AND student_id IS NULL) OR student_id = ?", *cohortID, studentID)
	} else {
		query = query.Where("student_id = ?", studentID)
	}
	if err := query.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list student tasks: %w", err)
	}

	var records []db.CheckIn
	if err := s.db.Where("student_id = ?", studentID).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list checkins: %w", err)
	}

	metaMinutesByWeekday := make(map[string]int, len(db.Weekdays))
	for _, task := range tasks {
		metaMinutesByWeekday[task.DayOfWeek] += task.DurationMinutes
	}

	overview := &StudentOverview{
		Series: make([]StudyDay, 0, 7),
	}

	today := normalizeToDate(now)
	for i := 6; i >= 0; i-- {
		date := today.AddDate(0, 0, -i)
		weekday := date.Weekday().String()

		realMinutes := 0
		for _, record := range records {
			if record.Completed && sameDate(record.Timestamp, date) {
				realMinutes += record.ActualDurationMinutes
			}
		}

		overview.Series = append(overview.Series, StudyDay{
			Date:      date.Format("2006-01-02"),
			Day:       weekday,
			MetaHours: float64(metaMinutesByWeekday[weekday]) / 60.0,
			RealHours: float64(realMinutes) / 60.0,
		})
	}

	for _, record := range records {
		if record.Completed {
			overview.TotalCompleted++
		} else {
			overview.TotalFailed++
		}
	}

	if len(records) > 0 {
		overview.Efficiency = int(math.Round(100 * float64(overview.TotalCompleted) / float64(len(records))))
	}

	overview.Streak = calculateStreak(records, today)

	return overview, nil
}

// calculateStreak 从今天起向前逐日扫描连续学习天数
// 今天尚未打卡不中断连胜，从昨天开始缺卡即停止
func calculateStreak(records []db.CheckIn, today time.Time) int {
	streak := 0
	for i := 0; i < streakLookbackDays; i++ {
		date := today.AddDate(0, 0, -i)

		hasStudy := false
		for _, record := range records {
			if record.Completed && sameDate(record.Timestamp, date) {
				hasStudy = true
				break
			}
		}

		if hasStudy {
			streak++
		} else if i > 0 {
			break
		}
	}
	return streak
}

func normalizeToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
