package db

import (
	"time"

	"gorm.io/gorm"
)

// 打卡时段
const (
	PeriodMorning   = "Morning"
	PeriodAfternoon = "Afternoon"
	PeriodNight     = "Night"
	PeriodDawn      = "Dawn"
)

// Periods 列出全部合法时段
var Periods = []string{PeriodMorning, PeriodAfternoon, PeriodNight, PeriodDawn}

// IsValidPeriod 判断 period 是否为合法时段
func IsValidPeriod(period string) bool {
	for _, p := range Periods {
		if p == period {
			return true
		}
	}
	return false
}

// CheckIn 记录学生对任务的打卡结果
// Task + Student 采用唯一索引，保证同一任务同一学生最多一条当前状态；
// 撤销打卡即删除记录（任务回到待办），不做原地更新
// Completed=true 时 ActualDurationMinutes 有效，false 时 ReasonForFailure 有效
type CheckIn struct {
	gorm.Model
	TaskID                uint `gorm:"index;index:idx_checkin_unique,unique"`
	Task                  Task `gorm:"constraint:OnDelete:CASCADE"`
	StudentID             uint `gorm:"index;index:idx_checkin_unique,unique"`
	Student               User
	Completed             bool
	ActualDurationMinutes int
	Period                string `gorm:"size:20"`
	ReasonForFailure      string
	Note                  string
	Timestamp             time.Time `gorm:"index"`
}

// TableName 重写确保唯一索引作用到 task_id + student_id
func (CheckIn) TableName() string {
	return "checkins"
}
