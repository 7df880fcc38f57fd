package db

import "gorm.io/gorm"

// Weekdays 是课表可排期的七个固定英文星期值，顺序即图表展示顺序
var Weekdays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// IsValidWeekday 判断 day 是否为合法星期值
func IsValidWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// Task 定义了学习任务模型
// StudentID 为 nil 表示班级基础任务，非 nil 表示指派给单个学生的个性化任务
// Subject 存科目名称（沿用既有 join 口径），Mode 取值来自 study_modes 注册表
// Description 为 Markdown 文本，API 输出时渲染为净化后的 HTML
type Task struct {
	gorm.Model
	CohortID        uint   `gorm:"index;not null"`
	Cohort          Cohort `gorm:"constraint:OnDelete:CASCADE"`
	StudentID       *uint  `gorm:"index"`
	Student         *User
	Subject         string `gorm:"not null"`
	Mode            string `gorm:"size:50;not null"`
	DurationMinutes int    `gorm:"not null"`
	DayOfWeek       string `gorm:"size:20;not null"`
	Description     string `gorm:"type:text"`
}
