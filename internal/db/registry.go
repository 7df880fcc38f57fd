package db

import "gorm.io/gorm"

// StudyMode 是管理员可维护的学习方式注册表项
// Value 为存入 Task.Mode 的代码值，缺省时等于 Label；Color 为前端标签配色
type StudyMode struct {
	gorm.Model
	Label string `gorm:"not null"`
	Value string `gorm:"size:50"`
	Color string `gorm:"size:20"`
}

// TableName 自定义表名以保持命名一致。
func (StudyMode) TableName() string {
	return "study_modes"
}

// FailureReason 是管理员可维护的未完成原因注册表项
type FailureReason struct {
	gorm.Model
	Label string `gorm:"not null"`
	Color string `gorm:"size:20"`
}

// TableName 自定义表名以保持命名一致。
func (FailureReason) TableName() string {
	return "failure_reasons"
}
