package db

import "gorm.io/gorm"

// Cohort 定义了班级模型，班级共享同一份基础课表
type Cohort struct {
	gorm.Model
	Name string `gorm:"unique;not null"`
}
