package db

import "gorm.io/gorm"

// Subject 定义了科目模型
// Task 通过科目名称关联科目（而非外键），因此名称必须唯一；
// 该设计沿用既有数据结构以保证统计口径一致，改名不会级联已有任务。
type Subject struct {
	gorm.Model
	Name  string `gorm:"unique;not null"`
	Color string `gorm:"size:20"`
}
