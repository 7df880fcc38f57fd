package db

import "gorm.io/gorm"

// AppSetting 存储全局可配置的机构信息，逻辑上只存在一行。
// 更新时先查首行：存在则覆盖，不存在则创建（upsert-by-existence）。
type AppSetting struct {
	gorm.Model
	SchoolName     string
	InstructorName string
	Phone          string
	Email          string
	WelcomeMessage string `gorm:"type:text"`
	WhatsappLink   string
}

// TableName 自定义表名以保持命名一致。
func (AppSetting) TableName() string {
	return "app_settings"
}
