package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/studyflow/internal/db"
	"gorm.io/gorm"
)

// SettingsService 提供机构信息单例的读取与更新能力。
type SettingsService struct {
	db *gorm.DB
}

// SettingsInput 用于更新机构信息。
type SettingsInput struct {
	SchoolName     string
	InstructorName string
	Phone          string
	Email          string
	WelcomeMessage string
	WhatsappLink   string
}

// NewSettingsService 构造 SettingsService。
func NewSettingsService(gdb *gorm.DB) *SettingsService {
	return &SettingsService{db: gdb}
}

// Get 读取机构信息，如未设置将返回默认值。
func (s *SettingsService) Get() (*db.AppSetting, error) {
	var setting db.AppSetting
	if err := s.db.Order("id ASC").First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &db.AppSetting{SchoolName: "StudyFlow"}, nil
		}
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return &setting, nil
}

// Update 保存机构信息；首行存在则覆盖，否则创建，保持单例语义
func (s *SettingsService) Update(input SettingsInput) (*db.AppSetting, error) {
	sanitized := db.AppSetting{
		SchoolName:     strings.TrimSpace(input.SchoolName),
		InstructorName: strings.TrimSpace(input.InstructorName),
		Phone:          strings.TrimSpace(input.Phone),
		Email:          strings.TrimSpace(input.Email),
		WelcomeMessage: strings.TrimSpace(input.WelcomeMessage),
		WhatsappLink:   strings.TrimSpace(input.WhatsappLink),
	}
	if sanitized.SchoolName == "" {
		sanitized.SchoolName = "StudyFlow"
	}

	var existing db.AppSetting
	err := s.db.Order("id ASC").First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		if err := s.db.Create(&sanitized).Error; err != nil {
			return nil, fmt.Errorf("create settings: %w", err)
		}
		return &sanitized, nil
	}

	existing.SchoolName = sanitized.SchoolName
	existing.InstructorName = sanitized.InstructorName
	existing.Phone = sanitized.Phone
	existing.Email = sanitized.Email
	existing.WelcomeMessage = sanitized.WelcomeMessage
	existing.WhatsappLink = sanitized.WhatsappLink

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	return &existing, nil
}
