package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/studyflow/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrStudyModeNotFound 在指定学习方式不存在时返回
	ErrStudyModeNotFound = errors.New("study mode not found")
	// ErrFailureReasonNotFound 在指定未完成原因不存在时返回
	ErrFailureReasonNotFound = errors.New("failure reason not found")
)

// defaultStudyModes 是注册表为空时的内置学习方式
var defaultStudyModes = []db.StudyMode{
	{Label: "Video", Value: "Video", Color: "#3b82f6"},
	{Label: "Reading", Value: "Reading", Color: "#10b981"},
	{Label: "Questions", Value: "Questions", Color: "#f59e0b"},
	{Label: "Review", Value: "Review", Color: "#8b5cf6"},
}

// RegistryService 负责学习方式与未完成原因两个注册表
type RegistryService struct {
	db *gorm.DB
}

// StudyModeInput 定义创建/更新学习方式时可配置字段
type StudyModeInput struct {
	Label string
	Value string
	Color string
}

// FailureReasonInput 定义创建/更新未完成原因时可配置字段
type FailureReasonInput struct {
	Label string
	Color string
}

// NewRegistryService 构造 RegistryService
func NewRegistryService(gdb *gorm.DB) *RegistryService {
	return &RegistryService{db: gdb}
}

// ListStudyModes 返回学习方式集合；表为空时回退到内置默认值
func (s *RegistryService) ListStudyModes() ([]db.StudyMode, error) {
	var modes []db.StudyMode
	if err := s.db.Order("created_at ASC").Find(&modes).Error; err != nil {
		return nil, fmt.Errorf("list study modes: %w", err)
	}
	if len(modes) == 0 {
		return defaultStudyModes, nil
	}
	return modes, nil
}

// CreateStudyMode 新建学习方式；Value 缺省时等于 Label
func (s *RegistryService) CreateStudyMode(input StudyModeInput) (*db.StudyMode, error) {
	label := strings.TrimSpace(input.Label)
	if label == "" {
		return nil, fmt.Errorf("study mode label is required")
	}

	value := strings.TrimSpace(input.Value)
	if value == "" {
		value = label
	}

	mode := db.StudyMode{
		Label: label,
		Value: value,
		Color: strings.TrimSpace(input.Color),
	}
	if err := s.db.Create(&mode).Error; err != nil {
		return nil, fmt.Errorf("create study mode: %w", err)
	}
	return &mode, nil
}

// UpdateStudyMode 更新学习方式
func (s *RegistryService) UpdateStudyMode(id uint, input StudyModeInput) (*db.StudyMode, error) {
	label := strings.TrimSpace(input.Label)
	if label == "" {
		return nil, fmt.Errorf("study mode label is required")
	}

	var mode db.StudyMode
	if err := s.db.First(&mode, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudyModeNotFound
		}
		return nil, fmt.Errorf("find study mode: %w", err)
	}

	value := strings.TrimSpace(input.Value)
	if value == "" {
		value = label
	}

	mode.Label = label
	mode.Value = value
	mode.Color = strings.TrimSpace(input.Color)
	if err := s.db.Save(&mode).Error; err != nil {
		return nil, fmt.Errorf("update study mode: %w", err)
	}
	return &mode, nil
}

// DeleteStudyMode 删除学习方式；历史任务仍保留原值
func (s *RegistryService) DeleteStudyMode(id uint) error {
	result := s.db.Delete(&db.StudyMode{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete study mode: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStudyModeNotFound
	}
	return nil
}

// ListFailureReasons 返回未完成原因集合
func (s *RegistryService) ListFailureReasons() ([]db.FailureReason, error) {
	var reasons []db.FailureReason
	if err := s.db.Order("created_at ASC").Find(&reasons).Error; err != nil {
		return nil, fmt.Errorf("list failure reasons: %w", err)
	}
	return reasons, nil
}

// CreateFailureReason 新建未完成原因
func (s *RegistryService) CreateFailureReason(input FailureReasonInput) (*db.FailureReason, error) {
	label := strings.TrimSpace(input.Label)
	if label == "" {
		return nil, fmt.Errorf("failure reason label is required")
	}

	reason := db.FailureReason{
		Label: label,
		Color: strings.TrimSpace(input.Color),
	}
	if err := s.db.Create(&reason).Error; err != nil {
		return nil, fmt.Errorf("create failure reason: %w", err)
	}
	return &reason, nil
}

// UpdateFailureReason 更新未完成原因
func (s *RegistryService) UpdateFailureReason(id uint, input FailureReasonInput) (*db.FailureReason, error) {
	label := strings.TrimSpace(input.Label)
	if label == "" {
		return nil, fmt.Errorf("failure reason label is required")
	}

	var reason db.FailureReason
	if err := s.db.First(&reason, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFailureReasonNotFound
		}
		return nil, fmt.Errorf("find failure reason: %w", err)
	}

	reason.Label = label
	reason.Color = strings.TrimSpace(input.Color)
	if err := s.db.Save(&reason).Error; err != nil {
		return nil, fmt.Errorf("update failure reason: %w", err)
	}
	return &reason, nil
}

// DeleteFailureReason 删除未完成原因；历史打卡仍保留原文本
func (s *RegistryService) DeleteFailureReason(id uint) error {
	result := s.db.Delete(&db.FailureReason{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete failure reason: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrFailureReasonNotFound
	}
	return nil
}
