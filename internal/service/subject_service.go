package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/studyflow/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrSubjectNotFound 在指定科目不存在时返回
	ErrSubjectNotFound = errors.New("subject not found")
	// ErrSubjectNameTaken 在科目名称重复时返回
	ErrSubjectNameTaken = errors.New("subject name already exists")
)

// SubjectService 负责科目数据的增删改查
// 任务表按科目名称关联，因此重命名科目不回写历史任务
type SubjectService struct {
	db *gorm.DB
}

// SubjectInput 定义创建/更新科目时可配置字段
type SubjectInput struct {
	Name  string
	Color string
}

// NewSubjectService 构造 SubjectService
func NewSubjectService(gdb *gorm.DB) *SubjectService {
	return &SubjectService{db: gdb}
}

// List 返回全部科目，按名称升序
func (s *SubjectService) List() ([]db.Subject, error) {
	var subjects []db.Subject
	if err := s.db.Order("name ASC").Find(&subjects).Error; err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// Create 新建科目
func (s *SubjectService) Create(input SubjectInput) (*db.Subject, error) {
	trimmed := strings.TrimSpace(input.Name)
	if trimmed == "" {
		return nil, fmt.Errorf("subject name is required")
	}

	if taken, err := s.nameTaken(trimmed, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrSubjectNameTaken
	}

	subject := db.Subject{
		Name:  trimmed,
		Color: strings.TrimSpace(input.Color),
	}
	if err := s.db.Create(&subject).Error; err != nil {
		return nil, fmt.Errorf("create subject: %w", err)
	}
	return &subject, nil
}

// Update 更新科目
func (s *SubjectService) Update(id uint, input SubjectInput) (*db.Subject, error) {
	trimmed := strings.TrimSpace(input.Name)
	if trimmed == "" {
		return nil, fmt.Errorf("subject name is required")
	}

	var subject db.Subject
	if err := s.db.First(&subject, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("find subject: %w", err)
	}

	if taken, err := s.nameTaken(trimmed, id); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrSubjectNameTaken
	}

	subject.Name = trimmed
	subject.Color = strings.TrimSpace(input.Color)
	if err := s.db.Save(&subject).Error; err != nil {
		return nil, fmt.Errorf("update subject: %w", err)
	}
	return &subject, nil
}

// Delete 删除科目；历史任务仍保留原科目名称
func (s *SubjectService) Delete(id uint) error {
	result := s.db.Delete(&db.Subject{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete subject: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSubjectNotFound
	}
	return nil
}

func (s *SubjectService) nameTaken(name string, exceptID uint) (bool, error) {
	var count int64
	query := s.db.Model(&db.Subject{}).Where("name = ?", name)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("count subjects: %w", err)
	}
	return count > 0, nil
}
