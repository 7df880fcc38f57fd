package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/studyflow/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrCohortNotFound 在指定班级不存在时返回
	ErrCohortNotFound = errors.New("cohort not found")
	// ErrCohortNameTaken 在班级名称重复时返回
	ErrCohortNameTaken = errors.New("cohort name already exists")
)

// CohortService 负责班级数据的增删改查
type CohortService struct {
	db *gorm.DB
}

// NewCohortService 构造 CohortService
func NewCohortService(gdb *gorm.DB) *CohortService {
	return &CohortService{db: gdb}
}

// List 返回全部班级，按创建时间升序
func (s *CohortService) List() ([]db.Cohort, error) {
	var cohorts []db.Cohort
	if err := s.db.Order("created_at ASC").Find(&cohorts).Error; err != nil {
		return nil, fmt.Errorf("list cohorts: %w", err)
	}
	return cohorts, nil
}

// Get 根据 ID 获取班级
func (s *CohortService) Get(id uint) (*db.Cohort, error) {
	var cohort db.Cohort
	if err := s.db.First(&cohort, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCohortNotFound
		}
		return nil, fmt.Errorf("get cohort: %w", err)
	}
	return &cohort, nil
}

// Create 新建班级，名称去空格且唯一
func (s *CohortService) Create(name string) (*db.Cohort, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("cohort name is required")
	}

	if taken, err := s.nameTaken(trimmed, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrCohortNameTaken
	}

	cohort := db.Cohort{Name: trimmed}
	if err := s.db.Create(&cohort).Error; err != nil {
		return nil, fmt.Errorf("create cohort: %w", err)
	}
	return &cohort, nil
}

// Update 重命名班级
func (s *CohortService) Update(id uint, name string) (*db.Cohort, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("cohort name is required")
	}

	cohort, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if taken, err := s.nameTaken(trimmed, id); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrCohortNameTaken
	}

	cohort.Name = trimmed
	if err := s.db.Save(cohort).Error; err != nil {
		return nil, fmt.Errorf("update cohort: %w", err)
	}
	return cohort, nil
}

// Delete 删除班级；任务随级联删除，学生的班级归属置空
func (s *CohortService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.User{}).Where("cohort_id = ?", id).Update("cohort_id", nil).Error; err != nil {
			return fmt.Errorf("detach students: %w", err)
		}
		if err := tx.Where("cohort_id = ?", id).Delete(&db.Task{}).Error; err != nil {
			return fmt.Errorf("delete cohort tasks: %w", err)
		}
		if err := tx.Delete(&db.Cohort{}, id).Error; err != nil {
			return fmt.Errorf("delete cohort: %w", err)
		}
		return nil
	})
}

func (s *CohortService) nameTaken(name string, exceptID uint) (bool, error) {
	var count int64
	query := s.db.Model(&db.Cohort{}).Where("name = ?", name)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("count cohorts: %w", err)
	}
	return count > 0, nil
}
