package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/studyflow/internal/db"
	"gorm.io/gorm"
)

// 导入基础课表的两种方式
const (
	ImportModeReplace = "replace"
	ImportModeMerge   = "merge"
)

var (
	// ErrTaskNotFound 在指定任务不存在时返回
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskInvalidInput 在任务字段校验失败时返回
	ErrTaskInvalidInput = errors.New("invalid task input")
	// ErrNoBaseTasks 在班级没有可导入的基础任务时返回
	ErrNoBaseTasks = errors.New("cohort has no base tasks")
	// ErrInvalidImportMode 在导入方式不合法时返回
	ErrInvalidImportMode = errors.New("invalid import mode")
)

// TaskService 负责课表任务的排期、个性化与导入
type TaskService struct {
	db *gorm.DB
}

// TaskInput 定义创建/更新任务时可配置字段
type TaskInput struct {
	CohortID        uint
	StudentID       *uint
	Subject         string
	Mode            string
	DurationMinutes int
	DayOfWeek       string
	Description     string
}

// PlannerFilter 描述排课视图的查询条件
// StudentID 为 nil 时按班级基础课表查询，非 nil 时只看该学生的个人课表
type PlannerFilter struct {
	DayOfWeek string
	CohortID  uint
	StudentID *uint
}

// PlannerTask 在任务之上标注是否为真正的个性化任务
type PlannerTask struct {
	db.Task
	TrulyPersonalized bool
}

// NewTaskService 构造 TaskService
func NewTaskService(gdb *gorm.DB) *TaskService {
	return &TaskService{db: gdb}
}

// ListPlanner 返回排课视图的任务集合
// 学生模式下刻意不限制班级，学生转班后仍能看到历史个人任务
func (s *TaskService) ListPlanner(filter PlannerFilter) ([]PlannerTask, error) {
	if !db.IsValidWeekday(filter.DayOfWeek) {
		return nil, fmt.Errorf("%w: day %q", ErrTaskInvalidInput, filter.DayOfWeek)
	}

	var tasks []db.Task
	query := s.db.Preload("Student").Where("day_of_week = ?", filter.DayOfWeek)
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	} else {
		query = query.Where("cohort_id = ? AND student_id IS NULL", filter.CohortID)
	}

	if err := query.Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list planner tasks: %w", err)
	}

	baseTasks, err := s.baseTasksFor(tasks)
	if err != nil {
		return nil, err
	}

	result := make([]PlannerTask, 0, len(tasks))
	for _, task := range tasks {
		result = append(result, PlannerTask{
			Task:              task,
			TrulyPersonalized: IsTrulyPersonalized(task, baseTasks),
		})
	}
	return result, nil
}

// baseTasksFor 加载给定任务所涉班级的全部基础任务
func (s *TaskService) baseTasksFor(tasks []db.Task) ([]db.Task, error) {
	cohortIDs := make([]uint, 0, len(tasks))
	seen := make(map[uint]bool)
	for _, task := range tasks {
		if task.StudentID != nil && !seen[task.CohortID] {
			seen[task.CohortID] = true
			cohortIDs = append(cohortIDs, task.CohortID)
		}
	}
	if len(cohortIDs) == 0 {
		return nil, nil
	}

	var baseTasks []db.Task
	if err := s.db.Where("cohort_id IN ? AND student_id IS NULL", cohortIDs).
		Find(&baseTasks).Error; err != nil {
		return nil, fmt.Errorf("list base tasks: %w", err)
	}
	return baseTasks, nil
}

// IsTrulyPersonalized 判断任务是否为偏离班级基础课表的个性化任务
// 同班基础课表里存在同科目同星期的条目时视为普通副本
func IsTrulyPersonalized(task db.Task, baseTasks []db.Task) bool {
	if task.StudentID == nil {
		return false
	}
	for _, base := range baseTasks {
		if base.CohortID == task.CohortID &&
			base.Subject == task.Subject &&
			base.DayOfWeek == task.DayOfWeek {
			return false
		}
	}
	return true
}

// ListForStudent 返回学生某一天可见的任务：本班基础任务加上指派给本人的任务
func (s *TaskService) ListForStudent(studentID uint, cohortID *uint, dayOfWeek string) ([]db.Task, error) {
	if !db.IsValidWeekday(dayOfWeek) {
		return nil, fmt.Errorf("%w: day %q", ErrTaskInvalidInput, dayOfWeek)
	}

	var tasks []db.Task
	query := s.db.Where("day_of_week = ?", dayOfWeek)
	if cohortID != nil {
		query = query.Where("(cohort_id = ? AND student_id IS NULL) OR student_id = ?", *cohortID, studentID)
	} else {
		query = query.Where("student_id = ?", studentID)
	}

	if err := query.Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list student tasks: %w", err)
	}
	return tasks, nil
}

// StudentHasTasks 判断学生是否已有任何个人任务
func (s *TaskService) StudentHasTasks(studentID uint) (bool, error) {
	var count int64
	if err := s.db.Model(&db.Task{}).Where("student_id = ?", studentID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count student tasks: %w", err)
	}
	return count > 0, nil
}

// Get 根据 ID 获取任务
func (s *TaskService) Get(id uint) (*db.Task, error) {
	var task db.Task
	if err := s.db.Preload("Student").First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

// Create 新建任务
func (s *TaskService) Create(input TaskInput) (*db.Task, error) {
	if err := validateTaskInput(input); err != nil {
		return nil, err
	}

	var cohort db.Cohort
	if err := s.db.First(&cohort, input.CohortID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCohortNotFound
		}
		return nil, fmt.Errorf("find cohort: %w", err)
	}

	task := db.Task{
		CohortID:        input.CohortID,
		StudentID:       input.StudentID,
		Subject:         strings.TrimSpace(input.Subject),
		Mode:            strings.TrimSpace(input.Mode),
		DurationMinutes: input.DurationMinutes,
		DayOfWeek:       input.DayOfWeek,
		Description:     strings.TrimSpace(input.Description),
	}
	if err := s.db.Create(&task).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return s.Get(task.ID)
}

// Update 更新任务
func (s *TaskService) Update(id uint, input TaskInput) (*db.Task, error) {
	if err := validateTaskInput(input); err != nil {
		return nil, err
	}

	var existing db.Task
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}

	existing.CohortID = input.CohortID
	existing.StudentID = input.StudentID
	existing.Subject = strings.TrimSpace(input.Subject)
	existing.Mode = strings.TrimSpace(input.Mode)
	existing.DurationMinutes = input.DurationMinutes
	existing.DayOfWeek = input.DayOfWeek
	existing.Description = strings.TrimSpace(input.Description)

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.Get(existing.ID)
}

// Delete 删除任务及其打卡记录
func (s *TaskService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		// 打卡物理删除，保证任务重建后不撞唯一索引
		if err := tx.Unscoped().Where("task_id = ?", id).Delete(&db.CheckIn{}).Error; err != nil {
			return fmt.Errorf("delete task checkins: %w", err)
		}

		result := tx.Delete(&db.Task{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete task: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
}

// ImportBase 将班级基础课表复制为学生的个人课表
// replace 方式会先清空该学生名下全部个人任务（含其他班级的历史任务）再复制
func (s *TaskService) ImportBase(studentID, cohortID uint, mode string) (int, error) {
	if mode != ImportModeReplace && mode != ImportModeMerge {
		return 0, fmt.Errorf("%w: %s", ErrInvalidImportMode, mode)
	}

	var baseTasks []db.Task
	if err := s.db.Where("cohort_id = ? AND student_id IS NULL", cohortID).
		Order("created_at ASC").
		Find(&baseTasks).Error; err != nil {
		return 0, fmt.Errorf("list base tasks: %w", err)
	}
	if len(baseTasks) == 0 {
		return 0, ErrNoBaseTasks
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if mode == ImportModeReplace {
			var staleIDs []uint
			if err := tx.Model(&db.Task{}).Where("student_id = ?", studentID).
				Pluck("id", &staleIDs).Error; err != nil {
				return fmt.Errorf("list personal tasks: %w", err)
			}
			if len(staleIDs) > 0 {
				if err := tx.Unscoped().Where("task_id IN ?", staleIDs).Delete(&db.CheckIn{}).Error; err != nil {
					return fmt.Errorf("delete personal checkins: %w", err)
				}
				if err := tx.Unscoped().Delete(&db.Task{}, staleIDs).Error; err != nil {
					return fmt.Errorf("delete personal tasks: %w", err)
				}
			}
		}

		sid := studentID
		for _, base := range baseTasks {
			copied := db.Task{
				CohortID:        base.CohortID,
				StudentID:       &sid,
				Subject:         base.Subject,
				Mode:            base.Mode,
				DurationMinutes: base.DurationMinutes,
				DayOfWeek:       base.DayOfWeek,
				Description:     base.Description,
			}
			if err := tx.Create(&copied).Error; err != nil {
				return fmt.Errorf("copy base task: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(baseTasks), nil
}

func validateTaskInput(input TaskInput) error {
	if input.CohortID == 0 {
		return fmt.Errorf("%w: cohort is required", ErrTaskInvalidInput)
	}
	if strings.TrimSpace(input.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrTaskInvalidInput)
	}
	if input.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrTaskInvalidInput)
	}
	if !db.IsValidWeekday(input.DayOfWeek) {
		return fmt.Errorf("%w: day %q", ErrTaskInvalidInput, input.DayOfWeek)
	}
	return nil
}
