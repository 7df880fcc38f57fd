package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/studyflow/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrCheckInNotFound 在指定打卡记录不存在时返回
	ErrCheckInNotFound = errors.New("check-in not found")
	// ErrCheckInExists 在同一任务已有打卡记录时返回
	ErrCheckInExists = errors.New("task already checked in")
	// ErrCheckInInvalidInput 在打卡字段校验失败时返回
	ErrCheckInInvalidInput = errors.New("invalid check-in input")
	// ErrCheckInForbidden 在操作他人打卡记录时返回
	ErrCheckInForbidden = errors.New("check-in belongs to another student")
)

// CheckInService 负责打卡的创建、撤销与状态投影
type CheckInService struct {
	db *gorm.DB
}

// CheckInInput 定义打卡时的输入对象
// Completed=true 要求 ActualDurationMinutes>0，false 要求 ReasonForFailure 非空
type CheckInInput struct {
	TaskID                uint
	StudentID             uint
	Completed             bool
	ActualDurationMinutes int
	Period                string
	ReasonForFailure      string
	Note                  string
	Timestamp             time.Time
}

// NewCheckInService 构造 CheckInService
func NewCheckInService(gdb *gorm.DB) *CheckInService {
	return &CheckInService{db: gdb}
}

// Create 提交打卡；状态机约束在服务端收口，重复打卡依赖唯一索引兜底
func (s *CheckInService) Create(input CheckInInput) (*db.CheckIn, error) {
	if !db.IsValidPeriod(input.Period) {
		return nil, fmt.Errorf("%w: period %q", ErrCheckInInvalidInput, input.Period)
	}

	reason := strings.TrimSpace(input.ReasonForFailure)
	minutes := input.ActualDurationMinutes
	if input.Completed {
		if minutes <= 0 {
			return nil, fmt.Errorf("%w: actual duration must be positive", ErrCheckInInvalidInput)
		}
		reason = ""
	} else {
		if reason == "" {
			return nil, fmt.Errorf("%w: failure reason is required", ErrCheckInInvalidInput)
		}
		minutes = 0
	}

	var task db.Task
	if err := s.db.First(&task, input.TaskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}

	var count int64
	if err := s.db.Model(&db.CheckIn{}).
		Where("task_id = ? AND student_id = ?", input.TaskID, input.StudentID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("count checkins: %w", err)
	}
	if count > 0 {
		return nil, ErrCheckInExists
	}

	timestamp := input.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	record := db.CheckIn{
		TaskID:                input.TaskID,
		StudentID:             input.StudentID,
		Completed:             input.Completed,
		ActualDurationMinutes: minutes,
		Period:                input.Period,
		ReasonForFailure:      reason,
		Note:                  strings.TrimSpace(input.Note),
		Timestamp:             timestamp,
	}
	if err := s.db.Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCheckInExists
		}
		return nil, fmt.Errorf("create check-in: %w", err)
	}
	return &record, nil
}

// Undo 撤销打卡，仅允许本人操作；任务回到待办状态
func (s *CheckInService) Undo(id, studentID uint) error {
	var record db.CheckIn
	if err := s.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCheckInNotFound
		}
		return fmt.Errorf("find check-in: %w", err)
	}

	if record.StudentID != studentID {
		return ErrCheckInForbidden
	}

	// 物理删除，软删除的残留行会被唯一索引挡住再次打卡
	if err := s.db.Unscoped().Delete(&db.CheckIn{}, id).Error; err != nil {
		return fmt.Errorf("delete check-in: %w", err)
	}
	return nil
}

// StatusMap 返回学生全部打卡记录按任务 ID 的投影，供课表渲染当前状态
func (s *CheckInService) StatusMap(studentID uint) (map[uint]db.CheckIn, error) {
	var records []db.CheckIn
	if err := s.db.Where("student_id = ?", studentID).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list checkins: %w", err)
	}

	result := make(map[uint]db.CheckIn, len(records))
	for _, record := range records {
		result[record.TaskID] = record
	}
	return result, nil
}

// CheckInHistoryFilter 描述打卡历史的可选过滤条件
type CheckInHistoryFilter struct {
	// Date 只保留该自然日内的记录
	Date *time.Time
	// Subject 按任务科目过滤
	Subject string
}

// ListForStudent 返回学生的打卡历史，按时间倒序
func (s *CheckInService) ListForStudent(studentID uint, filter CheckInHistoryFilter) ([]db.CheckIn, error) {
	query := s.db.Preload("Task").Where("checkins.student_id = ?", studentID)

	if filter.Subject != "" {
		query = query.Joins("JOIN tasks ON tasks.id = checkins.task_id").
			Where("tasks.subject = ?", filter.Subject)
	}
	if filter.Date != nil {
		dayStart := time.Date(filter.Date.Year(), filter.Date.Month(), filter.Date.Day(),
			0, 0, 0, 0, filter.Date.Location())
		query = query.Where("checkins.timestamp >= ? AND checkins.timestamp < ?",
			dayStart, dayStart.AddDate(0, 0, 1))
	}

	var records []db.CheckIn
	if err := query.Order("checkins.timestamp DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list checkins: %w", err)
	}
	return records, nil
}
