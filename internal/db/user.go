package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 用户角色
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// 用户状态：注册后默认 pending，管理员审批后转 active，拉黑转 blocked
const (
	StatusActive  = "active"
	StatusPending = "pending"
	StatusBlocked = "blocked"
)

// User 定义了用户模型
// CohortID 仅学生使用，表示所属班级；管理员为 nil
// 用户不做物理删除，封禁通过 Status 控制
type User struct {
	gorm.Model
	Name      string `gorm:"not null"`
	Email     string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	Role      string `gorm:"size:20;not null;default:student"`
	Status    string `gorm:"size:20;not null;default:pending"`
	CohortID  *uint  `gorm:"index"`
	Cohort    *Cohort
	AvatarURL string
}

// EnsureAdmin 存在性检查：若提供的邮箱与密码均非空且不存在对应账号，则创建一个 bcrypt 哈希的管理员。
func EnsureAdmin(name, email, password string) error {
	trimmedEmail := strings.TrimSpace(email)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedEmail == "" || trimmedPassword == "" {
		return nil
	}

	if DB == nil {
		return errors.New("database not initialized")
	}

	var existing User
	if err := DB.Where("email = ?", trimmedEmail).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		admin := User{
			Name:     strings.TrimSpace(name),
			Email:    trimmedEmail,
			Password: string(hashed),
			Role:     RoleAdmin,
			Status:   StatusActive,
		}
		if admin.Name == "" {
			admin.Name = "Admin"
		}

		return DB.Create(&admin).Error
	}

	return nil
}
