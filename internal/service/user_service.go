package service

import (
	"errors"
	"fmt"
	"strings"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/google/uuid"
	"github.com/studyflow/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound 在指定用户不存在时返回
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials 在邮箱或密码不匹配时返回
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserBlocked 在账号被封禁时返回
	ErrUserBlocked = errors.New("user is blocked")
	// ErrInvalidIDToken 在 Google ID Token 校验失败时返回
	ErrInvalidIDToken = errors.New("invalid google id token")
	// ErrEmailTaken 在注册邮箱已被占用时返回
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidStatus 在状态流转不合法时返回
	ErrInvalidStatus = errors.New("invalid user status")
)

// GoogleTokenVerifier 抽象 Google 登录所需的 token 校验能力，便于测试替换
type GoogleTokenVerifier interface {
	Verify(idToken string) (*GoogleClaims, error)
}

// GoogleClaims 为校验通过后取出的最小声明集合
type GoogleClaims struct {
	Email string
	Name  string
	Sub   string
}

// googleVerifier 基于 google-auth-id-token-verifier 实现真实校验
type googleVerifier struct {
	clientID string
}

// NewGoogleVerifier 构造面向指定 OAuth Client 的校验器
func NewGoogleVerifier(clientID string) GoogleTokenVerifier {
	return &googleVerifier{clientID: clientID}
}

func (g *googleVerifier) Verify(idToken string) (*GoogleClaims, error) {
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{g.clientID}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}

	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}

	return &GoogleClaims{
		Email: claimSet.Email,
		Name:  claimSet.Name,
		Sub:   claimSet.Sub,
	}, nil
}

// UserService 负责账号认证、审批与班级归属管理
type UserService struct {
	db       *gorm.DB
	verifier GoogleTokenVerifier
}

// StudentFilter 描述后台学生列表过滤条件
type StudentFilter struct {
	Search   string
	CohortID uint
	Status   string
}

// RegisterInput 定义自助注册时的输入对象
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// NewUserService 构造 UserService
func NewUserService(gdb *gorm.DB, verifier GoogleTokenVerifier) *UserService {
	return &UserService{db: gdb, verifier: verifier}
}

// Authenticate 校验邮箱密码并返回用户；封禁账号直接拒绝
func (s *UserService) Authenticate(email, password string) (*db.User, error) {
	var user db.User
	if err := s.db.Preload("Cohort").
		Where("email = ?", strings.TrimSpace(strings.ToLower(email))).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.Status == db.StatusBlocked {
		return nil, ErrUserBlocked
	}

	return &user, nil
}

// Register 创建待审批的学生账号
func (s *UserService) Register(input RegisterInput) (*db.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	name := strings.TrimSpace(input.Name)
	if email == "" || name == "" {
		return nil, fmt.Errorf("name and email are required")
	}
	if len(strings.TrimSpace(input.Password)) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}

	var existing db.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := db.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     db.RoleStudent,
		Status:   db.StatusPending,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// LoginWithGoogle 校验 ID Token；邮箱已存在则按普通登录处理，否则创建待审批学生
// 新建账号写入随机密码占位，确保该账号只能走 Google 登录
func (s *UserService) LoginWithGoogle(idToken string) (*db.User, error) {
	claims, err := s.verifier.Verify(idToken)
	if err != nil {
		return nil, err
	}

	email := strings.TrimSpace(strings.ToLower(claims.Email))
	if email == "" {
		return nil, ErrInvalidIDToken
	}

	var user db.User
	err = s.db.Preload("Cohort").Where("email = ?", email).First(&user).Error
	if err == nil {
		if user.Status == db.StatusBlocked {
			return nil, ErrUserBlocked
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	name := strings.TrimSpace(claims.Name)
	if name == "" {
		name = email
	}

	user = db.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     db.RoleStudent,
		Status:   db.StatusPending,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create google user: %w", err)
	}
	return &user, nil
}

// Get 根据 ID 获取用户
func (s *UserService) Get(id uint) (*db.User, error) {
	var user db.User
	if err := s.db.Preload("Cohort").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// ListStudents 返回学生集合，支持姓名/邮箱搜索与班级、状态筛选
func (s *UserService) ListStudents(filter StudentFilter) ([]db.User, error) {
	var students []db.User

	query := s.db.Preload("Cohort").Where("role = ?", db.RoleStudent)

	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", strings.TrimSpace(filter.Search))
		query = query.Where("name LIKE ? OR email LIKE ?", like, like)
	}
	if filter.CohortID != 0 {
		query = query.Where("cohort_id = ?", filter.CohortID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Order("created_at DESC").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	return students, nil
}

// SetStatus 流转账号状态：审批通过转 active，拒绝/拉黑转 blocked
func (s *UserService) SetStatus(id uint, status string) (*db.User, error) {
	if status != db.StatusActive && status != db.StatusBlocked && status != db.StatusPending {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	user.Status = status
	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("update user status: %w", err)
	}
	return &user, nil
}

// MoveCohort 调整学生所属班级；cohortID 为 nil 表示移出班级
func (s *UserService) MoveCohort(id uint, cohortID *uint) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if cohortID != nil {
		var cohort db.Cohort
		if err := s.db.First(&cohort, *cohortID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCohortNotFound
			}
			return nil, fmt.Errorf("find cohort: %w", err)
		}
	}

	user.CohortID = cohortID
	if err := s.db.Model(&user).Update("cohort_id", cohortID).Error; err != nil {
		return nil, fmt.Errorf("move cohort: %w", err)
	}
	return s.Get(user.ID)
}

// UpdateAvatar 更新用户头像地址
func (s *UserService) UpdateAvatar(id uint, avatarURL string) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	user.AvatarURL = strings.TrimSpace(avatarURL)
	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("update avatar: %w", err)
	}
	return &user, nil
}
