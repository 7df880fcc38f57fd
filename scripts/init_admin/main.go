package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/studyflow/internal/config"
	"github.com/studyflow/internal/db"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	// 初始化数据库
	cfg := config.Load()
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	// 检查是否已存在管理员
	var count int64
	db.DB.Model(&db.User{}).Where("role = ?", db.RoleAdmin).Count(&count)
	if count > 0 {
		fmt.Println("管理员已存在，无需初始化")
		return
	}

	// 创建默认管理员账号
	password := "admin123" // 默认密码
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("密码加密失败:", err)
	}

	admin := db.User{
		Name:     "管理员",
		Email:    "admin@studyflow.local",
		Password: string(hashedPassword),
		Role:     db.RoleAdmin,
		Status:   db.StatusActive,
	}

	if err := db.DB.Create(&admin).Error; err != nil {
		log.Fatal("创建管理员失败:", err)
	}

	fmt.Println("默认管理员创建成功")
	fmt.Println("邮箱: admin@studyflow.local")
	fmt.Println("密码: admin123")
}
