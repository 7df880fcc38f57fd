package main

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/studyflow/internal/config"
	"github.com/studyflow/internal/db"
	"golang.org/x/crypto/bcrypt"
)

// 演示数据生成器
func main() {
	_ = godotenv.Load()

	// 初始化数据库
	cfg := config.Load()
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成演示数据...")

	cohorts := seedCohorts()
	seedSubjects()
	seedRegistries()
	students := seedStudents(cohorts)
	tasks := seedTasks(cohorts, students)
	seedCheckIns(tasks, students)
	seedSettings()

	fmt.Println("演示数据生成完成！")
	fmt.Println("学生账号: student1@demo.studyflow.local / student123")
}

// 创建演示班级
func seedCohorts() map[string]uint {
	result := make(map[string]uint)

	var count int64
	db.DB.Model(&db.Cohort{}).Count(&count)
	if count > 0 {
		fmt.Println("班级已存在，读取现有数据")
		var existing []db.Cohort
		db.DB.Find(&existing)
		for _, cohort := range existing {
			result[cohort.Name] = cohort.ID
		}
		return result
	}

	for _, name := range []string{"考研冲刺一班", "考研冲刺二班"} {
		cohort := db.Cohort{Name: name}
		db.DB.Create(&cohort)
		result[name] = cohort.ID
	}

	fmt.Println("✅ 演示班级创建完成")
	return result
}

// 创建演示科目
func seedSubjects() {
	var count int64
	db.DB.Model(&db.Subject{}).Count(&count)
	if count > 0 {
		fmt.Println("科目已存在，跳过创建")
		return
	}

	subjects := []db.Subject{
		{Name: "数学", Color: "#3b82f6"},
		{Name: "英语", Color: "#10b981"},
		{Name: "政治", Color: "#ef4444"},
		{Name: "专业课", Color: "#8b5cf6"},
	}
	for i := range subjects {
		db.DB.Create(&subjects[i])
	}

	fmt.Println("✅ 演示科目创建完成")
}

// 创建学习方式与未完成原因注册表
func seedRegistries() {
	var modeCount int64
	db.DB.Model(&db.StudyMode{}).Count(&modeCount)
	if modeCount == 0 {
		modes := []db.StudyMode{
			{Label: "Video", Value: "Video", Color: "#3b82f6"},
			{Label: "Reading", Value: "Reading", Color: "#10b981"},
			{Label: "Questions", Value: "Questions", Color: "#f59e0b"},
			{Label: "Review", Value: "Review", Color: "#8b5cf6"},
		}
		for i := range modes {
			db.DB.Create(&modes[i])
		}
	}

	var reasonCount int64
	db.DB.Model(&db.FailureReason{}).Count(&reasonCount)
	if reasonCount == 0 {
		reasons := []db.FailureReason{
			{Label: "太累了", Color: "#ef4444"},
			{Label: "时间不够", Color: "#f59e0b"},
			{Label: "内容太难", Color: "#8b5cf6"},
			{Label: "临时有事", Color: "#6b7280"},
		}
		for i := range reasons {
			db.DB.Create(&reasons[i])
		}
	}

	fmt.Println("✅ 注册表数据创建完成")
}

// 创建演示学生
func seedStudents(cohorts map[string]uint) []db.User {
	var count int64
	db.DB.Model(&db.User{}).Where("role = ?", db.RoleStudent).Count(&count)
	if count > 0 {
		fmt.Println("学生已存在，读取现有数据")
		var existing []db.User
		db.DB.Where("role = ?", db.RoleStudent).Find(&existing)
		return existing
	}

	hashed, _ := bcrypt.GenerateFromPassword([]byte("student123"), bcrypt.DefaultCost)

	cohortOne := cohorts["考研冲刺一班"]
	cohortTwo := cohorts["考研冲刺二班"]

	students := []db.User{
		{Name: "王小雨", Email: "student1@demo.studyflow.local", Password: string(hashed), Role: db.RoleStudent, Status: db.StatusActive, CohortID: &cohortOne},
		{Name: "李明轩", Email: "student2@demo.studyflow.local", Password: string(hashed), Role: db.RoleStudent, Status: db.StatusActive, CohortID: &cohortOne},
		{Name: "陈思远", Email: "student3@demo.studyflow.local", Password: string(hashed), Role: db.RoleStudent, Status: db.StatusActive, CohortID: &cohortTwo},
		{Name: "赵雪晴", Email: "student4@demo.studyflow.local", Password: string(hashed), Role: db.RoleStudent, Status: db.StatusPending},
	}
	for i := range students {
		db.DB.Create(&students[i])
	}

	fmt.Println("✅ 演示学生创建完成")
	return students
}

// 创建基础课表与个性化任务
func seedTasks(cohorts map[string]uint, students []db.User) []db.Task {
	var count int64
	db.DB.Model(&db.Task{}).Count(&count)
	if count > 0 {
		fmt.Println("任务已存在，读取现有数据")
		var existing []db.Task
		db.DB.Find(&existing)
		return existing
	}

	cohortOne := cohorts["考研冲刺一班"]
	cohortTwo := cohorts["考研冲刺二班"]

	tasks := []db.Task{
		{CohortID: cohortOne, Subject: "数学", Mode: "Video", DurationMinutes: 90, DayOfWeek: "Monday", Description: "高等数学 **第三章** 视频课"},
		{CohortID: cohortOne, Subject: "英语", Mode: "Reading", DurationMinutes: 60, DayOfWeek: "Monday", Description: "阅读真题两篇"},
		{CohortID: cohortOne, Subject: "数学", Mode: "Questions", DurationMinutes: 120, DayOfWeek: "Tuesday", Description: "习题册 3.1-3.4"},
		{CohortID: cohortOne, Subject: "政治", Mode: "Review", DurationMinutes: 45, DayOfWeek: "Wednesday"},
		{CohortID: cohortTwo, Subject: "专业课", Mode: "Reading", DurationMinutes: 120, DayOfWeek: "Monday", Description: "教材第五章精读"},
		{CohortID: cohortTwo, Subject: "英语", Mode: "Questions", DurationMinutes: 60, DayOfWeek: "Thursday"},
	}
	for i := range tasks {
		db.DB.Create(&tasks[i])
	}

	// 给第一名学生加一条个性化任务
	if len(students) > 0 && students[0].CohortID != nil {
		personal := db.Task{
			CohortID:        *students[0].CohortID,
			StudentID:       &students[0].ID,
			Subject:         "英语",
			Mode:            "Review",
			DurationMinutes: 30,
			DayOfWeek:       "Friday",
			Description:     "单词本错词复盘",
		}
		db.DB.Create(&personal)
		tasks = append(tasks, personal)
	}

	fmt.Println("✅ 演示任务创建完成")
	return tasks
}

// 生成近一周的打卡记录
func seedCheckIns(tasks []db.Task, students []db.User) {
	var count int64
	db.DB.Model(&db.CheckIn{}).Count(&count)
	if count > 0 {
		fmt.Println("打卡记录已存在，跳过创建")
		return
	}
	if len(tasks) == 0 || len(students) == 0 {
		return
	}

	now := time.Now()
	periods := []string{db.PeriodMorning, db.PeriodAfternoon, db.PeriodNight}

	created := 0
	for i, task := range tasks {
		student := students[i%len(students)]
		if student.Status != db.StatusActive {
			continue
		}

		record := db.CheckIn{
			TaskID:    task.ID,
			StudentID: student.ID,
			Period:    periods[i%len(periods)],
			Timestamp: now.AddDate(0, 0, -(i % 7)),
		}
		if i%4 == 3 {
			record.Completed = false
			record.ReasonForFailure = "太累了"
		} else {
			record.Completed = true
			record.ActualDurationMinutes = task.DurationMinutes - (i%3)*10
		}

		if err := db.DB.Create(&record).Error; err == nil {
			created++
		}
	}

	fmt.Printf("✅ 演示打卡记录创建完成（%d 条）\n", created)
}

// 写入机构信息
func seedSettings() {
	var count int64
	db.DB.Model(&db.AppSetting{}).Count(&count)
	if count > 0 {
		fmt.Println("机构信息已存在，跳过创建")
		return
	}

	setting := db.AppSetting{
		SchoolName:     "启航考研学堂",
		InstructorName: "李老师",
		Phone:          "13800000000",
		Email:          "hello@studyflow.local",
		WelcomeMessage: "欢迎加入冲刺班！**坚持打卡**，日拱一卒。",
		WhatsappLink:   "https://wa.me/8613800000000",
	}
	db.DB.Create(&setting)

	fmt.Println("✅ 机构信息创建完成")
}
