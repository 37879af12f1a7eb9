package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"jobboard/internal/auth"
	"jobboard/internal/config"
	"jobboard/internal/database"
	"jobboard/internal/store"
)

func main() {
	var (
		username       = flag.String("username", "", "用户名（必填）")
		email          = flag.String("email", "", "邮箱（必填）")
		phone          = flag.String("phone", "", "电话，格式 123)456-7890（可选）")
		employerName   = flag.String("employer-name", "", "同时创建雇主档案时的名称（可选）")
		applicantFirst = flag.String("applicant-first", "", "同时创建求职者档案时的名（可选）")
		applicantLast  = flag.String("applicant-last", "", "同时创建求职者档案时的姓（可选）")
	)
	flag.Parse()

	u := strings.TrimSpace(*username)
	if u == "" {
		log.Fatal("missing required flag: --username")
	}
	if strings.TrimSpace(*email) == "" {
		log.Fatal("missing required flag: --email")
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	password, err := generateRandomPassword(24)
	if err != nil {
		log.Fatalf("generate password: %v", err)
	}

	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	user, err := database.NewUser(hasher, u, strings.TrimSpace(*email), password, strings.TrimSpace(*phone), database.Address{})
	if err != nil {
		log.Fatalf("build user: %v", err)
	}
	if name := strings.TrimSpace(*employerName); name != "" {
		if user.Employer, err = database.NewEmployer(0, name); err != nil {
			log.Fatalf("build employer: %v", err)
		}
	}
	if *applicantFirst != "" || *applicantLast != "" {
		user.Applicant, err = database.NewApplicant(0, strings.TrimSpace(*applicantFirst), strings.TrimSpace(*applicantLast), "")
		if err != nil {
			log.Fatalf("build applicant: %v", err)
		}
	}

	if err := store.New(db).CreateUser(context.Background(), user); err != nil {
		if store.IsIntegrityError(err) {
			log.Fatalf("user %q or email %q already exists", u, *email)
		}
		log.Fatalf("create user: %v", err)
	}

	fmt.Printf("已创建账号：\n")
	fmt.Printf("用户 ID: %d\n", user.ID)
	fmt.Printf("用户名: %s\n", u)
	fmt.Printf("初始密码: %s\n", password)
	fmt.Printf("提示：该密码仅显示一次，请登录后通过 PATCH /v1/users/%d 修改。\n", user.ID)
}

func generateRandomPassword(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		bytesLen = 24
	}
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
