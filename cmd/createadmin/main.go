// File: cmd/createadmin/main.go
package main

import (
	"context"
	"fmt"
	"net/mail"
	"os"
	"strings"

	"auto-card/internal/database"
	"auto-card/internal/store"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// 測試可覆寫的套件層級變數。
var (
	newPgxPool      = database.NewPgxPool
	runMigrationsFn = database.RunMigrations
	createUser      = store.CreateUser
	setUserAdmin    = store.SetUserAdmin
)

var (
	flagUsername    string
	flagEmail       string
	flagPassword    string
	flagDatabaseURL string
)

// rootCmd 建立管理員帳號：先以一般流程建立使用者，再直接設定
// is_admin。此為部署期的逃生門，刻意繞過管理員守門。
var rootCmd = &cobra.Command{
	Use:          "createadmin",
	Short:        "建立管理員帳號",
	Long:         "建立一個使用者並直接提升為管理員，供部署初始化使用。",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		dbURL := flagDatabaseURL
		if dbURL == "" {
			dbURL = os.Getenv("DATABASE_URL")
		}
		if dbURL == "" {
			return fmt.Errorf("環境變數 DATABASE_URL 未設定")
		}

		email := strings.ToLower(flagEmail)
		if _, err := mail.ParseAddress(email); err != nil {
			return fmt.Errorf("無效的 Email: %v", err)
		}

		ctx := context.Background()
		db, err := newPgxPool(ctx, dbURL)
		if err != nil {
			return fmt.Errorf("DB 連線失敗: %v", err)
		}
		defer db.Close()

		if err := runMigrationsFn(dbURL); err != nil {
			return fmt.Errorf("Migration 執行失敗: %v", err)
		}

		user, err := createUser(ctx, db, store.CreateUserParams{
			Email:    email,
			Username: flagUsername,
			Password: flagPassword,
			IsActive: true,
		})
		if err != nil {
			return fmt.Errorf("建立使用者失敗: %v", err)
		}

		// 第一位使用者已由 bootstrap 規則成為管理員
		if !user.IsAdmin {
			if err := setUserAdmin(ctx, db, user.ID, true); err != nil {
				return fmt.Errorf("設定管理員失敗: %v", err)
			}
		}

		cmd.Printf("管理員使用者 %s 建立成功！\n", user.Username)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagUsername, "username", "", "管理員使用者名稱")
	rootCmd.Flags().StringVar(&flagEmail, "email", "", "管理員 Email")
	rootCmd.Flags().StringVar(&flagPassword, "password", "", "管理員密碼")
	rootCmd.Flags().StringVar(&flagDatabaseURL, "database-url", "", "PostgreSQL 連線字符串（預設取 DATABASE_URL）")
	_ = rootCmd.MarkFlagRequired("username")
	_ = rootCmd.MarkFlagRequired("email")
	_ = rootCmd.MarkFlagRequired("password")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
