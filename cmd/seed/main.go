package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/seed"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var tournamentID int64
	var file string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机赛事, 3: 从 CSV 文件导入队伍)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Int64Var(&tournamentID, "tournament-id", 0, "导入队伍的赛事 ID")
	flag.StringVar(&file, "file", "", "队伍 CSV 文件路径")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		logger.Error("未指定操作")
	case 1:
		if n <= 0 {
			logger.Error("请输入合法的用户数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
			if err != nil {
				logger.Error("无法生成随机用户", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreateUser(user); err != nil {
				logger.Error("无法插入用户", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		logger.Info("插入用户成功", slog.Int("count", cnt))
	case 2:
		if n <= 0 {
			logger.Error("请输入合法的赛事数量")
			return
		}

		for i := 0; i < n; i++ {
			if _, err := seed.SeedRandomTournament(repo); err != nil {
				logger.Error("无法插入随机赛事", slog.String("error", err.Error()))
			}
		}
	case 3:
		if tournamentID <= 0 || file == "" {
			logger.Error("请指定赛事 ID 和 CSV 文件")
			return
		}

		if err := seed.ImportTeams(repo, tournamentID, file); err != nil {
			logger.Error("导入队伍失败", slog.String("error", err.Error()))
		}
	default:
		logger.Error("指定的操作非法")
	}
}
