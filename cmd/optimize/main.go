package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/export"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/seed"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/utils"
)

type options struct {
	teams       int
	groups      int
	playgrounds int
	csv         string
	seed        int64
	restWeight  float64
	output      string
	timeout     time.Duration
}

// loadTeams 从 CSV 读取队伍，或者生成指定数量的队伍
func loadTeams(opts options) ([]*domain.Team, error) {
	if opts.csv == "" {
		if opts.teams < 2 {
			return nil, errors.New("至少需要两支队伍")
		}
		return utils.GenerateTeams(0, opts.teams, opts.groups), nil
	}

	file, err := os.Open(opts.csv)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	teams, err := seed.ReadTeamsCSV(file)
	if err != nil {
		return nil, err
	}
	// 没有写入数据库，直接按顺序编号
	for i, team := range teams {
		team.ID = int64(i + 1)
	}
	return teams, nil
}

func printSchedule(w io.Writer, matches []*domain.Match, teams []*domain.Team, playgrounds []*domain.Playground, res *scheduler.Result) error {
	teamName := make(map[int64]string, len(teams))
	for _, team := range teams {
		teamName[team.ID] = team.Name
	}
	playgroundName := make(map[int64]string, len(playgrounds))
	for _, pg := range playgrounds {
		playgroundName[pg.ID] = pg.Name
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "轮次\t场地\t组别\t对阵")
	for _, m := range matches {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s vs %s\n", m.Round+1, playgroundName[m.PlaygroundID], m.Group, teamName[m.Team1ID], teamName[m.Team2ID])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n适应度 %.4f，共 %d 代，评估 %d 次，耗时 %s\n", res.Fitness, res.Generations, res.Evaluations, res.Duration.Round(time.Millisecond))
	for name, score := range res.Breakdown {
		fmt.Fprintf(w, "  %s: %.4f\n", name, score)
	}
	return nil
}

func run(ctx context.Context, opts options, params scheduler.Parameters, out io.Writer, logger *slog.Logger) error {
	teams, err := loadTeams(opts)
	if err != nil {
		return err
	}
	playgrounds := utils.GeneratePlaygrounds(0, opts.playgrounds)

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	matches, res, err := scheduler.Generate(ctx, params, opts.restWeight, teams, playgrounds, rand.New(rand.NewSource(opts.seed)), logger)
	if res == nil {
		return err
	}
	if err != nil {
		// 被中断时仍然输出目前最好的赛程
		logger.Warn("排程被中断", "error", err)
	}

	if err := printSchedule(out, matches, teams, playgrounds, res); err != nil {
		return err
	}

	if opts.output != "" {
		wb := &export.ScheduleWorkbook{
			Tournament:  &domain.Tournament{Name: "离线排程", StartTime: time.Now()},
			Matches:     matches,
			Teams:       teams,
			Playgrounds: playgrounds,
		}
		if err := wb.SaveAs(opts.output); err != nil {
			return fmt.Errorf("无法写入 %s: %w", opts.output, err)
		}
		logger.Info("赛程已导出", "path", opts.output)
	}

	return nil
}

func main() {
	var opts options
	var verbose bool

	flag.IntVar(&opts.teams, "teams", 8, "生成的队伍数量，指定 -csv 时忽略")
	flag.IntVar(&opts.groups, "groups", 2, "生成的组数，指定 -csv 时忽略")
	flag.IntVar(&opts.playgrounds, "playgrounds", 2, "场地数量")
	flag.StringVar(&opts.csv, "csv", "", "队伍 CSV 文件路径（表头：队名,简称,组别,实力）")
	flag.Int64Var(&opts.seed, "seed", time.Now().UnixNano(), "随机数种子，相同的种子得到相同的赛程")
	flag.Float64Var(&opts.restWeight, "rest-weight", -1, "休息间隔均衡的权重，小于 0 时使用配置中的值")
	flag.StringVar(&opts.output, "o", "", "导出的 xlsx 文件路径")
	flag.DurationVar(&opts.timeout, "timeout", 0, "排程的最长时间，0 表示使用配置中的值")
	flag.BoolVar(&verbose, "v", false, "输出每一代的进度")
	flag.Parse()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// 只读取排程参数，不需要数据库等配置
	cfg, err := config.LoadOptimizerConfig()
	if err != nil {
		logger.Error("无法读取配置", "error", err)
		os.Exit(1)
	}
	if opts.restWeight < 0 {
		opts.restWeight = cfg.RestFairnessWeight
	}
	if opts.timeout == 0 {
		opts.timeout = time.Duration(cfg.Timeout) * time.Second
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("开始排程", "seed", opts.seed, "playgrounds", opts.playgrounds)
	if err := run(ctx, opts, cfg.Parameters(), os.Stdout, logger); err != nil {
		logger.Error("排程失败", "error", err)
		os.Exit(1)
	}
}
