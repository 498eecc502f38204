package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/export"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/utils"
)

func scheduleLockKey(tournamentID int64) string {
	return fmt.Sprintf("schedule_lock_%d", tournamentID)
}

func countRounds(matches []*domain.Match) int {
	rounds := 0
	for _, m := range matches {
		if int(m.Round)+1 > rounds {
			rounds = int(m.Round) + 1
		}
	}
	return rounds
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	t := r.Context().Value(TournamentCtx).(*domain.Tournament)

	schedule, err := h.repository.GetScheduleByTournamentID(t.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.successResponse(w, r, "该赛事还没有赛程", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取赛程成功", schedule)
}

// SubmitSchedule 手动提交赛程，提交的赛程必须是可行的
func (h *Handler) SubmitSchedule(w http.ResponseWriter, r *http.Request) {
	t := r.Context().Value(TournamentCtx).(*domain.Tournament)

	var req []struct {
		Team1ID      int64 `json:"team1ID" validate:"required"`
		Team2ID      int64 `json:"team2ID" validate:"required"`
		Round        int32 `json:"round" validate:"min=0"`
		PlaygroundID int64 `json:"playgroundID" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Var(req, "min=1,dive"); err != nil {
		h.badRequest(w, r, err)
		return
	}

	teams, err := h.repository.GetTeamsByTournamentID(t.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	playgrounds, err := h.repository.GetPlaygroundsByTournamentID(t.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	groupOf := make(map[int64]string, len(teams))
	for _, team := range teams {
		groupOf[team.ID] = team.Group
	}

	matches := make([]*domain.Match, len(req))
	for i, item := range req {
		matches[i] = &domain.Match{
			TournamentID: t.ID,
			Team1ID:      item.Team1ID,
			Team2ID:      item.Team2ID,
			Group:        groupOf[item.Team1ID],
			Round:        item.Round,
			PlaygroundID: item.PlaygroundID,
		}
	}

	if err := utils.ValidateMatchesWithTeams(matches, teams); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateSchedule(matches, playgrounds); err != nil {
		h.badRequest(w, r, err)
		return
	}

	utils.SortSchedule(matches, playgrounds)

	if err := h.repository.ReplaceSchedule(t.ID, matches, nil); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "提交赛程成功", &domain.Schedule{
		TournamentID: t.ID,
		Matches:      matches,
	})
}

func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	t := r.Context().Value(TournamentCtx).(*domain.Tournament)

	// 所有参数都是可选的，未给出的使用配置中的默认值
	var req struct {
		Seed               *int64   `json:"seed"`
		CloneRate          *float64 `json:"cloneRate" validate:"omitnil,min=0,max=1"`
		CrossoverRate      *float64 `json:"crossoverRate" validate:"omitnil,min=0,max=1"`
		PopulationSize     *int     `json:"populationSize" validate:"omitnil,min=1,max=5000"`
		NewPopulationSize  *int     `json:"newPopulationSize" validate:"omitnil,min=1,max=20000"`
		MaxGenerations     *int     `json:"maxGenerations" validate:"omitnil,min=1,max=10000"`
		MaxStagnation      *int     `json:"maxStagnation" validate:"omitnil,min=0"`
		RestFairnessWeight *float64 `json:"restFairnessWeight" validate:"omitnil,min=0"`
	}

	if err := h.readOptionalJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 同一赛事同时只允许一个排程任务
	lockKey := scheduleLockKey(t.ID)
	ctx, cancel := h.redisContext(r.Context())
	locked, err := h.redisClient.SetNX(ctx, lockKey, time.Now().Unix(), time.Duration(h.config.Optimizer.LockExpiration)*time.Second).Result()
	cancel()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !locked {
		h.errorResponse(w, r, "该赛事正在排程中，请稍后再试")
		return
	}
	defer func() {
		ctx, cancel := h.redisContext(context.Background())
		defer cancel()
		if err := h.redisClient.Del(ctx, lockKey).Err(); err != nil {
			slog.Error("释放排程锁失败", "tournament", t.ID, "error", err)
		}
	}()

	teams, err := h.repository.GetTeamsByTournamentID(t.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	playgrounds, err := h.repository.GetPlaygroundsByTournamentID(t.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if len(playgrounds) == 0 {
		h.errorResponse(w, r, "该赛事还没有场地")
		return
	}
	if len(teams) < 2 {
		h.errorResponse(w, r, "该赛事至少需要两支队伍")
		return
	}

	params := h.config.Optimizer.Parameters()
	restWeight := h.config.Optimizer.RestFairnessWeight
	seed := time.Now().UnixNano()

	if req.Seed != nil {
		seed = *req.Seed
	}
	if req.CloneRate != nil {
		params.CloneRate = *req.CloneRate
	}
	if req.CrossoverRate != nil {
		params.CrossoverRate = *req.CrossoverRate
	}
	if req.PopulationSize != nil {
		params.PopulationSize = *req.PopulationSize
	}
	if req.NewPopulationSize != nil {
		params.NewPopulationSize = *req.NewPopulationSize
	}
	if req.MaxGenerations != nil {
		params.MaxGenerations = *req.MaxGenerations
	}
	if req.MaxStagnation != nil {
		params.MaxStagnation = *req.MaxStagnation
	}
	if req.RestFairnessWeight != nil {
		restWeight = *req.RestFairnessWeight
	}

	runCtx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Optimizer.Timeout)*time.Second)
	defer cancel()

	logger := slog.Default().With("tournament", t.ID, "seed", seed)
	matches, res, err := scheduler.Generate(runCtx, params, restWeight, teams, playgrounds, rand.New(rand.NewSource(seed)), logger)
	timedOut := false
	switch {
	case res == nil:
		h.badRequest(w, r, err)
		return
	case errors.Is(err, context.DeadlineExceeded):
		timedOut = true
	case err != nil:
		// 客户端已经断开，没有必要保存结果
		logger.Warn("排程请求被取消", "error", err)
		return
	}

	run := &domain.ScheduleRun{
		ID:           uuid.New(),
		TournamentID: t.ID,
		Seed:         seed,
		Fitness:      res.Fitness,
		Generations:  res.Generations,
		Evaluations:  res.Evaluations,
		DurationMs:   res.Duration.Milliseconds(),
		Breakdown:    res.Breakdown,
	}

	if err := h.repository.ReplaceSchedule(t.ID, matches, run); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.notifyScheduleReady(t, matches, res)

	msg := "自动排程成功"
	if err := utils.ValidateSchedule(matches, playgrounds); err != nil {
		msg = "自动排程完成，但赛程仍存在冲突：" + err.Error()
	}
	if timedOut {
		msg = "排程超时，已保存目前最好的结果"
	}

	h.successResponse(w, r, msg, &domain.Schedule{
		TournamentID: t.ID,
		Run:          run,
		Matches:      matches,
	})
}

// notifyScheduleReady 通知所有组织者排程完成，发送失败只记录日志
func (h *Handler) notifyScheduleReady(t *domain.Tournament, matches []*domain.Match, res *scheduler.Result) {
	organizers, err := h.repository.GetUsersByRole(domain.RoleOrganizer)
	if err != nil {
		slog.Error("获取组织者列表失败", "tournament", t.ID, "error", err)
		return
	}

	rounds := countRounds(matches)
	for _, organizer := range organizers {
		err := h.publishMail(domain.MailMessage{
			Type: "schedule_ready",
			To:   organizer.Email,
			Data: domain.ScheduleReadyMailData{
				FullName:       organizer.FullName,
				TournamentName: t.Name,
				Rounds:         rounds,
				Matches:        len(matches),
				Fitness:        res.Fitness,
			},
		})
		if err != nil {
			slog.Error("发送排程完成通知失败", "tournament", t.ID, "to", organizer.Email, "error", err)
		}
	}
}

func (h *Handler) ExportSchedule(w http.ResponseWriter, r *http.Request) {
	t := r.Context().Value(TournamentCtx).(*domain.Tournament)

	schedule, err := h.repository.GetScheduleByTournamentID(t.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "该赛事还没有赛程")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	teams, err := h.repository.GetTeamsByTournamentID(t.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	playgrounds, err := h.repository.GetPlaygroundsByTournamentID(t.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	wb := &export.ScheduleWorkbook{
		Tournament:  t,
		Matches:     schedule.Matches,
		Teams:       teams,
		Playgrounds: playgrounds,
	}
	f, err := wb.Build()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="schedule-%d.xlsx"`, t.ID))
	if err := f.Write(w); err != nil {
		h.logInternalServerError(r, err)
	}
}
