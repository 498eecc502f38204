package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/utils"
)

// isForeignKeyViolation 删除仍被赛程引用的队伍或场地时返回 true
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503" // foreign_key_violation
}

func (h *Handler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string    `json:"name" validate:"required"`
		Description string    `json:"description"`
		StartTime   time.Time `json:"startTime" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateTournamentName(req.Name); err != nil {
		h.badRequest(w, r, err)
		return
	}

	t := &domain.Tournament{
		Name:        req.Name,
		Description: req.Description,
		StartTime:   req.StartTime,
	}
	if err := h.repository.CreateTournament(t); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建赛事成功", t)
}

func (h *Handler) GetAllTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.repository.GetAllTournaments()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取赛事列表成功", tournaments)
}

func (h *Handler) GetTournament(w http.ResponseWriter, r *http.Request) {
	t := r.Context().Value(TournamentCtx).(*domain.Tournament)
	h.successResponse(w, r, "获取赛事成功", t)
}

func (h *Handler) UpdateTournament(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        *string    `json:"name" validate:"omitempty,min=1"`
		Description *string    `json:"description"`
		StartTime   *time.Time `json:"startTime"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	t := r.Context().Value(TournamentCtx).(*domain.Tournament)
	if req.Name != nil {
		if err := utils.ValidateTournamentName(*req.Name); err != nil {
			h.badRequest(w, r, err)
			return
		}
		t.Name = *req.Name
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.StartTime != nil {
		t.StartTime = *req.StartTime
	}

	if err := h.repository.UpdateTournament(t); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新赛事失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新赛事成功", t)
}

func (h *Handler) DeleteTournament(w http.ResponseWriter, r *http.Request) {
	t := r.Context().Value(TournamentCtx).(*domain.Tournament)

	if err := h.repository.DeleteTournament(t.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除赛事成功", nil)
}

func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	t := r.Context().Value(TournamentCtx).(*domain.Tournament)

	teams, err := h.repository.GetTeamsByTournamentID(t.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取队伍列表成功", teams)
}

// CreateTeams 一次添加多支队伍，未给出简称时使用队名拼音首字母
func (h *Handler) CreateTeams(w http.ResponseWriter, r *http.Request) {
	t := r.Context().Value(TournamentCtx).(*domain.Tournament)

	var req []struct {
		Name      string `json:"name" validate:"required,max=32"`
		ShortName string `json:"shortName" validate:"omitempty,max=8"`
		Skill     int32  `json:"skill" validate:"min=0,max=100"`
		Group     string `json:"group" validate:"omitempty,max=8"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Var(req, "min=1,dive"); err != nil {
		h.badRequest(w, r, err)
		return
	}

	teams := make([]*domain.Team, len(req))
	for i, item := range req {
		teams[i] = &domain.Team{
			TournamentID: t.ID,
			Name:         item.Name,
			ShortName:    item.ShortName,
			Skill:        item.Skill,
			Group:        item.Group,
		}
		if teams[i].ShortName == "" {
			teams[i].ShortName = utils.GenerateTeamShortName(item.Name)
		}
		if teams[i].Group == "" {
			teams[i].Group = utils.GenerateGroupName(0)
		}
	}

	if err := h.repository.CreateTeams(teams); err != nil {
		if msg := uniqueViolationMessage(err); msg != "" {
			h.errorResponse(w, r, msg)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "添加队伍成功", teams)
}

// UpdateTeam 修改队伍信息，修改组别后需要重新生成赛程
func (h *Handler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	t := r.Context().Value(TournamentCtx).(*domain.Tournament)

	teamID, err := urlParamID(r, "teamID")
	if err != nil {
		h.errorResponse(w, r, "队伍ID无效")
		return
	}

	var req struct {
		Name      *string `json:"name" validate:"omitnil,min=1,max=32"`
		ShortName *string `json:"shortName" validate:"omitnil,min=1,max=8"`
		Skill     *int32  `json:"skill" validate:"omitnil,min=0,max=100"`
		Group     *string `json:"group" validate:"omitnil,min=1,max=8"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	teams, err := h.repository.GetTeamsByTournamentID(t.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	idx := slices.IndexFunc(teams, func(team *domain.Team) bool { return team.ID == teamID })
	if idx < 0 {
		h.errorResponse(w, r, "队伍不存在")
		return
	}
	team := teams[idx]

	if req.Name != nil {
		team.Name = *req.Name
	}
	if req.ShortName != nil {
		team.ShortName = *req.ShortName
	}
	if req.Skill != nil {
		team.Skill = *req.Skill
	}
	if req.Group != nil {
		team.Group = *req.Group
	}

	if err := h.repository.UpdateTeam(team); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "队伍信息已被修改，请刷新后重试")
		case uniqueViolationMessage(err) != "":
			h.errorResponse(w, r, uniqueViolationMessage(err))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "修改队伍信息成功", team)
}

func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	t := r.Context().Value(TournamentCtx).(*domain.Tournament)

	teamID, err := urlParamID(r, "teamID")
	if err != nil {
		h.errorResponse(w, r, "队伍ID无效")
		return
	}

	deleted, err := h.repository.DeleteTeam(t.ID, teamID)
	switch {
	case isForeignKeyViolation(err):
		h.errorResponse(w, r, "该队伍已被安排在赛程中，请先重新生成赛程")
	case err != nil:
		h.internalServerError(w, r, err)
	case !deleted:
		h.errorResponse(w, r, "队伍不存在")
	default:
		h.successResponse(w, r, "删除队伍成功", nil)
	}
}

func (h *Handler) GetPlaygrounds(w http.ResponseWriter, r *http.Request) {
	t := r.Context().Value(TournamentCtx).(*domain.Tournament)

	playgrounds, err := h.repository.GetPlaygroundsByTournamentID(t.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取场地列表成功", playgrounds)
}

func (h *Handler) CreatePlayground(w http.ResponseWriter, r *http.Request) {
	t := r.Context().Value(TournamentCtx).(*domain.Tournament)

	var req struct {
		Name string `json:"name" validate:"required,max=32"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	pg := &domain.Playground{
		TournamentID: t.ID,
		Name:         req.Name,
	}
	if err := h.repository.CreatePlayground(pg); err != nil {
		if msg := uniqueViolationMessage(err); msg != "" {
			h.errorResponse(w, r, msg)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "添加场地成功", pg)
}

func (h *Handler) DeletePlayground(w http.ResponseWriter, r *http.Request) {
	t := r.Context().Value(TournamentCtx).(*domain.Tournament)

	playgroundID, err := urlParamID(r, "playgroundID")
	if err != nil {
		h.errorResponse(w, r, "场地ID无效")
		return
	}

	deleted, err := h.repository.DeletePlayground(t.ID, playgroundID)
	switch {
	case isForeignKeyViolation(err):
		h.errorResponse(w, r, "该场地已被安排在赛程中，请先重新生成赛程")
	case err != nil:
		h.internalServerError(w, r, err)
	case !deleted:
		h.errorResponse(w, r, "场地不存在")
	default:
		h.successResponse(w, r, "删除场地成功", nil)
	}
}
