package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/repository"
)

const tokenCookieName = "__ecnc_tournament_manager_token"

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	organizerOnly := h.RequiredRole([]domain.Role{domain.RoleOrganizer})

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(organizerOnly)
			r.Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).Delete("/", h.DeleteUser)
				r.Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.With(organizerOnly).Post("/", h.CreateTournament)
			r.Get("/", h.GetAllTournaments)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.tournament)
				r.Get("/", h.GetTournament)
				r.With(organizerOnly).Patch("/", h.UpdateTournament)
				r.With(organizerOnly).Delete("/", h.DeleteTournament)

				r.Route("/teams", func(r chi.Router) {
					r.Get("/", h.GetTeams)
					r.With(organizerOnly).Post("/", h.CreateTeams)
					r.With(organizerOnly).Patch("/{teamID}", h.UpdateTeam)
					r.With(organizerOnly).Delete("/{teamID}", h.DeleteTeam)
				})

				r.Route("/playgrounds", func(r chi.Router) {
					r.Get("/", h.GetPlaygrounds)
					r.With(organizerOnly).Post("/", h.CreatePlayground)
					r.With(organizerOnly).Delete("/{playgroundID}", h.DeletePlayground)
				})

				r.Route("/schedule", func(r chi.Router) {
					r.Get("/", h.GetSchedule)
					r.Get("/export", h.ExportSchedule)
					r.With(organizerOnly).Post("/", h.SubmitSchedule)
					r.With(organizerOnly).Post("/generate", h.GenerateSchedule)
				})
			})
		})
	})
}
