package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ladder-gg/ladder/handlers"
	"github.com/ladder-gg/ladder/middleware"
	"github.com/ladder-gg/ladder/models"
)

// Deps — всё, что нужно роутеру для сборки API.
type Deps struct {
	JWTSecret   string
	Lobby       *handlers.LobbyHandler
	Party       *handlers.PartyHandler
	Search      *handlers.SearchHandler
	Invite      *handlers.InviteHandler
	Submission  *handlers.SubmissionHandler
	Admin       *handlers.AdminHandler
	Leaderboard *handlers.LeaderboardHandler
	Realtime    *handlers.RealtimeHandler
}

func SetupRoutes(d Deps) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(d.JWTSecret)

	// Публичные чтения
	router.Get("/catalog", d.Search.CatalogHandler)
	router.Get("/leaderboard", d.Leaderboard.TopHandler)
	router.Get("/lobbies", d.Lobby.ListHandler)
	router.Get("/lobbies/{lobbyID}", d.Lobby.GetByIDHandler)

	// Всё остальное требует игрока
	router.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/search", d.Search.FindHandler)
		r.Get("/leaderboard/me", d.Leaderboard.MyRankHandler)

		r.Route("/lobbies", func(r chi.Router) {
			r.Post("/", d.Lobby.CreateHandler)
			r.Post("/{lobbyID}/join", d.Lobby.JoinHandler)
			r.Post("/{lobbyID}/leave", d.Lobby.LeaveHandler)
			r.Post("/{lobbyID}/kick/{playerID}", d.Lobby.KickHandler)
			r.Post("/{lobbyID}/start", d.Lobby.StartHandler)
			r.Delete("/{lobbyID}", d.Lobby.CancelHandler)
			r.Post("/{lobbyID}/invite", d.Invite.EnsureCodeHandler)
			r.Post("/{lobbyID}/submissions", d.Submission.SubmitHandler)
			r.Post("/{lobbyID}/messages", d.Lobby.PostMessageHandler)
			r.Get("/{lobbyID}/messages", d.Lobby.ListMessagesHandler)
			r.Get("/{lobbyID}/ws", d.Realtime.SubscribeHandler)
		})

		r.Route("/parties", func(r chi.Router) {
			r.Post("/", d.Party.CreateHandler)
			r.Get("/{partyID}", d.Party.GetByIDHandler)
			r.Post("/{partyID}/members", d.Party.InviteHandler)
			r.Post("/{partyID}/leave", d.Party.LeaveHandler)
		})

		// Модераторская зона: грубый отсев по уровню здесь, точные
		// проверки (permanent, смена ролей) — в сервисах.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePrivilege(models.PrivilegeHelper))

			r.Get("/submissions", d.Submission.ListHandler)
			r.Post("/submissions/{submissionID}/review", d.Submission.ReviewHandler)

			r.Route("/admin", func(r chi.Router) {
				r.Post("/players/{playerID}/ban", d.Admin.BanPlayerHandler)
				r.Post("/players/{playerID}/unban", d.Admin.UnbanPlayerHandler)
				r.Put("/players/{playerID}/privilege", d.Admin.SetPrivilegeHandler)
				r.Post("/lobbies/{lobbyID}/bans/{playerID}", d.Admin.LobbyBanHandler)
				r.Delete("/lobbies/{lobbyID}/bans/{playerID}", d.Admin.LobbyUnbanHandler)
				r.Delete("/lobbies/{lobbyID}", d.Admin.DeleteLobbyHandler)
				r.Get("/actions", d.Admin.ListActionsHandler)
			})
		})
	})

	return router
}
