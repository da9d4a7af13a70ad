package routes

import (
	"github.com/Madiyar04/fantasy-league/handlers"
	"github.com/Madiyar04/fantasy-league/middleware"
	"github.com/Madiyar04/fantasy-league/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes собирает все маршруты API на переданном роутере.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	allowedOrigins []string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	teamHandler *handlers.TeamHandler,
	rosterHandler *handlers.RosterHandler,
	leagueHandler *handlers.LeagueHandler,
	inviteHandler *handlers.InviteHandler,
	catalogHandler *handlers.CatalogHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)

	// Аутентификация
	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	// Пользователи
	router.Route("/users", func(r chi.Router) {
		r.Get("/{userID}", userHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", userHandler.GetCurrentUser)
			r.Patch("/me", userHandler.UpdateProfile)
			r.Post("/me/avatar", userHandler.UploadAvatar)
		})
	})

	// Команды и их составы
	router.Route("/teams", func(r chi.Router) {
		r.Get("/{teamID}", teamHandler.GetByID)
		r.Get("/{teamID}/roster", rosterHandler.GetRoster)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", teamHandler.Create)
			r.Get("/my", teamHandler.GetMyTeam)
			r.Put("/{teamID}", teamHandler.Update)
			r.Delete("/{teamID}", teamHandler.Delete)
			r.Post("/{teamID}/logo", teamHandler.UploadLogo)

			r.Post("/{teamID}/roster/drivers", rosterHandler.AssignDriver)
			r.Delete("/{teamID}/roster/drivers/{slotPosition}", rosterHandler.RemoveDriver)
			r.Post("/{teamID}/roster/constructors", rosterHandler.AssignConstructor)
			r.Delete("/{teamID}/roster/constructors/{slotPosition}", rosterHandler.RemoveConstructor)
		})
	})

	// Лиги
	router.Route("/leagues", func(r chi.Router) {
		r.Get("/", leagueHandler.ListPublic)
		r.Get("/{leagueID}", leagueHandler.GetByID)
		r.Get("/{leagueID}/standings", leagueHandler.GetStandings)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", leagueHandler.Create)
			r.Get("/my", leagueHandler.ListMy)
			r.Put("/{leagueID}", leagueHandler.Update)
			r.Delete("/{leagueID}", leagueHandler.Delete)

			r.Post("/{leagueID}/teams", leagueHandler.AddTeam)
			r.Delete("/{leagueID}/teams/{teamID}", leagueHandler.RemoveTeam)

			r.Get("/{leagueID}/invite", inviteHandler.GetOrCreate)
			r.Post("/{leagueID}/invite/email", inviteHandler.SendByEmail)
		})

		// Начисление очков — только администратор.
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.Authorize(models.RoleAdmin))
			r.Post("/{leagueID}/teams/{teamID}/points", leagueHandler.AwardPoints)
		})
	})

	// Приглашения по токену: превью публично, вступление требует входа.
	router.Route("/invites", func(r chi.Router) {
		r.Get("/{token}", inviteHandler.Preview)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{token}/join", inviteHandler.Join)
		})
	})

	// Справочники: чтение публично, запись только администратору.
	router.Route("/drivers", func(r chi.Router) {
		r.Get("/", catalogHandler.ListDrivers)
		r.Get("/{driverID}", catalogHandler.GetDriver)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.Authorize(models.RoleAdmin))
			r.Post("/", catalogHandler.CreateDriver)
			r.Put("/{driverID}", catalogHandler.UpdateDriver)
			r.Post("/{driverID}/photo", catalogHandler.UploadDriverPhoto)
		})
	})

	router.Route("/constructors", func(r chi.Router) {
		r.Get("/", catalogHandler.ListConstructors)
		r.Get("/{constructorID}", catalogHandler.GetConstructor)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.Authorize(models.RoleAdmin))
			r.Post("/", catalogHandler.CreateConstructor)
			r.Put("/{constructorID}", catalogHandler.UpdateConstructor)
			r.Post("/{constructorID}/logo", catalogHandler.UploadConstructorLogo)
		})
	})

	// WebSocket-комнаты лиг
	router.Get("/ws/leagues/{leagueID}", webSocketHandler.ServeLeague)
}
