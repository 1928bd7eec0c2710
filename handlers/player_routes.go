// handlers/player_routes.go
package handlers

import (
	"strconv"

	"match-rating-system/middleware"
	"match-rating-system/models"
	"match-rating-system/services"
	"match-rating-system/utils"

	"github.com/gofiber/fiber/v2"
)

func SetupPlayerRoutes(
	app *fiber.App,
	playerService *services.PlayerService,
	historyService *services.RatingHistoryService,
	leaderboard *services.LeaderboardService,
	courtService *services.CourtService,
) {
	// 🔐 Secured routes — require user context forwarded by the gateway
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	// Idempotent profile bootstrap. Called by the gateway on first login.
	securedGroup.Post("/players", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var body struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&body); err != nil || body.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "name is required",
			})
		}

		player, err := playerService.EnsurePlayer(userID, body.Name)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(playerProfile(player))
	})

	securedGroup.Get("/players/me", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		player, err := playerService.GetPlayer(userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(playerProfile(player))
	})

	securedGroup.Post("/players/me/avatar", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		fileHeader, err := c.FormFile("avatar")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "avatar file is required",
			})
		}

		url, err := utils.UploadAvatar(fileHeader, userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "avatar upload failed",
				"cause": err.Error(),
			})
		}

		if err := playerService.SetAvatar(userID, url); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"avatar_url": url})
	})

	securedGroup.Get("/players/search", func(c *fiber.Ctx) error {
		query := c.Query("q")
		limit, _ := strconv.Atoi(c.Query("limit", "20"))

		players, err := playerService.SearchPlayers(query, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "search failed",
				"cause": err.Error(),
			})
		}

		results := make([]fiber.Map, 0, len(players))
		for i := range players {
			results = append(results, playerProfile(&players[i]))
		}
		return c.JSON(fiber.Map{"players": results})
	})

	securedGroup.Get("/players/:id", func(c *fiber.Ctx) error {
		player, err := playerService.GetPlayer(c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(playerProfile(player))
	})

	securedGroup.Get("/players/:id/history", func(c *fiber.Ctx) error {
		entries, err := historyService.ForPlayer(c.Params("id"), c.Query("range"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"history": entries})
	})

	securedGroup.Get("/rankings", func(c *fiber.Ctx) error {
		city := c.Query("city")
		limit, _ := strconv.Atoi(c.Query("limit", "50"))

		entries, err := leaderboard.Top(c.Context(), city, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load rankings",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"rankings": entries})
	})

	securedGroup.Post("/courts", func(c *fiber.Ctx) error {
		var body struct {
			Name string `json:"name"`
			City string `json:"city"`
		}
		if err := c.BodyParser(&body); err != nil || body.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "court name is required",
			})
		}

		court, err := courtService.Create(body.Name, body.City)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(court)
	})

	securedGroup.Get("/courts", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "100"))
		courts, err := courtService.ListByCity(c.Query("city"), limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list courts",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"courts": courts})
	})

	// ⚙️ Internal route — gateway token only, no user context.
	// Voids a completed match's rating effects (support tooling).
	app.Post("/internal/matches/:id/revert-rating", func(c *fiber.Ctx) error {
		if err := historyService.Revert(c.Params("id")); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"status": "reverted"})
	})
}

func playerProfile(p *models.Player) fiber.Map {
	return fiber.Map{
		"id":              p.ID,
		"name":            p.Name,
		"email":           p.Email,
		"avatar_url":      p.AvatarURL,
		"position":        p.Position,
		"city":            p.City,
		"rating":          p.Rating,
		"games_played":    p.GamesPlayed,
		"games_contested": p.GamesContested,
		"contest_rate":    p.ContestRate(),
		"streak_days":     p.StreakDays,
	}
}
