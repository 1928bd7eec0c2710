// handlers/match_routes.go
package handlers

import (
	"match-rating-system/middleware"
	"match-rating-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMatchRoutes(app *fiber.App, matchService *services.MatchService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	// NOTE: static path segments must be registered before /matches/:id or
	// fiber matches "pending-confirmation" as an :id.
	secured.Get("/matches/pending-confirmation", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		matches, err := matchService.PendingConfirmationFor(userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(matches)
	})

	secured.Get("/matches/mine", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		matches, err := matchService.ListForUser(userID, c.QueryInt("limit", 50))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(matches)
	})

	secured.Post("/matches", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var body struct {
			OpponentID *string `json:"opponent_id"`
			CourtID    *string `json:"court_id"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		m, err := matchService.Create(userID, body.OpponentID, body.CourtID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(m)
	})

	secured.Get("/matches/:id", func(c *fiber.Ctx) error {
		m, err := matchService.Get(c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(m)
	})

	secured.Post("/matches/:id/accept", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		m, err := matchService.Accept(c.Params("id"), userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(m)
	})

	secured.Post("/matches/:id/score", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var body struct {
			ScoreCreator  int `json:"score_creator"`
			ScoreOpponent int `json:"score_opponent"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		m, err := matchService.SubmitScore(c.Params("id"), userID, body.ScoreCreator, body.ScoreOpponent)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(m)
	})

	secured.Post("/matches/:id/confirm", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		m, err := matchService.ConfirmScore(c.Params("id"), userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(m)
	})

	secured.Post("/matches/:id/contest", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		m, err := matchService.ContestScore(c.Params("id"), userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(m)
	})

	// Direct completion: record only a winner, no score confirmation step.
	// Lower trust, kept for flows without score entry.
	secured.Post("/matches/:id/complete", func(c *fiber.Ctx) error {
		var body struct {
			WinnerID string `json:"winner_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.WinnerID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "winner_id required"})
		}

		m, err := matchService.Complete(c.Params("id"), body.WinnerID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(m)
	})

	secured.Post("/matches/:id/cancel", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		m, err := matchService.Cancel(c.Params("id"), userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(m)
	})
}
