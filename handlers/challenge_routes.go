// handlers/challenge_routes.go
package handlers

import (
	"match-rating-system/middleware"
	"match-rating-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupChallengeRoutes(app *fiber.App, challengeService *services.ChallengeService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/challenges", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var body struct {
			ToUserID string  `json:"to_user_id"`
			Message  *string `json:"message"`
			CourtID  *string `json:"court_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.ToUserID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to_user_id required"})
		}

		ch, err := challengeService.Create(userID, body.ToUserID, body.Message, body.CourtID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(ch)
	})

	secured.Get("/challenges/pending", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		challenges, err := challengeService.PendingForUser(userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(challenges)
	})

	secured.Get("/challenges", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		challenges, err := challengeService.AllForUser(userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(challenges)
	})

	secured.Post("/challenges/:id/accept", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		ch, m, err := challengeService.Accept(c.Params("id"), userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"challenge": ch, "match_id": m.ID})
	})

	secured.Post("/challenges/:id/decline", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		ch, err := challengeService.Decline(c.Params("id"), userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(ch)
	})

	secured.Post("/challenges/:id/cancel", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		ch, err := challengeService.Cancel(c.Params("id"), userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(ch)
	})
}
