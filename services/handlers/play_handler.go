package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jigworks/jig_api/dto"
	"github.com/jigworks/jig_api/shared"
)

// PlayHandler serves the anonymous learner endpoints. No auth middleware
// sits in front of these; the instance token inside the body is the only
// credential on the completion path.
type PlayHandler struct {
	playSvc PlayServiceInterface
}

func NewPlayHandler(playSvc PlayServiceInterface) *PlayHandler {
	return &PlayHandler{
		playSvc: playSvc,
	}
}

// @Summary Redeem Code
// @Description Redeem a code into a fresh play instance and its bearer token
// @Tags play
// @Accept  json
// @Produce json
// @Param redeemCodeRequest body dto.RedeemCodeRequest true "Redeem request"
// @Success 201 {object} shared.Response{data=dto.RedeemCodeResponse}
// @Router /v1/jig/codes/instance [post]
func (h *PlayHandler) Redeem(c *fiber.Ctx) error {
	var req dto.RedeemCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	res, err := h.playSvc.Redeem(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Created", res)
}

// @Summary Complete Instance
// @Description Apply a completion report for an in-flight play instance
// @Tags play
// @Accept  json
// @Produce json
// @Param completeInstanceRequest body dto.CompleteInstanceRequest true "Completion report"
// @Success 204
// @Router /v1/jig/codes/instance/complete [post]
func (h *PlayHandler) Complete(c *fiber.Ctx) error {
	if len(c.Body()) > dto.MaxSessionPayloadBytes {
		return shared.NewBadRequestError(errors.New("body too large"), "Session payload exceeds size limit")
	}

	var req dto.CompleteInstanceRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			validationResp := dto.CreateValidationErrorResponse(err)
			return c.Status(fiber.StatusBadRequest).JSON(validationResp)
		}
		return shared.NewBadRequestError(err, "Invalid session payload")
	}

	if err := h.playSvc.Complete(req); err != nil {
		return err
	}

	return shared.ResponseNoContent(c)
}
