package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jigworks/jig_api/dto"
	"github.com/jigworks/jig_api/shared"
)

type CodeHandler struct {
	codeSvc CodeServiceInterface
}

func NewCodeHandler(codeSvc CodeServiceInterface) *CodeHandler {
	return &CodeHandler{
		codeSvc: codeSvc,
	}
}

func callerIdentity(c *fiber.Ctx) (string, bool) {
	userID, _ := c.Locals(shared.UserID).(string)
	role, _ := c.Locals(shared.UserRole).(string)
	return userID, role == shared.RoleAdmin
}

// @Summary Create Code
// @Description Mint a fresh unique code for a published jig with a settings snapshot
// @Tags codes
// @Accept  json
// @Produce json
// @Param createCodeRequest body dto.CreateCodeRequest true "Create code request"
// @Success 201 {object} shared.Response{data=dto.CodeResponse}
// @Security BearerAuth
// @Router /v1/jig/codes [post]
func (h *CodeHandler) CreateCode(c *fiber.Ctx) error {
	var req dto.CreateCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	userID, isAdmin := callerIdentity(c)

	code, err := h.codeSvc.CreateCode(userID, isAdmin, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Created", code)
}

// @Summary List Codes
// @Description List the caller's codes, newest first, with session counts
// @Tags codes
// @Accept  json
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} shared.Response{data=dto.CodeListResponse}
// @Security BearerAuth
// @Router /v1/jig/codes [get]
func (h *CodeHandler) ListCodes(c *fiber.Ctx) error {
	userID, _ := callerIdentity(c)

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	codes, err := h.codeSvc.ListCodes(userID, page, limit)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", codes)
}

// @Summary Rename Code
// @Description Set the display name of a code; the only permitted mutation
// @Tags codes
// @Accept  json
// @Produce json
// @Param code path string true "Code"
// @Param updateCodeNameRequest body dto.UpdateCodeNameRequest true "New name"
// @Success 204
// @Security BearerAuth
// @Router /v1/jig/codes/{code} [patch]
func (h *CodeHandler) UpdateCodeName(c *fiber.Ctx) error {
	code, err := shared.ParseCode(c.Params("code"))
	if err != nil {
		return shared.NewBadRequestError(err, "Invalid code")
	}

	var req dto.UpdateCodeNameRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	userID, isAdmin := callerIdentity(c)

	if err := h.codeSvc.UpdateCodeName(userID, isAdmin, code, req.Name); err != nil {
		return err
	}

	return shared.ResponseNoContent(c)
}

// @Summary List Sessions
// @Description List completed attempts recorded under a code
// @Tags codes
// @Accept  json
// @Produce json
// @Param code path string true "Code"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} shared.Response{data=dto.SessionListResponse}
// @Security BearerAuth
// @Router /v1/jig/codes/{code}/sessions [get]
func (h *CodeHandler) ListSessions(c *fiber.Ctx) error {
	code, err := shared.ParseCode(c.Params("code"))
	if err != nil {
		return shared.NewBadRequestError(err, "Invalid code")
	}

	userID, isAdmin := callerIdentity(c)

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	sessions, err := h.codeSvc.ListSessions(userID, isAdmin, code, page, limit)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", sessions)
}

// @Summary Get Jig
// @Description Fetch a jig the caller owns, including its play count
// @Tags jigs
// @Accept  json
// @Produce json
// @Param jigId path string true "Jig ID"
// @Success 200 {object} shared.Response{data=dto.JigResponse}
// @Security BearerAuth
// @Router /v1/jig/{jigId} [get]
func (h *CodeHandler) GetJig(c *fiber.Ctx) error {
	userID, isAdmin := callerIdentity(c)

	jig, err := h.codeSvc.GetJig(userID, isAdmin, c.Params("jigId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", jig)
}
