package controller

import (
	"prime-research/internal/dto"
	"prime-research/internal/pkg/serverutils"
	"prime-research/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IResearchController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	ClearIndex(ctx *fiber.Ctx) error
}

type researchController struct {
	service service.IResearchService
}

func NewResearchController(service service.IResearchService) IResearchController {
	return &researchController{service: service}
}

func (c *researchController) RegisterRoutes(r fiber.Router) {
	r.Post("/research", c.Start)
	r.Delete("/index", c.ClearIndex)
}

func (c *researchController) Start(ctx *fiber.Ctx) error {
	var req dto.ResearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	sessionId, err := c.service.Start(ctx.UserContext(), req.ToInput())
	if err != nil {
		return err
	}

	res := dto.ResearchStartedResponse{
		SessionId: sessionId,
		Stages:    c.service.StageNames(),
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Research started", res))
}

func (c *researchController) ClearIndex(ctx *fiber.Ctx) error {
	if err := c.service.ClearIndex(ctx.UserContext()); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Index cleared", nil))
}
