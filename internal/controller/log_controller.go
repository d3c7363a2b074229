package controller

import (
	"prime-research/internal/pkg/logger"
	"prime-research/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type ILogController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

// logController exposes the persisted application log. It is the only way to
// tell an empty stage result caused by an error from one where nothing was
// found.
type logController struct {
	reader logger.LogReader
}

func NewLogController(reader logger.LogReader) ILogController {
	return &logController{reader: reader}
}

func (c *logController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/logs")
	h.Get("", c.GetAll)
	h.Get(":id", c.Show)
}

func (c *logController) GetAll(ctx *fiber.Ctx) error {
	level := ctx.Query("level")
	limit := ctx.QueryInt("limit", 50)
	offset := ctx.QueryInt("offset", 0)

	entries, err := c.reader.GetLogs(level, limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get logs", entries))
}

func (c *logController) Show(ctx *fiber.Ctx) error {
	entry, err := c.reader.GetLogById(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get log", entry))
}
