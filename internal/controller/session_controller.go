package controller

import (
	"prime-research/internal/dto"
	"prime-research/internal/pkg/serverutils"
	"prime-research/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	State(ctx *fiber.Ctx) error
	RecordQuizResult(ctx *fiber.Ctx) error
	QuizResults(ctx *fiber.Ctx) error
}

type sessionController struct {
	knowledge service.IKnowledgeService
	research  service.IResearchService
}

func NewSessionController(knowledge service.IKnowledgeService, research service.IResearchService) ISessionController {
	return &sessionController{knowledge: knowledge, research: research}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sessions")
	h.Get("", c.GetAll)
	h.Get(":id", c.Show)
	h.Get(":id/state", c.State)
	h.Get(":id/quiz-results", c.QuizResults)
	h.Post(":id/quiz-results", c.RecordQuizResult)
}

func (c *sessionController) GetAll(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 20)
	offset := ctx.QueryInt("offset", 0)

	sessions, err := c.knowledge.ListSessions(ctx.UserContext(), limit, offset)
	if err != nil {
		return err
	}

	res := make([]dto.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		res = append(res, dto.NewSessionResponse(s))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all sessions", res))
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	session, err := c.knowledge.GetSession(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	if session == nil {
		return service.ErrSessionNotFound
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show session", dto.NewSessionResponse(session)))
}

// State returns the cached pipeline state of the session's latest run.
func (c *sessionController) State(ctx *fiber.Ctx) error {
	run, ok := c.research.GetRun(ctx.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no cached run for this session")
	}

	res := dto.RunStateResponse{
		SessionId:  run.SessionId,
		Status:     run.Status,
		Stage:      run.Stage,
		Error:      run.Error,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		State:      run.State,
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get run state", res))
}

func (c *sessionController) RecordQuizResult(ctx *fiber.Ctx) error {
	var req dto.QuizResultRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if req.Score > float64(req.TotalQuestions) {
		return fiber.NewError(fiber.StatusBadRequest, "score cannot exceed total_questions")
	}

	result, err := c.knowledge.RecordQuizResult(ctx.UserContext(), ctx.Params("id"), req.Score, req.TotalQuestions)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Quiz result recorded", dto.NewQuizResultResponse(result)))
}

func (c *sessionController) QuizResults(ctx *fiber.Ctx) error {
	results, err := c.knowledge.ListQuizResults(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	res := make([]dto.QuizResultResponse, 0, len(results))
	for _, r := range results {
		res = append(res, dto.NewQuizResultResponse(r))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get quiz results", res))
}
