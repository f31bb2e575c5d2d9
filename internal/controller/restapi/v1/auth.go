package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/andreyxaxa/Registration-Saga/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/Registration-Saga/internal/controller/restapi/v1/validate"
	"github.com/andreyxaxa/Registration-Saga/internal/dto"
	"github.com/andreyxaxa/Registration-Saga/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// @Summary  	Register user
// @Description Writes the credential and the outbox record in one local transaction; projection is propagated asynchronously
// @Tags 		auth
// @Accept 		json
// @Produce 	json
// @Param 		request body registerRequest true "Registration data"
// @Success 	201 {object} response.Register
// @Failure 	400 {object} response.Error "Invalid input"
// @Failure 	409 {object} response.Error "Username or email already taken"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/auth/register [post]
func (r *V1) register(ctx *fiber.Ctx) error {
	var req registerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid request body")
	}

	// 1. валидация
	if err := validate.Register(req.Username, req.Email, req.FullName); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, err.Error())
	}

	role := req.Role
	if role == "" {
		role = "ROLE_USER"
	}

	// 2. доменная запись + outbox, одна транзакция
	user, err := r.reg.RegisterUser(ctx.UserContext(), dto.RegisterUser{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     role,
		TraceID:  ctx.Get("X-B3-TraceId"),
		SpanID:   ctx.Get("X-B3-SpanId"),
	})
	if err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return errorResponse(ctx, http.StatusConflict, "username or email already registered")
		}
		r.logger.Error(err, "restapi - v1 - register")

		return errorResponse(ctx, http.StatusInternalServerError, "registration failed")
	}

	// 3. ответ сразу после коммита: дальше консистентность eventual
	resp := response.Register{
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	return ctx.Status(http.StatusCreated).JSON(resp)
}

// @Summary  	List poisoned outbox messages
// @Description Pending messages that exhausted their retries and await manual inspection
// @Tags 		outbox
// @Produce 	json
// @Param 		limit query int false "Max records to return" default(50)
// @Success 	200 {array} response.OutboxMessage
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/outbox/poisoned [get]
func (r *V1) poisonedOutbox(ctx *fiber.Ctx) error {
	limit := 50
	if limitStr := ctx.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			return errorResponse(ctx, http.StatusBadRequest, "limit must be a positive number")
		}
		limit = parsed
	}

	msgs, err := r.reg.GetPoisonedMessages(ctx.UserContext(), r.maxRetries, limit)
	if err != nil {
		r.logger.Error(err, "restapi - v1 - poisonedOutbox")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	resp := make([]response.OutboxMessage, 0, len(msgs))
	for _, msg := range msgs {
		resp = append(resp, response.OutboxMessage{
			ID:          msg.ID,
			AggregateID: msg.AggregateID,
			TraceID:     msg.TraceID,
			RetryCount:  msg.RetryCount,
			CreatedAt:   msg.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	return ctx.Status(http.StatusOK).JSON(resp)
}
