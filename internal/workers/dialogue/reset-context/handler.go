// internal/workers/dialogue/reset-context/handler.go
package resetcontext

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"support-bot/internal/common/errors"
	"support-bot/internal/common/logger"
	"support-bot/internal/common/metrics"
	"support-bot/internal/common/observability"
	"support-bot/internal/common/validation"
	"support-bot/internal/dialogue"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const TaskType = "dialogue-reset-context"

const defaultTimeout = 5 * time.Second

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["sessionId"],
  "properties": {
    "sessionId": {"type": "string", "minLength": 1, "maxLength": 128},
    "clearEntities": {"type": "boolean"}
  }
}`)

type Handler struct {
	config     *Config
	sessions   *dialogue.Sessions
	logger     logger.Logger
	errHandler *errors.ErrorHandler
	obs        *observability.Observability
}

func NewHandler(config *Config, sessions *dialogue.Sessions, obs *observability.Observability, log logger.Logger) *Handler {
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		sessions:   sessions,
		logger:     log,
		errHandler: errors.NewErrorHandler(log),
		obs:        obs,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()
	ctx, span := h.obs.StartSpan(ctx, TaskType, attribute.Int64("jobKey", job.Key))
	defer span.End()

	start := time.Now()
	output, err := h.run(ctx, job.Variables)
	if err != nil {
		span.RecordError(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()
		h.record(ctx, "failed", start)
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.record(ctx, "success", start)
}

func (h *Handler) record(ctx context.Context, status string, start time.Time) {
	h.obs.RecordJobProcessed(ctx, TaskType, status)
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), status)
}

func (h *Handler) run(ctx context.Context, variables string) (*Output, error) {
	result, err := inputSchema.ValidateJSON(variables)
	if err != nil {
		return nil, errors.NewInvalidTurnInputError(fmt.Sprintf("parse input: %v", err))
	}
	if !result.Valid {
		return nil, errors.NewInvalidTurnInputError(fmt.Sprintf("%v", result.GetErrorMessages()))
	}
	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInvalidTurnInputError(fmt.Sprintf("parse input: %v", err))
	}
	return h.Execute(ctx, &input)
}

// Execute resets the conversation context of an existing session and
// optionally forgets its entities.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewEngineFailedError(err)
	}
	if err := h.sessions.Reset(input.SessionId); err != nil {
		return nil, err
	}
	if input.ClearEntities {
		if err := h.sessions.ClearEntities(input.SessionId); err != nil {
			return nil, err
		}
	}

	h.logger.Info("conversation reset", map[string]interface{}{
		"sessionId":     input.SessionId,
		"clearEntities": input.ClearEntities,
	})
	return &Output{
		SessionId:       input.SessionId,
		Reset:           true,
		EntitiesCleared: input.ClearEntities,
	}, nil
}
