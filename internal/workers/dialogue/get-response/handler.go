package getresponse

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
	"support-bot/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const TaskType = "dialogue-get-response"

const (
	defaultTimeout          = 10 * time.Second
	defaultMaxMessageLength = 2000
)

const inputSchema = `{
  "type": "object",
  "required": ["message"],
  "properties": {
    "sessionId": {"type": "string", "maxLength": 128},
    "message": {"type": "string", "maxLength": %d},
    "reset": {"type": "boolean"}
  }
}`

type Handler struct {
	config     *Config
	sessions   *dialogue.Sessions
	schema     *validation.Schema
	logger     logger.Logger
	errHandler *errors.ErrorHandler
	obs        *observability.Observability
}

func NewHandler(config *Config, sessions *dialogue.Sessions, obs *observability.Observability, log logger.Logger) *Handler {
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.MaxMessageLength <= 0 {
		config.MaxMessageLength = defaultMaxMessageLength
	}
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		sessions:   sessions,
		schema:     validation.MustCompile(fmt.Sprintf(inputSchema, config.MaxMessageLength)),
		logger:     log,
		errHandler: errors.NewErrorHandler(log),
		obs:        obs,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()
	ctx, span := h.obs.StartSpan(ctx, TaskType, attribute.Int64("jobKey", job.Key))
	defer span.End()

	start := time.Now()
	input, err := h.ParseInput(job.Variables)
	if err == nil {
		var output *Output
		output, err = h.Execute(ctx, input)
		if err == nil {
			span.SetAttributes(attribute.String("intent", output.Intent), attribute.String("tier", string(output.Tier)))
			h.completeJob(ctx, client, job, output)
			h.record(ctx, "success", start)
			return
		}
	}

	span.RecordError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()
	h.record(ctx, "failed", start)
	h.errHandler.HandleJobError(ctx, client, job, err)
}

// ParseInput decodes and validates job variables.
func (h *Handler) ParseInput(variables string) (*Input, error) {
	result, err := h.schema.ValidateJSON(variables)
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
	return &input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (out *Output, err error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewEngineFailedError(err)
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, errors.NewEngineFailedError(fmt.Errorf("panic during turn: %v", r))
		}
	}()

	respond := h.sessions.Respond
	if input.Reset {
		respond = h.sessions.ResetAndRespond
	}
	id, turn, err := respond(input.SessionId, input.Message)
	if err != nil {
		return nil, err
	}
	convCtx, err := h.sessions.Context(id)
	if err != nil {
		return nil, err
	}

	found := turn.Entities
	if found == nil {
		found = models.Entities{}
	}

	h.logger.Debug("turn answered", map[string]interface{}{
		"sessionId":  id,
		"intent":     turn.Intent,
		"tier":       string(turn.Tier),
		"confidence": turn.Confidence,
		"augmented":  turn.Augmented,
	})

	return &Output{
		SessionId:  id,
		Reply:      turn.Reply,
		Intent:     turn.Intent,
		Confidence: turn.Confidence,
		Tier:       turn.Tier,
		Entities:   found,
		Augmented:  turn.Augmented,
		Context:    convCtx,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
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
}

func (h *Handler) record(ctx context.Context, status string, start time.Time) {
	h.obs.RecordJobProcessed(ctx, TaskType, status)
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), status)
}
