package parsevoicecommand

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	apperrors "crime-case-workers/internal/common/errors"
	"crime-case-workers/internal/common/logger"
	"crime-case-workers/internal/common/metrics"
	"crime-case-workers/internal/common/observability"
	"crime-case-workers/internal/interpreter"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const TaskType = "parse-voice-command"

var (
	ErrTranscriptNotFinal = errors.New("TRANSCRIPT_NOT_FINAL")
)

// Web Speech synthesis limits.
const (
	minRate, maxRate     = 0.1, 10.0
	minPitch, maxPitch   = 0.0, 2.0
	minVolume, maxVolume = 0.0, 1.0
)

type Handler struct {
	config     *Config
	parser     *interpreter.Parser
	obs        *observability.Observability
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		parser:     interpreter.NewParser(interpreter.WithClock(config.Now)),
		obs:        obs,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errHandler.HandleJobError(context.Background(), client, job, apperrors.NewParseError(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, h.toStandardError(err))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if !input.Transcript.IsFinal {
		return nil, fmt.Errorf("%w: interim transcript %q", ErrTranscriptNotFinal, input.Transcript.Text)
	}

	ctx, span := h.obs.StartSpan(ctx, "interpreter.parse")
	defer span.End()

	cmd := h.parser.Parse(input.Transcript.Text)
	summary := interpreter.FormatCommandSummary(cmd)
	reason := interpreter.ClarificationReason(cmd)

	span.SetAttributes(
		attribute.String("intent", string(cmd.Intent)),
		attribute.Float64("confidence", cmd.Confidence),
		attribute.Bool("needs_clarification", cmd.NeedsClarification),
	)
	metrics.ObserveCommand(string(cmd.Intent), cmd.Confidence, reason)
	h.obs.RecordCommand(ctx, string(cmd.Intent), cmd.NeedsClarification)

	h.logger.Info("voice command interpreted", map[string]interface{}{
		"intent":              cmd.Intent,
		"confidence":          cmd.Confidence,
		"needsClarification":  cmd.NeedsClarification,
		"clarificationReason": reason,
		"entityCount":         cmd.Entities.Count(),
	})

	return &Output{
		Command: cmd,
		Summary: summary,
		Speech:  buildSpeech(cmd, summary, input.Voice),
	}, nil
}

func buildSpeech(cmd interpreter.ParsedCommand, summary string, voice *VoiceSettings) SpeechReply {
	reply := SpeechReply{Rate: 1, Pitch: 1, Volume: 1}
	if voice != nil {
		reply.Rate = clampSetting(voice.Rate, minRate, maxRate)
		reply.Pitch = clampSetting(voice.Pitch, minPitch, maxPitch)
		reply.Volume = clampSetting(voice.Volume, minVolume, maxVolume)
	}

	if cmd.NeedsClarification && cmd.ClarificationQuestion != nil {
		reply.Utterance = *cmd.ClarificationQuestion
	} else {
		reply.Utterance = "Searching for: " + summary
	}
	return reply
}

func clampSetting(v *float64, lo, hi float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return 1
	}
	return math.Max(lo, math.Min(hi, *v))
}

func (h *Handler) toStandardError(err error) *apperrors.StandardError {
	if errors.Is(err, ErrTranscriptNotFinal) {
		return apperrors.NewTranscriptNotFinalError()
	}
	return apperrors.Normalize(err)
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
