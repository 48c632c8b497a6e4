package api

import (
	"net/http"

	"crime-case-workers/internal/interpreter"

	"github.com/gin-gonic/gin"
)

type CommandHandler struct {
	parser *interpreter.Parser
}

func NewCommandHandler(parser *interpreter.Parser) *CommandHandler {
	return &CommandHandler{parser: parser}
}

type parseRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Command interpreter.ParsedCommand `json:"command"`
	Summary string                    `json:"summary"`
}

type clarifyRequest struct {
	Intent   interpreter.CommandIntent   `json:"intent"`
	Entities interpreter.CommandEntities `json:"entities"`
}

// Parse handles POST /api/v1/commands/parse. Empty text is a valid request
// and yields an unknown command.
func (h *CommandHandler) Parse(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request: "+err.Error())
		return
	}

	cmd := h.parser.Parse(req.Text)
	c.JSON(http.StatusOK, parseResponse{
		Command: cmd,
		Summary: interpreter.FormatCommandSummary(cmd),
	})
}

// Summary handles POST /api/v1/commands/summary.
func (h *CommandHandler) Summary(c *gin.Context) {
	var cmd interpreter.ParsedCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": interpreter.FormatCommandSummary(cmd)})
}

// Clarify handles POST /api/v1/commands/clarify.
func (h *CommandHandler) Clarify(c *gin.Context) {
	var req clarifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request: "+err.Error())
		return
	}
	if req.Intent == "" {
		req.Intent = interpreter.IntentUnknown
	}
	if !req.Intent.IsValid() {
		writeError(c, http.StatusBadRequest, "INVALID_INTENT", "Unknown intent: "+string(req.Intent))
		return
	}

	c.JSON(http.StatusOK, gin.H{"question": interpreter.Clarify(req.Intent, req.Entities)})
}
