package api

import (
	"context"
	"net/http"
	"time"

	"crime-case-workers/internal/common/logger"
	"crime-case-workers/internal/interpreter"
	"crime-case-workers/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CaseStore is the read side of case storage. *repository.CaseRepository
// satisfies it.
type CaseStore interface {
	GetByCaseNumber(ctx context.Context, caseNumber string) (*models.CaseRecord, error)
	ListByStage(ctx context.Context, stage models.WorkflowStage, limit int) ([]models.CaseRecord, error)
}

type Options struct {
	Parser         *interpreter.Parser
	Cases          CaseStore
	Logger         logger.Logger
	AllowedOrigins []string
	Version        string
}

func NewRouter(opts Options) *gin.Engine {
	if opts.Parser == nil {
		opts.Parser = interpreter.NewParser()
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(opts.Logger))

	corsConfig := cors.DefaultConfig()
	if len(opts.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "crime-case-api",
			"version": opts.Version,
		})
	})

	commands := NewCommandHandler(opts.Parser)
	cases := NewCaseHandler(opts.Cases, opts.Logger)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/commands/parse", commands.Parse)
		v1.POST("/commands/summary", commands.Summary)
		v1.POST("/commands/clarify", commands.Clarify)

		v1.GET("/cases", cases.List)
		v1.GET("/cases/:caseNumber", cases.Get)
	}

	return router
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request handled", map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": errorBody{Code: code, Message: message}})
}
