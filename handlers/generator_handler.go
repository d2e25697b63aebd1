package handlers

import (
	"errors"
	"net/http"

	"replyboost-backend/auth"
	"replyboost-backend/llm"
	"replyboost-backend/service"

	"github.com/gin-gonic/gin"
)

// GeneratorHandler handles HTTP requests for proposal generation
type GeneratorHandler struct {
	proposalService *service.ProposalService
}

// NewGeneratorHandler creates a new generator handler
func NewGeneratorHandler(proposalService *service.ProposalService) *GeneratorHandler {
	return &GeneratorHandler{
		proposalService: proposalService,
	}
}

// GenerateRequest represents the request body for proposal generation
type GenerateRequest struct {
	JobDescription string `json:"job_description" binding:"required"`
	Platform       string `json:"platform"`
	Framework      string `json:"framework"`
	CTAStyle       string `json:"cta_style"`
	ToneLevel      int    `json:"tone_level"`
}

// Generate handles POST /api/generate
func (h *GeneratorHandler) Generate(c *gin.Context) {
	email, ok := auth.GetUserEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Authentication required",
			},
		})
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.proposalService.Generate(c.Request.Context(), service.GenerateProposalRequest{
		UserEmail:      email,
		JobDescription: req.JobDescription,
		Platform:       req.Platform,
		Framework:      req.Framework,
		CTAStyle:       req.CTAStyle,
		ToneLevel:      req.ToneLevel,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyJobDescription):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_REQUEST",
					"message": err.Error(),
				},
			})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "USER_NOT_FOUND",
					"message": "User not found",
				},
			})
		case errors.Is(err, service.ErrQuotaExceeded):
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "QUOTA_EXCEEDED",
					"message": "Daily generation limit reached. Upgrade your plan for more.",
				},
			})
		case errors.Is(err, llm.ErrNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CONFIG_MISSING",
					"message": "Text generation is not configured",
				},
			})
		default:
			c.JSON(http.StatusBadGateway, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UPSTREAM_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"proposal":        result.Proposal,
			"signals":         result.Signals,
			"score":           result.Score,
			"remaining_quota": result.RemainingQuota,
		},
	})
}

// RefineRequest represents the request body for proposal refinement
type RefineRequest struct {
	Text        string `json:"text" binding:"required"`
	Instruction string `json:"instruction"`
}

// Refine handles POST /api/refine
func (h *GeneratorHandler) Refine(c *gin.Context) {
	email, ok := auth.GetUserEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Authentication required",
			},
		})
		return
	}

	var req RefineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.proposalService.Refine(c.Request.Context(), service.RefineProposalRequest{
		UserEmail:   email,
		Text:        req.Text,
		Instruction: req.Instruction,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyProposalText):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_REQUEST",
					"message": err.Error(),
				},
			})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "USER_NOT_FOUND",
					"message": "User not found",
				},
			})
		case errors.Is(err, service.ErrPlanRequired):
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PLAN_REQUIRED",
					"message": "Refinement is available on the pro plan",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "REFINE_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"text": result.Text,
		},
	})
}

// UsageToday handles GET /api/usage/today
func (h *GeneratorHandler) UsageToday(c *gin.Context) {
	email, ok := auth.GetUserEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Authentication required",
			},
		})
		return
	}

	result, err := h.proposalService.UsageToday(c.Request.Context(), service.UsageTodayRequest{
		UserEmail: email,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "USER_NOT_FOUND",
					"message": "User not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FETCH_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"used":      result.Used,
			"limit":     result.Limit,
			"remaining": result.Remaining,
			"plan":      result.Plan,
		},
	})
}
