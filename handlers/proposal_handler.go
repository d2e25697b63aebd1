package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"replyboost-backend/auth"
	"replyboost-backend/models"
	"replyboost-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProposalHandler handles HTTP requests for proposal history
type ProposalHandler struct {
	proposalService *service.ProposalService
}

// NewProposalHandler creates a new proposal handler
func NewProposalHandler(proposalService *service.ProposalService) *ProposalHandler {
	return &ProposalHandler{
		proposalService: proposalService,
	}
}

// ListProposals handles GET /api/proposals
func (h *ProposalHandler) ListProposals(c *gin.Context) {
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

	result, err := h.proposalService.ListProposals(c.Request.Context(), service.ListProposalsRequest{
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
		"data":    result.Proposals,
	})
}

// UpdateStatusRequest represents the request body for status updates
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles PUT /api/proposals/:id/status
func (h *ProposalHandler) UpdateStatus(c *gin.Context) {
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

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid proposal ID format",
			},
		})
		return
	}

	var req UpdateStatusRequest
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

	result, err := h.proposalService.UpdateStatus(c.Request.Context(), service.UpdateStatusRequest{
		UserEmail:  email,
		ProposalID: id,
		Status:     models.ProposalStatus(req.Status),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_STATUS",
					"message": "Status must be one of: generated, sent, viewed, replied",
				},
			})
		case errors.Is(err, service.ErrProposalNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PROPOSAL_NOT_FOUND",
					"message": "Proposal not found",
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
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UPDATE_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":     id,
			"status": result.Status,
		},
	})
}

// Analytics handles GET /api/proposals/analytics
func (h *ProposalHandler) Analytics(c *gin.Context) {
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

	result, err := h.proposalService.Analytics(c.Request.Context(), service.AnalyticsRequest{
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
			"total":         result.Total,
			"status_counts": result.StatusCounts,
			"daily":         result.Daily,
		},
	})
}

// ExportHistory handles POST /api/proposals/export
func (h *ProposalHandler) ExportHistory(c *gin.Context) {
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

	result, err := h.proposalService.ExportHistory(c.Request.Context(), service.ExportHistoryRequest{
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
				"code":    "EXPORT_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result.Export,
	})
}

// DownloadExport handles GET /api/exports/:id/download
func (h *ProposalHandler) DownloadExport(c *gin.Context) {
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

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid export ID format",
			},
		})
		return
	}

	result, err := h.proposalService.DownloadExport(c.Request.Context(), service.DownloadExportRequest{
		UserEmail: email,
		ExportID:  id,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExportNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EXPORT_NOT_FOUND",
					"message": "Export not found",
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
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DOWNLOAD_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}
	defer result.Content.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Export.Filename))
	c.Header("Content-Type", "text/csv")
	if _, err := io.Copy(c.Writer, result.Content); err != nil {
		log.Printf("Failed to stream export %s: %v", id, err)
	}
}
