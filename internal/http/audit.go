package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/services"
)

// activityEventTypes are the event types a user may filter the feed by.
var activityEventTypes = map[string]entities.AuditEventType{
	string(entities.AuditEventBook):        entities.AuditEventBook,
	string(entities.AuditEventReadingList): entities.AuditEventReadingList,
	string(entities.AuditEventAuth):        entities.AuditEventAuth,
	string(entities.AuditEventAccount):     entities.AuditEventAccount,
}

type AuditController struct {
	auditService *audit.Service
	paginator    services.Paginator
}

func NewAuditController(auditService *audit.Service, paginator services.Paginator) *AuditController {
	return &AuditController{
		auditService: auditService,
		paginator:    paginator,
	}
}

// GetActivity returns the caller's audit events, newest first.
// GET /api/users/activity?type=book&page=N&page_size=M
func (ac *AuditController) GetActivity(c *gin.Context) {
	userID := auth.GetUserID(c)

	req, ok := parsePageRequest(c)
	if !ok {
		return
	}
	req, limit, offset, err := ac.paginator.Window(req)
	if err != nil {
		respondError(c, http.StatusNotFound, "Invalid page.")
		return
	}

	var events []entities.AuditEvent
	var total int64

	if raw := c.Query("type"); raw != "" {
		eventType, known := activityEventTypes[raw]
		if !known {
			respondError(c, http.StatusBadRequest, "Unknown event type: "+raw)
			return
		}
		events, total, err = ac.auditService.GetEventsByType(eventType, userID, limit, offset)
	} else {
		events, total, err = ac.auditService.GetEvents(userID, limit, offset)
	}
	if err != nil {
		respondInternalError(c, err, "load activity")
		return
	}

	page, err := services.NewPage(req, total, events)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPage) {
			respondError(c, http.StatusNotFound, "Invalid page.")
			return
		}
		respondInternalError(c, err, "load activity")
		return
	}

	respondSuccess(c, http.StatusOK, "Activity fetched successfully.", newPageResponse(c, page, newActivityResponse))
}
