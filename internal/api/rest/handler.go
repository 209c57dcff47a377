package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/satenders/tender-indexer/internal/store"
)

// SubscriptionSyncer aligns a user's notification subscriptions with their
// saved categories
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api.go -package=mocks -mock_names=SubscriptionSyncer=MockSubscriptionSyncer,Handler=MockAPIHandler
type SubscriptionSyncer interface {
	Sync(ctx context.Context, userID int64, categories []string) error
}

// Handler defines the interface for REST API handlers
type Handler interface {
	// ListTenders retrieves tenders with optional filters
	// GET /api/v1/tenders?source=&status=&buyer=&category=&q=&closing_from=&closing_to=&published_from=&published_to=&limit=&offset=&sort=&order=
	ListTenders(c *gin.Context)

	// GetTender retrieves a single tender with documents and contacts embedded
	// GET /api/v1/tenders/:id
	GetTender(c *gin.Context)

	// GetTenderDocuments retrieves the documents attached to a tender
	// GET /api/v1/tenders/:id/documents
	GetTenderDocuments(c *gin.Context)

	// GetTenderContacts retrieves the contacts attached to a tender
	// GET /api/v1/tenders/:id/contacts
	GetTenderContacts(c *gin.Context)

	// GetTenderChanges retrieves the ingest audit trail for a tender
	// GET /api/v1/tenders/:id/changes
	GetTenderChanges(c *gin.Context)

	// SavePreferences replaces a user's category subscriptions
	// POST /api/v1/user/preferences
	SavePreferences(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	store         store.Store
	subscriptions SubscriptionSyncer
}

// NewHandler creates a new REST API handler
func NewHandler(st store.Store, subscriptions SubscriptionSyncer) Handler {
	return &handler{
		store:         st,
		subscriptions: subscriptions,
	}
}

// ListTenders retrieves tenders with optional filters
func (h *handler) ListTenders(c *gin.Context) {
	params, err := ParseListTendersQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	query, err := params.ToQuery()
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	tenders, total, err := h.store.ListTenders(c.Request.Context(), query)
	if err != nil {
		respondInternalError(c, err, "Failed to list tenders")
		return
	}

	results := make([]TenderSummary, 0, len(tenders))
	for _, t := range tenders {
		results = append(results, toTenderSummary(t))
	}

	c.JSON(http.StatusOK, ListTendersResponse{
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
		Results: results,
	})
}

// GetTender retrieves a single tender with children embedded
func (h *handler) GetTender(c *gin.Context) {
	id, ok := tenderIDParam(c)
	if !ok {
		return
	}

	tender, err := h.store.GetTenderByID(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "Failed to get tender", zap.Int64("id", id))
		return
	}
	if tender == nil {
		respondNotFound(c, "Tender not found")
		return
	}

	documents, err := h.store.GetTenderDocuments(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "Failed to get tender documents", zap.Int64("id", id))
		return
	}
	contacts, err := h.store.GetTenderContacts(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "Failed to get tender contacts", zap.Int64("id", id))
		return
	}

	c.JSON(http.StatusOK, toTenderDetail(tender, documents, contacts))
}

// GetTenderDocuments retrieves the documents attached to a tender
func (h *handler) GetTenderDocuments(c *gin.Context) {
	id, ok := h.existingTenderID(c)
	if !ok {
		return
	}

	documents, err := h.store.GetTenderDocuments(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "Failed to get tender documents", zap.Int64("id", id))
		return
	}

	dtos := make([]DocumentDTO, 0, len(documents))
	for _, d := range documents {
		dtos = append(dtos, toDocumentDTO(d))
	}
	c.JSON(http.StatusOK, dtos)
}

// GetTenderContacts retrieves the contacts attached to a tender
func (h *handler) GetTenderContacts(c *gin.Context) {
	id, ok := h.existingTenderID(c)
	if !ok {
		return
	}

	contacts, err := h.store.GetTenderContacts(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "Failed to get tender contacts", zap.Int64("id", id))
		return
	}

	dtos := make([]ContactDTO, 0, len(contacts))
	for _, ct := range contacts {
		dtos = append(dtos, toContactDTO(ct))
	}
	c.JSON(http.StatusOK, dtos)
}

// GetTenderChanges retrieves the ingest audit trail for a tender
func (h *handler) GetTenderChanges(c *gin.Context) {
	id, ok := h.existingTenderID(c)
	if !ok {
		return
	}

	changes, err := h.store.GetTenderChanges(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "Failed to get tender changes", zap.Int64("id", id))
		return
	}

	dtos := make([]ChangeDTO, 0, len(changes))
	for _, ch := range changes {
		dtos = append(dtos, toChangeDTO(ch))
	}
	c.JSON(http.StatusOK, dtos)
}

// SavePreferences replaces a user's category subscriptions and re-syncs
// their notification consumer
func (h *handler) SavePreferences(c *gin.Context) {
	var req PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		respondInternalError(c, err, "Failed to look up user")
		return
	}
	if user == nil {
		respondNotFound(c, "User not found")
		return
	}

	if err := h.store.ReplaceUserPreferences(c.Request.Context(), user.ID, req.Categories); err != nil {
		respondInternalError(c, err, "Failed to save preferences", zap.Int64("userId", user.ID))
		return
	}

	// Preferences are durable at this point; the consumer sync must follow
	// or notifications will not match what was saved
	if err := h.subscriptions.Sync(c.Request.Context(), user.ID, req.Categories); err != nil {
		respondInternalError(c, err, "Failed to sync subscriptions", zap.Int64("userId", user.ID))
		return
	}

	categories, err := h.store.GetUserPreferences(c.Request.Context(), user.ID)
	if err != nil {
		respondInternalError(c, err, "Failed to read back preferences", zap.Int64("userId", user.ID))
		return
	}

	c.JSON(http.StatusOK, PreferencesResponse{
		UserID:     user.ID,
		Categories: categories,
	})
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// tenderIDParam parses the :id path parameter, responding on failure
func tenderIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "Invalid tender id")
		return 0, false
	}
	return id, true
}

// existingTenderID parses the :id parameter and verifies the tender exists
func (h *handler) existingTenderID(c *gin.Context) (int64, bool) {
	id, ok := tenderIDParam(c)
	if !ok {
		return 0, false
	}

	tender, err := h.store.GetTenderByID(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "Failed to get tender", zap.Int64("id", id))
		return 0, false
	}
	if tender == nil {
		respondNotFound(c, "Tender not found")
		return 0, false
	}
	return id, true
}
