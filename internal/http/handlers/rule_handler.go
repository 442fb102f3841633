// Rule HTTP handlers.
//
// This file exposes REST endpoints for notification rule resources:
//   - POST   /rules       (create)
//   - GET    /rules       (list, ETag support)
//   - GET    /rules/{id}  (fetch one)
//   - PATCH  /rules/{id}  (update title/trigger)
//   - DELETE /rules/{id}  (delete, 200 with empty body)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
// The owning shop always comes from the verified session middleware; ids in
// the path select a rule but never widen access beyond the session's shop.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/merchline/shopify-rules-backend/internal/domain"
	"github.com/merchline/shopify-rules-backend/internal/repo"
	"github.com/merchline/shopify-rules-backend/internal/services"
	"github.com/merchline/shopify-rules-backend/internal/shopify"
	"github.com/merchline/shopify-rules-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// RuleService defines rule lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts. Absence and foreign
// ownership are both reported as services.ErrRuleNotFound.
type RuleService interface {
	// Create inserts a rule owned by shopDomain and returns the stored row.
	Create(ctx context.Context, shopDomain, title, trigger string) (*domain.Rule, error)
	// List returns all rules for shopDomain, oldest first.
	List(ctx context.Context, shopDomain string) ([]domain.Rule, error)
	// GetOwned returns the rule with id if it belongs to shopDomain.
	GetOwned(ctx context.Context, shopDomain string, id uint) (*domain.Rule, error)
	// Update overwrites title and trigger of a rule owned by shopDomain.
	Update(ctx context.Context, shopDomain string, id uint, title, trigger string) (*domain.Rule, error)
	// Delete removes a rule owned by shopDomain.
	Delete(ctx context.Context, shopDomain string, id uint) error
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for rules and the shop proxy.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	ruleSvc   RuleService
	formatter services.RuleFormatter
	admin     *shopify.AdminClient // nil when no access token is configured
}

// New constructs and returns a Handlers instance bound to the given service,
// response formatter, and (optional) Admin API client.
func New(ruleSvc RuleService, formatter services.RuleFormatter, admin *shopify.AdminClient) *Handlers {
	if formatter == nil {
		formatter = services.IdentityFormatter{}
	}
	return &Handlers{ruleSvc: ruleSvc, formatter: formatter, admin: admin}
}

// shopDomain extracts the session shop domain from Gin context (set by the
// VerifySession middleware). If absent, it falls back to the "X-Shop-Domain"
// header (tests use it), and finally to "demo-shop.myshopify.com". It never
// touches c.Request if it's nil.
func shopDomain(c *gin.Context) string {
	if v, ok := c.Get("shopDomain"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-Shop-Domain")); h != "" {
			return h
		}
	}
	return "demo-shop.myshopify.com"
}

//
// DTOs
//

// RuleRequest is the JSON payload for creating or updating a rule. Any extra
// fields a client sends are ignored; only title and trigger are read.
type RuleRequest struct {
	// Title names the rule in the merchant's admin (1–255 chars after trimming).
	Title string `json:"title" example:"Email on new orders"`
	// Trigger is the event that fires the rule (e.g. order/created).
	Trigger string `json:"trigger" example:"order/created"`
}

//
// Handlers
//

// CreateRule godoc
// @ID          createRule
// @Summary     Create a rule
// @Description Creates a notification rule owned by the session's shop and returns the stored resource.
// @Tags        Rules
// @Accept      json
// @Produce     json
//
// @Param       Authorization  header  string  false "Bearer session token"
// @Param       body           body    handlers.RuleRequest  true  "Rule payload"
//
// @Success     201  {object}  domain.Rule
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /rules [post]
func (h *Handlers) CreateRule(c *gin.Context) {
	var req RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	rule, err := h.ruleSvc.Create(c.Request.Context(), shopDomain(c), req.Title, req.Trigger)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRule) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "title and trigger are required")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, rule)
}

// ListRules godoc
// @ID          listRules
// @Summary     List rules
// @Description Returns all rules for the session's shop as a JSON array. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Rules
// @Produce     json
//
// @Param       Authorization  header  string  false "Bearer session token"
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
//
// @Success     200  {array}  domain.Rule
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /rules [get]
func (h *Handlers) ListRules(c *gin.Context) {
	ctx := c.Request.Context()
	shop := shopDomain(c)

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, ok := h.ruleSvc.(*services.RuleService); ok {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.RuleStats(ctx, db, shop)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"rules:%s:%d:%d"`, shop, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	rules, err := h.ruleSvc.List(ctx, shop)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	out, err := h.formatter.Format(ctx, shop, rules)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, out)
}

// GetRule godoc
// @ID          getRule
// @Summary     Fetch a rule
// @Description Returns a single rule owned by the session's shop. Rules of other shops are indistinguishable from missing ones.
// @Tags        Rules
// @Produce     json
//
// @Param       Authorization  header  string  false "Bearer session token"
// @Param       id             path    int     true  "Rule ID"  example(1)
//
// @Success     200  {object} domain.Rule
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Rule not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /rules/{id} [get]
func (h *Handlers) GetRule(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	rule, err := h.ruleSvc.GetOwned(c.Request.Context(), shopDomain(c), id)
	if err != nil {
		if errors.Is(err, services.ErrRuleNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "rule not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, rule)
}

// UpdateRule godoc
// @ID          updateRule
// @Summary     Update a rule
// @Description Overwrites title and trigger of a rule owned by the session's shop and returns the updated resource.
// @Tags        Rules
// @Accept      json
// @Produce     json
//
// @Param       Authorization  header  string  false "Bearer session token"
// @Param       id             path    int     true  "Rule ID"  example(1)
// @Param       body           body    handlers.RuleRequest  true  "Rule payload"
//
// @Success     200  {object} domain.Rule
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Rule not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /rules/{id} [patch]
func (h *Handlers) UpdateRule(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	var req RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	rule, err := h.ruleSvc.Update(c.Request.Context(), shopDomain(c), id, req.Title, req.Trigger)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRule):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "title and trigger are required")
		case errors.Is(err, services.ErrRuleNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "rule not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, rule)
}

// DeleteRule godoc
// @ID          deleteRule
// @Summary     Delete a rule
// @Description Permanently deletes a rule owned by the session's shop. Returns 200 with an empty body on success.
// @Tags        Rules
// @Produce     json
//
// @Param       Authorization  header  string  false "Bearer session token"
// @Param       id             path    int     true  "Rule ID"  example(1)
//
// @Success     200  {string} string "OK (empty body)"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Rule not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /rules/{id} [delete]
func (h *Handlers) DeleteRule(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	if err := h.ruleSvc.Delete(c.Request.Context(), shopDomain(c), id); err != nil {
		if errors.Is(err, services.ErrRuleNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "rule not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, err.Error())
		return
	}
	emptyOK(c)
}
