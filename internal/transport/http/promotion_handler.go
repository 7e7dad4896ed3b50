package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
	"github.com/light-bringer/promo-engine/internal/app/promotion/queries/get_promotion"
	"github.com/light-bringer/promo-engine/internal/app/promotion/queries/list_promotions"
	"github.com/light-bringer/promo-engine/internal/app/promotion/usecases/create_promotion"
	"github.com/light-bringer/promo-engine/internal/app/promotion/usecases/delete_promotion"
	"github.com/light-bringer/promo-engine/internal/app/promotion/usecases/update_promotion"
)

type promotionCreator interface {
	Execute(ctx context.Context, req *create_promotion.Request) (*contracts.PromotionDTO, error)
}

type promotionUpdater interface {
	Execute(ctx context.Context, req *update_promotion.Request) (*contracts.PromotionDTO, error)
}

type promotionDeleter interface {
	Execute(ctx context.Context, req *delete_promotion.Request) error
}

type recalculator interface {
	Execute(ctx context.Context, actorID string) error
}

type promotionGetter interface {
	Execute(ctx context.Context, req *get_promotion.Request) (*contracts.PromotionDTO, error)
}

type promotionLister interface {
	Execute(ctx context.Context, req *list_promotions.Request) (*contracts.ListResult, error)
}

// PromotionHandler serves /promotions.
type PromotionHandler struct {
	create    promotionCreator
	update    promotionUpdater
	delete    promotionDeleter
	recalcAll recalculator
	get       promotionGetter
	list      promotionLister
}

// NewPromotionHandler creates a new promotion handler.
func NewPromotionHandler(
	create promotionCreator,
	update promotionUpdater,
	del promotionDeleter,
	recalcAll recalculator,
	get promotionGetter,
	list promotionLister,
) *PromotionHandler {
	return &PromotionHandler{
		create:    create,
		update:    update,
		delete:    del,
		recalcAll: recalcAll,
		get:       get,
		list:      list,
	}
}

// RegisterRoutes mounts the promotion endpoints on rg.
func (h *PromotionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/promotions")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.POST("/recalculate", h.RecalculateAll)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// Create handles POST /promotions.
func (h *PromotionHandler) Create(c *gin.Context) {
	var req CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindingMessage(err))
		return
	}

	kind, err := domain.ParseDiscountKind(req.Kind)
	if err != nil {
		handleError(c, err)
		return
	}
	scope, err := req.Scope.toDomain()
	if err != nil {
		handleError(c, err)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	dto, err := h.create.Execute(c.Request.Context(), &create_promotion.Request{
		Name:        req.Name,
		Description: req.Description,
		Kind:        kind,
		Value:       *req.Value,
		Scope:       scope,
		StartDate:   req.Start,
		EndDate:     req.End,
		Active:      active,
		ActorID:     actorID(c),
	})
	if err != nil {
		handleError(c, err)
		return
	}

	created(c, toPromotionResponse(dto))
}

// Update handles PATCH /promotions/:id.
func (h *PromotionHandler) Update(c *gin.Context) {
	var req UpdatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindingMessage(err))
		return
	}

	ucReq := &update_promotion.Request{
		PromotionID:     c.Param("id"),
		Name:            req.Name,
		Description:     req.Description,
		Value:           req.Value,
		StartDate:       req.Start,
		EndDate:         req.End,
		Active:          req.Active,
		ExpectedVersion: req.Version,
		ActorID:         actorID(c),
	}

	if req.Kind != nil {
		kind, err := domain.ParseDiscountKind(*req.Kind)
		if err != nil {
			handleError(c, err)
			return
		}
		ucReq.Kind = &kind
	}
	if req.Scope != nil {
		scope, err := req.Scope.toDomain()
		if err != nil {
			handleError(c, err)
			return
		}
		ucReq.Scope = &scope
	}

	dto, err := h.update.Execute(c.Request.Context(), ucReq)
	if err != nil {
		handleError(c, err)
		return
	}

	ok(c, toPromotionResponse(dto))
}

// Delete handles DELETE /promotions/:id.
func (h *PromotionHandler) Delete(c *gin.Context) {
	err := h.delete.Execute(c.Request.Context(), &delete_promotion.Request{
		PromotionID: c.Param("id"),
		ActorID:     actorID(c),
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Get handles GET /promotions/:id.
func (h *PromotionHandler) Get(c *gin.Context) {
	dto, err := h.get.Execute(c.Request.Context(), &get_promotion.Request{PromotionID: c.Param("id")})
	if err != nil {
		handleError(c, err)
		return
	}

	ok(c, toPromotionResponse(dto))
}

// List handles GET /promotions.
func (h *PromotionHandler) List(c *gin.Context) {
	var q ListPromotionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, bindingMessage(err))
		return
	}

	res, err := h.list.Execute(c.Request.Context(), &list_promotions.Request{
		Active:    q.Active,
		PageSize:  q.Limit,
		PageToken: q.PageToken,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	out := ListPromotionsResponse{
		Promotions:    make([]PromotionResponse, 0, len(res.Promotions)),
		NextPageToken: res.NextPageToken,
	}
	for _, p := range res.Promotions {
		out.Promotions = append(out.Promotions, toPromotionResponse(p))
	}
	ok(c, out)
}

// RecalculateAll handles POST /promotions/recalculate.
func (h *PromotionHandler) RecalculateAll(c *gin.Context) {
	if err := h.recalcAll.Execute(c.Request.Context(), actorID(c)); err != nil {
		handleError(c, err)
		return
	}

	accepted(c, gin.H{"status": "scheduled"})
}
