package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
)

// ScopeRequest is the wire form of a promotion scope.
type ScopeRequest struct {
	Kind       string   `json:"kind" binding:"required,scopekind"`
	Categories []string `json:"categories"`
	Brands     []string `json:"brands"`
	Skus       []string `json:"skus"`
}

func (s *ScopeRequest) toDomain() (domain.Scope, error) {
	kind, err := domain.ParseScopeKind(s.Kind)
	if err != nil {
		return domain.Scope{}, err
	}
	return domain.NewScope(kind, s.Categories, s.Brands, s.Skus)
}

// CreatePromotionRequest is the body of POST /promotions. Active defaults to true.
type CreatePromotionRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description" binding:"max=2000"`
	Kind        string           `json:"kind" binding:"required,discountkind"`
	Value       *decimal.Decimal `json:"value" binding:"required"`
	Scope       *ScopeRequest    `json:"scope" binding:"required"`
	Start       time.Time        `json:"start" binding:"required"`
	End         time.Time        `json:"end" binding:"required"`
	Active      *bool            `json:"active"`
}

// UpdatePromotionRequest is the body of PATCH /promotions/:id. Omitted
// fields keep their value; version, when sent, must match the stored one.
type UpdatePromotionRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description" binding:"omitempty,max=2000"`
	Kind        *string          `json:"kind" binding:"omitempty,discountkind"`
	Value       *decimal.Decimal `json:"value"`
	Scope       *ScopeRequest    `json:"scope"`
	Start       *time.Time       `json:"start"`
	End         *time.Time       `json:"end"`
	Active      *bool            `json:"active"`
	Version     *int64           `json:"version"`
}

// ListPromotionsQuery holds the query string of GET /promotions.
type ListPromotionsQuery struct {
	Active    *bool  `form:"active"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	PageToken string `form:"page_token"`
}

// ScopeResponse is the wire form of a stored scope.
type ScopeResponse struct {
	Kind       string   `json:"kind"`
	Categories []string `json:"categories,omitempty"`
	Brands     []string `json:"brands,omitempty"`
	Skus       []string `json:"skus,omitempty"`
}

// PromotionResponse is a promotion as returned by the API.
type PromotionResponse struct {
	ID          string        `json:"id"`
	Code        string        `json:"code"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Kind        string        `json:"kind"`
	Value       string        `json:"value"`
	Scope       ScopeResponse `json:"scope"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	Active      bool          `json:"active"`
	Version     int64         `json:"version"`
	CreatedBy   string        `json:"created_by,omitempty"`
	UpdatedBy   string        `json:"updated_by,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ListPromotionsResponse is one page of promotions.
type ListPromotionsResponse struct {
	Promotions    []PromotionResponse `json:"promotions"`
	NextPageToken string              `json:"next_page_token,omitempty"`
}

func toPromotionResponse(dto *contracts.PromotionDTO) PromotionResponse {
	return PromotionResponse{
		ID:          dto.ID,
		Code:        dto.Code,
		Name:        dto.Name,
		Description: dto.Description,
		Kind:        string(dto.Kind),
		Value:       dto.Value.String(),
		Scope: ScopeResponse{
			Kind:       string(dto.Scope.Kind()),
			Categories: dto.Scope.Categories(),
			Brands:     dto.Scope.Brands(),
			Skus:       dto.Scope.Skus(),
		},
		Start:     dto.StartDate,
		End:       dto.EndDate,
		Active:    dto.Active,
		Version:   dto.Version,
		CreatedBy: dto.CreatedBy,
		UpdatedBy: dto.UpdatedBy,
		CreatedAt: dto.CreatedAt,
		UpdatedAt: dto.UpdatedAt,
	}
}
