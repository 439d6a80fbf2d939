package remote

import (
	"context"
	"net/http"

	"warenbuchung/internal/domain/settings"
)

// Compile-time check that Client satisfies the settings remote side.
var _ settings.Remote = (*Client)(nil)

type reasonDTO struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	IsActive   bool   `json:"isActive"`
	OrderIndex int    `json:"orderIndex"`
}

type justificationDTO struct {
	ID         int64  `json:"id"`
	Text       string `json:"text"`
	IsActive   bool   `json:"isActive"`
	OrderIndex int    `json:"orderIndex"`
}

// FetchReasons downloads all configured goods-out reasons, active and
// inactive.
func (c *Client) FetchReasons(ctx context.Context) ([]settings.Reason, error) {
	var dtos []reasonDTO
	if err := c.do(ctx, http.MethodGet, "/settings/reasons/all", nil, &dtos, ""); err != nil {
		return nil, err
	}
	reasons := make([]settings.Reason, 0, len(dtos))
	for _, dto := range dtos {
		reasons = append(reasons, settings.Reason{
			ID:         dto.ID,
			Name:       dto.Name,
			IsActive:   dto.IsActive,
			OrderIndex: dto.OrderIndex,
		})
	}
	return reasons, nil
}

// FetchJustifications downloads the active begruendung templates.
func (c *Client) FetchJustifications(ctx context.Context) ([]settings.Justification, error) {
	var dtos []justificationDTO
	if err := c.do(ctx, http.MethodGet, "/settings/justifications", nil, &dtos, ""); err != nil {
		return nil, err
	}
	justifications := make([]settings.Justification, 0, len(dtos))
	for _, dto := range dtos {
		justifications = append(justifications, settings.Justification{
			ID:         dto.ID,
			Text:       dto.Text,
			IsActive:   dto.IsActive,
			OrderIndex: dto.OrderIndex,
		})
	}
	return justifications, nil
}
