package dto

import (
	"warenbuchung/internal/domain/booking"
	"warenbuchung/internal/domain/movement"
	"warenbuchung/internal/domain/staging"
)

// ScopeRequest selects one grouping scope via query parameters.
type ScopeRequest struct {
	Direction   string `form:"direction" binding:"required,oneof=in out"`
	CaptureType string `form:"erfassungstyp" binding:"required"`
	Reference   string `form:"referenz"`
}

// ToScope converts the bound query into a domain scope.
func (r ScopeRequest) ToScope() booking.Scope {
	return booking.Scope{
		Direction:   movement.Direction(r.Direction),
		CaptureType: movement.CaptureType(r.CaptureType),
		Reference:   r.Reference,
	}
}

// MetaRequest sets the scope-level entry fields.
type MetaRequest struct {
	Location    string `json:"lagerort"`
	From        string `json:"von"`
	To          string `json:"nach"`
	Supplier    string `json:"lieferant"`
	SupplierID  string `json:"lieferantennummer"`
	Remark      string `json:"bemerkung"`
	Reason      string `json:"grund"`
	ProjectName string `json:"projekt"`
	KeepRows    bool   `json:"keepRows"`
	FloorIsOne  bool   `json:"floorIsOne"`
}

// ToMeta converts the request into scope meta.
func (r MetaRequest) ToMeta() booking.Meta {
	return booking.Meta{
		Location:    r.Location,
		From:        r.From,
		To:          r.To,
		Supplier:    r.Supplier,
		SupplierID:  r.SupplierID,
		Remark:      r.Remark,
		Reason:      r.Reason,
		ProjectName: r.ProjectName,
		KeepRows:    r.KeepRows,
		FloorIsOne:  r.FloorIsOne,
	}
}

// StageRequest adds a product to the staging area by code.
type StageRequest struct {
	Code string `json:"code" binding:"required"`
}

// AdjustQuantityRequest changes a staged quantity by whole steps.
type AdjustQuantityRequest struct {
	Key   string `json:"key" binding:"required"`
	Delta int    `json:"delta" binding:"required"`
}

// SetQuantityRequest replaces a staged quantity with typed text.
type SetQuantityRequest struct {
	Key  string `json:"key" binding:"required"`
	Text string `json:"text"`
}

// KeyRequest addresses one staged row.
type KeyRequest struct {
	Key string `json:"key" binding:"required"`
}

// StagedItemResponse is one staging row plus its transient flags.
type StagedItemResponse struct {
	staging.Item
	Saving bool `json:"saving,omitempty"`
}

// StagedItems builds the response list with per-row saving flags.
func StagedItems(area *staging.Area) []StagedItemResponse {
	items := area.Items()
	out := make([]StagedItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, StagedItemResponse{Item: *item, Saving: area.Saving(item.Key)})
	}
	return out
}

// CommitResponse returns the persisted record and the refreshed rows.
type CommitResponse struct {
	Record *movement.Record     `json:"record"`
	Items  []StagedItemResponse `json:"items"`
}
