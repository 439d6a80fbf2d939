package remote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"warenbuchung/internal/core/apperror"
	"warenbuchung/internal/domain/gate"
	"warenbuchung/internal/domain/movement"
)

// Compile-time check that Client satisfies the gate's remote side.
var _ gate.Remote = (*Client)(nil)

// Goods-in and goods-out are separate collections with separate wire
// shapes. The in collection carries the capture type as erfassungstyp,
// the out collection as attribut.
type goodsInDTO struct {
	ID            int64      `json:"id,omitempty"`
	ProductID     int64      `json:"productId"`
	ProductName   string     `json:"productName,omitempty"`
	ProductSKU    string     `json:"productSku,omitempty"`
	Quantity      float64    `json:"quantity"`
	UnitPrice     float64    `json:"unitPrice"`
	TotalPrice    float64    `json:"totalPrice,omitempty"`
	Erfassungstyp string     `json:"erfassungstyp,omitempty"`
	Referenz      string     `json:"referenz,omitempty"`
	Location      string     `json:"location,omitempty"`
	Supplier      string     `json:"supplier,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

type goodsOutDTO struct {
	ID          int64      `json:"id,omitempty"`
	ProductID   int64      `json:"productId"`
	ProductName string     `json:"productName,omitempty"`
	Quantity    float64    `json:"quantity"`
	UnitPrice   float64    `json:"unitPrice"`
	TotalPrice  float64    `json:"totalPrice,omitempty"`
	Customer    string     `json:"customer,omitempty"`
	OrderNumber string     `json:"orderNumber,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Attribut    string     `json:"attribut,omitempty"`
	ProjectName string     `json:"projectName,omitempty"`
	Begruendung string     `json:"begruendung,omitempty"`
	CreatedAt   time.Time  `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

func collectionPath(direction movement.Direction) string {
	if direction == movement.DirectionOut {
		return "/warenausgaenge"
	}
	return "/wareneingaenge"
}

// CreateMovement posts a record to its direction's collection and
// returns the confirmed record carrying the assigned server id.
func (c *Client) CreateMovement(ctx context.Context, rec *movement.Record) (*movement.Record, error) {
	if rec.ProductID == nil {
		return nil, apperror.NewValidation("movement has no resolved product")
	}

	if rec.Direction == movement.DirectionOut {
		env := movement.ParseEnvelope(rec.Notes)
		req := goodsOutDTO{
			ProductID:   *rec.ProductID,
			Quantity:    rec.Quantity.InexactFloat64(),
			UnitPrice:   rec.UnitPrice.InexactFloat64(),
			Customer:    rec.Supplier,
			OrderNumber: rec.Reference,
			Notes:       rec.Notes,
			Attribut:    string(rec.CaptureType),
			ProjectName: env.Projekt,
			Begruendung: env.Grund,
		}
		var resp goodsOutDTO
		if err := c.do(ctx, http.MethodPost, "/warenausgaenge", req, &resp, ""); err != nil {
			return nil, err
		}
		return goodsOutRecord(&resp), nil
	}

	req := goodsInDTO{
		ProductID:     *rec.ProductID,
		Quantity:      rec.Quantity.InexactFloat64(),
		UnitPrice:     rec.UnitPrice.InexactFloat64(),
		Erfassungstyp: string(rec.CaptureType),
		Referenz:      rec.Reference,
		Location:      rec.Location,
		Supplier:      rec.Supplier,
		Notes:         rec.Notes,
	}
	var resp goodsInDTO
	if err := c.do(ctx, http.MethodPost, "/wareneingaenge", req, &resp, ""); err != nil {
		return nil, err
	}
	return goodsInRecord(&resp), nil
}

// ListMovements fetches a direction's collection. The API serves the
// whole collection; capture-type narrowing happens here and reference
// narrowing stays with the caller, which also reads legacy notes.
func (c *Client) ListMovements(ctx context.Context, q gate.ListQuery) ([]movement.Record, error) {
	if q.Direction == movement.DirectionOut {
		var dtos []goodsOutDTO
		if err := c.do(ctx, http.MethodGet, "/warenausgaenge", nil, &dtos, ""); err != nil {
			return nil, err
		}
		records := make([]movement.Record, 0, len(dtos))
		for i := range dtos {
			if q.CaptureType != "" && dtos[i].Attribut != string(q.CaptureType) {
				continue
			}
			records = append(records, *goodsOutRecord(&dtos[i]))
		}
		return records, nil
	}

	var dtos []goodsInDTO
	if err := c.do(ctx, http.MethodGet, "/wareneingaenge", nil, &dtos, ""); err != nil {
		return nil, err
	}
	records := make([]movement.Record, 0, len(dtos))
	for i := range dtos {
		if q.CaptureType != "" && dtos[i].Erfassungstyp != string(q.CaptureType) {
			continue
		}
		records = append(records, *goodsInRecord(&dtos[i]))
	}
	return records, nil
}

// DeleteMovement removes a persisted record from its collection.
func (c *Client) DeleteMovement(ctx context.Context, direction movement.Direction, serverID int64) error {
	path := fmt.Sprintf("%s/%d", collectionPath(direction), serverID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, "")
}

func goodsInRecord(dto *goodsInDTO) *movement.Record {
	rec := movement.NewRecord(movement.DirectionIn, movement.CaptureType(dto.Erfassungstyp))
	rec.ServerID = &dto.ID
	productID := dto.ProductID
	rec.ProductID = &productID
	rec.ProductName = dto.ProductName
	rec.SKU = dto.ProductSKU
	rec.Quantity = decimal.NewFromFloat(dto.Quantity)
	rec.UnitPrice = decimal.NewFromFloat(dto.UnitPrice)
	rec.TotalPrice = decimal.NewFromFloat(dto.TotalPrice)
	rec.Reference = dto.Referenz
	rec.Location = dto.Location
	rec.Supplier = dto.Supplier
	rec.Notes = dto.Notes
	applyTimestamps(rec, dto.CreatedAt, dto.UpdatedAt)
	return rec
}

func goodsOutRecord(dto *goodsOutDTO) *movement.Record {
	rec := movement.NewRecord(movement.DirectionOut, movement.CaptureType(dto.Attribut))
	rec.ServerID = &dto.ID
	productID := dto.ProductID
	rec.ProductID = &productID
	rec.ProductName = dto.ProductName
	rec.Quantity = decimal.NewFromFloat(dto.Quantity)
	rec.UnitPrice = decimal.NewFromFloat(dto.UnitPrice)
	rec.TotalPrice = decimal.NewFromFloat(dto.TotalPrice)
	rec.Reference = dto.OrderNumber
	rec.Supplier = dto.Customer
	rec.Notes = dto.Notes
	applyTimestamps(rec, dto.CreatedAt, dto.UpdatedAt)
	return rec
}

func applyTimestamps(rec *movement.Record, createdAt time.Time, updatedAt *time.Time) {
	if !createdAt.IsZero() {
		rec.CreatedAt = createdAt
		rec.UpdatedAt = createdAt
	}
	if updatedAt != nil && !updatedAt.IsZero() {
		rec.UpdatedAt = *updatedAt
	}
}
