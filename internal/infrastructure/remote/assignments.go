package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"warenbuchung/internal/domain/booking"
	"warenbuchung/internal/domain/catalog"
)

// Compile-time check that Client satisfies the booking assignment
// source.
var _ booking.AssignmentSource = (*Client)(nil)

type orderDTO struct {
	ID          int64  `json:"id"`
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status,omitempty"`
	Supplier    string `json:"supplier,omitempty"`
}

type assignmentDTO struct {
	ID              int64   `json:"id"`
	ProductID       int64   `json:"productId"`
	ProductName     string  `json:"productName"`
	ProductSKU      string  `json:"productSku,omitempty"`
	DefaultQuantity float64 `json:"defaultQuantity"`
	Unit            string  `json:"unit,omitempty"`
}

// OrderAssignments returns the expected items of an order. Orders are
// addressed by number, so the order id is looked up first.
func (c *Client) OrderAssignments(ctx context.Context, orderRef string) ([]catalog.Assignment, error) {
	orderRef = strings.TrimSpace(orderRef)
	if orderRef == "" {
		return nil, nil
	}

	var orders []orderDTO
	path := "/orders?orderNumber=" + url.QueryEscape(orderRef)
	if err := c.do(ctx, http.MethodGet, path, nil, &orders, ""); err != nil {
		return nil, err
	}

	var orderID int64
	found := false
	for _, o := range orders {
		if strings.EqualFold(o.OrderNumber, orderRef) {
			orderID = o.ID
			found = true
			break
		}
	}
	if !found {
		return nil, nil
	}

	var dtos []assignmentDTO
	itemsPath := fmt.Sprintf("/orders/%d/items", orderID)
	if err := c.do(ctx, http.MethodGet, itemsPath, nil, &dtos, ""); err != nil {
		return nil, err
	}
	return toAssignments(dtos), nil
}

// ProjectAssignments returns the expected items of a project.
func (c *Client) ProjectAssignments(ctx context.Context, projectKey string) ([]catalog.Assignment, error) {
	projectKey = strings.TrimSpace(projectKey)
	if projectKey == "" {
		return nil, nil
	}

	var dtos []assignmentDTO
	path := "/projects/" + url.PathEscape(projectKey) + "/items"
	if err := c.do(ctx, http.MethodGet, path, nil, &dtos, ""); err != nil {
		return nil, err
	}
	return toAssignments(dtos), nil
}

func toAssignments(dtos []assignmentDTO) []catalog.Assignment {
	assignments := make([]catalog.Assignment, 0, len(dtos))
	for _, dto := range dtos {
		productID := dto.ProductID
		assignments = append(assignments, catalog.Assignment{
			ProductID:       &productID,
			ProductName:     dto.ProductName,
			ProductSKU:      dto.ProductSKU,
			DefaultQuantity: decimal.NewFromFloat(dto.DefaultQuantity),
			Unit:            dto.Unit,
		})
	}
	return assignments
}
