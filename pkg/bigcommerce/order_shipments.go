package bigcommerce

import "context"

type OrderShipmentItem struct {
	OrderProductID int64 `json:"order_product_id" validate:"gt=0"`
	ProductID      int64 `json:"product_id,omitempty"`
	Quantity       int   `json:"quantity" validate:"gt=0"`
}

type OrderShipmentCreate struct {
	OrderAddressID   int64               `json:"order_address_id" validate:"gt=0"`
	TrackingNumber   string              `json:"tracking_number,omitempty"`
	ShippingMethod   string              `json:"shipping_method,omitempty"`
	ShippingProvider string              `json:"shipping_provider,omitempty"`
	TrackingCarrier  string              `json:"tracking_carrier,omitempty"`
	Comments         string              `json:"comments,omitempty"`
	Items            []OrderShipmentItem `json:"items" validate:"required,min=1,dive"`
}

type OrderShipment struct {
	ID               int64               `json:"id"`
	OrderID          int64               `json:"order_id"`
	CustomerID       int64               `json:"customer_id"`
	OrderAddressID   int64               `json:"order_address_id"`
	DateCreated      string              `json:"date_created"`
	TrackingNumber   string              `json:"tracking_number"`
	ShippingMethod   string              `json:"shipping_method"`
	ShippingProvider string              `json:"shipping_provider"`
	TrackingCarrier  string              `json:"tracking_carrier"`
	TrackingLink     string              `json:"tracking_link"`
	Comments         string              `json:"comments"`
	Items            []OrderShipmentItem `json:"items"`
}

type OrderShippingAddress struct {
	ID      int64 `json:"id"`
	OrderID int64 `json:"order_id"`
	Address
	ShippingMethod   string `json:"shipping_method"`
	ShippingZoneName string `json:"shipping_zone_name"`
	BaseCost         Amount `json:"base_cost"`
	CostExTax        Amount `json:"cost_ex_tax"`
	CostIncTax       Amount `json:"cost_inc_tax"`
	ItemsTotal       int    `json:"items_total"`
	ItemsShipped     int    `json:"items_shipped"`
}

func (c Client) CreateOrderShipment(ctx context.Context, orderID int64, shipment OrderShipmentCreate) (Result[OrderShipment], error) {
	if err := validatePayload("create order shipment", shipment); err != nil {
		return Result[OrderShipment]{}, err
	}
	return Post[OrderShipment](ctx, c, OrderShipmentsEndpoint(orderID), Filter{}, shipment)
}

// GetOrderShippingAddresses returns the order's shipping destinations with their shipping method.
func (c Client) GetOrderShippingAddresses(ctx context.Context, orderID int64) (Result[[]OrderShippingAddress], error) {
	return Get[[]OrderShippingAddress](ctx, c, OrderShippingAddressesEndpoint(orderID), Filter{})
}
