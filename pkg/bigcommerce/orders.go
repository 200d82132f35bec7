package bigcommerce

import (
	"context"
	"encoding/json"
	"strconv"
	"time"
)

type OrderStatus int

const (
	OrderStatusIncomplete                 OrderStatus = 0
	OrderStatusPending                    OrderStatus = 1
	OrderStatusShipped                    OrderStatus = 2
	OrderStatusPartiallyShipped           OrderStatus = 3
	OrderStatusRefunded                   OrderStatus = 4
	OrderStatusCancelled                  OrderStatus = 5
	OrderStatusDeclined                   OrderStatus = 6
	OrderStatusAwaitingPayment            OrderStatus = 7
	OrderStatusAwaitingPickup             OrderStatus = 8
	OrderStatusAwaitingShipment           OrderStatus = 9
	OrderStatusCompleted                  OrderStatus = 10
	OrderStatusAwaitingFulfillment        OrderStatus = 11
	OrderStatusManualVerificationRequired OrderStatus = 12
	OrderStatusDisputed                   OrderStatus = 13
	OrderStatusPartiallyRefunded          OrderStatus = 14
)

var orderStatusNames = map[OrderStatus]string{
	OrderStatusIncomplete:                 "Incomplete",
	OrderStatusPending:                    "Pending",
	OrderStatusShipped:                    "Shipped",
	OrderStatusPartiallyShipped:           "Partially Shipped",
	OrderStatusRefunded:                   "Refunded",
	OrderStatusCancelled:                  "Cancelled",
	OrderStatusDeclined:                   "Declined",
	OrderStatusAwaitingPayment:            "Awaiting Payment",
	OrderStatusAwaitingPickup:             "Awaiting Pickup",
	OrderStatusAwaitingShipment:           "Awaiting Shipment",
	OrderStatusCompleted:                  "Completed",
	OrderStatusAwaitingFulfillment:        "Awaiting Fulfillment",
	OrderStatusManualVerificationRequired: "Manual Verification Required",
	OrderStatusDisputed:                   "Disputed",
	OrderStatusPartiallyRefunded:          "Partially Refunded",
}

func (s OrderStatus) String() string {
	if name, ok := orderStatusNames[s]; ok {
		return name
	}
	return "Unknown(" + strconv.Itoa(int(s)) + ")"
}

// StatusPtr is a helper for optional status fields.
func StatusPtr(s OrderStatus) *OrderStatus { return &s }

type Address struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Company     string `json:"company,omitempty"`
	Street1     string `json:"street_1,omitempty"`
	Street2     string `json:"street_2,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Zip         string `json:"zip,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryISO2 string `json:"country_iso2,omitempty" validate:"omitempty,len=2"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
}

type ResourceLink struct {
	URL      string `json:"url"`
	Resource string `json:"resource"`
}

type Order struct {
	ID              int64        `json:"id"`
	CustomerID      int64        `json:"customer_id"`
	ChannelID       int64        `json:"channel_id"`
	DateCreated     string       `json:"date_created"`
	DateModified    string       `json:"date_modified"`
	StatusID        OrderStatus  `json:"status_id"`
	Status          string       `json:"status"`
	SubtotalExTax   Amount       `json:"subtotal_ex_tax"`
	SubtotalIncTax  Amount       `json:"subtotal_inc_tax"`
	TotalExTax      Amount       `json:"total_ex_tax"`
	TotalIncTax     Amount       `json:"total_inc_tax"`
	ItemsTotal      int          `json:"items_total"`
	ItemsShipped    int          `json:"items_shipped"`
	PaymentMethod   string       `json:"payment_method"`
	CurrencyCode    string       `json:"currency_code"`
	StaffNotes      string       `json:"staff_notes"`
	CustomerMessage string       `json:"customer_message"`
	ExternalSource  string       `json:"external_source"`
	ExternalID      string       `json:"external_id"`
	ExternalOrderID string       `json:"external_order_id"`
	BillingAddress  Address      `json:"billing_address"`
	Products        ResourceLink `json:"products"`
}

// CreatedAt parses DateCreated, which v2 renders as RFC 1123 with a numeric zone.
func (o Order) CreatedAt() (time.Time, error) {
	return time.Parse(time.RFC1123Z, o.DateCreated)
}

// OrderWithConsignments is an order fetched with include=consignments.
type OrderWithConsignments struct {
	Order
	Consignments []OrderConsignment `json:"consignments"`
}

type OrderConsignment struct {
	Shipping  []ShippingConsignment `json:"shipping"`
	Pickups   []json.RawMessage     `json:"pickups"`
	Downloads []json.RawMessage     `json:"downloads"`
}

type ShippingConsignment struct {
	ID int64 `json:"id"`
	Address
	ShippingMethod string      `json:"shipping_method"`
	BaseCost       Amount      `json:"base_cost"`
	ItemsTotal     int         `json:"items_total"`
	ItemsShipped   int         `json:"items_shipped"`
	LineItems      []OrderLine `json:"line_items"`
}

type OrderLine struct {
	ID              int64  `json:"id"`
	OrderID         int64  `json:"order_id"`
	ProductID       int64  `json:"product_id"`
	VariantID       int64  `json:"variant_id"`
	Name            string `json:"name"`
	SKU             string `json:"sku"`
	Quantity        int    `json:"quantity"`
	QuantityShipped int    `json:"quantity_shipped"`
	BasePrice       Amount `json:"base_price"`
	PriceExTax      Amount `json:"price_ex_tax"`
	PriceIncTax     Amount `json:"price_inc_tax"`
	TotalExTax      Amount `json:"total_ex_tax"`
	TotalIncTax     Amount `json:"total_inc_tax"`
}

type OrderProductOption struct {
	ID    int64  `json:"id" validate:"gt=0"`
	Value string `json:"value"`
}

// OrderProductCreate is a catalog product line. Prices override the catalog price when set.
type OrderProductCreate struct {
	ProductID      int64                `json:"product_id" validate:"gt=0"`
	Quantity       int                  `json:"quantity" validate:"gt=0"`
	ProductOptions []OrderProductOption `json:"product_options,omitempty" validate:"dive"`
	PriceIncTax    *Amount              `json:"price_inc_tax,omitempty"`
	PriceExTax     *Amount              `json:"price_ex_tax,omitempty"`
}

type OrderCreate struct {
	BillingAddress  Address              `json:"billing_address" validate:"required"`
	Products        []OrderProductCreate `json:"products" validate:"required,min=1,dive"`
	CustomerID      int64                `json:"customer_id,omitempty" validate:"gte=0"`
	ChannelID       int64                `json:"channel_id,omitempty" validate:"gte=0"`
	StatusID        *OrderStatus         `json:"status_id,omitempty"`
	StaffNotes      string               `json:"staff_notes,omitempty"`
	CustomerMessage string               `json:"customer_message,omitempty"`
	ExternalSource  string               `json:"external_source,omitempty"`
	ExternalOrderID string               `json:"external_order_id,omitempty"`
}

// OrderUpdate is a partial update; unset fields are left untouched.
type OrderUpdate struct {
	StatusID        *OrderStatus `json:"status_id,omitempty"`
	StaffNotes      string       `json:"staff_notes,omitempty"`
	CustomerMessage string       `json:"customer_message,omitempty"`
	ExternalOrderID string       `json:"external_order_id,omitempty"`
}

type OrderSort string

const (
	OrderSortID           OrderSort = "id"
	OrderSortCustomerID   OrderSort = "customer_id"
	OrderSortDateCreated  OrderSort = "date_created"
	OrderSortDateModified OrderSort = "date_modified"
	OrderSortStatusID     OrderSort = "status_id"
	OrderSortChannelID    OrderSort = "channel_id"
	OrderSortExternalID   OrderSort = "external_id"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// OrderSearch holds the query of GET v2/orders. Zero fields are omitted.
type OrderSearch struct {
	MinDateCreated time.Time
	MaxDateCreated time.Time
	StatusID       *OrderStatus
	CustomerID     int64
	Sort           OrderSort
	Direction      SortDirection
	Limit          int
	Page           int
}

func (s OrderSearch) Filter() Filter {
	f := NewFilter()
	if !s.MinDateCreated.IsZero() {
		f = f.Add("min_date_created", s.MinDateCreated.UTC().Format(time.RFC3339))
	}
	if !s.MaxDateCreated.IsZero() {
		f = f.Add("max_date_created", s.MaxDateCreated.UTC().Format(time.RFC3339))
	}
	if s.StatusID != nil {
		f = f.Add("status_id", strconv.Itoa(int(*s.StatusID)))
	}
	if s.CustomerID > 0 {
		f = f.Add("customer_id", itoa(s.CustomerID))
	}
	if s.Sort != "" {
		sort := string(s.Sort)
		if s.Direction != "" {
			sort += ":" + string(s.Direction)
		}
		f = f.Add("sort", sort)
	}
	if s.Limit > 0 {
		f = f.Add("limit", strconv.Itoa(s.Limit))
	}
	if s.Page > 0 {
		f = f.Add("page", strconv.Itoa(s.Page))
	}
	return f
}

// Next returns the same search advanced past p.
func (s OrderSearch) Next(p Pagination) OrderSearch {
	s.Page = p.CurrentPage + 1
	if s.Limit == 0 {
		s.Limit = p.PerPage
	}
	return s
}

func (c Client) CreateOrder(ctx context.Context, order OrderCreate) (Result[Order], error) {
	if err := validatePayload("create order", order); err != nil {
		return Result[Order]{}, err
	}
	return Post[Order](ctx, c, OrdersEndpoint(), Filter{}, order)
}

func (c Client) UpdateOrder(ctx context.Context, orderID int64, upd OrderUpdate) (Result[Order], error) {
	return Put[Order](ctx, c, OrderEndpoint(orderID), Filter{}, upd)
}

// CancelOrder moves the order to Cancelled. Orders are never deleted.
func (c Client) CancelOrder(ctx context.Context, orderID int64) (Result[Order], error) {
	return c.UpdateOrder(ctx, orderID, OrderUpdate{StatusID: StatusPtr(OrderStatusCancelled)})
}

func (c Client) GetOrder(ctx context.Context, orderID int64) (Result[Order], error) {
	return Get[Order](ctx, c, OrderEndpoint(orderID), Filter{})
}

func (c Client) GetOrderWithConsignments(ctx context.Context, orderID int64) (Result[OrderWithConsignments], error) {
	f := NewFilter().Add("include", "consignments,consignments.line_items")
	return Get[OrderWithConsignments](ctx, c, OrderEndpoint(orderID), f)
}

// OrderCount is the answer of GET v2/orders/count.
type OrderCount struct {
	Count    int                `json:"count"`
	Statuses []OrderStatusCount `json:"statuses"`
}

type OrderStatusCount struct {
	ID    OrderStatus `json:"id"`
	Name  string      `json:"name,omitempty"`
	Count int         `json:"count"`
}

// CountOrders counts the orders matching s. Paging and sorting are ignored.
func (c Client) CountOrders(ctx context.Context, s OrderSearch) (Result[OrderCount], error) {
	return Get[OrderCount](ctx, c, OrdersCountEndpoint(), s.Filter().Without("page", "limit", "sort"))
}

// SearchOrders lists orders. v2 lists carry no pagination, so the total comes
// from CountOrders with the same filters. An empty page answers 204, which
// comes back as a successful page without data.
func (c Client) SearchOrders(ctx context.Context, s OrderSearch) (PagedResult[Order], error) {
	f := s.Filter()
	page, err := GetPaged[Order](ctx, c, OrdersEndpoint(), f)
	if err != nil || !page.Success() {
		return page, err
	}
	count, err := c.CountOrders(ctx, s)
	if err != nil {
		return PagedResult[Order]{}, err
	}
	if !count.Success() {
		return PagedResult[Order]{Result: Result[[]Order]{
			Outcome:    OutcomeFailure,
			StatusCode: count.StatusCode,
			Err:        count.Err,
			Body:       count.Body,
		}}, nil
	}
	page.Pagination = paginationFromTotal(f, len(page.Data), count.Data.Count)
	return page, nil
}
