package bigcommerce

import (
	"context"
	"errors"
	"net/http"
)

// DefaultCartInclude is added to cart calls whose filter has no include parameter.
const DefaultCartInclude = "line_items.physical_items.options,shipping_address,shipping_lines"

var ErrMissingCartID = errors.New("missing cart id")

type Currency struct {
	Code string `json:"code,omitempty"`
}

// CartOptionSelection picks a product option. OptionValue is a value id for
// multiple choice options or free text for text options.
type CartOptionSelection struct {
	OptionID    int64 `json:"option_id" validate:"gt=0"`
	OptionValue any   `json:"option_value" validate:"required"`
}

type CartLineItem struct {
	ProductID        int64                 `json:"product_id" validate:"gt=0"`
	VariantID        int64                 `json:"variant_id,omitempty" validate:"gte=0"`
	Quantity         int                   `json:"quantity" validate:"gt=0"`
	ListPrice        *Amount               `json:"list_price,omitempty"`
	OptionSelections []CartOptionSelection `json:"option_selections,omitempty" validate:"dive"`
}

type CartCreate struct {
	CustomerID int64          `json:"customer_id,omitempty" validate:"gte=0"`
	LineItems  []CartLineItem `json:"line_items" validate:"required,min=1,dive"`
	ChannelID  int64          `json:"channel_id,omitempty" validate:"gte=0"`
	Currency   *Currency      `json:"currency,omitempty"`
	Locale     string         `json:"locale,omitempty"`
}

type CartItemsAdd struct {
	LineItems []CartLineItem `json:"line_items" validate:"required,min=1,dive"`
}

type CartLineItemUpdate struct {
	LineItem CartLineItem `json:"line_item" validate:"required"`
}

type CartCustomerUpdate struct {
	CustomerID int64 `json:"customer_id" validate:"gte=0"`
}

type Cart struct {
	ID             string        `json:"id"`
	ParentID       string        `json:"parent_id,omitempty"`
	CustomerID     int64         `json:"customer_id"`
	ChannelID      int64         `json:"channel_id"`
	Email          string        `json:"email"`
	Currency       Currency      `json:"currency"`
	TaxIncluded    bool          `json:"tax_included"`
	BaseAmount     Amount        `json:"base_amount"`
	DiscountAmount Amount        `json:"discount_amount"`
	CartAmount     Amount        `json:"cart_amount"`
	LineItems      CartLineItems `json:"line_items"`
	Locale         string        `json:"locale,omitempty"`
	CreatedTime    string        `json:"created_time,omitempty"`
	UpdatedTime    string        `json:"updated_time,omitempty"`
}

type CartLineItems struct {
	PhysicalItems []CartLine       `json:"physical_items"`
	DigitalItems  []CartLine       `json:"digital_items"`
	CustomItems   []CartCustomItem `json:"custom_items"`
}

type CartLine struct {
	ID                string           `json:"id"`
	VariantID         int64            `json:"variant_id"`
	ProductID         int64            `json:"product_id"`
	SKU               string           `json:"sku"`
	Name              string           `json:"name"`
	URL               string           `json:"url"`
	Quantity          int              `json:"quantity"`
	IsTaxable         bool             `json:"is_taxable"`
	ImageURL          string           `json:"image_url"`
	DiscountAmount    Amount           `json:"discount_amount"`
	CouponAmount      Amount           `json:"coupon_amount"`
	ListPrice         Amount           `json:"list_price"`
	SalePrice         Amount           `json:"sale_price"`
	ExtendedListPrice Amount           `json:"extended_list_price"`
	ExtendedSalePrice Amount           `json:"extended_sale_price"`
	IsRequireShipping bool             `json:"is_require_shipping"`
	Options           []CartLineOption `json:"options"`
}

type CartLineOption struct {
	Name    string `json:"name"`
	NameID  int64  `json:"nameId"`
	Value   string `json:"value"`
	ValueID int64  `json:"valueId"`
}

type CartCustomItem struct {
	ID        string `json:"id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	ListPrice Amount `json:"list_price"`
}

type CartRedirectQuery struct {
	QueryParams *CartRedirectParams `json:"query_params,omitempty"`
}

type CartRedirectParams struct {
	Key1 string `json:"key_1,omitempty"`
	Key2 string `json:"key_2,omitempty"`
}

type CartRedirectURLs struct {
	CartURL             string `json:"cart_url"`
	CheckoutURL         string `json:"checkout_url"`
	EmbeddedCheckoutURL string `json:"embedded_checkout_url"`
}

func cartFilter(f Filter) Filter {
	return f.WithDefault("include", DefaultCartInclude)
}

func (c Client) CreateCart(ctx context.Context, cart CartCreate, f Filter) (Result[Cart], error) {
	if err := validatePayload("create cart", cart); err != nil {
		return Result[Cart]{}, err
	}
	return Post[Cart](ctx, c, CartsEndpoint(), cartFilter(f), cart)
}

func (c Client) GetCart(ctx context.Context, cartID string, f Filter) (Result[Cart], error) {
	if cartID == "" {
		return Result[Cart]{}, ErrMissingCartID
	}
	return Get[Cart](ctx, c, CartEndpoint(cartID), cartFilter(f))
}

// AddCartLineItems adds lines. Identical lines are not merged.
func (c Client) AddCartLineItems(ctx context.Context, cartID string, items CartItemsAdd, f Filter) (Result[Cart], error) {
	if cartID == "" {
		return Result[Cart]{}, ErrMissingCartID
	}
	if err := validatePayload("add cart line items", items); err != nil {
		return Result[Cart]{}, err
	}
	return Post[Cart](ctx, c, CartItemsEndpoint(cartID), cartFilter(f), items)
}

func (c Client) UpdateCartLineItem(ctx context.Context, cartID, lineID string, item CartLineItemUpdate, f Filter) (Result[Cart], error) {
	if cartID == "" || lineID == "" {
		return Result[Cart]{}, ErrMissingCartID
	}
	if err := validatePayload("update cart line item", item); err != nil {
		return Result[Cart]{}, err
	}
	return Put[Cart](ctx, c, CartItemEndpoint(cartID, lineID), cartFilter(f), item)
}

// DeleteCartLineItem removes one line.
//
// The API answers 204 when the last line is removed (the cart is gone), 200
// with the updated cart otherwise, and on some stores 200 without a cart.
// The last case is resolved by fetching the cart with the same filter.
func (c Client) DeleteCartLineItem(ctx context.Context, cartID, lineID string, f Filter) (Result[Cart], error) {
	if cartID == "" || lineID == "" {
		return Result[Cart]{}, ErrMissingCartID
	}
	f = cartFilter(f)

	deleted, err := Delete[Cart](ctx, c, CartItemEndpoint(cartID, lineID), f)
	if err != nil {
		return deleted, err
	}
	if !deleted.Success() || deleted.StatusCode == http.StatusNoContent || deleted.HasData() {
		return deleted, nil
	}

	refetched, err := Get[Cart](ctx, c, CartEndpoint(cartID), f)
	if err != nil {
		return Result[Cart]{}, err
	}
	if refetched.Success() {
		return refetched, nil
	}
	return deleted, nil
}

func (c Client) DeleteCart(ctx context.Context, cartID string) (Result[NoContent], error) {
	if cartID == "" {
		return Result[NoContent]{}, ErrMissingCartID
	}
	return Delete[NoContent](ctx, c, CartEndpoint(cartID), Filter{})
}

// UpdateCartCustomer assigns the cart to a customer (0 makes it a guest cart).
func (c Client) UpdateCartCustomer(ctx context.Context, cartID string, upd CartCustomerUpdate, f Filter) (Result[Cart], error) {
	if cartID == "" {
		return Result[Cart]{}, ErrMissingCartID
	}
	if err := validatePayload("update cart customer", upd); err != nil {
		return Result[Cart]{}, err
	}
	return Put[Cart](ctx, c, CartEndpoint(cartID), cartFilter(f), upd)
}

func (c Client) CreateCartRedirectURLs(ctx context.Context, cartID string, q CartRedirectQuery) (Result[CartRedirectURLs], error) {
	if cartID == "" {
		return Result[CartRedirectURLs]{}, ErrMissingCartID
	}
	return Post[CartRedirectURLs](ctx, c, CartRedirectURLsEndpoint(cartID), Filter{}, q)
}
