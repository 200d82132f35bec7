package fakestore

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const optionsInclude = "line_items.physical_items.options"

type cart struct {
	id         string
	customerID int64
	channelID  int64
	currency   string
	lines      []*cartLine
	created    time.Time
	updated    time.Time
}

type cartLine struct {
	id        string
	productID int64
	variantID int64
	quantity  int
	listPrice decimal.Decimal
	options   []lineOption
}

type lineOption struct {
	OptionID    int64 `json:"option_id"`
	OptionValue any   `json:"option_value"`
}

type lineReq struct {
	ProductID        int64        `json:"product_id"`
	VariantID        int64        `json:"variant_id"`
	Quantity         int          `json:"quantity"`
	ListPrice        *json.Number `json:"list_price"`
	OptionSelections []lineOption `json:"option_selections"`
}

type cartCreateReq struct {
	CustomerID int64 `json:"customer_id"`
	ChannelID  int64 `json:"channel_id"`
	Currency   *struct {
		Code string `json:"code"`
	} `json:"currency"`
	LineItems []lineReq `json:"line_items"`
}

func (s *Store) createCart(w http.ResponseWriter, r *http.Request) {
	var req cartCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeV3Error(w, http.StatusBadRequest, "Input is invalid")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, title := s.buildLines(req.LineItems)
	if title != "" {
		writeV3Error(w, http.StatusUnprocessableEntity, title)
		return
	}
	now := s.now().UTC()
	c := &cart{
		id:         uuid.NewString(),
		customerID: req.CustomerID,
		channelID:  req.ChannelID,
		currency:   "USD",
		lines:      lines,
		created:    now,
		updated:    now,
	}
	if c.channelID == 0 {
		c.channelID = 1
	}
	if req.Currency != nil && req.Currency.Code != "" {
		c.currency = req.Currency.Code
	}
	s.carts[c.id] = c
	writeData(w, http.StatusCreated, s.renderCart(c, csvSet(r.URL.Query().Get("include"))), nil)
}

func (s *Store) getCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[chi.URLParam(r, "cartID")]
	if !ok {
		writeV3Error(w, http.StatusNotFound, "Cart not found")
		return
	}
	writeData(w, http.StatusOK, s.renderCart(c, csvSet(r.URL.Query().Get("include"))), nil)
}

func (s *Store) addCartItems(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LineItems []lineReq `json:"line_items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeV3Error(w, http.StatusBadRequest, "Input is invalid")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[chi.URLParam(r, "cartID")]
	if !ok {
		writeV3Error(w, http.StatusNotFound, "Cart not found")
		return
	}
	lines, title := s.buildLines(req.LineItems)
	if title != "" {
		writeV3Error(w, http.StatusUnprocessableEntity, title)
		return
	}
	c.lines = append(c.lines, lines...)
	c.updated = s.now().UTC()
	writeData(w, http.StatusCreated, s.renderCart(c, csvSet(r.URL.Query().Get("include"))), nil)
}

func (s *Store) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LineItem lineReq `json:"line_item"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeV3Error(w, http.StatusBadRequest, "Input is invalid")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[chi.URLParam(r, "cartID")]
	if !ok {
		writeV3Error(w, http.StatusNotFound, "Cart not found")
		return
	}
	idx := c.lineIndex(chi.URLParam(r, "lineID"))
	if idx < 0 {
		writeV3Error(w, http.StatusNotFound, "Line item not found")
		return
	}
	lines, title := s.buildLines([]lineReq{req.LineItem})
	if title != "" {
		writeV3Error(w, http.StatusUnprocessableEntity, title)
		return
	}
	lines[0].id = c.lines[idx].id
	c.lines[idx] = lines[0]
	c.updated = s.now().UTC()
	writeData(w, http.StatusOK, s.renderCart(c, csvSet(r.URL.Query().Get("include"))), nil)
}

// deleteCartItem answers 204 and drops the cart when its last line goes.
func (s *Store) deleteCartItem(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[chi.URLParam(r, "cartID")]
	if !ok {
		writeV3Error(w, http.StatusNotFound, "Cart not found")
		return
	}
	idx := c.lineIndex(chi.URLParam(r, "lineID"))
	if idx < 0 {
		writeV3Error(w, http.StatusNotFound, "Line item not found")
		return
	}
	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	if len(c.lines) == 0 {
		delete(s.carts, c.id)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	c.updated = s.now().UTC()
	if s.DeleteLineEmptyBody {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeData(w, http.StatusOK, s.renderCart(c, csvSet(r.URL.Query().Get("include"))), nil)
}

func (s *Store) deleteCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "cartID")
	if _, ok := s.carts[id]; !ok {
		writeV3Error(w, http.StatusNotFound, "Cart not found")
		return
	}
	delete(s.carts, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Store) updateCartCustomer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID *int64 `json:"customer_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CustomerID == nil {
		writeV3Error(w, http.StatusUnprocessableEntity, "The field 'customer_id' is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[chi.URLParam(r, "cartID")]
	if !ok {
		writeV3Error(w, http.StatusNotFound, "Cart not found")
		return
	}
	c.customerID = *req.CustomerID
	c.updated = s.now().UTC()
	writeData(w, http.StatusOK, s.renderCart(c, csvSet(r.URL.Query().Get("include"))), nil)
}

func (s *Store) createRedirectURLs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QueryParams map[string]string `json:"query_params"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[chi.URLParam(r, "cartID")]
	if !ok {
		writeV3Error(w, http.StatusNotFound, "Cart not found")
		return
	}

	extra := url.Values{}
	for k, v := range req.QueryParams {
		extra.Set(k, v)
	}
	suffix := ""
	if len(extra) > 0 {
		suffix = "&" + extra.Encode()
	}
	base := fmt.Sprintf("https://store-%s.mybigcommerce.com", s.Hash)
	token := uuid.NewString()
	writeData(w, http.StatusCreated, map[string]string{
		"cart_url":              fmt.Sprintf("%s/cart.php?action=load&id=%s&token=%s%s", base, c.id, token, suffix),
		"checkout_url":          fmt.Sprintf("%s/cart.php?action=loadInCheckout&id=%s&token=%s%s", base, c.id, token, suffix),
		"embedded_checkout_url": fmt.Sprintf("%s/cart.php?embedded=1&action=loadInCheckout&id=%s&token=%s%s", base, c.id, token, suffix),
	}, nil)
}

// buildLines converts requested lines. A non-empty title is a 422 reason.
func (s *Store) buildLines(reqs []lineReq) ([]*cartLine, string) {
	if len(reqs) == 0 {
		return nil, "Missing line items"
	}
	out := make([]*cartLine, 0, len(reqs))
	for _, lr := range reqs {
		if lr.Quantity <= 0 {
			return nil, "Quantity must be greater than zero"
		}
		p, ok := s.products[lr.ProductID]
		if !ok {
			return nil, fmt.Sprintf("Product %d not found", lr.ProductID)
		}
		price := p.Price
		if lr.VariantID != 0 {
			v, ok := findVariant(p, lr.VariantID)
			if !ok {
				return nil, fmt.Sprintf("Variant %d not found", lr.VariantID)
			}
			price = v.Price
		}
		if custom, set, err := parseAmount(lr.ListPrice); err != nil {
			return nil, "The field 'list_price' is invalid"
		} else if set {
			price = custom
		}
		out = append(out, &cartLine{
			id:        uuid.NewString(),
			productID: lr.ProductID,
			variantID: lr.VariantID,
			quantity:  lr.Quantity,
			listPrice: price,
			options:   lr.OptionSelections,
		})
	}
	return out, ""
}

func findVariant(p *Product, id int64) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

func (c *cart) lineIndex(id string) int {
	for i, l := range c.lines {
		if l.id == id {
			return i
		}
	}
	return -1
}

func (s *Store) renderCart(c *cart, include map[string]bool) map[string]any {
	total := decimal.Zero
	physical := make([]map[string]any, 0, len(c.lines))
	for _, l := range c.lines {
		extended := l.listPrice.Mul(decimal.NewFromInt(int64(l.quantity)))
		total = total.Add(extended)

		name, sku := "", ""
		if p, ok := s.products[l.productID]; ok {
			name, sku = p.Name, p.SKU
		}
		line := map[string]any{
			"id":                  l.id,
			"product_id":          l.productID,
			"variant_id":          l.variantID,
			"sku":                 sku,
			"name":                name,
			"url":                 fmt.Sprintf("https://store-%s.mybigcommerce.com/products/%d", s.Hash, l.productID),
			"quantity":            l.quantity,
			"is_taxable":          true,
			"discount_amount":     v3Amount(decimal.Zero),
			"coupon_amount":       v3Amount(decimal.Zero),
			"list_price":          v3Amount(l.listPrice),
			"sale_price":          v3Amount(l.listPrice),
			"extended_list_price": v3Amount(extended),
			"extended_sale_price": v3Amount(extended),
			"is_require_shipping": true,
		}
		if include[optionsInclude] {
			opts := make([]map[string]any, 0, len(l.options))
			for _, o := range l.options {
				opts = append(opts, map[string]any{
					"name":    fmt.Sprintf("Option %d", o.OptionID),
					"nameId":  o.OptionID,
					"value":   fmt.Sprint(o.OptionValue),
					"valueId": optionValueID(o.OptionValue),
				})
			}
			line["options"] = opts
		}
		physical = append(physical, line)
	}

	return map[string]any{
		"id":              c.id,
		"customer_id":     c.customerID,
		"channel_id":      c.channelID,
		"email":           "",
		"currency":        map[string]string{"code": c.currency},
		"tax_included":    false,
		"base_amount":     v3Amount(total),
		"discount_amount": v3Amount(decimal.Zero),
		"cart_amount":     v3Amount(total),
		"line_items": map[string]any{
			"physical_items": physical,
			"digital_items":  []any{},
			"custom_items":   []any{},
		},
		"created_time": c.created.Format(time.RFC3339),
		"updated_time": c.updated.Format(time.RFC3339),
	}
}

// optionValueID is the value id of a multiple choice selection, 0 for text.
func optionValueID(v any) int64 {
	if f, ok := v.(float64); ok {
		return int64(f)
	}
	return 0
}
