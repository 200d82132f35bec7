package fakestore

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	statusPending          = 1
	statusShipped          = 2
	statusPartiallyShipped = 3
	maxStatusID            = 14
)

type address struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Company     string `json:"company"`
	Street1     string `json:"street_1"`
	Street2     string `json:"street_2"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zip         string `json:"zip"`
	Country     string `json:"country"`
	CountryISO2 string `json:"country_iso2"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

type order struct {
	id              int64
	customerID      int64
	channelID       int64
	statusID        int
	created         time.Time
	modified        time.Time
	staffNotes      string
	customerMessage string
	externalSource  string
	externalOrderID string
	billing         address
	addressID       int64
	products        []*orderProduct
	shipments       []map[string]any
}

type orderProduct struct {
	id        int64
	productID int64
	variantID int64
	name      string
	sku       string
	quantity  int
	shipped   int
	priceEx   decimal.Decimal
	priceInc  decimal.Decimal
}

type orderProductReq struct {
	ProductID      int64 `json:"product_id"`
	Quantity       int   `json:"quantity"`
	ProductOptions []struct {
		ID    int64  `json:"id"`
		Value string `json:"value"`
	} `json:"product_options"`
	PriceIncTax *json.Number `json:"price_inc_tax"`
	PriceExTax  *json.Number `json:"price_ex_tax"`
}

type orderCreateReq struct {
	BillingAddress  address           `json:"billing_address"`
	Products        []orderProductReq `json:"products"`
	CustomerID      int64             `json:"customer_id"`
	ChannelID       int64             `json:"channel_id"`
	StatusID        *int              `json:"status_id"`
	StaffNotes      string            `json:"staff_notes"`
	CustomerMessage string            `json:"customer_message"`
	ExternalSource  string            `json:"external_source"`
	ExternalOrderID string            `json:"external_order_id"`
}

func (s *Store) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orderCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeV2Error(w, http.StatusBadRequest, "The request body is not valid JSON.")
		return
	}
	if len(req.Products) == 0 {
		writeV2Error(w, http.StatusBadRequest, "The field 'products' is invalid.")
		return
	}
	if req.StatusID != nil && (*req.StatusID < 0 || *req.StatusID > maxStatusID) {
		writeV2Error(w, http.StatusBadRequest, "The field 'status_id' is invalid.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	s.nextOrderID++
	o := &order{
		id:              s.nextOrderID,
		customerID:      req.CustomerID,
		channelID:       req.ChannelID,
		statusID:        statusPending,
		created:         now,
		modified:        now,
		staffNotes:      req.StaffNotes,
		customerMessage: req.CustomerMessage,
		externalSource:  req.ExternalSource,
		externalOrderID: req.ExternalOrderID,
		billing:         req.BillingAddress,
		addressID:       s.newID(),
	}
	if o.channelID == 0 {
		o.channelID = 1
	}
	if req.StatusID != nil {
		o.statusID = *req.StatusID
	}
	for _, pr := range req.Products {
		p, ok := s.products[pr.ProductID]
		if !ok || pr.Quantity <= 0 {
			s.nextOrderID--
			writeV2Error(w, http.StatusBadRequest, fmt.Sprintf("The product id %d is invalid.", pr.ProductID))
			return
		}
		ex, exSet, err := parseAmount(pr.PriceExTax)
		if err != nil {
			s.nextOrderID--
			writeV2Error(w, http.StatusBadRequest, "The field 'price_ex_tax' is invalid.")
			return
		}
		inc, incSet, err := parseAmount(pr.PriceIncTax)
		if err != nil {
			s.nextOrderID--
			writeV2Error(w, http.StatusBadRequest, "The field 'price_inc_tax' is invalid.")
			return
		}
		switch {
		case exSet && !incSet:
			inc = ex
		case incSet && !exSet:
			ex = inc
		case !exSet && !incSet:
			ex, inc = p.Price, p.Price
		}
		o.products = append(o.products, &orderProduct{
			id:        s.newID(),
			productID: p.ID,
			name:      p.Name,
			sku:       p.SKU,
			quantity:  pr.Quantity,
			priceEx:   ex,
			priceInc:  inc,
		})
	}
	s.orders[o.id] = o
	writeJSON(w, http.StatusCreated, s.renderOrder(o, nil))
}

// orderQuery holds the filters shared by the order list and count.
type orderQuery struct {
	statusID   int
	customerID int64
	minCreated time.Time
	maxCreated time.Time
}

func parseOrderQuery(q url.Values) (orderQuery, string) {
	oq := orderQuery{statusID: -1}
	if v := q.Get("status_id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return oq, "The field 'status_id' is invalid."
		}
		oq.statusID = n
	}
	if v := q.Get("customer_id"); v != "" {
		oq.customerID, _ = strconv.ParseInt(v, 10, 64)
	}
	for key, dst := range map[string]*time.Time{"min_date_created": &oq.minCreated, "max_date_created": &oq.maxCreated} {
		if v := q.Get(key); v != "" {
			t, err := parseDate(v)
			if err != nil {
				return oq, fmt.Sprintf("The field '%s' is invalid.", key)
			}
			*dst = t
		}
	}
	return oq, ""
}

// matchOrders returns orders passing oq in id order. Callers hold s.mu.
func (s *Store) matchOrders(oq orderQuery) []*order {
	matched := make([]*order, 0, len(s.orders))
	for _, id := range sortedKeys(s.orders) {
		o := s.orders[id]
		if oq.statusID >= 0 && o.statusID != oq.statusID {
			continue
		}
		if oq.customerID > 0 && o.customerID != oq.customerID {
			continue
		}
		if !oq.minCreated.IsZero() && o.created.Before(oq.minCreated) {
			continue
		}
		if !oq.maxCreated.IsZero() && o.created.After(oq.maxCreated) {
			continue
		}
		matched = append(matched, o)
	}
	return matched
}

// searchOrders answers 204 when the requested page is empty.
func (s *Store) searchOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	oq, msg := parseOrderQuery(q)
	if msg != "" {
		writeV2Error(w, http.StatusBadRequest, msg)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := s.matchOrders(oq)
	sortOrders(matched, q.Get("sort"))

	start, end, _, _ := pageBounds(q, len(matched))
	if start == end {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	out := make([]map[string]any, 0, end-start)
	for _, o := range matched[start:end] {
		out = append(out, s.renderOrder(o, nil))
	}
	writeJSON(w, http.StatusOK, out)
}

// countOrders mirrors GET v2/orders/count: the total plus a per-status breakdown.
func (s *Store) countOrders(w http.ResponseWriter, r *http.Request) {
	oq, msg := parseOrderQuery(r.URL.Query())
	if msg != "" {
		writeV2Error(w, http.StatusBadRequest, msg)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := s.matchOrders(oq)
	perStatus := map[int]int{}
	for _, o := range matched {
		perStatus[o.statusID]++
	}
	statuses := make([]map[string]any, 0, len(perStatus))
	for id := 0; id <= maxStatusID; id++ {
		if n, ok := perStatus[id]; ok {
			statuses = append(statuses, map[string]any{"id": id, "name": orderStatusNames[id], "count": n})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(matched), "statuses": statuses})
}

func (s *Store) getOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.lookupOrder(r)
	if !ok {
		writeV2Error(w, http.StatusNotFound, "The requested resource was not found.")
		return
	}
	writeJSON(w, http.StatusOK, s.renderOrder(o, csvSet(r.URL.Query().Get("include"))))
}

func (s *Store) updateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StatusID        *int    `json:"status_id"`
		StaffNotes      *string `json:"staff_notes"`
		CustomerMessage *string `json:"customer_message"`
		ExternalOrderID *string `json:"external_order_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeV2Error(w, http.StatusBadRequest, "The request body is not valid JSON.")
		return
	}
	if req.StatusID != nil && (*req.StatusID < 0 || *req.StatusID > maxStatusID) {
		writeV2Error(w, http.StatusBadRequest, "The field 'status_id' is invalid.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.lookupOrder(r)
	if !ok {
		writeV2Error(w, http.StatusNotFound, "The requested resource was not found.")
		return
	}
	if req.StatusID != nil {
		o.statusID = *req.StatusID
	}
	if req.StaffNotes != nil {
		o.staffNotes = *req.StaffNotes
	}
	if req.CustomerMessage != nil {
		o.customerMessage = *req.CustomerMessage
	}
	if req.ExternalOrderID != nil {
		o.externalOrderID = *req.ExternalOrderID
	}
	o.modified = s.now().UTC()
	writeJSON(w, http.StatusOK, s.renderOrder(o, nil))
}

func (s *Store) createShipment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderAddressID   int64  `json:"order_address_id"`
		TrackingNumber   string `json:"tracking_number"`
		ShippingMethod   string `json:"shipping_method"`
		ShippingProvider string `json:"shipping_provider"`
		TrackingCarrier  string `json:"tracking_carrier"`
		Comments         string `json:"comments"`
		Items            []struct {
			OrderProductID int64 `json:"order_product_id"`
			Quantity       int   `json:"quantity"`
		} `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeV2Error(w, http.StatusBadRequest, "The request body is not valid JSON.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.lookupOrder(r)
	if !ok {
		writeV2Error(w, http.StatusNotFound, "The requested resource was not found.")
		return
	}
	if req.OrderAddressID != o.addressID {
		writeV2Error(w, http.StatusBadRequest, "The field 'order_address_id' is invalid.")
		return
	}
	if len(req.Items) == 0 {
		writeV2Error(w, http.StatusBadRequest, "The field 'items' is invalid.")
		return
	}
	for _, it := range req.Items {
		op := o.product(it.OrderProductID)
		if op == nil || it.Quantity <= 0 || op.shipped+it.Quantity > op.quantity {
			writeV2Error(w, http.StatusBadRequest, fmt.Sprintf("The order product id %d cannot be shipped.", it.OrderProductID))
			return
		}
	}

	items := make([]map[string]any, 0, len(req.Items))
	for _, it := range req.Items {
		op := o.product(it.OrderProductID)
		op.shipped += it.Quantity
		items = append(items, map[string]any{
			"order_product_id": op.id,
			"product_id":       op.productID,
			"quantity":         it.Quantity,
		})
	}
	if o.itemsShipped() == o.itemsTotal() {
		o.statusID = statusShipped
	} else {
		o.statusID = statusPartiallyShipped
	}
	now := s.now().UTC()
	o.modified = now

	shipment := map[string]any{
		"id":                s.newID(),
		"order_id":          o.id,
		"customer_id":       o.customerID,
		"order_address_id":  o.addressID,
		"date_created":      now.Format(time.RFC1123Z),
		"tracking_number":   req.TrackingNumber,
		"shipping_method":   req.ShippingMethod,
		"shipping_provider": req.ShippingProvider,
		"tracking_carrier":  req.TrackingCarrier,
		"tracking_link":     "",
		"comments":          req.Comments,
		"items":             items,
	}
	o.shipments = append(o.shipments, shipment)
	writeJSON(w, http.StatusCreated, shipment)
}

func (s *Store) shippingAddresses(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.lookupOrder(r)
	if !ok {
		writeV2Error(w, http.StatusNotFound, "The requested resource was not found.")
		return
	}
	writeJSON(w, http.StatusOK, []map[string]any{s.renderShippingAddress(o)})
}

func (s *Store) lookupOrder(r *http.Request) (*order, bool) {
	id, ok := pathInt(r, "orderID")
	if !ok {
		return nil, false
	}
	o, ok := s.orders[id]
	return o, ok
}

func (o *order) product(id int64) *orderProduct {
	for _, p := range o.products {
		if p.id == id {
			return p
		}
	}
	return nil
}

func (o *order) itemsTotal() int {
	n := 0
	for _, p := range o.products {
		n += p.quantity
	}
	return n
}

func (o *order) itemsShipped() int {
	n := 0
	for _, p := range o.products {
		n += p.shipped
	}
	return n
}

var orderStatusNames = map[int]string{
	0: "Incomplete", 1: "Pending", 2: "Shipped", 3: "Partially Shipped", 4: "Refunded",
	5: "Cancelled", 6: "Declined", 7: "Awaiting Payment", 8: "Awaiting Pickup",
	9: "Awaiting Shipment", 10: "Completed", 11: "Awaiting Fulfillment",
	12: "Manual Verification Required", 13: "Disputed", 14: "Partially Refunded",
}

func (s *Store) renderOrder(o *order, include map[string]bool) map[string]any {
	subEx, subInc := decimal.Zero, decimal.Zero
	for _, p := range o.products {
		qty := decimal.NewFromInt(int64(p.quantity))
		subEx = subEx.Add(p.priceEx.Mul(qty))
		subInc = subInc.Add(p.priceInc.Mul(qty))
	}
	out := map[string]any{
		"id":                o.id,
		"customer_id":       o.customerID,
		"channel_id":        o.channelID,
		"date_created":      o.created.Format(time.RFC1123Z),
		"date_modified":     o.modified.Format(time.RFC1123Z),
		"status_id":         o.statusID,
		"status":            orderStatusNames[o.statusID],
		"subtotal_ex_tax":   v2Amount(subEx),
		"subtotal_inc_tax":  v2Amount(subInc),
		"total_ex_tax":      v2Amount(subEx),
		"total_inc_tax":     v2Amount(subInc),
		"items_total":       o.itemsTotal(),
		"items_shipped":     o.itemsShipped(),
		"payment_method":    "Manual",
		"currency_code":     "USD",
		"staff_notes":       o.staffNotes,
		"customer_message":  o.customerMessage,
		"external_source":   o.externalSource,
		"external_id":       "",
		"external_order_id": o.externalOrderID,
		"billing_address":   o.billing,
		"products": map[string]string{
			"url":      fmt.Sprintf("https://api.bigcommerce.com/stores/%s/v2/orders/%d/products", s.Hash, o.id),
			"resource": fmt.Sprintf("/orders/%d/products", o.id),
		},
	}
	if include["consignments"] {
		shipping := s.renderShippingAddress(o)
		if include["consignments.line_items"] {
			lines := make([]map[string]any, 0, len(o.products))
			for _, p := range o.products {
				lines = append(lines, renderOrderLine(o.id, p))
			}
			shipping["line_items"] = lines
		}
		out["consignments"] = []map[string]any{{
			"shipping":  []map[string]any{shipping},
			"pickups":   []any{},
			"downloads": []any{},
		}}
	}
	return out
}

func (s *Store) renderShippingAddress(o *order) map[string]any {
	out := map[string]any{
		"id":                 o.addressID,
		"order_id":           o.id,
		"shipping_method":    "Free Shipping",
		"shipping_zone_name": "United States",
		"base_cost":          v2Amount(decimal.Zero),
		"cost_ex_tax":        v2Amount(decimal.Zero),
		"cost_inc_tax":       v2Amount(decimal.Zero),
		"items_total":        o.itemsTotal(),
		"items_shipped":      o.itemsShipped(),
	}
	b, _ := json.Marshal(o.billing)
	var fields map[string]any
	_ = json.Unmarshal(b, &fields)
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func renderOrderLine(orderID int64, p *orderProduct) map[string]any {
	qty := decimal.NewFromInt(int64(p.quantity))
	return map[string]any{
		"id":               p.id,
		"order_id":         orderID,
		"product_id":       p.productID,
		"variant_id":       p.variantID,
		"name":             p.name,
		"sku":              p.sku,
		"quantity":         p.quantity,
		"quantity_shipped": p.shipped,
		"base_price":       v2Amount(p.priceEx),
		"price_ex_tax":     v2Amount(p.priceEx),
		"price_inc_tax":    v2Amount(p.priceInc),
		"total_ex_tax":     v2Amount(p.priceEx.Mul(qty)),
		"total_inc_tax":    v2Amount(p.priceInc.Mul(qty)),
	}
}

func sortOrders(list []*order, raw string) {
	field, dir, _ := strings.Cut(raw, ":")
	less := func(a, b *order) bool { return a.id < b.id }
	switch field {
	case "date_created":
		less = func(a, b *order) bool { return a.created.Before(b.created) }
	case "date_modified":
		less = func(a, b *order) bool { return a.modified.Before(b.modified) }
	case "status_id":
		less = func(a, b *order) bool { return a.statusID < b.statusID }
	case "customer_id":
		less = func(a, b *order) bool { return a.customerID < b.customerID }
	}
	sort.SliceStable(list, func(i, j int) bool {
		if dir == "desc" {
			return less(list[j], list[i])
		}
		return less(list[i], list[j])
	})
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC1123Z, v)
}
