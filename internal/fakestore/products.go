package fakestore

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           int64
	Name         string
	SKU          string
	Price        decimal.Decimal
	Availability string
	ChannelIDs   []int64
	Inventory    int
	Variants     []Variant
	CustomFields []CustomField
	Images       []Image
}

type Variant struct {
	ID           int64
	SKU          string
	Price        decimal.Decimal
	OptionValues []OptionValue
}

type OptionValue struct {
	ID                int64
	OptionID          int64
	Label             string
	OptionDisplayName string
}

type CustomField struct {
	ID    int64
	Name  string
	Value string
}

type Image struct {
	ID          int64
	URL         string
	IsThumbnail bool
	SortOrder   int
	Description string
}

// AddProduct stores p, assigning ids to it and its variants when unset.
func (s *Store) AddProduct(p Product) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.newID()
	}
	if p.Availability == "" {
		p.Availability = "available"
	}
	if len(p.ChannelIDs) == 0 {
		p.ChannelIDs = []int64{1}
	}
	for i := range p.Variants {
		if p.Variants[i].ID == 0 {
			p.Variants[i].ID = s.newID()
		}
	}
	for i := range p.CustomFields {
		if p.CustomFields[i].ID == 0 {
			p.CustomFields[i].ID = s.newID()
		}
	}
	s.products[p.ID] = &p
	return p.ID
}

// Seed adds n sample products on channel 1, each with one variant, one
// size option value and one custom field.
func (s *Store) Seed(n int) []int64 {
	ids := make([]int64, 0, n)
	for i := 1; i <= n; i++ {
		price := decimal.NewFromInt(int64(10 + i)).Add(decimal.RequireFromString("0.99"))
		ids = append(ids, s.AddProduct(Product{
			Name:      fmt.Sprintf("Sample Product %d", i),
			SKU:       fmt.Sprintf("SKU-%03d", i),
			Price:     price,
			Inventory: 100,
			Variants: []Variant{{
				SKU:   fmt.Sprintf("SKU-%03d-M", i),
				Price: price,
				OptionValues: []OptionValue{{
					ID: 10, OptionID: 20, Label: "M", OptionDisplayName: "Size",
				}},
			}},
			CustomFields: []CustomField{{Name: "material", Value: "cotton"}},
		}))
	}
	return ids
}

func (s *Store) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var idFilter map[string]bool
	if raw := q.Get("id:in"); raw != "" {
		idFilter = csvSet(raw)
	}
	var channelFilter map[string]bool
	if raw := q.Get("channel_id:in"); raw != "" {
		channelFilter = csvSet(raw)
	}
	name := q.Get("name")
	availability := q.Get("availability")

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]*Product, 0, len(s.products))
	for _, id := range sortedKeys(s.products) {
		p := s.products[id]
		if idFilter != nil && !idFilter[strconv.FormatInt(p.ID, 10)] {
			continue
		}
		if name != "" && p.Name != name {
			continue
		}
		if availability != "" && p.Availability != availability {
			continue
		}
		if channelFilter != nil && !onChannel(p, channelFilter) {
			continue
		}
		matched = append(matched, p)
	}
	sortProducts(matched, q.Get("sort"), q.Get("direction"))

	start, end, page, limit := pageBounds(q, len(matched))
	include := csvSet(q.Get("include"))
	fields := csvSet(q.Get("include_fields"))
	data := make([]map[string]any, 0, end-start)
	for _, p := range matched[start:end] {
		data = append(data, renderProduct(p, include, fields))
	}
	writeData(w, http.StatusOK, data, paginationMeta(len(matched), len(data), page, limit))
}

func (s *Store) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "productID")
	if !ok {
		writeV3Error(w, http.StatusNotFound, "The requested product was not found")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		writeV3Error(w, http.StatusNotFound, "The requested product was not found")
		return
	}
	q := r.URL.Query()
	writeData(w, http.StatusOK, renderProduct(p, csvSet(q.Get("include")), csvSet(q.Get("include_fields"))), nil)
}

type imageCreateReq struct {
	ImageURL    string `json:"image_url"`
	IsThumbnail bool   `json:"is_thumbnail"`
	SortOrder   int    `json:"sort_order"`
	Description string `json:"description"`
}

func (s *Store) createProductImage(w http.ResponseWriter, r *http.Request) {
	id, _ := pathInt(r, "productID")
	var req imageCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeV3Error(w, http.StatusBadRequest, "Input is invalid")
		return
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		writeV3Error(w, http.StatusUnprocessableEntity, "The field 'image_url' is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		writeV3Error(w, http.StatusNotFound, "The requested product was not found")
		return
	}
	img := Image{
		ID:          s.newID(),
		URL:         req.ImageURL,
		IsThumbnail: req.IsThumbnail,
		SortOrder:   req.SortOrder,
		Description: req.Description,
	}
	p.Images = append(p.Images, img)
	writeData(w, http.StatusOK, renderImage(p.ID, img), nil)
}

func onChannel(p *Product, channels map[string]bool) bool {
	for _, c := range p.ChannelIDs {
		if channels[strconv.FormatInt(c, 10)] {
			return true
		}
	}
	return false
}

func sortProducts(ps []*Product, field, direction string) {
	less := func(a, b *Product) bool { return a.ID < b.ID }
	switch field {
	case "name":
		less = func(a, b *Product) bool { return a.Name < b.Name }
	case "sku":
		less = func(a, b *Product) bool { return a.SKU < b.SKU }
	case "price":
		less = func(a, b *Product) bool { return a.Price.LessThan(b.Price) }
	}
	sort.SliceStable(ps, func(i, j int) bool {
		if direction == "desc" {
			return less(ps[j], ps[i])
		}
		return less(ps[i], ps[j])
	})
}

// renderProduct projects to include_fields when given; id is always present.
func renderProduct(p *Product, include, fields map[string]bool) map[string]any {
	full := map[string]any{
		"id":               p.ID,
		"name":             p.Name,
		"type":             "physical",
		"sku":              p.SKU,
		"description":      "",
		"price":            v3Amount(p.Price),
		"cost_price":       v3Amount(decimal.Zero),
		"retail_price":     v3Amount(decimal.Zero),
		"sale_price":       v3Amount(decimal.Zero),
		"calculated_price": v3Amount(p.Price),
		"availability":     p.Availability,
		"is_visible":       true,
		"inventory_level":  p.Inventory,
		"categories":       []int64{},
		"brand_id":         0,
		"date_created":     "2024-01-01T00:00:00+00:00",
		"date_modified":    "2024-01-01T00:00:00+00:00",
	}
	out := full
	if len(fields) > 0 {
		out = map[string]any{"id": p.ID}
		for f := range fields {
			if v, ok := full[f]; ok {
				out[f] = v
			}
		}
	}

	if include["variants"] {
		variants := make([]map[string]any, 0, len(p.Variants))
		for _, v := range p.Variants {
			opts := make([]map[string]any, 0, len(v.OptionValues))
			for _, o := range v.OptionValues {
				opts = append(opts, map[string]any{
					"id":                  o.ID,
					"label":               o.Label,
					"option_id":           o.OptionID,
					"option_display_name": o.OptionDisplayName,
				})
			}
			variants = append(variants, map[string]any{
				"id":               v.ID,
				"product_id":       p.ID,
				"sku":              v.SKU,
				"price":            v3Amount(v.Price),
				"calculated_price": v3Amount(v.Price),
				"inventory_level":  p.Inventory,
				"option_values":    opts,
			})
		}
		out["variants"] = variants
	}
	if include["images"] {
		images := make([]map[string]any, 0, len(p.Images))
		for _, img := range p.Images {
			images = append(images, renderImage(p.ID, img))
		}
		out["images"] = images
	}
	if include["custom_fields"] {
		cfs := make([]map[string]any, 0, len(p.CustomFields))
		for _, cf := range p.CustomFields {
			cfs = append(cfs, map[string]any{"id": cf.ID, "name": cf.Name, "value": cf.Value})
		}
		out["custom_fields"] = cfs
	}
	return out
}

func renderImage(productID int64, img Image) map[string]any {
	return map[string]any{
		"id":            img.ID,
		"product_id":    productID,
		"is_thumbnail":  img.IsThumbnail,
		"sort_order":    img.SortOrder,
		"description":   img.Description,
		"image_file":    fmt.Sprintf("a/%d/image_%d.jpg", productID, img.ID),
		"url_zoom":      img.URL,
		"url_standard":  img.URL,
		"url_thumbnail": img.URL,
		"url_tiny":      img.URL,
		"date_modified": "2024-01-01T00:00:00+00:00",
	}
}
