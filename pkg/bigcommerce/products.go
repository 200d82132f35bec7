package bigcommerce

import (
	"context"
	"strconv"
	"strings"
)

type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityDisabled  Availability = "disabled"
	AvailabilityPreorder  Availability = "preorder"
)

// ProductInclude names a sub-resource embedded in product responses.
type ProductInclude string

const (
	ProductIncludeVariants         ProductInclude = "variants"
	ProductIncludeImages           ProductInclude = "images"
	ProductIncludeCustomFields     ProductInclude = "custom_fields"
	ProductIncludeBulkPricingRules ProductInclude = "bulk_pricing_rules"
	ProductIncludePrimaryImage     ProductInclude = "primary_image"
	ProductIncludeModifiers        ProductInclude = "modifiers"
	ProductIncludeOptions          ProductInclude = "options"
	ProductIncludeVideos           ProductInclude = "videos"
)

type ProductSort string

const (
	ProductSortID             ProductSort = "id"
	ProductSortName           ProductSort = "name"
	ProductSortSKU            ProductSort = "sku"
	ProductSortPrice          ProductSort = "price"
	ProductSortDateModified   ProductSort = "date_modified"
	ProductSortInventoryLevel ProductSort = "inventory_level"
	ProductSortTotalSold      ProductSort = "total_sold"
)

type Product struct {
	ID              int64          `json:"id"`
	Name            string         `json:"name"`
	Type            string         `json:"type"`
	SKU             string         `json:"sku"`
	Description     string         `json:"description"`
	Price           Amount         `json:"price"`
	CostPrice       Amount         `json:"cost_price"`
	RetailPrice     Amount         `json:"retail_price"`
	SalePrice       Amount         `json:"sale_price"`
	CalculatedPrice Amount         `json:"calculated_price"`
	Availability    Availability   `json:"availability"`
	IsVisible       bool           `json:"is_visible"`
	InventoryLevel  int            `json:"inventory_level"`
	Categories      []int64        `json:"categories"`
	BrandID         int64          `json:"brand_id"`
	Variants        []Variant      `json:"variants,omitempty"`
	Images          []ProductImage `json:"images,omitempty"`
	CustomFields    []CustomField  `json:"custom_fields,omitempty"`
	DateCreated     string         `json:"date_created"`
	DateModified    string         `json:"date_modified"`
}

type Variant struct {
	ID              int64                `json:"id"`
	ProductID       int64                `json:"product_id"`
	SKU             string               `json:"sku"`
	Price           Amount               `json:"price"`
	CalculatedPrice Amount               `json:"calculated_price"`
	InventoryLevel  int                  `json:"inventory_level"`
	OptionValues    []VariantOptionValue `json:"option_values"`
}

type VariantOptionValue struct {
	ID                int64  `json:"id"`
	Label             string `json:"label"`
	OptionID          int64  `json:"option_id"`
	OptionDisplayName string `json:"option_display_name"`
}

type ProductImage struct {
	ID           int64  `json:"id"`
	ProductID    int64  `json:"product_id"`
	IsThumbnail  bool   `json:"is_thumbnail"`
	SortOrder    int    `json:"sort_order"`
	Description  string `json:"description"`
	ImageFile    string `json:"image_file"`
	URLZoom      string `json:"url_zoom"`
	URLStandard  string `json:"url_standard"`
	URLThumbnail string `json:"url_thumbnail"`
	URLTiny      string `json:"url_tiny"`
	DateModified string `json:"date_modified"`
}

type CustomField struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductImageCreate adds an image from a fully qualified URL (8MB limit per file).
type ProductImageCreate struct {
	ImageURL    string `json:"image_url" validate:"required,url"`
	IsThumbnail *bool  `json:"is_thumbnail,omitempty"`
	SortOrder   *int   `json:"sort_order,omitempty"`
	Description string `json:"description,omitempty"`
}

// ProductSearch holds the query of GET v3/catalog/products. Zero fields are omitted.
type ProductSearch struct {
	IDs           []int64
	Name          string
	ChannelID     int64
	Availability  Availability
	Include       []ProductInclude
	IncludeFields []string
	Sort          ProductSort
	Direction     SortDirection
	Limit         int
	Page          int
}

func (s ProductSearch) Filter() Filter {
	f := NewFilter()
	if len(s.IDs) > 0 {
		ids := make([]string, len(s.IDs))
		for i, id := range s.IDs {
			ids[i] = itoa(id)
		}
		f = f.Add("id:in", strings.Join(ids, ","))
	}
	if s.Name != "" {
		f = f.Add("name", s.Name)
	}
	if s.ChannelID > 0 {
		f = f.Add("channel_id:in", itoa(s.ChannelID))
	}
	if s.Availability != "" {
		f = f.Add("availability", string(s.Availability))
	}
	f = addIncludes(f, s.Include, s.IncludeFields)
	if s.Sort != "" {
		f = f.Add("sort", string(s.Sort))
	}
	if s.Direction != "" {
		f = f.Add("direction", string(s.Direction))
	}
	if s.Limit > 0 {
		f = f.Add("limit", strconv.Itoa(s.Limit))
	}
	if s.Page > 0 {
		f = f.Add("page", strconv.Itoa(s.Page))
	}
	return f
}

func (s ProductSearch) Next(p Pagination) ProductSearch {
	s.Page = p.CurrentPage + 1
	if s.Limit == 0 {
		s.Limit = p.PerPage
	}
	return s
}

// ProductGet selects the sub-resources and fields of a single product.
type ProductGet struct {
	Include       []ProductInclude
	IncludeFields []string
}

func (g ProductGet) Filter() Filter {
	return addIncludes(NewFilter(), g.Include, g.IncludeFields)
}

func addIncludes(f Filter, include []ProductInclude, fields []string) Filter {
	if len(include) > 0 {
		names := make([]string, len(include))
		for i, inc := range include {
			names[i] = string(inc)
		}
		f = f.Add("include", strings.Join(names, ","))
	}
	if len(fields) > 0 {
		f = f.Add("include_fields", strings.Join(fields, ","))
	}
	return f
}

func (c Client) SearchProducts(ctx context.Context, s ProductSearch) (PagedResult[Product], error) {
	return SearchProductsAs[Product](ctx, c, s)
}

// SearchProductsAs decodes products into T, for use with IncludeFields projections.
func SearchProductsAs[T any](ctx context.Context, c Client, s ProductSearch) (PagedResult[T], error) {
	return GetPaged[T](ctx, c, ProductsEndpoint(), s.Filter())
}

func (c Client) GetProduct(ctx context.Context, productID int64, g ProductGet) (Result[Product], error) {
	return Get[Product](ctx, c, ProductEndpoint(productID), g.Filter())
}

func (c Client) CreateProductImage(ctx context.Context, productID int64, img ProductImageCreate) (Result[ProductImage], error) {
	if err := validatePayload("create product image", img); err != nil {
		return Result[ProductImage]{}, err
	}
	return Post[ProductImage](ctx, c, ProductImagesEndpoint(productID), Filter{}, img)
}
