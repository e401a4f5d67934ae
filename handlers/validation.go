package handlers

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/anggr/haev-revalidate/models"

	"github.com/go-playground/validator/v10"
)

// FieldError is a single field-level violation reported by the schema layer.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// validate is the shared schema validator. Field names in violations come
// from json tags so clients see the names they actually sent.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ProductPayload is the accepted shape of product create/update requests,
// including every nested child collection.
type ProductPayload struct {
	Name             string   `json:"name" validate:"required,min=2"`
	Slug             string   `json:"slug" validate:"omitempty,min=2"`
	Description      string   `json:"description"`
	LongDescription  string   `json:"long_description"`
	SKU              string   `json:"sku"`
	Price            float64  `json:"price" validate:"gte=0"`
	CompareAtPrice   *float64 `json:"compare_at_price" validate:"omitempty,gte=0"`
	CostPrice        *float64 `json:"cost_price" validate:"omitempty,gte=0"`
	Currency         string   `json:"currency" validate:"omitempty,len=3"`
	Quantity         int      `json:"quantity" validate:"gte=0"`
	TrackQuantity    *bool    `json:"track_quantity"`
	AllowBackorder   bool     `json:"allow_backorder"`
	LowStockAlert    *int     `json:"low_stock_alert" validate:"omitempty,gte=0"`
	ReservedStock    *int     `json:"reserved_stock" validate:"omitempty,gte=0"`
	MaxStock         *int     `json:"max_stock" validate:"omitempty,gte=0"`
	Weight           *float64 `json:"weight" validate:"omitempty,gte=0"`
	WeightUnit       string   `json:"weight_unit" validate:"omitempty,oneof=g kg lb oz"`
	Length           *float64 `json:"length" validate:"omitempty,gte=0"`
	Width            *float64 `json:"width" validate:"omitempty,gte=0"`
	Height           *float64 `json:"height" validate:"omitempty,gte=0"`
	DimensionUnit    string   `json:"dimension_unit" validate:"omitempty,oneof=cm m in ft"`
	RequiresShipping *bool    `json:"requires_shipping"`
	ShippingClass    string   `json:"shipping_class"`
	Status           string   `json:"status" validate:"omitempty,oneof=active draft"`
	Mark             string   `json:"mark"`
	SEOTitle         string   `json:"seo_title"`
	SEODescription   string   `json:"seo_description"`
	CategoryID       string   `json:"category_id" validate:"omitempty,uuid"`
	SubcategoryID    string   `json:"subcategory_id" validate:"omitempty,uuid"`
	BrandID          string   `json:"brand_id" validate:"omitempty,uuid"`

	Images            []string             `json:"images" validate:"omitempty,dive,url"`
	Features          []FeaturePayload     `json:"features" validate:"omitempty,dive"`
	Variants          []VariantPayload     `json:"variants" validate:"omitempty,dive"`
	Tags              []string             `json:"tags" validate:"omitempty,dive,min=1"`
	FAQs              []FAQPayload         `json:"faqs" validate:"omitempty,dive"`
	TestimonialVideos []VideoPayload       `json:"testimonial_videos" validate:"omitempty,dive"`
	Testimonials      []TestimonialPayload `json:"testimonials" validate:"omitempty,dive"`
}

type FeaturePayload struct {
	Title       string `json:"title" validate:"required,min=1"`
	Description string `json:"description"`
	Icon        string `json:"icon" validate:"omitempty,url"`
}

type VariantPayload struct {
	Name           string                    `json:"name" validate:"required,min=1"`
	Price          *float64                  `json:"price" validate:"omitempty,gte=0"`
	CompareAtPrice *float64                  `json:"compare_at_price" validate:"omitempty,gte=0"`
	SKU            string                    `json:"sku"`
	Quantity       *int                      `json:"quantity" validate:"omitempty,gte=0"`
	ImageURL       string                    `json:"image_url" validate:"omitempty,url"`
	Icon           string                    `json:"icon" validate:"omitempty,url"`
	Attributes     []VariantAttributePayload `json:"attributes" validate:"omitempty,dive"`
	Features       []VariantFeaturePayload   `json:"features" validate:"omitempty,dive"`
}

type VariantAttributePayload struct {
	Name  string `json:"name" validate:"required,min=1"`
	Value string `json:"value" validate:"required,min=1"`
}

type VariantFeaturePayload struct {
	Text string `json:"text" validate:"required,min=1"`
	Icon string `json:"icon" validate:"omitempty,url"`
}

type FAQPayload struct {
	Question string `json:"question" validate:"required,min=1"`
	Answer   string `json:"answer" validate:"required,min=1"`
}

type VideoPayload struct {
	URL   string `json:"url" validate:"required,url"`
	Title string `json:"title"`
}

type TestimonialPayload struct {
	CustomerName string   `json:"customer_name" validate:"required,min=1"`
	Text         string   `json:"text" validate:"required,min=1"`
	Rating       *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	ImageURL     string   `json:"image_url" validate:"omitempty,url"`
}

// structViolations runs the schema validator over any payload struct and
// maps the result to field-level violations. It never panics past its
// boundary.
func structViolations(payload interface{}) []FieldError {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "payload", Message: err.Error()}}
	}

	violations := make([]FieldError, 0, len(verrs))
	for _, ve := range verrs {
		violations = append(violations, FieldError{
			Field:   ve.Namespace(),
			Message: violationMessage(ve),
		})
	}
	return violations
}

// ValidateProduct checks the payload against the product schema and returns
// every violation at once. Performs no persistence.
func ValidateProduct(p *ProductPayload) []FieldError {
	violations := structViolations(p)

	// Mark must come from the closed enumeration.
	if p.Mark != "" && !validMark(p.Mark) {
		violations = append(violations, FieldError{
			Field:   "mark",
			Message: fmt.Sprintf("must be one of: %s", strings.Join(models.ProductMarks, ", ")),
		})
	}

	// A unit field becomes required once its magnitude is present.
	if p.Weight != nil && *p.Weight > 0 && p.WeightUnit == "" {
		violations = append(violations, FieldError{Field: "weight_unit", Message: "required when weight is set"})
	}
	if (dimSet(p.Length) || dimSet(p.Width) || dimSet(p.Height)) && p.DimensionUnit == "" {
		violations = append(violations, FieldError{Field: "dimension_unit", Message: "required when dimensions are set"})
	}

	return violations
}

// NormalizeProduct applies defaults and conditional clearing. Called after a
// successful validation, before persistence.
func NormalizeProduct(p *ProductPayload) {
	if p.Status == "" {
		p.Status = "draft"
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if p.TrackQuantity == nil {
		trackQuantity := true
		p.TrackQuantity = &trackQuantity
	}
	if p.RequiresShipping == nil {
		requiresShipping := true
		p.RequiresShipping = &requiresShipping
	}

	// Physical fields are meaningless for non-shipped products.
	if !*p.RequiresShipping {
		p.Weight = nil
		p.WeightUnit = ""
		p.Length = nil
		p.Width = nil
		p.Height = nil
		p.DimensionUnit = ""
		p.ShippingClass = ""
	}
}

func validMark(mark string) bool {
	for _, m := range models.ProductMarks {
		if m == mark {
			return true
		}
	}
	return false
}

func dimSet(v *float64) bool {
	return v != nil && *v > 0
}

func violationMessage(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", ve.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", ve.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", ve.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", ve.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	default:
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
