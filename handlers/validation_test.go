package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func validProductPayload() ProductPayload {
	return ProductPayload{
		Name:  "Winter Coat",
		Price: 49.99,
	}
}

func TestValidateProductAcceptsMinimalPayload(t *testing.T) {
	p := validProductPayload()
	assert.Empty(t, ValidateProduct(&p))
}

func TestValidateProductCollectsAllViolations(t *testing.T) {
	p := ProductPayload{
		Name:     "X",
		Price:    -1,
		Currency: "DOLLARS",
		Status:   "archived",
	}

	violations := ValidateProduct(&p)
	require.NotEmpty(t, violations)

	fields := make(map[string]bool)
	for _, v := range violations {
		fields[v.Field] = true
	}
	// Every broken field is reported in one pass.
	assert.GreaterOrEqual(t, len(violations), 4)
	for _, want := range []string{"name", "price", "currency", "status"} {
		found := false
		for f := range fields {
			if f == want || len(f) > len(want) && f[len(f)-len(want)-1:] == "."+want {
				found = true
			}
		}
		assert.True(t, found, "expected a violation for %q, got %v", want, violations)
	}
}

func TestValidateProductRejectsUnknownMark(t *testing.T) {
	p := validProductPayload()
	p.Mark = "super duper"

	violations := ValidateProduct(&p)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Message, "best seller")
}

func TestValidateProductAcceptsKnownMarks(t *testing.T) {
	for _, mark := range []string{"best seller", "new arrival", "limited edition", "trending", "top rated", "on sale"} {
		p := validProductPayload()
		p.Mark = mark
		assert.Empty(t, ValidateProduct(&p), "mark %q should be accepted", mark)
	}
}

func TestValidateProductRequiresUnitsWithMagnitudes(t *testing.T) {
	p := validProductPayload()
	p.Weight = floatPtr(1.5)
	violations := ValidateProduct(&p)
	require.Len(t, violations, 1)
	assert.Equal(t, "weight_unit", violations[0].Field)

	p = validProductPayload()
	p.Height = floatPtr(30)
	violations = ValidateProduct(&p)
	require.Len(t, violations, 1)
	assert.Equal(t, "dimension_unit", violations[0].Field)

	p = validProductPayload()
	p.Weight = floatPtr(1.5)
	p.WeightUnit = "kg"
	assert.Empty(t, ValidateProduct(&p))
}

func TestValidateProductNestedCollections(t *testing.T) {
	p := validProductPayload()
	p.Images = []string{"not a url"}
	p.Variants = []VariantPayload{{Name: ""}}
	p.Testimonials = []TestimonialPayload{{CustomerName: "Ana", Text: "Great", Rating: floatPtr(9)}}

	violations := ValidateProduct(&p)
	assert.GreaterOrEqual(t, len(violations), 3)
}

func TestNormalizeProductAppliesDefaults(t *testing.T) {
	p := validProductPayload()
	NormalizeProduct(&p)

	assert.Equal(t, "draft", p.Status)
	assert.Equal(t, "USD", p.Currency)
	require.NotNil(t, p.TrackQuantity)
	assert.True(t, *p.TrackQuantity)
	require.NotNil(t, p.RequiresShipping)
	assert.True(t, *p.RequiresShipping)
}

func TestNormalizeProductKeepsExplicitValues(t *testing.T) {
	p := validProductPayload()
	p.Status = "active"
	p.Currency = "EUR"
	p.TrackQuantity = boolPtr(false)
	NormalizeProduct(&p)

	assert.Equal(t, "active", p.Status)
	assert.Equal(t, "EUR", p.Currency)
	assert.False(t, *p.TrackQuantity)
}

func TestNormalizeProductClearsPhysicalFieldsWhenNotShipped(t *testing.T) {
	p := validProductPayload()
	p.RequiresShipping = boolPtr(false)
	p.Weight = floatPtr(2)
	p.WeightUnit = "kg"
	p.Length = floatPtr(10)
	p.DimensionUnit = "cm"
	p.ShippingClass = "oversized"
	NormalizeProduct(&p)

	assert.Nil(t, p.Weight)
	assert.Empty(t, p.WeightUnit)
	assert.Nil(t, p.Length)
	assert.Empty(t, p.DimensionUnit)
	assert.Empty(t, p.ShippingClass)
}
