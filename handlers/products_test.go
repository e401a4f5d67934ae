package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anggr/haev-revalidate/services"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	// Revalidation stays a logged no-op throughout handler tests.
	services.InitializeRevalidator(nil, "")
}

func performRequest(handler gin.HandlerFunc, method, target, body string, params gin.Params) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = params
	handler(c)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

const testProductID = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"

func TestGetProductsSearchMatchesDescription(t *testing.T) {
	mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products p WHERE \(p.name ILIKE \$1 OR p.description ILIKE \$1 OR p.sku ILIKE \$1\)`).
		WithArgs("%wool%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`p.description ILIKE \$1`).
		WithArgs("%wool%", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "slug", "description", "sku", "price", "compare_at_price",
			"currency", "quantity", "status", "mark", "rating", "rating_count",
			"category_id", "subcategory_id", "brand_id", "created_at", "updated_at",
			"category_name", "category_slug", "brand_name", "brand_slug", "primary_image",
		}).AddRow(
			testProductID, "Winter Coat", "winter-coat", "Wool blend parka", nil, 49.99, nil,
			"USD", 3, "active", nil, 0.0, 0,
			nil, nil, nil, sampleTime(), sampleTime(),
			nil, nil, nil, nil, nil,
		))

	w := performRequest(GetProducts, http.MethodGet, "/api/products?search=wool", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	products := body["products"].([]interface{})
	require.Len(t, products, 1)
	assert.Equal(t, "Wool blend parka", products[0].(map[string]interface{})["description"])
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), pagination["total"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductMinimal(t *testing.T) {
	mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id FROM products WHERE slug").
		WithArgs("winter-coat").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO products").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := performRequest(CreateProduct, http.MethodPost, "/api/products",
		`{"name":"Winter Coat","price":49.99}`, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "winter-coat", body["slug"])
	assert.NotEmpty(t, body["id"])
	assert.Nil(t, body["errors"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductTakenSlugGetsSuffix(t *testing.T) {
	mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id FROM products WHERE slug").
		WithArgs("red-hat").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testProductID))
	mock.ExpectQuery("SELECT id FROM products WHERE slug").
		WithArgs("red-hat-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO products").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := performRequest(CreateProduct, http.MethodPost, "/api/products",
		`{"name":"Red Hat","price":10}`, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "red-hat-1", decodeBody(t, w)["slug"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductValidationFailureTouchesNothing(t *testing.T) {
	mock, cleanup := newMockDB(t)
	defer cleanup()

	w := performRequest(CreateProduct, http.MethodPost, "/api/products",
		`{"name":"Winter Coat","price":-5}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Validation failed", body["error"])
	assert.NotEmpty(t, body["details"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductDuplicateSlugRace(t *testing.T) {
	mock, cleanup := newMockDB(t)
	defer cleanup()

	// The probe sees the slug as free, a concurrent writer takes it, and the
	// unique index surfaces the conflict on insert.
	mock.ExpectQuery("SELECT id FROM products WHERE slug").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO products").
		WillReturnError(&pq.Error{Code: "23505"})

	w := performRequest(CreateProduct, http.MethodPost, "/api/products",
		`{"name":"Winter Coat","price":49.99}`, nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductChildFailureStillSucceeds(t *testing.T) {
	mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id FROM products WHERE slug").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO products").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Image insert fails; tag insert still runs.
	mock.ExpectExec("INSERT INTO product_images").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectExec("INSERT INTO product_tags").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := performRequest(CreateProduct, http.MethodPost, "/api/products",
		`{"name":"Winter Coat","price":49.99,"images":["https://cdn.example.com/a.jpg"],"tags":["coats"]}`, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	require.NotEmpty(t, body["errors"])
	errs := body["errors"].([]interface{})
	assert.Contains(t, errs[0].(string), "images")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductFailedRowDoesNotStopCollection(t *testing.T) {
	mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id FROM products WHERE slug").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO products").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// First image fails; the second row of the same collection still runs.
	mock.ExpectExec("INSERT INTO product_images").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "https://cdn.example.com/a.jpg", true, 0).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectExec("INSERT INTO product_images").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "https://cdn.example.com/b.jpg", false, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := performRequest(CreateProduct, http.MethodPost, "/api/products",
		`{"name":"Winter Coat","price":49.99,"images":["https://cdn.example.com/a.jpg","https://cdn.example.com/b.jpg"]}`, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	require.NotEmpty(t, body["errors"])
	errs := body["errors"].([]interface{})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].(string), "images[0]")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProductReplacesChildCollections(t *testing.T) {
	mock, cleanup := newMockDB(t)
	defer cleanup()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery("SELECT name, slug, category_id, brand_id FROM products").
		WithArgs(testProductID).
		WillReturnRows(sqlmock.NewRows([]string{"name", "slug", "category_id", "brand_id"}).
			AddRow("Winter Coat", "winter-coat", nil, nil))
	mock.ExpectQuery("SELECT id FROM product_variants WHERE product_id").
		WithArgs(testProductID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	// Child purge runs as a concurrent batch.
	for _, table := range []string{
		"product_images", "product_features", "product_tags", "product_faqs",
		"product_testimonial_videos", "customer_testimonials", "product_variants",
	} {
		mock.ExpectExec("DELETE FROM " + table).
			WithArgs(testProductID).
			WillReturnResult(sqlmock.NewResult(0, 3))
	}

	mock.ExpectExec("UPDATE products SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec("INSERT INTO product_images").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "https://cdn.example.com/x.jpg", true, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO product_images").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "https://cdn.example.com/y.jpg", false, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := performRequest(UpdateProduct, http.MethodPut, "/api/products/"+testProductID,
		`{"name":"Winter Coat","price":49.99,"images":["https://cdn.example.com/x.jpg","https://cdn.example.com/y.jpg"]}`,
		gin.Params{{Key: "id", Value: testProductID}})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	// Unchanged name keeps the slug without a probe.
	assert.Equal(t, "winter-coat", body["slug"])
	assert.Nil(t, body["errors"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProductPartialPayloadLeavesOmittedColumnsAlone(t *testing.T) {
	mock, cleanup := newMockDB(t)
	defer cleanup()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery("SELECT name, slug, category_id, brand_id FROM products").
		WithArgs(testProductID).
		WillReturnRows(sqlmock.NewRows([]string{"name", "slug", "category_id", "brand_id"}).
			AddRow("Winter Coat", "winter-coat", nil, nil))
	mock.ExpectQuery("SELECT id FROM product_variants WHERE product_id").
		WithArgs(testProductID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	for _, table := range []string{
		"product_images", "product_features", "product_tags", "product_faqs",
		"product_testimonial_videos", "customer_testimonials", "product_variants",
	} {
		mock.ExpectExec("DELETE FROM " + table).
			WithArgs(testProductID).
			WillReturnResult(sqlmock.NewResult(0, 3))
	}

	// Only name, slug and price may reach the row; description, sku, seo and
	// reference columns stay untouched when the caller omits them.
	mock.ExpectExec(`UPDATE products SET name = \$1, slug = \$2, price = \$3, updated_at = now\(\) WHERE id = \$4`).
		WithArgs("Winter Coat", "winter-coat", 49.99, testProductID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := performRequest(UpdateProduct, http.MethodPut, "/api/products/"+testProductID,
		`{"name":"Winter Coat","price":49.99}`,
		gin.Params{{Key: "id", Value: testProductID}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProductSuppliedEmptyFieldsClearColumns(t *testing.T) {
	mock, cleanup := newMockDB(t)
	defer cleanup()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery("SELECT name, slug, category_id, brand_id FROM products").
		WithArgs(testProductID).
		WillReturnRows(sqlmock.NewRows([]string{"name", "slug", "category_id", "brand_id"}).
			AddRow("Winter Coat", "winter-coat", nil, nil))
	mock.ExpectQuery("SELECT id FROM product_variants WHERE product_id").
		WithArgs(testProductID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	for _, table := range []string{
		"product_images", "product_features", "product_tags", "product_faqs",
		"product_testimonial_videos", "customer_testimonials", "product_variants",
	} {
		mock.ExpectExec("DELETE FROM " + table).
			WithArgs(testProductID).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	// An explicit empty description is a deliberate clear, written as NULL.
	mock.ExpectExec(`UPDATE products SET name = \$1, slug = \$2, description = \$3, updated_at = now\(\) WHERE id = \$4`).
		WithArgs("Winter Coat", "winter-coat", nil, testProductID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := performRequest(UpdateProduct, http.MethodPut, "/api/products/"+testProductID,
		`{"name":"Winter Coat","description":""}`,
		gin.Params{{Key: "id", Value: testProductID}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProductVariantPrefetchFailureSkipsVariantPurge(t *testing.T) {
	mock, cleanup := newMockDB(t)
	defer cleanup()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery("SELECT name, slug, category_id, brand_id FROM products").
		WithArgs(testProductID).
		WillReturnRows(sqlmock.NewRows([]string{"name", "slug", "category_id", "brand_id"}).
			AddRow("Winter Coat", "winter-coat", nil, nil))
	mock.ExpectQuery("SELECT id FROM product_variants WHERE product_id").
		WithArgs(testProductID).
		WillReturnError(sql.ErrConnDone)

	// Only the non-variant child tables are purged.
	for _, table := range []string{
		"product_images", "product_features", "product_tags", "product_faqs",
		"product_testimonial_videos", "customer_testimonials",
	} {
		mock.ExpectExec("DELETE FROM " + table).
			WithArgs(testProductID).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	mock.ExpectExec("UPDATE products SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := performRequest(UpdateProduct, http.MethodPut, "/api/products/"+testProductID,
		`{"name":"Winter Coat","price":49.99}`,
		gin.Params{{Key: "id", Value: testProductID}})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.NotEmpty(t, body["errors"])
	assert.Contains(t, body["errors"].([]interface{})[0].(string), "variant ids")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProductNotFound(t *testing.T) {
	mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT name, slug, category_id, brand_id FROM products").
		WithArgs(testProductID).
		WillReturnError(sql.ErrNoRows)

	w := performRequest(UpdateProduct, http.MethodPut, "/api/products/"+testProductID,
		`{"name":"Winter Coat","price":49.99}`,
		gin.Params{{Key: "id", Value: testProductID}})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProductInvalidPayloadLeavesRowAlone(t *testing.T) {
	mock, cleanup := newMockDB(t)
	defer cleanup()

	w := performRequest(UpdateProduct, http.MethodPut, "/api/products/"+testProductID,
		`{"name":"Winter Coat","price":-1}`,
		gin.Params{{Key: "id", Value: testProductID}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProduct(t *testing.T) {
	mock, cleanup := newMockDB(t)
	defer cleanup()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery("SELECT slug, category_id, brand_id FROM products").
		WithArgs(testProductID).
		WillReturnRows(sqlmock.NewRows([]string{"slug", "category_id", "brand_id"}).
			AddRow("winter-coat", nil, nil))
	mock.ExpectQuery("SELECT id FROM product_variants WHERE product_id").
		WithArgs(testProductID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	for _, table := range []string{
		"product_images", "product_features", "product_tags", "product_faqs",
		"product_testimonial_videos", "customer_testimonials", "product_variants",
	} {
		mock.ExpectExec("DELETE FROM " + table).
			WithArgs(testProductID).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec("DELETE FROM products").
		WithArgs(testProductID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := performRequest(DeleteProduct, http.MethodDelete, "/api/products/"+testProductID, "",
		gin.Params{{Key: "id", Value: testProductID}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProductInvalidID(t *testing.T) {
	_, cleanup := newMockDB(t)
	defer cleanup()

	w := performRequest(DeleteProduct, http.MethodDelete, "/api/products/nope", "",
		gin.Params{{Key: "id", Value: "nope"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
