package handlers

import (
	"database/sql"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

const testBrandID = "66666666-7777-8888-9999-aaaaaaaaaaaa"

func TestCreateBrand(t *testing.T) {
	mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id FROM brands WHERE slug").
		WithArgs("acme").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO brands").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := performRequest(CreateBrand, http.MethodPost, "/api/brands",
		`{"name":"Acme"}`, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "acme", decodeBody(t, w)["slug"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBrandTakenSlugGetsSuffix(t *testing.T) {
	mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id FROM brands WHERE slug").
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testBrandID))
	mock.ExpectQuery("SELECT id FROM brands WHERE slug").
		WithArgs("acme-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO brands").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := performRequest(CreateBrand, http.MethodPost, "/api/brands",
		`{"name":"Acme"}`, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "acme-1", decodeBody(t, w)["slug"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBrandRejectedWhenReferenced(t *testing.T) {
	mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT slug FROM brands").
		WithArgs(testBrandID).
		WillReturnRows(sqlmock.NewRows([]string{"slug"}).AddRow("acme"))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM products WHERE brand_id").
		WithArgs(testBrandID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	w := performRequest(DeleteBrand, http.MethodDelete, "/api/brands/"+testBrandID, "",
		gin.Params{{Key: "id", Value: testBrandID}})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBrandNotFound(t *testing.T) {
	mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT slug FROM brands").
		WithArgs(testBrandID).
		WillReturnError(sql.ErrNoRows)

	w := performRequest(DeleteBrand, http.MethodDelete, "/api/brands/"+testBrandID, "",
		gin.Params{{Key: "id", Value: testBrandID}})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
