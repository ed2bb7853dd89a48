package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshya-byte/krishinetra-backend/internal/interfaces/http/dto"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestValidationWithDecimalFields(t *testing.T) {
	type listingRequest struct {
		CropName   string          `json:"crop_name" binding:"required,min=1,max=100"`
		QuantityKg decimal.Decimal `json:"quantity_kg" binding:"required,gt=0"`
		PricePerKg decimal.Decimal `json:"price_per_kg" binding:"required,gt=0"`
	}

	SetupValidator()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req listingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	t.Run("accepts positive quantities and prices", func(t *testing.T) {
		body := strings.NewReader(`{"crop_name": "Wheat", "quantity_kg": "500", "price_per_kg": "25.50"}`)
		req := httptest.NewRequest("POST", "/test", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects zero and negative amounts with field details", func(t *testing.T) {
		body := strings.NewReader(`{"crop_name": "Wheat", "quantity_kg": "0", "price_per_kg": "-3"}`)
		req := httptest.NewRequest("POST", "/test", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 2)

		fields := []string{resp.Error.Details[0].Field, resp.Error.Details[1].Field}
		assert.Contains(t, fields, "quantity_kg")
		assert.Contains(t, fields, "price_per_kg")
	})

	t.Run("reports missing fields by their json names", func(t *testing.T) {
		body := strings.NewReader(`{"quantity_kg": "100", "price_per_kg": "10"}`)
		req := httptest.NewRequest("POST", "/test", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "crop_name")
	})
}

func TestGetValidationMessage(t *testing.T) {
	type input struct {
		Name   string `json:"name" binding:"required"`
		Role   string `json:"role" binding:"oneof=FARMER DISTRIBUTOR RETAILER"`
		Remark string `json:"remark" binding:"max=5"`
	}

	v := validator.New()
	err := v.Struct(input{Role: "BROKER", Remark: "too long remark"})
	require.Error(t, err)

	validationErrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok)

	messages := make(map[string]string)
	for _, e := range validationErrs {
		messages[e.StructField()] = getValidationMessage(e)
	}

	assert.Equal(t, "This field is required", messages["Name"])
	assert.Equal(t, "Must be one of: FARMER DISTRIBUTOR RETAILER", messages["Role"])
	assert.Equal(t, "Must be at most 5 characters", messages["Remark"])
}
