package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Abel-cordero/ORDEN/internal/models"
	"github.com/Abel-cordero/ORDEN/internal/registry"
	"github.com/Abel-cordero/ORDEN/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func registerTestCustomer(t *testing.T, reg *registry.Registry) uint {
	t.Helper()
	id, err := reg.RegisterCustomer(models.RegisterCustomerRequest{
		FullName:   "Juan Pérez",
		Address:    "Av. Siempre Viva 123",
		Phone:      "999888777",
		NationalID: "12345678",
	})
	if err != nil {
		t.Fatal("failed to register test customer:", err)
	}
	return id
}

func TestCreateOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := setupTestRegistry(t)
	mockSMSService := services.NewMockSMSService()
	handler := NewOrderHandler(reg, mockSMSService)

	customerID := registerTestCustomer(t, reg)

	tests := []struct {
		name           string
		requestBody    models.IntakeRequest
		expectedStatus int
		expectedError  string
	}{
		{
			name: "valid intake",
			requestBody: models.IntakeRequest{
				CustomerID:    customerID,
				EquipmentType: "Laptop",
				Brand:         "Lenovo",
				Model:         "ThinkPad",
				Fault:         "No enciende",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "missing fault",
			requestBody: models.IntakeRequest{
				CustomerID:    customerID,
				EquipmentType: "Laptop",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid request",
		},
		{
			name: "unknown customer",
			requestBody: models.IntakeRequest{
				CustomerID:    999,
				EquipmentType: "Laptop",
				Fault:         "No enciende",
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			jsonRequest(t, c, "POST", "/orders", tt.requestBody)

			handler.CreateOrder(c)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedError != "" {
				var errorResponse models.ErrorResponse
				json.Unmarshal(w.Body.Bytes(), &errorResponse)
				assert.Equal(t, tt.expectedError, errorResponse.Error)
			}
		})
	}

	t.Run("intake returns the allocated number and notifies the customer", func(t *testing.T) {
		assert.NotEmpty(t, mockSMSService.SentMessages)
		expected := fmt.Sprintf("CS-%d-00001", time.Now().Year())
		assert.Contains(t, mockSMSService.SentMessages[0].Message, expected)
		assert.Equal(t, "999888777", mockSMSService.SentMessages[0].To)
	})
}

func TestGetOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := setupTestRegistry(t)
	handler := NewOrderHandler(reg, services.NewMockSMSService())
	customerID := registerTestCustomer(t, reg)

	number, err := reg.CreateOrder(models.IntakeRequest{
		CustomerID:    customerID,
		EquipmentType: "Laptop",
		Brand:         "Lenovo",
		Fault:         "No enciende",
	})
	assert.NoError(t, err)

	t.Run("existing order", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		req, _ := http.NewRequest("GET", "/orders/"+number, nil)
		c.Request = req
		c.Params = gin.Params{{Key: "number", Value: number}}

		handler.GetOrder(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var detail models.OrderDetail
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
		assert.Equal(t, number, detail.Number)
		assert.Equal(t, "Juan Pérez", detail.CustomerName)
		assert.Equal(t, "No enciende", detail.Fault)
	})

	t.Run("unknown order", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		req, _ := http.NewRequest("GET", "/orders/CS-1999-00001", nil)
		c.Request = req
		c.Params = gin.Params{{Key: "number", Value: "CS-1999-00001"}}

		handler.GetOrder(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := setupTestRegistry(t)
	mockSMSService := services.NewMockSMSService()
	handler := NewOrderHandler(reg, mockSMSService)
	customerID := registerTestCustomer(t, reg)

	number, err := reg.CreateOrder(models.IntakeRequest{
		CustomerID:    customerID,
		EquipmentType: "Laptop",
		Fault:         "No enciende",
	})
	assert.NoError(t, err)

	patchStatus := func(status string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		jsonRequest(t, c, "PATCH", "/orders/"+number+"/status", models.UpdateStatusRequest{Status: status})
		c.Params = gin.Params{{Key: "number", Value: number}}
		handler.UpdateStatus(c)
		return w
	}

	t.Run("advance to diagnosing", func(t *testing.T) {
		w := patchStatus(string(models.StatusDiagnosing))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ready notifies the customer", func(t *testing.T) {
		w := patchStatus(string(models.StatusReady))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, mockSMSService.SentMessages)
		last := mockSMSService.SentMessages[len(mockSMSService.SentMessages)-1]
		assert.Contains(t, last.Message, "listo")
	})

	t.Run("regression is rejected", func(t *testing.T) {
		w := patchStatus(string(models.StatusIngested))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		w := patchStatus("Perdido")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := setupTestRegistry(t)
	handler := NewOrderHandler(reg, services.NewMockSMSService())
	customerID := registerTestCustomer(t, reg)

	number, err := reg.CreateOrder(models.IntakeRequest{
		CustomerID:    customerID,
		EquipmentType: "Laptop",
		Fault:         "No enciende",
	})
	assert.NoError(t, err)

	labor := 150.0
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	jsonRequest(t, c, "PATCH", "/orders/"+number, models.UpdateOrderRequest{
		Diagnosis: "Fuente dañada",
		LaborCost: &labor,
	})
	c.Params = gin.Params{{Key: "number", Value: number}}

	handler.UpdateOrder(c)

	assert.Equal(t, http.StatusOK, w.Code)

	detail, err := reg.FetchOrderDetail(number)
	assert.NoError(t, err)
	assert.Equal(t, "Fuente dañada", detail.Diagnosis)
	assert.Equal(t, 150.0, detail.LaborCost)
}

func TestListOrders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := setupTestRegistry(t)
	handler := NewOrderHandler(reg, services.NewMockSMSService())
	customerID := registerTestCustomer(t, reg)

	for i := 0; i < 3; i++ {
		_, err := reg.CreateOrder(models.IntakeRequest{
			CustomerID:    customerID,
			EquipmentType: "Laptop",
			Fault:         "No enciende",
		})
		assert.NoError(t, err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest("GET", "/orders?limit=2", nil)
	c.Request = req

	handler.ListOrders(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Orders []models.ServiceOrder `json:"orders"`
		Total  int64                 `json:"total"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.EqualValues(t, 3, response.Total)
	assert.Len(t, response.Orders, 2)
}
