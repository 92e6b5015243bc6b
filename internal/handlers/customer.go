package handlers

import (
	"net/http"
	"strconv"

	"github.com/Abel-cordero/ORDEN/internal/models"
	"github.com/Abel-cordero/ORDEN/internal/registry"
	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	reg *registry.Registry
}

func NewCustomerHandler(reg *registry.Registry) *CustomerHandler {
	return &CustomerHandler{reg: reg}
}

// RegisterCustomer creates a new customer record from the intake form.
func (h *CustomerHandler) RegisterCustomer(c *gin.Context) {
	var req models.RegisterCustomerRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	id, err := h.reg.RegisterCustomer(req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "invalid customer id")
		return
	}

	customer, err := h.reg.GetCustomer(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

// SearchCustomers backs the "buscar cliente" dialog: the front desk checks
// phone or DNI before registering a duplicate record.
func (h *CustomerHandler) SearchCustomers(c *gin.Context) {
	phone := c.Query("phone")
	nationalID := c.Query("national_id")
	if phone == "" && nationalID == "" {
		badRequest(c, "provide phone or national_id")
		return
	}

	customers, err := h.reg.FindCustomers(phone, nationalID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"customers": customers, "total": len(customers)})
}
