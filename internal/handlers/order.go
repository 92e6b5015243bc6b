package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Abel-cordero/ORDEN/internal/models"
	"github.com/Abel-cordero/ORDEN/internal/registry"
	"github.com/Abel-cordero/ORDEN/internal/services"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	reg        *registry.Registry
	smsService services.SMSServiceInterface
}

func NewOrderHandler(reg *registry.Registry, smsService services.SMSServiceInterface) *OrderHandler {
	return &OrderHandler{
		reg:        reg,
		smsService: smsService,
	}
}

// CreateOrder registers the intake and returns the allocated order number.
// The customer is notified by SMS best effort; delivery problems are logged
// and never fail the intake.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req models.IntakeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	number, err := h.reg.CreateOrder(req)
	if err != nil {
		respondError(c, err)
		return
	}

	if customer, err := h.reg.GetCustomer(req.CustomerID); err == nil {
		if err := h.smsService.SendSMS(customer.Phone, services.IntakeMessage(number)); err != nil {
			slog.Warn("intake SMS not delivered", "order", number, "error", err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{"number": number})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	detail, err := h.reg.FetchOrderDetail(c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// ListOrders serves the history tab.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	customerID, _ := strconv.ParseUint(c.Query("customer_id"), 10, 32)

	filter := models.OrderFilter{
		Status:     models.Status(c.Query("status")),
		CustomerID: uint(customerID),
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}
	orders, total, err := h.reg.ListOrders(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

// UpdateOrder fills in diagnosis, resolution, costs and the other fields the
// technician completes while the repair is underway.
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req models.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.reg.UpdateOrder(c.Param("number"), req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "order updated"})
}

// UpdateStatus advances the order through the repair workflow. When the
// equipment becomes ready, the customer gets a pickup SMS.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	number := c.Param("number")
	status := models.Status(req.Status)
	if err := h.reg.UpdateStatus(number, status); err != nil {
		respondError(c, err)
		return
	}

	if status == models.StatusReady {
		if detail, err := h.reg.FetchOrderDetail(number); err == nil {
			if err := h.smsService.SendSMS(detail.Phone, services.ReadyMessage(number)); err != nil {
				slog.Warn("pickup SMS not delivered", "order", number, "error", err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "status updated", "status": req.Status})
}
