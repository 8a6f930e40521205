package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Gunvolt24/orderflow/internal/domain"
	"github.com/Gunvolt24/orderflow/internal/ports"
	"github.com/Gunvolt24/orderflow/internal/usecase"
	"github.com/Gunvolt24/orderflow/pkg/httpx"
	"github.com/Gunvolt24/orderflow/pkg/validate"
)

type Handler struct {
	service        ports.OrderService
	log            ports.Logger
	handlerTimeout time.Duration
}

func NewHandler(service ports.OrderService, log ports.Logger, handlerTimeout time.Duration) *Handler {
	return &Handler{service: service, log: log, handlerTimeout: handlerTimeout}
}

// NewRouter — сборка маршрутов. otelServiceName непустой — включаем otelgin.
func NewRouter(h *Handler, staticDir, otelServiceName string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(httpx.RequestIDMiddleware())
	if otelServiceName != "" {
		r.Use(otelgin.Middleware(otelServiceName))
	}
	r.Use(httpx.RequestLogger(h.log))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/orders", h.createOrder)
	r.GET("/order/:id", h.getOrderByID)
	r.POST("/order/:id/approve", h.approveOrder)
	r.POST("/order/:id/cancel", h.cancelOrder)
	r.GET("/track/:id", h.trackOrder)
	r.GET("/customer/:id/orders", h.listOrdersByCustomer)

	if staticDir != "" {
		r.Static("/static", staticDir)
		r.StaticFile("/", filepath.Join(staticDir, "index.html"))
	}

	return r
}

// requestContext — контекст хендлера с таймаутом (0 — без таймаута).
func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	ctx := c.Request.Context()
	if h.handlerTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, h.handlerTimeout)
}

// createOrderItem — позиция заказа во входящем документе.
type createOrderItem struct {
	Product  domain.Product `json:"product"`
	Quantity int64          `json:"quantity"`
	Price    domain.Money   `json:"price"`
	SubTotal domain.Money   `json:"sub_total"`
}

// createOrderRequest — входящий документ создания заказа.
// Идентификаторы, трекинг и статус назначает сервер.
type createOrderRequest struct {
	CustomerID      domain.CustomerID      `json:"customer_id"`
	ShopID          domain.ShopID          `json:"shop_id"`
	DeliveryAddress domain.DeliveryAddress `json:"delivery_address"`
	Price           domain.Money           `json:"price"`
	Items           []createOrderItem      `json:"items"`
}

func (r *createOrderRequest) toDomain() *domain.Order {
	items := make([]domain.OrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, domain.OrderItem{
			Product:  it.Product,
			Quantity: it.Quantity,
			Price:    it.Price,
			SubTotal: it.SubTotal,
		})
	}
	return domain.NewOrder(domain.OrderConfig{
		CustomerID:      r.CustomerID,
		ShopID:          r.ShopID,
		DeliveryAddress: r.DeliveryAddress,
		Price:           r.Price,
		Items:           items,
	})
}

// createOrderResponse — подтверждение приёма заказа.
type createOrderResponse struct {
	OrderID    domain.OrderID     `json:"order_id"`
	TrackingID domain.TrackingID  `json:"tracking_id"`
	Status     domain.OrderStatus `json:"status"`
}

func (h *Handler) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	order := req.toDomain()
	if err := h.service.CreateOrder(ctx, order); err != nil {
		h.respondError(c, ctx, "CreateOrder", err)
		return
	}

	c.JSON(http.StatusCreated, createOrderResponse{
		OrderID:    order.ID,
		TrackingID: order.TrackingID,
		Status:     order.Status,
	})
}

func (h *Handler) getOrderByID(c *gin.Context) {
	id, err := domain.ParseOrderID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	order, err := h.service.GetOrder(ctx, id)
	if err != nil {
		h.respondError(c, ctx, "GetOrder", err)
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) trackOrder(c *gin.Context) {
	trackingID, err := domain.ParseTrackingID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tracking id"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	order, err := h.service.TrackOrder(ctx, trackingID)
	if err != nil {
		h.respondError(c, ctx, "TrackOrder", err)
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	// Трекинг — клиентская выдача: только статус и причины отказа.
	c.JSON(http.StatusOK, gin.H{
		"tracking_id":      order.TrackingID,
		"status":           order.Status,
		"failure_messages": order.FailureMessages,
	})
}

func (h *Handler) approveOrder(c *gin.Context) {
	id, err := domain.ParseOrderID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	order, err := h.service.ApproveOrder(ctx, id)
	if err != nil {
		h.respondError(c, ctx, "ApproveOrder", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// cancelOrderRequest — причины отмены; тело запроса может отсутствовать.
type cancelOrderRequest struct {
	FailureMessages []string `json:"failure_messages"`
}

func (h *Handler) cancelOrder(c *gin.Context) {
	id, err := domain.ParseOrderID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req cancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	order, err := h.service.CancelOrder(ctx, id, req.FailureMessages)
	if err != nil {
		h.respondError(c, ctx, "CancelOrder", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) listOrdersByCustomer(c *gin.Context) {
	customerID, err := domain.ParseCustomerID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer id"})
		return
	}

	limit, offset := httpx.ParseLimitOffset(c, 20, 100)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	orders, err := h.service.OrdersByCustomer(ctx, customerID, limit, offset)
	if err != nil {
		h.respondError(c, ctx, "OrdersByCustomer", err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// respondError — единое отображение ошибок сервиса в HTTP-статусы:
// невалидный документ — 400, нарушение бизнес-правила — 409,
// отсутствующий заказ — 404, остальное — 500.
func (h *Handler) respondError(c *gin.Context, ctx context.Context, op string, err error) {
	switch {
	case errors.Is(err, validate.ErrInvalidOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrBusinessRule):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	default:
		h.log.Errorf(ctx, "%s failed err=%v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
