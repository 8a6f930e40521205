package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/Gunvolt24/orderflow/internal/domain"
	"github.com/Gunvolt24/orderflow/internal/ports/mocks"
	rest "github.com/Gunvolt24/orderflow/internal/transport/http"
	"github.com/Gunvolt24/orderflow/internal/usecase"
	"github.com/Gunvolt24/orderflow/pkg/validate"
)

type noopLogger struct{}

func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

const (
	orderIDStr    = "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d"
	trackingIDStr = "16fd2706-8baf-433b-82eb-8c7fada847da"
	customerIDStr = "c56a4180-65aa-42ec-a945-5fd21dec0538"
	shopIDStr     = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
)

func mustOrderID(t *testing.T, s string) domain.OrderID {
	t.Helper()
	id, err := domain.ParseOrderID(s)
	if err != nil {
		t.Fatalf("parse order id: %v", err)
	}
	return id
}

func newRouter(t *testing.T) (*mocks.MockOrderService, http.Handler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockOrderService(ctrl)
	h := rest.NewHandler(svc, noopLogger{}, 0)
	return svc, rest.NewRouter(h, "", "test")
}

func createOrderBody() string {
	return fmt.Sprintf(`{
		"customer_id": %q,
		"shop_id": %q,
		"delivery_address": {"street": "Тверская, 1", "postal_code": "125009", "city": "Москва"},
		"price": "5.00",
		"items": [
			{"product": {"id": "a7c9c5cb-3bd0-4a0b-9d6e-2f7a42c9a111", "name": "Widget", "price": "2.50"},
			 "quantity": 2, "price": "2.50", "sub_total": "5.00"}
		]
	}`, customerIDStr, shopIDStr)
}

func TestCreateOrder_Created(t *testing.T) {
	svc, r := newRouter(t)

	svc.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, order *domain.Order) error {
			if order.CustomerID.String() != customerIDStr {
				t.Fatalf("wrong customer id: %s", order.CustomerID)
			}
			if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
				t.Fatalf("items not mapped: %+v", order.Items)
			}
			// сервис присваивает идентификаторы и статус
			order.ID = mustOrderID(t, orderIDStr)
			tid, _ := domain.ParseTrackingID(trackingIDStr)
			order.TrackingID = tid
			order.Status = domain.StatusPending
			return nil
		})

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(createOrderBody()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d, body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		OrderID    string `json:"order_id"`
		TrackingID string `json:"tracking_id"`
		Status     string `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.OrderID != orderIDStr || resp.TrackingID != trackingIDStr || resp.Status != "PENDING" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCreateOrder_BadJSON(t *testing.T) {
	_, r := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestCreateOrder_ValidationError(t *testing.T) {
	svc, r := newRouter(t)

	svc.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("validation failed: %w: price должен быть больше нуля", validate.ErrInvalidOrder))

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(createOrderBody()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestCreateOrder_BusinessRuleViolation(t *testing.T) {
	svc, r := newRouter(t)

	svc.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("%w: shop %s is currently not active", domain.ErrBusinessRule, shopIDStr))

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(createOrderBody()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("want 409, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestGetOrder_Found(t *testing.T) {
	svc, r := newRouter(t)

	id := mustOrderID(t, orderIDStr)
	want := &domain.Order{ID: id, Status: domain.StatusPending}
	svc.EXPECT().GetOrder(gomock.Any(), id).Return(want, nil)

	req := httptest.NewRequest(http.MethodGet, "/order/"+orderIDStr, http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var got domain.Order
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.ID != id {
		t.Fatalf("wrong order id: %v", got.ID)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	svc, r := newRouter(t)

	svc.EXPECT().GetOrder(gomock.Any(), gomock.Any()).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/order/"+orderIDStr, http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestGetOrder_BadID(t *testing.T) {
	_, r := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/order/not-a-uuid", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestGetOrder_InternalError(t *testing.T) {
	svc, r := newRouter(t)

	svc.EXPECT().GetOrder(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))

	req := httptest.NewRequest(http.MethodGet, "/order/"+orderIDStr, http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestTrackOrder_Found(t *testing.T) {
	svc, r := newRouter(t)

	tid, _ := domain.ParseTrackingID(trackingIDStr)
	order := &domain.Order{
		ID:              mustOrderID(t, orderIDStr),
		TrackingID:      tid,
		Status:          domain.StatusCancelling,
		FailureMessages: []string{"insufficient funds"},
	}
	svc.EXPECT().TrackOrder(gomock.Any(), tid).Return(order, nil)

	req := httptest.NewRequest(http.MethodGet, "/track/"+trackingIDStr, http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var got struct {
		TrackingID      string   `json:"tracking_id"`
		Status          string   `json:"status"`
		FailureMessages []string `json:"failure_messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.TrackingID != trackingIDStr || got.Status != "CANCELLING" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if len(got.FailureMessages) != 1 || got.FailureMessages[0] != "insufficient funds" {
		t.Fatalf("failure messages not exposed: %+v", got)
	}
	// внутренний id наружу не отдаётся
	if strings.Contains(w.Body.String(), orderIDStr) {
		t.Fatalf("internal order id leaked: %s", w.Body.String())
	}
}

func TestTrackOrder_NotFound(t *testing.T) {
	svc, r := newRouter(t)

	svc.EXPECT().TrackOrder(gomock.Any(), gomock.Any()).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/track/"+trackingIDStr, http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestApproveOrder_OK(t *testing.T) {
	svc, r := newRouter(t)

	id := mustOrderID(t, orderIDStr)
	svc.EXPECT().ApproveOrder(gomock.Any(), id).
		Return(&domain.Order{ID: id, Status: domain.StatusApproved}, nil)

	req := httptest.NewRequest(http.MethodPost, "/order/"+orderIDStr+"/approve", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var got domain.Order
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Status != domain.StatusApproved {
		t.Fatalf("want APPROVED, got %s", got.Status)
	}
}

func TestApproveOrder_WrongState(t *testing.T) {
	svc, r := newRouter(t)

	svc.EXPECT().ApproveOrder(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: order in status PENDING is not in correct state for approve operation", domain.ErrBusinessRule))

	req := httptest.NewRequest(http.MethodPost, "/order/"+orderIDStr+"/approve", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("want 409, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestApproveOrder_NotFound(t *testing.T) {
	svc, r := newRouter(t)

	svc.EXPECT().ApproveOrder(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: id=%s", usecase.ErrOrderNotFound, orderIDStr))

	req := httptest.NewRequest(http.MethodPost, "/order/"+orderIDStr+"/approve", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestCancelOrder_WithReasons(t *testing.T) {
	svc, r := newRouter(t)

	id := mustOrderID(t, orderIDStr)
	svc.EXPECT().CancelOrder(gomock.Any(), id, []string{"customer request"}).
		Return(&domain.Order{ID: id, Status: domain.StatusCancelled, FailureMessages: []string{"customer request"}}, nil)

	body := strings.NewReader(`{"failure_messages": ["customer request"]}`)
	req := httptest.NewRequest(http.MethodPost, "/order/"+orderIDStr+"/cancel", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var got domain.Order
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Status != domain.StatusCancelled {
		t.Fatalf("want CANCELLED, got %s", got.Status)
	}
}

func TestCancelOrder_EmptyBody(t *testing.T) {
	svc, r := newRouter(t)

	id := mustOrderID(t, orderIDStr)
	svc.EXPECT().CancelOrder(gomock.Any(), id, gomock.Nil()).
		Return(&domain.Order{ID: id, Status: domain.StatusCancelled}, nil)

	req := httptest.NewRequest(http.MethodPost, "/order/"+orderIDStr+"/cancel", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestListOrdersByCustomer_OK_Default(t *testing.T) {
	svc, r := newRouter(t)

	customerID, _ := domain.ParseCustomerID(customerIDStr)
	ret := []*domain.Order{
		{ID: domain.NewOrderID(), CustomerID: customerID},
		{ID: domain.NewOrderID(), CustomerID: customerID},
	}
	svc.EXPECT().OrdersByCustomer(gomock.Any(), customerID, 20, 0).Return(ret, nil)

	req := httptest.NewRequest(http.MethodGet, "/customer/"+customerIDStr+"/orders", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var got []*domain.Order
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 orders, got %d", len(got))
	}
}

func TestListOrdersByCustomer_OK_WithParams(t *testing.T) {
	svc, r := newRouter(t)

	customerID, _ := domain.ParseCustomerID(customerIDStr)
	svc.EXPECT().OrdersByCustomer(gomock.Any(), customerID, 3, 7).
		Return([]*domain.Order{{ID: domain.NewOrderID()}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/customer/"+customerIDStr+"/orders?limit=3&offset=7", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestListOrdersByCustomer_BadID(t *testing.T) {
	_, r := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/customer/bad-id/orders", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestNoRoute_404(t *testing.T) {
	_, r := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/no-such-route", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestMethodNotAllowed_405(t *testing.T) {
	_, r := newRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/order/"+orderIDStr, http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("want 405, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestPing_200(t *testing.T) {
	_, r := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestMetrics_200(t *testing.T) {
	_, r := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	if w.Body.Len() == 0 {
		t.Fatal("metrics body is empty")
	}
}
