package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"studiodesk/internal/domain/client"
	"studiodesk/internal/services/support"
	"studiodesk/pkg/errors"
)

// result renders a query layer outcome.
// Missing documents become 404 with notFound, bad input 400, anything else 500 prefixed by failure.
func result(c echo.Context, value interface{}, err error, failure, notFound string) error {
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, value)
	case notFound != "" && errors.Is(err, errors.ErrNotFound):
		return errorJSON(c, http.StatusNotFound, notFound)
	case errors.Is(err, errors.ErrInvalidInput):
		return errorJSON(c, http.StatusBadRequest, err.Error())
	default:
		return errorJSON(c, http.StatusInternalServerError, failure+": "+err.Error())
	}
}

// list keeps empty results rendering as [] instead of null
func list[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func requiredParam(c echo.Context, name string) (string, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return "", errors.NewValidationError(name, "is required", v)
	}
	return v, nil
}

func (h *handlers) searchClients(c echo.Context) error {
	clients, err := h.support.SearchClients(c.Request().Context(), client.Filter{
		Name:  c.QueryParam("name"),
		Email: c.QueryParam("email"),
		Phone: c.QueryParam("phone"),
	})
	return result(c, list(clients), err, "Error searching for clients", "")
}

func (h *handlers) ordersByClient(c echo.Context) error {
	clientID, err := requiredParam(c, "client_id")
	if err != nil {
		return result(c, nil, err, "", "")
	}
	orders, err := h.support.GetOrdersByClient(c.Request().Context(), clientID)
	return result(c, list(orders), err, "Error retrieving orders for client "+clientID, "")
}

func (h *handlers) orderByID(c echo.Context) error {
	orderID, err := requiredParam(c, "order_id")
	if err != nil {
		return result(c, nil, err, "", "")
	}
	o, err := h.support.GetOrderByID(c.Request().Context(), orderID)
	return result(c, o, err, "Error retrieving order "+orderID, "Order not found")
}

func (h *handlers) ordersByStatus(c echo.Context) error {
	status, err := requiredParam(c, "status")
	if err != nil {
		return result(c, nil, err, "", "")
	}
	orders, err := h.support.FilterOrdersByStatus(c.Request().Context(), status)
	return result(c, list(orders), err, "Error filtering orders by status "+status, "")
}

func (h *handlers) paymentDetails(c echo.Context) error {
	orderID, err := requiredParam(c, "order_id")
	if err != nil {
		return result(c, nil, err, "", "")
	}
	p, err := h.support.GetPaymentDetails(c.Request().Context(), orderID)
	return result(c, p, err, "Error retrieving payment details for order "+orderID, "Payment not found")
}

func (h *handlers) pendingDues(c echo.Context) error {
	clientID, err := requiredParam(c, "client_id")
	if err != nil {
		return result(c, nil, err, "", "")
	}
	dues, err := h.support.CalculatePendingDues(c.Request().Context(), clientID)
	return result(c, dues, err, "Error calculating pending dues for client "+clientID, "")
}

func (h *handlers) upcomingClasses(c echo.Context) error {
	classes, err := h.support.ListUpcomingClasses(c.Request().Context())
	return result(c, list(classes), err, "Error retrieving upcoming classes", "")
}

func (h *handlers) classesByInstructor(c echo.Context) error {
	instructor, err := requiredParam(c, "instructor")
	if err != nil {
		return result(c, nil, err, "", "")
	}
	classes, err := h.support.FilterClassesByInstructor(c.Request().Context(), instructor)
	return result(c, list(classes), err, "Error retrieving classes for instructor "+instructor, "")
}

func (h *handlers) totalRevenue(c echo.Context) error {
	total, err := h.dashboard.TotalRevenue(c.Request().Context())
	return result(c, total, err, "Error calculating total revenue", "")
}

func (h *handlers) outstandingPayments(c echo.Context) error {
	total, err := h.dashboard.OutstandingPayments(c.Request().Context())
	return result(c, total, err, "Error retrieving outstanding payments", "")
}

func (h *handlers) clientCounts(c echo.Context) error {
	counts, err := h.dashboard.ClientCounts(c.Request().Context())
	return result(c, counts, err, "Error counting clients", "")
}

func (h *handlers) newClientsThisMonth(c echo.Context) error {
	n, err := h.dashboard.NewClientsThisMonth(c.Request().Context())
	return result(c, map[string]int64{"new_clients_this_month": n}, err, "Error retrieving new clients", "")
}

func (h *handlers) enrollmentTrends(c echo.Context) error {
	trends, err := h.dashboard.EnrollmentTrends(c.Request().Context())
	return result(c, list(trends), err, "Error retrieving enrollment trends", "")
}

func (h *handlers) topServices(c echo.Context) error {
	top, err := h.dashboard.TopServices(c.Request().Context())
	return result(c, list(top), err, "Error retrieving top services", "")
}

func (h *handlers) completionRates(c echo.Context) error {
	rates, err := h.dashboard.CourseCompletionRates(c.Request().Context())
	return result(c, list(rates), err, "Error retrieving completion rates", "")
}

func (h *handlers) attendancePercentage(c echo.Context) error {
	className, err := requiredParam(c, "class_name")
	if err != nil {
		return result(c, nil, err, "", "")
	}
	rate, err := h.dashboard.AttendancePercentage(c.Request().Context(), className)
	return result(c, rate, err, "Error calculating attendance percentage", "Class not found")
}

// enquiryRequest accepts the fields directly or wrapped in client_data
type enquiryRequest struct {
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	Birthday   string          `json:"birthday"`
	Address    string          `json:"address"`
	Services   []string        `json:"enrolled_services"`
	ClientData *enquiryRequest `json:"client_data"`
}

func (r enquiryRequest) input() (support.EnquiryInput, error) {
	if r.ClientData != nil {
		return r.ClientData.input()
	}
	in := support.EnquiryInput{Name: r.Name, Email: r.Email, Phone: r.Phone, Address: r.Address, EnrolledServices: r.Services}
	if b := strings.TrimSpace(r.Birthday); b != "" {
		t, err := time.Parse(time.DateOnly, b)
		if err != nil {
			return in, errors.NewValidationError("birthday", "must be YYYY-MM-DD", b)
		}
		in.Birthday = &t
	}
	return in, nil
}

func (h *handlers) createClientEnquiry(c echo.Context) error {
	var req enquiryRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	in, err := req.input()
	if err != nil {
		return result(c, nil, err, "", "")
	}

	id, err := h.support.CreateClientEnquiry(c.Request().Context(), in)
	if err != nil {
		return result(c, nil, err, "Error creating client enquiry", "")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Client enquiry created", "client_id": id})
}

type orderRequest struct {
	ClientID    string              `json:"client_id"`
	ServiceInfo support.ServiceInfo `json:"service_info"`
}

func (h *handlers) createOrder(c echo.Context) error {
	var req orderRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}

	id, err := h.support.CreateOrder(c.Request().Context(), req.ClientID, req.ServiceInfo)
	if err != nil {
		return result(c, nil, err, "Error creating order", "")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Order created", "order_id": id})
}
