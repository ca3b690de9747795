package router

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/Renal37/fuel-orders/internal/middlewares"
	"github.com/Renal37/fuel-orders/internal/models"
	"github.com/Renal37/fuel-orders/internal/services"
	"github.com/go-chi/chi/v5"
)

type advanceRequest struct {
	Status models.OrderStatus `json:"status"`
}

type advanceResponse struct {
	models.AdvanceIntent
	Prompt string `json:"prompt"`
}

// statusChangeRequest commits a proposed change. Confirmed must be true for the
// change to be sent to the fuel order API.
type statusChangeRequest struct {
	From      models.OrderStatus `json:"from"`
	To        models.OrderStatus `json:"to"`
	Confirmed bool               `json:"confirmed"`
}

func CreateOrder(w http.ResponseWriter, r *http.Request) {
	data, ok := middlewares.GetParsedJSONData[models.NewOrder](w, r)
	if !ok {
		return
	}

	session := middlewares.GetSessionFromContext(w, r)
	orderService := middlewares.GetServiceFromContext[models.OrderService](w, r, middlewares.OrderServiceKey)
	if session == nil || orderService == nil {
		return
	}

	order, err := (*orderService).CreateOrder(r.Context(), session, data)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middlewares.EncodeJSONResponse(w, http.StatusCreated, order)
}

func ListOrders(w http.ResponseWriter, r *http.Request) {
	filter, page, err := parseListQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	session := middlewares.GetSessionFromContext(w, r)
	orderService := middlewares.GetServiceFromContext[models.OrderService](w, r, middlewares.OrderServiceKey)
	if session == nil || orderService == nil {
		return
	}

	result, err := (*orderService).ListOrders(r.Context(), session, filter, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middlewares.EncodeJSONResponse(w, http.StatusOK, result)
}

func parseListQuery(r *http.Request) (models.OrderFilter, models.PageRequest, error) {
	query := r.URL.Query()
	verr := &services.ValidationError{}

	filter := models.OrderFilter{
		AirportIcao: query.Get("airportIcao"),
		TailNumber:  query.Get("tailNumber"),
	}

	if raw := query.Get("status"); raw != "" {
		status, err := models.ParseOrderStatus(raw)
		if err != nil {
			verr.Fields = append(verr.Fields, services.FieldError{Field: "status", Message: "is not a known order status"})
		} else {
			filter.Status = &status
		}
	}

	page := models.PageRequest{Page: 0, Size: models.DefaultPageSize}

	for _, param := range []struct {
		name  string
		value *int
	}{
		{"page", &page.Page},
		{"size", &page.Size},
	} {
		raw := strings.TrimSpace(query.Get(param.name))
		if raw == "" {
			continue
		}

		n, err := strconv.Atoi(raw)
		if err != nil {
			verr.Fields = append(verr.Fields, services.FieldError{Field: param.name, Message: "must be an integer"})
			continue
		}
		*param.value = n
	}

	if len(verr.Fields) > 0 {
		return filter, page, verr
	}

	return filter, page, nil
}

// ProposeAdvance tells the client which status the order would move to and what to ask the user.
func ProposeAdvance(w http.ResponseWriter, r *http.Request) {
	data, ok := middlewares.GetParsedJSONData[advanceRequest](w, r)
	if !ok {
		return
	}

	if !data.Status.IsKnown() {
		writeError(w, r, &services.ValidationError{Fields: []services.FieldError{{Field: "status", Message: "is not a known order status"}}})
		return
	}

	intent, err := services.ProposeAdvance(chi.URLParam(r, "id"), data.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middlewares.EncodeJSONResponse(w, http.StatusOK, advanceResponse{AdvanceIntent: intent, Prompt: intent.Prompt()})
}

func ChangeStatus(w http.ResponseWriter, r *http.Request) {
	data, ok := middlewares.GetParsedJSONData[statusChangeRequest](w, r)
	if !ok {
		return
	}

	session := middlewares.GetSessionFromContext(w, r)
	orderService := middlewares.GetServiceFromContext[models.OrderService](w, r, middlewares.OrderServiceKey)
	if session == nil || orderService == nil {
		return
	}

	intent := models.AdvanceIntent{OrderID: chi.URLParam(r, "id"), From: data.From, To: data.To}
	confirmer := models.ConfirmFunc(func(ctx context.Context, intent models.AdvanceIntent) (bool, error) {
		return data.Confirmed, nil
	})

	order, err := (*orderService).AdvanceStatus(r.Context(), session, intent, confirmer)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middlewares.EncodeJSONResponse(w, http.StatusOK, order)
}

func GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	auditService := middlewares.GetServiceFromContext[models.AuditService](w, r, middlewares.AuditServiceKey)
	if auditService == nil {
		return
	}

	entries, err := (*auditService).History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	middlewares.EncodeJSONResponse(w, http.StatusOK, entries)
}
