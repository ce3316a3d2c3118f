package orders

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/farmcart/farmcart-backend/api/middleware"
	"github.com/farmcart/farmcart-backend/api/responses"
	"github.com/farmcart/farmcart-backend/api/validators"
	orderssvc "github.com/farmcart/farmcart-backend/internal/orders"
	"github.com/farmcart/farmcart-backend/pkg/db/models"
	"github.com/farmcart/farmcart-backend/pkg/enums"
	pkgerrors "github.com/farmcart/farmcart-backend/pkg/errors"
	"github.com/farmcart/farmcart-backend/pkg/logger"
	"github.com/farmcart/farmcart-backend/pkg/pagination"
)

type createOrderRequest struct {
	DeliveryMethod string                   `json:"delivery_method" validate:"omitempty,oneof=delivery pickup"`
	Notes          *string                  `json:"notes" validate:"omitempty,max=2000"`
	Items          []createOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type createOrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type transitionRequest struct {
	Status    string  `json:"status" validate:"required"`
	SellerKey *string `json:"seller_key" validate:"omitempty,max=320"`
	Note      string  `json:"note" validate:"omitempty,max=2000"`
}

type orderResponse struct {
	Order          *models.Order                `json:"order"`
	SellerStatuses []orderssvc.SellerStatusView `json:"seller_statuses"`
}

type transitionResponse struct {
	Order          *models.Order                `json:"order"`
	SellerStatuses []orderssvc.SellerStatusView `json:"seller_statuses"`
	StockRestored  bool                         `json:"stock_restored"`
	SellerScoped   bool                         `json:"seller_scoped"`
}

type deleteResponse struct {
	Deleted int `json:"deleted"`
}

func actorFromContext(r *http.Request) (uuid.UUID, *uuid.UUID, enums.ActorRole, error) {
	userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	role := enums.ActorRole(middleware.RoleFromContext(r.Context()))
	var farmID *uuid.UUID
	if raw := middleware.FarmIDFromContext(r.Context()); raw != "" {
		if parsed, err := uuid.Parse(raw); err == nil {
			farmID = &parsed
		}
	}
	return userID, farmID, role, nil
}

func orderIDFromPath(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "orderID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return id, nil
}

// Create places a new order for the authenticated buyer.
func Create(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orderssvc.CreateOrderInput{
			BuyerID: userID,
			Notes:   body.Notes,
			Items:   make([]orderssvc.CreateOrderItemInput, 0, len(body.Items)),
		}
		if body.DeliveryMethod != "" {
			method, err := enums.ParseDeliveryMethod(body.DeliveryMethod)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery method"))
				return
			}
			input.DeliveryMethod = method
		}
		for _, item := range body.Items {
			productID, err := uuid.Parse(item.ProductID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
				return
			}
			input.Items = append(input.Items, orderssvc.CreateOrderItemInput{ProductID: productID, Quantity: item.Quantity})
		}

		order, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, orderResponse{
			Order:          order,
			SellerStatuses: orderssvc.SellerStatusViews(order),
		})
	}
}

// List returns the buyer's order history, newest first.
func List(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orderssvc.ListBuyerOrdersInput{
			BuyerID: userID,
			Page: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status := enums.OrderStatus(raw)
			if !status.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown status filter"))
				return
			}
			input.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("date_from")); raw != "" {
			from, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date_from"))
				return
			}
			input.DateFrom = &from
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("date_to")); raw != "" {
			to, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date_to"))
				return
			}
			input.DateTo = &to
		}

		list, err := svc.ListBuyerOrders(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Get returns one order with its derived seller statuses.
func Get(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID, userID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderResponse{
			Order:          order,
			SellerStatuses: orderssvc.SellerStatusViews(order),
		})
	}
}

// Transition applies a status change, optionally scoped to one seller.
func Transition(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, farmID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body transitionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		result, err := svc.Transition(r.Context(), orderssvc.TransitionInput{
			OrderID:     orderID,
			NewStatus:   status,
			SellerKey:   body.SellerKey,
			Note:        body.Note,
			ActorUserID: userID,
			ActorFarmID: farmID,
			ActorRole:   role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, transitionResponse{
			Order:          result.Order,
			SellerStatuses: orderssvc.SellerStatusViews(result.Order),
			StockRestored:  result.StockRestored,
			SellerScoped:   result.SellerScoped,
		})
	}
}

// Delete removes a cancelled or freshly pending order.
func Delete(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), orderssvc.DeleteInput{
			OrderID:     orderID,
			ActorUserID: userID,
			ActorRole:   role,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deleteResponse{Deleted: 1})
	}
}

// ValidateReorder reports whether a past order can be purchased again.
func ValidateReorder(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.ValidateReorder(r.Context(), orderID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
