package vehicle_api

import (
	"net/http"

	"ms-servicing/internal/auth"
	"ms-servicing/internal/catalog"
	"ms-servicing/internal/logger"
	"ms-servicing/internal/models"
	"ms-servicing/internal/utils"
	vehicles "ms-servicing/internal/vehicles/service"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	VehicleService *vehicles.VehicleService
	Catalog        *catalog.Catalog
	Logger         *logger.Logger
}

func NewHandler(vehicleService *vehicles.VehicleService, cat *catalog.Catalog, log *logger.Logger) *Handler {
	return &Handler{VehicleService: vehicleService, Catalog: cat, Logger: log}
}

func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/catalog", h.GetCatalog)
}

func (h *Handler) RegisterCustomerRoutes(r chi.Router) {
	r.Route("/vehicles", func(r chi.Router) {
		r.Post("/", h.RegisterVehicle)
		r.Get("/", h.ListVehicles)
	})
}

func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Catalog retrieved", h.Catalog.View()))
}

func (h *Handler) RegisterVehicle(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterVehicleRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, "Invalid vehicle request", err)
		return
	}
	vehicle, err := h.VehicleService.Register(r.Context(), auth.CustomerID(r.Context()), req)
	if err != nil {
		utils.WriteError(w, "Failed to register vehicle", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Vehicle registered", vehicle))
}

func (h *Handler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	list, err := h.VehicleService.ListForCustomer(r.Context(), auth.CustomerID(r.Context()))
	if err != nil {
		utils.WriteError(w, "Failed to fetch vehicles", err)
		return
	}
	if list == nil {
		list = []models.Vehicle{}
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Vehicles retrieved", list))
}
