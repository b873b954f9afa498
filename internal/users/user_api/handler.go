package user_api

import (
	"net/http"

	"ms-servicing/internal/auth"
	"ms-servicing/internal/logger"
	"ms-servicing/internal/models"
	users "ms-servicing/internal/users/service"
	"ms-servicing/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	UserService *users.UserService
	// Issuer is nil when tokens come from an external OIDC provider; the
	// login route is then not mounted.
	Issuer *auth.Issuer
	Logger *logger.Logger
}

func NewHandler(userService *users.UserService, issuer *auth.Issuer, log *logger.Logger) *Handler {
	return &Handler{UserService: userService, Issuer: issuer, Logger: log}
}

func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/signup", h.Signup)
	if h.Issuer != nil {
		r.Post("/login", h.Login)
	}
}

func (h *Handler) RegisterCustomerRoutes(r chi.Router) {
	r.Get("/me", h.Me)
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/customers", h.ListCustomers)
}

// Signup always creates a Customer. Admin accounts are created with the
// migrate tool.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, "Invalid signup request", err)
		return
	}
	req.Role = models.RoleCustomer
	customer, err := h.UserService.Signup(r.Context(), req)
	if err != nil {
		utils.WriteError(w, "Signup failed", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Account created", customer))
}

type LoginResponse struct {
	Token    string           `json:"token"`
	Customer *models.Customer `json:"customer"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, "Invalid login request", err)
		return
	}
	customer, err := h.UserService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		utils.WriteError(w, "Login failed", err)
		return
	}
	token, err := h.Issuer.Issue(customer)
	if err != nil {
		utils.WriteError(w, "Login failed", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Logged in", LoginResponse{Token: token, Customer: customer}))
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	customer, err := h.UserService.Get(r.Context(), auth.CustomerID(r.Context()))
	if err != nil {
		utils.WriteError(w, "Failed to load profile", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Profile retrieved", customer))
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	list, err := h.UserService.List(r.Context())
	if err != nil {
		utils.WriteError(w, "Failed to fetch customers", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Customers retrieved", list))
}
