package users

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"ms-servicing/internal/apperr"
	"ms-servicing/internal/logger"
	"ms-servicing/internal/models"

	"golang.org/x/crypto/bcrypt"
)

type UserDBLayer interface {
	InsertCustomer(ctx context.Context, c *models.Customer) error
	GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
}

type UserService struct {
	DB         UserDBLayer
	Logger     *logger.Logger
	BcryptCost int
	Now        func() time.Time
}

func NewUserService(db UserDBLayer, log *logger.Logger) *UserService {
	return &UserService{
		DB:         db,
		Logger:     log,
		BcryptCost: bcrypt.DefaultCost,
		Now:        time.Now,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a customer. Role defaults to Customer.
func (s *UserService) Signup(ctx context.Context, req models.SignupRequest) (*models.Customer, error) {
	email := NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		return nil, fmt.Errorf("full name is required: %w", apperr.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("email %q: %w", req.Email, apperr.ErrInvalidInput)
	}
	if req.Password == "" {
		return nil, fmt.Errorf("password is required: %w", apperr.ErrInvalidInput)
	}

	role := req.Role
	switch role {
	case "":
		role = models.RoleCustomer
	case models.RoleCustomer, models.RoleAdmin:
	default:
		return nil, fmt.Errorf("role %q: %w", req.Role, apperr.ErrInvalidInput)
	}

	existing, err := s.DB.GetCustomerByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%s: %w", email, apperr.ErrDuplicateEmail)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	customer := &models.Customer{
		FullName:     name,
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.Now().UTC(),
	}
	if err := s.DB.InsertCustomer(ctx, customer); err != nil {
		return nil, err
	}

	s.Logger.Info("USER", fmt.Sprintf("✅ Customer %d signed up as %s", customer.ID, role))
	return customer, nil
}

// Authenticate checks the password and returns the matching customer.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.Customer, error) {
	customer, err := s.DB.GetCustomerByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperr.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)); err != nil {
		s.Logger.LogSecurity("LOGIN", fmt.Sprintf("Failed login for customer %d", customer.ID))
		return nil, apperr.ErrInvalidCredentials
	}
	return customer, nil
}

// GetByEmail returns nil, nil when no customer has the email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	return s.DB.GetCustomerByEmail(ctx, NormalizeEmail(email))
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.Customer, error) {
	customer, err := s.DB.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("customer %d: %w", id, apperr.ErrCustomerNotFound)
	}
	return customer, nil
}

func (s *UserService) List(ctx context.Context) ([]models.Customer, error) {
	return s.DB.ListCustomers(ctx)
}
