package address

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/finley-aquatics/fishworks-backend/pkg/db/models"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
	pkgerrors "github.com/finley-aquatics/fishworks-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes the per-user address book.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error)
	Get(ctx context.Context, userID, addressID uuid.UUID) (*AddressDTO, error)
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*AddressDTO, error)
	Update(ctx context.Context, userID, addressID uuid.UUID, input UpdateInput) (*AddressDTO, error)
	Delete(ctx context.Context, userID, addressID uuid.UUID) error
	SetDefault(ctx context.Context, userID, addressID uuid.UUID) (*AddressDTO, error)
}

// CreateInput carries the fields accepted when saving a new address.
type CreateInput struct {
	AddressType  enums.AddressType
	FirstName    string
	LastName     string
	Company      string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	Country      string
	Phone        string
	IsDefault    bool
}

// UpdateInput patches an address. Nil fields are left untouched.
type UpdateInput struct {
	FirstName    *string
	LastName     *string
	Company      *string
	AddressLine1 *string
	AddressLine2 *string
	City         *string
	State        *string
	PostalCode   *string
	Country      *string
	Phone        *string
	IsDefault    *bool
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService constructs the address book service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error) {
	addresses, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	out := make([]AddressDTO, 0, len(addresses))
	for _, address := range addresses {
		out = append(out, toDTO(address))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, userID, addressID uuid.UUID) (*AddressDTO, error) {
	address, err := s.loadOwned(ctx, s.repo, userID, addressID)
	if err != nil {
		return nil, err
	}
	dto := toDTO(*address)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*AddressDTO, error) {
	if !input.AddressType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid address type")
	}
	if err := validateRequired(input.FirstName, input.LastName, input.AddressLine1, input.City, input.State, input.PostalCode); err != nil {
		return nil, err
	}

	country := strings.TrimSpace(input.Country)
	if country == "" {
		country = "US"
	}

	address := &models.Address{
		ID:           uuid.New(),
		UserID:       userID,
		AddressType:  input.AddressType,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Company:      strings.TrimSpace(input.Company),
		AddressLine1: strings.TrimSpace(input.AddressLine1),
		AddressLine2: strings.TrimSpace(input.AddressLine2),
		City:         strings.TrimSpace(input.City),
		State:        strings.TrimSpace(input.State),
		PostalCode:   strings.TrimSpace(input.PostalCode),
		Country:      country,
		Phone:        strings.TrimSpace(input.Phone),
		IsDefault:    input.IsDefault,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if address.IsDefault {
			if err := repo.ClearDefault(ctx, userID, address.AddressType); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear previous default")
			}
		}
		if _, err := repo.Create(ctx, address); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := toDTO(*address)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, userID, addressID uuid.UUID, input UpdateInput) (*AddressDTO, error) {
	var updated *models.Address
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		address, err := s.loadOwned(ctx, repo, userID, addressID)
		if err != nil {
			return err
		}

		applyString := func(dst *string, src *string) {
			if src != nil {
				*dst = strings.TrimSpace(*src)
			}
		}
		applyString(&address.FirstName, input.FirstName)
		applyString(&address.LastName, input.LastName)
		applyString(&address.Company, input.Company)
		applyString(&address.AddressLine1, input.AddressLine1)
		applyString(&address.AddressLine2, input.AddressLine2)
		applyString(&address.City, input.City)
		applyString(&address.State, input.State)
		applyString(&address.PostalCode, input.PostalCode)
		applyString(&address.Country, input.Country)
		applyString(&address.Phone, input.Phone)

		if err := validateRequired(address.FirstName, address.LastName, address.AddressLine1, address.City, address.State, address.PostalCode); err != nil {
			return err
		}

		if input.IsDefault != nil && *input.IsDefault && !address.IsDefault {
			if err := repo.ClearDefault(ctx, userID, address.AddressType); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear previous default")
			}
			address.IsDefault = true
		} else if input.IsDefault != nil && !*input.IsDefault {
			address.IsDefault = false
		}

		if err := repo.Update(ctx, address); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
		}
		updated = address
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := toDTO(*updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.loadOwned(ctx, repo, userID, addressID); err != nil {
			return err
		}
		if err := repo.Delete(ctx, addressID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
		}
		return nil
	})
}

func (s *service) SetDefault(ctx context.Context, userID, addressID uuid.UUID) (*AddressDTO, error) {
	var updated *models.Address
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		address, err := s.loadOwned(ctx, repo, userID, addressID)
		if err != nil {
			return err
		}
		if !address.IsDefault {
			if err := repo.ClearDefault(ctx, userID, address.AddressType); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear previous default")
			}
			address.IsDefault = true
			if err := repo.Update(ctx, address); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set default address")
			}
		}
		updated = address
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := toDTO(*updated)
	return &dto, nil
}

// loadOwned hides other users' addresses behind a not-found error.
func (s *service) loadOwned(ctx context.Context, repo Repository, userID, addressID uuid.UUID) (*models.Address, error) {
	address, err := repo.FindByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}
	if address.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return address, nil
}

func validateRequired(firstName, lastName, line1, city, state, postalCode string) error {
	missing := []string{}
	check := func(value, field string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	check(firstName, "first_name")
	check(lastName, "last_name")
	check(line1, "address_line_1")
	check(city, "city")
	check(state, "state")
	check(postalCode, "postal_code")
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("missing required address fields: %s", strings.Join(missing, ", ")))
	}
	return nil
}
