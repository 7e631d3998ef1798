package address

import (
	"time"

	"github.com/finley-aquatics/fishworks-backend/pkg/db/models"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
	"github.com/google/uuid"
)

// AddressDTO is the API representation of a saved address.
type AddressDTO struct {
	ID           uuid.UUID         `json:"id"`
	AddressType  enums.AddressType `json:"address_type"`
	FirstName    string            `json:"first_name"`
	LastName     string            `json:"last_name"`
	Company      string            `json:"company,omitempty"`
	AddressLine1 string            `json:"address_line_1"`
	AddressLine2 string            `json:"address_line_2,omitempty"`
	City         string            `json:"city"`
	State        string            `json:"state"`
	PostalCode   string            `json:"postal_code"`
	Country      string            `json:"country"`
	Phone        string            `json:"phone,omitempty"`
	IsDefault    bool              `json:"is_default"`
	CreatedAt    time.Time         `json:"created_at"`
}

func toDTO(address models.Address) AddressDTO {
	return AddressDTO{
		ID:           address.ID,
		AddressType:  address.AddressType,
		FirstName:    address.FirstName,
		LastName:     address.LastName,
		Company:      address.Company,
		AddressLine1: address.AddressLine1,
		AddressLine2: address.AddressLine2,
		City:         address.City,
		State:        address.State,
		PostalCode:   address.PostalCode,
		Country:      address.Country,
		Phone:        address.Phone,
		IsDefault:    address.IsDefault,
		CreatedAt:    address.CreatedAt,
	}
}
