package organization

import "github.com/frahmantamala/shiftboard/internal/core/common/validation"

type CreateOrganizationDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (d CreateOrganizationDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(120)
	v.Field("description", d.Description).MaxLength(1000)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type DeleteResponse struct {
	Message string `json:"message"`
}
