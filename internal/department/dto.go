package department

import "errors"

// CreateDepartmentDTO is the request payload for adding a department.
type CreateDepartmentDTO struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (dto CreateDepartmentDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if len(dto.Name) > 255 {
		return errors.New("name must be less than 255 characters")
	}
	return nil
}

// UpdateDepartmentDTO renames or re-describes a department.
type UpdateDepartmentDTO struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (dto UpdateDepartmentDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if len(dto.Name) > 255 {
		return errors.New("name must be less than 255 characters")
	}
	return nil
}
