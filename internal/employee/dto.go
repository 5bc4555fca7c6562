package employee

import "errors"

// CreateEmployeeDTO is the request payload for adding an employee.
type CreateEmployeeDTO struct {
	FullName       string `json:"full_name"`
	Position       string `json:"position"`
	Grade          string `json:"grade"`
	DepartmentID   *int64 `json:"department_id,omitempty"`
	PassportNumber string `json:"passport_number,omitempty"`
	Snils          string `json:"snils,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
}

func (dto CreateEmployeeDTO) Validate() error {
	if dto.FullName == "" {
		return errors.New("full name is required")
	}
	if len(dto.FullName) > 255 {
		return errors.New("full name must be less than 255 characters")
	}
	return nil
}

// UpdateEmployeeDTO edits an active employee's record.
type UpdateEmployeeDTO struct {
	FullName       string `json:"full_name"`
	Position       string `json:"position"`
	Grade          string `json:"grade"`
	DepartmentID   *int64 `json:"department_id,omitempty"`
	PassportNumber string `json:"passport_number,omitempty"`
	Snils          string `json:"snils,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
}

func (dto UpdateEmployeeDTO) Validate() error {
	if dto.FullName == "" {
		return errors.New("full name is required")
	}
	return nil
}
