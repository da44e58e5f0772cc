package dto

import (
	"time"

	"github.com/companyhub/companyhub/internal/model"
)

// CompanyRequest is the body for creating or updating a company. Absent
// fields are left out of the input so updates only touch what was sent; a
// null name or year is sent as blank.
type CompanyRequest struct {
	Name   Field `json:"name"`
	Year   Field `json:"year"`
	UserID *ID   `json:"user_id"`
}

// Input converts the request into service input.
func (r CompanyRequest) Input() model.CompanyInput {
	return model.CompanyInput{
		Name:   r.Name.Ptr(),
		Year:   r.Year.Ptr(),
		UserID: r.UserID.Ptr(),
	}
}

// CompanyResponse represents a company in API responses.
type CompanyResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Year      string    `json:"year"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToCompanyResponse converts a model.Company to CompanyResponse.
func ToCompanyResponse(c *model.Company) CompanyResponse {
	return CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		Year:      c.Year,
		UserID:    c.UserID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToCompanyListResponse converts companies, always yielding a JSON array.
func ToCompanyListResponse(companies []*model.Company) []CompanyResponse {
	out := make([]CompanyResponse, 0, len(companies))
	for _, c := range companies {
		out = append(out, ToCompanyResponse(c))
	}
	return out
}
