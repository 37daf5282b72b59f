package model

// Employee is a person who can hold loaned tools.
type Employee struct {
	BaseModel
	Name           string `gorm:"type:varchar(255);not null" json:"name"`
	EmployeeNumber string `gorm:"type:varchar(50);index" json:"employee_number"`
}

// EmployeeProfile bundles an employee with their loan history.
type EmployeeProfile struct {
	Employee Employee `json:"employee"`
	Loans    []Loan   `json:"loans"`
	Active   int64    `json:"active"`
	Returned int64    `json:"returned"`
	Total    int64    `json:"total"`
}
