package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "inventory:adjust"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivProductView    = "product:view"
	PrivProductManage  = "product:manage"
	PrivInventoryAdj   = "inventory:adjust"
	PrivInvoiceImport  = "invoice:import"
	PrivMappingManage  = "mapping:manage"
	PrivLoanManage     = "loan:manage"
	PrivEmployeeManage = "employee:manage"
	PrivHistoryView    = "history:view"
	PrivDashboardView  = "dashboard:view"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// Catalog
	{Code: PrivProductView, Name: "View Products"},
	{Code: PrivProductManage, Name: "Manage Products"},
	{Code: PrivMappingManage, Name: "Manage Supplier Codes"},
	// Stock movements
	{Code: PrivInventoryAdj, Name: "Adjust Stock (audits, damages)"},
	{Code: PrivInvoiceImport, Name: "Import Invoices"},
	{Code: PrivLoanManage, Name: "Manage Loans"},
	// People
	{Code: PrivEmployeeManage, Name: "Manage Employees"},
	// Reporting
	{Code: PrivHistoryView, Name: "View History"},
	{Code: PrivDashboardView, Name: "View Dashboard"},
}
