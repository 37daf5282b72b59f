package model

// Role represents operator roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // MASTER_ADMIN, STOREKEEPER
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleMasterAdmin = "MASTER_ADMIN"
	RoleStorekeeper = "STOREKEEPER"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleMasterAdmin,
		Name:        "Master Administrator",
		Description: "Full access, including catalog and supplier code management",
	},
	{
		Code:        RoleStorekeeper,
		Name:        "Storekeeper",
		Description: "Day-to-day stock movements and loans",
	},
}

// StorekeeperPrivileges is the privilege set granted to the storekeeper role.
var StorekeeperPrivileges = []string{
	PrivProductView, PrivInventoryAdj, PrivInvoiceImport, PrivLoanManage, PrivHistoryView, PrivDashboardView,
}
