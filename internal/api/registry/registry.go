package registry

import (
	"github.com/labstack/echo/v4"

	"losadmin/internal/api/controllers"
	"losadmin/internal/api/middleware"
	"losadmin/internal/backend"
	"losadmin/internal/backend/remote"
	"losadmin/internal/models"
)

// Role masters are served as {id, name, description}.
var roleMapping = controllers.Mapping[models.Role, remote.RoleWire]{
	ToWire: func(r models.Role) remote.RoleWire {
		return remote.RoleWire{ID: remote.FlexID(r.RoleID), Name: r.RoleName, Description: r.Description}
	},
	FromWire: func(w remote.RoleWire) models.Role {
		return models.Role{RoleID: string(w.ID), RoleName: w.Name, Description: w.Description}
	},
	Fields: map[string]string{"name": "role_name", "id": ""},
}

// Loan products are served as {id, name, loan_type}.
var productMapping = controllers.Mapping[models.LoanProduct, remote.ProductWire]{
	ToWire: func(p models.LoanProduct) remote.ProductWire {
		return remote.ProductWire{ID: remote.FlexID(p.ProductID), Name: p.TypeOfLoan, LoanType: p.Subcategory}
	},
	FromWire: func(w remote.ProductWire) models.LoanProduct {
		return models.LoanProduct{
			ProductID:    string(w.ID),
			BusinessName: "All",
			TypeOfLoan:   w.Name,
			Subcategory:  w.LoanType,
			Status:       models.StatusActive,
		}
	},
	Fields: map[string]string{"name": "type_of_loan", "loan_type": "subcategory", "id": ""},
}

// RegisterCRUDRoutes registers every resource the console consumes. Routes
// under /api/v1, /crm and /lms require a token; signup does not.
func RegisterCRUDRoutes(e *echo.Echo, b backend.Backend, auth echo.MiddlewareFunc) {
	actions := controllers.NewActionController(b)

	e.POST("/api/v1/tenants/onboarding/register/", actions.Register)

	api := e.Group("/api/v1", auth, middleware.RequirePermissions())

	// Tenants and branches
	controllers.NewBaseController(b.Branches()).RegisterRoutes(api, "/tenants/branches/")
	controllers.NewBaseController(b.Tenants()).RegisterRoutes(api, "/tenants/")

	// Users and audit logs
	api.GET("/users/me/", actions.Me)
	api.PATCH("/users/me/", actions.UpdateMe)
	controllers.NewBaseController(b.Logs()).RegisterRoutes(api, "/users/audit-logs/")
	controllers.NewBaseController(b.Users()).RegisterRoutes(api, "/users/")

	// Admin panel
	controllers.NewMappedController[models.Role](b.Roles(), roleMapping).RegisterRoutes(api, "/adminpanel/role-masters/")
	api.GET("/adminpanel/role-masters/:id/permissions/", actions.RolePermissions)
	api.PUT("/adminpanel/role-masters/:id/permissions/", actions.GrantPermissions)
	api.GET("/adminpanel/permissions/", actions.Permissions)
	controllers.NewMappedController(b.Products(), productMapping).RegisterRoutes(api, "/adminpanel/loan-products/")
	api.GET("/adminpanel/settings/", actions.Settings)
	api.PATCH("/adminpanel/settings/", actions.UpdateSettings)

	// Loan origination
	controllers.NewBaseController[models.LoanApplication](b.Loans()).RegisterRoutes(api, "/los/applications/")
	api.POST("/los/applications/:id/change-status/", actions.ChangeLoanStatus)

	// Communications and integrations
	api.GET("/communications/communications/", actions.Notifications)
	api.POST("/communications/communications/:id/mark-read/", actions.MarkRead)
	controllers.NewBaseController[models.IntegrationConfig](b.Integrations()).RegisterRoutes(api, "/integrations/")
	api.POST("/integrations/:id/validate/", actions.ValidateIntegration)

	// Dashboard and reporting
	api.GET("/dashboard/full", actions.Dashboard)
	api.POST("/reports/dashboard-export", actions.ExportDashboard)
	api.POST("/reporting/reports/generate/", actions.GenerateReport)
	api.GET("/reporting/reports/:id/status/", actions.ReportStatus)
	api.GET("/reporting/reports/:id/download/", actions.DownloadReport)

	// CRM leads
	crm := e.Group("/crm", auth, middleware.RequirePermissions())
	controllers.NewBaseController[models.Lead](b.Leads()).RegisterRoutes(crm, "/leads/")
	crm.POST("/leads/:id/log-call/", actions.LogLeadCall)
	crm.POST("/leads/:id/convert/", actions.ConvertLead)

	// Collections desk
	lms := e.Group("/lms", auth, middleware.RequirePermissions())
	lms.GET("/collections/stats/", actions.CollectionStats)
	lms.GET("/collections/queue/", actions.CollectionQueue)
	lms.POST("/collections/:id/log-call/", actions.LogCollectionCall)
	lms.POST("/collections/:id/send-notice/", actions.SendNotice)
}
