package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"losadmin/internal/api/validator"
	"losadmin/internal/backend"
	"losadmin/internal/backend/remote"
	"losadmin/internal/models"
)

// ActionController serves the endpoints that are not plain CRUD: permission
// grants, status changes, call logs and the report job cycle.
type ActionController struct {
	backend backend.Backend
}

func NewActionController(b backend.Backend) *ActionController {
	return &ActionController{backend: b}
}

// bindValid binds the request body into v and validates it.
func bindValid(ctx echo.Context, v interface{}) error {
	if err := ctx.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body "+err.Error())
	}
	return ctx.Validate(v)
}

func (a *ActionController) Permissions(ctx echo.Context) error {
	perms, err := a.backend.Roles().Permissions(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, perms)
}

func (a *ActionController) RolePermissions(ctx echo.Context) error {
	ids, err := a.backend.Roles().Granted(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ids)
}

func (a *ActionController) GrantPermissions(ctx echo.Context) error {
	var req validator.GrantRequest
	if err := bindValid(ctx, &req); err != nil {
		return err
	}
	if err := a.backend.Roles().Grant(ctx.Request().Context(), ctx.Param("id"), req.PermissionIDs); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, req)
}

// ChangeLoanStatus applies Approve, Reject or Disburse.
func (a *ActionController) ChangeLoanStatus(ctx echo.Context) error {
	var req models.LoanAction
	if err := bindValid(ctx, &req); err != nil {
		return err
	}
	loan, err := a.backend.Loans().Act(ctx.Request().Context(), ctx.Param("id"), req)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, loan)
}

func (a *ActionController) ValidateIntegration(ctx echo.Context) error {
	cfg, err := a.backend.Integrations().Validate(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cfg)
}

func (a *ActionController) Notifications(ctx echo.Context) error {
	rows, err := a.backend.Notifications().List(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (a *ActionController) MarkRead(ctx echo.Context) error {
	if err := a.backend.Notifications().MarkRead(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (a *ActionController) Settings(ctx echo.Context) error {
	groups, err := a.backend.Settings().List(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (a *ActionController) UpdateSettings(ctx echo.Context) error {
	var values map[string]string
	if err := ctx.Bind(&values); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "settings must be a map of key to value")
	}
	if err := a.backend.Settings().Update(ctx.Request().Context(), values); err != nil {
		return err
	}
	return a.Settings(ctx)
}

func (a *ActionController) LogLeadCall(ctx echo.Context) error {
	var req validator.CallRequest
	if err := bindValid(ctx, &req); err != nil {
		return err
	}
	if err := a.backend.Leads().LogCall(ctx.Request().Context(), ctx.Param("id"), req.Notes); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (a *ActionController) ConvertLead(ctx echo.Context) error {
	appID, err := a.backend.Leads().Convert(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, remote.ConvertResponse{ApplicationID: remote.FlexID(appID)})
}

func (a *ActionController) CollectionStats(ctx echo.Context) error {
	stats, err := a.backend.Dues().Stats(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (a *ActionController) CollectionQueue(ctx echo.Context) error {
	rows, err := a.backend.Dues().Overdue(ctx.Request().Context(), listParams(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (a *ActionController) LogCollectionCall(ctx echo.Context) error {
	var req validator.RemarksRequest
	if err := bindValid(ctx, &req); err != nil {
		return err
	}
	if err := a.backend.Dues().LogCall(ctx.Request().Context(), ctx.Param("id"), req.Remarks); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (a *ActionController) SendNotice(ctx echo.Context) error {
	var req validator.NoticeRequest
	if err := bindValid(ctx, &req); err != nil {
		return err
	}
	if err := a.backend.Dues().SendNotice(ctx.Request().Context(), ctx.Param("id"), req.Type); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (a *ActionController) Me(ctx echo.Context) error {
	prof, err := a.backend.Profile().Get(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prof)
}

func (a *ActionController) UpdateMe(ctx echo.Context) error {
	var patch backend.Patch
	if err := ctx.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body "+err.Error())
	}
	prof, err := a.backend.Profile().Update(ctx.Request().Context(), patch)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prof)
}

// Register queues a tenant signup. It is reachable without a token.
func (a *ActionController) Register(ctx echo.Context) error {
	var req models.SignupRequest
	if err := bindValid(ctx, &req); err != nil {
		return err
	}
	id, err := a.backend.Signup().Submit(ctx.Request().Context(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, remote.SignupResponse{ID: remote.FlexID(id)})
}

func (a *ActionController) Dashboard(ctx echo.Context) error {
	dash, err := a.backend.Dashboard().Fetch(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (a *ActionController) ExportDashboard(ctx echo.Context) error {
	url, err := a.backend.Dashboard().Export(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, remote.URLResponse{URL: url})
}

func (a *ActionController) GenerateReport(ctx echo.Context) error {
	var req models.ReportRequest
	if err := bindValid(ctx, &req); err != nil {
		return err
	}
	job, err := a.backend.Reports().Generate(ctx.Request().Context(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusAccepted, job)
}

func (a *ActionController) ReportStatus(ctx echo.Context) error {
	status, err := a.backend.Reports().Status(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, remote.StatusResponse{Status: status})
}

func (a *ActionController) DownloadReport(ctx echo.Context) error {
	url, err := a.backend.Reports().Download(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, remote.URLResponse{URL: url})
}
