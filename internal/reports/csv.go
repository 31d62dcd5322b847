package reports

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"losadmin/internal/backend"
	"losadmin/internal/models"
)

const dateLayout = "2006-01-02"

var (
	loanActivityHeader  = []string{"loan_id", "applicant_name", "amount", "term_months", "status", "applied_on"}
	tenantSummaryHeader = []string{"tenant_id", "company_name", "status", "created_at", "total_loans", "total_active_users"}
	userActivityHeader  = []string{"user_id", "role", "tenant_id", "description", "timestamp"}
)

// Render builds the CSV for req from the rows currently in src.
func Render(src Source, req models.ReportRequest) ([]byte, error) {
	from, to, err := dateRange(req)
	if err != nil {
		return nil, err
	}
	inRange := func(t time.Time) bool {
		if !from.IsZero() && t.Before(from) {
			return false
		}
		if !to.IsZero() && !t.Before(to) {
			return false
		}
		return true
	}
	tenantOK := func(id string) bool {
		return req.TenantID == "" || req.TenantID == id
	}

	var rows [][]string
	switch req.ReportType {
	case models.ReportLoanActivity:
		rows = append(rows, loanActivityHeader)
		for _, l := range src.LoanApplications() {
			if !tenantOK(l.TenantID) || !inRange(l.AppliedOn) {
				continue
			}
			rows = append(rows, []string{
				l.LoanID,
				l.ApplicantName,
				strconv.FormatFloat(l.Amount, 'f', -1, 64),
				strconv.Itoa(l.TermMonths),
				l.Status,
				l.AppliedOn.UTC().Format(dateLayout),
			})
		}
	case models.ReportTenantSummary:
		rows = append(rows, tenantSummaryHeader)
		for _, t := range src.TenantRecords() {
			if !tenantOK(t.TenantID) || !inRange(t.CreatedAt.Time()) {
				continue
			}
			rows = append(rows, []string{
				t.TenantID,
				t.CompanyName,
				t.Status,
				string(t.CreatedAt),
				strconv.Itoa(t.TotalLoans),
				strconv.Itoa(t.TotalActiveUsers),
			})
		}
	case models.ReportUserActivity:
		rows = append(rows, userActivityHeader)
		for _, e := range src.LogEntries() {
			tenant := ""
			if e.TenantID != nil {
				tenant = *e.TenantID
			}
			if !tenantOK(tenant) || !inRange(e.Timestamp) {
				continue
			}
			rows = append(rows, []string{
				e.ActorUserID,
				e.ActorUserRole,
				tenant,
				e.Summary,
				e.Timestamp.UTC().Format(time.RFC3339),
			})
		}
	default:
		return nil, backend.NotValid("report type %q", req.ReportType)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// dateRange returns [from, to) where to is the day after DateTo. Zero bounds are open.
func dateRange(req models.ReportRequest) (from, to time.Time, err error) {
	if req.DateFrom != "" {
		if from, err = time.Parse(dateLayout, string(req.DateFrom)); err != nil {
			return from, to, backend.NotValid("date_from %q", req.DateFrom)
		}
	}
	if req.DateTo != "" {
		if to, err = time.Parse(dateLayout, string(req.DateTo)); err != nil {
			return from, to, backend.NotValid("date_to %q", req.DateTo)
		}
		to = to.AddDate(0, 0, 1)
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return from, to, backend.NotValid("date_from %s is after date_to %s", req.DateFrom, req.DateTo)
	}
	return from, to, nil
}
