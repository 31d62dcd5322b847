package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/juju/ansiterm"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"losadmin/internal/backend"
	"losadmin/internal/config"
	"losadmin/internal/console"
	"losadmin/internal/models"
	"losadmin/internal/resources"
	"losadmin/internal/session"
	"losadmin/internal/utils/logger"
)

const usage = `usage: losconsole [flags] <command> [args]

commands:
  login <email> <password>        start a session (--remember keeps it in Redis)
  logout                          end the session
  whoami                          show the logged-in identity
  list <resource>                 tenants, branches, users, roles, products, loans,
                                  logs, leads, collections, integrations, notifications
  create-tenant <company> <email> register a tenant
  approve|reject|disburse <loan>  move a loan application through approval
  report <type>                   generate a report and wait for its download link

Without a remembered session, LOS_EMAIL and LOS_PASSWORD log in for the
duration of one command.
`

type options struct {
	remember bool
	params   backend.ListParams
	wait     time.Duration
}

func main() {
	// check if .env file exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
			os.Exit(1)
		}
	}

	var opts options
	fs := gnuflag.NewFlagSet("losconsole", gnuflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&opts.remember, "remember", false, "keep the session across runs")
	fs.StringVar(&opts.params.Search, "search", "", "filter listings by text")
	fs.StringVar(&opts.params.Status, "status", "", "filter listings by status")
	fs.StringVar(&opts.params.TenantID, "tenant", "", "filter listings by tenant")
	fs.StringVar(&opts.params.RoleID, "role", "", "filter users by role")
	fs.DurationVar(&opts.wait, "wait", 2*time.Minute, "how long to wait for a report")
	if err := fs.Parse(true, os.Args[1:]); err != nil || fs.NArg() == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c, err := console.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start console: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	if err := run(ctx, c, opts, fs.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if page, ok := c.Guard.Redirect(); ok {
			fmt.Fprintf(os.Stderr, "session ended, continue at the %s page\n", page)
		}
		c.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, c *console.Console, opts options, args []string) error {
	cmd, args := args[0], args[1:]
	switch cmd {
	case "login":
		if len(args) != 2 {
			return errors.New("login needs <email> <password>")
		}
		res := c.Session.Login(ctx, args[0], args[1], opts.remember)
		if !res.OK {
			return errors.New(res.Message)
		}
		fmt.Printf("Logged in as %s (%s mode)\n", args[0], c.Clients.Mode())
		return nil
	case "logout":
		c.Session.Logout(ctx)
		fmt.Println("Logged out")
		return nil
	}

	if err := ensureSession(ctx, c, cmd); err != nil {
		return err
	}

	switch cmd {
	case "whoami":
		return whoami(ctx, c)
	case "list":
		if len(args) != 1 {
			return errors.New("list needs <resource>")
		}
		return list(ctx, c.Clients, args[0], opts.params)
	case "create-tenant":
		if len(args) != 2 {
			return errors.New("create-tenant needs <company> <email>")
		}
		res, err := c.Clients.Tenants.Create(ctx, models.Tenant{CompanyName: args[0], Email: args[1]})
		if err := outcome(res.OK, err, "create tenant"); err != nil {
			return err
		}
		fmt.Printf("Created tenant %s\n", res.Data.TenantID)
		return nil
	case "approve", "reject", "disburse":
		if len(args) < 1 {
			return errors.Errorf("%s needs <loan>", cmd)
		}
		reason := ""
		if len(args) > 1 {
			reason = args[1]
		}
		action := map[string]string{"approve": models.ActionApprove, "reject": models.ActionReject, "disburse": models.ActionDisburse}[cmd]
		res, err := c.Clients.Loans.Act(ctx, args[0], action, reason)
		if err := outcome(res.OK, err, cmd); err != nil {
			return err
		}
		fmt.Printf("Loan %s is now %s\n", res.Data.LoanID, res.Data.Status)
		return nil
	case "report":
		if len(args) != 1 {
			return errors.New("report needs <type>")
		}
		return report(ctx, c.Clients, args[0], opts.wait)
	default:
		return errors.Errorf("unknown command %q", cmd)
	}
}

// ensureSession lets the guard decide; a missing session is opened from
// LOS_EMAIL and LOS_PASSWORD when they are set.
func ensureSession(ctx context.Context, c *console.Console, cmd string) error {
	if c.Guard.Resolve(ctx, cmd) != session.PageLogin {
		return nil
	}
	email, password := os.Getenv("LOS_EMAIL"), os.Getenv("LOS_PASSWORD")
	if email == "" {
		return errors.New("not logged in")
	}
	if res := c.Session.Login(ctx, email, password, false); !res.OK {
		return errors.New(res.Message)
	}
	return nil
}

func outcome(ok bool, err error, what string) error {
	if err != nil {
		return errors.Trace(err)
	}
	if !ok {
		return errors.Errorf("%s failed", what)
	}
	return nil
}

func whoami(ctx context.Context, c *console.Console) error {
	claims, err := c.Session.Claims(ctx)
	if err != nil {
		return errors.Annotate(err, "reading token")
	}
	if claims == nil {
		fmt.Println("Logged in (mock session, no token)")
		return nil
	}
	expires := "never"
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time.Local().Format(time.RFC3339)
	}
	fmt.Printf("%s (%s), token expires %s\n", claims.Email, claims.Role, expires)
	return nil
}

func list(ctx context.Context, cl *resources.Clients, resource string, params backend.ListParams) error {
	var (
		header []string
		rows   [][]string
		ok     bool
		err    error
	)
	switch resource {
	case "tenants":
		var res resources.Result[[]models.Tenant]
		res, err = cl.Tenants.List(ctx, params)
		ok = res.OK
		header = []string{"ID", "COMPANY", "EMAIL", "STATUS", "PLAN"}
		for _, t := range res.Data {
			rows = append(rows, []string{t.TenantID, t.CompanyName, t.Email, t.Status, t.SubscriptionPlan})
		}
	case "branches":
		var res resources.Result[[]models.Branch]
		res, err = cl.Branches.List(ctx, params)
		ok = res.OK
		header = []string{"ID", "TENANT", "NAME", "CITY", "STATUS"}
		for _, b := range res.Data {
			rows = append(rows, []string{b.BranchID, b.TenantID, b.BranchName, b.City, b.Status})
		}
	case "users":
		var res resources.Result[[]models.User]
		res, err = cl.Users.List(ctx, params)
		ok = res.OK
		header = []string{"ID", "NAME", "EMAIL", "ROLE", "STATUS"}
		for _, u := range res.Data {
			rows = append(rows, []string{u.UserID, u.Name, u.Email, u.RoleName, u.Status})
		}
	case "roles":
		var res resources.Result[[]models.Role]
		res, err = cl.Roles.List(ctx, params)
		ok = res.OK
		header = []string{"ID", "NAME", "DESCRIPTION"}
		for _, r := range res.Data {
			rows = append(rows, []string{r.RoleID, r.RoleName, r.Description})
		}
	case "products":
		var res resources.Result[[]models.LoanProduct]
		res, err = cl.Products.List(ctx, params)
		ok = res.OK
		header = []string{"ID", "TYPE", "SUBCATEGORY", "STATUS"}
		for _, p := range res.Data {
			rows = append(rows, []string{p.ProductID, p.TypeOfLoan, p.Subcategory, p.Status})
		}
	case "loans":
		var res resources.Result[[]models.LoanApplication]
		res, err = cl.Loans.List(ctx, params)
		ok = res.OK
		header = []string{"ID", "APPLICANT", "AMOUNT", "TERM", "STATUS"}
		for _, l := range res.Data {
			rows = append(rows, []string{l.LoanID, l.ApplicantName, strconv.FormatFloat(l.Amount, 'f', 2, 64), strconv.Itoa(l.TermMonths), l.Status})
		}
	case "logs":
		var res resources.Result[[]models.LogEntry]
		res, err = cl.Logs.List(ctx, params)
		ok = res.OK
		header = []string{"TIME", "EVENT", "ACTOR", "SUMMARY"}
		for _, e := range res.Data {
			rows = append(rows, []string{e.Timestamp.Format(time.RFC3339), e.EventType, e.ActorUserID, e.Summary})
		}
	case "leads":
		var res resources.Result[[]models.Lead]
		res, err = cl.Leads.List(ctx, params)
		ok = res.OK
		header = []string{"ID", "NAME", "PHONE", "SOURCE", "STATUS"}
		for _, l := range res.Data {
			rows = append(rows, []string{l.LeadID, l.Name, l.Phone, l.Source, l.Status})
		}
	case "collections":
		var res resources.Result[[]models.OverdueAccount]
		res, err = cl.Collections.Overdue(ctx, params)
		ok = res.OK
		header = []string{"LOAN", "BORROWER", "OVERDUE", "DPD", "BUCKET"}
		for _, a := range res.Data {
			rows = append(rows, []string{a.LoanID, a.BorrowerName, strconv.FormatFloat(a.OverdueAmount, 'f', 2, 64), strconv.Itoa(a.DaysPastDue), a.Bucket})
		}
	case "integrations":
		var res resources.Result[[]models.IntegrationConfig]
		res, err = cl.Integrations.List(ctx, params)
		ok = res.OK
		header = []string{"ID", "TYPE", "PROVIDER"}
		for _, i := range res.Data {
			rows = append(rows, []string{i.ConfigID, i.IntegrationType, i.ProviderName})
		}
	case "notifications":
		var res resources.Result[[]models.Notification]
		res, err = cl.Notifications.List(ctx)
		ok = res.OK
		header = []string{"ID", "TITLE", "READ"}
		for _, n := range res.Data {
			rows = append(rows, []string{n.NotificationID, n.Title, strconv.FormatBool(n.Read)})
		}
	default:
		return errors.NotSupportedf("listing %q", resource)
	}
	if err := outcome(ok, err, "list "+resource); err != nil {
		return err
	}
	return printTable(os.Stdout, header, rows)
}

func printTable(w io.Writer, header []string, rows [][]string) error {
	tw := ansiterm.NewTabWriter(w, 0, 1, 2, ' ', 0)
	writeRow(tw, header)
	for _, r := range rows {
		writeRow(tw, r)
	}
	return tw.Flush()
}

func writeRow(w io.Writer, cols []string) {
	for i, col := range cols {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, col)
	}
	fmt.Fprintln(w)
}

// report generates a report and polls until the download link is ready.
func report(ctx context.Context, cl *resources.Clients, reportType string, wait time.Duration) error {
	job, err := cl.Reports.Generate(ctx, models.ReportRequest{ReportType: reportType})
	if err := outcome(job.OK, err, "generate report"); err != nil {
		return err
	}
	fmt.Printf("Report %s accepted, ready around %s\n", job.Data.JobID, job.Data.EstimatedCompletionTime.Local().Format(time.Kitchen))

	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	if err := waitForReport(ctx, cl.Reports, job.Data.JobID, time.Second); err != nil {
		return err
	}

	link, err := cl.Reports.Download(ctx, job.Data.JobID)
	if err := outcome(link.OK, err, "download report"); err != nil {
		return err
	}
	fmt.Println(link.Data)
	return nil
}

type statusSource interface {
	Status(ctx context.Context, jobID string) (resources.Result[string], error)
}

// waitForReport polls every interval until the job completes. A status the
// backend rejects ends the wait at once.
func waitForReport(ctx context.Context, src statusSource, jobID string, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		st, err := src.Status(ctx, jobID)
		if err != nil {
			return errors.Trace(err)
		}
		if !st.OK {
			return errors.Errorf("report %s failed", jobID)
		}
		if st.Data == models.JobCompleted {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Timeoutf("report %s", jobID)
		case <-ticker.C:
		}
	}
}
