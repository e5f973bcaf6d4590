package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"adminconsole/internal/engine/forms"
	"adminconsole/internal/engine/query"
	"adminconsole/internal/engine/view"
	"adminconsole/internal/pkg/logger"
	"adminconsole/internal/pkg/validator"
	"adminconsole/internal/platform/auth"
	"adminconsole/internal/platform/broadcast"
	"adminconsole/internal/platform/config"
	"adminconsole/internal/platform/models"
	"adminconsole/internal/transport"
	"adminconsole/internal/workers"
)

// openApp loads the config and wires the core. Logs go to stderr at warn
// level (debug with --verbose) so they never mix with command output.
func openApp(opts *RootOptions, f *OutputFormatter) (*App, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		f.Error(ErrCodeConfig, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	if cfg.Session.Secret == "" {
		f.Error(ErrCodeConfig, "session.secret must be set so the stored session can be read back", nil)
		return nil, NewExitError(ExitCommandError, "session.secret is empty")
	}
	cfg.Logging.Output = "stderr"
	cfg.Logging.Level = "warn"
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}
	logger.Init(cfg.Logging)

	app, err := NewApp(cfg)
	if err != nil {
		f.Error(ErrCodeConfig, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "open console", err)
	}
	f.VerboseLog("backend %s, session store %s", cfg.Backend.BaseURL, cfg.Session.DBPath)
	return app, nil
}

// fail reports err through the formatter and returns the matching ExitError.
func fail(f *OutputFormatter, err error) error {
	var verrs validator.Errors
	switch {
	case errors.As(err, &verrs):
		f.Error(ErrCodeInput, "validation failed", verrs.Sources())
		return WrapExitError(ExitFailure, "validation failed", err)
	case errors.Is(err, auth.ErrNoSession):
		f.Error(ErrCodeSession, "not signed in, run consolectl login", nil)
		return WrapExitError(ExitFailure, "not signed in", err)
	case errors.Is(err, auth.ErrExpired):
		f.Error(ErrCodeSession, "session expired, run consolectl login", nil)
		return WrapExitError(ExitFailure, "session expired", err)
	}

	if te, ok := transport.AsError(err); ok {
		code := ErrCodeBackend
		if te.Status != 0 {
			code = fmt.Sprintf("HTTP_%d", te.Status)
		}
		f.Error(code, te.Data.Message, te.Data.ErrorSources)
		return WrapExitError(ExitFailure, "backend request failed", err)
	}
	f.Error(ErrCodeBackend, err.Error(), nil)
	return WrapExitError(ExitFailure, "request failed", err)
}

func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		Long: `Sign in against the backend. The password is read from the first line
of stdin when --password is not given.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(rootOpts, email, password, cmd)
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")

	return cmd
}

func runLogin(opts *RootOptions, email, password string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	if password == "" {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			f.Error(ErrCodeInput, err.Error(), nil)
			return WrapExitError(ExitCommandError, "read password", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	form, verrs := validator.Validate(forms.LoginForm{Email: email, Password: password})
	if verrs != nil {
		return fail(f, verrs)
	}

	app, err := openApp(opts, f)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := query.Mutate(cmd.Context(), app.Engine, app.Catalog.Login, form)
	if err != nil {
		return fail(f, err)
	}
	sess, err := app.Sessions.Create(CLISession, result.AccessToken, result.IntegrationToken)
	if err != nil {
		return fail(f, err)
	}

	out := sessionInfo(sess)
	return f.Success(out, func(w io.Writer) {
		fmt.Fprintf(w, "Signed in as %s (%s), session valid until %s\n",
			out.Email, out.Role, time.Unix(out.ExpiresAt, 0).Format(time.RFC1123))
	})
}

func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "logout",
		Short:         "End the stored session",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(rootOpts, cmd)
		},
	}
}

func runLogout(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	app, err := openApp(opts, f)
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.Sessions.Get(CLISession); err != nil {
		return fail(f, err)
	}
	ctx := app.SignedIn(cmd.Context())
	if _, err := query.Mutate(ctx, app.Engine, app.Catalog.Logout, struct{}{}); err != nil {
		f.VerboseLog("backend logout failed: %v", err)
	}
	if err := app.Sessions.Delete(CLISession); err != nil {
		return fail(f, err)
	}
	return f.Success(map[string]bool{"signedOut": true}, func(w io.Writer) {
		fmt.Fprintln(w, "Signed out")
	})
}

type sessionOutput struct {
	UserID       string      `json:"userId"`
	Email        string      `json:"email"`
	Role         models.Role `json:"role"`
	Organization string      `json:"organization,omitempty"`
	ExpiresAt    int64       `json:"expiresAt"`
}

func sessionInfo(s *models.Session) sessionOutput {
	return sessionOutput{
		UserID:       s.UserID,
		Email:        s.Email,
		Role:         s.Role,
		Organization: s.Organization,
		ExpiresAt:    s.ExpiresAt,
	}
}

func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "whoami",
		Short:         "Show the signed-in user",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(rootOpts, cmd)
		},
	}
}

func runWhoami(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	app, err := openApp(opts, f)
	if err != nil {
		return err
	}
	defer app.Close()

	sess, err := app.Sessions.Get(CLISession)
	if err != nil {
		return fail(f, err)
	}
	me, err := query.Query(app.SignedIn(cmd.Context()), app.Engine, app.Catalog.Me, struct{}{})
	if err != nil {
		return fail(f, err)
	}

	row := view.User(me, app.Config.Backend.Currency)
	return f.Success(map[string]any{"session": sessionInfo(sess), "user": row}, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "Name\t%s\n", row.FullName)
		fmt.Fprintf(tw, "Email\t%s\n", me.Email)
		fmt.Fprintf(tw, "Role\t%s\n", me.Role)
		if me.Organization != "" {
			fmt.Fprintf(tw, "Organization\t%s\n", me.Organization)
		}
		fmt.Fprintf(tw, "Wallet\t%s\n", row.BalanceText)
		tw.Flush()
	})
}

// listFlags are the list query parameters shared by list and watch.
type listFlags struct {
	page         int
	limit        int
	search       string
	sortBy       string
	sortOrder    string
	status       string
	organization string
}

func (l *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&l.page, "page", 1, "page number")
	cmd.Flags().IntVar(&l.limit, "limit", 10, "rows per page")
	cmd.Flags().StringVarP(&l.search, "search", "s", "", "search term")
	cmd.Flags().StringVar(&l.sortBy, "sort-by", "", "sort field")
	cmd.Flags().StringVar(&l.sortOrder, "sort-order", "", "asc or desc")
	cmd.Flags().StringVar(&l.status, "status", "", "status filter")
	cmd.Flags().StringVar(&l.organization, "organization", "", "organization id (super admins only)")
}

func (l *listFlags) query() (models.ListQuery, error) {
	v := url.Values{}
	v.Set("page", fmt.Sprint(l.page))
	v.Set("limit", fmt.Sprint(l.limit))
	v.Set("searchTerm", l.search)
	v.Set("sortBy", l.sortBy)
	v.Set("sortOrder", l.sortOrder)
	v.Set("status", l.status)
	v.Set("organization", l.organization)

	q, verrs := forms.Query(models.ParseListQuery(v))
	if verrs != nil {
		return models.ListQuery{}, verrs
	}
	return q, nil
}

func lookup(app *App, f *OutputFormatter, name string) (collection, error) {
	c, ok := collections(app)[name]
	if !ok {
		f.Error(ErrCodeCollection, fmt.Sprintf("unknown collection %q", name), CollectionNames())
		return collection{}, NewExitError(ExitCommandError, "unknown collection")
	}
	return c, nil
}

func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var lf listFlags

	cmd := &cobra.Command{
		Use:           "list <collection>",
		Short:         "List one page of a collection",
		Long:          "List one page of a collection. Collections: " + strings.Join(CollectionNames(), ", "),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, &lf, args[0], cmd)
		},
	}
	lf.register(cmd)

	return cmd
}

func runList(opts *RootOptions, lf *listFlags, name string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	q, err := lf.query()
	if err != nil {
		return fail(f, err)
	}

	app, err := openApp(opts, f)
	if err != nil {
		return err
	}
	defer app.Close()

	c, err := lookup(app, f, name)
	if err != nil {
		return err
	}
	page, err := c.list(app.SignedIn(cmd.Context()), q)
	if err != nil {
		return fail(f, err)
	}
	return f.Success(page, func(w io.Writer) { writePage(w, page) })
}

func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <collection> <id>",
		Short:         "Show one entity",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, args[0], args[1], cmd)
		},
	}
}

func runGet(opts *RootOptions, name, id string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	if fe := validator.Var("id", id, "objectid"); fe != nil {
		return fail(f, validator.Errors{*fe})
	}

	app, err := openApp(opts, f)
	if err != nil {
		return err
	}
	defer app.Close()

	c, err := lookup(app, f, name)
	if err != nil {
		return err
	}
	item, err := c.get(app.SignedIn(cmd.Context()), id)
	if err != nil {
		return fail(f, err)
	}
	return f.Success(item, func(w io.Writer) {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(item)
	})
}

func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	var lf listFlags

	cmd := &cobra.Command{
		Use:   "watch <collection>",
		Short: "Keep a collection page mounted and print every refresh",
		Long: `Keep a collection page mounted. With broadcast enabled the page is
printed again whenever another console replica invalidates it. Failed reads
are retried every cache.refetch_interval. Stops on interrupt.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(rootOpts, &lf, args[0], cmd)
		},
	}
	lf.register(cmd)

	return cmd
}

func runWatch(opts *RootOptions, lf *listFlags, name string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	q, err := lf.query()
	if err != nil {
		return fail(f, err)
	}

	app, err := openApp(opts, f)
	if err != nil {
		return err
	}
	defer app.Close()

	c, err := lookup(app, f, name)
	if err != nil {
		return err
	}
	if _, err := app.Sessions.Get(CLISession); err != nil {
		return fail(f, err)
	}

	ctx, stop := signal.NotifyContext(app.SignedIn(cmd.Context()), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler, err := workers.NewScheduler()
	if err != nil {
		return fail(f, err)
	}
	if err := scheduler.AddCacheJobs(app.Engine, app.Config.Cache); err != nil {
		return fail(f, err)
	}
	scheduler.Start()
	defer scheduler.Shutdown()

	if app.Config.Broadcast.Enabled {
		bc, err := broadcast.New(app.Config.Broadcast)
		if err != nil {
			return fail(f, err)
		}
		defer bc.Close()
		go func() {
			if err := bc.Run(ctx, app.Engine); err != nil {
				f.VerboseLog("broadcast listener stopped: %v", err)
			}
		}()
		f.VerboseLog("listening for invalidations on %s", app.Config.Broadcast.Channel)
	}

	var failed error
	c.watch(ctx, q, func(page models.Page[any], err error) {
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			failed = fail(f, err)
			stop()
			return
		}
		f.Success(page, func(w io.Writer) {
			fmt.Fprintf(w, "-- %s --\n", time.Now().Format(time.TimeOnly))
			writePage(w, page)
		})
	})
	return failed
}

// writePage prints the rows as a tab-aligned table of their top-level JSON
// fields, followed by the pagination line.
func writePage(w io.Writer, page models.Page[any]) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	var columns []string
	for i, row := range page.Data {
		fields := flatten(row)
		if i == 0 {
			columns = columnsOf(fields)
			fmt.Fprintln(tw, strings.ToUpper(strings.Join(columns, "\t")))
		}
		cells := make([]string, len(columns))
		for j, col := range columns {
			cells[j] = fields[col]
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()

	m := page.Meta
	fmt.Fprintf(w, "page %d/%d, %d total\n", m.Page, m.TotalPage, m.Total)
}

// flatten renders a row's scalar JSON fields as strings.
func flatten(row any) map[string]string {
	raw, err := json.Marshal(row)
	if err != nil {
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		switch v := v.(type) {
		case string:
			out[k] = v
		case float64, bool:
			out[k] = fmt.Sprint(v)
		case map[string]any:
			// badges
			if label, ok := v["label"].(string); ok {
				out[k] = label
			}
		}
	}
	return out
}

var preferredColumns = []string{"_id", "id", "name", "title", "email", "status", "amount", "createdAt"}

// columnsOf keeps the preferred columns present in fields, in order, and
// falls back to every field when none are.
func columnsOf(fields map[string]string) []string {
	var cols []string
	for _, c := range preferredColumns {
		if _, ok := fields[c]; ok {
			cols = append(cols, c)
		}
	}
	if len(cols) > 0 {
		return cols
	}
	for k := range fields {
		cols = append(cols, k)
	}
	slices.Sort(cols)
	return cols
}
