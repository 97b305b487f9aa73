package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bobmcallan/carfeed/internal/clients/feedbackapi"
	"github.com/bobmcallan/carfeed/internal/dashboard"
	"github.com/bobmcallan/carfeed/internal/models"
	"github.com/bobmcallan/carfeed/internal/services/chart"
)

// REPL reads commands line by line and drives the dashboard controller.
type REPL struct {
	ctrl    *dashboard.Controller
	scanner *bufio.Scanner
	out     io.Writer
}

// NewREPL creates a REPL over in and out.
func NewREPL(ctrl *dashboard.Controller, in io.Reader, out io.Writer) *REPL {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &REPL{ctrl: ctrl, scanner: scanner, out: out}
}

// Run processes commands until quit or end of input.
func (r *REPL) Run(ctx context.Context) error {
	r.ctrl.Wait()
	fmt.Fprintln(r.out, "Carfeed feedback dashboard. Type 'help' for commands.")
	r.render()

	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(r.out, r.prompt())
		if !r.scanner.Scan() {
			return r.scanner.Err()
		}
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}

		quit, err := r.execute(ctx, line)
		if err != nil {
			fmt.Fprintf(r.out, "error: %s\n", describeError(err))
		}
		if quit {
			return nil
		}
	}
}

func (r *REPL) prompt() string {
	switch {
	case r.ctrl.Snapshot().Edit != nil:
		return "carfeed (editing)> "
	case r.ctrl.IsAdmin():
		return "carfeed (admin)> "
	}
	return "carfeed> "
}

// Confirm asks a yes/no question on the same input stream.
func (r *REPL) Confirm(prompt string) bool {
	fmt.Fprintf(r.out, "%s [y/N] ", prompt)
	if !r.scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(r.scanner.Text()))
	return answer == "y" || answer == "yes"
}

// execute runs one command line. It reports whether the REPL should exit.
func (r *REPL) execute(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	rest := strings.TrimSpace(line[len(fields[0]):])

	switch cmd {
	case "help", "?":
		fmt.Fprint(r.out, helpText)
		return false, nil

	case "quit", "exit":
		return true, nil

	case "list", "ls":
		r.render()
		return false, nil

	case "refresh":
		r.ctrl.Refresh()

	case "next":
		r.ctrl.NextPage()

	case "prev":
		r.ctrl.PrevPage()

	case "page":
		n, err := strconv.Atoi(rest)
		if err != nil {
			return false, fmt.Errorf("usage: page <number>")
		}
		if err := r.ctrl.SetPage(n); err != nil {
			return false, err
		}

	case "filter":
		if err := r.filter(rest); err != nil {
			return false, err
		}

	case "brand":
		product, err := matchProduct(rest)
		if err != nil {
			return false, err
		}
		r.ctrl.SetDraft(r.ctrl.Snapshot().Draft.Text, product)
		fmt.Fprintf(r.out, "Submitting as %s\n", product)
		return false, nil

	case "submit":
		if err := r.submit(ctx, rest); err != nil {
			r.showMessage()
			return false, err
		}

	case "login":
		if _, err := r.ctrl.Login(ctx, rest); err != nil {
			r.showMessage()
			return false, err
		}

	case "logout":
		r.ctrl.Logout()

	case "edit":
		item, err := r.resolveItem(rest)
		if err != nil {
			return false, err
		}
		if err := r.ctrl.BeginEdit(item); err != nil {
			return false, err
		}
		fmt.Fprint(r.out, formatEdit(r.ctrl.Snapshot().Edit))
		return false, nil

	case "translation":
		if err := r.ctrl.SetDraftTranslation(rest); err != nil {
			return false, err
		}
		fmt.Fprint(r.out, formatEdit(r.ctrl.Snapshot().Edit))
		return false, nil

	case "sentiment":
		if err := r.ctrl.SetDraftSentiment(strings.ToLower(rest)); err != nil {
			return false, err
		}
		fmt.Fprint(r.out, formatEdit(r.ctrl.Snapshot().Edit))
		return false, nil

	case "commit", "save":
		if err := r.ctrl.CommitEdit(ctx); err != nil {
			r.showMessage()
			return false, err
		}

	case "cancel":
		r.ctrl.CancelEdit()
		fmt.Fprintln(r.out, "Edit discarded.")
		return false, nil

	case "delete", "rm":
		item, err := r.resolveItem(rest)
		if err != nil {
			return false, err
		}
		if _, err := r.ctrl.Delete(ctx, item.ID, r); err != nil {
			r.showMessage()
			return false, err
		}

	case "stats":
		r.ctrl.Wait()
		snap := r.ctrl.Snapshot()
		fmt.Fprint(r.out, formatStats(snap.Stats, snap.StatsLoaded))
		return false, nil

	case "chart":
		return false, r.writeChart(rest)

	default:
		return false, fmt.Errorf("unknown command %q (try 'help')", cmd)
	}

	r.render()
	return false, nil
}

// filter handles "filter <product|sentiment|language> <value>".
func (r *REPL) filter(args string) error {
	kind, value, _ := strings.Cut(args, " ")
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("usage: filter <product|sentiment|language> <value|All>")
	}

	switch strings.ToLower(kind) {
	case "product":
		if strings.EqualFold(value, models.FilterAll) {
			return r.ctrl.SetProduct(models.FilterAll)
		}
		product, err := matchProduct(value)
		if err != nil {
			return err
		}
		return r.ctrl.SetProduct(product)
	case "sentiment":
		if strings.EqualFold(value, models.FilterAll) {
			return r.ctrl.SetSentiment(models.FilterAll)
		}
		return r.ctrl.SetSentiment(strings.ToLower(value))
	case "language":
		return r.ctrl.SetLanguage(matchLanguage(value))
	}
	return fmt.Errorf("unknown filter %q", kind)
}

// submit handles "submit [Product:] text".
func (r *REPL) submit(ctx context.Context, args string) error {
	product := r.ctrl.Snapshot().Draft.Product
	text := args
	if before, after, ok := strings.Cut(args, ":"); ok {
		if p, err := matchProduct(before); err == nil {
			product = p
			text = strings.TrimSpace(after)
		}
	}

	_, err := r.ctrl.Submit(ctx, text, product)
	return err
}

// resolveItem accepts a 1-based row number on the current page or an id.
func (r *REPL) resolveItem(ref string) (*models.Feedback, error) {
	if ref == "" {
		return nil, fmt.Errorf("specify a row number or feedback id")
	}
	if n, err := strconv.Atoi(ref); err == nil {
		items := r.ctrl.Snapshot().Items
		if n < 1 || n > len(items) {
			return nil, fmt.Errorf("row %d is not on this page", n)
		}
		return items[n-1], nil
	}
	if item := r.ctrl.Item(ref); item != nil {
		return item, nil
	}
	return nil, fmt.Errorf("feedback %s is not on this page", ref)
}

func (r *REPL) writeChart(path string) error {
	if path == "" {
		return fmt.Errorf("usage: chart <file.png>")
	}
	r.ctrl.Wait()
	snap := r.ctrl.Snapshot()
	if !snap.StatsLoaded {
		return fmt.Errorf("statistics are not loaded yet")
	}
	png, err := chart.RenderSentimentPie(snap.Stats)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, png, 0644); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	fmt.Fprintf(r.out, "Chart written to %s\n", path)
	return nil
}

// render waits for in-flight fetches and prints the message and list.
func (r *REPL) render() {
	r.ctrl.Wait()
	snap := r.ctrl.Snapshot()
	fmt.Fprint(r.out, formatMessage(snap.Message))
	fmt.Fprint(r.out, formatFeedbackList(snap))
}

func (r *REPL) showMessage() {
	fmt.Fprint(r.out, formatMessage(r.ctrl.Snapshot().Message))
}

func matchProduct(name string) (string, error) {
	name = strings.TrimSpace(name)
	for _, p := range models.Products {
		if strings.EqualFold(p, name) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown product %q", name)
}

// matchLanguage accepts a code or a display name.
func matchLanguage(value string) string {
	for _, o := range models.LanguageOptions {
		if strings.EqualFold(o.Code, value) || strings.EqualFold(o.Name, value) {
			return o.Code
		}
	}
	return value
}

func describeError(err error) string {
	var v *dashboard.ValidationError
	if errors.As(err, &v) {
		return v.Reason
	}
	var apiErr *feedbackapi.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("server returned %d: %s", apiErr.StatusCode, apiErr.Message)
	}
	return err.Error()
}

const helpText = `Commands:
  list | refresh                 show the current page / refetch
  next | prev | page <n>         paginate
  filter product <name|All>      filter by brand
  filter sentiment <value|All>   positive, negative, neutral
  filter language <code|All>     en, fr, ... review, Others
  brand <name>                   brand for the next submission
  submit [Brand:] <text>         send feedback
  stats | chart <file.png>       sentiment totals / pie chart
  login <password> | logout      admin mode
  edit <row|id>                  moderate an item (admin)
  translation <text>             set the draft translation
  sentiment <value>              set the draft sentiment
  commit | cancel                save or discard the draft
  delete <row|id>                delete an item (admin)
  quit
`
