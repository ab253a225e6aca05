package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"template_hub/internal/domain/models"
	"template_hub/internal/lib/apierr"
	billing "template_hub/internal/services/billing_service"
	projects "template_hub/internal/services/project_service"

	"github.com/fatih/color"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
)

func printTemplates(w io.Writer, items []models.Template, p models.Pagination, userID string) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, bold("ID\tPROJECT\tTAGS\tLIKES\tDISLIKES\tYOU"))
	for _, t := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			t.ID,
			t.Project.Title,
			strings.Join(t.Project.Tags, ","),
			t.LikeCount,
			t.DislikeCount,
			reactionMark(t, userID),
		)
	}
	tw.Flush()
	printPagination(w, p)
}

func reactionMark(t models.Template, userID string) string {
	switch {
	case userID == "":
		return ""
	case t.LikedBy(userID):
		return green("liked")
	case t.DislikedBy(userID):
		return red("disliked")
	}
	return faint("-")
}

func printProjects(w io.Writer, items []models.Project, p models.Pagination) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, bold("ID\tTITLE\tSTATUS\tIMAGES\tPUBLISHED"))
	for _, pr := range items {
		published := faint("no")
		if pr.Published {
			published = green("yes")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", pr.ID, pr.Title, pr.Status, len(pr.Images), published)
	}
	tw.Flush()
	printPagination(w, p)
}

func printPagination(w io.Writer, p models.Pagination) {
	fmt.Fprintln(w, faint(fmt.Sprintf("page %d of %d (%d total, %d per page)", p.Page, p.TotalPages, p.Total, p.Limit)))
}

func printQuotes(w io.Writer, quotes []billing.PlanQuote) {
	for _, q := range quotes {
		title := bold(q.Plan.Title)
		if q.Plan.Highlighted {
			title = cyan(q.Plan.Title + " *")
		}
		fmt.Fprintf(w, "%s  %s / %s  %s\n", title, q.Price.Display, q.Plan.Duration, faint("["+q.Plan.ID+"]"))
		for _, f := range q.Plan.Features {
			fmt.Fprintf(w, "    - %s\n", f)
		}
	}
}

// reportedError - ошибка, уже показанная пользователю
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error { return e.error }

// report печатает сообщение для пользователя и ошибки по полям
func report(w io.Writer, err error) error {
	msg, fields := apierr.Message(err), apierr.FieldErrors(err)
	var form *projects.FormResult
	if errors.As(err, &form) {
		msg, fields = form.Message, form.Errors
	}

	fmt.Fprintf(w, "%s %s\n", red(apierr.KindOf(err).String()+":"), msg)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, field := range keys {
		fmt.Fprintf(w, "    %s: %s\n", field, fields[field])
	}
	return reportedError{err}
}
