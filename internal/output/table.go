package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/vijay-prabhu/jobmatch/internal/config"
	"github.com/vijay-prabhu/jobmatch/internal/database"
	"github.com/vijay-prabhu/jobmatch/internal/job"
	"github.com/vijay-prabhu/jobmatch/internal/matcher"
	"github.com/vijay-prabhu/jobmatch/internal/recency"
)

// now is the clock used for relative dates
var now = time.Now

// Table writes data as a formatted table to stdout
func Table(data interface{}) error {
	return TableTo(os.Stdout, data)
}

// TableTo writes data as a formatted table to the given writer
func TableTo(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case []job.Posting:
		return postingsTable(w, v)
	case *matcher.RunResult:
		return runSummary(w, v)
	case *matcher.DeliveryReport:
		return deliverySummary(w, v)
	case []recency.Entry:
		return entriesTable(w, v)
	case recency.Stats:
		return cacheStats(w, v)
	case []database.MatchRun:
		return runsTable(w, v)
	case *database.RunStats:
		return runStats(w, v)
	case []config.User:
		return usersTable(w, v)
	default:
		return fmt.Errorf("unsupported data type for table output: %T", data)
	}
}

func render(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(header)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}
	return table.Render()
}

func postingsTable(w io.Writer, postings []job.Posting) error {
	if len(postings) == 0 {
		fmt.Fprintln(w, "No matching jobs.")
		return nil
	}

	rows := make([][]string, 0, len(postings))
	for _, p := range postings {
		rows = append(rows, []string{
			strconv.Itoa(p.Score),
			strconv.Itoa(p.TFIDFScore),
			truncate(p.Title, 35),
			truncate(p.Company, 20),
			truncate(p.Location, 20),
			truncate(strings.Join(p.MatchReasons, "; "), 50),
		})
	}
	return render(w, []string{"SCORE", "BOOST", "TITLE", "COMPANY", "LOCATION", "REASONS"}, rows)
}

func runSummary(w io.Writer, r *matcher.RunResult) error {
	fmt.Fprintf(w, "Run %s\n", r.RunID)
	fmt.Fprintln(w, strings.Repeat("-", 30))
	fmt.Fprintf(w, "Postings in:            %d\n", r.PostingsIn)
	fmt.Fprintf(w, "Dropped at ingestion:   %d\n", r.PostingsDropped)
	fmt.Fprintf(w, "Unique postings:        %d\n", r.PostingsUnique)
	fmt.Fprintf(w, "Duration:               %s\n", r.Duration().Round(time.Millisecond))
	if r.Overrun {
		fmt.Fprintln(w, "Warning:                run exceeded its time budget")
	}
	fmt.Fprintln(w)

	for _, res := range r.Results {
		fmt.Fprintf(w, "%s: %d of %d jobs (avg %.1f, %d high, %d recently shown, threshold %d, %s)\n",
			res.Username,
			res.Stats.JobsMatched,
			res.Stats.TotalJobsChecked,
			res.Stats.AvgScore,
			res.Stats.HighMatchCount,
			res.Stats.RecentlyShown,
			res.Stats.Threshold,
			res.Stats.Selection,
		)
		if len(res.Jobs) > 0 {
			if err := postingsTable(w, res.Jobs); err != nil {
				return err
			}
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  %s\n", err)
		}
	}
	return nil
}

func deliverySummary(w io.Writer, d *matcher.DeliveryReport) error {
	fmt.Fprintf(w, "Delivered %d jobs to %d users\n", d.Delivered, d.Users)
	for _, err := range d.Errors {
		fmt.Fprintf(w, "  failed: %s\n", err)
	}
	return nil
}

func entriesTable(w io.Writer, entries []recency.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "Recency cache is empty.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			truncate(e.Title, 30),
			truncate(e.Company, 20),
			strings.Join(e.ShownToUsers, ", "),
			formatLastSeen(e.LastSeen),
			truncate(e.URL, 50),
		})
	}
	return render(w, []string{"TITLE", "COMPANY", "SHOWN TO", "LAST SEEN", "URL"}, rows)
}

func cacheStats(w io.Writer, s recency.Stats) error {
	fmt.Fprintln(w, "Recency Cache")
	fmt.Fprintln(w, strings.Repeat("-", 30))
	fmt.Fprintf(w, "Entries:                %d\n", s.Entries)
	fmt.Fprintf(w, "Users:                  %d\n", s.Users)
	if s.Oldest != "" {
		fmt.Fprintf(w, "Oldest last seen:       %s\n", s.Oldest)
		fmt.Fprintf(w, "Newest last seen:       %s\n", s.Newest)
	}
	return nil
}

func runsTable(w io.Writer, runs []database.MatchRun) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		overrun := ""
		if r.Overrun {
			overrun = "yes"
		}
		rows = append(rows, []string{
			r.StartedAt.Local().Format("Jan 02 15:04"),
			r.Duration().Round(time.Millisecond).String(),
			strconv.Itoa(r.Input),
			strconv.Itoa(r.Unique),
			strconv.Itoa(r.Users),
			strconv.Itoa(r.Selected),
			strconv.Itoa(r.Delivered),
			strconv.Itoa(r.Errors),
			overrun,
		})
	}
	return render(w, []string{"STARTED", "DURATION", "INPUT", "UNIQUE", "USERS", "SELECTED", "DELIVERED", "ERRORS", "OVERRUN"}, rows)
}

func runStats(w io.Writer, s *database.RunStats) error {
	fmt.Fprintln(w, "Run History")
	fmt.Fprintln(w, strings.Repeat("-", 30))
	fmt.Fprintf(w, "Total runs:             %d\n", s.TotalRuns)
	fmt.Fprintf(w, "Jobs delivered:         %d\n", s.TotalDelivered)
	fmt.Fprintf(w, "Errors:                 %d\n", s.TotalErrors)
	fmt.Fprintf(w, "Overruns:               %d\n", s.Overruns)
	if s.LastRunAt != nil {
		fmt.Fprintf(w, "Last run:               %s\n", s.LastRunAt.Local().Format("Jan 02, 2006 15:04"))
	}
	return nil
}

func usersTable(w io.Writer, users []config.User) error {
	if len(users) == 0 {
		fmt.Fprintln(w, "No users configured.")
		return nil
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		enabled := "no"
		if u.Config.Enabled {
			enabled = "yes"
		}
		threshold := "-"
		if u.Config.MatchingThreshold > 0 {
			threshold = strconv.Itoa(u.Config.MatchingThreshold)
		}
		rows = append(rows, []string{
			u.Username,
			enabled,
			threshold,
			strconv.Itoa(u.Config.MaxJobsPerDay),
			truncate(strings.Join(u.Profile.TargetRoles, ", "), 40),
		})
	}
	return render(w, []string{"USER", "ENABLED", "THRESHOLD", "MAX/DAY", "TARGET ROLES"}, rows)
}

// formatLastSeen renders a calendar date relative to today
func formatLastSeen(date string) string {
	t := now()
	seen, err := time.ParseInLocation(recency.DateLayout, date, t.Location())
	if err != nil {
		return date
	}
	today := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return formatLastActivity(int(today.Sub(seen).Hours() / 24))
}

func formatLastActivity(days int) string {
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return fmt.Sprintf("%d weeks ago", days/7)
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
