package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"photo_feed/internal/fetcher"
	"photo_feed/internal/filter"
	"photo_feed/internal/model"
)

var ruleFlags = []struct {
	flag string
	kind filter.Kind
}{
	{"include", filter.Include},
	{"exclude", filter.Exclude},
	{"include-re", filter.IncludeRe},
	{"exclude-re", filter.ExcludeRe},
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [tags...]",
		Short: "Search the feed by tag and print the photos",
		Long: `Runs one feed search and prints one line per photo. Without tags the
most recent public photos are listed.

Filter rules take the form [title:|tags:|all:]value and may be repeated.`,
		RunE: runSearch,
	}

	flags := cmd.Flags()
	flags.Bool("any", false, "match any of the tags instead of all")
	flags.Bool("json", false, "print one JSON object per line")
	flags.Int("limit", 0, "print at most this many photos (0 for all)")
	flags.Uint64("retries", 0, "extra attempts after a failed search (overrides RETRIES)")
	for _, rf := range ruleFlags {
		flags.StringArray(rf.flag, nil, fmt.Sprintf("%s rule", strings.ReplaceAll(string(rf.kind), "_", " ")))
	}
	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg, cmd.ErrOrStderr())

	rules, err := parseRules(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	retries := cfg.Retries
	if flags.Changed("retries") {
		if retries, err = flags.GetUint64("retries"); err != nil {
			return err
		}
	}

	p := newPipeline(cfg, fetcher.Inline{}, log)
	req := p.Request(strings.Join(args, ","))
	if anyTag, _ := flags.GetBool("any"); anyTag {
		req.MatchAll = false
	}

	res := p.SearchRetry(ctx, req, retries, cfg.RetryBackoff)
	if !res.OK() {
		return fmt.Errorf("search %q: %s", req.Tags, res.Status)
	}

	records := filter.Apply(res.Records, rules)
	if limit, _ := flags.GetInt("limit"); limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	asJSON, _ := flags.GetBool("json")
	return writeRecords(cmd.OutOrStdout(), records, asJSON)
}

func parseRules(cmd *cobra.Command) ([]filter.Rule, error) {
	var rules []filter.Rule
	for _, rf := range ruleFlags {
		specs, err := cmd.Flags().GetStringArray(rf.flag)
		if err != nil {
			return nil, err
		}
		for _, spec := range specs {
			r, err := filter.ParseRule(rf.kind, spec)
			if err != nil {
				return nil, fmt.Errorf("--%s %q: %w", rf.flag, spec, err)
			}
			rules = append(rules, r)
		}
	}
	return rules, nil
}

func writeRecords(w io.Writer, records []model.PhotoRecord, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		for _, rec := range records {
			if err := enc.Encode(rec); err != nil {
				return fmt.Errorf("write record: %w", err)
			}
		}
		return nil
	}

	for _, rec := range records {
		title := rec.Title
		if title == "" {
			title = "(untitled)"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", title, rec.Author, rec.LargeURL); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	return nil
}
