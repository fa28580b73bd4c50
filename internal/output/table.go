// Package output renders CLI tables.
package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"FundingScanner/internal/domain"
)

// Table buffers rows and renders them borderless.
type Table struct {
	table  *tablewriter.Table
	header []string
	rows   [][]string
}

// NewTable creates a table writing to w.
func NewTable(w io.Writer, headers []string) *Table {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)
	return &Table{table: table, header: headers}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(row ...string) {
	t.rows = append(t.rows, row)
}

// Render writes header and rows.
func (t *Table) Render() error {
	t.table.Header(t.header)
	if err := t.table.Bulk(t.rows); err != nil {
		return fmt.Errorf("table rows: %w", err)
	}
	if err := t.table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

// AnnouncementTable renders announcements in digest order with display defaults.
func AnnouncementTable(w io.Writer, items []domain.Announcement) error {
	t := NewTable(w, []string{"Score", "Company", "Stage", "Amount", "Location", "Industry", "Source", "URL"})
	for _, a := range items {
		t.AddRow(
			strconv.Itoa(a.Score),
			a.DisplayCompany(),
			a.DisplayStage(),
			a.DisplayAmount(),
			a.DisplayLocation(),
			a.DisplayIndustry(),
			a.Source,
			a.URL,
		)
	}
	return t.Render()
}

// StatsTable renders store counters as key/value rows.
func StatsTable(w io.Writer, st domain.StoreStats) error {
	t := NewTable(w, []string{"Metric", "Value"})
	t.AddRow("seen articles", strconv.FormatInt(st.SeenArticles, 10))
	t.AddRow("funding articles", strconv.FormatInt(st.FundingArticles, 10))
	t.AddRow("announcements", strconv.FormatInt(st.Announcements, 10))
	t.AddRow("pending announcements", strconv.FormatInt(st.PendingAnnouncements, 10))
	return t.Render()
}
