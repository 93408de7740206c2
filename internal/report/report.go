// Package report renders deduplication results as terminal tables, CSV,
// JSON, and YAML.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/devdedup/internal/engine"
	"github.com/Sumatoshi-tech/devdedup/internal/eval"
)

// maxTableRows caps the rows printed per terminal table.
const maxTableRows = 50

// scoreFormat renders match scores with three decimals.
const scoreFormat = "%.3f"

// Member is one identity inside a rendered cluster.
type Member struct {
	Name  string `json:"name"  yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

// Cluster is a rendered duplicate group.
type Cluster struct {
	ID      int      `json:"id"      yaml:"id"`
	Members []Member `json:"members" yaml:"members"`
}

// Pair is a rendered duplicate pair with its match score.
type Pair struct {
	A     Member  `json:"a"     yaml:"a"`
	B     Member  `json:"b"     yaml:"b"`
	Score float64 `json:"score" yaml:"score"`
}

// Output is the serializable view of a deduplication run.
type Output struct {
	Stats    engine.Stats `json:"stats"    yaml:"stats"`
	Clusters []Cluster    `json:"clusters" yaml:"clusters"`
	Pairs    []Pair       `json:"pairs"    yaml:"pairs"`
}

// BuildOutput projects an engine result into its serializable view.
// Only clusters with more than one member are included.
func BuildOutput(res *engine.Result) Output {
	groups := res.Partition.Groups()
	clusters := make([]Cluster, 0, len(groups))

	for id, members := range groups {
		if len(members) < 2 {
			continue
		}

		rendered := make([]Member, 0, len(members))
		for _, idx := range members {
			raw := res.Pool.Raw(idx)
			rendered = append(rendered, Member{Name: raw.Name, Email: raw.Email})
		}

		clusters = append(clusters, Cluster{ID: id, Members: rendered})
	}

	rows := make([]Pair, 0, len(res.Duplicates))

	for _, dup := range res.Duplicates {
		a := res.Pool.Raw(dup.I)
		b := res.Pool.Raw(dup.J)
		rows = append(rows, Pair{
			A:     Member{Name: a.Name, Email: a.Email},
			B:     Member{Name: b.Name, Email: b.Email},
			Score: dup.Score,
		})
	}

	return Output{Stats: res.Stats, Clusters: clusters, Pairs: rows}
}

// Writer renders results to a terminal.
type Writer struct {
	out io.Writer
}

// NewWriter creates a terminal report writer.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Summary prints run statistics.
func (w *Writer) Summary(res *engine.Result) {
	color.New(color.FgGreen, color.Bold).Fprintln(w.out, "Deduplication summary")

	fmt.Fprintf(w.out, "  Raw records:   %s\n", humanize.Comma(int64(res.Stats.RawRecords)))
	fmt.Fprintf(w.out, "  Identities:    %s\n", humanize.Comma(int64(res.Stats.Identities)))
	fmt.Fprintf(w.out, "  Pairs scored:  %s\n", humanize.Comma(int64(res.Stats.PairsScored)))
	fmt.Fprintf(w.out, "  Matches:       %s\n", humanize.Comma(int64(res.Stats.Matches)))
	fmt.Fprintf(w.out, "  Clusters:      %s\n", humanize.Comma(int64(res.Stats.Clusters)))

	if res.Stats.Truncated {
		color.New(color.FgYellow).Fprintln(w.out,
			"  candidate pairs hit the max_pairs budget; results may be incomplete")
	}
}

// Clusters prints duplicate groups as a table, capped at maxTableRows.
func (w *Writer) Clusters(res *engine.Result) {
	output := BuildOutput(res)

	tbl := newTable(w.out)
	tbl.AppendHeader(table.Row{"Cluster", "Name", "Email"})

	rows := 0

	for _, cl := range output.Clusters {
		if rows >= maxTableRows {
			break
		}

		for _, m := range cl.Members {
			tbl.AppendRow(table.Row{cl.ID, m.Name, m.Email})
		}

		tbl.AppendSeparator()
		rows++
	}

	tbl.Render()

	if len(output.Clusters) > maxTableRows {
		fmt.Fprintf(w.out, "  ... and %d more clusters\n", len(output.Clusters)-maxTableRows)
	}
}

// Pairs prints matched pairs with scores as a table, capped at maxTableRows.
func (w *Writer) Pairs(res *engine.Result) {
	output := BuildOutput(res)

	tbl := newTable(w.out)
	tbl.AppendHeader(table.Row{"Name A", "Email A", "Name B", "Email B", "Score"})

	for i, p := range output.Pairs {
		if i >= maxTableRows {
			break
		}

		tbl.AppendRow(table.Row{
			p.A.Name, p.A.Email, p.B.Name, p.B.Email,
			fmt.Sprintf(scoreFormat, p.Score),
		})
	}

	tbl.Render()

	if len(output.Pairs) > maxTableRows {
		fmt.Fprintf(w.out, "  ... and %d more pairs\n", len(output.Pairs)-maxTableRows)
	}
}

// Metrics prints pairwise evaluation results as a table.
func (w *Writer) Metrics(result eval.Result) {
	tbl := newTable(w.out)
	tbl.AppendHeader(table.Row{"Metric", "Value"})
	tbl.AppendRow(table.Row{"Total pairs", humanize.Comma(int64(result.TotalPairs))})
	tbl.AppendRow(table.Row{"Candidate positives", humanize.Comma(int64(result.CandidatePositive))})
	tbl.AppendRow(table.Row{"Reference positives", humanize.Comma(int64(result.ReferencePositive))})
	tbl.AppendRow(table.Row{"True positives", humanize.Comma(int64(result.TruePositive))})
	tbl.AppendRow(table.Row{"Precision", fmt.Sprintf(scoreFormat, result.Precision)})
	tbl.AppendRow(table.Row{"Recall", fmt.Sprintf(scoreFormat, result.Recall)})
	tbl.AppendRow(table.Row{"F1", fmt.Sprintf(scoreFormat, result.F1)})
	tbl.Render()
}

func newTable(out io.Writer) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false

	return tbl
}

// WriteJSON writes the serializable view as indented JSON.
func WriteJSON(w io.Writer, output Output) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(output)
	if err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}

	return nil
}

// WriteYAML writes the serializable view as YAML.
func WriteYAML(w io.Writer, output Output) error {
	encoder := yaml.NewEncoder(w)

	err := encoder.Encode(output)
	if err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}

	err = encoder.Close()
	if err != nil {
		return fmt.Errorf("flush yaml report: %w", err)
	}

	return nil
}

// WriteMetricsJSON writes evaluation metrics as indented JSON.
func WriteMetricsJSON(w io.Writer, result eval.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(result)
	if err != nil {
		return fmt.Errorf("encode json metrics: %w", err)
	}

	return nil
}

// WriteMetricsYAML writes evaluation metrics as YAML.
func WriteMetricsYAML(w io.Writer, result eval.Result) error {
	err := yaml.NewEncoder(w).Encode(result)
	if err != nil {
		return fmt.Errorf("encode yaml metrics: %w", err)
	}

	return nil
}

// WriteClustersCSV writes one row per cluster member.
func WriteClustersCSV(w io.Writer, output Output) error {
	cw := csv.NewWriter(w)

	err := cw.Write([]string{"cluster", "name", "email"})
	if err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, cl := range output.Clusters {
		for _, m := range cl.Members {
			err = cw.Write([]string{strconv.Itoa(cl.ID), m.Name, m.Email})
			if err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}

// WritePairsCSV writes one row per matched pair.
func WritePairsCSV(w io.Writer, output Output) error {
	cw := csv.NewWriter(w)

	err := cw.Write([]string{"name_a", "email_a", "name_b", "email_b", "score"})
	if err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, p := range output.Pairs {
		err = cw.Write([]string{
			p.A.Name, p.A.Email, p.B.Name, p.B.Email,
			strconv.FormatFloat(p.Score, 'f', 3, 64),
		})
		if err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}
