package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/kilianp07/powerplan/core/model"
)

// Supported output formats.
const (
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatTable = "table"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Entry is one plant of an exported plan, in merit order.
type Entry struct {
	Rank       int
	Name       string
	Type       string
	PmaxMW     decimal.Decimal
	SetpointMW decimal.Decimal
}

// Plan is a production plan flattened for display.
type Plan struct {
	LoadMW          decimal.Decimal
	RemainingLoadMW decimal.Decimal
	Entries         []Entry
}

// FromResult pairs the ranked plants with their allocation. ranked must be
// the list the result was computed over.
func FromResult(load model.Load, ranked []model.Powerplant, res model.ProductionResult) Plan {
	entries := make([]Entry, len(res.Productions))
	for i, p := range res.Productions {
		e := Entry{Rank: i + 1, Name: p.Name, SetpointMW: p.Production}
		if i < len(ranked) {
			e.Type = ranked[i].Kind().String()
			e.PmaxMW = ranked[i].Attrs().Pmax
		}
		entries[i] = e
	}
	return Plan{LoadMW: load.MW, RemainingLoadMW: res.RemainingLoad.MW, Entries: entries}
}

// Write renders p in the named format.
func Write(w io.Writer, format string, p Plan) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, p)
	case FormatCSV:
		return WriteCSV(w, p)
	case FormatTable:
		return WriteTable(w, p)
	}
	return fmt.Errorf("%w %q", ErrUnknownFormat, format)
}

type jsonEntry struct {
	Name string      `json:"name"`
	Type string      `json:"type,omitempty"`
	P    json.Number `json:"p"`
}

type jsonPlan struct {
	LoadMW          json.Number `json:"load_mw"`
	RemainingLoadMW json.Number `json:"remaining_load_mw"`
	Productions     []jsonEntry `json:"productions"`
}

// WriteJSON writes the plan as an indented JSON document.
func WriteJSON(w io.Writer, p Plan) error {
	out := jsonPlan{
		LoadMW:          json.Number(p.LoadMW.String()),
		RemainingLoadMW: json.Number(p.RemainingLoadMW.String()),
		Productions:     make([]jsonEntry, len(p.Entries)),
	}
	for i, e := range p.Entries {
		out.Productions[i] = jsonEntry{Name: e.Name, Type: e.Type, P: json.Number(e.SetpointMW.String())}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteCSV writes one row per plant.
func WriteCSV(w io.Writer, p Plan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rank", "name", "type", "pmax_mw", "p_mw"}); err != nil {
		return err
	}
	for _, e := range p.Entries {
		rec := []string{
			strconv.Itoa(e.Rank),
			e.Name,
			e.Type,
			e.PmaxMW.String(),
			e.SetpointMW.String(),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	idleStyle   = cellStyle.Foreground(lipgloss.Color("#999999"))
	unmetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	metStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
)

// WriteTable renders the plan as a terminal table followed by the load
// balance. Idle plants are dimmed.
func WriteTable(w io.Writer, p Plan) error {
	rows := make([][]string, len(p.Entries))
	for i, e := range p.Entries {
		rows[i] = []string{strconv.Itoa(e.Rank), e.Name, e.Type, e.PmaxMW.String(), e.SetpointMW.String()}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "PLANT", "TYPE", "PMAX MW", "P MW").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(p.Entries) && p.Entries[row].SetpointMW.IsZero() {
				return idleStyle
			}
			return cellStyle
		})
	balance := metStyle
	if !p.RemainingLoadMW.IsZero() {
		balance = unmetStyle
	}
	_, err := fmt.Fprintf(w, "%s\nload %s MW, remaining %s\n", t.Render(), p.LoadMW, balance.Render(p.RemainingLoadMW.String()+" MW"))
	return err
}
