package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// cantonNames maps SHAB canton codes to their local display names.
// Unknown codes render as the code itself.
var cantonNames = map[string]string{
	"AG": "Aargau",
	"AI": "Appenzell Innerrhoden",
	"AR": "Appenzell Ausserrhoden",
	"BE": "Bern",
	"BL": "Basel-Landschaft",
	"BS": "Basel-Stadt",
	"FR": "Fribourg",
	"GE": "Genève",
	"GL": "Glarus",
	"GR": "Graubünden",
	"JU": "Jura",
	"LU": "Luzern",
	"NE": "Neuchâtel",
	"NW": "Nidwalden",
	"OW": "Obwalden",
	"SG": "St. Gallen",
	"SH": "Schaffhausen",
	"SO": "Solothurn",
	"SZ": "Schwyz",
	"TG": "Thurgau",
	"TI": "Ticino",
	"UR": "Uri",
	"VD": "Vaud",
	"VS": "Valais",
	"ZG": "Zug",
	"ZH": "Zürich",
}

// CantonName returns the display name for a canton code.
func CantonName(code string) string {
	if name, ok := cantonNames[code]; ok {
		return name
	}
	return code
}

// Render writes the report as an aligned text table. Column widths use
// display width, not byte length, so names with diacritics line up.
func Render(w io.Writer, r *Report) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Daily ingestion report for %s\n\n", r.Day.Format("2006-01-02"))

	summary := [][2]string{
		{"New publications", strconv.Itoa(r.NewPublications)},
		{"New auctions", strconv.Itoa(r.NewAuctions)},
		{"Auctions in the next 30 days", strconv.Itoa(r.UpcomingAuctions)},
	}
	writeTable(&sb, summary)

	if len(r.ByCanton) > 0 {
		sb.WriteString("\n")

		rows := [][2]string{{"Canton", "Publications"}, {"", ""}}
		for _, cc := range r.ByCanton {
			rows = append(rows, [2]string{CantonName(cc.Canton), strconv.Itoa(cc.Count)})
		}
		rows[1] = [2]string{
			strings.Repeat("-", maxWidth(rows, 0)),
			strings.Repeat("-", maxWidth(rows, 1)),
		}
		writeTable(&sb, rows)
	}

	fmt.Fprintf(&sb, "\nGenerated at %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeTable(sb *strings.Builder, rows [][2]string) {
	width := maxWidth(rows, 0)
	for _, row := range rows {
		sb.WriteString("  ")
		sb.WriteString(row[0])

		padding := width - runewidth.StringWidth(row[0])
		if padding > 0 {
			sb.WriteString(strings.Repeat(" ", padding))
		}

		sb.WriteString("  ")
		sb.WriteString(row[1])
		sb.WriteString("\n")
	}
}

func maxWidth(rows [][2]string, col int) int {
	width := 0
	for _, row := range rows {
		if w := runewidth.StringWidth(row[col]); w > width {
			width = w
		}
	}
	return width
}
