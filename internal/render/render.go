package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/five82/parkdash/internal/parking"
)

//go:embed widget.css
var widgetCSS string

// Options control markup generation.
type Options struct {
	// ShowTimestamp adds the last update time to every card.
	ShowTimestamp bool
	// Location formats timestamps; nil means time.Local.
	Location *time.Location
}

// Badge classes keyed by status. The class names are part of the embedding
// contract so host pages can restyle them.
var badgeClass = map[parking.Status]string{
	parking.StatusCritical: "red",
	parking.StatusWarning:  "orange",
	parking.StatusNormal:   "green",
	parking.StatusStale:    "gray",
}

var badgeColor = map[string]string{
	"red":    "#ff4d4d",
	"orange": "#FAC903",
	"green":  "#5cd65c",
	"gray":   "#bfbfbf",
}

// BadgeClass returns the CSS class for a status.
func BadgeClass(s parking.Status) string {
	if c, ok := badgeClass[s]; ok {
		return c
	}
	return "gray"
}

// StatusColor returns the badge background color for a status.
func StatusColor(s parking.Status) string {
	return badgeColor[BadgeClass(s)]
}

type cardView struct {
	Class      string
	Percentage string
	Capacity   string
	Name       string
	Timestamp  string
}

type fragmentView struct {
	CSS   template.CSS
	Cards []cardView
}

var fragmentTmpl = template.Must(template.New("fragment").Parse(`<style>
{{.CSS}}</style>
<div class="container">
{{- range .Cards}}
    <div class="card">
        <div class="badge {{.Class}}">
            <div class="percentage">{{.Percentage}}</div>
            <div class="capacity">{{.Capacity}}</div>
        </div>
        <div class="detail">
            <div class="name">{{.Name}}</div>
            <div>{{.Timestamp}}</div>
        </div>
    </div>
{{- end}}
</div>
`))

var documentTmpl = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{- if .Refresh}}
<meta http-equiv="refresh" content="{{.Refresh}}">
{{- end}}
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}</body>
</html>
`))

// Markup renders the widget fragment for a classified, sorted card list.
// The output depends only on its arguments.
func Markup(cards []parking.Card, opts Options) (string, error) {
	view := fragmentView{
		CSS:   template.CSS(widgetCSS),
		Cards: make([]cardView, 0, len(cards)),
	}
	for _, c := range cards {
		view.Cards = append(view.Cards, cardView{
			Class:      BadgeClass(c.Status),
			Percentage: PercentLabel(c),
			Capacity:   CapacityLabel(c),
			Name:       c.Name,
			Timestamp:  timestampLabel(c, opts),
		})
	}
	var buf bytes.Buffer
	if err := fragmentTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render fragment: %w", err)
	}
	return buf.String(), nil
}

// Document wraps a fragment into a standalone page. refresh is the reload
// cadence; zero omits the refresh header.
func Document(fragment, title string, refresh time.Duration) (string, error) {
	data := struct {
		Title   string
		Refresh int
		Body    template.HTML
	}{
		Title:   title,
		Refresh: int(refresh / time.Second),
		Body:    template.HTML(fragment),
	}
	var buf bytes.Buffer
	if err := documentTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}
	return buf.String(), nil
}

// PercentLabel is "NN%", or "--%" when the capacity is unusable.
func PercentLabel(c parking.Card) string {
	if !c.Known {
		return "--%"
	}
	return fmt.Sprintf("%d%%", c.Percentage)
}

// CapacityLabel is "occupied / capacity".
func CapacityLabel(c parking.Card) string {
	return fmt.Sprintf("%d / %d", c.Occupied, c.Capacity)
}

// FormatTimestamp renders H:MM, D/M/YYYY in loc.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return fmt.Sprintf("%d:%02d, %d/%d/%d", t.Hour(), t.Minute(), t.Day(), int(t.Month()), t.Year())
}

func timestampLabel(c parking.Card, opts Options) string {
	if !opts.ShowTimestamp || c.Updated.IsZero() {
		return ""
	}
	return FormatTimestamp(c.Updated, opts.Location)
}
