package output

import (
	"fmt"
	"html"
	"strings"

	"github.com/vsinha/workforce/pkg/domain/entities"
)

// StaffingChart draws minimum and planned headcount per week as grouped bars
type StaffingChart struct {
	Width        int
	Height       int
	MarginLeft   int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	WeekWidth    int
	MaxHeadcount entities.Headcount
}

// ChartBar represents a single bar in the staffing chart
type ChartBar struct {
	Week      int
	Value     entities.Headcount
	X         int
	Y         int
	Width     int
	Height    int
	Color     string
	Label     string
	IsMinimum bool
}

// NewStaffingChart sizes a chart for plan
func NewStaffingChart(plan *entities.PlanRecord) *StaffingChart {
	if len(plan.Weeks) == 0 {
		return &StaffingChart{
			Width:        800,
			Height:       200,
			MarginLeft:   60,
			MarginTop:    50,
			MarginRight:  50,
			MarginBottom: 50,
			WeekWidth:    60,
		}
	}

	var maxHeadcount entities.Headcount
	for _, week := range plan.Weeks {
		maxHeadcount = max(maxHeadcount, week.Minimum, week.Headcount)
	}
	// keep the y axis meaningful for all-zero plans
	maxHeadcount = max(maxHeadcount, 1)

	weekWidth := 60
	return &StaffingChart{
		Width:        max(600, len(plan.Weeks)*weekWidth+260),
		Height:       420,
		MarginLeft:   60,
		MarginTop:    60,
		MarginRight:  200,
		MarginBottom: 60,
		WeekWidth:    weekWidth,
		MaxHeadcount: maxHeadcount,
	}
}

// GenerateSVG creates an SVG representation of the staffing chart
func (sc *StaffingChart) GenerateSVG(plan *entities.PlanRecord) string {
	if len(plan.Weeks) == 0 {
		return sc.generateEmptyChart()
	}

	var svg strings.Builder

	// SVG header
	svg.WriteString(fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`, sc.Width, sc.Height))
	svg.WriteString(`<defs>`)
	svg.WriteString(`<style>`)
	svg.WriteString(`.axis-label { font-family: Arial, sans-serif; font-size: 12px; fill: #333; }`)
	svg.WriteString(`.tick-label { font-family: Arial, sans-serif; font-size: 10px; fill: #666; }`)
	svg.WriteString(`.title { font-family: Arial, sans-serif; font-size: 16px; font-weight: bold; fill: #333; }`)
	svg.WriteString(`.grid-line { stroke: #e0e0e0; stroke-width: 1; }`)
	svg.WriteString(`.bar { stroke: #333; stroke-width: 1; }`)
	svg.WriteString(`.bar-text { font-family: Arial, sans-serif; font-size: 9px; fill: #333; }`)
	svg.WriteString(`</style>`)
	svg.WriteString(`</defs>`)

	// Background
	svg.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="white"/>`, sc.Width, sc.Height))

	// Title
	svg.WriteString(fmt.Sprintf(`<text x="%d" y="30" class="title" text-anchor="middle">Staffing Plan - %s (total %s)</text>`,
		sc.Width/2, html.EscapeString(plan.Name), html.EscapeString("$"+plan.TotalCost.StringFixed(2))))

	sc.drawHeadcountGrid(&svg)
	sc.drawWeekAxis(&svg, len(plan.Weeks))
	for _, bar := range sc.createBars(plan.Weeks) {
		sc.drawBar(&svg, bar)
	}
	sc.drawLegend(&svg)

	svg.WriteString(`</svg>`)
	return svg.String()
}

func (sc *StaffingChart) plotHeight() int {
	return sc.Height - sc.MarginTop - sc.MarginBottom
}

// y returns the vertical pixel position of a headcount value
func (sc *StaffingChart) y(value entities.Headcount) int {
	return sc.Height - sc.MarginBottom - int(float64(value)/float64(sc.MaxHeadcount)*float64(sc.plotHeight()))
}

// createBars lays out a minimum bar and a planned bar side by side for every week
func (sc *StaffingChart) createBars(weeks []entities.WeekPlan) []ChartBar {
	barWidth := (sc.WeekWidth - 12) / 2
	bars := make([]ChartBar, 0, 2*len(weeks))

	for i, week := range weeks {
		x := sc.MarginLeft + i*sc.WeekWidth + 6

		bars = append(bars, ChartBar{
			Week:      week.Week,
			Value:     week.Minimum,
			X:         x,
			Y:         sc.y(week.Minimum),
			Width:     barWidth,
			Height:    sc.Height - sc.MarginBottom - sc.y(week.Minimum),
			Color:     "#9E9E9E",
			Label:     fmt.Sprintf("Week %d minimum: %d", week.Week, week.Minimum),
			IsMinimum: true,
		})
		bars = append(bars, ChartBar{
			Week:   week.Week,
			Value:  week.Headcount,
			X:      x + barWidth,
			Y:      sc.y(week.Headcount),
			Width:  barWidth,
			Height: sc.Height - sc.MarginBottom - sc.y(week.Headcount),
			Color:  sc.getBarColor(week.Action),
			Label: fmt.Sprintf("Week %d headcount: %d, cost: $%s, %s",
				week.Week, week.Headcount, week.Cost.StringFixed(2), week.Decision()),
		})
	}
	return bars
}

// drawHeadcountGrid draws horizontal grid lines with headcount labels
func (sc *StaffingChart) drawHeadcountGrid(svg *strings.Builder) {
	step := max(1, int(sc.MaxHeadcount)/5)
	right := sc.Width - sc.MarginRight

	for value := 0; value <= int(sc.MaxHeadcount); value += step {
		y := sc.y(entities.Headcount(value))
		svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
			sc.MarginLeft, y, right, y))
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="tick-label" text-anchor="end">%d</text>`,
			sc.MarginLeft-8, y+4, value))
	}

	svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="axis-label" transform="rotate(-90 %d %d)" text-anchor="middle">Headcount</text>`,
		sc.MarginLeft-40, sc.MarginTop+sc.plotHeight()/2, sc.MarginLeft-40, sc.MarginTop+sc.plotHeight()/2))
}

// drawWeekAxis draws the week labels under each bar group
func (sc *StaffingChart) drawWeekAxis(svg *strings.Builder, weeks int) {
	baseline := sc.Height - sc.MarginBottom
	svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
		sc.MarginLeft, baseline, sc.MarginLeft+weeks*sc.WeekWidth, baseline))

	for i := 0; i < weeks; i++ {
		x := sc.MarginLeft + i*sc.WeekWidth + sc.WeekWidth/2
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="tick-label" text-anchor="middle">W%d</text>`,
			x, baseline+15, i+1))
	}

	svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="axis-label" text-anchor="middle">Week</text>`,
		sc.MarginLeft+weeks*sc.WeekWidth/2, baseline+40))
}

// drawBar draws one bar with its value and a tooltip
func (sc *StaffingChart) drawBar(svg *strings.Builder, bar ChartBar) {
	svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s" class="bar">`,
		bar.X, bar.Y, bar.Width, bar.Height, bar.Color))
	// Tooltip (SVG title element)
	svg.WriteString(fmt.Sprintf(`<title>%s</title>`, html.EscapeString(bar.Label)))
	svg.WriteString(`</rect>`)

	svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="bar-text" text-anchor="middle">%d</text>`,
		bar.X+bar.Width/2, bar.Y-3, bar.Value))
}

// drawLegend draws a legend explaining the colors
func (sc *StaffingChart) drawLegend(svg *strings.Builder) {
	legendX := sc.Width - sc.MarginRight + 20
	legendY := sc.MarginTop

	// Legend background
	svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="160" height="72" fill="white" stroke="#ccc" stroke-width="1"/>`,
		legendX, legendY))

	// Legend title
	svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="axis-label" font-weight="bold">Legend</text>`,
		legendX+10, legendY+15))

	// Legend items
	items := []struct {
		color string
		label string
	}{
		{"#9E9E9E", "Minimum required"},
		{sc.getBarColor(entities.Hire), "Planned (hire)"},
		{sc.getBarColor(entities.Maintain), "Planned (maintain)"},
		{sc.getBarColor(entities.LayOff), "Planned (lay off)"},
	}

	for i, item := range items {
		itemY := legendY + 25 + i*12
		svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="12" height="8" fill="%s"/>`,
			legendX+10, itemY, item.color))
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="tick-label">%s</text>`,
			legendX+30, itemY+8, item.label))
	}
}

// getBarColor returns the planned bar color for a staffing action
func (sc *StaffingChart) getBarColor(action entities.Action) string {
	switch action {
	case entities.Hire:
		return "#4CAF50" // Green for hires
	case entities.LayOff:
		return "#FF9800" // Orange for layoffs
	default:
		return "#2196F3" // Blue when headcount is unchanged
	}
}

// generateEmptyChart creates an empty chart when the plan has no weeks
func (sc *StaffingChart) generateEmptyChart() string {
	return fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
		<rect width="%d" height="%d" fill="white"/>
		<text x="%d" y="%d" class="title" text-anchor="middle">No Weeks Planned</text>
		<style>
			.title { font-family: Arial, sans-serif; font-size: 16px; fill: #666; }
		</style>
	</svg>`, sc.Width, sc.Height, sc.Width, sc.Height, sc.Width/2, sc.Height/2)
}
