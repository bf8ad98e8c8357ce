package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Ronin-2099/Chance-of-Meteors/internal/deflection"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/neows"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	hazardStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var listColumns = []string{"ID", "Name", "Estimated Diameter (m)", "Approach Date", "Hazardous"}

func renderApproaches(approaches []neows.Approach) string {
	rows := make([][]string, 0, len(approaches))
	for _, a := range approaches {
		hazard := "No"
		if a.Hazardous {
			hazard = "Yes"
		}
		rows = append(rows, []string{
			a.ID,
			a.Name,
			fmt.Sprintf("%.2f - %.2f", a.DiameterMinM, a.DiameterMaxM),
			a.ApproachDate,
			hazard,
		})
	}

	widths := make([]int, len(listColumns))
	for i, c := range listColumns {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	header := make([]string, len(listColumns))
	for i, c := range listColumns {
		header[i] = headerStyle.Render(pad(c, widths[i]))
	}
	b.WriteString(strings.Join(header, "  ") + "\n")

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = pad(cell, widths[i])
		}
		last := len(cells) - 1
		if row[last] == "Yes" {
			cells[last] = hazardStyle.Render(cells[last])
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, "  "), " ") + "\n")
	}
	return b.String()
}

func pad(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func renderSummary(s neows.Summary) string {
	hazard := "No"
	if s.Hazardous {
		hazard = hazardStyle.Render("Yes")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%s)", s.Name, s.ID)) + "\n")
	field := func(label, value string) {
		b.WriteString(labelStyle.Render(pad(label+":", 24)) + value + "\n")
	}
	field("Potentially hazardous", hazard)
	field("Diameter (m)", fmt.Sprintf("%.2f - %.2f", s.DiameterMeters.Min, s.DiameterMeters.Max))
	field("Close approach", s.CloseApproach.Date)
	field("Velocity (km/s)", fmt.Sprintf("%.2f", s.CloseApproach.VelocityKPS))
	field("Miss distance (km)", fmt.Sprintf("%.2f", s.CloseApproach.MissDistanceKM))
	field("Semi-major axis (AU)", s.SemiMajorAxis)
	field("Eccentricity", s.Eccentricity)
	field("Inclination (deg)", s.Inclination)
	field("Ascending node (deg)", s.AscendingNodeLongitude)
	field("Perihelion arg (deg)", s.PerihelionArgument)
	field("Mean anomaly (deg)", s.MeanAnomaly)
	field("Orbital period (days)", fmt.Sprintf("%d", s.OrbitalPeriodDays))
	field("Perihelion (AU)", s.PerihelionDistance)
	field("Aphelion (AU)", s.AphelionDistance)
	return b.String()
}

func renderReport(r deflection.Report) string {
	var b strings.Builder
	field := func(label, value string) {
		b.WriteString(labelStyle.Render(pad(label+":", 24)) + value + "\n")
	}

	if r.RequiredDVMS == nil {
		b.WriteString(headerStyle.Render("Deflection not required") + "\n")
	} else {
		b.WriteString(hazardStyle.Render("Deflection required") + "\n")
		field("Delta-v at aphelion", fmt.Sprintf("%.3f m/s", *r.RequiredDVMS))
	}
	field("Current perihelion", fmt.Sprintf("%.6f AU", r.CurrentPerihelionAU))
	field("Current aphelion", fmt.Sprintf("%.6f AU", r.CurrentAphelionAU))
	field("Target perihelion", fmt.Sprintf("%.6f AU", r.TargetPerihelionAU))
	if r.NewOrbit != nil {
		field("New orbit", fmt.Sprintf("a=%.6f AU e=%.6f", r.NewOrbit.A, r.NewOrbit.E))
	}
	return b.String()
}
