package handlers

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/tzchain/internal/chain"
	"github.com/imamik/tzchain/internal/config"
	"github.com/imamik/tzchain/internal/util/naming"
)

var (
	colorGreen = lipgloss.Color("#22c55e")
	colorBlue  = lipgloss.Color("#3b82f6")
	colorDim   = lipgloss.Color("#6b7280")
	colorWhite = lipgloss.Color("#f9fafb")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	nameStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorGreen)
)

type summaryRow struct {
	name  string
	value string
}

type deploySummary struct {
	title string
	rows  []summaryRow
}

func summarize(dep *chain.Deployment, cfg *config.File, zone string) deploySummary {
	s := deploySummary{title: fmt.Sprintf("tzchain deploy: %s", dep.Name())}

	add := func(name, value string) {
		s.rows = append(s.rows, summaryRow{name: name, value: value})
	}
	valueOrErr := func(v string, err error) string {
		if err != nil {
			return "unavailable (" + err.Error() + ")"
		}
		return v
	}

	add("Chain", valueOrErr(dep.ChainName()))
	add("Image", valueOrErr(dep.DockerImage()))
	add("Protocol", valueOrErr(dep.ConsensusCommand()))
	add("P2P service", dep.ServiceName())
	if desc := dep.Description(); desc != "" {
		add("Description", desc)
	}
	add("Network", dep.NetworkURL(cfg.Network.BaseURL, ""))
	if zone != "" {
		add("P2P alias", naming.DNSAlias(cfg.Chain.AliasLabel(), zone))
	}
	return s
}

func printSummary(w io.Writer, s deploySummary, styled bool) {
	if !styled {
		fmt.Fprintln(w, s.title)
		for _, r := range s.rows {
			fmt.Fprintf(w, "  %-12s %s\n", r.name+":", r.value)
		}
		return
	}
	fmt.Fprint(w, renderSummary(s))
}

func renderSummary(s deploySummary) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("  " + s.title))
	b.WriteString("\n")
	b.WriteString(nameStyle.Render("  " + strings.Repeat("═", 30)))
	b.WriteString("\n\n")
	b.WriteString(sectionStyle.Render("  Deployment"))
	b.WriteString("\n")

	for _, r := range s.rows {
		b.WriteString("    ")
		b.WriteString(nameStyle.Render(fmt.Sprintf("%-12s", r.name)))
		b.WriteString(" ")
		b.WriteString(valueStyle.Render(r.value))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}
