package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/spigell/maganghub/internal/dashboard"
	"github.com/spigell/maganghub/internal/maganghub"
	"github.com/spigell/maganghub/internal/opportunity"
	"github.com/spigell/maganghub/internal/stats"
)

const (
	notAvailable = "Tidak tersedia"

	maxTags       = 4
	chartRows     = 10
	tableRows     = 20
	chartBarWidth = 30
)

var printer = message.NewPrinter(language.Indonesian)

var months = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// formatNumber groups thousands the Indonesian way: 1.234.567.
func formatNumber(n int) string {
	return printer.Sprintf("%d", n)
}

// formatDate renders an API date as "15 Oktober 2025".
func formatDate(raw string) string {
	t, ok := maganghub.ParseDate(raw)
	if !ok {
		return notAvailable
	}
	return longDate(t)
}

func longDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), months[t.Month()-1], t.Year())
}

// chanceBand is the card badge caption for a relative saturation percentage.
func chanceBand(percentage float64) string {
	switch {
	case percentage >= 80:
		return "Sangat Tinggi"
	case percentage >= 50:
		return "Tinggi"
	case percentage >= 25:
		return "Sedang"
	default:
		return "Rendah"
	}
}

// tags returns up to two education and two program tags plus a "+N" overflow marker.
func tags(v *maganghub.Vacancy) []string {
	educations, _ := v.EducationList()
	programs, _ := v.ProgramList()

	result := make([]string, 0, maxTags+1)
	result = append(result, educations[:min(len(educations), 2)]...)
	result = append(result, programs[:min(len(programs), 2)]...)

	if extra := len(educations) + len(programs) - maxTags; extra > 0 {
		result = append(result, fmt.Sprintf("+%d", extra))
	}

	return result
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func renderCard(w io.Writer, v *maganghub.Vacancy) {
	chance := opportunity.Evaluate(opportunity.RelativeSaturation, v.Capacity(), v.Registrants())
	peluang := opportunity.Evaluate(opportunity.AvailabilityRatio, v.Capacity(), v.Registrants())

	fmt.Fprintf(w, "%s  [%s (%.0f%%)]\n", orDefault(v.Title, "Posisi tidak tersedia"), chanceBand(chance.Percentage), chance.Percentage)
	fmt.Fprintf(w, "  %s | %s, %s\n", orDefault(v.Employer.Name, notAvailable), v.Employer.RegencyName, v.Employer.ProvinceName)
	fmt.Fprintf(w, "  Kuota %s | Pendaftar %s | Sisa %s\n",
		formatNumber(v.Capacity()), formatNumber(v.Registrants()), formatNumber(v.AvailableSpots()))
	fmt.Fprintf(w, "  Daftar s/d %s | Magang s/d %s\n",
		formatDate(v.Schedule.RegistrationCloses), formatDate(v.Schedule.Ends))
	if t := tags(v); len(t) > 0 {
		fmt.Fprintf(w, "  %s\n", strings.Join(t, " · "))
	}
	fmt.Fprintf(w, "  %s · Peluang Diterima %.1f%%\n", peluang.Tier.Label(), chance.Percentage)
}

func renderListing(w io.Writer, listing *dashboard.Listing) error {
	fmt.Fprintf(w, "Menampilkan %s lowongan dari %s total lowongan | Halaman %d dari %d\n\n",
		formatNumber(listing.Shown),
		formatNumber(listing.TotalInSystem),
		max(listing.Pagination.CurrentPage, 1),
		listing.Pagination.LastPage,
	)

	if listing.Shown == 0 {
		_, err := fmt.Fprintln(w, "Tidak ada lowongan yang ditemukan")
		return err
	}

	for _, v := range listing.Vacancies {
		renderCard(w, v)
		fmt.Fprintln(w)
	}

	return nil
}

func renderStatistics(w io.Writer, report *dashboard.Report) error {
	s := report.Statistics

	fmt.Fprintf(w, "Total Lowongan   %s\n", formatNumber(s.TotalVacancies))
	fmt.Fprintf(w, "Total Kuota      %s\n", formatNumber(s.TotalKuota))
	fmt.Fprintf(w, "Total Terdaftar  %s\n", formatNumber(s.TotalRegistered))
	fmt.Fprintf(w, "Sisa Kuota       %s\n", formatNumber(s.AvailableSpots))
	fmt.Fprintf(w, "(sampel %s lowongan dari %d halaman, tingkat pengisian %.1f%%)\n",
		formatNumber(s.Sampled), report.Pages, s.FillRate())

	renderChart(w, "Top 10 Provinsi", groupBars(s.TopProvinces(chartRows)))
	renderChart(w, "Top 10 Posisi", groupBars(s.TopPositions(chartRows)))

	educations := make([]bar, 0, len(s.ByEducation))
	for _, row := range s.Educations() {
		educations = append(educations, bar{label: row.Key, value: row.Count})
	}
	renderChart(w, "Distribusi Jenjang Pendidikan", educations)

	renderChart(w, "Status Pengisian Kuota", []bar{
		{label: "Penuh (100%)", value: s.QuotaStatus.Full},
		{label: "Hampir Penuh (75-99%)", value: s.QuotaStatus.NearFull},
		{label: "Tersedia (<75%)", value: s.QuotaStatus.Available},
		{label: "Belum Ada Pendaftar", value: s.QuotaStatus.Empty},
	})

	if err := renderGroupTable(w, "Detail per Provinsi", "Provinsi", s.TopProvinces(0)); err != nil {
		return err
	}
	if err := renderGroupTable(w, "Detail per Posisi (Top 20)", "Posisi", s.TopPositions(tableRows)); err != nil {
		return err
	}

	return renderCompanyTable(w, s.TopCompanies(tableRows))
}

type bar struct {
	label string
	value int
}

func groupBars(rows []stats.GroupRow) []bar {
	bars := make([]bar, 0, len(rows))
	for _, row := range rows {
		bars = append(bars, bar{label: row.Key, value: row.Count})
	}
	return bars
}

// renderChart draws horizontal bars scaled to the largest value.
func renderChart(w io.Writer, title string, bars []bar) {
	fmt.Fprintf(w, "\n%s\n", title)

	peak := 0
	for _, b := range bars {
		peak = max(peak, b.value)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, b := range bars {
		width := 0
		if peak > 0 {
			width = b.value * chartBarWidth / peak
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", b.label, strings.Repeat("█", width), formatNumber(b.value))
	}
	tw.Flush()
}

func renderGroupTable(w io.Writer, title, keyHeader string, rows []stats.GroupRow) error {
	fmt.Fprintf(w, "\n%s\n", title)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\tLowongan\tKuota\tTerdaftar\tSisa\t\n", keyHeader)
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			row.Key,
			formatNumber(row.Count),
			formatNumber(row.Kuota),
			formatNumber(row.Registered),
			formatNumber(row.Remaining()),
		)
	}
	return tw.Flush()
}

func renderCompanyTable(w io.Writer, rows []stats.CompanyRow) error {
	fmt.Fprintf(w, "\nTop Perusahaan (Top 20)\n")

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Perusahaan\tLokasi\tPosisi\tTotal Kuota")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row.Name, row.Location, formatNumber(row.Positions), formatNumber(row.Kuota))
	}
	return tw.Flush()
}

func renderProvinces(w io.Writer, provinces []maganghub.Province) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Kode\tProvinsi")
	for _, p := range provinces {
		fmt.Fprintf(tw, "%s\t%s\n", p.Code, p.Name)
	}
	return tw.Flush()
}
