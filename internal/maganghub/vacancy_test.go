package maganghub

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStringList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     any
		expect  []string
		wantErr bool
	}{
		{name: "encoded", raw: `["S1","D3"]`, expect: []string{"S1", "D3"}},
		{name: "decoded", raw: []any{"SMA"}, expect: []string{"SMA"}},
		{name: "typed", raw: []string{"D4"}, expect: []string{"D4"}},
		{name: "absent", raw: nil, expect: nil},
		{name: "blank", raw: "  ", expect: nil},
		{name: "empty list", raw: `[]`, expect: []string{}},
		{name: "malformed", raw: `["S1"`, wantErr: true},
		{name: "not a list", raw: `{"a":1}`, wantErr: true},
		{name: "mixed elements", raw: `["S1", 2]`, wantErr: true},
		{name: "unsupported type", raw: 12, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseStringList("jenjang", tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsParseError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestParseTitleList(t *testing.T) {
	got, err := ParseTitleList("program_studi", `[{"title":"Teknik Informatika"},"Hukum",{"name":"ignored"},3]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Teknik Informatika", "Hukum"}, got)

	_, err = ParseTitleList("program_studi", `[{"title":`)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "program_studi", parseErr.Field)
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		ok   bool
		want time.Time
	}{
		{in: "2025-10-15", ok: true, want: time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)},
		{in: "2025-10-15 08:30:00", ok: true, want: time.Date(2025, 10, 15, 8, 30, 0, 0, time.UTC)},
		{in: "2025-10-15T08:30:00", ok: true, want: time.Date(2025, 10, 15, 8, 30, 0, 0, time.UTC)},
		{in: "2025-10-15T08:30:00Z", ok: true, want: time.Date(2025, 10, 15, 8, 30, 0, 0, time.UTC)},
		{in: "", ok: false},
		{in: "15/10/2025", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestAccessorsClampNegatives(t *testing.T) {
	v := &Vacancy{Quota: -5, Registered: -2}

	assert.Equal(t, 0, v.Capacity())
	assert.Equal(t, 0, v.Registrants())
	assert.Equal(t, 0, v.AvailableSpots())
}

func TestExcludePreservesOrder(t *testing.T) {
	vacancies := &Vacancies{Items: []*Vacancy{
		{ID: "1", Employer: Employer{Name: "A"}},
		{ID: "2", Employer: Employer{Name: "B"}},
		{ID: "3", Employer: Employer{Name: "A"}},
		{ID: "4", Employer: Employer{Name: "C"}},
	}}

	dropped := vacancies.Exclude(VacancyCompanyField, []string{"A"})

	assert.Equal(t, []string{"1", "3"}, dropped)
	require.Equal(t, 2, vacancies.Len())
	assert.Equal(t, "2", vacancies.Items[0].ID)
	assert.Equal(t, "4", vacancies.Items[1].ID)
}

func TestReportByCompany(t *testing.T) {
	vacancies := &Vacancies{Items: []*Vacancy{
		{
			ID:         "1",
			Title:      "Admin",
			Quota:      3,
			Registered: 7,
			Employer:   Employer{ID: "e1", Name: "PT Maju", RegencyName: "Kota Bogor", ProvinceName: "Jawa Barat"},
		},
	}}

	report := vacancies.ReportByCompany()

	entries, ok := report["PT Maju (e1)"]
	require.True(t, ok)
	require.Len(t, entries, 1)
	assert.Equal(t, "Admin", entries[0]["position"])
	assert.Equal(t, "Kota Bogor, Jawa Barat", entries[0]["location"])
	assert.Equal(t, "3", entries[0]["quota"])
	assert.Equal(t, "7", entries[0]["registered"])
}

func TestDumpToTmpFile(t *testing.T) {
	vacancies := &Vacancies{Items: []*Vacancy{{ID: "x", Title: "Kasir"}}}

	path, err := vacancies.DumpToTmpFile()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(path) })

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"posisi": "Kasir"`)
}
