package maganghub

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	VacancyIDField      = "ID"
	VacancyCompanyField = "Company"

	fieldEducation = "jenjang"
	fieldPrograms  = "program_studi"
)

type Vacancies struct {
	Items []*Vacancy
}

type Vacancy struct {
	ID          string `json:"id_posisi,omitempty"`
	Title       string `json:"posisi,omitempty"`
	Description string `json:"deskripsi_posisi,omitempty"`
	Quota       int    `json:"jumlah_kuota"`
	Registered  int    `json:"jumlah_terdaftar"`
	// ProgramsRaw and EducationRaw usually hold a JSON-encoded list inside a string.
	ProgramsRaw  any            `json:"program_studi,omitempty"`
	EducationRaw any            `json:"jenjang,omitempty"`
	CreatedAt    string         `json:"created_at,omitempty"`
	Employer     Employer       `json:"perusahaan"`
	Schedule     Schedule       `json:"jadwal"`
	Status       PositionStatus `json:"ref_status_posisi"`
	Agency       Agency         `json:"government_agency"`
}

type Employer struct {
	ID           string `json:"id_perusahaan,omitempty"`
	Name         string `json:"nama_perusahaan,omitempty"`
	Address      string `json:"alamat,omitempty"`
	Logo         string `json:"logo,omitempty"`
	ProvinceCode string `json:"kode_provinsi,omitempty"`
	ProvinceName string `json:"nama_provinsi,omitempty"`
	RegencyCode  string `json:"kode_kabupaten,omitempty"`
	RegencyName  string `json:"nama_kabupaten,omitempty"`
}

type Schedule struct {
	RegistrationOpens  string `json:"tanggal_pendaftaran_awal,omitempty"`
	RegistrationCloses string `json:"tanggal_pendaftaran_akhir,omitempty"`
	Starts             string `json:"tanggal_mulai,omitempty"`
	Ends               string `json:"tanggal_selesai,omitempty"`
}

type PositionStatus struct {
	ID   int    `json:"id_status_posisi,omitempty"`
	Name string `json:"nama_status_posisi,omitempty"`
}

type Agency struct {
	Name string `json:"government_agency_name,omitempty"`
}

// Capacity returns the quota, never negative.
func (va *Vacancy) Capacity() int {
	return max(va.Quota, 0)
}

// Registrants returns the registrant count, never negative.
func (va *Vacancy) Registrants() int {
	return max(va.Registered, 0)
}

// AvailableSpots is capacity minus registrants. Negative means over-subscribed.
func (va *Vacancy) AvailableSpots() int {
	return va.Capacity() - va.Registrants()
}

// Location formats the employer place as "regency, province".
func (va *Vacancy) Location() string {
	return strings.TrimSpace(fmt.Sprintf("%s, %s", va.Employer.RegencyName, va.Employer.ProvinceName))
}

// Educations decodes the education tier list.
func (va *Vacancy) Educations() ([]string, error) {
	return ParseStringList(fieldEducation, va.EducationRaw)
}

// EducationList is Educations with a parse failure degraded to absent.
func (va *Vacancy) EducationList() ([]string, bool) {
	list, err := va.Educations()
	if err != nil || list == nil {
		return nil, false
	}
	return list, true
}

// Programs decodes the academic program titles.
func (va *Vacancy) Programs() ([]string, error) {
	return ParseTitleList(fieldPrograms, va.ProgramsRaw)
}

// ProgramList is Programs with a parse failure degraded to absent.
func (va *Vacancy) ProgramList() ([]string, bool) {
	list, err := va.Programs()
	if err != nil || list == nil {
		return nil, false
	}
	return list, true
}

func (va *Vacancy) GetStringField(name string) string {
	switch name {
	case VacancyIDField:
		return va.ID
	case VacancyCompanyField:
		return va.Employer.Name

	default:
		return ""
	}
}

// ParseStringList decodes a list of strings that may arrive JSON-encoded in a
// string or already decoded. Absent values yield nil without error.
func ParseStringList(field string, raw any) ([]string, error) {
	values, err := rawList(field, raw)
	if err != nil || values == nil {
		return nil, err
	}

	result := make([]string, 0, len(values))
	for _, value := range values {
		s, ok := value.(string)
		if !ok {
			return nil, &ParseError{Field: field, Err: fmt.Errorf("unexpected element %v (%T)", value, value)}
		}
		result = append(result, s)
	}

	return result, nil
}

// ParseTitleList decodes a list of {"title": ...} objects. Plain strings are
// accepted as titles, other elements are skipped.
func ParseTitleList(field string, raw any) ([]string, error) {
	values, err := rawList(field, raw)
	if err != nil || values == nil {
		return nil, err
	}

	result := make([]string, 0, len(values))
	for _, value := range values {
		switch typed := value.(type) {
		case string:
			result = append(result, typed)
		case map[string]any:
			if title, ok := typed["title"].(string); ok {
				result = append(result, title)
			}
		}
	}

	return result, nil
}

func rawList(field string, raw any) ([]any, error) {
	switch typed := raw.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(typed) == "" {
			return nil, nil
		}
		var values []any
		if err := json.Unmarshal([]byte(typed), &values); err != nil {
			return nil, &ParseError{Field: field, Err: err}
		}
		return values, nil
	case []any:
		return typed, nil
	case []string:
		values := make([]any, 0, len(typed))
		for _, s := range typed {
			values = append(values, s)
		}
		return values, nil
	default:
		return nil, &ParseError{Field: field, Err: fmt.Errorf("unsupported type %T", raw)}
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate parses the date formats the API is known to send.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// RegistrationWindow returns the parsed registration dates, if present.
func (s Schedule) RegistrationWindow() (opens time.Time, closes time.Time, ok bool) {
	opens, openOK := ParseDate(s.RegistrationOpens)
	closes, closeOK := ParseDate(s.RegistrationCloses)
	return opens, closes, openOK && closeOK
}

// IsParseError reports whether err is a ParseError.
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

func (v *Vacancies) Len() int {
	return len(v.Items)
}

// Keep retains vacancies matching the predicate. Order is preserved.
// It returns the IDs of the dropped vacancies.
func (v *Vacancies) Keep(match func(*Vacancy) bool) []string {
	var dropped []string
	kept := make([]*Vacancy, 0, len(v.Items))
	for _, vacancy := range v.Items {
		if vacancy == nil {
			continue
		}
		if match(vacancy) {
			kept = append(kept, vacancy)
			continue
		}
		dropped = append(dropped, vacancy.ID)
	}
	v.Items = kept
	return dropped
}

// Exclude removes vacancies whose field matches one of the targets.
// Order is preserved.
func (v *Vacancies) Exclude(name string, targets []string) []string {
	set := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		set[target] = struct{}{}
	}

	return v.Keep(func(vacancy *Vacancy) bool {
		_, found := set[vacancy.GetStringField(name)]
		return !found
	})
}

func (v *Vacancies) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "vacancies_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByCompany groups vacancies by company for a quick overview.
func (v *Vacancies) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, vacancy := range v.Items {
		key := fmt.Sprintf("%s (%s)", vacancy.Employer.Name, vacancy.Employer.ID)
		report[key] = append(report[key], map[string]string{
			"position":   vacancy.Title,
			"location":   vacancy.Location(),
			"quota":      fmt.Sprintf("%d", vacancy.Capacity()),
			"registered": fmt.Sprintf("%d", vacancy.Registrants()),
		})
	}
	return report
}
