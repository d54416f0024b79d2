package stats

import (
	"sort"
)

type GroupRow struct {
	Key string `json:"key"`
	GroupStats
}

// Remaining is kuota minus registered for the group. It may be negative.
func (r GroupRow) Remaining() int {
	return r.Kuota - r.Registered
}

type CompanyRow struct {
	Name string `json:"name"`
	CompanyStats
}

type CountRow struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// TopProvinces returns provinces by descending vacancy count. n <= 0 means all.
func (s *Statistics) TopProvinces(n int) []GroupRow {
	return topGroups(s.ByProvince, n)
}

// TopPositions returns positions by descending vacancy count. n <= 0 means all.
func (s *Statistics) TopPositions(n int) []GroupRow {
	return topGroups(s.ByPosition, n)
}

// TopCompanies returns companies by descending kuota. n <= 0 means all.
func (s *Statistics) TopCompanies(n int) []CompanyRow {
	rows := make([]CompanyRow, 0, len(s.ByCompany))
	for name, company := range s.ByCompany {
		rows = append(rows, CompanyRow{Name: name, CompanyStats: *company})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Kuota != rows[j].Kuota {
			return rows[i].Kuota > rows[j].Kuota
		}
		return rows[i].Name < rows[j].Name
	})

	return limit(rows, n)
}

// Educations returns education tiers by descending occurrence count.
func (s *Statistics) Educations() []CountRow {
	rows := make([]CountRow, 0, len(s.ByEducation))
	for key, count := range s.ByEducation {
		rows = append(rows, CountRow{Key: key, Count: count})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Key < rows[j].Key
	})

	return rows
}

// FillRate is the aggregate registered share of the total kuota.
func (s *Statistics) FillRate() float64 {
	return FillRate(s.TotalKuota, s.TotalRegistered)
}

func topGroups(groups map[string]*GroupStats, n int) []GroupRow {
	rows := make([]GroupRow, 0, len(groups))
	for key, group := range groups {
		rows = append(rows, GroupRow{Key: key, GroupStats: *group})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Key < rows[j].Key
	})

	return limit(rows, n)
}

func limit[T any](rows []T, n int) []T {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}
