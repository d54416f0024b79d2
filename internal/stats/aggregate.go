// Package stats folds a sample of vacancies into dashboard statistics.
package stats

import (
	"github.com/spigell/maganghub/internal/maganghub"
)

// Unknown is the group key used when a record has no value for the grouped field.
const Unknown = "Tidak Diketahui"

type Statistics struct {
	// TotalVacancies is the total reported by the source, not the sample size.
	TotalVacancies  int                      `json:"totalVacancies"`
	Sampled         int                      `json:"sampled"`
	TotalKuota      int                      `json:"totalKuota"`
	TotalRegistered int                      `json:"totalRegistered"`
	AvailableSpots  int                      `json:"availableSpots"`
	ByProvince      map[string]*GroupStats   `json:"byProvince"`
	ByPosition      map[string]*GroupStats   `json:"byPosition"`
	ByEducation     map[string]int           `json:"byEducation"`
	ByCompany       map[string]*CompanyStats `json:"byCompany"`
	QuotaStatus     QuotaStatus              `json:"quotaStatus"`
}

type GroupStats struct {
	Count      int `json:"count"`
	Kuota      int `json:"kuota"`
	Registered int `json:"registered"`
}

type CompanyStats struct {
	Location  string `json:"location"`
	Positions int    `json:"positions"`
	Kuota     int    `json:"kuota"`
}

type QuotaStatus struct {
	Full      int `json:"full"`
	NearFull  int `json:"nearFull"`
	Available int `json:"available"`
	Empty     int `json:"empty"`
}

type Bucket int

const (
	BucketEmpty Bucket = iota
	BucketAvailable
	BucketNearFull
	BucketFull
)

func (b Bucket) String() string {
	switch b {
	case BucketFull:
		return "full"
	case BucketNearFull:
		return "nearFull"
	case BucketAvailable:
		return "available"
	default:
		return "empty"
	}
}

func New(reportedTotal int) *Statistics {
	return &Statistics{
		TotalVacancies: reportedTotal,
		ByProvince:     make(map[string]*GroupStats),
		ByPosition:     make(map[string]*GroupStats),
		ByEducation:    make(map[string]int),
		ByCompany:      make(map[string]*CompanyStats),
	}
}

// Aggregate folds records into a fresh Statistics in a single pass.
func Aggregate(records []*maganghub.Vacancy, reportedTotal int) *Statistics {
	s := New(reportedTotal)

	for _, vacancy := range records {
		if vacancy == nil {
			continue
		}
		s.add(vacancy)
	}

	s.AvailableSpots = s.TotalKuota - s.TotalRegistered

	return s
}

func (s *Statistics) add(vacancy *maganghub.Vacancy) {
	kuota := vacancy.Capacity()
	registered := vacancy.Registrants()

	s.Sampled++
	s.TotalKuota += kuota
	s.TotalRegistered += registered

	province := getOrInsert(s.ByProvince, keyOrUnknown(vacancy.Employer.ProvinceName))
	province.Count++
	province.Kuota += kuota
	province.Registered += registered

	position := getOrInsert(s.ByPosition, keyOrUnknown(vacancy.Title))
	position.Count++
	position.Kuota += kuota
	position.Registered += registered

	// unparseable tiers contribute nothing
	if tiers, ok := vacancy.EducationList(); ok {
		for _, tier := range tiers {
			s.ByEducation[tier]++
		}
	}

	company := getOrInsert(s.ByCompany, keyOrUnknown(vacancy.Employer.Name))
	company.Positions++
	company.Kuota += kuota
	company.Location = vacancy.Location()

	switch FillBucket(kuota, registered) {
	case BucketFull:
		s.QuotaStatus.Full++
	case BucketNearFull:
		s.QuotaStatus.NearFull++
	case BucketAvailable:
		s.QuotaStatus.Available++
	default:
		s.QuotaStatus.Empty++
	}
}

// FillRate is registrants as a percentage of capacity, 0 when capacity is 0.
func FillRate(capacity, registrants int) float64 {
	if capacity <= 0 {
		return 0
	}
	return float64(max(registrants, 0)) / float64(capacity) * 100
}

// FillBucket classifies a vacancy into exactly one quota status bucket.
func FillBucket(capacity, registrants int) Bucket {
	rate := FillRate(capacity, registrants)

	switch {
	case rate >= 100:
		return BucketFull
	case rate >= 75:
		return BucketNearFull
	case rate > 0:
		return BucketAvailable
	default:
		return BucketEmpty
	}
}

func getOrInsert[V any](m map[string]*V, key string) *V {
	if v, ok := m[key]; ok {
		return v
	}
	v := new(V)
	m[key] = v
	return v
}

func keyOrUnknown(key string) string {
	if key == "" {
		return Unknown
	}
	return key
}
