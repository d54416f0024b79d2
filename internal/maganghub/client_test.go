package maganghub

import (
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const vacancyPage = `{
  "data": [
    {
      "id_posisi": "a1",
      "posisi": "Admin Gudang",
      "jumlah_kuota": "10",
      "jumlah_terdaftar": 4,
      "jenjang": "[\"S1\",\"D3\"]",
      "program_studi": "[{\"title\":\"Manajemen\"},{\"title\":\"Akuntansi\"}]",
      "perusahaan": {
        "nama_perusahaan": "PT Maju",
        "nama_provinsi": "Jawa Barat",
        "nama_kabupaten": "Kota Bandung"
      },
      "jadwal": {
        "tanggal_pendaftaran_awal": "2025-10-01",
        "tanggal_pendaftaran_akhir": "2025-10-15 23:59:59"
      },
      "ref_status_posisi": null
    },
    {
      "id_posisi": 77,
      "posisi": "Programmer",
      "jumlah_kuota": 2,
      "jumlah_terdaftar": 9
    }
  ],
  "meta": {"pagination": {"current_page": 3, "last_page": 12, "per_page": 20, "total": 231}}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := New(zap.NewNop())
	client.APIURL = srv.URL
	client.HTTPClient = srv.Client()
	client.RetryDelay = time.Millisecond

	return client, srv
}

func TestFetchPageRequest(t *testing.T) {
	var got *http.Request
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		_, _ = w.Write([]byte(vacancyPage))
	})

	_, err := client.FetchPage(context.Background(), 3, PageFilter{
		Province: "32",
		Keyword:  "  gudang ",
		OrderBy:  OrderByQuota,
		Limit:    50,
	})
	require.NoError(t, err)

	assert.Equal(t, vacanciesPath, got.URL.Path)
	assert.Equal(t, url.Values{
		"page":            {"3"},
		"limit":           {"50"},
		"kode_provinsi":   {"32"},
		"keyword":         {"gudang"},
		"order_by":        {OrderByQuota},
		"order_direction": {OrderDesc},
	}, got.URL.Query())
	assert.Equal(t, "maganghub-cli", got.Header.Get("User-Agent"))
	assert.NotContains(t, got.Header.Get("User-Agent"), "@")
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
}

func TestBuildParamsOmitsEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		filter PageFilter
		expect url.Values
	}{
		{
			name:   "defaults",
			filter: PageFilter{},
			expect: url.Values{"limit": {"20"}},
		},
		{
			name:   "blank keyword",
			filter: PageFilter{Keyword: "   ", Limit: 10},
			expect: url.Values{"limit": {"10"}},
		},
		{
			name:   "direction without field is dropped",
			filter: PageFilter{OrderDirection: OrderAsc},
			expect: url.Values{"limit": {"20"}},
		},
		{
			name:   "explicit direction",
			filter: PageFilter{OrderBy: OrderByCreated, OrderDirection: "asc"},
			expect: url.Values{"limit": {"20"}, "order_by": {OrderByCreated}, "order_direction": {OrderAsc}},
		},
		{
			name:   "opportunity stays client side",
			filter: PageFilter{Opportunity: "full"},
			expect: url.Values{"limit": {"20"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expect, buildParams(tt.filter))
		})
	}
}

func TestAddPageCopiesQuery(t *testing.T) {
	q := url.Values{"limit": {"20"}}
	withPage := addPage(q, 4)

	assert.Equal(t, "4", withPage.Get("page"))
	assert.Empty(t, q.Get("page"))
}

func TestFetchPageDecodes(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(vacancyPage))
	})

	page, err := client.FetchPage(context.Background(), 3, PageFilter{})
	require.NoError(t, err)
	require.Len(t, page.Vacancies, 2)

	assert.Equal(t, Pagination{CurrentPage: 3, LastPage: 12, PerPage: 20, Total: 231}, page.Pagination)

	first := page.Vacancies[0]
	assert.Equal(t, "a1", first.ID)
	assert.Equal(t, 10, first.Capacity())
	assert.Equal(t, 4, first.Registrants())
	assert.Equal(t, "Kota Bandung, Jawa Barat", first.Location())

	educations, ok := first.EducationList()
	require.True(t, ok)
	assert.Equal(t, []string{"S1", "D3"}, educations)

	programs, ok := first.ProgramList()
	require.True(t, ok)
	assert.Equal(t, []string{"Manajemen", "Akuntansi"}, programs)

	opens, closes, ok := first.Schedule.RegistrationWindow()
	require.True(t, ok)
	assert.Equal(t, 1, opens.Day())
	assert.Equal(t, 15, closes.Day())

	second := page.Vacancies[1]
	assert.Equal(t, "77", second.ID)
	assert.Equal(t, -7, second.AvailableSpots())
	_, ok = second.EducationList()
	assert.False(t, ok)
}

func TestFetchPageMissingPagination(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": []}`))
	})

	page, err := client.FetchPage(context.Background(), 1, PageFilter{})
	require.NoError(t, err)

	assert.Equal(t, 1, page.Pagination.LastPage)
	assert.Equal(t, 0, page.Pagination.Total)
	assert.Empty(t, page.Vacancies)
}

func TestFetchPageSkipsNullRecords(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": [null, {"id_posisi": "a", "posisi": "A", "jumlah_kuota": 5}, null],
			"meta": {"pagination": {"current_page": 1, "last_page": 1, "total": 3}}}`))
	})

	page, err := client.FetchPage(context.Background(), 1, PageFilter{})
	require.NoError(t, err)
	require.Len(t, page.Vacancies, 1)
	assert.Equal(t, "A", page.Vacancies[0].Title)
	assert.Equal(t, 5, page.Vacancies[0].Capacity())
}

func TestFetchPageErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   int
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"message":"oops"}`, code: 500},
		{name: "not found", status: http.StatusNotFound, body: ``, code: 404},
		{name: "malformed json", status: http.StatusOK, body: `{"data": [`, code: 0},
		{name: "wrong shape", status: http.StatusOK, body: `{"data": {"id": 1}}`, code: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.FetchPage(context.Background(), 5, PageFilter{})
			require.Error(t, err)

			var fetchErr *FetchError
			require.ErrorAs(t, err, &fetchErr)
			assert.Equal(t, 5, fetchErr.Page)
			assert.Equal(t, tt.code, fetchErr.StatusCode)
		})
	}
}

func TestFetchPageTransportError(t *testing.T) {
	client, srv := newTestClient(t, func(http.ResponseWriter, *http.Request) {})
	srv.Close()

	_, err := client.FetchPage(context.Background(), 2, PageFilter{})

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 2, fetchErr.Page)
	assert.Zero(t, fetchErr.StatusCode)
}

func TestFetchPageGzip(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip", r.Header.Get("Accept-Encoding"))
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte(vacancyPage))
		_ = gz.Close()
	})

	page, err := client.FetchPage(context.Background(), 1, PageFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Vacancies, 2)
}

func TestFetchPageRetries(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(vacancyPage))
	})
	client.MaxRetries = 2

	page, err := client.FetchPage(context.Background(), 1, PageFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Vacancies, 2)
	assert.EqualValues(t, 3, calls.Load())
}

func TestFetchPageFailFastByDefault(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.FetchPage(context.Background(), 1, PageFilter{})
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestFetchPageDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})
	client.MaxRetries = 3

	_, err := client.FetchPage(context.Background(), 1, PageFilter{})
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{name: "plain error", err: errors.New("x"), expect: false},
		{name: "transport", err: &FetchError{Err: errors.New("reset")}, expect: true},
		{name: "canceled", err: &FetchError{Err: context.Canceled}, expect: false},
		{name: "too many requests", err: &FetchError{StatusCode: 429, Err: errors.New("slow down")}, expect: true},
		{name: "bad gateway", err: &FetchError{StatusCode: 502, Err: errors.New("bad")}, expect: true},
		{name: "forbidden", err: &FetchError{StatusCode: 403, Err: errors.New("no")}, expect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expect, retryable(tt.err))
		})
	}
}

func TestPageFilterValidate(t *testing.T) {
	assert.NoError(t, PageFilter{}.Validate())
	assert.NoError(t, PageFilter{OrderBy: OrderByRegistered, OrderDirection: "asc", Limit: 100}.Validate())
	assert.Error(t, PageFilter{OrderBy: "salary"}.Validate())
	assert.Error(t, PageFilter{OrderDirection: "sideways"}.Validate())
	assert.Error(t, PageFilter{Limit: -1}.Validate())
}

type memoryCache struct {
	provinces []Province
	stored    int
}

func (m *memoryCache) Load(context.Context) ([]Province, error) {
	return m.provinces, nil
}

func (m *memoryCache) Store(_ context.Context, provinces []Province) error {
	m.provinces = provinces
	m.stored++
	return nil
}

func TestProvinces(t *testing.T) {
	var calls atomic.Int32
	var query url.Values
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		query = r.URL.Query()
		assert.Equal(t, provincesPath, r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"kode_propinsi":"11","nama_propinsi":"Aceh"},{"kode_propinsi":51,"nama_propinsi":"Bali"}]}`))
	})

	cache := &memoryCache{}
	client.WithProvinceCache(cache)

	want := []Province{{Code: "11", Name: "Aceh"}, {Code: "51", Name: "Bali"}}
	assert.Equal(t, want, client.Provinces(context.Background()))
	assert.Equal(t, url.Values{
		"order_by":        {"nama_propinsi"},
		"order_direction": {"ASC"},
		"page":            {"1"},
		"limit":           {"40"},
	}, query)

	assert.Equal(t, want, client.Provinces(context.Background()))
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, 1, cache.stored)
}

func TestProvincesFailureYieldsEmptyList(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	provinces := client.Provinces(context.Background())
	require.NotNil(t, provinces)
	assert.Empty(t, provinces)
}
