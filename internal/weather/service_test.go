package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kjstillabower/travel-planner-service/internal/cache"
	"github.com/kjstillabower/travel-planner-service/internal/circuitbreaker"
	"github.com/kjstillabower/travel-planner-service/internal/client"
	"github.com/kjstillabower/travel-planner-service/internal/models"
)

type mockGeocoder struct {
	mu     sync.Mutex
	coords models.Coordinates
	err    error
	calls  int
}

func (m *mockGeocoder) Geocode(ctx context.Context, city string) (models.Coordinates, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.coords, m.err
}

// mockHistory serves observations by date; dates in failing return an upstream error.
type mockHistory struct {
	mu      sync.Mutex
	byDate  map[string]models.DailyObservation
	failing map[string]bool
	err     error
	days    []string
}

func (m *mockHistory) Observation(ctx context.Context, coords models.Coordinates, day time.Time) (models.DailyObservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	date := day.Format(models.DateLayout)
	m.days = append(m.days, date)
	if m.err != nil {
		return models.DailyObservation{}, m.err
	}
	if m.failing[date] {
		return models.DailyObservation{}, fmt.Errorf("history %s: %w", date, client.ErrUpstreamFailure)
	}
	obs, ok := m.byDate[date]
	if !ok {
		return models.DailyObservation{}, client.ErrNoData
	}
	return obs, nil
}

type mockCache struct {
	data   map[string]models.Coordinates
	getErr error
	setErr error
}

func (m *mockCache) Get(ctx context.Context, key string) (models.Coordinates, bool, error) {
	if m.getErr != nil {
		return models.Coordinates{}, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value models.Coordinates, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.data == nil {
		m.data = make(map[string]models.Coordinates)
	}
	m.data[key] = value
	return nil
}

var lisbon = models.Coordinates{Lat: 38.72, Lon: -9.14, Name: "Lisbon", Country: "PT"}

func obs(date string, temp float64, cond string) models.DailyObservation {
	return models.DailyObservation{Date: date, Temperature: temp, Conditions: cond, Humidity: 60, WindSpeed: 3}
}

func date(s string) time.Time {
	t, _ := time.Parse(models.DateLayout, s)
	return t
}

func TestService_Report_Success(t *testing.T) {
	hist := &mockHistory{byDate: map[string]models.DailyObservation{
		"2024-06-01": obs("2024-06-01", 18, "clear sky"),
		"2024-06-02": obs("2024-06-02", 22, "clear sky"),
		"2024-06-03": obs("2024-06-03", 20, "light rain"),
	}}
	svc := NewService(&mockGeocoder{coords: lisbon}, hist, cache.NewInMemoryCache(), time.Hour, nil)

	report, err := svc.Report(context.Background(), "Lisbon", date("2025-06-01"), date("2025-06-03"))
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if report.Error != "" || report.Note != NoteLastYear {
		t.Errorf("Error = %q, Note = %q", report.Error, report.Note)
	}
	if len(report.Forecast) != 3 {
		t.Fatalf("len(Forecast) = %d, want 3", len(report.Forecast))
	}
	if report.Summary == nil {
		t.Fatal("Summary = nil")
	}
	if report.Summary.Temperature.Average != "20.0°C" || report.Summary.TotalDays != 3 {
		t.Errorf("Summary = %+v", report.Summary)
	}
	if got := report.Summary.MostCommonConditions[0]; got.Condition != "clear sky" || got.Days != 2 {
		t.Errorf("MostCommonConditions[0] = %+v", got)
	}
	want := []string{"2024-06-01", "2024-06-02", "2024-06-03"}
	for i, d := range want {
		if hist.days[i] != d {
			t.Errorf("requested day %d = %s, want %s", i, hist.days[i], d)
		}
	}
}

func TestService_Report_LeapDayShift(t *testing.T) {
	hist := &mockHistory{byDate: map[string]models.DailyObservation{
		"2023-02-28": obs("2023-02-28", 10, "snow"),
	}}
	svc := NewService(&mockGeocoder{coords: lisbon}, hist, cache.NewInMemoryCache(), time.Hour, nil)

	report, err := svc.Report(context.Background(), "Lisbon", date("2024-02-29"), date("2024-02-29"))
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if len(hist.days) != 1 || hist.days[0] != "2023-02-28" {
		t.Errorf("requested days = %v, want [2023-02-28]", hist.days)
	}
	if len(report.Forecast) != 1 {
		t.Errorf("len(Forecast) = %d, want 1", len(report.Forecast))
	}
}

func TestService_Report_PartialFailuresShrinkSample(t *testing.T) {
	hist := &mockHistory{
		byDate: map[string]models.DailyObservation{
			"2024-06-01": obs("2024-06-01", 18, "clear sky"),
			"2024-06-03": obs("2024-06-03", 20, "clear sky"),
		},
		failing: map[string]bool{"2024-06-02": true},
	}
	svc := NewService(&mockGeocoder{coords: lisbon}, hist, cache.NewInMemoryCache(), time.Hour, nil)

	report, err := svc.Report(context.Background(), "Lisbon", date("2025-06-01"), date("2025-06-03"))
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if len(report.Forecast) != 2 || report.Summary.TotalDays != 2 {
		t.Errorf("Forecast = %d days, TotalDays = %d, want 2", len(report.Forecast), report.Summary.TotalDays)
	}
}

func TestService_Report_NoData(t *testing.T) {
	hist := &mockHistory{err: client.ErrUpstreamFailure}
	svc := NewService(&mockGeocoder{coords: lisbon}, hist, cache.NewInMemoryCache(), time.Hour, nil)

	report, err := svc.Report(context.Background(), "Lisbon", date("2025-06-01"), date("2025-06-02"))
	if err != nil {
		t.Fatalf("Report() error = %v, want nil for no data", err)
	}
	if report.Error != MsgNoData {
		t.Errorf("Error = %q, want %q", report.Error, MsgNoData)
	}
	if report.Summary != nil || report.Forecast == nil || len(report.Forecast) != 0 {
		t.Errorf("report = %+v, want empty forecast and nil summary", report)
	}

	raw, _ := json.Marshal(report)
	var decoded map[string]any
	_ = json.Unmarshal(raw, &decoded)
	if v, ok := decoded["summary"]; !ok || v != nil {
		t.Errorf("summary JSON = %v, want explicit null", v)
	}
}

func TestService_Report_GeocodingErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "not found", err: fmt.Errorf("geocode: %w", client.ErrLocationNotFound), wantErr: client.ErrLocationNotFound},
		{name: "upstream", err: client.ErrUpstreamFailure, wantErr: client.ErrUpstreamFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hist := &mockHistory{}
			svc := NewService(&mockGeocoder{err: tt.err}, hist, cache.NewInMemoryCache(), time.Hour, nil)

			report, err := svc.Report(context.Background(), "Atlantis", date("2025-06-01"), date("2025-06-02"))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Report() error = %v, want %v", err, tt.wantErr)
			}
			if report.City != "Atlantis" || report.Error == "" || report.Summary != nil || len(report.Forecast) != 0 {
				t.Errorf("report = %+v", report)
			}
			if len(hist.days) != 0 {
				t.Errorf("history called %d times after geocoding failure", len(hist.days))
			}
		})
	}
}

func TestService_Report_BreakerShortCircuits(t *testing.T) {
	hist := &mockHistory{err: client.ErrUpstreamFailure}
	cb := circuitbreaker.New(circuitbreaker.Config{FailureThreshold: 2, Timeout: time.Hour})
	svc := NewService(&mockGeocoder{coords: lisbon}, hist, cache.NewInMemoryCache(), time.Hour, cb)

	report, err := svc.Report(context.Background(), "Lisbon", date("2025-06-01"), date("2025-06-10"))
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if len(hist.days) != 2 {
		t.Errorf("history calls = %d, want 2 before the circuit opens", len(hist.days))
	}
	if report.Error != MsgNoData {
		t.Errorf("Error = %q, want no-data", report.Error)
	}
}

// slowHistory returns a fixed observation per day after delay, honoring ctx.
type slowHistory struct {
	delay time.Duration
}

func (s slowHistory) Observation(ctx context.Context, coords models.Coordinates, day time.Time) (models.DailyObservation, error) {
	select {
	case <-ctx.Done():
		return models.DailyObservation{}, ctx.Err()
	case <-time.After(s.delay):
	}
	return obs(day.Format(models.DateLayout), 20, "clear sky"), nil
}

func TestService_Report_LongRangeIsNotCutShort(t *testing.T) {
	svc := NewService(&mockGeocoder{coords: lisbon}, slowHistory{delay: 5 * time.Millisecond}, cache.NewInMemoryCache(), time.Hour, nil)

	report, err := svc.Report(context.Background(), "Lisbon", date("2025-06-01"), date("2025-06-30"))
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if len(report.Forecast) != 30 || report.Summary == nil || report.Summary.TotalDays != 30 {
		t.Errorf("Forecast = %d days, Summary = %+v, want 30 days", len(report.Forecast), report.Summary)
	}
}

func TestService_Report_DeadlineFailsInsteadOfTruncating(t *testing.T) {
	svc := NewService(&mockGeocoder{coords: lisbon}, slowHistory{delay: 30 * time.Millisecond}, cache.NewInMemoryCache(), time.Hour, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	report, err := svc.Report(ctx, "Lisbon", date("2025-06-01"), date("2025-06-10"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Report() error = %v, want deadline exceeded", err)
	}
	if report.Summary != nil || len(report.Forecast) != 0 || report.Error == "" {
		t.Errorf("report = %+v, want failed report with no partial summary", report)
	}
}

func TestService_Resolve_CacheAside(t *testing.T) {
	geo := &mockGeocoder{coords: lisbon}
	c := &mockCache{}
	svc := NewService(geo, &mockHistory{}, c, time.Hour, nil)

	for i := 0; i < 3; i++ {
		got, err := svc.Resolve(context.Background(), "  Lisbon ")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if got != lisbon {
			t.Errorf("Resolve() = %+v", got)
		}
	}
	if geo.calls != 1 {
		t.Errorf("geocoder calls = %d, want 1", geo.calls)
	}
	if _, ok := c.data["lisbon"]; !ok {
		t.Errorf("cache keys = %v, want normalized lisbon", c.data)
	}
}

func TestService_Resolve_CacheErrorsFallThrough(t *testing.T) {
	geo := &mockGeocoder{coords: lisbon}
	c := &mockCache{getErr: errors.New("connection refused"), setErr: errors.New("connection refused")}
	svc := NewService(geo, &mockHistory{}, c, time.Hour, nil)

	got, err := svc.Resolve(context.Background(), "Lisbon")
	if err != nil || got != lisbon {
		t.Errorf("Resolve() = %+v, %v, want lisbon despite cache errors", got, err)
	}
}

func TestService_Resolve_DoesNotCacheFailures(t *testing.T) {
	geo := &mockGeocoder{err: client.ErrLocationNotFound}
	c := &mockCache{}
	svc := NewService(geo, &mockHistory{}, c, time.Hour, nil)

	_, _ = svc.Resolve(context.Background(), "Atlantis")
	if len(c.data) != 0 {
		t.Errorf("cache = %v, want empty after failure", c.data)
	}
}
