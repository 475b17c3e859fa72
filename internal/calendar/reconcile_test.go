package calendar

import (
	"testing"
	"time"
)

type testRecord struct {
	id     int
	date   string
	active *bool
}

func (r testRecord) CalendarDate() string { return r.date }
func (r testRecord) ActiveFlag() *bool    { return r.active }

func boolPtr(v bool) *bool { return &v }

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{raw: "2024-03-05", want: "2024-03-05", wantOK: true},
		{raw: "2024-03-05T00:00:00Z", want: "2024-03-05", wantOK: true},
		{raw: "2024-03-05T23:30:00+14:00", want: "2024-03-05", wantOK: true},
		{raw: "2024-03-05T", want: "2024-03-05", wantOK: true},
		{raw: "not-a-date", wantOK: false},
		{raw: "", wantOK: false},
		{raw: "2024-3-5", wantOK: false},
		{raw: "2024-03-05 10:00:00", wantOK: false},
		{raw: "05.03.2024T10:00", wantOK: false},
		{raw: "T2024-03-05", wantOK: false},
	}

	for _, tc := range tests {
		got, ok := NormalizeDate(tc.raw)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("NormalizeDate(%q) = (%q, %v), want (%q, %v)", tc.raw, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestHasRecordOn_MatchesOnlyTheFormattedDay(t *testing.T) {
	t.Parallel()

	records := []testRecord{{id: 1, date: "2024-03-05", active: boolPtr(true)}}

	day := NewDate(2024, time.March, 1)
	for i := 0; i < 10; i++ {
		want := day.Format() == "2024-03-05"
		if got := HasRecordOn(records, day); got != want {
			t.Fatalf("HasRecordOn(%s) = %v, want %v", day, got, want)
		}
		day = day.AddDays(1)
	}
}

func TestHasRecordOn_ActiveFlag(t *testing.T) {
	t.Parallel()

	day := NewDate(2024, time.March, 5)

	if !HasRecordOn([]testRecord{{date: "2024-03-05"}}, day) {
		t.Fatalf("missing active flag must count as active")
	}
	if HasRecordOn([]testRecord{{date: "2024-03-05", active: boolPtr(false)}}, day) {
		t.Fatalf("explicitly inactive record must not mark the day")
	}
	mixed := []testRecord{
		{id: 1, date: "2024-03-05", active: boolPtr(false)},
		{id: 2, date: "2024-03-05T10:00:00Z"},
	}
	if !HasRecordOn(mixed, day) {
		t.Fatalf("an active record next to an inactive one must mark the day")
	}
}

func TestRecordsOn_IncludesInactiveAndKeepsOrder(t *testing.T) {
	t.Parallel()

	records := []testRecord{
		{id: 1, date: "2024-03-05T18:00:00Z", active: boolPtr(false)},
		{id: 2, date: "2024-03-06"},
		{id: 3, date: "2024-03-05"},
		{id: 4, date: "garbage"},
	}

	got := RecordsOn(records, NewDate(2024, time.March, 5))
	if len(got) != 2 || got[0].id != 1 || got[1].id != 3 {
		t.Fatalf("unexpected records: %+v", got)
	}

	if HasRecordOn(records[:1], NewDate(2024, time.March, 5)) {
		t.Fatalf("inactive record must still be hidden from the indicator")
	}
}

func TestMalformedDatesNeverMatch(t *testing.T) {
	t.Parallel()

	records := []testRecord{{date: "not-a-date"}, {date: ""}, {date: "2024-02-30x"}}
	for _, cell := range BuildMonthGrid(2024, time.February) {
		if HasRecordOn(records, cell.Date) {
			t.Fatalf("malformed date matched %s", cell.Date)
		}
		if got := RecordsOn(records, cell.Date); len(got) != 0 {
			t.Fatalf("malformed date listed on %s: %+v", cell.Date, got)
		}
	}
}

func TestHasRecordOn_IndependentOfCallerZone(t *testing.T) {
	t.Parallel()

	records := []testRecord{{id: 1, date: "2024-03-05T00:00:00Z", active: boolPtr(true)}}

	zones := []*time.Location{
		time.UTC,
		time.FixedZone("UTC-12", -12*60*60),
		time.FixedZone("UTC+14", 14*60*60),
		time.FixedZone("MSK", 3*60*60),
	}
	for _, loc := range zones {
		picked := DateOf(time.Date(2024, time.March, 5, 0, 30, 0, 0, loc))
		if !HasRecordOn(records, picked) {
			t.Fatalf("record not found for 2024-03-05 picked in %s", loc)
		}
		if HasRecordOn(records, picked.AddDays(-1)) || HasRecordOn(records, picked.AddDays(1)) {
			t.Fatalf("record leaked into a neighbouring day in %s", loc)
		}
	}
}

func TestMonthIndicators_AgreesWithHasRecordOn(t *testing.T) {
	t.Parallel()

	records := []testRecord{
		{date: "2024-02-26"},
		{date: "2024-03-05T08:00:00Z"},
		{date: "2024-03-06", active: boolPtr(false)},
		{date: "2024-04-07"},
		{date: "broken"},
	}

	days := MonthIndicators(records, 2024, time.March)
	if len(days) != GridSize {
		t.Fatalf("expected %d indicators, got %d", GridSize, len(days))
	}
	marked := 0
	for _, day := range days {
		if day.HasRecord != HasRecordOn(records, day.Date) {
			t.Fatalf("indicator mismatch on %s", day.Date)
		}
		if day.HasRecord {
			marked++
		}
	}
	if marked != 3 {
		t.Fatalf("expected 3 marked days, got %d", marked)
	}
}
