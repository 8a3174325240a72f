package film

import (
	"errors"
	"testing"
	"time"
)

func TestParseOverflowPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    OverflowPolicy
		wantErr bool
	}{
		{input: "", want: OverflowReject},
		{input: "reject", want: OverflowReject},
		{input: "Carry", want: OverflowCarry},
		{input: "wrap", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOverflowPolicy(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOverflowPolicy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseOverflowPolicy(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTimestamper_Synthesize(t *testing.T) {
	date := NewCalendarDate(2023, time.September, 12)

	tests := []struct {
		name        string
		policy      OverflowPolicy
		date        CalendarDate
		pos         PhotoPosition
		want        string
		wantCarried bool
		wantErr     error
	}{
		{name: "first photo", date: date, pos: 1, want: "2023:09:12 00:01:00"},
		{name: "third photo", date: date, pos: 3, want: "2023:09:12 00:03:00"},
		{name: "last minute", date: date, pos: 59, want: "2023:09:12 00:59:00"},
		{name: "overflow rejected", date: date, pos: 60, wantErr: ErrSequenceOverflow},
		{name: "overflow carried", policy: OverflowCarry, date: date, pos: 60, want: "2023:09:12 01:00:00", wantCarried: true},
		{name: "carry keeps order", policy: OverflowCarry, date: date, pos: 75, want: "2023:09:12 01:15:00", wantCarried: true},
		{name: "carry stops at end of day", policy: OverflowCarry, date: date, pos: 1440, wantErr: ErrSequenceOverflow},
		{name: "sentinel date passes through", date: InvalidDate(), pos: 7, want: SentinelDate},
		{name: "sentinel ignores overflow", date: InvalidDate(), pos: 80, want: SentinelDate},
		{name: "unset date yields nothing", date: CalendarDate{}, pos: 2, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimestamper(tt.policy).Synthesize(tt.date, tt.pos)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Synthesize() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Synthesize() error = %v", err)
			}
			if got.Value != tt.want {
				t.Errorf("Synthesize() = %q, want %q", got.Value, tt.want)
			}
			if got.Carried != tt.wantCarried {
				t.Errorf("Carried = %v, want %v", got.Carried, tt.wantCarried)
			}
		})
	}
}

func TestTimestamper_InjectiveWithinMinuteRange(t *testing.T) {
	stamper := NewTimestamper(OverflowReject)
	date := NewCalendarDate(2023, time.September, 12)

	seen := make(map[string]PhotoPosition)
	prev := ""
	for pos := PhotoPosition(1); pos <= 59; pos++ {
		ts, err := stamper.Synthesize(date, pos)
		if err != nil {
			t.Fatalf("Synthesize(%d) error = %v", pos, err)
		}
		if other, dup := seen[ts.Value]; dup {
			t.Fatalf("positions %d and %d both map to %s", other, pos, ts.Value)
		}
		if ts.Value <= prev {
			t.Errorf("Synthesize(%d) = %s does not sort after %s", pos, ts.Value, prev)
		}
		seen[ts.Value] = pos
		prev = ts.Value
	}
}

func TestTimestamper_RejectsNonPositivePosition(t *testing.T) {
	if _, err := NewTimestamper("").Synthesize(NewCalendarDate(2023, 9, 12), 0); err == nil {
		t.Error("Synthesize(0) expected error")
	}
}
