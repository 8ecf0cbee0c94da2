package dispatch

import (
	"testing"
	"time"

	"github.com/tessro/moodplay/internal/core"
)

type fakeTarget struct {
	mood     core.Mood
	switches []core.Mood
}

func (f *fakeTarget) Mood() core.Mood { return f.mood }

func (f *fakeTarget) SwitchMood(m core.Mood) {
	f.mood = m
	f.switches = append(f.switches, m)
}

func reading(m core.Mood, c float64) core.MoodEvent {
	return core.MoodEvent{Mood: m, Confidence: c, Timestamp: time.Now()}
}

func TestOnClassification(t *testing.T) {
	target := &fakeTarget{mood: core.MoodHappy}
	d := New(target)

	if d.OnClassification(reading(core.MoodHappy, 0.9)) {
		t.Error("same mood reported a switch")
	}
	if len(target.switches) != 0 {
		t.Fatalf("switches = %v, want none", target.switches)
	}

	if !d.OnClassification(reading(core.MoodSad, 0.4)) {
		t.Error("different mood did not switch")
	}
	if target.mood != core.MoodSad {
		t.Errorf("mood = %q, want sad", target.mood)
	}
	if d.Confidence() != 0.4 {
		t.Errorf("Confidence() = %v, want 0.4", d.Confidence())
	}
}

func TestNoFaceSwitchesImmediately(t *testing.T) {
	target := &fakeTarget{mood: core.MoodAngry}
	d := New(target)

	if !d.OnClassification(core.NoFace(time.Now())) {
		t.Fatal("no-face reading did not switch")
	}
	if target.mood != core.MoodRelaxed {
		t.Errorf("mood = %q, want relaxed", target.mood)
	}
	if d.Confidence() != 0 {
		t.Errorf("Confidence() = %v, want 0", d.Confidence())
	}
}

func TestEveryDifferingLabelSwitches(t *testing.T) {
	target := &fakeTarget{mood: core.MoodRelaxed}
	d := New(target)

	seq := []core.Mood{core.MoodHappy, core.MoodSad, core.MoodHappy, core.MoodHappy, core.MoodAngry}
	for _, m := range seq {
		d.OnClassification(reading(m, 0.01))
	}

	want := []core.Mood{core.MoodHappy, core.MoodSad, core.MoodHappy, core.MoodAngry}
	if len(target.switches) != len(want) {
		t.Fatalf("switches = %v, want %v", target.switches, want)
	}
	for i := range want {
		if target.switches[i] != want[i] {
			t.Errorf("switches[%d] = %q, want %q", i, target.switches[i], want[i])
		}
	}
}

func TestUnknownLabelIgnored(t *testing.T) {
	target := &fakeTarget{mood: core.MoodHappy}
	d := New(target)

	if d.OnClassification(reading(core.Mood("surprised"), 0.9)) {
		t.Error("unknown label switched")
	}
	if target.mood != core.MoodHappy {
		t.Errorf("mood = %q, want happy", target.mood)
	}
}

func TestConfidenceClamped(t *testing.T) {
	d := New(&fakeTarget{mood: core.MoodHappy})
	d.OnClassification(reading(core.MoodHappy, 1.8))
	if d.Confidence() != 1 {
		t.Errorf("Confidence() = %v, want 1", d.Confidence())
	}
}

func TestHysteresis(t *testing.T) {
	tests := []struct {
		name     string
		h        Hysteresis
		readings []core.MoodEvent
		want     int
	}{
		{
			name:     "min confidence blocks weak readings",
			h:        Hysteresis{MinConfidence: 0.5},
			readings: []core.MoodEvent{reading(core.MoodSad, 0.3), core.NoFace(time.Now())},
			want:     0,
		},
		{
			name:     "min confidence admits strong reading",
			h:        Hysteresis{MinConfidence: 0.5},
			readings: []core.MoodEvent{reading(core.MoodSad, 0.7)},
			want:     1,
		},
		{
			name: "hold needs consecutive readings",
			h:    Hysteresis{Hold: 3},
			readings: []core.MoodEvent{
				reading(core.MoodSad, 0.9),
				reading(core.MoodSad, 0.9),
				reading(core.MoodAngry, 0.9),
				reading(core.MoodSad, 0.9),
			},
			want: 0,
		},
		{
			name: "hold switches on the third reading",
			h:    Hysteresis{Hold: 3},
			readings: []core.MoodEvent{
				reading(core.MoodSad, 0.9),
				reading(core.MoodSad, 0.9),
				reading(core.MoodSad, 0.9),
			},
			want: 1,
		},
		{
			name: "reading of current mood resets the streak",
			h:    Hysteresis{Hold: 2},
			readings: []core.MoodEvent{
				reading(core.MoodSad, 0.9),
				reading(core.MoodHappy, 0.9),
				reading(core.MoodSad, 0.9),
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := &fakeTarget{mood: core.MoodHappy}
			d := New(target, WithHysteresis(tt.h))
			for _, r := range tt.readings {
				d.OnClassification(r)
			}
			if len(target.switches) != tt.want {
				t.Errorf("switches = %v, want %d", target.switches, tt.want)
			}
		})
	}
}

func TestHysteresisEnabled(t *testing.T) {
	if (Hysteresis{}).Enabled() {
		t.Error("zero Hysteresis is enabled")
	}
	if (Hysteresis{Hold: 1}).Enabled() {
		t.Error("Hold of 1 should behave like no hold")
	}
	if !(Hysteresis{Hold: 2}).Enabled() {
		t.Error("Hold of 2 is not enabled")
	}
}
