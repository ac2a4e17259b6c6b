package drawing

import "testing"

type call struct {
	op         string
	instrument int
	note       int
	velocity   int
}

type fakeSound struct {
	calls []call
}

func (f *fakeSound) Play(instrument, note, velocity int) {
	f.calls = append(f.calls, call{"play", instrument, note, velocity})
}

func (f *fakeSound) Stop(instrument, note int) {
	f.calls = append(f.calls, call{"stop", instrument, note, 0})
}

func TestShapesAtColumnInclusive(t *testing.T) {
	d := New(100, 100, nil)
	a := d.AddShape(20, 0, 20, 10) // [20,40]
	b := d.AddShape(35, 0, 30, 10) // [35,65]

	tests := []struct {
		column int
		want   []ShapeID
	}{
		{19, nil},
		{20, []ShapeID{a.ID()}},
		{35, []ShapeID{a.ID(), b.ID()}},
		{40, []ShapeID{a.ID(), b.ID()}},
		{41, []ShapeID{b.ID()}},
		{65, []ShapeID{b.ID()}},
		{66, nil},
	}

	for _, tt := range tests {
		got := d.ShapesAtColumn(tt.column)
		if len(got) != len(tt.want) {
			t.Fatalf("column %d: expected %d shapes, got %d", tt.column, len(tt.want), len(got))
		}
		for i := range got {
			if got[i].ID() != tt.want[i] {
				t.Errorf("column %d: shape %d expected id %d, got %d", tt.column, i, tt.want[i], got[i].ID())
			}
		}
	}
}

func TestShapeIDsStableAcrossRemoval(t *testing.T) {
	d := New(100, 100, nil)
	a := d.AddShape(0, 0, 10, 10)
	b := d.AddShape(20, 0, 10, 10)

	if !d.RemoveShape(a.ID()) {
		t.Fatal("expected removal to succeed")
	}
	if d.RemoveShape(a.ID()) {
		t.Error("second removal should report false")
	}
	c := d.AddShape(40, 0, 10, 10)

	if c.ID() == a.ID() || c.ID() == b.ID() {
		t.Errorf("ids must not be reused, got %d", c.ID())
	}
	if d.Shape(b.ID()) != b {
		t.Error("lookup by id should survive removal of another shape")
	}
	if d.Len() != 2 {
		t.Errorf("expected 2 shapes, got %d", d.Len())
	}
}

func TestStartStopIdempotent(t *testing.T) {
	snd := &fakeSound{}
	d := New(100, 100, snd)
	s := d.AddShape(0, 120, 30, 30) // note 60, area 900 -> velocity 60

	s.Start()
	s.Start()
	if !s.IsPlaying() {
		t.Fatal("expected shape to be playing")
	}
	s.Stop()
	s.Stop()

	want := []call{
		{"play", 0, 60, 60},
		{"stop", 0, 60, 0},
	}
	if len(snd.calls) != len(want) {
		t.Fatalf("expected %d sound calls, got %d: %+v", len(want), len(snd.calls), snd.calls)
	}
	for i := range want {
		if snd.calls[i] != want[i] {
			t.Errorf("call %d: expected %+v, got %+v", i, want[i], snd.calls[i])
		}
	}
}

func TestMoveRetriggersWhenNoteChanges(t *testing.T) {
	snd := &fakeSound{}
	d := New(100, 100, snd)
	s := d.AddShape(0, 0, 10, 10)
	s.Start()

	s.Move(5, 3) // same note band (0 and 3 both map to 70)
	if len(snd.calls) != 1 {
		t.Fatalf("same-note move should not retrigger, got %+v", snd.calls)
	}

	s.Move(0, 12)
	if len(snd.calls) != 3 {
		t.Fatalf("expected stop+play after note change, got %+v", snd.calls)
	}
	if snd.calls[1].op != "stop" || snd.calls[1].note != 70 {
		t.Errorf("expected old note 70 stopped, got %+v", snd.calls[1])
	}
	if snd.calls[2].op != "play" || snd.calls[2].note != 69 {
		t.Errorf("expected new note 69 played, got %+v", snd.calls[2])
	}
}

func TestMoveWhileIdleIsSilent(t *testing.T) {
	snd := &fakeSound{}
	d := New(100, 100, snd)
	s := d.AddShape(0, 0, 10, 10)
	s.Move(0, 48)
	if len(snd.calls) != 0 {
		t.Errorf("idle shape should not sound on move, got %+v", snd.calls)
	}
	if s.Note() != 66 {
		t.Errorf("expected note 66, got %d", s.Note())
	}
}

func TestRemovePlayingShapeStopsIt(t *testing.T) {
	snd := &fakeSound{}
	d := New(100, 100, snd)
	s := d.AddShape(0, 0, 10, 10)
	s.Start()
	d.RemoveShape(s.ID())

	if s.IsPlaying() {
		t.Error("removed shape should be idle")
	}
	if last := snd.calls[len(snd.calls)-1]; last.op != "stop" {
		t.Errorf("expected final stop, got %+v", last)
	}
}

func TestClaimRelease(t *testing.T) {
	d := New(100, 100, nil)
	s := d.AddShape(0, 0, 10, 10)

	if !s.Claim(1) {
		t.Fatal("free shape should be claimable")
	}
	if !s.Claim(1) {
		t.Error("re-claim by the same owner should succeed")
	}
	if s.Claim(2) {
		t.Error("claim by a second owner should fail")
	}
	s.Release(2)
	if s.Owner() != 1 {
		t.Error("release by a non-owner must not free the shape")
	}
	s.Release(1)
	if s.Owner() != NoOwner {
		t.Error("expected shape to be free")
	}
}

func TestMappings(t *testing.T) {
	if got := AreaToVelocity(0); got != 60 {
		t.Errorf("small area: expected 60, got %d", got)
	}
	if got := AreaToVelocity(30 * 90); got != 90 {
		t.Errorf("expected 90, got %d", got)
	}
	if got := AreaToVelocity(1 << 20); got != 127 {
		t.Errorf("large area: expected 127, got %d", got)
	}
	if got := CoordToNote(0); got != 70 {
		t.Errorf("expected 70, got %d", got)
	}
	if got := CoordToNote(119); got != 61 {
		t.Errorf("expected 61, got %d", got)
	}
}

func TestShapeAtAndBounds(t *testing.T) {
	d := New(100, 100, nil)
	s := d.AddShape(10, 10, 0, 0)
	s.SetBounds(30, 40)
	if s.Width() != 20 || s.Height() != 30 {
		t.Fatalf("expected 20x30, got %dx%d", s.Width(), s.Height())
	}
	if d.ShapeAt(25, 35) != s {
		t.Error("expected hit inside shape")
	}
	if d.ShapeAt(31, 35) != nil {
		t.Error("expected miss outside shape")
	}
	s.SetBounds(0, 0)
	if s.Width() != 0 || s.Height() != 0 {
		t.Errorf("inverted bounds should collapse, got %dx%d", s.Width(), s.Height())
	}
}
