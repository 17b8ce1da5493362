package core

import "testing"

func TestNewScreenIsBlank(t *testing.T) {
	s := NewScreen(4, 2)

	if s.Width() != 4 || s.Height() != 2 {
		t.Fatalf("size = %dx%d, expected 4x2", s.Width(), s.Height())
	}
	for y := range 2 {
		for x := range 4 {
			if c := s.GetCell(x, y); c != (Cell{Rune: ' '}) {
				t.Errorf("cell (%d,%d) = %+v, expected blank", x, y, c)
			}
		}
	}
}

func TestScreenSetCell(t *testing.T) {
	s := NewScreen(3, 3)
	s.SetColored(1, 2, '#', ColorGreen)

	got := s.GetCell(1, 2)
	if got.Rune != '#' || got.Color != ColorGreen {
		t.Errorf("GetCell(1,2) = %+v, expected '#' in green", got)
	}

	// Out of bounds writes are ignored and reads return blank.
	s.Set(-1, 0, 'x')
	s.Set(3, 0, 'x')
	if s.Get(-1, 0) != ' ' || s.Get(3, 0) != ' ' {
		t.Error("out of bounds reads should return space")
	}
}

func TestScreenResizeKeepsContent(t *testing.T) {
	s := NewScreen(3, 3)
	s.Set(0, 0, 'a')
	s.Set(2, 2, 'b')

	s.Resize(2, 4)

	if s.Get(0, 0) != 'a' {
		t.Error("expected content at (0,0) to survive resize")
	}
	if s.Get(1, 3) != ' ' {
		t.Error("expected new rows to be blank")
	}
	if s.Width() != 2 || s.Height() != 4 {
		t.Errorf("size = %dx%d, expected 2x4", s.Width(), s.Height())
	}
}

func TestScreenNegativeSizeIsEmpty(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantW, wantH  int
	}{
		{"negative width", -1, 3, 0, 3},
		{"negative height", 5, -2, 5, 0},
		{"both negative", -4, -4, 0, 0},
		{"zero", 0, 0, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewScreen(tc.width, tc.height)
			if s.Width() != tc.wantW || s.Height() != tc.wantH {
				t.Errorf("NewScreen(%d, %d) size = %dx%d, expected %dx%d",
					tc.width, tc.height, s.Width(), s.Height(), tc.wantW, tc.wantH)
			}
			s.SetCell(0, 0, Cell{Rune: '#'})

			r := NewScreen(3, 3)
			r.DrawText(0, 0, "abc")
			r.Resize(tc.width, tc.height)
			if r.Width() != tc.wantW || r.Height() != tc.wantH {
				t.Errorf("Resize(%d, %d) size = %dx%d, expected %dx%d",
					tc.width, tc.height, r.Width(), r.Height(), tc.wantW, tc.wantH)
			}
			if tc.wantW > 0 && tc.wantH > 0 && r.GetCell(0, 0).Rune != 'a' {
				t.Errorf("Resize lost cell (0,0): %+v", r.GetCell(0, 0))
			}
		})
	}
}

func TestScreenDrawText(t *testing.T) {
	s := NewScreen(6, 2)
	s.DrawTextColored(1, 0, "héllo!", ColorCyan)

	if got := s.Row(0); got != " héllo" {
		t.Errorf("Row(0) = %q, expected %q", got, " héllo")
	}
	if s.GetCell(2, 0).Color != ColorCyan {
		t.Error("expected text to carry its color")
	}
}

func TestScreenFillAndClear(t *testing.T) {
	s := NewScreen(3, 2)
	s.FillCell(Cell{Rune: '#', Color: ColorRed})

	if got := s.String(); got != "###\n###" {
		t.Errorf("String() = %q, expected filled screen", got)
	}
	if s.GetCell(2, 1).Color != ColorRed {
		t.Error("expected fill color to be kept")
	}

	s.Clear()
	if got := s.String(); got != "   \n   " {
		t.Errorf("String() after Clear = %q", got)
	}
}

func TestColorString(t *testing.T) {
	if ColorBrightGreen.String() != "bright-green" {
		t.Errorf("ColorBrightGreen.String() = %q", ColorBrightGreen.String())
	}
	if Color(200).String() != "unknown" {
		t.Error("expected unknown for out-of-palette color")
	}
}
