package nav

import "testing"

func TestRouteTree(t *testing.T) {
	root := newRouteNode("")
	root.insert("/", 0)
	root.insert("/fractals", 1)
	root.insert("/fractals/mandelbrot", 2)

	tests := []struct {
		path  string
		want  int
		found bool
	}{
		{"/", 0, true},
		{"/fractals", 1, true},
		{"/fractals/mandelbrot", 2, true},
		{"/fractals/julia", -1, false},
		{"/gallery", -1, false},
	}
	for _, tt := range tests {
		got, ok := root.match(tt.path)
		if got != tt.want || ok != tt.found {
			t.Errorf("match(%q) = %d, %v; want %d, %v", tt.path, got, ok, tt.want, tt.found)
		}
	}
}

func TestRouteTreeFirstInsertWins(t *testing.T) {
	root := newRouteNode("")
	if !root.insert("/a", 0) {
		t.Fatal("first insert should succeed")
	}
	if !root.insert("/a", 0) {
		t.Error("re-inserting the same route should succeed")
	}
	if root.insert("/a", 1) {
		t.Error("inserting a second route at /a should report a conflict")
	}
	if idx, _ := root.match("/a"); idx != 0 {
		t.Errorf("match(/a) = %d, want 0", idx)
	}
}

func TestIntermediateNodeDoesNotMatch(t *testing.T) {
	root := newRouteNode("")
	root.insert("/a/b", 0)
	if _, ok := root.match("/a"); ok {
		t.Error("/a has no route and must not match")
	}
}
