package basic

import "testing"

func TestCanonicalName(t *testing.T) {
	cases := map[string]string{
		"a":  "A",
		"A%": "A",
		"a$": "A$",
		"Hz": "HZ",
	}
	for in, want := range cases {
		if got := CanonicalName(in); got != want {
			t.Errorf("CanonicalName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestVarsDefaultValues(t *testing.T) {
	v := NewVars()
	if got := v.Get("X"); got.IsString() || got.Float() != 0 {
		t.Errorf("unset numeric var = %+v, want 0", got)
	}
	if got := v.Get("N$"); !got.IsString() || got.Text() != "" {
		t.Errorf("unset string var = %+v, want empty string", got)
	}
}

func TestVarsSetGet(t *testing.T) {
	v := NewVars()
	v.Set("x", Num(42))
	if got := v.Get("X"); got.Float() != 42 {
		t.Errorf("Get(X) = %v, want 42", got.Float())
	}
}

func TestArrayInclusiveBounds(t *testing.T) {
	a := NewArray("A", []int{10})
	if err := a.Set([]int{10}, Num(99), 10); err != nil {
		t.Fatalf("Set at inclusive bound: %v", err)
	}
	got, err := a.Get([]int{10}, 10)
	if err != nil || got.Float() != 99 {
		t.Fatalf("Get at inclusive bound = %+v, %v", got, err)
	}
	if _, err := a.Get([]int{11}, 10); err == nil {
		t.Fatal("expected SubscriptOutOfRange at index 11 of DIM A(10)")
	}
}

func TestArray2D(t *testing.T) {
	a := NewArray("A", []int{2, 3})
	for i := 0; i <= 2; i++ {
		for j := 0; j <= 3; j++ {
			want := float64(i*10 + j)
			if err := a.Set([]int{i, j}, Num(want), 0); err != nil {
				t.Fatalf("Set(%d,%d): %v", i, j, err)
			}
		}
	}
	for i := 0; i <= 2; i++ {
		for j := 0; j <= 3; j++ {
			want := float64(i*10 + j)
			got, err := a.Get([]int{i, j}, 0)
			if err != nil || got.Float() != want {
				t.Fatalf("Get(%d,%d) = %+v, %v, want %v", i, j, got, err, want)
			}
		}
	}
}

func TestArraysImplicitDim(t *testing.T) {
	arrays := NewArrays()
	arr := arrays.Get("A", 1)
	if got := arr.Dims(); len(got) != 1 || got[0] != implicitDimSize {
		t.Fatalf("implicit DIM = %v, want [%d]", got, implicitDimSize)
	}
}

func TestArraysRedimensionFails(t *testing.T) {
	arrays := NewArrays()
	if err := arrays.Dim("A", []int{5}, 10); err != nil {
		t.Fatalf("first DIM: %v", err)
	}
	if err := arrays.Dim("A", []int{5}, 20); err == nil {
		t.Fatal("expected RedimensionedArray on second DIM of the same name")
	}
}
