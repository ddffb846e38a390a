package service

import "testing"

func TestPageBounds(t *testing.T) {
	cases := []struct {
		name               string
		total, page        int
		wantStart, wantEnd int
	}{
		{"empty set", 0, 0, 0, 0},
		{"first page full", 12, 0, 0, 5},
		{"middle page", 12, 1, 5, 10},
		{"short last page", 12, 2, 10, 12},
		{"past the end", 12, 3, 0, 0},
		{"negative page", 12, -1, 0, 0},
		{"exact multiple", 10, 1, 5, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := PageBounds(tc.total, tc.page, PageSize)
			if start != tc.wantStart || end != tc.wantEnd {
				t.Fatalf("PageBounds(%d, %d) = [%d, %d), want [%d, %d)",
					tc.total, tc.page, start, end, tc.wantStart, tc.wantEnd)
			}
		})
	}
}

func TestPageSlice(t *testing.T) {
	items := make([]int, 7)
	for i := range items {
		items[i] = i
	}

	page := PageSlice(items, 1, PageSize)
	if len(page) != 2 || page[0] != 5 || page[1] != 6 {
		t.Fatalf("page 1 = %v, want [5 6]", page)
	}
	if got := PageSlice(items, 2, PageSize); len(got) != 0 {
		t.Fatalf("page past the end = %v, want empty", got)
	}
}

func TestNavigationPredicates(t *testing.T) {
	if HasPrev(0) {
		t.Fatal("page 0 must not have prev")
	}
	if !HasPrev(1) {
		t.Fatal("page 1 must have prev")
	}

	// next appears iff (page+1)*size < total
	if HasNext(10, 1, PageSize) {
		t.Fatal("exactly two pages: page 1 must not have next")
	}
	if !HasNext(11, 1, PageSize) {
		t.Fatal("11 items: page 1 must have next")
	}
	if HasNext(5, 0, PageSize) {
		t.Fatal("single page must not have next")
	}
}
