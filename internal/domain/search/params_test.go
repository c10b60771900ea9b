package search

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Params
		wantErr bool
	}{
		{"valid", Params{Page: 1, Size: 10}, false},
		{"zero page", Params{Page: 0, Size: 10}, true},
		{"negative page", Params{Page: -1, Size: 10}, true},
		{"zero size", Params{Page: 1, Size: 0}, true},
		{"negative size", Params{Page: 1, Size: -5}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 1, Size: 50}).Offset(); got != 0 {
		t.Errorf("first page offset = %d", got)
	}
	if got := (Params{Page: 4, Size: 25}).Offset(); got != 75 {
		t.Errorf("got %d, want 75", got)
	}
}

func TestSortField(t *testing.T) {
	tests := []struct {
		sort  string
		field string
		desc  bool
	}{
		{"", "", false},
		{"rating", "rating", false},
		{"-rating", "rating", true},
		{"-", "", true},
	}
	for _, tc := range tests {
		field, desc := (Params{Sort: tc.sort}).SortField()
		if field != tc.field || desc != tc.desc {
			t.Errorf("Sort %q: got (%q, %v), want (%q, %v)", tc.sort, field, desc, tc.field, tc.desc)
		}
	}
}
