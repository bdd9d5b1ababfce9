package ledger

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in      string
		want    Amount
		wantErr bool
	}{
		{"120", 12000, false},
		{"120.5", 12050, false},
		{"120.50", 12050, false},
		{"0.05", 5, false},
		{".75", 75, false},
		{"-3.25", -325, false},
		{" 10 ", 1000, false},
		{"", 0, true},
		{"12.345", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseAmount(%q): expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseAmount(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestAmountString(t *testing.T) {
	cases := []struct {
		in   Amount
		want string
	}{
		{12345, "123.45"},
		{100, "1.00"},
		{5, "0.05"},
		{0, "0.00"},
		{-50, "-0.50"},
		{-12345, "-123.45"},
	}
	for _, tc := range cases {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("Amount(%d).String() = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseAmountRoundTrip(t *testing.T) {
	for _, v := range []Amount{0, 1, 99, 100, 101, 123456789, -250} {
		got, err := ParseAmount(v.String())
		if err != nil {
			t.Fatalf("round trip %d: %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d -> %q -> %d", v, v.String(), got)
		}
	}
}
