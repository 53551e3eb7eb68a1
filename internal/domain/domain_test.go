package domain

import "testing"

func TestNormalizePair(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"BTC/USDT", "BTC/USDT", false},
		{"btc/usdt", "BTC/USDT", false},
		{"  eth/btc ", "ETH/BTC", false},
		{"sol/usdc", "SOL/USDC", false},
		{"BTCUSDT", "", true},
		{"/USDT", "", true},
		{"BTC/", "", true},
		{"", "", true},
		{"BTC/JPY", "", true},
	}
	for _, tc := range cases {
		got, err := NormalizePair(tc.in)
		if tc.wantErr {
			if !IsValidation(err) {
				t.Errorf("NormalizePair(%q): expected validation error, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizePair(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizePair(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidTimeframe(t *testing.T) {
	for _, tf := range SupportedTimeframes {
		if !ValidTimeframe(tf) {
			t.Errorf("expected %q to be valid", tf)
		}
	}
	for _, tf := range []string{"7m", "1H", "", "2w"} {
		if ValidTimeframe(tf) {
			t.Errorf("expected %q to be invalid", tf)
		}
	}
}

func TestAlertCondition(t *testing.T) {
	for _, c := range []AlertCondition{AlertAbove, AlertBelow, AlertCrossesAbove, AlertCrossesBelow} {
		if !c.IsValid() {
			t.Errorf("expected %q to be valid", c)
		}
	}
	if AlertCondition("near").IsValid() {
		t.Error("unknown condition must be invalid")
	}

	if AlertAbove.Crossing() || AlertBelow.Crossing() {
		t.Error("level conditions are not crossings")
	}
	if !AlertCrossesAbove.Crossing() || !AlertCrossesBelow.Crossing() {
		t.Error("crossing conditions must report Crossing")
	}
}
