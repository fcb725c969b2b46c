package payment

import "testing"

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Status
		wantErr bool
	}{
		{"Completed", "COMPLETED", StatusCompleted, false},
		{"Pending", "PENDING", StatusPending, false},
		{"Failed", "FAILED", StatusFailed, false},
		{"Refunded", "REFUNDED", StatusRefunded, false},
		{"Lowercase", "completed", "", true},
		{"Unknown", "SETTLED", "", true},
		{"Empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCountsTowardBalance(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusCompleted, true},
		{StatusPending, false},
		{StatusFailed, false},
		{StatusRefunded, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			p := &Payment{Status: tt.status}
			if got := p.CountsTowardBalance(); got != tt.want {
				t.Errorf("CountsTowardBalance() = %v, want %v", got, tt.want)
			}
		})
	}
}
