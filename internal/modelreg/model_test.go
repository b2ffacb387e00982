package modelreg

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Model
	}{
		{"nano_banana", NanoBanana},
		{"nano_banana_pro", NanoBananaPro},
		{"seedream", Seedream},
		{"gemini_flash", GeminiFlash},
		{"gemini_pro", GeminiPro},
		{"fal_flux", FalFlux},
		{"NANO_BANANA", NanoBanana},
		{"  seedream  ", Seedream},
		{"", NanoBanana},
		{"gpt-image-1", NanoBanana},
		{"nano-banana", NanoBanana},
	}
	for _, tt := range tests {
		if got := Parse(tt.in); got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKnown(t *testing.T) {
	for _, m := range All() {
		if !Known(string(m)) {
			t.Errorf("Known(%q) = false for registered model", m)
		}
	}
	if Known("dall-e-3") {
		t.Error("Known() accepted an unregistered model")
	}
}

func TestDescribeCoversAll(t *testing.T) {
	for _, m := range All() {
		info := Describe(m)
		if info.Name != string(m) {
			t.Errorf("Describe(%q).Name = %q", m, info.Name)
		}
		if info.BaseCost <= 0 {
			t.Errorf("Describe(%q).BaseCost = %d, want > 0", m, info.BaseCost)
		}
	}
}
