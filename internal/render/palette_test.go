package render

import "testing"

func TestPaletteByName(t *testing.T) {
	for _, name := range PaletteNames() {
		p, ok := PaletteByName(name)
		if !ok {
			t.Errorf("PaletteByName(%q) not found", name)
			continue
		}
		if p.Name != name {
			t.Errorf("PaletteByName(%q).Name = %q", name, p.Name)
		}
		if p.GlamourStyle == "" {
			t.Errorf("palette %q has no glamour style", name)
		}
		if p.Primary == "" || p.Text == "" || p.Border == "" {
			t.Errorf("palette %q has empty colours", name)
		}
	}

	if _, ok := PaletteByName("nonexistent"); ok {
		t.Error("expected unknown palette to be absent")
	}
}

func TestPaletteOrDefault(t *testing.T) {
	if got := PaletteOrDefault("light"); got.Name != "light" {
		t.Errorf("PaletteOrDefault(light) = %s", got.Name)
	}
	if got := PaletteOrDefault("bogus"); got.Name != DarkPalette.Name {
		t.Errorf("PaletteOrDefault(bogus) = %s, want dark", got.Name)
	}
}

func TestToggle(t *testing.T) {
	tests := []struct {
		from     Palette
		expected string
	}{
		{DarkPalette, "light"},
		{LightPalette, "dark"},
		{TokyoNightPalette, "light"},
	}

	for _, tt := range tests {
		if got := Toggle(tt.from); got.Name != tt.expected {
			t.Errorf("Toggle(%s) = %s, want %s", tt.from.Name, got.Name, tt.expected)
		}
	}
}

func TestPalettes_GlamourStylesRender(t *testing.T) {
	for _, p := range Palettes() {
		r := New(DefaultOptions().WithStyle(p.GlamourStyle))
		if _, err := r.Markdown("**hi**", 40); err != nil {
			t.Errorf("palette %s: glamour style %q failed: %v", p.Name, p.GlamourStyle, err)
		}
	}
}
