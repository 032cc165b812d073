package domain

import "testing"

func TestIsMediaExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want bool
	}{
		{".jpg", true},
		{"jpg", true},
		{".JPG", true},
		{".HEIC", true},
		{".3gpp", true},
		{".mov", true},
		{".json", false},
		{".txt", false},
		{"", false},
		{".jpg.json", false},
	}

	for _, tt := range tests {
		if got := IsMediaExtension(tt.ext); got != tt.want {
			t.Errorf("IsMediaExtension(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}
}

func TestSidecarBase(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"IMG_001.jpg.json", "IMG_001.jpg"},
		{"IMG_001.jpg.supplemental-metadata.json", "IMG_001.jpg.supplemental-metadata"},
		{"IMG_003(1).json", "IMG_003(1)"},
		{"metadata.json", "metadata"},
	}

	for _, tt := range tests {
		s := Sidecar{Name: tt.name}
		if got := s.Base(); got != tt.want {
			t.Errorf("Base(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestNewMediaFile(t *testing.T) {
	m := NewMediaFile("/takeout/album/IMG_001.JPG")

	if m.Name != "IMG_001.JPG" {
		t.Errorf("Name = %q, want IMG_001.JPG", m.Name)
	}
	if m.Dir != "/takeout/album" {
		t.Errorf("Dir = %q, want /takeout/album", m.Dir)
	}
	if m.Ext != ".jpg" {
		t.Errorf("Ext = %q, want .jpg", m.Ext)
	}
}
