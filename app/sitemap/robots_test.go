package sitemap

import (
	"testing"

	"github.com/spf13/afero"
)

func TestRobotsRegisterCreatesFile(t *testing.T) {
	fs := afero.NewMemMapFs()

	added, err := NewRobots(fs).Register([]string{"http://a/s.xml", "http://b/s.xml"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if added != 2 {
		t.Errorf("Expected 2 lines added, got %d", added)
	}

	data, _ := afero.ReadFile(fs, RobotsFilename)
	if string(data) != "Sitemap: http://a/s.xml\nSitemap: http://b/s.xml\n" {
		t.Errorf("Unexpected robots content %q", data)
	}
}

func TestRobotsRegisterDoesNotDuplicate(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, RobotsFilename, []byte("User-agent: *\nSitemap: http://a/s.xml"), 0644); err != nil {
		t.Fatal(err)
	}
	robots := NewRobots(fs)

	added, err := robots.Register([]string{"http://a/s.xml"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if added != 0 {
		t.Errorf("Expected no lines added, got %d", added)
	}

	added, err = robots.Register([]string{"http://a/s.xml", "http://a/t.xml"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if added != 1 {
		t.Errorf("Expected 1 line added, got %d", added)
	}

	data, _ := afero.ReadFile(fs, RobotsFilename)
	expected := "User-agent: *\nSitemap: http://a/s.xml\nSitemap: http://a/t.xml\n"
	if string(data) != expected {
		t.Errorf("Expected %q, got %q", expected, data)
	}
}
