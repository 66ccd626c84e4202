package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPlaceBindings(t *testing.T) {
	got := placeBindings("ChIJabc=2B N1 A - 29 Shoreditch Heights, ChIJdef=1B E1 B - 15 Hackney Road")
	if len(got) != 2 {
		t.Fatalf("want 2 bindings, got %d", len(got))
	}
	if got[0].PlaceID != "ChIJabc" || got[0].ListingName != "2B N1 A - 29 Shoreditch Heights" {
		t.Fatalf("unexpected first binding: %+v", got[0])
	}
	if got[1].PlaceID != "ChIJdef" {
		t.Fatalf("unexpected second binding: %+v", got[1])
	}

	// Malformed pairs are skipped, not fatal.
	got = placeBindings("no-equals-sign,ChIJx=Loft A")
	if len(got) != 1 || got[0].PlaceID != "ChIJx" {
		t.Fatalf("unexpected bindings: %+v", got)
	}
	if got := placeBindings(""); got != nil {
		t.Fatalf("empty input should yield nil, got %+v", got)
	}
}

func TestLoadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	payload := `{"status":"success","result":[{"id":7453,"type":"host-to-guest","status":"published","rating":10,"publicReview":"great","reviewCategory":[],"submittedAt":"2020-08-21 22:45:14","guestName":"Shane","listingName":"2B N1 A - 29 Shoreditch Heights"}],"incidents":[]}`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatal(err)
	}

	resp, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if resp.Status != "success" || len(resp.Result) != 1 {
		t.Fatalf("unexpected snapshot: %+v", resp)
	}
	if resp.Result[0].ListingName != "2B N1 A - 29 Shoreditch Heights" {
		t.Fatalf("unexpected listing: %q", resp.Result[0].ListingName)
	}

	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("want error for missing snapshot file")
	}
}
