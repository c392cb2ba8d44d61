package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"schoolsite/internal/core"
)

func TestNewFromDirFallsBackToDefaultFees(t *testing.T) {
	s, err := NewFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewFromDir: %v", err)
	}
	fees, _ := s.ListFees(context.Background())
	if len(fees) != len(DefaultFees()) {
		t.Fatalf("got %d fees, want %d", len(fees), len(DefaultFees()))
	}
	for _, f := range fees {
		if f.ID == 0 || f.Version != 1 {
			t.Fatalf("seeded fee missing id or version: %+v", f)
		}
	}
}

func TestLoadSeedFromFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	write(FeesFile, `[
		{"id": 40, "className": "Class 9", "category": "Secondary", "admissionFee": "Rs. 15,000",
		 "monthlyFee": "Rs. 8,000", "otherCharges": "Rs. 5,000", "annualFee": "Rs. 5", "totalAnnual": "Rs. 5"},
		{"className": "Class 10", "monthlyFee": 9000, "isActive": false}
	]`)
	write(AlumniFile, `[{"name": "Ayesha Khan", "batchYear": 2015}]`)

	s, err := NewFromDir(dir)
	if err != nil {
		t.Fatalf("NewFromDir: %v", err)
	}
	ctx := context.Background()

	fees, _ := s.ListFees(ctx)
	if len(fees) != 2 {
		t.Fatalf("got %d fees, want 2", len(fees))
	}
	if fees[0].ID != 40 || fees[1].ID != 41 {
		t.Fatalf("unexpected ids %d, %d", fees[0].ID, fees[1].ID)
	}
	if fees[0].TotalAnnual != 0 {
		t.Fatalf("stored derived value should be dropped, got %v", fees[0].TotalAnnual)
	}
	if fees[0].WithDerived().TotalAnnual.String() != "Rs. 116,000" {
		t.Fatalf("unexpected total %v", fees[0].WithDerived().TotalAnnual)
	}
	if fees[1].IsActive {
		t.Fatal("second record should be inactive")
	}

	alumni, _ := s.ListAlumni(ctx)
	if len(alumni) != 1 || alumni[0].ID != 42 {
		t.Fatalf("unexpected alumni %+v", alumni)
	}
	gallery, _ := s.ListGallery(ctx)
	if len(gallery) != 0 {
		t.Fatalf("expected empty gallery, got %d", len(gallery))
	}
}

func TestLoadSeedRejectsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, GalleryFile), []byte(`{not json`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSeed(dir); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFeeLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New(Seed{})

	created, err := s.CreateFee(ctx, core.FeeRecord{ClassName: "Class 3", MonthlyFee: 5000, TotalAnnual: 1, IsActive: true})
	if err != nil {
		t.Fatalf("CreateFee: %v", err)
	}
	if created.ID == 0 || created.Version != 1 || created.TotalAnnual != 0 {
		t.Fatalf("unexpected created record %+v", created)
	}

	created.MonthlyFee = 5500
	updated, err := s.UpdateFee(ctx, created)
	if err != nil {
		t.Fatalf("UpdateFee: %v", err)
	}
	if updated.Version != 2 {
		t.Fatalf("version = %d, want 2", updated.Version)
	}

	got, err := s.GetFee(ctx, created.ID)
	if err != nil || got.MonthlyFee != 5500 {
		t.Fatalf("GetFee = %+v, %v", got, err)
	}

	if err := s.DeleteFee(ctx, created.ID); err != nil {
		t.Fatalf("DeleteFee: %v", err)
	}
	if _, err := s.GetFee(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("GetFee after delete = %v, want ErrNotFound", err)
	}
	if err := s.DeleteFee(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}
	if _, err := s.UpdateFee(ctx, core.FeeRecord{ID: 999, ClassName: "x"}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("update unknown = %v, want ErrNotFound", err)
	}
}

func TestCreateFeeValidates(t *testing.T) {
	s := New(Seed{})
	if _, err := s.CreateFee(context.Background(), core.FeeRecord{}); !errors.Is(err, core.ErrEmptyClassName) {
		t.Fatalf("CreateFee = %v, want ErrEmptyClassName", err)
	}
}

func TestListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New(Seed{Gallery: []core.GalleryImage{{Title: "a", ImageURL: "u", Tags: []string{"events"}}}})

	g, _ := s.ListGallery(ctx)
	g[0].Tags[0] = "changed"

	again, _ := s.ListGallery(ctx)
	if again[0].Tags[0] != "events" {
		t.Fatal("ListGallery leaked internal slice")
	}
}

func TestAlumniAndGalleryDelete(t *testing.T) {
	ctx := context.Background()
	s := New(Seed{})

	a, err := s.CreateAlumnus(ctx, core.Alumnus{Name: "Bilal", BatchYear: 2018})
	if err != nil {
		t.Fatal(err)
	}
	g, err := s.CreateGalleryImage(ctx, core.GalleryImage{Title: "Sports", ImageURL: "/s.jpg"})
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == g.ID {
		t.Fatal("ids must be unique across collections")
	}
	if err := s.DeleteAlumnus(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteGalleryImage(ctx, a.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("deleting alumnus id from gallery = %v", err)
	}
	if err := s.DeleteGalleryImage(ctx, g.ID); err != nil {
		t.Fatal(err)
	}
}
