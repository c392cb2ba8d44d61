package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"schoolsite/internal/core"
)

// Seed file names looked up in the seed directory.
const (
	FeesFile    = "fees.json"
	AlumniFile  = "alumni.json"
	GalleryFile = "gallery.json"
)

// Seed is the initial content of a store.
type Seed struct {
	Fees    []core.FeeRecord
	Alumni  []core.Alumnus
	Gallery []core.GalleryImage
}

// LoadSeed reads the seed files in dir. Missing files are skipped; a file
// that exists but does not decode is an error. When no fees file exists the
// built-in fee table is used.
func LoadSeed(dir string) (Seed, error) {
	var s Seed
	if dir != "" {
		if err := readJSON(filepath.Join(dir, FeesFile), &s.Fees); err != nil {
			return Seed{}, err
		}
		if err := readJSON(filepath.Join(dir, AlumniFile), &s.Alumni); err != nil {
			return Seed{}, err
		}
		if err := readJSON(filepath.Join(dir, GalleryFile), &s.Gallery); err != nil {
			return Seed{}, err
		}
	}
	if s.Fees == nil {
		s.Fees = DefaultFees()
	}
	return s, nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// DefaultFees is the fee table shown before an administrator edits it.
func DefaultFees() []core.FeeRecord {
	row := func(class string, cat core.Category, adm, mon, oth core.Amount, desc string) core.FeeRecord {
		return core.FeeRecord{
			ClassName:    class,
			Category:     string(cat),
			AdmissionFee: adm,
			MonthlyFee:   mon,
			OtherCharges: oth,
			Description:  desc,
			IsActive:     true,
		}
	}
	return []core.FeeRecord{
		row("Playgroup", core.CategoryPreSchool, 8000, 4000, 2500, "Play based learning, half day"),
		row("Nursery", core.CategoryPreSchool, 8000, 4500, 2500, "Early literacy and numeracy"),
		row("Class 1", core.CategoryPrimary, 10000, 5500, 3000, ""),
		row("Class 5", core.CategoryPrimary, 10000, 6000, 3000, ""),
		row("Class 6", core.CategoryMiddleSchool, 12000, 7000, 4000, "Includes computer lab"),
		row("Class 8", core.CategoryMiddleSchool, 12000, 7500, 4000, "Includes computer lab"),
		row("Class 9", core.CategorySecondary, 15000, 8000, 5000, "Science and computer groups"),
		row("Class 10", core.CategorySecondary, 15000, 9000, 10000, "Board registration included in other charges"),
		row("First Year", core.CategoryHigherSecondary, 20000, 11000, 8000, "Pre-medical, pre-engineering, ICS"),
		row("Second Year", core.CategoryHigherSecondary, 20000, 12000, 12000, "Board registration included in other charges"),
	}
}
