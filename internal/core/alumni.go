package core

import (
	"strconv"
	"strings"
)

// Alumnus is one entry of the alumni directory.
type Alumnus struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	BatchYear    int    `json:"batchYear"`
	Profession   string `json:"profession"`
	Organization string `json:"organization"`
	Location     string `json:"location"`
	ImageURL     string `json:"imageUrl"`
}

func (a Alumnus) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if a.BatchYear < 1900 || a.BatchYear > 3000 {
		return ErrInvalidBatchYear
	}
	return nil
}

// SearchAlumni keeps the entries matching query. Text fields match on a
// case-insensitive substring; a numeric query also matches the batch year
// exactly. A blank query keeps everything.
func SearchAlumni(list []Alumnus, query string) []Alumnus {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]Alumnus(nil), list...)
	}
	year, yerr := strconv.Atoi(q)
	out := make([]Alumnus, 0, len(list))
	for _, a := range list {
		if yerr == nil && a.BatchYear == year {
			out = append(out, a)
			continue
		}
		for _, field := range []string{a.Name, a.Profession, a.Organization, a.Location} {
			if strings.Contains(strings.ToLower(field), q) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}
