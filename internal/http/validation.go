package http

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"schoolsite/internal/core"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// feeInput is the editable part of a fee record. The derived amounts are
// not accepted from clients.
type feeInput struct {
	ClassName    string      `json:"className" validate:"required,max=100"`
	Category     string      `json:"category" validate:"max=50"`
	AdmissionFee core.Amount `json:"admissionFee"`
	MonthlyFee   core.Amount `json:"monthlyFee"`
	OtherCharges core.Amount `json:"otherCharges"`
	Description  string      `json:"description" validate:"max=1000"`
	IsActive     bool        `json:"isActive"`
}

func bindFee(p *RequestBodyParser) (feeInput, error) {
	in := feeInput{
		ClassName:    p.Get("className"),
		Category:     p.Get("category"),
		AdmissionFee: p.GetAmount("admissionFee"),
		MonthlyFee:   p.GetAmount("monthlyFee"),
		OtherCharges: p.GetAmount("otherCharges"),
		Description:  p.Get("description"),
		IsActive:     true,
	}
	if p.Has("isActive") {
		active, err := parseBool(p.Get("isActive"))
		if err != nil {
			return feeInput{}, fieldError{"isActive", "boolean"}
		}
		in.IsActive = active
	}
	return in, validate.Struct(in)
}

func (in feeInput) record(id int64) core.FeeRecord {
	return core.FeeRecord{
		ID:           id,
		ClassName:    in.ClassName,
		Category:     in.Category,
		AdmissionFee: in.AdmissionFee,
		MonthlyFee:   in.MonthlyFee,
		OtherCharges: in.OtherCharges,
		Description:  in.Description,
		IsActive:     in.IsActive,
	}
}

type alumnusInput struct {
	Name         string `json:"name" validate:"required,max=200"`
	BatchYear    int    `json:"batchYear" validate:"gte=1900,lte=3000"`
	Profession   string `json:"profession" validate:"max=200"`
	Organization string `json:"organization" validate:"max=200"`
	Location     string `json:"location" validate:"max=200"`
	ImageURL     string `json:"imageUrl" validate:"omitempty,uri,max=2048"`
}

func bindAlumnus(p *RequestBodyParser) (core.Alumnus, error) {
	in := alumnusInput{
		Name:         p.Get("name"),
		BatchYear:    atoi(p.Get("batchYear")),
		Profession:   p.Get("profession"),
		Organization: p.Get("organization"),
		Location:     p.Get("location"),
		ImageURL:     p.Get("imageUrl"),
	}
	if err := validate.Struct(in); err != nil {
		return core.Alumnus{}, err
	}
	return core.Alumnus{
		Name:         in.Name,
		BatchYear:    in.BatchYear,
		Profession:   in.Profession,
		Organization: in.Organization,
		Location:     in.Location,
		ImageURL:     in.ImageURL,
	}, nil
}

type galleryInput struct {
	Title    string   `json:"title" validate:"required,max=200"`
	ImageURL string   `json:"imageUrl" validate:"required,uri,max=2048"`
	Tags     []string `json:"tags" validate:"max=20,dive,max=50"`
}

func bindGalleryImage(p *RequestBodyParser) (core.GalleryImage, error) {
	in := galleryInput{
		Title:    p.Get("title"),
		ImageURL: p.Get("imageUrl"),
		Tags:     p.GetList("tags"),
	}
	if err := validate.Struct(in); err != nil {
		return core.GalleryImage{}, err
	}
	return core.GalleryImage{Title: in.Title, ImageURL: in.ImageURL, Tags: in.Tags}, nil
}

// fieldError is a single failed field found outside the validator.
type fieldError struct {
	field, rule string
}

func (e fieldError) Error() string { return e.field + ": " + e.rule }

// validationFields flattens err into field -> rule, or returns nil when err
// is not a validation failure.
func validationFields(err error) map[string]string {
	var fe fieldError
	if errors.As(err, &fe) {
		return map[string]string{fe.field: fe.rule}
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make(map[string]string, len(ve))
	for _, e := range ve {
		out[e.Field()] = e.Tag()
	}
	return out
}

// atoi returns 0 for anything that is not a plain integer.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
