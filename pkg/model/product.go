package model

import (
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidCategory = goerr.New("invalid product category")
	ErrInvalidProduct  = goerr.New("invalid detected product")
)

type Category string

const (
	CategorySmartphone Category = "smartphone"
	CategoryLaptop     Category = "laptop"
	CategorySmartwatch Category = "smartwatch"
	CategoryHeadphones Category = "headphones"
	CategoryTablet     Category = "tablet"
	CategoryCamera     Category = "camera"
	CategoryConsole    Category = "console"
	CategoryGeneric    Category = "generic_electronics"
)

// Validate checks if the category is one of the known device kinds
func (c Category) Validate() error {
	switch c {
	case CategorySmartphone, CategoryLaptop, CategorySmartwatch, CategoryHeadphones,
		CategoryTablet, CategoryCamera, CategoryConsole, CategoryGeneric:
		return nil
	default:
		return goerr.Wrap(ErrInvalidCategory, "unknown category", goerr.V("category", c))
	}
}

type Component struct {
	Name      string   `json:"name" firestore:"name"`
	Materials []string `json:"materials" firestore:"materials"`
}

// DetectedProduct is the output of image analysis. It is not modified once created.
type DetectedProduct struct {
	Category      Category    `json:"category" firestore:"category"`
	Brand         string      `json:"brand" firestore:"brand"`
	Model         string      `json:"model" firestore:"model"`
	Confidence    float64     `json:"confidence" firestore:"confidence"`
	Identifiers   []string    `json:"identifiers" firestore:"identifiers"`
	Components    []Component `json:"components" firestore:"components"`
	MaterialsUsed []string    `json:"materialsUsed" firestore:"materialsUsed"`
}

// Validate checks the product shape before it enters the research pipeline
func (p *DetectedProduct) Validate() error {
	if p == nil {
		return goerr.Wrap(ErrInvalidProduct, "product is nil")
	}
	if err := p.Category.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(p.Brand) == "" {
		return goerr.Wrap(ErrInvalidProduct, "brand is empty")
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return goerr.Wrap(ErrInvalidProduct, "confidence out of range", goerr.V("confidence", p.Confidence))
	}
	for i, c := range p.Components {
		if c.Name == "" {
			return goerr.Wrap(ErrInvalidProduct, "component name is empty", goerr.V("index", i))
		}
	}
	return nil
}

// ProductKey is the normalized cache identity of a product
type ProductKey string

var whitespaceRun = regexp.MustCompile(`\s+`)

// NewProductKey builds lowercase(brand|model|category) with whitespace runs collapsed to "_"
func NewProductKey(p *DetectedProduct) ProductKey {
	raw := strings.ToLower(p.Brand + "|" + p.Model + "|" + string(p.Category))
	return ProductKey(whitespaceRun.ReplaceAllString(raw, "_"))
}

func (k ProductKey) String() string { return string(k) }
