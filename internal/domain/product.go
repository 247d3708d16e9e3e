package domain

// TargetGender enumerates the demographic targeting values a product can carry.
type TargetGender string

const (
	TargetAll            TargetGender = "all"
	TargetMale           TargetGender = "male"
	TargetFemale         TargetGender = "female"
	TargetMaleOriented   TargetGender = "male-oriented"
	TargetFemaleOriented TargetGender = "female-oriented"
	TargetUnisex         TargetGender = "unisex"
)

// Product is a catalog item with its demographic targeting metadata.
// Products are immutable within a single engine invocation; the catalog
// provider owns them.
type Product struct {
	ID           int          `json:"id" db:"product_id"`
	Name         string       `json:"name" db:"name"`
	Description  string       `json:"description" db:"description"`
	Category     string       `json:"category" db:"category"`
	SubCategory  string       `json:"sub_category,omitempty" db:"sub_category"`
	Price        float64      `json:"price" db:"price"`
	Rating       float64      `json:"rating" db:"rating"`
	ReviewCount  int          `json:"review_count" db:"review_count"`
	TargetGender TargetGender `json:"target_gender" db:"target_gender"`
	TargetAge    []string     `json:"target_age" db:"target_age_groups"`
	UsedIn       []string     `json:"used_in" db:"used_in"`
	Tags         []string     `json:"tags" db:"tags"`
	Stock        int          `json:"stock" db:"stock"`
	ImageURL     string       `json:"image_url,omitempty" db:"image_url"`
}

// EffectiveTargetGender resolves a missing targeting field to its documented
// default: products without an explicit target match every shopper.
func (p *Product) EffectiveTargetGender() TargetGender {
	if p.TargetGender == "" {
		return TargetAll
	}
	return p.TargetGender
}

// MatchesAgeGroup reports whether the product targets the given age bracket.
// An empty target list means no restriction.
func (p *Product) MatchesAgeGroup(ageGroup string) bool {
	if len(p.TargetAge) == 0 {
		return true
	}
	for _, a := range p.TargetAge {
		if a == ageGroup {
			return true
		}
	}
	return false
}

// MatchesGender reports whether the product targets the given gender code
// ("M", "F", or "U"). "all" and "unisex" products match everyone.
func (p *Product) MatchesGender(gender string) bool {
	switch p.EffectiveTargetGender() {
	case TargetAll, TargetUnisex:
		return true
	case TargetMale, TargetMaleOriented:
		return gender == "M"
	case TargetFemale, TargetFemaleOriented:
		return gender == "F"
	}
	return false
}
