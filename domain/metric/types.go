package metric

import (
	"fmt"
	"regexp"
	"strings"

	"wavetrack/domain/core"
)

// ============================================================================
// METRIC TYPE REGISTRY (Closed set, never extended at runtime)
// ============================================================================

// Type defines the shape of a tracked measure. Every downstream branch
// switches on this enum, never on the raw question-type string.
type Type string

const (
	TypeMean              Type = "mean"
	TypeRatingEnhanced    Type = "rating_enhanced"
	TypeComposite         Type = "composite"
	TypeCompositeEnhanced Type = "composite_enhanced"
	TypeNPS               Type = "nps"
	TypeProportions       Type = "proportions"
	TypeMultiMention      Type = "multi_mention"
	TypeCategoryMentions  Type = "category_mentions"

	// TypeNone marks question types that pass through without trending
	// (rankings, open ends).
	TypeNone Type = ""
)

// Trended reports whether this metric type participates in wave-over-wave
// trending at all.
func (t Type) Trended() bool {
	return t != TypeNone
}

// UsesMeansTest reports whether pairwise significance for this type runs the
// two-sample t-test on means. NPS scores are tested as means of the
// -100/0/+100 recode.
func (t Type) UsesMeansTest() bool {
	switch t {
	case TypeMean, TypeRatingEnhanced, TypeComposite, TypeCompositeEnhanced, TypeNPS:
		return true
	}
	return false
}

// UsesProportionTest reports whether pairwise significance runs the
// two-sample z-test for proportions.
func (t Type) UsesProportionTest() bool {
	switch t {
	case TypeProportions, TypeMultiMention, TypeCategoryMentions:
		return true
	}
	return false
}

// ============================================================================
// QUESTION TYPE NORMALIZATION
// ============================================================================

// questionTypeSynonyms folds the historically inconsistent upstream labels
// into the canonical set. Keys are pre-normalized with core.NormalizeKey.
var questionTypeSynonyms = map[string]string{
	"likert":             "rating",
	"scale":              "rating",
	"rating_scale":       "rating",
	"numeric_rating":     "rating",
	"enhanced_rating":    "rating_enhanced",
	"single_response":    "single_choice",
	"single":             "single_choice",
	"single_select":      "single_choice",
	"categorical":        "single_choice",
	"radio":              "single_choice",
	"multiple_response":  "multi_mention",
	"multi_response":     "multi_mention",
	"multi_select":       "multi_mention",
	"multiple_mention":   "multi_mention",
	"checkbox":           "multi_mention",
	"net_promoter":       "nps",
	"net_promoter_score": "nps",
	"index":              "composite",
	"enhanced_composite": "composite_enhanced",
	"category_mention":   "category_mentions",
	"coded_mentions":     "category_mentions",
	"rank":               "ranking",
	"rank_order":         "ranking",
	"open":               "open_end",
	"open_ended":         "open_end",
	"verbatim":           "open_end",
	"text":               "open_end",
}

// NormalizeQuestionType maps a free-form question-type label into the
// canonical set. Unrecognized labels are lower-cased and passed through
// unchanged so new upstream question types degrade gracefully instead of
// halting the run.
func NormalizeQuestionType(label string) string {
	key := core.NormalizeKey(label)
	if canonical, ok := questionTypeSynonyms[key]; ok {
		return canonical
	}
	return key
}

// TypeForQuestion maps a normalized question type onto its metric type.
// Unknown question types land on TypeNone and are skipped by the builder.
func TypeForQuestion(questionType string) Type {
	switch NormalizeQuestionType(questionType) {
	case "rating", "numeric", "mean":
		return TypeMean
	case "rating_enhanced":
		return TypeRatingEnhanced
	case "composite":
		return TypeComposite
	case "composite_enhanced":
		return TypeCompositeEnhanced
	case "nps":
		return TypeNPS
	case "single_choice", "proportions":
		return TypeProportions
	case "multi_mention":
		return TypeMultiMention
	case "category_mentions":
		return TypeCategoryMentions
	}
	return TypeNone
}

// ============================================================================
// METRIC SPECS
// ============================================================================

// Spec is one trackable measure derived from a question: a mean, a top-box
// share, a named category's share, a custom range share.
type Spec struct {
	Raw   string `json:"raw"`             // spec string as configured
	Label string `json:"label,omitempty"` // optional display override
	Name  string `json:"name"`            // normalized lookup key
	Type  Type   `json:"type"`            // owning metric type
}

var boxSpecPattern = regexp.MustCompile(`^(top|bottom)([0-9]+)_box$`)

// ParseSpec resolves a configured spec string against the owning question
// type. Parsing is total: unrecognized spec strings become named-score
// lookups on the question's own metric type, so a typo surfaces as an
// undefined column rather than a dead run.
func ParseSpec(raw, label, questionType string) Spec {
	base := TypeForQuestion(questionType)
	trimmed := strings.TrimSpace(raw)
	key := core.NormalizeKey(trimmed)

	spec := Spec{Raw: raw, Label: label, Name: key, Type: base}

	switch {
	case key == "mean":
		if !base.UsesMeansTest() || base == TypeNPS {
			spec.Type = TypeMean
		}
	case key == "nps":
		spec.Type = TypeNPS
	case key == "primary":
		// Top-line value of whatever shape the question has.
	case boxSpecPattern.MatchString(key):
		// Box shares are proportions regardless of the source scale.
		spec.Type = TypeProportions
	case strings.HasPrefix(trimmed, "category:"):
		spec.Name = "category_" + core.NormalizeKey(trimmed[len("category:"):])
		if base != TypeCategoryMentions {
			spec.Type = TypeProportions
		}
	case strings.HasPrefix(trimmed, "item:"):
		spec.Name = "item_" + core.NormalizeKey(trimmed[len("item:"):])
		spec.Type = TypeMultiMention
	case strings.HasPrefix(trimmed, "box:"):
		spec.Name = "box_" + core.NormalizeKey(trimmed[len("box:"):])
		spec.Type = TypeProportions
	case strings.HasPrefix(trimmed, "range:"):
		spec.Name = "range_" + core.NormalizeKey(trimmed[len("range:"):])
		spec.Type = TypeProportions
	}

	return spec
}

// DisplayLabel returns the configured label override or a readable default.
func (s Spec) DisplayLabel() string {
	if s.Label != "" {
		return s.Label
	}
	return strings.ReplaceAll(s.Name, "_", " ")
}

// String implements fmt.Stringer for log lines.
func (s Spec) String() string {
	return fmt.Sprintf("%s(%s)", s.Name, s.Type)
}
