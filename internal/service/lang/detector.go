package lang

import (
	"github.com/abadojack/whatlanggo"

	dsvc "NewsSignal/internal/domain/service"
)

// Unknown is reported when the text is too short or ambiguous to classify.
const Unknown = "und"

// Detector tags headlines with an ISO 639-3 code using trigram statistics.
type Detector struct {
	minConfidence float64
}

func NewDetector(minConfidence float64) *Detector {
	return &Detector{minConfidence: minConfidence}
}

func (d *Detector) Detect(text string) string {
	if text == "" {
		return Unknown
	}
	info := whatlanggo.Detect(text)
	if info.Lang == -1 || info.Confidence < d.minConfidence {
		return Unknown
	}
	return info.Lang.Iso6393()
}

var _ dsvc.LanguageDetector = (*Detector)(nil)
