package fraud

import (
	"hash/fnv"

	"github.com/halaleco/amanah/internal/domain"
)

// AnalyzeImages is a deterministic stand-in for computer vision. All
// sub-scores are derived from an FNV-1a hash of the product id and
// image URLs, so a given listing always scores the same. A production
// deployment would replace this with a real vision pipeline.
func AnalyzeImages(req *domain.FraudRequest) domain.ImageAnalysis {
	parts := append([]string{req.ProductID}, req.ProductImages...)
	h := hashStrings(parts...)

	suspicious := make([]string, 0, 2)

	// Quality lands in 60-100.
	quality := 60 + int(h%41)

	duplicate := h%10 == 0
	if duplicate {
		suspicious = append(suspicious, "Image appears in multiple listings")
	}

	manipulation := h%20 == 3
	if manipulation {
		suspicious = append(suspicious, "Possible image manipulation detected")
	}

	certValid := false
	if req.CertificationImage != "" {
		certValid = hashStrings(req.CertificationImage)%5 != 0
		if !certValid {
			suspicious = append(suspicious, "Certification image appears invalid or altered")
		}
	}

	return domain.ImageAnalysis{
		IsAuthentic:             !duplicate && !manipulation && quality > 70,
		DuplicateDetected:       duplicate,
		QualityScore:            quality,
		ManipulationDetected:    manipulation,
		CertificationImageValid: certValid,
		SuspiciousElements:      suspicious,
	}
}

// hashStrings folds its arguments through FNV-1a.
func hashStrings(parts ...string) uint64 {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return h.Sum64()
}
