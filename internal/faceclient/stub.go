package faceclient

import (
	"context"
	"crypto/sha256"
)

// stubConfidence mirrors the fixed score the demo face service reports.
const stubConfidence = 92.5

// Stub simulates the oracle for environments without a face service. It
// matches the first candidate that has an enrolled encoding, which makes
// repeated calls against a session walk through the not-yet-marked
// roster the way the demo flow expects.
type Stub struct{}

// Identify returns the first enrolled candidate with a fixed confidence.
func (s *Stub) Identify(_ context.Context, _ []byte, candidates []Candidate) (*Match, error) {
	for _, c := range candidates {
		if len(c.Encoding) > 0 {
			return &Match{StudentID: c.StudentID, Confidence: stubConfidence}, nil
		}
	}
	return nil, nil
}

// Encode derives a stable opaque encoding from the image so enrollment
// followed by identification behaves consistently in simulation.
func (s *Stub) Encode(_ context.Context, image []byte) ([]byte, error) {
	if len(image) == 0 {
		return nil, nil
	}
	sum := sha256.Sum256(image)
	return sum[:], nil
}
