package matcher

import (
	"context"
	"errors"
	"fmt"
)

// Oracle is the external vision model boundary: one prompt plus a reference
// image and ordered group images in, free-form text out. Defined here so the
// matching pipeline can be tested without real network calls.
type Oracle interface {
	Name() string
	MatchPerson(ctx context.Context, reference []byte, group [][]byte) (string, error)
}

// Result holds the outcome of a single match submission.
type Result struct {
	// Matches is the normalized match index set: 1-based positions of the
	// group photos judged to contain the reference person.
	Matches []int `json:"matches"`
	// GroupCount is the number of group photos submitted.
	GroupCount int `json:"group_count"`
	// RawResponse is the unmodified model output, kept for debugging.
	RawResponse string `json:"raw_response,omitempty"`
	// Provider is the oracle that produced the result.
	Provider string `json:"provider"`
}

// Service runs the match pipeline: one oracle call followed by
// parse-and-normalize of the returned text.
type Service struct {
	oracle Oracle
}

// NewService creates a matching service backed by the given oracle.
func NewService(oracle Oracle) *Service {
	return &Service{oracle: oracle}
}

// Match submits the reference photo and group photos to the oracle and
// normalizes its answer. Oracle transport failures are returned to the
// caller; anything wrong with the model's text degrades to an empty set.
func (s *Service) Match(ctx context.Context, reference []byte, group [][]byte) (*Result, error) {
	if len(reference) == 0 {
		return nil, errors.New("reference image is empty")
	}
	if len(group) == 0 {
		return nil, errors.New("no group images provided")
	}

	raw, err := s.oracle.MatchPerson(ctx, reference, group)
	if err != nil {
		return nil, fmt.Errorf("oracle request failed: %w", err)
	}

	return &Result{
		Matches:     ParseMatches(raw, len(group)),
		GroupCount:  len(group),
		RawResponse: raw,
		Provider:    s.oracle.Name(),
	}, nil
}
