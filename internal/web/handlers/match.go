package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/BlurryBat/photo-matcher/internal/ai"
	"github.com/BlurryBat/photo-matcher/internal/config"
	"github.com/BlurryBat/photo-matcher/internal/matcher"
)

// maxUploadSize limits a single match submission (reference + group photos).
const maxUploadSize = 100 << 20 // 100 MB

// OracleFactory builds an oracle for one submission. The token is the
// user-supplied credential and overrides any server-side configuration.
type OracleFactory func(ctx context.Context, provider, token string, cfg *config.Config) (matcher.Oracle, error)

// DefaultOracleFactory backs submissions with the configured AI providers.
func DefaultOracleFactory(ctx context.Context, provider, token string, cfg *config.Config) (matcher.Oracle, error) {
	return ai.NewProvider(ctx, provider, token, cfg)
}

// MatchHandler handles person match submissions.
type MatchHandler struct {
	config  *config.Config
	factory OracleFactory
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(cfg *config.Config, factory OracleFactory) *MatchHandler {
	return &MatchHandler{
		config:  cfg,
		factory: factory,
	}
}

// MatchResponse represents the result of one match submission.
type MatchResponse struct {
	Submission string    `json:"submission"`
	Provider   string    `json:"provider"`
	GroupCount int       `json:"group_count"`
	Matches    []int     `json:"matches"`
	Usage      *ai.Usage `json:"usage,omitempty"`
	Warning    string    `json:"warning,omitempty"`
}

// readMultipartFile reads one uploaded file fully into memory.
func readMultipartFile(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", header.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", header.Filename, err)
	}
	return data, nil
}

// bearerToken extracts a bearer credential from the Authorization header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// Match handles a match submission: one reference photo, N group photos and
// an optional credential. Missing inputs abort before any network activity;
// oracle failures degrade to an empty match set.
func (h *MatchHandler) Match(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	token := bearerToken(r)
	if token == "" {
		token = r.FormValue("token")
	}

	provider := r.FormValue("provider")
	if provider == "" {
		provider = h.config.AI.Provider
	}

	references := r.MultipartForm.File["reference"]
	if len(references) != 1 {
		respondError(w, http.StatusBadRequest, "exactly one reference photo is required")
		return
	}

	photos := r.MultipartForm.File["photos"]
	if len(photos) == 0 {
		respondError(w, http.StatusBadRequest, "at least one group photo is required")
		return
	}

	reference, err := readMultipartFile(references[0])
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	group := make([][]byte, 0, len(photos))
	for _, header := range photos {
		data, err := readMultipartFile(header)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		group = append(group, data)
	}

	oracle, err := h.factory(r.Context(), provider, token, h.config)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	submission := uuid.NewString()
	log.Printf("match %s: provider=%s group_count=%d", submission, sanitizeForLog(provider), len(group))

	response := MatchResponse{
		Submission: submission,
		Provider:   oracle.Name(),
		GroupCount: len(group),
		Matches:    []int{},
	}

	result, err := matcher.NewService(oracle).Match(r.Context(), reference, group)
	if err != nil {
		// Transport failures degrade to an empty match set; the UI goes
		// back to ready instead of surfacing a hard error.
		log.Printf("match %s: %v", submission, err)
		response.Warning = "matching service unavailable"
		respondJSON(w, http.StatusOK, response)
		return
	}

	response.Matches = result.Matches
	if tracker, ok := oracle.(interface{ GetUsage() *ai.Usage }); ok {
		response.Usage = tracker.GetUsage()
	}

	log.Printf("match %s: matched %d of %d photos", submission, len(result.Matches), result.GroupCount)
	respondJSON(w, http.StatusOK, response)
}
