package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/BlurryBat/photo-matcher/internal/config"
	"github.com/BlurryBat/photo-matcher/internal/matcher"
)

// fakeOracle implements matcher.Oracle with a canned response.
type fakeOracle struct {
	response string
	err      error
	calls    int
}

func (f *fakeOracle) Name() string {
	return "fake-model"
}

func (f *fakeOracle) MatchPerson(ctx context.Context, reference []byte, group [][]byte) (string, error) {
	f.calls++
	return f.response, f.err
}

// fakeFactory records the provider/token the handler resolved.
type fakeFactory struct {
	oracle      *fakeOracle
	err         error
	gotProvider string
	gotToken    string
}

func (f *fakeFactory) build(ctx context.Context, provider, token string, cfg *config.Config) (matcher.Oracle, error) {
	f.gotProvider = provider
	f.gotToken = token
	if f.err != nil {
		return nil, f.err
	}
	return f.oracle, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.AI.Provider = "openai"
	return cfg
}

// matchRequest builds a multipart match submission. A nil reference or empty
// photos list omits that part entirely.
func matchRequest(t *testing.T, reference []byte, photos [][]byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write field %s: %v", key, err)
		}
	}

	if reference != nil {
		part, err := writer.CreateFormFile("reference", "reference.jpg")
		if err != nil {
			t.Fatalf("failed to create reference part: %v", err)
		}
		part.Write(reference)
	}

	for _, photo := range photos {
		part, err := writer.CreateFormFile("photos", "photo.jpg")
		if err != nil {
			t.Fatalf("failed to create photo part: %v", err)
		}
		part.Write(photo)
	}

	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/match", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func groupPhotos(n int) [][]byte {
	photos := make([][]byte, n)
	for i := range photos {
		photos[i] = []byte{0xFF, 0xD8, byte(i)}
	}
	return photos
}

func parseMatchResponse(t *testing.T, recorder *httptest.ResponseRecorder) MatchResponse {
	t.Helper()
	var resp MatchResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v\nBody: %s", err, recorder.Body.String())
	}
	return resp
}

func TestMatch_Success(t *testing.T) {
	factory := &fakeFactory{oracle: &fakeOracle{response: "Here you go: [2, 1, 2]"}}
	handler := NewMatchHandler(testConfig(), factory.build)

	req := matchRequest(t, []byte{0xFF, 0xD8}, groupPhotos(3), nil)
	recorder := httptest.NewRecorder()

	handler.Match(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	resp := parseMatchResponse(t, recorder)

	if !reflect.DeepEqual(resp.Matches, []int{1, 2}) {
		t.Errorf("expected matches [1 2], got %v", resp.Matches)
	}

	if resp.GroupCount != 3 {
		t.Errorf("expected group count 3, got %d", resp.GroupCount)
	}

	if resp.Provider != "fake-model" {
		t.Errorf("expected provider 'fake-model', got '%s'", resp.Provider)
	}

	if resp.Warning != "" {
		t.Errorf("expected no warning, got '%s'", resp.Warning)
	}

	if resp.Submission == "" {
		t.Error("expected a submission id")
	}
}

func TestMatch_MissingReference(t *testing.T) {
	factory := &fakeFactory{oracle: &fakeOracle{response: "[1]"}}
	handler := NewMatchHandler(testConfig(), factory.build)

	req := matchRequest(t, nil, groupPhotos(2), nil)
	recorder := httptest.NewRecorder()

	handler.Match(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", recorder.Code)
	}

	if factory.oracle.calls != 0 {
		t.Error("oracle must not be called when the reference is missing")
	}
}

func TestMatch_MissingPhotos(t *testing.T) {
	factory := &fakeFactory{oracle: &fakeOracle{response: "[1]"}}
	handler := NewMatchHandler(testConfig(), factory.build)

	req := matchRequest(t, []byte{0xFF, 0xD8}, nil, nil)
	recorder := httptest.NewRecorder()

	handler.Match(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", recorder.Code)
	}

	if factory.oracle.calls != 0 {
		t.Error("oracle must not be called when group photos are missing")
	}
}

func TestMatch_MissingCredential(t *testing.T) {
	factory := &fakeFactory{err: errors.New("no OpenAI token provided")}
	handler := NewMatchHandler(testConfig(), factory.build)

	req := matchRequest(t, []byte{0xFF, 0xD8}, groupPhotos(1), nil)
	recorder := httptest.NewRecorder()

	handler.Match(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", recorder.Code)
	}
}

func TestMatch_OracleFailureDegradesToEmpty(t *testing.T) {
	factory := &fakeFactory{oracle: &fakeOracle{err: errors.New("connection refused")}}
	handler := NewMatchHandler(testConfig(), factory.build)

	req := matchRequest(t, []byte{0xFF, 0xD8}, groupPhotos(2), nil)
	recorder := httptest.NewRecorder()

	handler.Match(recorder, req)

	// Transport errors are not fatal: 200 with an empty set and a warning.
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	resp := parseMatchResponse(t, recorder)

	if len(resp.Matches) != 0 {
		t.Errorf("expected empty match set, got %v", resp.Matches)
	}

	if resp.Warning == "" {
		t.Error("expected a warning for degraded result")
	}
}

func TestMatch_UnparseableModelOutput(t *testing.T) {
	factory := &fakeFactory{oracle: &fakeOracle{response: "I refuse to answer in JSON."}}
	handler := NewMatchHandler(testConfig(), factory.build)

	req := matchRequest(t, []byte{0xFF, 0xD8}, groupPhotos(2), nil)
	recorder := httptest.NewRecorder()

	handler.Match(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	resp := parseMatchResponse(t, recorder)

	if len(resp.Matches) != 0 {
		t.Errorf("expected empty match set, got %v", resp.Matches)
	}

	// Malformed output is filtered, not surfaced as an error.
	if resp.Warning != "" {
		t.Errorf("expected no warning for unparseable output, got '%s'", resp.Warning)
	}
}

func TestMatch_TokenFromForm(t *testing.T) {
	factory := &fakeFactory{oracle: &fakeOracle{response: "[]"}}
	handler := NewMatchHandler(testConfig(), factory.build)

	req := matchRequest(t, []byte{0xFF, 0xD8}, groupPhotos(1), map[string]string{
		"token":    "sk-user-supplied",
		"provider": "gemini",
	})
	recorder := httptest.NewRecorder()

	handler.Match(recorder, req)

	if factory.gotToken != "sk-user-supplied" {
		t.Errorf("expected form token to reach the factory, got '%s'", factory.gotToken)
	}

	if factory.gotProvider != "gemini" {
		t.Errorf("expected provider 'gemini', got '%s'", factory.gotProvider)
	}
}

func TestMatch_TokenFromBearerHeader(t *testing.T) {
	factory := &fakeFactory{oracle: &fakeOracle{response: "[]"}}
	handler := NewMatchHandler(testConfig(), factory.build)

	req := matchRequest(t, []byte{0xFF, 0xD8}, groupPhotos(1), nil)
	req.Header.Set("Authorization", "Bearer sk-header-token")
	recorder := httptest.NewRecorder()

	handler.Match(recorder, req)

	if factory.gotToken != "sk-header-token" {
		t.Errorf("expected bearer token to reach the factory, got '%s'", factory.gotToken)
	}
}

func TestMatch_DefaultProviderFromConfig(t *testing.T) {
	factory := &fakeFactory{oracle: &fakeOracle{response: "[]"}}
	cfg := testConfig()
	cfg.AI.Provider = "ollama"
	handler := NewMatchHandler(cfg, factory.build)

	req := matchRequest(t, []byte{0xFF, 0xD8}, groupPhotos(1), nil)
	recorder := httptest.NewRecorder()

	handler.Match(recorder, req)

	if factory.gotProvider != "ollama" {
		t.Errorf("expected default provider 'ollama', got '%s'", factory.gotProvider)
	}
}

func TestMatch_NotMultipart(t *testing.T) {
	factory := &fakeFactory{oracle: &fakeOracle{response: "[]"}}
	handler := NewMatchHandler(testConfig(), factory.build)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/match", bytes.NewReader([]byte("plain body")))
	recorder := httptest.NewRecorder()

	handler.Match(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", recorder.Code)
	}
}
