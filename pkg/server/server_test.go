package server_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/medscan/pkg/adapter"
	"github.com/m-mizutani/medscan/pkg/model"
	"github.com/m-mizutani/medscan/pkg/server"
	"google.golang.org/genai"
)

type geminiMock struct {
	resp *genai.GenerateContentResponse
	err  error
}

func (m *geminiMock) GenerateContent(_ context.Context, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return m.resp, m.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{{Text: text}},
				},
			},
		},
	}
}

func newTestServer(mock adapter.Gemini) *server.Server {
	return server.New(
		server.WithAPIKeyLookup(func() string { return "test-api-key" }),
		server.WithGeminiFactory(func(_ context.Context, _ string) (adapter.Gemini, error) {
			return mock, nil
		}),
	)
}

func post(t *testing.T, s *server.Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/identify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func imageBody(t *testing.T) string {
	t.Helper()
	data := base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8, 0xFF, 0xE0})
	body, err := json.Marshal(map[string]string{"imageBase64": "data:image/jpeg;base64," + data})
	gt.NoError(t, err)
	return string(body)
}

func TestIdentifyMissingImage(t *testing.T) {
	rec := post(t, newTestServer(&geminiMock{}), `{}`)

	gt.Equal(t, rec.Code, http.StatusBadRequest)

	var body map[string]string
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	gt.Equal(t, body["error"], "No image provided")
}

func TestIdentifyMissingAPIKey(t *testing.T) {
	s := server.New(server.WithAPIKeyLookup(func() string { return "" }))

	rec := post(t, s, imageBody(t))
	gt.Equal(t, rec.Code, http.StatusInternalServerError)

	var body map[string]string
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	gt.Equal(t, body["error"], "Server configuration error: API key missing")
	gt.S(t, rec.Body.String()).NotContains("GEMINI_API_KEY")
}

func TestIdentifySuccess(t *testing.T) {
	mock := &geminiMock{resp: textResponse("```json\n{\"medicineName\":\"Aspirin\",\"genericName\":\"Acetylsalicylic acid\",\"dosage\":\"500mg\",\"uses\":\"Pain relief\",\"sideEffects\":\"Nausea\",\"precautions\":\"None\",\"confidence\":\"high\"}\n```")}

	rec := post(t, newTestServer(mock), imageBody(t))
	gt.Equal(t, rec.Code, http.StatusOK)

	var record model.MedicineRecord
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	gt.Equal(t, record.MedicineName, "Aspirin")
	gt.Equal(t, record.Confidence, model.ConfidenceHigh)
	gt.Equal(t, record.CapturedAt, int64(0))
}

func TestIdentifyDegradedRecordStillOK(t *testing.T) {
	mock := &geminiMock{resp: textResponse("This looks like some kind of white pill.")}

	rec := post(t, newTestServer(mock), imageBody(t))
	gt.Equal(t, rec.Code, http.StatusOK)

	var record model.MedicineRecord
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	gt.Equal(t, record.MedicineName, "Parsing Error")
	gt.Equal(t, record.Confidence, model.ConfidenceLow)
}

func TestIdentifyUpstreamFailure(t *testing.T) {
	mock := &geminiMock{err: context.DeadlineExceeded}

	rec := post(t, newTestServer(mock), imageBody(t))
	gt.Equal(t, rec.Code, http.StatusInternalServerError)

	var body map[string]string
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	gt.Equal(t, body["details"], "Check server logs")
	gt.S(t, body["error"]).Contains("gemini call failed")
}

func TestIdentifyUpstreamShapeFailure(t *testing.T) {
	mock := &geminiMock{resp: &genai.GenerateContentResponse{}}

	rec := post(t, newTestServer(mock), imageBody(t))
	gt.Equal(t, rec.Code, http.StatusInternalServerError)
}

func TestOptionsPreflight(t *testing.T) {
	s := newTestServer(&geminiMock{})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/identify", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	gt.Equal(t, rec.Code, http.StatusNoContent)
	gt.Equal(t, rec.Header().Get("Access-Control-Allow-Origin"), "*")
	gt.S(t, rec.Header().Get("Access-Control-Allow-Headers")).Contains("authorization")
	gt.Equal(t, rec.Body.Len(), 0)
}

func TestCORSHeadersOnErrors(t *testing.T) {
	rec := post(t, newTestServer(&geminiMock{}), `{}`)
	gt.Equal(t, rec.Header().Get("Access-Control-Allow-Origin"), "*")
}
