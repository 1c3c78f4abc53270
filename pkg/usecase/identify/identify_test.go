package identify_test

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/medscan/pkg/model"
	"github.com/m-mizutani/medscan/pkg/usecase/identify"
	"google.golang.org/genai"
)

type geminiMock struct {
	resp *genai.GenerateContentResponse
	err  error

	contents []*genai.Content
}

func (m *geminiMock) GenerateContent(_ context.Context, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.contents = contents
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

func testImage() string {
	return base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8, 0xFF, 0xE0})
}

func TestIdentifyParsesRecord(t *testing.T) {
	mock := &geminiMock{resp: textResponse(`{"medicineName":"Aspirin","genericName":"Acetylsalicylic acid","dosage":"500mg","manufacturer":"Bayer","uses":"Pain relief","sideEffects":"Stomach upset","precautions":"Avoid on empty stomach","confidence":"high"}`)}
	uc := identify.New(mock)

	record, err := uc.Identify(context.Background(), testImage())
	gt.NoError(t, err)
	gt.Equal(t, record.MedicineName, "Aspirin")
	gt.Equal(t, record.Dosage, "500mg")
	gt.Equal(t, record.Confidence, model.ConfidenceHigh)
	gt.Equal(t, record.CapturedAt, int64(0))
}

func TestIdentifyStripsMarkdownFences(t *testing.T) {
	mock := &geminiMock{resp: textResponse("```json\n{\"medicineName\":\"Aspirin\",\"confidence\":\"high\"}\n```")}
	uc := identify.New(mock)

	record, err := uc.Identify(context.Background(), testImage())
	gt.NoError(t, err)
	gt.Equal(t, record.MedicineName, "Aspirin")
}

func TestIdentifyStripsDataURIPrefix(t *testing.T) {
	mock := &geminiMock{resp: textResponse(`{"medicineName":"Unknown","confidence":"low"}`)}
	uc := identify.New(mock)

	_, err := uc.Identify(context.Background(), "data:image/png;base64,"+testImage())
	gt.NoError(t, err)

	gt.A(t, mock.contents).Length(1)
	parts := mock.contents[0].Parts
	gt.A(t, parts).Length(2)
	gt.A(t, parts[1].InlineData.Data).Length(4)
	gt.Equal(t, parts[1].InlineData.MIMEType, "image/jpeg")
}

func TestIdentifyDegradesOnUnparsableReply(t *testing.T) {
	mock := &geminiMock{resp: textResponse("I am sorry, I cannot identify this pill.")}
	uc := identify.New(mock)

	record, err := uc.Identify(context.Background(), testImage())
	gt.NoError(t, err)
	gt.Equal(t, record.MedicineName, "Parsing Error")
	gt.Equal(t, record.Confidence, model.ConfidenceLow)
	gt.S(t, record.Uses).Contains("Could not parse AI response.")
	gt.S(t, record.Uses).Contains("cannot identify this pill")
}

func TestIdentifyUpstreamFailure(t *testing.T) {
	mock := &geminiMock{err: goerr.New("503 service unavailable")}
	uc := identify.New(mock)

	_, err := uc.Identify(context.Background(), testImage())
	gt.Error(t, err)
	gt.Equal(t, goerr.HasTag(err, model.TagUpstreamTransport), true)
}

func TestIdentifyEmptyCandidates(t *testing.T) {
	mock := &geminiMock{resp: &genai.GenerateContentResponse{}}
	uc := identify.New(mock)

	_, err := uc.Identify(context.Background(), testImage())
	gt.Error(t, err)
	gt.Equal(t, goerr.HasTag(err, model.TagUpstreamShape), true)
}
