package identify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/medscan/pkg/adapter"
	"github.com/m-mizutani/medscan/pkg/model"
	"github.com/m-mizutani/medscan/pkg/utils/logging"
	"google.golang.org/genai"
)

// identifyPrompt is a fixed contract string. The field enumeration, the
// confidence values and the sentinel values must stay exactly as written for
// compatibility with the downstream parser.
const identifyPrompt = `You are an expert pharmaceutical AI assistant. Analyze the provided medicine/pill image and return a JSON object with the following fields:
- medicineName: Name of the medicine (if identified) or "Unknown"
- genericName: Generic/chemical name or "Unknown"
- dosage: Strength/dosage capability (e.g., 500mg) or "N/A"
- manufacturer: Manufacturer name or "N/A"
- uses: Primary medical uses (brief summary)
- sideEffects: Common side effects (brief summary)
- precautions: Important precautions (brief summary)
- confidence: "high", "medium", or "low" based on how clear the identification is.

If you cannot identify the medicine clearly, set confidence to "low" and fill fields with "Unknown". Do NOT return markdown code blocks, just the raw JSON.`

var dataURIPrefix = regexp.MustCompile(`^data:image/(png|jpeg|jpg|webp);base64,`)

// UseCase runs the identification pipeline against the external model
type UseCase struct {
	gemini adapter.Gemini
}

// New creates a new identify UseCase instance
func New(gemini adapter.Gemini) *UseCase {
	return &UseCase{gemini: gemini}
}

// Identify sends the encoded image to Gemini with the identification prompt
// and normalizes the reply into a MedicineRecord. A reply that cannot be
// parsed as JSON is returned as a degraded record rather than an error, so
// the caller always has something displayable.
func (u *UseCase) Identify(ctx context.Context, imageBase64 string) (*model.MedicineRecord, error) {
	raw := dataURIPrefix.ReplaceAllString(imageBase64, "")

	imgBytes, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode image payload")
	}

	logging.From(ctx).Debug("calling gemini", "payload_size", len(imgBytes))

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(identifyPrompt),
			genai.NewPartFromBytes(imgBytes, "image/jpeg"),
		}, genai.RoleUser),
	}

	resp, err := u.gemini.GenerateContent(ctx, contents, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "gemini call failed", goerr.T(model.TagUpstreamTransport))
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, goerr.New("no candidates returned from gemini", goerr.T(model.TagUpstreamShape))
	}

	text := resp.Candidates[0].Content.Parts[0].Text

	// The prompt forbids markdown fences, but the model adds them anyway
	// often enough that they are stripped unconditionally.
	cleaned := strings.TrimSpace(strings.NewReplacer("```json", "", "```", "").Replace(text))

	var record model.MedicineRecord
	if err := json.Unmarshal([]byte(cleaned), &record); err != nil {
		logging.From(ctx).Warn("failed to parse model reply, returning degraded record",
			"error", err, "reply", text)
		return &model.MedicineRecord{
			MedicineName: "Parsing Error",
			Confidence:   model.ConfidenceLow,
			Uses:         "Could not parse AI response. " + text,
		}, nil
	}

	return &record, nil
}
