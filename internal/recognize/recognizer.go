// Package recognize reads the burned-in caption banner off NDBC buoycam
// images, e.g. "Station ID: 41009 11/18/2025 1610 UTC".
package recognize

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// bannerRe matches the caption line as rendered by NDBC.
var bannerRe = regexp.MustCompile(`Station\s*ID:\s*(\w+)\s+(\d{2}/\d{2}/\d{4}\s+\d{4})\s+UTC`)

// bannerTimeLayout is the clock format inside the banner, always UTC.
const bannerTimeLayout = "01/02/2006 1504"

// Banner is the extracted caption content.
type Banner struct {
	Station    string
	Time       string // verbatim, e.g. "11/18/2025 1610"
	CapturedAt time.Time
}

// ParseBanner extracts the station and timestamp from transcribed caption
// text. Returns ok=false when no banner line is found or the timestamp does
// not parse.
func ParseBanner(text string) (Banner, bool) {
	m := bannerRe.FindStringSubmatch(text)
	if m == nil {
		return Banner{}, false
	}
	// The banner text is kept verbatim; only the parse normalizes runs of
	// whitespace.
	capturedAt, err := time.Parse(bannerTimeLayout, strings.Join(strings.Fields(m[2]), " "))
	if err != nil {
		return Banner{}, false
	}
	return Banner{
		Station:    m[1],
		Time:       m[2],
		CapturedAt: capturedAt.UTC(),
	}, true
}

// Recognizer transcribes buoycam captions with a vision model.
type Recognizer struct {
	client openai.Client
	model  string
}

// NewRecognizer reads OPENAI_API_KEY for authentication. The collector runs
// without recognition when the key is absent; banner times then fall back to
// download timestamps.
func NewRecognizer() (*Recognizer, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &Recognizer{
		client: client,
		model:  openai.ChatModelGPT4oMini,
	}, nil
}

const transcribePrompt = "Transcribe the white caption text at the bottom of this buoy camera image exactly as written. Reply with the caption line only."

// ReadBanner transcribes the caption from a JPEG and parses it.
func (r *Recognizer) ReadBanner(ctx context.Context, image []byte) (Banner, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: r.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(transcribePrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL,
				}),
			}),
		},
	})
	if err != nil {
		return Banner{}, fmt.Errorf("transcribe banner: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Banner{}, errors.New("no transcription returned")
	}

	banner, ok := ParseBanner(resp.Choices[0].Message.Content)
	if !ok {
		return Banner{}, fmt.Errorf("no banner found in transcription %q", resp.Choices[0].Message.Content)
	}
	return banner, nil
}
