package receipts

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

type textDetector interface {
	DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

// RekognitionRecognizer extracts printed text from receipt photos with AWS Rekognition
type RekognitionRecognizer struct {
	client textDetector
}

// NewRekognitionRecognizer loads the default AWS credential chain for region
func NewRekognitionRecognizer(ctx context.Context, region string) (*RekognitionRecognizer, error) {
	if region == "" {
		return nil, fmt.Errorf("AWS region is required for receipt recognition")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return &RekognitionRecognizer{client: rekognition.NewFromConfig(cfg)}, nil
}

// Recognize returns the detected lines of text, top to bottom
func (r *RekognitionRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	out, err := r.client.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: image},
	})
	if err != nil {
		return "", err
	}

	var lines []string
	for _, d := range out.TextDetections {
		if d.Type != types.TextTypesLine || d.DetectedText == nil {
			continue
		}
		lines = append(lines, *d.DetectedText)
	}
	return strings.Join(lines, "\n"), nil
}
