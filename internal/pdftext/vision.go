package pdftext

import (
	"context"
	"fmt"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

const (
	// maxOCRFileSizeBytes is the Vision API limit for inline synchronous requests.
	maxOCRFileSizeBytes = 20 * 1024 * 1024

	// maxOCRPagesSync is the Vision API page limit for synchronous requests.
	maxOCRPagesSync = 5
)

// OCRClient recognizes text in a scanned PDF.
type OCRClient interface {
	Recognize(ctx context.Context, pdfData []byte) (string, error)
}

// VisionOCR implements OCRClient using the Google Cloud Vision API.
type VisionOCR struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionOCR creates an OCR client with credentials from the environment.
// It expects either GOOGLE_APPLICATION_CREDENTIALS path or GOOGLE_CREDENTIALS JSON in env.
func NewVisionOCR(ctx context.Context) (*VisionOCR, error) {
	const op = "NewVisionOCR"

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &VisionOCR{client: client}, nil
}

// Recognize runs DOCUMENT_TEXT_DETECTION over the PDF and concatenates
// the per-page text, with page separators.
func (v *VisionOCR) Recognize(ctx context.Context, pdfData []byte) (string, error) {
	const op = "Recognize"

	if len(pdfData) > maxOCRFileSizeBytes {
		return "", WrapError(op, ErrPDFTooLarge, fmt.Sprintf("file size: %d bytes", len(pdfData)))
	}

	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  pdfData,
					MimeType: "application/pdf",
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateFiles(ctx, req)
	if err != nil {
		return "", WrapError(op, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return "", WrapError(op, ErrOCRFailed, "no response from Vision API")
	}

	fileResp := resp.Responses[0]
	if fileResp.Error != nil {
		return "", WrapError(op, ErrOCRFailed, fmt.Sprintf("Vision API error: %s", fileResp.Error.Message))
	}
	if len(fileResp.Responses) == 0 {
		return "", WrapError(op, ErrNoText, "empty file response")
	}
	if len(fileResp.Responses) > maxOCRPagesSync {
		return "", WrapError(op, ErrTooManyPages, fmt.Sprintf("document has %d pages", len(fileResp.Responses)))
	}

	var allText strings.Builder
	for pageIdx, page := range fileResp.Responses {
		if page.Error != nil {
			return "", WrapError(op, ErrOCRFailed, fmt.Sprintf("error processing page %d: %s", pageIdx+1, page.Error.Message))
		}
		if page.FullTextAnnotation == nil {
			continue
		}
		if pageIdx > 0 {
			fmt.Fprintf(&allText, "\n\n--- Page %d ---\n\n", pageIdx+1)
		}
		allText.WriteString(page.FullTextAnnotation.Text)
	}

	if strings.TrimSpace(allText.String()) == "" {
		return "", WrapError(op, ErrNoText, "Vision API returned no text")
	}
	return allText.String(), nil
}

// Close releases the underlying API client.
func (v *VisionOCR) Close() error {
	return v.client.Close()
}
