package mail

import (
	"encoding/base64"
	"strings"

	gmailv1 "google.golang.org/api/gmail/v1"
)

// extractPlainText recursively walks a MIME part tree and returns the
// first text/plain body found. For multipart/alternative it prefers
// text/plain over text/html.
func extractPlainText(part *gmailv1.MessagePart) string {
	if part == nil {
		return ""
	}

	if strings.ToLower(part.MimeType) == "text/plain" && part.Body != nil && part.Body.Data != "" {
		return decodeBase64URL(part.Body.Data)
	}

	if len(part.Parts) > 0 {
		for _, sub := range part.Parts {
			if strings.ToLower(sub.MimeType) == "text/plain" {
				if body := extractPlainText(sub); body != "" {
					return body
				}
			}
		}
		for _, sub := range part.Parts {
			if body := extractPlainText(sub); body != "" {
				return body
			}
		}
	}
	return ""
}

// extractHTML recursively walks a MIME part tree and returns the first
// text/html body found.
func extractHTML(part *gmailv1.MessagePart) string {
	if part == nil {
		return ""
	}

	if strings.ToLower(part.MimeType) == "text/html" && part.Body != nil && part.Body.Data != "" {
		return decodeBase64URL(part.Body.Data)
	}

	for _, sub := range part.Parts {
		if body := extractHTML(sub); body != "" {
			return body
		}
	}
	return ""
}

// attachmentParts collects every part carrying a filename, across the
// whole MIME tree.
func attachmentParts(part *gmailv1.MessagePart) []*gmailv1.MessagePart {
	if part == nil {
		return nil
	}
	var parts []*gmailv1.MessagePart
	if part.Filename != "" {
		parts = append(parts, part)
	}
	for _, sub := range part.Parts {
		parts = append(parts, attachmentParts(sub)...)
	}
	return parts
}

func decodeBase64URL(data string) string {
	b, err := decodeBase64URLBytes(data)
	if err != nil {
		return ""
	}
	return string(b)
}

func decodeBase64URLBytes(data string) ([]byte, error) {
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return b, nil
	}
	return base64.RawURLEncoding.DecodeString(data)
}
