package mail

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"inboxledger/internal/logger"
)

// GmailSource implements MailSource on the Gmail API.
type GmailSource struct {
	svc *gmailv1.Service
	log zerolog.Logger
}

// NewGmailSource initializes an OAuth-backed Gmail source using:
//   - client credentials at <configDir>/client_secret.json
//   - token cache at <configDir>/token.json
//
// The modify scope is needed to clear the UNREAD label after processing.
func NewGmailSource(ctx context.Context, configDir string) (*GmailSource, error) {
	credPath := filepath.Join(configDir, "client_secret.json")
	b, err := os.ReadFile(credPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials at %s: %w", credPath, err)
	}

	cfg, err := google.ConfigFromJSON(b,
		gmailv1.GmailReadonlyScope,
		gmailv1.GmailModifyScope,
	)
	if err != nil {
		return nil, fmt.Errorf("parse oauth config: %w", err)
	}

	tokFile := filepath.Join(configDir, "token.json")
	tok, err := readToken(tokFile)
	if err == nil {
		// Validate the cached token with a lightweight call.
		client := cfg.Client(ctx, tok)
		svc, err := gmailv1.NewService(ctx, option.WithHTTPClient(client))
		if err == nil {
			_, err = svc.Users.GetProfile("me").Do()
		}
		if err == nil {
			return &GmailSource{svc: svc, log: logger.WithComponent("gmail")}, nil
		}
		// Token is invalid/expired; remove it and fall through to re-auth.
		os.Remove(tokFile)
	}

	tok, err = getTokenFromWeb(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := saveToken(tokFile, tok); err != nil {
		return nil, err
	}

	client := cfg.Client(ctx, tok)
	svc, err := gmailv1.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &GmailSource{svc: svc, log: logger.WithComponent("gmail")}, nil
}

// NewGmailSourceWithService creates a source with an existing service
// (for testing).
func NewGmailSourceWithService(svc *gmailv1.Service) *GmailSource {
	return &GmailSource{svc: svc, log: logger.WithComponent("gmail")}
}

// ListUnread fetches every unread message received on or after since,
// with bodies and attachments. A failure to fetch one message skips that
// message; a failure to list at all is returned to the caller.
func (g *GmailSource) ListUnread(ctx context.Context, since time.Time) ([]*RawMessage, error) {
	const user = "me"

	query := fmt.Sprintf("is:unread after:%s", since.Format("2006/01/02"))
	g.log.Debug().Str("query", query).Msg("Listing unread messages")

	var ids []string
	pageToken := ""
	for {
		call := g.svc.Users.Messages.List(user).Q(query).MaxResults(500)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("list unread messages: %w", err)
		}
		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	messages := make([]*RawMessage, 0, len(ids))
	for _, id := range ids {
		msg, err := g.fetchMessage(ctx, id)
		if err != nil {
			g.log.Warn().Err(err).Str("message_id", id).Msg("Failed to fetch message, skipping")
			continue
		}
		messages = append(messages, msg)
	}

	g.log.Info().Int("count", len(messages)).Msg("Fetched unread messages")
	return messages, nil
}

func (g *GmailSource) fetchMessage(ctx context.Context, id string) (*RawMessage, error) {
	const user = "me"

	msg, err := g.svc.Users.Messages.Get(user, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}

	raw := &RawMessage{ID: msg.Id}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch strings.ToLower(h.Name) {
			case "from":
				raw.From = h.Value
			case "subject":
				raw.Subject = h.Value
			case "date":
				if t, err := parseMailDate(h.Value); err == nil {
					raw.Date = t
				}
			}
		}
		raw.PlainBody = extractPlainText(msg.Payload)
		raw.HTMLBody = extractHTML(msg.Payload)

		for _, part := range attachmentParts(msg.Payload) {
			data, err := g.downloadAttachment(ctx, id, part)
			if err != nil {
				g.log.Warn().Err(err).Str("filename", part.Filename).
					Msg("Failed to download attachment, skipping")
				continue
			}
			raw.Attachments = append(raw.Attachments, Attachment{
				Filename: part.Filename,
				MimeType: part.MimeType,
				Data:     data,
			})
		}
	}
	return raw, nil
}

func (g *GmailSource) downloadAttachment(ctx context.Context, messageID string, part *gmailv1.MessagePart) ([]byte, error) {
	if part.Body == nil {
		return nil, errors.New("attachment part has no body")
	}
	if part.Body.Data != "" {
		return decodeBase64URLBytes(part.Body.Data)
	}
	if part.Body.AttachmentId == "" {
		return nil, errors.New("attachment part has no data or attachment id")
	}

	att, err := g.svc.Users.Messages.Attachments.Get("me", messageID, part.Body.AttachmentId).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get attachment: %w", err)
	}
	return decodeBase64URLBytes(att.Data)
}

// MarkRead removes the UNREAD label.
func (g *GmailSource) MarkRead(ctx context.Context, messageID string) error {
	req := &gmailv1.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}
	if _, err := g.svc.Users.Messages.Modify("me", messageID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("mark message %s read: %w", messageID, err)
	}
	return nil
}

func parseMailDate(value string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC1123Z,
		time.RFC1123,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"2 Jan 2006 15:04:05 -0700",
	} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %q", value)
}

func readToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var tok oauth2.Token
	if err := json.NewDecoder(f).Decode(&tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		f.Close()
		return err
	}
	f.Close()
	return os.Rename(tmp, path)
}

// getTokenFromWeb runs a loopback HTTP server to capture the auth code,
// falling back to manual paste of the code or redirect URL.
func getTokenFromWeb(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	type result struct {
		code string
		err  error
	}
	resCh := make(chan result, 1)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err == nil {
		port := ln.Addr().(*net.TCPAddr).Port
		redirect := fmt.Sprintf("http://127.0.0.1:%d/", port)
		oldRedirect := cfg.RedirectURL
		cfg.RedirectURL = redirect

		mux := http.NewServeMux()
		srv := &http.Server{
			ReadHeaderTimeout: 5 * time.Second,
			Handler:           mux,
		}
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "Missing 'code' parameter", http.StatusBadRequest)
				return
			}
			fmt.Fprintln(w, "Authentication complete. You can close this window.")
			select {
			case resCh <- result{code: code}:
			default:
			}
			go func() { _ = srv.Shutdown(context.Background()) }()
		})
		go func() { _ = srv.Serve(ln) }()

		authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
		fmt.Fprintln(os.Stderr, "A browser window will open. If it does not, copy this URL:")
		fmt.Fprintln(os.Stderr, authURL)
		fmt.Fprintf(os.Stderr, "Waiting for redirect on %s ...\n", redirect)

		select {
		case <-ctx.Done():
			cfg.RedirectURL = oldRedirect
			return nil, ctx.Err()
		case r := <-resCh:
			if r.err != nil {
				return nil, r.err
			}
			tok, err := cfg.Exchange(ctx, strings.TrimSpace(r.code))
			if err != nil {
				return nil, fmt.Errorf("token exchange: %w", err)
			}
			cfg.RedirectURL = oldRedirect
			return tok, nil
		case <-time.After(120 * time.Second):
			cfg.RedirectURL = oldRedirect
			fmt.Fprintln(os.Stderr, "Timeout waiting for redirect; falling back to manual paste.")
		}
	}

	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintln(os.Stderr, "Open this URL in your browser to authorize access:")
	fmt.Fprintln(os.Stderr, authURL)
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Paste the AUTH CODE itself or the FULL redirect URL here, then press Enter.")
	fmt.Fprint(os.Stderr, "> ")

	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 0, 1024), 1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read auth code: %w", err)
		}
		return nil, errors.New("empty authorization code")
	}
	input := strings.TrimSpace(sc.Text())
	if input == "" {
		return nil, errors.New("empty authorization code")
	}

	code := input
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		u, err := url.Parse(input)
		if err != nil {
			return nil, fmt.Errorf("parse redirect URL: %w", err)
		}
		c := u.Query().Get("code")
		if c == "" {
			return nil, errors.New("no 'code' parameter found in pasted URL")
		}
		code = c
	}

	tok, err := cfg.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}
	return tok, nil
}
