package filter

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-message/textproto"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/forward-filter/internal/adapters/source"
	"github.com/mikey/forward-filter/internal/config"
	"github.com/mikey/forward-filter/internal/core"
	"github.com/mikey/forward-filter/internal/domains"
)

// deliverFunc hands an annotated message on to the next hop
type deliverFunc func(sender string, recipients []string, data []byte) error

// PostfixFilter implements a Postfix content filter that annotates mail
// carrying an embedded forward or reply
type PostfixFilter struct {
	service    *core.DetectionService
	logger     *zap.Logger
	internal   *domains.Checker
	listenAddr string
	headers    config.HeadersConfig
	postfix    config.PostfixConfig
	server     *smtp.Server
	deliver    deliverFunc
}

// NewPostfixFilter creates a new Postfix content filter
func NewPostfixFilter(
	service *core.DetectionService,
	logger *zap.Logger,
	internal *domains.Checker,
	server config.ServerConfig,
) *PostfixFilter {
	f := &PostfixFilter{
		service:    service,
		logger:     logger,
		internal:   internal,
		listenAddr: server.ListenAddress,
		headers:    server.Headers,
		postfix:    server.Postfix,
	}
	f.deliver = f.sendToPostfix
	return f
}

// Start starts the Postfix filter service
func (f *PostfixFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50

	f.logger.Info("Postfix filter starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the Postfix filter service
func (f *PostfixFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessText runs detection over a plain-text body
func (f *PostfixFilter) ProcessText(ctx context.Context, text string) (*core.DetectionResult, error) {
	return f.service.Analyze(ctx, text)
}

// Annotate runs detection over a raw RFC 5322 message and returns it with
// the annotation headers prepended. Any annotation headers already present
// are removed first so a sender cannot forge them. Detection failures are
// logged and produce an unannotated "false" verdict; only a message whose
// header cannot be parsed is an error.
func (f *PostfixFilter) Annotate(ctx context.Context, raw []byte) ([]byte, *core.DetectionResult, error) {
	br := bufio.NewReader(bytes.NewReader(raw))
	header, err := textproto.ReadHeader(br)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse message header: %w", err)
	}

	result := f.detect(ctx, raw)

	for _, name := range []string{f.headers.Detected, f.headers.Detector, f.headers.From, f.headers.Date, f.headers.Internal} {
		if name != "" {
			header.Del(name)
		}
	}

	// Add prepends, so fields are added bottom-up.
	if result.Found && result.Email != nil {
		if f.internal.Enabled() && f.headers.Internal != "" {
			header.Add(f.headers.Internal, strconv.FormatBool(f.internal.IsInternal(result.Email.From.Address)))
		}
		if result.Email.Date != "" {
			header.Add(f.headers.Date, encodeWord(headerValue(result.Email.Date)))
		}
		header.Add(f.headers.From, headerValue(encodeSender(result.Email.From)))
		header.Add(f.headers.Detector, result.Detector)
	}
	header.Add(f.headers.Detected, strconv.FormatBool(result.Found))

	var out bytes.Buffer
	if err := textproto.WriteHeader(&out, header); err != nil {
		return nil, nil, fmt.Errorf("failed to write message header: %w", err)
	}
	if _, err := io.Copy(&out, br); err != nil {
		return nil, nil, fmt.Errorf("failed to copy message body: %w", err)
	}

	return out.Bytes(), result, nil
}

func (f *PostfixFilter) detect(ctx context.Context, raw []byte) *core.DetectionResult {
	msg, err := source.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		if errors.Is(err, source.ErrNoTextPart) {
			f.logger.Debug("Message has no text/plain part")
		} else {
			f.logger.Warn("Failed to extract message text", zap.Error(err))
		}
		result := core.NotFound()
		return &result
	}

	result, err := f.service.Analyze(ctx, msg.Text)
	if err != nil {
		f.logger.Error("Failed to analyze message",
			zap.Error(err),
			zap.String("message_id", msg.MessageID))
		notFound := core.NotFound()
		return &notFound
	}
	return result
}

// sendToPostfix re-injects the annotated message into Postfix
func (f *PostfixFilter) sendToPostfix(sender string, recipients []string, data []byte) error {
	addr := net.JoinHostPort(f.postfix.Address, strconv.Itoa(f.postfix.Port))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to Postfix: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		recipientOK = true
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		// already accepted
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

func formatSender(s core.Sender) string {
	switch {
	case s.Name == "":
		return s.Address
	case s.Address == "":
		return s.Name
	default:
		return fmt.Sprintf("%s <%s>", s.Name, s.Address)
	}
}

// encodeSender formats s for a header field, RFC 2047 encoding a
// non-ASCII display name
func encodeSender(s core.Sender) string {
	s.Name = encodeWord(headerValue(s.Name))
	return formatSender(s)
}

// encodeWord returns v unchanged when it is plain ASCII
func encodeWord(v string) string {
	return mime.QEncoding.Encode("utf-8", v)
}

// headerValue unfolds v onto one line with single spaces
func headerValue(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *PostfixFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// AuthPlain handles PLAIN authentication (not needed for our filter)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data annotates the message and passes it on
func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	data, result, err := s.filter.Annotate(ctx, raw)
	if err != nil {
		// pass the message through untouched rather than bounce it
		s.filter.logger.Warn("Failed to annotate message", zap.Error(err), zap.String("sender", s.sender))
		data = raw
		notFound := core.NotFound()
		result = &notFound
	}

	if !s.filter.postfix.Enabled {
		s.filter.logger.Warn("Postfix forwarding disabled, this is likely a misconfiguration")
		return nil
	}

	if err := s.filter.deliver(s.sender, s.recipients, data); err != nil {
		s.filter.logger.Error("Failed to send email back to Postfix",
			zap.Error(err),
			zap.String("sender", s.sender))
		return err
	}

	s.filter.logger.Info("Processed email",
		zap.String("sender", s.sender),
		zap.Bool("forward_detected", result.Found),
		zap.String("detector", result.Detector))

	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
