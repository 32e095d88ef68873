package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/forward-filter/internal/adapters/source"
	"github.com/mikey/forward-filter/internal/core"
	"github.com/mikey/forward-filter/internal/domains"
)

// Input formats accepted by the CLI filter
const (
	FormatText = "text"
	FormatMIME = "mime"
	FormatMbox = "mbox"
)

// CliFilter runs detection over files or stdin and reports to a writer
type CliFilter struct {
	service  *core.DetectionService
	logger   *zap.Logger
	internal *domains.Checker
	out      io.Writer
	verbose  bool
	jsonOut  bool
}

// NewCliFilter creates a new CLI filter
func NewCliFilter(
	service *core.DetectionService,
	logger *zap.Logger,
	internal *domains.Checker,
	out io.Writer,
	verbose bool,
	jsonOut bool,
) (*CliFilter, error) {
	return &CliFilter{
		service:  service,
		logger:   logger,
		internal: internal,
		out:      out,
		verbose:  verbose,
		jsonOut:  jsonOut,
	}, nil
}

// report is the JSON shape printed for each analyzed input
type report struct {
	Index      *int                  `json:"index,omitempty"`
	Subject    string                `json:"subject,omitempty"`
	MessageID  string                `json:"message_id,omitempty"`
	Internal   *bool                 `json:"internal,omitempty"`
	Error      string                `json:"error,omitempty"`
	DurationMS int64                 `json:"duration_ms"`
	Result     *core.DetectionResult `json:"result,omitempty"`
}

// ProcessText analyzes one plain-text body and prints the outcome
func (f *CliFilter) ProcessText(ctx context.Context, text string) (*core.DetectionResult, error) {
	return f.process(ctx, &source.Message{Text: text}, nil)
}

// Run reads r in the given format and analyzes every message it holds
func (f *CliFilter) Run(ctx context.Context, r io.Reader, format string) error {
	switch format {
	case FormatText, "":
		text, err := source.ReadText(r)
		if err != nil {
			return err
		}
		_, err = f.ProcessText(ctx, text)
		return err
	case FormatMIME:
		msg, err := source.ReadMessage(r)
		if err != nil {
			return err
		}
		_, err = f.process(ctx, msg, nil)
		return err
	case FormatMbox:
		return source.ReadMbox(r, func(msg *source.Message, err error) error {
			if err != nil {
				f.logger.Warn("Skipping unreadable message", zap.Error(err))
				return f.printError(err)
			}
			index := msg.Index
			_, err = f.process(ctx, msg, &index)
			return err
		})
	default:
		return fmt.Errorf("unsupported input format: %s", format)
	}
}

func (f *CliFilter) process(ctx context.Context, msg *source.Message, index *int) (*core.DetectionResult, error) {
	f.logger.Debug("Processing message",
		zap.String("subject", msg.Subject),
		zap.Int("text_length", len(msg.Text)))

	start := time.Now()
	result, err := f.service.Analyze(ctx, msg.Text)
	if err != nil {
		f.logger.Error("Failed to analyze message", zap.Error(err))
		return nil, err
	}

	rep := report{
		Index:      index,
		Subject:    msg.Subject,
		MessageID:  msg.MessageID,
		DurationMS: time.Since(start).Milliseconds(),
		Result:     result,
	}
	if result.Found && f.internal.Enabled() {
		internal := f.internal.IsInternal(result.Email.From.Address)
		rep.Internal = &internal
	}

	if f.jsonOut {
		return result, json.NewEncoder(f.out).Encode(rep)
	}
	return result, f.printSummary(rep, msg.Text)
}

func (f *CliFilter) printError(err error) error {
	if f.jsonOut {
		return json.NewEncoder(f.out).Encode(report{Error: err.Error()})
	}
	_, werr := fmt.Fprintf(f.out, "\n=== Skipped message ===\nError: %v\n", err)
	return werr
}

func (f *CliFilter) printSummary(rep report, text string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\n=== Message")
	if rep.Index != nil {
		fmt.Fprintf(&b, " %d", *rep.Index)
	}
	fmt.Fprintf(&b, " ===\n")
	if rep.Subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", rep.Subject)
	}
	fmt.Fprintf(&b, "Body length: %d bytes\n", len(text))

	result := rep.Result
	fmt.Fprintf(&b, "\n=== Results ===\n")
	fmt.Fprintf(&b, "Embedded message: %t\n", result.Found)
	if result.Found {
		fmt.Fprintf(&b, "Detector: %s\n", result.Detector)
		fmt.Fprintf(&b, "Confidence: %s\n", result.Confidence)
		fmt.Fprintf(&b, "From: %s\n", formatSender(result.Email.From))
		if result.Email.Date != "" {
			fmt.Fprintf(&b, "Date: %s\n", result.Email.Date)
		}
		if result.Email.Subject != "" {
			fmt.Fprintf(&b, "Original subject: %s\n", result.Email.Subject)
		}
		if rep.Internal != nil {
			fmt.Fprintf(&b, "Internal sender: %t\n", *rep.Internal)
		}
		fmt.Fprintf(&b, "Message before boundary: %d bytes\n", len(result.Message))
		if f.verbose {
			fmt.Fprintf(&b, "\nMessage:\n%s\n", result.Message)
			fmt.Fprintf(&b, "\nEmbedded body:\n%s\n", result.Email.Body)
		}
	}
	fmt.Fprintf(&b, "Processing time: %dms\n", rep.DurationMS)

	_, err := io.WriteString(f.out, b.String())
	return err
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}
