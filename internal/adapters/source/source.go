// Package source turns raw input (plain text, RFC 5322 messages, mbox
// archives) into the plain-text bodies the detectors work on.
package source

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-mbox"
	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/mikey/forward-filter/internal/core"
)

// ErrNoTextPart is returned when a message carries no text/plain body
var ErrNoTextPart = errors.New("message has no text/plain part")

func init() {
	message.CharsetReader = charsetReader
}

// Message is a parsed email reduced to what detection needs
type Message struct {
	// Index is the zero-based position of the message in its mailbox
	Index     int
	From      core.Sender
	Subject   string
	MessageID string
	Text      string
}

// ReadText reads r as a plain-text body
func ReadText(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	return string(b), nil
}

// ReadMessage parses an RFC 5322 message and returns its first inline
// text/plain part, decoded to UTF-8.
func ReadMessage(r io.Reader) (*Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	defer mr.Close()

	msg := &Message{}
	if subject, err := mr.Header.Subject(); err == nil {
		msg.Subject = subject
	}
	if id, err := mr.Header.MessageID(); err == nil {
		msg.MessageID = id
	}
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		msg.From = core.Sender{Name: from[0].Name, Address: from[0].Address}
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			return nil, fmt.Errorf("failed to read message part: %w", err)
		}
		if part == nil {
			continue
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		// RFC 2045 default
		if contentType != "" && contentType != "text/plain" {
			continue
		}

		body, err := io.ReadAll(part.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read text part: %w", err)
		}
		msg.Text = string(body)
		return msg, nil
	}

	return nil, ErrNoTextPart
}

// ReadMbox walks an mbox archive, parsing each message and handing it to
// fn. Messages that fail to parse are passed with a nil message and the
// parse error; fn decides whether to stop by returning an error.
func ReadMbox(r io.Reader, fn func(msg *Message, err error) error) error {
	reader := mbox.NewReader(r)
	for i := 0; ; i++ {
		mr, err := reader.NextMessage()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read mbox: %w", err)
		}

		msg, err := ReadMessage(mr)
		if msg != nil {
			msg.Index = i
		}
		if err := fn(msg, err); err != nil {
			return err
		}
	}
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	if charset == "" {
		return input, nil
	}
	enc, err := ianaindex.IANA.Encoding(strings.ToLower(charset))
	if err != nil {
		return nil, fmt.Errorf("unhandled charset %q: %w", charset, err)
	}
	if enc == nil {
		return input, nil
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}
