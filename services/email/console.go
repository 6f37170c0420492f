package emailsvc

import (
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/belleza/salon/core"
)

// ConsoleService writes emails to a std logger instead of sending them. Used in development.
type ConsoleService struct {
	conf       *core.Config
	std        *log.Logger
	logger     core.Logger
	from       mail.Address
	subjPrefix string
	sync       bool

	mu   sync.Mutex
	sent []core.EmailMessage
}

var _ core.EmailService = (*ConsoleService)(nil)

func NewConsoleService(std *log.Logger, logger core.Logger, conf *core.Config) *ConsoleService {
	return &ConsoleService{
		conf:       conf,
		std:        std,
		logger:     logger,
		from:       conf.DefaultFromEmail(),
		subjPrefix: "[" + conf.AppName + "] ",
	}
}

// NewConsoleServiceMock returns a silent ConsoleService that sends synchronously and keeps
// every message for inspection.
func NewConsoleServiceMock(conf *core.Config) *ConsoleService {
	return &ConsoleService{
		conf:       conf,
		std:        log.New(io.Discard, "", 0),
		from:       conf.DefaultFromEmail(),
		subjPrefix: "[" + conf.AppName + "] ",
		sync:       true,
	}
}

func (svc *ConsoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if svc.sync {
			svc.sendMessage(msg)
		} else {
			go svc.sendMessage(msg)
		}
	}
}

// SentMessages returns a copy of what was sent so far.
func (svc *ConsoleService) SentMessages() []core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	sent := make([]core.EmailMessage, len(svc.sent))
	copy(sent, svc.sent)
	return sent
}

// ClearSentMessages forgets every sent message.
func (svc *ConsoleService) ClearSentMessages() {
	svc.mu.Lock()
	svc.sent = nil
	svc.mu.Unlock()
}

func (svc *ConsoleService) sendMessage(msg *core.EmailMessage) {
	if err := msg.Render(svc.conf); err != nil {
		svc.logError(errors.Wrap(err, "rendering email"))
		return
	}
	if !msg.HasRecipients() || !(msg.HasContent() || msg.HasAttachments()) {
		return
	}
	body, err := svc.compose(*msg)
	if err != nil {
		svc.logError(errors.Wrap(err, "composing email"))
		return
	}
	svc.std.Println(body)

	svc.mu.Lock()
	svc.sent = append(svc.sent, *msg)
	svc.mu.Unlock()
}

func (svc *ConsoleService) logError(err error) {
	if svc.logger != nil {
		svc.logger.Error(err.Error(), err)
		return
	}
	svc.std.Printf("%+v", err)
}

func (svc *ConsoleService) compose(msg core.EmailMessage) (string, error) {
	body := new(strings.Builder)
	mw := multipart.NewWriter(body)

	_, _ = fmt.Fprintf(body, "From: %s\r\n", svc.from.String())
	_, _ = fmt.Fprintf(body, "To: %s\r\n", joinAddresses(msg.To))
	if len(msg.Cc) > 0 {
		_, _ = fmt.Fprintf(body, "Cc: %s\r\n", joinAddresses(msg.Cc))
	}
	if len(msg.Bcc) > 0 {
		_, _ = fmt.Fprintf(body, "Bcc: %s\r\n", joinAddresses(msg.Bcc))
	}
	_, _ = fmt.Fprintf(body, "Subject: %s\r\n", svc.subjPrefix+msg.Subject)
	_, _ = fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	_, _ = fmt.Fprint(body, "MIME-Version: 1.0\r\n")
	_, _ = fmt.Fprintf(body, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", mw.Boundary())

	w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/plain; charset=utf-8"}})
	if err != nil {
		return "", errors.Wrap(err, "creating text/plain part")
	}
	_, _ = fmt.Fprintf(w, "%s\r\n", msg.TextContent)

	for _, at := range msg.Attachments {
		w, err = mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {at.ContentType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {"attachment; filename=" + at.Filename},
		})
		if err != nil {
			return "", errors.Wrapf(err, "creating %s part", at.ContentType)
		}
		_, _ = fmt.Fprintf(w, "%s\r\n", base64.StdEncoding.EncodeToString(at.Content))
	}
	if err = mw.Close(); err != nil {
		return "", err
	}
	return body.String(), nil
}

func joinAddresses(addrs []mail.Address) string {
	list := make([]string, 0, len(addrs))
	for _, a := range addrs {
		list = append(list, a.String())
	}
	return strings.Join(list, ", ")
}
