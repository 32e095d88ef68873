package detectors

import (
	"github.com/mikey/forward-filter/internal/cleaner"
	"github.com/mikey/forward-filter/internal/core"
)

const (
	ForwardedName     = "forwarded"
	ForwardedPriority = 0
)

// forwardSeparators are the lines mail clients put above a forwarded or
// inlined original message.
var forwardSeparators = compileAll(
	// Gmail, Thunderbird, Outlook and their translations
	`^\s*>?\s*-{2,}\s*(?:Forwarded message|Original Message|Message transféré|Message d'origine|Message original|Weitergeleitete Nachricht|Ursprüngliche Nachricht|Originalnachricht|Mensaje reenviado|Mensaje original|Messaggio inoltrato|Messaggio originale|Doorgestuurd bericht|Oorspronkelijk bericht|Mensagem encaminhada|Mensagem original|Wiadomość przekazana|Oryginalna wiadomość|Vidarebefordrat meddelande|Ursprungligt meddelande|Videresendt meddelelse|Oprindelig meddelelse|Пересылаемое сообщение|Исходное сообщение)\s*-{2,}\s*$`,
	// Apple Mail
	`^\s*>?\s*(?:Begin forwarded message|Début du message réexpédié|Début du message transféré|Anfang der weitergeleiteten Nachricht|Inicio del mensaje reenviado|Inizio messaggio inoltrato|Begin doorgestuurd bericht|Início da mensagem reencaminhada|Vidarebefordrat brev)\s*:\s*$`,
)

var forwardedAliases = map[string]headerField{
	"from": fieldFrom, "de": fieldFrom, "von": fieldFrom, "da": fieldFrom, "van": fieldFrom,
	"od": fieldFrom, "från": fieldFrom, "fra": fieldFrom, "от": fieldFrom, "lähettäjä": fieldFrom,

	"date": fieldDate, "sent": fieldDate, "datum": fieldDate, "fecha": fieldDate, "data": fieldDate,
	"envoyé": fieldDate, "envoyé le": fieldDate, "gesendet": fieldDate, "enviado": fieldDate,
	"verzonden": fieldDate, "skickat": fieldDate, "sendt": fieldDate, "wysłano": fieldDate,
	"дата": fieldDate, "отправлено": fieldDate,

	"subject": fieldSubject, "objet": fieldSubject, "sujet": fieldSubject, "betreff": fieldSubject,
	"asunto": fieldSubject, "oggetto": fieldSubject, "onderwerp": fieldSubject, "assunto": fieldSubject,
	"temat": fieldSubject, "ämne": fieldSubject, "emne": fieldSubject, "тема": fieldSubject,

	"to": fieldTo, "à": fieldTo, "a": fieldTo, "an": fieldTo, "para": fieldTo, "aan": fieldTo,
	"do": fieldTo, "till": fieldTo, "til": fieldTo, "кому": fieldTo,

	"cc": fieldCc, "kopie": fieldCc, "copia": fieldCc, "kopia": fieldCc, "копия": fieldCc,
}

// NewForwardedDetector recognizes explicit forward separators followed by
// the original message's header block.
func NewForwardedDetector(n *cleaner.Normalizer) core.Detector {
	return &blockDetector{
		name:       ForwardedName,
		priority:   ForwardedPriority,
		confidence: core.ConfidenceHigh,
		normalizer: orDefault(n),
		separators: forwardSeparators,
		aliases:    forwardedAliases,
		accept: func(b headerBlock) bool {
			return b.has(fieldFrom)
		},
	}
}
