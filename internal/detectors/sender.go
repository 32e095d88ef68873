package detectors

import (
	"regexp"
	"strings"

	"github.com/mikey/forward-filter/internal/core"
)

var (
	// trailing "<addr>", "[addr]" or "(addr)" after an optional display name
	bracketedAddress = regexp.MustCompile(`^(.*?)\s*[<\[(]\s*(?i:mailto:)?([^\s<>\[\]()]+@[^\s<>\[\]()]+)\s*[>\])]$`)
	bareAddress      = regexp.MustCompile(`^(?i:mailto:)?[^\s<>\[\]()"]+@[^\s<>\[\]()"]+$`)
)

const nameQuotes = `"'«»„“”`

// parseSender turns loosely captured name/address groups into a Sender.
// Clients rarely agree on where the address sits, so an address embedded in
// the name is moved out and a name that is only an address becomes one.
func parseSender(name, address string) core.Sender {
	name = strings.TrimSpace(name)
	address = cleanAddress(address)

	for {
		m := bracketedAddress.FindStringSubmatch(name)
		if m == nil {
			break
		}
		if address == "" {
			address = m[2]
		}
		name = strings.TrimSpace(m[1])
	}

	if address == "" && bareAddress.MatchString(name) {
		address = cleanAddress(name)
		name = ""
	}

	name = strings.TrimSpace(strings.Trim(name, nameQuotes))
	if strings.EqualFold(name, address) {
		name = ""
	}

	return core.Sender{Name: name, Address: address}
}

func cleanAddress(address string) string {
	address = strings.Trim(strings.TrimSpace(address), "<>[]() ")
	if len(address) >= 7 && strings.EqualFold(address[:7], "mailto:") {
		address = address[7:]
	}
	return strings.TrimSpace(address)
}
