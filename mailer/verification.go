package mailer

import (
	"fmt"
	"strings"
	"unicode"
)

// Verification builds the account verification mail. The link points
// at the public verify endpoint with the token embedded in the path.
// When username is empty the mailbox part of the recipient address
// stands in as the display name.
func Verification(baseURL, token, username, recipient string) Message {
	name := username
	if name == "" {
		name, _, _ = strings.Cut(recipient, "@")
	}
	name = capitalize(name)

	link := strings.TrimRight(baseURL, "/") + "/verify/" + token

	return Message{
		To:      recipient,
		Subject: fmt.Sprintf("%s account verification for %s", name, baseURL),
		Body:    fmt.Sprintf("Hii %s, click this link to verify yourself.\n %s", name, link),
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
