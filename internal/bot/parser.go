package bot

import (
	"regexp"
	"strconv"
	"strings"
)

var nonAlnumRE = regexp.MustCompile(`[^a-z0-9]`)

// IsolateCommand extracts a normalized command token from a chat
// message. A message is a command when it starts with prefix; the token
// is the first word lower-cased with every non-alphanumeric character
// (the prefix included) stripped. Returns "" for non-commands.
func IsolateCommand(prefix, message string) string {
	if prefix == "" || !strings.HasPrefix(message, prefix) {
		return ""
	}

	fields := strings.Fields(message)
	if len(fields) == 0 {
		return ""
	}

	command := nonAlnumRE.ReplaceAllString(strings.ToLower(fields[0]), "")
	return strings.TrimPrefix(command, prefix)
}

// RenderTemplate substitutes the reply-text tokens $(count), $(user)
// and $(touser).
func RenderTemplate(text, user, toUser string, count int) string {
	return strings.NewReplacer(
		"$(count)", strconv.Itoa(count),
		"$(user)", user,
		"$(touser)", toUser,
	).Replace(text)
}
