package bot

import (
	"fmt"

	twitchIRC "github.com/gempir/go-twitch-irc/v4"
	log "github.com/sirupsen/logrus"
)

// tryUserCommand looks the parsed command up in the custom text
// commands and sends the rendered reply when found. The invocation
// counter is incremented; the rendered $(count) shows the value before
// this use, as stored at lookup time.
func (b *Bot) tryUserCommand(m twitchIRC.PrivateMessage, command string) bool {
	userCommand, err := b.commands.GetByName(command)
	if err != nil {
		log.Error(err)
		return false
	}
	if userCommand == nil {
		return false
	}

	if err := b.commands.IncrementCounter(userCommand.ID); err != nil {
		log.Error(err)
	}

	toUser := rest(m.Message)
	if toUser == "" {
		toUser = m.User.Name
	}

	b.say(m.Channel, RenderTemplate(userCommand.Text, m.User.Name, toUser, userCommand.Count))
	return true
}

// handleAdd creates a custom command. Subscribers and moderators only.
func (b *Bot) handleAdd(m twitchIRC.PrivateMessage) {
	if !isSubscriber(m) && !isModerator(m) {
		return
	}

	name, text := splitFirst(rest(m.Message))
	name = IsolateCommand(b.cfg.Prefix, b.cfg.Prefix+name)
	if name == "" || text == "" {
		b.say(m.Channel, fmt.Sprintf("Uso correto: %sadd <comando> <texto>", b.cfg.Prefix))
		return
	}

	userCommand, err := b.commands.GetByName(name)
	if err != nil {
		log.Error(err)
		return
	}
	if userCommand != nil {
		b.say(m.Channel, fmt.Sprintf("Comando %s%s já existe", b.cfg.Prefix, name))
		return
	}

	if err := b.commands.Create(name, m.User.Name, text); err != nil {
		log.Error(err)
		return
	}
	b.say(m.Channel, fmt.Sprintf("Comando %s%s adicionado", b.cfg.Prefix, name))
}

// handleEdit replaces a custom command's text. Only the creator or a
// moderator may edit.
func (b *Bot) handleEdit(m twitchIRC.PrivateMessage) {
	name, text := splitFirst(rest(m.Message))
	name = IsolateCommand(b.cfg.Prefix, b.cfg.Prefix+name)
	if name == "" || text == "" {
		b.say(m.Channel, fmt.Sprintf("Uso correto: %sedit <comando> <texto>", b.cfg.Prefix))
		return
	}

	userCommand, err := b.commands.GetByName(name)
	if err != nil {
		log.Error(err)
		return
	}
	if userCommand == nil {
		b.say(m.Channel, fmt.Sprintf("Comando %s%s não existe", b.cfg.Prefix, name))
		return
	}

	if userCommand.Creator != m.User.Name && !isModerator(m) {
		b.say(m.Channel, "Comandos só podem ser editados pelo autor ou moderadores")
		return
	}

	if err := b.commands.Update(userCommand.ID, text); err != nil {
		log.Error(err)
		return
	}
	b.say(m.Channel, fmt.Sprintf("Comando %s%s editado", b.cfg.Prefix, name))
}

// handleDelete removes a custom command. Moderators only.
func (b *Bot) handleDelete(m twitchIRC.PrivateMessage) {
	if !isModerator(m) {
		return
	}

	name, _ := splitFirst(rest(m.Message))
	name = IsolateCommand(b.cfg.Prefix, b.cfg.Prefix+name)
	if name == "" {
		b.say(m.Channel, fmt.Sprintf("Uso correto: %sdelete <comando>", b.cfg.Prefix))
		return
	}

	userCommand, err := b.commands.GetByName(name)
	if err != nil {
		log.Error(err)
		return
	}
	if userCommand == nil {
		b.say(m.Channel, fmt.Sprintf("Comando %s%s não existe", b.cfg.Prefix, name))
		return
	}

	if err := b.commands.Delete(userCommand.ID); err != nil {
		log.Error(err)
		return
	}
	b.say(m.Channel, fmt.Sprintf("Comando %s%s removido", b.cfg.Prefix, name))
}

// handleStat reports a custom command's creator and use count.
func (b *Bot) handleStat(m twitchIRC.PrivateMessage) {
	name, _ := splitFirst(rest(m.Message))
	name = IsolateCommand(b.cfg.Prefix, b.cfg.Prefix+name)
	if name == "" {
		b.say(m.Channel, fmt.Sprintf("Uso correto: %sstat <comando>", b.cfg.Prefix))
		return
	}

	userCommand, err := b.commands.GetByName(name)
	if err != nil {
		log.Error(err)
		return
	}
	if userCommand == nil {
		b.say(m.Channel, fmt.Sprintf("Comando %s%s não existe", b.cfg.Prefix, name))
		return
	}

	b.say(m.Channel, fmt.Sprintf(
		"Comando %s%s criado por %s, usado %d vezes",
		b.cfg.Prefix, name, userCommand.Creator, userCommand.Count,
	))
}
