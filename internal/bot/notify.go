package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/costalopes/focusgato/internal/api"
	"github.com/costalopes/focusgato/internal/cat"
	"github.com/costalopes/focusgato/internal/chatapi"
	"github.com/costalopes/focusgato/internal/pomodoro"
)

// 24-bit RGB embed colors.
const (
	colorInfo     = 0x9B59B6
	colorFocus    = 0xE74C3C
	colorShort    = 0x2ECC71
	colorLong     = 0x3498DB
	colorGentle   = 0x95A5A6
	colorNormal   = 0xF1C40F
	colorUrgent   = 0xE67E22
	colorCritical = 0xC0392B
)

func modeLabel(m pomodoro.Mode) string {
	switch m {
	case pomodoro.ModeFocus:
		return "Foco"
	case pomodoro.ModeShort:
		return "Pausa curta"
	case pomodoro.ModeLong:
		return "Pausa longa"
	default:
		return string(m)
	}
}

func moodLabel(m cat.Mood) string {
	switch m {
	case cat.MoodHappy:
		return "feliz 😸"
	case cat.MoodEating:
		return "comendo 😋"
	case cat.MoodHungry:
		return "com fome 🙀"
	case cat.MoodSleepy:
		return "com sono 😴"
	case cat.MoodSad:
		return "triste 😿"
	default:
		return "tranquilo 🐱"
	}
}

var nextStepButtons = []chatapi.Button{
	{CustomID: "pomodoro:focus", Label: "Foco 25min", Style: "primary"},
	{CustomID: "pomodoro:short", Label: "Pausa 5min", Style: "secondary"},
	{CustomID: "pomodoro:long", Label: "Pausa 15min", Style: "secondary"},
}

// NotifyPomodoroEnd posts the mode-styled completion message with next-step
// buttons to the notification channel.
func (b *Bot) NotifyPomodoroEnd(ctx context.Context, mode pomodoro.Mode, sessions int, userName string) error {
	var title string
	var color int
	switch mode {
	case pomodoro.ModeFocus:
		title = "🍅 Pomodoro concluído!"
		color = colorFocus
	case pomodoro.ModeShort:
		title = "☕ Pausa curta terminada!"
		color = colorShort
	default:
		title = "🌴 Pausa longa terminada!"
		color = colorLong
	}

	desc := fmt.Sprintf("%s terminou um ciclo de %s.", userName, strings.ToLower(modeLabel(mode)))
	if mode == pomodoro.ModeFocus && sessions > 0 {
		desc = fmt.Sprintf("%s Sessões de foco hoje: %d.", desc, sessions)
	}

	return b.platform.SendMessage(ctx, b.notifyChannelID, chatapi.Message{
		Embed:   &chatapi.Embed{Title: title, Description: desc, Color: color},
		Buttons: nextStepButtons,
	})
}

// NotifyTaskReminder posts one of four escalating reminder styles. Unknown
// types fall back to the normal style.
func (b *Bot) NotifyTaskReminder(ctx context.Context, tasks []api.Task, reminderType, userName string) error {
	var title string
	color := colorNormal
	switch reminderType {
	case "gentle":
		title = "📝 Lembrete de tarefas"
		color = colorGentle
	case "urgent":
		title = "⏰ Tarefas chegando no prazo!"
		color = colorUrgent
	case "critical":
		title = "🚨 Tarefas atrasadas!"
		color = colorCritical
	default:
		title = "📋 Suas tarefas de hoje"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s, você tem %d tarefa(s):\n", userName, len(tasks))
	for _, t := range tasks {
		if t.Deadline != "" {
			fmt.Fprintf(&sb, "• **%s** — até %s\n", t.Title, t.Deadline)
		} else {
			fmt.Fprintf(&sb, "• **%s**\n", t.Title)
		}
	}

	return b.platform.SendMessage(ctx, b.notifyChannelID, chatapi.Message{
		Embed: &chatapi.Embed{Title: title, Description: sb.String(), Color: color},
	})
}

// NotifyCatHungry posts the hungry alert with the interaction buttons.
func (b *Bot) NotifyCatHungry(ctx context.Context, state cat.State, userName string) error {
	return b.platform.SendMessage(ctx, b.notifyChannelID, chatapi.Message{
		Embed: &chatapi.Embed{
			Title:       fmt.Sprintf("🙀 %s está com fome!", state.Name),
			Description: fmt.Sprintf("%s, o gato precisa de você. Felicidade %d, energia %d.", userName, state.Happiness, state.Energy),
			Color:       colorUrgent,
		},
		Buttons: []chatapi.Button{
			{CustomID: "cat:feed", Label: "Alimentar", Style: "primary"},
			{CustomID: "cat:pet", Label: "Carinho", Style: "secondary"},
			{CustomID: "cat:status", Label: "Ver status", Style: "secondary"},
		},
	})
}

// Connected reports gateway liveness for the health endpoint.
func (b *Bot) Connected() bool { return b.connected() }
