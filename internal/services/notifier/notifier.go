package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"golang-maintenance-work-order/internal/config"
	"golang-maintenance-work-order/internal/models"
	"golang-maintenance-work-order/internal/utils"
)

// Notifier pushes transition notifications to the dispatcher channel. It is
// best effort: a failed notification never fails the transition that
// triggered it.
type Notifier interface {
	NotifyTransition(payload models.ExecutionEventPayload, execution *models.WorkOrderExecutionEntity)
}

type telegramNotifier struct {
	bot    *telebot.Bot
	chatID int64
	log    *logrus.Logger
}

// NewTelegramNotifier builds a send-only Telegram notifier. When no bot token
// is configured it returns a no-op implementation so callers never need a nil
// check.
func NewTelegramNotifier(cfg *config.TelegramConfig, log *logrus.Logger) (Notifier, error) {
	if cfg.BotToken == "" {
		log.Info("Telegram notifications disabled: no bot token configured")
		return &noopNotifier{}, nil
	}

	pref := telebot.Settings{
		Token: cfg.BotToken,
		OnError: func(err error, c telebot.Context) {
			log.WithError(err).Error("Telegram notifier error")
		},
	}

	bot, err := telebot.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram notifier bot: %w", err)
	}

	return &telegramNotifier{
		bot:    bot,
		chatID: cfg.ChatID,
		log:    log,
	}, nil
}

func (n *telegramNotifier) NotifyTransition(payload models.ExecutionEventPayload, execution *models.WorkOrderExecutionEntity) {
	message := formatTransitionMessage(payload, execution)

	utils.SafeGo(func() {
		if _, err := n.bot.Send(&telebot.Chat{ID: n.chatID}, message, telebot.ModeMarkdownV2); err != nil {
			n.log.WithError(err).WithFields(logrus.Fields{
				"execution_id": payload.ExecutionID,
				"action":       payload.Action,
			}).Error("Failed to send transition notification")
		}
	})
}

func formatTransitionMessage(payload models.ExecutionEventPayload, execution *models.WorkOrderExecutionEntity) string {
	title := ""
	if execution != nil && execution.WorkOrder != nil {
		title = execution.WorkOrder.Title
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s* %s\n%s → %s\n%s",
		utils.EscapeMarkdownV2(payload.WorkOrderCode),
		utils.EscapeMarkdownV2(utils.TruncateTitle(title, 64)),
		utils.EscapeMarkdownV2(string(payload.FromStatus)),
		utils.EscapeMarkdownV2(string(payload.ToStatus)),
		utils.EscapeMarkdownV2(payload.At.Format(time.RFC3339)),
	)

	if payload.ToStatus == models.ExecutionStatusFinished && execution != nil {
		fmt.Fprintf(&b, "\nDuration: %s", utils.EscapeMarkdownV2(utils.FormatMinutes(payload.ElapsedMinutes)))
		if record, err := execution.DecodeConsumption(); err == nil && record != nil {
			for _, material := range record.Materials {
				fmt.Fprintf(&b, "\n%s: %s",
					utils.EscapeMarkdownV2(material.MaterialID),
					utils.EscapeMarkdownV2(utils.FormatQuantity(material.Quantity, material.Unit)),
				)
			}
		}
	}

	return b.String()
}

type noopNotifier struct{}

func (*noopNotifier) NotifyTransition(models.ExecutionEventPayload, *models.WorkOrderExecutionEntity) {}
