package sink

import (
	"context"
	"fmt"
	"log/slog"
	"tpa-lab/contract"
	"tpa-lab/domain"
	"tpa-lab/domain/event"
)

// NotificationSink renders lifecycle events into the texts players read.
// Messaging is best effort: offline players simply miss the line.
type NotificationSink struct {
	messenger contract.IMessenger
	log       *slog.Logger
}

func NewNotificationSink(messenger contract.IMessenger, log *slog.Logger) *NotificationSink {
	return &NotificationSink{messenger: messenger, log: log}
}

func (s *NotificationSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.RequestSubmitted:
		s.submitted(evt)
	case event.RequestReplaced:
		// Re-sending to the same target already tells the requester everything.
		if evt.Previous.RequesterID != evt.By.RequesterID {
			s.messenger.NotifyError(evt.Previous.RequesterID,
				fmt.Sprintf("Your TPA request to %s was replaced by another player.", evt.Previous.TargetName))
		}
	case event.RequestExpired:
		s.messenger.NotifyError(evt.Request.TargetID, "TPA request expired.")
		s.messenger.NotifyError(evt.Request.RequesterID, "Your TPA request expired.")
	case event.RequestDenied:
		s.messenger.NotifyError(evt.Request.RequesterID,
			fmt.Sprintf("Your TPA to %s was denied.", evt.Request.TargetName))
		s.messenger.Notify(evt.Request.TargetID, "TPA denied.")
	case event.RequestCanceled:
		s.canceled(evt)
	case event.RequestAccepted:
		s.accepted(evt)
	case event.TeleportCommitted:
		s.messenger.Notify(evt.Mover, fmt.Sprintf("Teleported to %s.", evt.AnchorName))
		s.messenger.Notify(evt.Anchor, fmt.Sprintf("%s teleported to you.", evt.MoverName))
	case event.TeleportAborted:
		s.aborted(evt)
	case event.TeleportFailed:
		s.messenger.NotifyError(evt.Mover, "Teleport failed.")
	default:
		s.log.Debug(fmt.Sprintf("Not implemented event : %T", evt))
	}
	return nil
}

func (s *NotificationSink) submitted(evt event.RequestSubmitted) {
	r := evt.Request
	seconds := domain.CeilSeconds(r.Timeout)
	s.messenger.Notify(r.RequesterID,
		fmt.Sprintf("Sent TPA to %s. Expires in %ds. Use /tpcancel to cancel.", r.TargetName, seconds))
	if r.Kind == domain.KindSummon {
		s.messenger.Notify(r.TargetID,
			fmt.Sprintf("%s wants you to teleport to them. Use /tpaccept or /tpdeny.", r.RequesterName))
	} else {
		s.messenger.Notify(r.TargetID,
			fmt.Sprintf("%s wants to teleport to you. Use /tpaccept or /tpdeny.", r.RequesterName))
	}
	s.messenger.Notify(r.TargetID, fmt.Sprintf("Request will auto-expire in %ds.", seconds))
}

func (s *NotificationSink) canceled(evt event.RequestCanceled) {
	r := evt.Request
	switch evt.Reason {
	case event.CanceledByRequester:
		s.messenger.Notify(r.RequesterID, "TPA canceled.")
		s.messenger.Notify(r.TargetID, fmt.Sprintf("%s canceled their TPA.", r.RequesterName))
	case event.CanceledByDisconnect:
		if evt.Leaver == r.RequesterID {
			s.messenger.NotifyError(r.TargetID,
				fmt.Sprintf("%s disconnected. TPA request canceled.", r.RequesterName))
		} else {
			s.messenger.NotifyError(r.RequesterID,
				fmt.Sprintf("%s disconnected. Your TPA request was canceled.", r.TargetName))
		}
	}
}

func (s *NotificationSink) accepted(evt event.RequestAccepted) {
	s.messenger.Notify(evt.Mover, fmt.Sprintf("Teleporting to %s in %ds. Don't move.",
		evt.AnchorName, domain.CeilSeconds(evt.Delay)))
	if evt.Request.Kind == domain.KindSummon {
		s.messenger.Notify(evt.Anchor, fmt.Sprintf("%s accepted your TPA.", evt.MoverName))
		return
	}
	s.messenger.Notify(evt.Anchor, fmt.Sprintf("Accepting TPA from %s...", evt.MoverName))
}

func (s *NotificationSink) aborted(evt event.TeleportAborted) {
	r := evt.Request
	switch evt.Reason {
	case event.AbortMoved:
		s.messenger.NotifyError(evt.Mover, "Teleport canceled: you moved.")
		s.messenger.Notify(evt.Anchor, fmt.Sprintf("%s's TP canceled (moved).", evt.MoverName))
	case event.AbortOffline:
		if evt.Missing == evt.Mover {
			s.messenger.NotifyError(evt.Anchor, fmt.Sprintf("%s went offline. Teleport canceled.", evt.MoverName))
		} else {
			s.messenger.NotifyError(evt.Mover, "Target offline.")
		}
	case event.AbortCanceled:
		s.messenger.Notify(r.RequesterID, "TPA canceled.")
		s.messenger.Notify(r.TargetID, fmt.Sprintf("%s canceled their TPA.", r.RequesterName))
	}
}
