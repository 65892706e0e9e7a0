package selection

import (
	"errors"
	"fmt"

	"boxoffice/internal/inventory"
	"boxoffice/internal/realtime"
	"boxoffice/internal/seatmap"
)

func (sc *screen) applyLoad(result inventory.Result) {
	if sc.loaded {
		return
	}
	sc.seats = result.Seats
	for i, seat := range sc.seats {
		sc.index[seat.ID] = i
	}
	sc.loaded = true
	close(sc.loadedCh)

	switch result.Mode {
	case inventory.ModeLive:
		sc.mode.GoLive()
	default:
		sc.degrade("inventory", result.Cause)
	}

	for _, u := range sc.early {
		sc.applyUpdate(u)
	}
	sc.early = nil

	if sc.cfg.Resume != nil {
		sc.resume(*sc.cfg.Resume)
	}
}

func (sc *screen) applyStatus(status realtime.Status) {
	sc.channel = status
	switch status {
	case realtime.StatusConnected:
		// seats picked while connecting get their holds now
		if sc.live() {
			for _, seat := range sc.machine.Seats() {
				sc.deps.Channel.ReserveSeat(sc.cfg.EventID, seat.ID, sc.shopperID)
			}
		}
	case realtime.StatusFailed, realtime.StatusTimedOut, realtime.StatusDisconnected:
		sc.degrade("realtime", fmt.Errorf("real-time channel %s", status))
	}
}

// applyUpdate reconciles seat activity of other shoppers with the grid and the selection.
// Updates that arrive before the grid exists are kept and replayed in order.
func (sc *screen) applyUpdate(u realtime.Update) {
	if !sc.loaded {
		sc.early = append(sc.early, u)
		return
	}
	i, ok := sc.index[u.SeatID]
	if !ok {
		return
	}
	seat := &sc.seats[i]

	switch u.Type {
	case realtime.TypeSeatReserved:
		if u.Mine {
			return
		}
		if sc.machine.Remove(seat.ID) {
			seat.Status = seatmap.StatusReserved
			sc.notify(NoticeTaken, fmt.Sprintf("Seat %s was just reserved by another shopper", seat.ID), seat.ID)
			return
		}
		if seat.Status == seatmap.StatusAvailable {
			seat.Status = seatmap.StatusReserved
		}

	case realtime.TypeReservationRejected:
		if sc.machine.Remove(seat.ID) {
			reason := u.Reason
			if reason == "" {
				reason = "it is no longer available"
			}
			sc.notify(NoticeTaken, fmt.Sprintf("Seat %s could not be reserved: %s", seat.ID, reason), seat.ID)
		}
		if seat.Status == seatmap.StatusAvailable {
			seat.Status = seatmap.StatusReserved
		}

	case realtime.TypeSeatReleased:
		if seat.Status == seatmap.StatusReserved {
			seat.Status = seatmap.StatusAvailable
		}
	}
}

func (sc *screen) toggle(seatID string) (Outcome, error) {
	if !sc.loaded {
		return OutcomeIgnored, ErrNotLoaded
	}
	i, ok := sc.index[seatID]
	if !ok {
		return OutcomeIgnored, ErrUnknownSeat
	}
	seat := sc.seats[i]

	out, err := sc.machine.Toggle(seat)
	if err != nil {
		var limit *LimitError
		if errors.As(err, &limit) {
			sc.notify(NoticeLimit, limit.Error(), seat.ID)
		}
		return out, err
	}

	if sc.live() {
		switch out {
		case OutcomeAdded:
			sc.deps.Channel.ReserveSeat(sc.cfg.EventID, seat.ID, sc.shopperID)
		case OutcomeRemoved:
			sc.deps.Channel.ReleaseSeat(sc.cfg.EventID, seat.ID, sc.shopperID)
		}
	}
	return out, nil
}

// resume re-applies a selection carried through login, skipping seats taken in the meantime
func (sc *screen) resume(pending PendingSelection) {
	if pending.EventID != sc.cfg.EventID || pending.SectorID != sc.cfg.SectorID {
		return
	}
	restored, skipped := 0, 0
	for _, id := range pending.SeatIDs {
		if sc.machine.Contains(id) {
			continue
		}
		out, err := sc.toggle(id)
		if err == nil && out == OutcomeAdded {
			restored++
		} else {
			skipped++
		}
	}
	if skipped > 0 {
		sc.notify(NoticeResumed, fmt.Sprintf("%d of your seats are no longer available", skipped), "")
	} else if restored > 0 {
		sc.notify(NoticeResumed, fmt.Sprintf("Restored %d selected seats", restored), "")
	}
}

func (sc *screen) live() bool {
	return sc.deps.Channel != nil && sc.mode.Mode() == inventory.ModeLive && sc.channel == realtime.StatusConnected
}

func (sc *screen) degrade(source string, cause error) {
	if !sc.mode.Degrade() {
		return
	}
	if source != "inventory" {
		// the inventory loader logs its own fallback
		sc.deps.Logger.LogDemoFallback(sc.ctx, sc.cfg.EventID, sc.cfg.SectorID, source, cause)
	}
	sc.notify(NoticeDemo, "Live availability is unavailable, showing demo seats", "")
}

func (sc *screen) notify(kind NoticeKind, message, seatID string) {
	sc.noticeID++
	sc.notices = append(sc.notices, Notice{ID: sc.noticeID, Kind: kind, Message: message, SeatID: seatID})
}

func (sc *screen) dismiss(id int) {
	for i, n := range sc.notices {
		if n.ID == id {
			sc.notices = append(sc.notices[:i], sc.notices[i+1:]...)
			return
		}
	}
}

func (sc *screen) view() View {
	seats := make([]seatmap.Seat, len(sc.seats))
	copy(seats, sc.seats)
	notices := make([]Notice, len(sc.notices))
	copy(notices, sc.notices)
	return View{
		EventID:  sc.cfg.EventID,
		SectorID: sc.cfg.SectorID,
		Mode:     sc.mode.Mode(),
		Channel:  sc.channel,
		Loaded:   sc.loaded,
		Seats:    seats,
		Selected: sc.machine.Seats(),
		Total:    sc.machine.Total(),
		State:    sc.machine.State(),
		Notices:  notices,
	}
}
