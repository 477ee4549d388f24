package server

import (
	"roll-for-your-life/internal/apperr"
	"roll-for-your-life/internal/game"
)

type stateView struct {
	game.State
	Error     string      `json:"error,omitempty"`
	ErrorCode apperr.Code `json:"error_code,omitempty"`
}

func newStateView(state game.State) stateView {
	view := stateView{State: state}
	if view.Players == nil {
		view.Players = []game.Player{}
	}
	if state.Err != nil {
		view.Error = state.Err.Error()
		view.ErrorCode = apperr.CodeOf(state.Err)
	}
	return view
}

type eventMessage struct {
	Type  game.EventType `json:"type"`
	State stateView      `json:"state"`
	Roll  *game.Roll     `json:"roll,omitempty"`
}

func newEventMessage(ev game.Event) eventMessage {
	return eventMessage{
		Type:  ev.Type,
		State: newStateView(ev.State),
		Roll:  ev.Roll,
	}
}
