package services

import (
	"strings"

	"photo-exchange-bot/internal/models"
)

// OwnerTarget names what an owner event applies to
type OwnerTarget string

const (
	TargetNone       OwnerTarget = ""
	TargetPhotos     OwnerTarget = "photos"
	TargetInterests  OwnerTarget = OwnerTarget(models.FieldInterests)
	TargetLookingFor OwnerTarget = OwnerTarget(models.FieldLookingFor)
	TargetAbout      OwnerTarget = OwnerTarget(models.FieldAbout)
)

// Field returns the profile text field behind a target
func (t OwnerTarget) Field() (models.OwnerField, bool) {
	f := models.OwnerField(t)
	return f, f.Valid()
}

func (t OwnerTarget) label() string {
	switch t {
	case TargetLookingFor:
		return "looking for"
	case TargetNone:
		return "nothing"
	}
	return string(t)
}

type OwnerEventKind int

const (
	EventUnknown OwnerEventKind = iota
	EventMainMenu
	EventBeginSet
	EventBeginClear
	EventView
	EventText
	EventPhoto
)

// OwnerEvent is one parsed owner input
type OwnerEvent struct {
	Kind    OwnerEventKind
	Target  OwnerTarget
	Text    string
	PhotoID string
}

type OwnerEffectKind int

const (
	EffectShowMenu OwnerEffectKind = iota
	EffectPrompt
	EffectAddPhoto
	EffectSetField
	EffectAskConfirm
	EffectReprompt
	EffectClear
	EffectCancelClear
	EffectView
)

// OwnerEffect is a side effect requested by a transition. Value carries the
// photo id or text for add and set effects.
type OwnerEffect struct {
	Kind   OwnerEffectKind
	Target OwnerTarget
	Value  string
}

var ownerButtons = map[string]OwnerEvent{
	LabelOwnerSetPhoto:       {Kind: EventBeginSet, Target: TargetPhotos},
	LabelOwnerSetInterests:   {Kind: EventBeginSet, Target: TargetInterests},
	LabelOwnerSetLookingFor:  {Kind: EventBeginSet, Target: TargetLookingFor},
	LabelOwnerSetAbout:       {Kind: EventBeginSet, Target: TargetAbout},
	LabelOwnerViewPhotos:     {Kind: EventView, Target: TargetPhotos},
	LabelOwnerViewInterests:  {Kind: EventView, Target: TargetInterests},
	LabelOwnerViewLookingFor: {Kind: EventView, Target: TargetLookingFor},
	LabelOwnerViewAbout:      {Kind: EventView, Target: TargetAbout},
	LabelOwnerClearPhotos:    {Kind: EventBeginClear, Target: TargetPhotos},
	LabelOwnerClearInterests: {Kind: EventBeginClear, Target: TargetInterests},
	LabelOwnerClearLooking:   {Kind: EventBeginClear, Target: TargetLookingFor},
	LabelOwnerClearAbout:     {Kind: EventBeginClear, Target: TargetAbout},
	LabelMainMenu:            {Kind: EventMainMenu},
}

// ParseOwnerEvent classifies an owner message. Button labels win over free text.
func ParseOwnerEvent(in Inbound) OwnerEvent {
	switch in.Command {
	case "start", "menu":
		return OwnerEvent{Kind: EventMainMenu}
	}
	if in.PhotoID != "" {
		return OwnerEvent{Kind: EventPhoto, PhotoID: in.PhotoID}
	}
	if ev, ok := ownerButtons[strings.TrimSpace(in.Text)]; ok {
		return ev
	}
	if in.Text != "" {
		return OwnerEvent{Kind: EventText, Text: in.Text}
	}
	return OwnerEvent{Kind: EventUnknown}
}

var (
	setStates = map[OwnerTarget]models.OwnerState{
		TargetPhotos:     models.OwnerSetPhoto,
		TargetInterests:  models.OwnerSetInterests,
		TargetLookingFor: models.OwnerSetLookingFor,
		TargetAbout:      models.OwnerSetAbout,
	}
	clearStates = map[OwnerTarget]models.OwnerState{
		TargetPhotos:     models.OwnerConfirmClearPhotos,
		TargetInterests:  models.OwnerConfirmClearInterests,
		TargetLookingFor: models.OwnerConfirmClearLookingFor,
		TargetAbout:      models.OwnerConfirmClearAbout,
	}
)

func targetOf(states map[OwnerTarget]models.OwnerState, state models.OwnerState) (OwnerTarget, bool) {
	for t, s := range states {
		if s == state {
			return t, true
		}
	}
	return TargetNone, false
}

// NextOwnerState is the owner dialogue transition function. It has no side
// effects; callers execute the returned effects in order.
func NextOwnerState(state models.OwnerState, ev OwnerEvent) (models.OwnerState, []OwnerEffect) {
	switch ev.Kind {
	case EventMainMenu:
		return models.OwnerIdle, []OwnerEffect{{Kind: EffectShowMenu}}
	case EventBeginSet:
		if next, ok := setStates[ev.Target]; ok {
			return next, []OwnerEffect{{Kind: EffectPrompt, Target: ev.Target}}
		}
	case EventBeginClear:
		if next, ok := clearStates[ev.Target]; ok {
			return next, []OwnerEffect{{Kind: EffectAskConfirm, Target: ev.Target}}
		}
	}

	// a pending clear only accepts an answer
	if target, ok := targetOf(clearStates, state); ok {
		switch {
		case ev.Kind == EventText && isYes(ev.Text):
			return models.OwnerIdle, []OwnerEffect{{Kind: EffectClear, Target: target}, {Kind: EffectShowMenu}}
		case ev.Kind == EventText && isNo(ev.Text):
			return models.OwnerIdle, []OwnerEffect{{Kind: EffectCancelClear, Target: target}, {Kind: EffectShowMenu}}
		default:
			return state, []OwnerEffect{{Kind: EffectReprompt, Target: target}}
		}
	}

	if ev.Kind == EventView {
		return state, []OwnerEffect{{Kind: EffectView, Target: ev.Target}}
	}

	if target, ok := targetOf(setStates, state); ok {
		switch {
		case target == TargetPhotos && ev.Kind == EventPhoto:
			return models.OwnerIdle, []OwnerEffect{{Kind: EffectAddPhoto, Target: target, Value: ev.PhotoID}, {Kind: EffectShowMenu}}
		case target != TargetPhotos && ev.Kind == EventText:
			return models.OwnerIdle, []OwnerEffect{{Kind: EffectSetField, Target: target, Value: ev.Text}, {Kind: EffectShowMenu}}
		}
		// wrong content type for this state
		return state, nil
	}

	return models.OwnerIdle, []OwnerEffect{{Kind: EffectShowMenu}}
}

func isYes(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), LabelYes)
}

func isNo(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), LabelNo)
}
