package services

import "strings"

// Owner buttons
const (
	LabelOwnerSetPhoto       = "Set photo"
	LabelOwnerViewPhotos     = "View current photos"
	LabelOwnerSetInterests   = "Set interests"
	LabelOwnerViewInterests  = "View current interests"
	LabelOwnerSetLookingFor  = "Set looking for"
	LabelOwnerViewLookingFor = "View looking for"
	LabelOwnerSetAbout       = "Set about"
	LabelOwnerViewAbout      = "View about"
	LabelOwnerClearPhotos    = "Clear photos"
	LabelOwnerClearInterests = "Clear interests"
	LabelOwnerClearLooking   = "Clear looking for"
	LabelOwnerClearAbout     = "Clear about"
	LabelMainMenu            = "Main menu"
	LabelYes                 = "Yes"
	LabelNo                  = "No"
)

// Visitor buttons
const (
	LabelViewPhotos         = "View photos"
	LabelViewInterests      = "View interests"
	LabelViewLookingFor     = "View who they are looking for"
	LabelAboutMe            = "About me"
	LabelEditAboutMe        = "Edit about me"
	LabelInterested         = "I'm interested"
	LabelInterestedDisabled = "I'm interested (unavailable)"
)

var ownerKeyboard = &Keyboard{Rows: [][]string{
	{LabelOwnerSetPhoto, LabelOwnerViewPhotos},
	{LabelOwnerSetInterests, LabelOwnerViewInterests},
	{LabelOwnerSetLookingFor, LabelOwnerViewLookingFor},
	{LabelOwnerSetAbout, LabelOwnerViewAbout},
	{LabelOwnerClearPhotos, LabelOwnerClearInterests, LabelOwnerClearLooking, LabelOwnerClearAbout},
	{LabelMainMenu},
}}

var confirmKeyboard = &Keyboard{Rows: [][]string{{LabelYes, LabelNo}}, OneTime: true}

var removeKeyboard = &Keyboard{Remove: true}

// visitorKeyboard renders the main menu. The interest button advertises
// whether the about text is long enough.
func visitorKeyboard(aboutReady bool) *Keyboard {
	interest := LabelInterestedDisabled
	if aboutReady {
		interest = LabelInterested
	}
	return &Keyboard{Rows: [][]string{
		{LabelViewPhotos},
		{LabelViewInterests},
		{LabelViewLookingFor},
		{LabelAboutMe, LabelEditAboutMe},
		{interest},
	}}
}

// VisitorAction is a main menu selection
type VisitorAction int

const (
	ActionUnknown VisitorAction = iota
	ActionViewPhotos
	ActionViewInterests
	ActionViewLookingFor
	ActionViewAboutMe
	ActionEditAboutMe
	ActionExpressInterest
)

// ParseVisitorAction maps a button label to a menu action
func ParseVisitorAction(text string) VisitorAction {
	switch strings.TrimSpace(text) {
	case LabelViewPhotos:
		return ActionViewPhotos
	case LabelViewInterests:
		return ActionViewInterests
	case LabelViewLookingFor:
		return ActionViewLookingFor
	case LabelAboutMe:
		return ActionViewAboutMe
	case LabelEditAboutMe:
		return ActionEditAboutMe
	case LabelInterested, LabelInterestedDisabled:
		return ActionExpressInterest
	}
	return ActionUnknown
}
